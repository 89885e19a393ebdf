package receipts

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/horizoncoop/coopadmin-backend/pkg/config"
	"github.com/horizoncoop/coopadmin-backend/pkg/db/models"
	pkgerrors "github.com/horizoncoop/coopadmin-backend/pkg/errors"
)

type fakeSettingsRepo struct {
	setting    *models.BranchORSetting
	created    *models.BranchORSetting
	setCurrent []int64
	findErr    error

	// createErr fails the next Create and installs winner as the row a rerun
	// finds, mimicking a concurrent seeder committing first.
	createErr error
	winner    *models.BranchORSetting
}

func (f *fakeSettingsRepo) WithTx(tx *gorm.DB) SettingsRepository {
	return f
}

func (f *fakeSettingsRepo) Find(ctx context.Context, branchID uuid.UUID) (*models.BranchORSetting, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.setting == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.setting, nil
}

func (f *fakeSettingsRepo) FindForUpdate(ctx context.Context, branchID uuid.UUID) (*models.BranchORSetting, error) {
	return f.Find(ctx, branchID)
}

func (f *fakeSettingsRepo) Create(ctx context.Context, setting *models.BranchORSetting) error {
	if f.createErr != nil {
		err := f.createErr
		f.createErr = nil
		f.setting = f.winner
		return err
	}
	f.created = setting
	f.setting = setting
	return nil
}

func (f *fakeSettingsRepo) SetCurrent(ctx context.Context, branchID uuid.UUID, current int64) error {
	f.setCurrent = append(f.setCurrent, current)
	f.setting.JournalVoucherORCurrent = current
	return nil
}

func (f *fakeSettingsRepo) Save(ctx context.Context, setting *models.BranchORSetting) error {
	f.setting = setting
	return nil
}

func branchSettings(prefix string, padding int, current int64, allowInput bool) *models.BranchORSetting {
	return &models.BranchORSetting{
		BranchID:                     uuid.New(),
		JournalVoucherAllowUserInput: allowInput,
		JournalVoucherORCurrent:      current,
		JournalVoucherPrefix:         prefix,
		JournalVoucherPadding:        padding,
	}
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		prefix   string
		padding  int
		sequence int64
		want     string
	}{
		{"JV-", 6, 42, "JV-000042"},
		{"JV-", 6, 1, "JV-000001"},
		{"", 4, 7, "0007"},
		{"OR/", 3, 12345, "OR/12345"},
		{"X", 0, 5, "X5"},
	}
	for _, tc := range cases {
		if got := FormatNumber(tc.prefix, tc.padding, tc.sequence); got != tc.want {
			t.Fatalf("FormatNumber(%q, %d, %d): expected %q, got %q", tc.prefix, tc.padding, tc.sequence, tc.want, got)
		}
	}
}

func TestAllocate_AdvancesCounter(t *testing.T) {
	repo := &fakeSettingsRepo{setting: branchSettings("JV-", 6, 41, false)}
	alloc, err := NewAllocator(repo, config.ReceiptsConfig{}, nil)
	if err != nil {
		t.Fatalf("unexpected allocator error: %v", err)
	}

	number, err := alloc.Allocate(context.Background(), &gorm.DB{}, repo.setting.BranchID)
	if err != nil {
		t.Fatalf("Allocate error: %v", err)
	}
	if number != "JV-000042" {
		t.Fatalf("expected JV-000042, got %s", number)
	}
	if len(repo.setCurrent) != 1 || repo.setCurrent[0] != 42 {
		t.Fatalf("expected counter advanced to 42, got %v", repo.setCurrent)
	}
}

func TestAllocate_SequentialNumbersAreDistinct(t *testing.T) {
	repo := &fakeSettingsRepo{setting: branchSettings("JV-", 6, 0, false)}
	alloc, err := NewAllocator(repo, config.ReceiptsConfig{}, nil)
	if err != nil {
		t.Fatalf("unexpected allocator error: %v", err)
	}

	seen := map[string]bool{}
	for i := 0; i < 25; i++ {
		number, err := alloc.Allocate(context.Background(), &gorm.DB{}, repo.setting.BranchID)
		if err != nil {
			t.Fatalf("Allocate error on iteration %d: %v", i, err)
		}
		if seen[number] {
			t.Fatalf("duplicate number %s on iteration %d", number, i)
		}
		seen[number] = true
	}
	if repo.setting.JournalVoucherORCurrent != 25 {
		t.Fatalf("expected counter at 25, got %d", repo.setting.JournalVoucherORCurrent)
	}
}

func TestAllocate_FailsClosedWithoutSettings(t *testing.T) {
	repo := &fakeSettingsRepo{}
	alloc, err := NewAllocator(repo, config.ReceiptsConfig{}, nil)
	if err != nil {
		t.Fatalf("unexpected allocator error: %v", err)
	}

	_, err = alloc.Allocate(context.Background(), &gorm.DB{}, uuid.New())
	if err == nil {
		t.Fatal("expected allocation without settings to fail")
	}
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict code, got %v", err)
	}
	if repo.created != nil {
		t.Fatal("no settings row should be seeded without a default prefix")
	}
}

func TestAllocate_SeedsFromConfiguredDefaults(t *testing.T) {
	repo := &fakeSettingsRepo{}
	cfg := config.ReceiptsConfig{DefaultPrefix: "OR-", DefaultPadding: 5}
	alloc, err := NewAllocator(repo, cfg, nil)
	if err != nil {
		t.Fatalf("unexpected allocator error: %v", err)
	}

	number, err := alloc.Allocate(context.Background(), &gorm.DB{}, uuid.New())
	if err != nil {
		t.Fatalf("Allocate error: %v", err)
	}
	if number != "OR-00001" {
		t.Fatalf("expected OR-00001, got %s", number)
	}
	if repo.created == nil || repo.created.JournalVoucherPrefix != "OR-" {
		t.Fatalf("expected settings seeded from defaults, got %+v", repo.created)
	}
}

func TestAllocate_SeedRaceRetriesAndAdoptsWinnerRow(t *testing.T) {
	winner := branchSettings("JV-", 6, 7, false)
	repo := &fakeSettingsRepo{
		createErr: errors.New(`duplicate key value violates unique constraint "branch_or_settings_pkey"`),
		winner:    winner,
	}
	cfg := config.ReceiptsConfig{DefaultPrefix: "OR-", DefaultPadding: 5}
	alloc, err := NewAllocator(repo, cfg, nil)
	if err != nil {
		t.Fatalf("unexpected allocator error: %v", err)
	}

	attempts := 0
	var number string
	err = alloc.WithContentionRetry(context.Background(), 3, func(ctx context.Context) error {
		attempts++
		n, err := alloc.Allocate(ctx, &gorm.DB{}, winner.BranchID)
		if err != nil {
			return err
		}
		number = n
		return nil
	})
	if err != nil {
		t.Fatalf("expected seed race to be absorbed by the retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if number != "JV-000008" {
		t.Fatalf("expected the rerun to continue the winner's sequence, got %s", number)
	}
	if repo.setting.JournalVoucherORCurrent != 8 {
		t.Fatalf("expected counter at 8, got %d", repo.setting.JournalVoucherORCurrent)
	}
}

func TestValidateManual(t *testing.T) {
	branchID := uuid.New()

	t.Run("blocked when user input disabled", func(t *testing.T) {
		repo := &fakeSettingsRepo{setting: branchSettings("JV-", 6, 0, false)}
		alloc, _ := NewAllocator(repo, config.ReceiptsConfig{}, nil)
		err := alloc.ValidateManual(context.Background(), nil, branchID, "JV-900001")
		if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("blank number rejected", func(t *testing.T) {
		repo := &fakeSettingsRepo{setting: branchSettings("JV-", 6, 0, true)}
		alloc, _ := NewAllocator(repo, config.ReceiptsConfig{}, nil)
		err := alloc.ValidateManual(context.Background(), nil, branchID, "   ")
		if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("accepted without touching counter", func(t *testing.T) {
		repo := &fakeSettingsRepo{setting: branchSettings("JV-", 6, 17, true)}
		alloc, _ := NewAllocator(repo, config.ReceiptsConfig{}, nil)
		if err := alloc.ValidateManual(context.Background(), nil, branchID, "JV-900001"); err != nil {
			t.Fatalf("expected manual number accepted, got %v", err)
		}
		if len(repo.setCurrent) != 0 {
			t.Fatalf("manual validation must not advance the counter, got %v", repo.setCurrent)
		}
	})

	t.Run("fails closed without settings", func(t *testing.T) {
		repo := &fakeSettingsRepo{}
		alloc, _ := NewAllocator(repo, config.ReceiptsConfig{}, nil)
		err := alloc.ValidateManual(context.Background(), nil, branchID, "JV-900001")
		if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
			t.Fatalf("expected state conflict, got %v", err)
		}
	})
}

func TestWithContentionRetry(t *testing.T) {
	repo := &fakeSettingsRepo{setting: branchSettings("JV-", 6, 0, false)}
	alloc, _ := NewAllocator(repo, config.ReceiptsConfig{}, nil)

	t.Run("retries serialization failures", func(t *testing.T) {
		calls := 0
		err := alloc.WithContentionRetry(context.Background(), 3, func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return &pgconn.PgError{Code: "40001"}
			}
			return nil
		})
		if err != nil {
			t.Fatalf("expected success after retries, got %v", err)
		}
		if calls != 3 {
			t.Fatalf("expected 3 attempts, got %d", calls)
		}
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		err := alloc.WithContentionRetry(context.Background(), 3, func(ctx context.Context) error {
			calls++
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected original error, got %v", err)
		}
		if calls != 1 {
			t.Fatalf("expected a single attempt, got %d", calls)
		}
	})

	t.Run("gives up after the attempt budget", func(t *testing.T) {
		calls := 0
		err := alloc.WithContentionRetry(context.Background(), 2, func(ctx context.Context) error {
			calls++
			return &pgconn.PgError{Code: "55P03"}
		})
		if err == nil {
			t.Fatal("expected exhaustion error")
		}
		if calls != 3 {
			t.Fatalf("expected initial attempt plus 2 retries, got %d", calls)
		}
	})
}
