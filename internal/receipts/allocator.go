package receipts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"

	"github.com/horizoncoop/coopadmin-backend/pkg/config"
	"github.com/horizoncoop/coopadmin-backend/pkg/db"
	"github.com/horizoncoop/coopadmin-backend/pkg/db/models"
	pkgerrors "github.com/horizoncoop/coopadmin-backend/pkg/errors"
	"github.com/horizoncoop/coopadmin-backend/pkg/metrics"
)

// Machine-readable reasons for allocation failures.
const (
	ReasonSettingsMissing    = "OR_SETTINGS_MISSING"
	ReasonManualInputBlocked = "MANUAL_INPUT_NOT_ALLOWED"
	ReasonManualNumberEmpty  = "MANUAL_NUMBER_EMPTY"
)

const maxManualNumberLength = 64

// errSettingsSeedRace marks the loser of two first prints seeding the same
// branch settings row. The rerun's FindForUpdate sees the winner's row.
var errSettingsSeedRace = errors.New("receipt settings seeded concurrently")

// Allocator hands out official receipt numbers for journal vouchers. Each
// branch owns one counter row; Allocate must run inside the transaction that
// also prints the voucher so the counter advance and the print commit together.
type Allocator struct {
	repo    SettingsRepository
	cfg     config.ReceiptsConfig
	metrics *metrics.VoucherMetrics
}

// NewAllocator builds an allocator with the required dependencies.
func NewAllocator(repo SettingsRepository, cfg config.ReceiptsConfig, m *metrics.VoucherMetrics) (*Allocator, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &Allocator{repo: repo, cfg: cfg, metrics: m}, nil
}

// FormatNumber renders prefix + zero-padded sequence, e.g. ("JV-", 6, 42)
// yields "JV-000042". Sequences wider than the padding are not truncated.
func FormatNumber(prefix string, padding int, sequence int64) string {
	if padding < 0 {
		padding = 0
	}
	return fmt.Sprintf("%s%0*d", prefix, padding, sequence)
}

// Allocate advances the branch counter under a row lock and returns the next
// number. Without a settings row the branch fails closed unless a default
// prefix is configured, in which case a settings row is seeded from the
// defaults.
func (a *Allocator) Allocate(ctx context.Context, tx *gorm.DB, branchID uuid.UUID) (string, error) {
	if tx == nil {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "transaction required for receipt allocation")
	}
	repo := a.repo.WithTx(tx)

	setting, err := repo.FindForUpdate(ctx, branchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting, err = a.seedFromDefaults(ctx, repo, branchID)
	}
	if err != nil {
		return "", err
	}

	next := setting.JournalVoucherORCurrent + 1
	number := FormatNumber(setting.JournalVoucherPrefix, setting.JournalVoucherPadding, next)
	if err := repo.SetCurrent(ctx, branchID, next); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance receipt counter")
	}
	return number, nil
}

func (a *Allocator) seedFromDefaults(ctx context.Context, repo SettingsRepository, branchID uuid.UUID) (*models.BranchORSetting, error) {
	if a.cfg.DefaultPrefix == "" {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "branch has no official receipt settings").
			WithDetails(map[string]any{"reason": ReasonSettingsMissing, "branch_id": branchID.String()})
	}
	setting := &models.BranchORSetting{
		BranchID:                branchID,
		JournalVoucherORCurrent: 0,
		JournalVoucherPrefix:    a.cfg.DefaultPrefix,
		JournalVoucherPadding:   a.cfg.DefaultPadding,
	}
	if err := repo.Create(ctx, setting); err != nil {
		if db.IsUniqueViolation(err, "branch_or_settings") {
			return nil, fmt.Errorf("%w: %v", errSettingsSeedRace, err)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed receipt settings")
	}
	return setting, nil
}

// ValidateManual checks a user-supplied number against the branch settings.
// Manual numbers never advance the counter.
func (a *Allocator) ValidateManual(ctx context.Context, tx *gorm.DB, branchID uuid.UUID, manual string) error {
	repo := a.repo
	if tx != nil {
		repo = a.repo.WithTx(tx)
	}
	setting, err := repo.Find(ctx, branchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "branch has no official receipt settings").
			WithDetails(map[string]any{"reason": ReasonSettingsMissing, "branch_id": branchID.String()})
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load receipt settings")
	}
	if !setting.JournalVoucherAllowUserInput {
		return pkgerrors.New(pkgerrors.CodeValidation, "manual receipt numbers are disabled for this branch").
			WithDetails(map[string]any{"reason": ReasonManualInputBlocked})
	}
	trimmed := strings.TrimSpace(manual)
	if trimmed == "" || len(trimmed) > maxManualNumberLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "manual receipt number is empty or too long").
			WithDetails(map[string]any{"reason": ReasonManualNumberEmpty})
	}
	return nil
}

// WithContentionRetry reruns fn while it fails with a serialization or lock
// error, up to attempts extra tries. fn must be a full transaction so a rerun
// starts from clean state.
func (a *Allocator) WithContentionRetry(ctx context.Context, attempts int, fn func(ctx context.Context) error) error {
	if attempts <= 0 {
		attempts = 1
	}
	backoff := retry.WithMaxRetries(uint64(attempts), retry.NewConstant(25*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if db.IsSerializationFailure(err) || errors.Is(err, errSettingsSeedRace) {
			a.metrics.IncAllocationRetry()
			return retry.RetryableError(err)
		}
		return err
	})
}
