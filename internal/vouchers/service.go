package vouchers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/horizoncoop/coopadmin-backend/pkg/db"
	"github.com/horizoncoop/coopadmin-backend/pkg/db/models"
	"github.com/horizoncoop/coopadmin-backend/pkg/enums"
	pkgerrors "github.com/horizoncoop/coopadmin-backend/pkg/errors"
	"github.com/horizoncoop/coopadmin-backend/pkg/logger"
	"github.com/horizoncoop/coopadmin-backend/pkg/metrics"
	"github.com/horizoncoop/coopadmin-backend/pkg/outbox"
	"github.com/horizoncoop/coopadmin-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// AccountResolver loads the accounts referenced by voucher entries. A nil tx
// reads outside any transaction.
type AccountResolver interface {
	FindByIDsTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.Account, error)
}

// ReceiptAllocator hands out official receipt numbers at print time.
type ReceiptAllocator interface {
	Allocate(ctx context.Context, tx *gorm.DB, branchID uuid.UUID) (string, error)
	ValidateManual(ctx context.Context, tx *gorm.DB, branchID uuid.UUID, manual string) error
	WithContentionRetry(ctx context.Context, attempts int, fn func(ctx context.Context) error) error
}

// Service defines voucher-level operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.JournalVoucher, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.JournalVoucher, error)
	List(ctx context.Context, filter ListFilter) ([]models.JournalVoucher, string, error)
	UpdateHeader(ctx context.Context, input UpdateHeaderInput) (*models.JournalVoucher, error)
	UpdateEntries(ctx context.Context, input UpdateEntriesInput) (*models.JournalVoucher, error)
	Print(ctx context.Context, input PrintInput) (*models.JournalVoucher, error)
	Approve(ctx context.Context, input TransitionInput) (*models.JournalVoucher, error)
	Release(ctx context.Context, input TransitionInput) (*models.JournalVoucher, error)
	ReplaceTags(ctx context.Context, actor Actor, id uuid.UUID, tagIDs []uuid.UUID) (*models.JournalVoucher, error)
}

type service struct {
	repo          Repository
	tx            txRunner
	accounts      AccountResolver
	allocator     ReceiptAllocator
	outbox        outboxPublisher
	metrics       *metrics.VoucherMetrics
	logg          *logger.Logger
	retryAttempts int
}

// VoucherEvent is the outbox payload for every lifecycle transition.
type VoucherEvent struct {
	VoucherID         uuid.UUID           `json:"voucher_id"`
	BranchID          uuid.UUID           `json:"branch_id"`
	Status            enums.VoucherStatus `json:"status"`
	CashVoucherNumber *string             `json:"cash_voucher_number,omitempty"`
	TotalDebit        string              `json:"total_debit"`
	TotalCredit       string              `json:"total_credit"`
}

// NewService builds a voucher service with the required dependencies.
func NewService(
	repo Repository,
	tx txRunner,
	accounts AccountResolver,
	allocator ReceiptAllocator,
	outboxSvc outboxPublisher,
	m *metrics.VoucherMetrics,
	logg *logger.Logger,
	retryAttempts int,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("voucher repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if accounts == nil {
		return nil, fmt.Errorf("account resolver required")
	}
	if allocator == nil {
		return nil, fmt.Errorf("receipt allocator required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if retryAttempts <= 0 {
		retryAttempts = 3
	}
	return &service{
		repo:          repo,
		tx:            tx,
		accounts:      accounts,
		allocator:     allocator,
		outbox:        outboxSvc,
		metrics:       m,
		logg:          logg,
		retryAttempts: retryAttempts,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.JournalVoucher, error) {
	if input.Actor.BranchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "branch context missing")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "voucher name required")
	}
	if input.CurrencyCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "currency code required")
	}
	if input.VoucherDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "voucher date required")
	}
	if err := checkEntryInputs(input.Entries); err != nil {
		return nil, err
	}

	voucher := &models.JournalVoucher{
		BranchID:     input.Actor.BranchID,
		Name:         input.Name,
		CurrencyCode: input.CurrencyCode,
		VoucherDate:  input.VoucherDate,
		Reference:    input.Reference,
		Description:  input.Description,
		Status:       enums.VoucherStatusDraft,
		Entries:      buildEntries(input.Entries, 0),
	}
	voucher.RecomputeTotals()

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, voucher); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create voucher")
		}
		if len(input.TagIDs) > 0 {
			if err := repo.ReplaceTags(ctx, voucher, input.TagIDs); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach tags")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, voucher.ID)
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.JournalVoucher, error) {
	voucher, err := s.loadScoped(ctx, s.repo, actor, id)
	if err != nil {
		return nil, err
	}
	return voucher, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.JournalVoucher, string, error) {
	if filter.BranchID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeForbidden, "branch context missing")
	}
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vouchers")
	}

	limit := pagination.ClampLimit(filter.Page.Limit)
	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.Key{CreatedAt: last.CreatedAt, ID: last.ID}.Token()
	}
	return rows, nextCursor, nil
}

func (s *service) UpdateHeader(ctx context.Context, input UpdateHeaderInput) (*models.JournalVoucher, error) {
	var result *models.JournalVoucher
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		voucher, err := s.loadScopedForUpdate(ctx, repo, input.Actor, input.VoucherID)
		if err != nil {
			return err
		}
		if !voucher.IsDraft() {
			return errVoucherLocked(string(voucher.Status))
		}

		updates := map[string]any{}
		if input.Name != nil {
			if *input.Name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "voucher name required")
			}
			updates["name"] = *input.Name
		}
		if input.VoucherDate != nil {
			updates["voucher_date"] = *input.VoucherDate
		}
		if input.Reference != nil {
			updates["reference"] = *input.Reference
		}
		if input.Description != nil {
			updates["description"] = *input.Description
		}

		// A tag-only edit still bumps lock_version: the version check runs in
		// the same statement, so a concurrent editor loses the race cleanly.
		if len(updates) > 0 || input.TagIDs != nil {
			if err := s.applyVersioned(ctx, repo, voucher.ID, input.LockVersion, updates); err != nil {
				return err
			}
		} else if voucher.LockVersion != input.LockVersion {
			return staleVersionError()
		}

		if input.TagIDs != nil {
			if err := repo.ReplaceTags(ctx, voucher, *input.TagIDs); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace tags")
			}
		}
		result = voucher
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, result.ID)
}

func (s *service) UpdateEntries(ctx context.Context, input UpdateEntriesInput) (*models.JournalVoucher, error) {
	if len(input.Adds) == 0 && len(input.RemoveIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no entry changes supplied")
	}
	if err := checkEntryInputs(input.Adds); err != nil {
		return nil, err
	}

	var voucherID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		voucher, err := s.loadScopedForUpdate(ctx, repo, input.Actor, input.VoucherID)
		if err != nil {
			return err
		}
		if !voucher.IsDraft() {
			return errVoucherLocked(string(voucher.Status))
		}

		if err := repo.RemoveEntries(ctx, voucher.ID, input.RemoveIDs); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove entries")
		}

		nextPosition := 0
		for _, entry := range voucher.Entries {
			if entry.Position >= nextPosition {
				nextPosition = entry.Position + 1
			}
		}
		adds := buildEntries(input.Adds, nextPosition)
		for i := range adds {
			adds[i].VoucherID = voucher.ID
		}
		if err := repo.AddEntries(ctx, adds); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add entries")
		}

		entries, err := repo.FindEntries(ctx, voucher.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload entries")
		}
		voucher.Entries = entries
		voucher.RecomputeTotals()

		updates := map[string]any{
			"total_debit":  voucher.TotalDebit,
			"total_credit": voucher.TotalCredit,
		}
		if err := s.applyVersioned(ctx, repo, voucher.ID, input.LockVersion, updates); err != nil {
			return err
		}
		voucherID = voucher.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, voucherID)
}

// Print is the hard gate: the entry validator, the receipt allocator and the
// status flip all run inside one transaction. A rejected voucher leaves the
// counter untouched because the whole transaction rolls back.
func (s *service) Print(ctx context.Context, input PrintInput) (*models.JournalVoucher, error) {
	var voucherID uuid.UUID
	attempt := func(ctx context.Context) error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			voucher, err := s.loadScopedForUpdate(ctx, repo, input.Actor, input.VoucherID)
			if err != nil {
				return err
			}
			if _, err := NextStatus(voucher.Status, TransitionPrint); err != nil {
				return err
			}

			accountsByID, err := s.resolveAccounts(ctx, tx, voucher.Entries)
			if err != nil {
				return err
			}
			if err := ValidateEntries(voucher.Entries, accountsByID); err != nil {
				return err
			}

			var number string
			if input.ManualNumber != nil {
				if err := s.allocator.ValidateManual(ctx, tx, voucher.BranchID, *input.ManualNumber); err != nil {
					return err
				}
				number = *input.ManualNumber
			} else {
				number, err = s.allocator.Allocate(ctx, tx, voucher.BranchID)
				if err != nil {
					return err
				}
			}

			voucher.RecomputeTotals()
			now := time.Now()
			updates := map[string]any{
				"status":              enums.VoucherStatusPrinted,
				"printed_date":        now,
				"cash_voucher_number": number,
				"total_debit":         voucher.TotalDebit,
				"total_credit":        voucher.TotalCredit,
			}
			if err := s.applyVersioned(ctx, repo, voucher.ID, input.LockVersion, updates); err != nil {
				return err
			}

			voucher.Status = enums.VoucherStatusPrinted
			voucher.PrintedDate = &now
			voucher.CashVoucherNumber = &number
			voucherID = voucher.ID
			return s.emitTransition(ctx, tx, voucher, input.Actor, TransitionPrint)
		})
	}

	if err := s.allocator.WithContentionRetry(ctx, s.retryAttempts, attempt); err != nil {
		if db.IsSerializationFailure(err) {
			s.metrics.IncAllocationFailure()
			return nil, errAllocationFailure(err)
		}
		return nil, err
	}

	s.metrics.IncPrinted(input.Actor.BranchID.String())
	s.metrics.IncTransition(string(TransitionPrint))
	if s.logg != nil {
		logCtx := s.logg.WithVoucherID(ctx, voucherID.String())
		s.logg.Info(logCtx, "voucher printed")
	}
	return s.reload(ctx, voucherID)
}

func (s *service) Approve(ctx context.Context, input TransitionInput) (*models.JournalVoucher, error) {
	input.Transition = TransitionApprove
	return s.applyTransition(ctx, input)
}

func (s *service) Release(ctx context.Context, input TransitionInput) (*models.JournalVoucher, error) {
	input.Transition = TransitionRelease
	return s.applyTransition(ctx, input)
}

func (s *service) applyTransition(ctx context.Context, input TransitionInput) (*models.JournalVoucher, error) {
	var voucherID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		voucher, err := s.loadScopedForUpdate(ctx, repo, input.Actor, input.VoucherID)
		if err != nil {
			return err
		}
		next, err := NextStatus(voucher.Status, input.Transition)
		if err != nil {
			return err
		}
		updates := map[string]any{"status": next}
		if err := s.applyVersioned(ctx, repo, voucher.ID, input.LockVersion, updates); err != nil {
			return err
		}
		voucher.Status = next
		voucherID = voucher.ID
		return s.emitTransition(ctx, tx, voucher, input.Actor, input.Transition)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncTransition(string(input.Transition))
	return s.reload(ctx, voucherID)
}

func (s *service) ReplaceTags(ctx context.Context, actor Actor, id uuid.UUID, tagIDs []uuid.UUID) (*models.JournalVoucher, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		voucher, err := s.loadScopedForUpdate(ctx, repo, actor, id)
		if err != nil {
			return err
		}
		if err := repo.ReplaceTags(ctx, voucher, tagIDs); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace tags")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

func (s *service) loadScoped(ctx context.Context, repo Repository, actor Actor, id uuid.UUID) (*models.JournalVoucher, error) {
	voucher, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "voucher not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load voucher")
	}
	if voucher.BranchID != actor.BranchID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "voucher does not belong to branch")
	}
	return voucher, nil
}

func (s *service) loadScopedForUpdate(ctx context.Context, repo Repository, actor Actor, id uuid.UUID) (*models.JournalVoucher, error) {
	voucher, err := repo.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "voucher not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load voucher")
	}
	if voucher.BranchID != actor.BranchID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "voucher does not belong to branch")
	}
	return voucher, nil
}

func (s *service) applyVersioned(ctx context.Context, repo Repository, id uuid.UUID, expectedVersion int, updates map[string]any) error {
	rows, err := repo.UpdateVoucher(ctx, id, expectedVersion, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update voucher")
	}
	if rows == 0 {
		return staleVersionError()
	}
	return nil
}

func (s *service) resolveAccounts(ctx context.Context, tx *gorm.DB, entries []models.VoucherEntry) (map[uuid.UUID]models.Account, error) {
	ids := make([]uuid.UUID, 0, len(entries))
	seen := map[uuid.UUID]struct{}{}
	for _, entry := range entries {
		if entry.AccountID == nil || *entry.AccountID == uuid.Nil {
			continue
		}
		if _, ok := seen[*entry.AccountID]; ok {
			continue
		}
		seen[*entry.AccountID] = struct{}{}
		ids = append(ids, *entry.AccountID)
	}
	accountsByID, err := s.accounts.FindByIDsTx(ctx, tx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve accounts")
	}
	return accountsByID, nil
}

func (s *service) emitTransition(ctx context.Context, tx *gorm.DB, voucher *models.JournalVoucher, actor Actor, transition Transition) error {
	branch := voucher.BranchID
	event := outbox.DomainEvent{
		EventType:     eventForTransition(transition),
		AggregateType: enums.AggregateJournalVoucher,
		AggregateID:   voucher.ID,
		Version:       1,
		Actor: &outbox.ActorRef{
			UserID:   actor.UserID,
			BranchID: &branch,
			Role:     string(actor.Role),
		},
		Data: VoucherEvent{
			VoucherID:         voucher.ID,
			BranchID:          voucher.BranchID,
			Status:            voucher.Status,
			CashVoucherNumber: voucher.CashVoucherNumber,
			TotalDebit:        voucher.TotalDebit.StringFixed(2),
			TotalCredit:       voucher.TotalCredit.StringFixed(2),
		},
	}
	return s.outbox.Emit(ctx, tx, event)
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*models.JournalVoucher, error) {
	voucher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload voucher")
	}
	return voucher, nil
}

func staleVersionError() error {
	return pkgerrors.New(pkgerrors.CodeConflict, "voucher was modified concurrently")
}

// checkEntryInputs rejects malformed amounts before anything is stored.
// Incomplete drafts are allowed; negative or double-sided lines are not.
func checkEntryInputs(inputs []EntryInput) error {
	var bad []int
	for i, in := range inputs {
		if in.Debit.IsNegative() || in.Credit.IsNegative() {
			bad = append(bad, i)
			continue
		}
		if in.Debit.IsPositive() && in.Credit.IsPositive() {
			bad = append(bad, i)
		}
	}
	if len(bad) > 0 {
		return errInvalidEntryAmount(bad)
	}
	return nil
}

func buildEntries(inputs []EntryInput, startPosition int) []models.VoucherEntry {
	entries := make([]models.VoucherEntry, 0, len(inputs))
	for i, in := range inputs {
		entry := models.VoucherEntry{
			AccountID: in.AccountID,
			MemberID:  in.MemberID,
			LoanID:    in.LoanID,
			Debit:     decimal.Zero,
			Credit:    decimal.Zero,
			Position:  startPosition + i,
		}
		if in.Debit.IsPositive() {
			entry.SetDebit(in.Debit)
		} else if in.Credit.IsPositive() {
			entry.SetCredit(in.Credit)
		}
		entries = append(entries, entry)
	}
	return entries
}
