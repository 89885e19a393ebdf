package vouchers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/horizoncoop/coopadmin-backend/pkg/db/models"
)

// Repository is the persistence surface for journal vouchers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, voucher *models.JournalVoucher) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.JournalVoucher, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.JournalVoucher, error)
	List(ctx context.Context, filter ListFilter) ([]models.JournalVoucher, error)

	AddEntries(ctx context.Context, entries []models.VoucherEntry) error
	RemoveEntries(ctx context.Context, voucherID uuid.UUID, entryIDs []uuid.UUID) error
	FindEntries(ctx context.Context, voucherID uuid.UUID) ([]models.VoucherEntry, error)

	// UpdateVoucher applies updates only when lock_version still matches
	// expectedVersion, bumping the version in the same statement. It returns
	// the number of rows touched so callers can detect a lost race.
	UpdateVoucher(ctx context.Context, id uuid.UUID, expectedVersion int, updates map[string]any) (int64, error)

	ReplaceTags(ctx context.Context, voucher *models.JournalVoucher, tagIDs []uuid.UUID) error
}
