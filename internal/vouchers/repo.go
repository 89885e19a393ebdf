package vouchers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/horizoncoop/coopadmin-backend/pkg/db/models"
	"github.com/horizoncoop/coopadmin-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a voucher repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, voucher *models.JournalVoucher) error {
	return r.db.WithContext(ctx).Create(voucher).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.JournalVoucher, error) {
	var voucher models.JournalVoucher
	err := r.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Tags").
		Where("id = ?", id).
		First(&voucher).Error
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

// FindByIDForUpdate locks the voucher row for the duration of the caller's
// transaction. Entries are loaded separately so the lock stays on one table.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.JournalVoucher, error) {
	var voucher models.JournalVoucher
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&voucher).Error
	if err != nil {
		return nil, err
	}
	entries, err := r.FindEntries(ctx, voucher.ID)
	if err != nil {
		return nil, err
	}
	voucher.Entries = entries
	return &voucher, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.JournalVoucher, error) {
	query := r.db.WithContext(ctx).
		Model(&models.JournalVoucher{}).
		Preload("Tags").
		Where("branch_id = ?", filter.BranchID)

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.TagID != nil {
		query = query.
			Joins("JOIN journal_voucher_tags jvt ON jvt.voucher_id = journal_vouchers.id").
			Where("jvt.tag_id = ?", *filter.TagID)
	}

	key, err := pagination.DecodeToken(filter.Page.Cursor)
	if err != nil {
		return nil, err
	}
	if key != nil {
		query = query.Where(
			"(journal_vouchers.created_at, journal_vouchers.id) < (?, ?)",
			key.CreatedAt, key.ID,
		)
	}

	var vouchers []models.JournalVoucher
	err = query.
		Order("journal_vouchers.created_at DESC, journal_vouchers.id DESC").
		Limit(pagination.FetchSize(filter.Page.Limit)).
		Find(&vouchers).Error
	if err != nil {
		return nil, err
	}
	return vouchers, nil
}

func (r *repository) AddEntries(ctx context.Context, entries []models.VoucherEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

func (r *repository) RemoveEntries(ctx context.Context, voucherID uuid.UUID, entryIDs []uuid.UUID) error {
	if len(entryIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("voucher_id = ? AND id IN ?", voucherID, entryIDs).
		Delete(&models.VoucherEntry{}).Error
}

func (r *repository) FindEntries(ctx context.Context, voucherID uuid.UUID) ([]models.VoucherEntry, error) {
	var entries []models.VoucherEntry
	err := r.db.WithContext(ctx).
		Where("voucher_id = ?", voucherID).
		Order("position ASC, created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) UpdateVoucher(ctx context.Context, id uuid.UUID, expectedVersion int, updates map[string]any) (int64, error) {
	merged := map[string]any{"lock_version": gorm.Expr("lock_version + 1")}
	for k, v := range updates {
		merged[k] = v
	}
	result := r.db.WithContext(ctx).
		Model(&models.JournalVoucher{}).
		Where("id = ? AND lock_version = ?", id, expectedVersion).
		Updates(merged)
	return result.RowsAffected, result.Error
}

func (r *repository) ReplaceTags(ctx context.Context, voucher *models.JournalVoucher, tagIDs []uuid.UUID) error {
	tags := make([]models.Tag, 0, len(tagIDs))
	for _, id := range tagIDs {
		tags = append(tags, models.Tag{ID: id})
	}
	return r.db.WithContext(ctx).Model(voucher).Association("Tags").Replace(tags)
}
