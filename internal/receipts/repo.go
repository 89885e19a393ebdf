package receipts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/horizoncoop/coopadmin-backend/pkg/db/models"
)

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository builds an OR settings repository bound to the provided DB.
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) WithTx(tx *gorm.DB) SettingsRepository {
	if tx == nil {
		return r
	}
	return &settingsRepository{db: tx}
}

func (r *settingsRepository) Find(ctx context.Context, branchID uuid.UUID) (*models.BranchORSetting, error) {
	var setting models.BranchORSetting
	err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *settingsRepository) FindForUpdate(ctx context.Context, branchID uuid.UUID) (*models.BranchORSetting, error) {
	var setting models.BranchORSetting
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("branch_id = ?", branchID).
		First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *settingsRepository) Create(ctx context.Context, setting *models.BranchORSetting) error {
	return r.db.WithContext(ctx).Create(setting).Error
}

func (r *settingsRepository) SetCurrent(ctx context.Context, branchID uuid.UUID, current int64) error {
	return r.db.WithContext(ctx).
		Model(&models.BranchORSetting{}).
		Where("branch_id = ?", branchID).
		Update("journal_voucher_or_current", current).Error
}

func (r *settingsRepository) Save(ctx context.Context, setting *models.BranchORSetting) error {
	return r.db.WithContext(ctx).Save(setting).Error
}
