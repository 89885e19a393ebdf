package accounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/horizoncoop/coopadmin-backend/pkg/db/models"
)

// Repository is the read-only lookup surface over the chart of accounts.
// Account master data is owned by another system; this service only resolves
// references.
type Repository interface {
	FindByIDsTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an accounts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *repository) FindByIDsTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.Account, error) {
	result := make(map[uuid.UUID]models.Account, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []models.Account
	err := r.conn(tx).WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, account := range rows {
		result[account.ID] = account
	}
	return result, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) List(ctx context.Context) ([]models.Account, error) {
	var rows []models.Account
	err := r.db.WithContext(ctx).
		Order("code ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
