package branches

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/horizoncoop/coopadmin-backend/pkg/db/models"
)

// Repository is the lookup surface for branch master data.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Branch, error)
	List(ctx context.Context) ([]models.Branch, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a branches repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Branch, error) {
	var branch models.Branch
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&branch).Error
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *repository) List(ctx context.Context) ([]models.Branch, error) {
	var rows []models.Branch
	err := r.db.WithContext(ctx).
		Order("code ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
