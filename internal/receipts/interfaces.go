package receipts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/horizoncoop/coopadmin-backend/pkg/db/models"
)

// SettingsRepository is the persistence surface for branch OR settings.
type SettingsRepository interface {
	WithTx(tx *gorm.DB) SettingsRepository

	Find(ctx context.Context, branchID uuid.UUID) (*models.BranchORSetting, error)
	// FindForUpdate locks the settings row for the caller's transaction so the
	// counter cannot be advanced concurrently.
	FindForUpdate(ctx context.Context, branchID uuid.UUID) (*models.BranchORSetting, error)
	Create(ctx context.Context, setting *models.BranchORSetting) error
	SetCurrent(ctx context.Context, branchID uuid.UUID, current int64) error
	Save(ctx context.Context, setting *models.BranchORSetting) error
}
