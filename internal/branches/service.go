package branches

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/horizoncoop/coopadmin-backend/internal/receipts"
	"github.com/horizoncoop/coopadmin-backend/pkg/db/models"
	"github.com/horizoncoop/coopadmin-backend/pkg/enums"
	pkgerrors "github.com/horizoncoop/coopadmin-backend/pkg/errors"
	"github.com/horizoncoop/coopadmin-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// UpdateSettingsInput mutates the branch OR numbering rules. Nil fields are
// left unchanged.
type UpdateSettingsInput struct {
	ActorUserID    uuid.UUID
	ActorRole      enums.StaffRole
	BranchID       uuid.UUID
	AllowUserInput *bool
	Prefix         *string
	Padding        *int
	Current        *int64
}

// SettingsChangedEvent is emitted whenever OR numbering rules change.
type SettingsChangedEvent struct {
	BranchID       uuid.UUID `json:"branch_id"`
	AllowUserInput bool      `json:"allow_user_input"`
	Prefix         string    `json:"prefix"`
	Padding        int       `json:"padding"`
	Current        int64     `json:"current"`
}

// Service manages branch master data and the OR numbering settings consumed
// by the receipt allocator.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Branch, error)
	List(ctx context.Context) ([]models.Branch, error)
	GetSettings(ctx context.Context, branchID uuid.UUID) (*models.BranchORSetting, error)
	UpdateSettings(ctx context.Context, input UpdateSettingsInput) (*models.BranchORSetting, error)
}

type service struct {
	repo     Repository
	settings receipts.SettingsRepository
	tx       txRunner
	outbox   outboxPublisher
}

// NewService builds a branches service with the required dependencies.
func NewService(repo Repository, settings receipts.SettingsRepository, tx txRunner, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("branches repository required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, settings: settings, tx: tx, outbox: outboxSvc}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Branch, error) {
	branch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
	}
	return branch, nil
}

func (s *service) List(ctx context.Context) ([]models.Branch, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list branches")
	}
	return rows, nil
}

func (s *service) GetSettings(ctx context.Context, branchID uuid.UUID) (*models.BranchORSetting, error) {
	setting, err := s.settings.Find(ctx, branchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch has no receipt settings")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load receipt settings")
	}
	return setting, nil
}

func (s *service) UpdateSettings(ctx context.Context, input UpdateSettingsInput) (*models.BranchORSetting, error) {
	if input.BranchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}
	if input.Padding != nil && (*input.Padding < 0 || *input.Padding > 12) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "padding must be between 0 and 12")
	}
	if input.Prefix != nil && len(strings.TrimSpace(*input.Prefix)) > 16 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prefix too long")
	}
	if input.Current != nil && *input.Current < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "counter cannot be negative")
	}

	if _, err := s.Get(ctx, input.BranchID); err != nil {
		return nil, err
	}

	var result *models.BranchORSetting
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.settings.WithTx(tx)
		setting, err := repo.FindForUpdate(ctx, input.BranchID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			setting = &models.BranchORSetting{BranchID: input.BranchID}
			if err := repo.Create(ctx, setting); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create receipt settings")
			}
		} else if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock receipt settings")
		}

		if input.AllowUserInput != nil {
			setting.JournalVoucherAllowUserInput = *input.AllowUserInput
		}
		if input.Prefix != nil {
			setting.JournalVoucherPrefix = *input.Prefix
		}
		if input.Padding != nil {
			setting.JournalVoucherPadding = *input.Padding
		}
		if input.Current != nil {
			setting.JournalVoucherORCurrent = *input.Current
		}

		if err := repo.Save(ctx, setting); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save receipt settings")
		}

		branchID := input.BranchID
		event := outbox.DomainEvent{
			EventType:     enums.EventORSettingsChanged,
			AggregateType: enums.AggregateBranch,
			AggregateID:   input.BranchID,
			Version:       1,
			Actor: &outbox.ActorRef{
				UserID:   input.ActorUserID,
				BranchID: &branchID,
				Role:     string(input.ActorRole),
			},
			Data: SettingsChangedEvent{
				BranchID:       setting.BranchID,
				AllowUserInput: setting.JournalVoucherAllowUserInput,
				Prefix:         setting.JournalVoucherPrefix,
				Padding:        setting.JournalVoucherPadding,
				Current:        setting.JournalVoucherORCurrent,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}
		result = setting
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
