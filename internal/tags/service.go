package tags

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/horizoncoop/coopadmin-backend/pkg/db"
	"github.com/horizoncoop/coopadmin-backend/pkg/db/models"
	pkgerrors "github.com/horizoncoop/coopadmin-backend/pkg/errors"
)

// CreateInput carries the fields for a new tag.
type CreateInput struct {
	Name  string
	Color string
}

// UpdateInput mutates an existing tag. Nil fields are left unchanged.
type UpdateInput struct {
	ID    uuid.UUID
	Name  *string
	Color *string
}

// Service manages voucher tags.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Tag, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	List(ctx context.Context) ([]models.Tag, error)
	Update(ctx context.Context, input UpdateInput) (*models.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ResolveAll returns an error when any requested id does not exist.
	ResolveAll(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error)
}

type service struct {
	repo Repository
}

// NewService builds a tags service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tags repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Tag, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tag name required")
	}
	tag := &models.Tag{Name: name, Color: input.Color}
	if err := s.repo.Create(ctx, tag); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "tag name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create tag")
	}
	return tag, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	tag, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tag not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tag")
	}
	return tag, nil
}

func (s *service) List(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tags")
	}
	return rows, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Tag, error) {
	tag, err := s.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "tag name required")
		}
		tag.Name = name
	}
	if input.Color != nil {
		tag.Color = *input.Color
	}
	if err := s.repo.Update(ctx, tag); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "tag name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tag")
	}
	return tag, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete tag")
	}
	return nil
}

func (s *service) ResolveAll(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve tags")
	}
	if len(rows) != len(dedupe(ids)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "one or more tags do not exist")
	}
	return rows, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
