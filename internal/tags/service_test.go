package tags

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/horizoncoop/coopadmin-backend/pkg/db/models"
	pkgerrors "github.com/horizoncoop/coopadmin-backend/pkg/errors"
)

type fakeTagRepo struct {
	byID      map[uuid.UUID]*models.Tag
	createErr error
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{byID: map[uuid.UUID]*models.Tag{}}
}

func (f *fakeTagRepo) Create(ctx context.Context, tag *models.Tag) error {
	if f.createErr != nil {
		return f.createErr
	}
	tag.ID = uuid.New()
	f.byID[tag.ID] = tag
	return nil
}

func (f *fakeTagRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	tag, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return tag, nil
}

func (f *fakeTagRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error) {
	var out []models.Tag
	for _, id := range ids {
		if tag, ok := f.byID[id]; ok {
			out = append(out, *tag)
		}
	}
	return out, nil
}

func (f *fakeTagRepo) List(ctx context.Context) ([]models.Tag, error) {
	var out []models.Tag
	for _, tag := range f.byID {
		out = append(out, *tag)
	}
	return out, nil
}

func (f *fakeTagRepo) Update(ctx context.Context, tag *models.Tag) error {
	f.byID[tag.ID] = tag
	return nil
}

func (f *fakeTagRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

func TestService_CreateTrimsName(t *testing.T) {
	repo := newFakeTagRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	tag, err := svc.Create(context.Background(), CreateInput{Name: "  loan-batch  ", Color: "#aabbcc"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if tag.Name != "loan-batch" {
		t.Fatalf("expected trimmed name, got %q", tag.Name)
	}
}

func TestService_CreateRejectsBlankName(t *testing.T) {
	svc, _ := NewService(newFakeTagRepo())
	_, err := svc.Create(context.Background(), CreateInput{Name: "   "})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_CreateDuplicate(t *testing.T) {
	repo := newFakeTagRepo()
	repo.createErr = errors.New(`duplicate key value violates unique constraint "tags_name_key"`)
	svc, _ := NewService(repo)

	_, err := svc.Create(context.Background(), CreateInput{Name: "loan-batch"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestService_ResolveAllRejectsUnknownIDs(t *testing.T) {
	repo := newFakeTagRepo()
	svc, _ := NewService(repo)

	created, err := svc.Create(context.Background(), CreateInput{Name: "loan-batch"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := svc.ResolveAll(context.Background(), []uuid.UUID{created.ID}); err != nil {
		t.Fatalf("expected known ids to resolve, got %v", err)
	}

	_, err = svc.ResolveAll(context.Background(), []uuid.UUID{created.ID, uuid.New()})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for unknown tag, got %v", err)
	}
}

func TestService_DeleteMissing(t *testing.T) {
	svc, _ := NewService(newFakeTagRepo())
	err := svc.Delete(context.Background(), uuid.New())
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
