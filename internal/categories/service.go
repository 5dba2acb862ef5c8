package categories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sakuapp/saku-backend/pkg/db"
	"github.com/sakuapp/saku-backend/pkg/db/models"
	"github.com/sakuapp/saku-backend/pkg/enums"
	pkgerrors "github.com/sakuapp/saku-backend/pkg/errors"
	"github.com/sakuapp/saku-backend/pkg/logger"
)

// CreateCategoryInput carries a new category. Type scopes the category to one
// side of the ledger.
type CreateCategoryInput struct {
	Name string
	Type enums.TransactionType
}

// Service manages transaction categories.
type Service interface {
	CreateCategory(ctx context.Context, ownerID uuid.UUID, input CreateCategoryInput) (*models.Category, error)
	ListCategories(ctx context.Context, ownerID uuid.UUID) ([]models.Category, error)
	DeleteCategory(ctx context.Context, ownerID, categoryID uuid.UUID) error
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the categories service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("categories repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) CreateCategory(ctx context.Context, ownerID uuid.UUID, input CreateCategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category type must be income or expense")
	}

	category := &models.Category{
		OwnerID: ownerID,
		Name:    name,
		Type:    input.Type,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating category")
	}
	return category, nil
}

func (s *service) ListCategories(ctx context.Context, ownerID uuid.UUID) ([]models.Category, error) {
	categories, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing categories")
	}
	return categories, nil
}

// DeleteCategory refuses to remove a category while transactions still
// reference it; the log's category links stay intact.
func (s *service) DeleteCategory(ctx context.Context, ownerID, categoryID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, ownerID, categoryID); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading category")
	}

	refs, err := s.repo.ReferenceCount(ctx, ownerID, categoryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting category references")
	}
	if refs > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "category is referenced by transactions").
			WithDetails(map[string]any{"transaction_count": refs})
	}

	deleted, err := s.repo.Delete(ctx, ownerID, categoryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting category")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "category_id", categoryID.String()), "category deleted")
	}
	return nil
}
