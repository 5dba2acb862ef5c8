package categories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sakuapp/saku-backend/pkg/db/models"
)

// Repository persists transaction categories.
type Repository interface {
	Create(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]models.Category, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) (bool, error)
	ReferenceCount(ctx context.Context, ownerID, categoryID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a categories repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *repository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) List(ctx context.Context, ownerID uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) Delete(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Category{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ReferenceCount(ctx context.Context, ownerID, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("owner_id = ? AND category_id = ?", ownerID, categoryID).
		Count(&count).Error
	return count, err
}
