package stocks

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sakuapp/saku-backend/pkg/db/models"
)

// Repository persists portfolio holdings.
type Repository interface {
	Create(ctx context.Context, stock *models.Stock) error
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Stock, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]models.Stock, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stocks repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, stock *models.Stock) error {
	return r.db.WithContext(ctx).Create(stock).Error
}

func (r *repository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Stock, error) {
	var stock models.Stock
	if err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&stock).Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *repository) List(ctx context.Context, ownerID uuid.UUID) ([]models.Stock, error) {
	var stocks []models.Stock
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("symbol ASC").
		Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

func (r *repository) Delete(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Stock{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
