package apikeys

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sakuapp/saku-backend/pkg/db/models"
)

// Repository persists API keys. Only the hashed secret ever touches the table.
type Repository interface {
	Create(ctx context.Context, key *models.APIKey) error
	FindByPrefix(ctx context.Context, prefix string) (*models.APIKey, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]models.APIKey, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) (bool, error)
	TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an API key repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, key *models.APIKey) error {
	return r.db.WithContext(ctx).Create(key).Error
}

func (r *repository) FindByPrefix(ctx context.Context, prefix string) (*models.APIKey, error) {
	var key models.APIKey
	if err := r.db.WithContext(ctx).
		Where("prefix = ?", prefix).
		First(&key).Error; err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *repository) List(ctx context.Context, ownerID uuid.UUID) ([]models.APIKey, error) {
	var keys []models.APIKey
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *repository) Delete(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.APIKey{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error
}
