package freedom

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sakuapp/saku-backend/pkg/db/models"
)

// Repository stores projection input snapshots. Only the latest entry per
// owner is ever read back.
type Repository interface {
	Create(ctx context.Context, entry *models.FreedomEntry) error
	FindLatest(ctx context.Context, ownerID uuid.UUID) (*models.FreedomEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a freedom-entry repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, entry *models.FreedomEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindLatest(ctx context.Context, ownerID uuid.UUID) (*models.FreedomEntry, error) {
	var entry models.FreedomEntry
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}
