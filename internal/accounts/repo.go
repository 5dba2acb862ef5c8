package accounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sakuapp/saku-backend/pkg/db/models"
)

// Repository persists accounts. Deleting an account never cascades into the
// transaction log; referencing rows get their account_id cleared instead.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Account, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) (bool, error)
	ClearTransactionRefs(ctx context.Context, ownerID, accountID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an accounts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *repository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) List(ctx context.Context, ownerID uuid.UUID) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("name ASC").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repository) Update(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ? AND owner_id = ?", account.ID, account.OwnerID).
		Updates(map[string]any{
			"name":  account.Name,
			"color": account.Color,
			"icon":  account.Icon,
		}).Error
}

func (r *repository) Delete(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Account{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ClearTransactionRefs orphans every transaction pointing at the account so
// the log survives the account delete.
func (r *repository) ClearTransactionRefs(ctx context.Context, ownerID, accountID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("owner_id = ? AND account_id = ?", ownerID, accountID).
		Update("account_id", nil)
	return res.RowsAffected, res.Error
}
