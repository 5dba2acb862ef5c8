package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sakuapp/saku-backend/pkg/db/models"
)

// ListFilter narrows a transaction listing. From/To bound the transaction date
// (inclusive); Limit/Offset are assumed pre-normalized by the caller.
type ListFilter struct {
	Limit  int
	Offset int
	From   *time.Time
	To     *time.Time
}

// RangeTotals is the aggregate over a date-filtered transaction set.
type RangeTotals struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Count        int64
}

// AccountTotals backs the owner summary endpoint.
type AccountTotals struct {
	TotalBalance decimal.Decimal
	AccountCount int64
}

// Repository manages persistence for the ledger: transactions plus the paired
// account-balance increments. Balance mutation happens exclusively through
// ApplyBalanceDelta, a single UPDATE that the store serializes; nothing here
// ever reads a balance in order to write it back.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateTransaction(ctx context.Context, row *models.Transaction) error
	FindTransaction(ctx context.Context, ownerID, id uuid.UUID) (*models.Transaction, error)
	FindTransactionWithRefs(ctx context.Context, ownerID, id uuid.UUID) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, ownerID, id uuid.UUID) (bool, error)
	ListTransactions(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]models.Transaction, error)
	AggregateRange(ctx context.Context, ownerID uuid.UUID, from, to *time.Time) (RangeTotals, error)
	RecentTransactions(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.Transaction, error)

	ApplyBalanceDelta(ctx context.Context, ownerID, accountID uuid.UUID, delta decimal.Decimal) (bool, error)
	AccountBalance(ctx context.Context, ownerID, accountID uuid.UUID) (decimal.Decimal, error)
	AccountOwned(ctx context.Context, ownerID, accountID uuid.UUID) (bool, error)
	SumAccountDeltas(ctx context.Context, ownerID, accountID uuid.UUID) (decimal.Decimal, error)
	AccountTotals(ctx context.Context, ownerID uuid.UUID) (AccountTotals, error)
	CategoryOwned(ctx context.Context, ownerID, categoryID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateTransaction(ctx context.Context, row *models.Transaction) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) FindTransaction(ctx context.Context, ownerID, id uuid.UUID) (*models.Transaction, error) {
	var row models.Transaction
	if err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindTransactionWithRefs(ctx context.Context, ownerID, id uuid.UUID) (*models.Transaction, error) {
	var row models.Transaction
	if err := r.db.WithContext(ctx).
		Preload("Account").
		Preload("Category").
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) DeleteTransaction(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Transaction{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ListTransactions(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]models.Transaction, error) {
	query := r.db.WithContext(ctx).
		Preload("Account").
		Preload("Category").
		Where("owner_id = ?", ownerID)

	query = applyDateRange(query, filter.From, filter.To)

	var rows []models.Transaction
	if err := query.
		Order("date DESC").
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) AggregateRange(ctx context.Context, ownerID uuid.UUID, from, to *time.Time) (RangeTotals, error) {
	var result struct {
		TotalIncome  decimal.Decimal
		TotalExpense decimal.Decimal
		Count        int64
	}

	query := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("owner_id = ?", ownerID)
	query = applyDateRange(query, from, to)

	if err := query.
		Select(
			"COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0) AS total_income, " +
				"COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0) AS total_expense, " +
				"COUNT(*) AS count",
		).
		Scan(&result).Error; err != nil {
		return RangeTotals{}, err
	}

	return RangeTotals{
		TotalIncome:  result.TotalIncome,
		TotalExpense: result.TotalExpense,
		Count:        result.Count,
	}, nil
}

func (r *repository) RecentTransactions(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.Transaction, error) {
	var rows []models.Transaction
	if err := r.db.WithContext(ctx).
		Preload("Account").
		Preload("Category").
		Where("owner_id = ?", ownerID).
		Order("date DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ApplyBalanceDelta executes the balance adjustment as one server-side
// increment. The store serializes concurrent increments on the same row, which
// is what makes overlapping creates/deletes lose no updates. Returns false
// when the account does not exist (or is not owned), with nothing written.
func (r *repository) ApplyBalanceDelta(ctx context.Context, ownerID, accountID uuid.UUID, delta decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ? AND owner_id = ?", accountID, ownerID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) AccountBalance(ctx context.Context, ownerID, accountID uuid.UUID) (decimal.Decimal, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).
		Select("balance").
		Where("id = ? AND owner_id = ?", accountID, ownerID).
		First(&account).Error; err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// SumAccountDeltas recomputes the signed transaction sum for an account from
// the log. This is the lazy counterpart of the eagerly maintained balance and
// feeds the verification endpoint.
func (r *repository) SumAccountDeltas(ctx context.Context, ownerID, accountID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("owner_id = ? AND account_id = ?", ownerID, accountID).
		Select("COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE -amount END), 0) AS total").
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

func (r *repository) AccountOwned(ctx context.Context, ownerID, accountID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ? AND owner_id = ?", accountID, ownerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) AccountTotals(ctx context.Context, ownerID uuid.UUID) (AccountTotals, error) {
	var result struct {
		TotalBalance decimal.Decimal
		AccountCount int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("owner_id = ?", ownerID).
		Select("COALESCE(SUM(balance), 0) AS total_balance, COUNT(*) AS account_count").
		Scan(&result).Error; err != nil {
		return AccountTotals{}, err
	}
	return AccountTotals{
		TotalBalance: result.TotalBalance,
		AccountCount: result.AccountCount,
	}, nil
}

func (r *repository) CategoryOwned(ctx context.Context, ownerID, categoryID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ? AND owner_id = ?", categoryID, ownerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func applyDateRange(query *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		query = query.Where("date >= ?", from)
	}
	if to != nil {
		query = query.Where("date <= ?", to)
	}
	return query
}
