package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FreedomEntry snapshots the inputs of a financial-freedom projection so the
// calculator can be reloaded on the next visit. Derived annual figures and the
// target are stored alongside the raw inputs, matching the historical schema.
type FreedomEntry struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID         uuid.UUID       `gorm:"column:owner_id;type:uuid;not null;index"`
	InitialSavings  decimal.Decimal `gorm:"column:initial_savings;type:numeric(18,2);not null;default:0"`
	MonthlySavings  decimal.Decimal `gorm:"column:monthly_savings;type:numeric(18,2);not null"`
	AnnualSavings   decimal.Decimal `gorm:"column:annual_savings;type:numeric(18,2);not null"`
	ReturnRate      decimal.Decimal `gorm:"column:return_rate;type:numeric(6,2);not null"`
	MonthlyExpenses decimal.Decimal `gorm:"column:monthly_expenses;type:numeric(18,2);not null"`
	AnnualExpenses  decimal.Decimal `gorm:"column:annual_expenses;type:numeric(18,2);not null"`
	MonthlyIncome   decimal.Decimal `gorm:"column:monthly_income;type:numeric(18,2);not null;default:0"`
	Dependents      int             `gorm:"column:dependents;not null;default:0"`
	TargetAmount    decimal.Decimal `gorm:"column:target_amount;type:numeric(18,2);not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}
