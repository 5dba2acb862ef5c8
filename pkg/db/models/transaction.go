package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sakuapp/saku-backend/pkg/enums"
)

// Transaction is an immutable income/expense entry. Amount is always positive;
// Type decides the sign applied to the account balance. AccountID goes nil when
// the referenced account is deleted (orphaned, not cascaded).
type Transaction struct {
	ID         uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID    uuid.UUID             `gorm:"column:owner_id;type:uuid;not null;index"`
	AccountID  *uuid.UUID            `gorm:"column:account_id;type:uuid;index"`
	CategoryID uuid.UUID             `gorm:"column:category_id;type:uuid;not null"`
	Type       enums.TransactionType `gorm:"column:type;type:transaction_type;not null"`
	Amount     decimal.Decimal       `gorm:"column:amount;type:numeric(18,2);not null"`
	Title      string                `gorm:"column:title;not null"`
	Date       time.Time             `gorm:"column:date;type:date;not null"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime"`

	Account  *Account  `gorm:"foreignKey:AccountID"`
	Category *Category `gorm:"foreignKey:CategoryID"`
}
