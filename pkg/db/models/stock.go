package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stock is a portfolio holding. Current market price is fetched live from the
// quote source and never persisted.
type Stock struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID   uuid.UUID       `gorm:"column:owner_id;type:uuid;not null;index"`
	Symbol    string          `gorm:"column:symbol;not null"`
	Lots      int             `gorm:"column:lots;not null"`
	BuyPrice  decimal.Decimal `gorm:"column:buy_price;type:numeric(18,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
