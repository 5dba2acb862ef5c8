package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is a money source whose balance must always equal the signed sum of
// the transactions referencing it. Balance is only ever mutated through the
// ledger service's atomic increment; no caller reads it to write it back.
type Account struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID   uuid.UUID       `gorm:"column:owner_id;type:uuid;not null;index"`
	Name      string          `gorm:"column:name;not null"`
	Balance   decimal.Decimal `gorm:"column:balance;type:numeric(18,2);not null;default:0"`
	Color     string          `gorm:"column:color;not null;default:''"`
	Icon      string          `gorm:"column:icon;not null;default:''"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
