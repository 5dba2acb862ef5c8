package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sakuapp/saku-backend/pkg/enums"
)

// Category classifies transactions. Categories are first-class owned rows and
// transactions reference them by id only.
type Category struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID   uuid.UUID             `gorm:"column:owner_id;type:uuid;not null;index"`
	Name      string                `gorm:"column:name;not null"`
	Type      enums.TransactionType `gorm:"column:type;type:transaction_type;not null"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
}
