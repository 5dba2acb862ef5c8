package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey stores the hashed secret of an externally issued key. The raw key is
// shown once at generation time and never persisted; Prefix is the public
// lookup handle embedded in the key string.
type APIKey struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID    uuid.UUID  `gorm:"column:owner_id;type:uuid;not null;index"`
	Name       string     `gorm:"column:name;not null"`
	Prefix     string     `gorm:"column:prefix;not null;uniqueIndex"`
	KeyHash    string     `gorm:"column:key_hash;not null"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	LastUsedAt *time.Time `gorm:"column:last_used_at"`
}
