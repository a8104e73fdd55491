package models

import (
	"time"

	"github.com/google/uuid"
)

// Actor is a player-controlled character holding currency and inventory.
type Actor struct {
	ID        uuid.UUID   `gorm:"column:id;type:uuid;primaryKey"`
	Name      string      `gorm:"column:name;not null"`
	OwnerID   *uuid.UUID  `gorm:"column:owner_id;type:uuid;index"`
	Balance   int         `gorm:"column:balance;not null;default:0"`
	Items     []ActorItem `gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
