package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/PSM90/fuorid20-arena-market/pkg/enums"
)

// Player is a person at the table: either the game master or a regular player.
type Player struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name         string           `gorm:"column:name;not null;uniqueIndex"`
	DisplayName  string           `gorm:"column:display_name;not null"`
	PasswordHash string           `gorm:"column:password_hash;not null"`
	Role         enums.PlayerRole `gorm:"column:role;not null;default:player"`
	IsActive     bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
