package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/PSM90/fuorid20-arena-market/pkg/enums"
)

// ActivityEntry is one immutable record in the recent-activity log. The log is
// bounded; inserting past the cap evicts the oldest rows.
type ActivityEntry struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Type       enums.ActivityType `gorm:"column:type;not null"`
	ActorID    uuid.UUID          `gorm:"column:actor_id;type:uuid;not null"`
	ActorName  string             `gorm:"column:actor_name;not null"`
	PlayerName string             `gorm:"column:player_name;not null"`
	ItemRef    uuid.UUID          `gorm:"column:item_ref;type:uuid;not null"`
	ItemName   string             `gorm:"column:item_name;not null"`
	Price      *int               `gorm:"column:price"`
	Currency   string             `gorm:"column:currency;not null"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime;index"`
}
