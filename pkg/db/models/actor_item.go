package models

import (
	"time"

	"github.com/google/uuid"
)

// ActorItem is one item in an actor's inventory. Granted items are structural
// copies of a catalog item under a fresh identity; SourceItemID records the
// provenance only.
type ActorItem struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ActorID      uuid.UUID  `gorm:"column:actor_id;type:uuid;not null;index"`
	SourceItemID *uuid.UUID `gorm:"column:source_item_id;type:uuid"`
	Name         string     `gorm:"column:name;not null"`
	Image        *string    `gorm:"column:image"`
	Description  *string    `gorm:"column:description"`
	Price        int        `gorm:"column:price;not null;default:0"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
}
