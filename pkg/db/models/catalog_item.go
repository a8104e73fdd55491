package models

import (
	"time"

	"github.com/google/uuid"
)

// CatalogItem is the canonical item definition inside a source. The shop never
// mutates catalog rows; purchases copy them into actor inventories.
type CatalogItem struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	SourceID    uuid.UUID `gorm:"column:source_id;type:uuid;not null;index"`
	Name        string    `gorm:"column:name;not null"`
	Image       *string   `gorm:"column:image"`
	Description *string   `gorm:"column:description"`
	BasePrice   int       `gorm:"column:base_price;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
