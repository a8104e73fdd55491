package models

import (
	"time"

	"github.com/google/uuid"
)

// CatalogSource is one item library ("compendium") the GM can pull shop
// entries from.
type CatalogSource struct {
	ID        uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	Name      string        `gorm:"column:name;not null;uniqueIndex"`
	Items     []CatalogItem `gorm:"foreignKey:SourceID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time     `gorm:"column:created_at;autoCreateTime"`
}
