package models

import (
	"time"

	"github.com/google/uuid"
)

// Reservation records one actor's claim on a reservation-mode item. At most
// one row may exist per (item_ref, actor_id) pair. Reservations never expire
// on their own; the GM resolves them manually.
type Reservation struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ItemRef    uuid.UUID `gorm:"column:item_ref;type:uuid;not null;uniqueIndex:idx_reservations_item_actor"`
	ActorID    uuid.UUID `gorm:"column:actor_id;type:uuid;not null;uniqueIndex:idx_reservations_item_actor"`
	ActorName  string    `gorm:"column:actor_name;not null"`
	PlayerName string    `gorm:"column:player_name;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
