package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind names the type of an event envelope.
type Kind string

const (
	// KindAny subscribes a listener to every envelope kind.
	KindAny Kind = "*"

	// Notification kinds, broadcast to every connected session.
	KindShopStateChanged Kind = "shop_state_changed"
	KindItemPurchased    Kind = "item_purchased"
	KindItemReserved     Kind = "item_reserved"
	KindConfigUpdated    Kind = "config_updated"
	KindRefresh          Kind = "refresh"

	// Request kinds, forwarded to the authoritative process for execution.
	KindPurchaseRequest Kind = "purchase_request"
	KindReserveRequest  Kind = "reserve_request"

	// Result kinds, targeted back at the session that issued the request.
	KindPurchaseResult Kind = "purchase_result"
	KindReserveResult  Kind = "reserve_result"
)

// Envelope is the wire unit carried by the bus. TargetSession restricts
// delivery to a single session; empty means broadcast. CorrelationID ties a
// result envelope back to the request that produced it.
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	Kind          Kind            `json:"kind"`
	OriginID      string          `json:"origin_id"`
	SessionID     string          `json:"session_id,omitempty"`
	TargetSession string          `json:"target_session,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	EmittedAt     time.Time       `json:"emitted_at"`
}

// ShopStateChangedPayload announces the shop opening or closing.
type ShopStateChangedPayload struct {
	Open bool `json:"open"`
}

// ItemPurchasedPayload announces a completed purchase.
type ItemPurchasedPayload struct {
	ItemRef   uuid.UUID `json:"item_ref"`
	ItemName  string    `json:"item_name"`
	ActorID   uuid.UUID `json:"actor_id"`
	ActorName string    `json:"actor_name"`
	Price     int       `json:"price"`
	Currency  string    `json:"currency"`
}

// ItemReservedPayload announces a completed reservation.
type ItemReservedPayload struct {
	ItemRef   uuid.UUID `json:"item_ref"`
	ItemName  string    `json:"item_name"`
	ActorID   uuid.UUID `json:"actor_id"`
	ActorName string    `json:"actor_name"`
}

// ConfigUpdatedPayload announces that the shop configuration was replaced.
type ConfigUpdatedPayload struct {
	UpdatedBy string `json:"updated_by,omitempty"`
}

// PurchaseRequestPayload asks the authoritative process to run a purchase.
type PurchaseRequestPayload struct {
	ItemRef uuid.UUID `json:"item_ref"`
	ActorID uuid.UUID `json:"actor_id"`
}

// ReserveRequestPayload asks the authoritative process to run a reservation.
type ReserveRequestPayload struct {
	ItemRef uuid.UUID `json:"item_ref"`
	ActorID uuid.UUID `json:"actor_id"`
}

// TransactionResultPayload reports the outcome of a forwarded request.
type TransactionResultPayload struct {
	Outcome  string    `json:"outcome"`
	Message  string    `json:"message,omitempty"`
	ItemRef  uuid.UUID `json:"item_ref"`
	ActorID  uuid.UUID `json:"actor_id"`
	Price    int       `json:"price,omitempty"`
	Currency string    `json:"currency,omitempty"`
}

// MarshalPayload serializes a payload value for embedding in an envelope.
func MarshalPayload(value any) (json.RawMessage, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}
	return raw, nil
}

// UnmarshalPayload decodes an envelope payload into the provided value.
func UnmarshalPayload(env Envelope, value any) error {
	if len(env.Payload) == 0 {
		return fmt.Errorf("envelope %s has no payload", env.Kind)
	}
	if err := json.Unmarshal(env.Payload, value); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", env.Kind, err)
	}
	return nil
}
