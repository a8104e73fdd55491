package transactions

// Outcome is the terminal result of one purchase or reservation attempt.
// Failures are values, not errors: they cross the engine boundary as part of
// the result, never as raised errors.
type Outcome string

const (
	OutcomeCompleted         Outcome = "completed"
	OutcomeShopClosed        Outcome = "shop_closed"
	OutcomeActorNotFound     Outcome = "actor_not_found"
	OutcomeItemNotFound      Outcome = "item_not_found"
	OutcomeItemNotConfigured Outcome = "item_not_configured"
	OutcomeSoldOut           Outcome = "sold_out"
	OutcomeInsufficientFunds Outcome = "insufficient_funds"
	OutcomeNotReservable     Outcome = "not_reservable"
	OutcomeAlreadyReserved   Outcome = "already_reserved"
)

var outcomeMessages = map[Outcome]string{
	OutcomeCompleted:         "transaction completed",
	OutcomeShopClosed:        "the shop is currently closed",
	OutcomeActorNotFound:     "actor not found",
	OutcomeItemNotFound:      "item not found",
	OutcomeItemNotConfigured: "item is not for sale",
	OutcomeSoldOut:           "item is sold out",
	OutcomeInsufficientFunds: "insufficient funds",
	OutcomeNotReservable:     "item cannot be reserved",
	OutcomeAlreadyReserved:   "actor already holds a reservation for this item",
}

// Success reports whether the outcome is the completed one.
func (o Outcome) Success() bool {
	return o == OutcomeCompleted
}

// Message returns the user-facing message for the outcome.
func (o Outcome) Message() string {
	if msg, ok := outcomeMessages[o]; ok {
		return msg
	}
	return string(o)
}

// Result is what every transaction attempt returns to its caller.
type Result struct {
	Outcome   Outcome `json:"outcome"`
	Message   string  `json:"message"`
	ItemName  string  `json:"item_name,omitempty"`
	ActorName string  `json:"actor_name,omitempty"`
	Price     int     `json:"price,omitempty"`
	Currency  string  `json:"currency,omitempty"`
	// NewStock is set after a purchase of a limited item.
	NewStock *int `json:"new_stock,omitempty"`
}

func failure(outcome Outcome) *Result {
	return &Result{Outcome: outcome, Message: outcome.Message()}
}
