package enums

import "fmt"

// ActivityType tags an activity log entry as a purchase or a reservation.
type ActivityType string

const (
	ActivityPurchase    ActivityType = "purchase"
	ActivityReservation ActivityType = "reservation"
)

var validActivityTypes = []ActivityType{
	ActivityPurchase,
	ActivityReservation,
}

// String implements fmt.Stringer.
func (a ActivityType) String() string {
	return string(a)
}

// IsValid reports whether the activity type is recognized.
func (a ActivityType) IsValid() bool {
	for _, candidate := range validActivityTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActivityType converts a raw string into an ActivityType.
func ParseActivityType(value string) (ActivityType, error) {
	for _, candidate := range validActivityTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity type %q", value)
}
