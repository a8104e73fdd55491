package enums

import "fmt"

// AvailabilityMode controls how a shop entry can be acquired.
type AvailabilityMode string

const (
	AvailabilityUnlimited   AvailabilityMode = "unlimited"
	AvailabilityLimited     AvailabilityMode = "limited"
	AvailabilityReservation AvailabilityMode = "reservation"
)

var validAvailabilityModes = []AvailabilityMode{
	AvailabilityUnlimited,
	AvailabilityLimited,
	AvailabilityReservation,
}

// String implements fmt.Stringer.
func (m AvailabilityMode) String() string {
	return string(m)
}

// IsValid reports whether the mode is recognized.
func (m AvailabilityMode) IsValid() bool {
	for _, candidate := range validAvailabilityModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseAvailabilityMode converts a raw string into an AvailabilityMode.
func ParseAvailabilityMode(value string) (AvailabilityMode, error) {
	for _, candidate := range validAvailabilityModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid availability mode %q", value)
}
