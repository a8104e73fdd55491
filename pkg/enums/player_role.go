package enums

import "fmt"

// PlayerRole distinguishes the authoritative game master from regular players.
type PlayerRole string

const (
	RoleGameMaster PlayerRole = "gamemaster"
	RolePlayer     PlayerRole = "player"
)

var validPlayerRoles = []PlayerRole{
	RoleGameMaster,
	RolePlayer,
}

// String implements fmt.Stringer.
func (r PlayerRole) String() string {
	return string(r)
}

// IsValid reports whether the role is recognized.
func (r PlayerRole) IsValid() bool {
	for _, candidate := range validPlayerRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParsePlayerRole converts a raw string into a PlayerRole.
func ParsePlayerRole(value string) (PlayerRole, error) {
	for _, candidate := range validPlayerRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid player role %q", value)
}
