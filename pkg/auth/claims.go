package auth

import (
	"github.com/PSM90/fuorid20-arena-market/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	PlayerID    uuid.UUID
	DisplayName string
	Role        enums.PlayerRole
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to clients. The jti doubles
// as the session identifier the event bus targets directed results at.
type AccessTokenClaims struct {
	PlayerID    uuid.UUID        `json:"player_id"`
	DisplayName string           `json:"display_name"`
	Role        enums.PlayerRole `json:"role"`
	jwt.RegisteredClaims
}
