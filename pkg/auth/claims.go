package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	Username    string
	AgeVerified bool
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to clients. AgeVerified
// carries the adult check computed from the birth date at login time so the
// restriction gate never re-reads the user record per request.
type AccessTokenClaims struct {
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	AgeVerified bool      `json:"age_verified"`
	jwt.RegisteredClaims
}
