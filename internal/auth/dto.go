package auth

import (
	"github.com/garcialeonbrayanacbtis272-beep/six/internal/users"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the tokens and user produced by a successful login.
// AgeVerified mirrors the claim baked into the access token.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	AgeVerified  bool           `json:"age_verified"`
	User         *users.UserDTO `json:"user"`
}

// RecoverRequest asks for a credential reset by username.
type RecoverRequest struct {
	Username string `json:"username" validate:"required"`
}
