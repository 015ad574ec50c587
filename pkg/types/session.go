package types

import "github.com/google/uuid"

// SessionContext carries the per-request identity facts the checkout flow
// needs. It is rebuilt from the access token claims on every request and
// passed explicitly to services; nothing in the core reads ambient session
// state.
type SessionContext struct {
	UserID uuid.UUID
	// Username is the login name, kept for order records and logs.
	Username string
	// AgeVerified is computed once at login from the user's birth date and
	// cached for the session lifetime.
	AgeVerified bool
	// SessionID is the access session identifier (JWT jti). It doubles as
	// the key under which the live cart is stored.
	SessionID string
}

// IsZero reports whether the context carries no authenticated identity.
func (s SessionContext) IsZero() bool {
	return s.UserID == uuid.Nil && s.SessionID == ""
}
