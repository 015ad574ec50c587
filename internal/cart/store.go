package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type cartStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type cartKeyer interface {
	CartKey(sessionID string) string
}

// SessionStore persists carts in Redis keyed by session ID. A missing key
// reads back as an empty cart.
type SessionStore struct {
	store cartStore
	keyer cartKeyer
	ttl   time.Duration
}

// NewSessionStore builds a cart store over the shared Redis client. The TTL
// bounds how long an abandoned cart survives.
func NewSessionStore(client interface {
	cartStore
	cartKeyer
}, ttl time.Duration) (*SessionStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &SessionStore{store: client, keyer: client, ttl: ttl}, nil
}

// Load fetches the session's cart, returning an empty cart when none exists.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session id is required")
	}
	raw, err := s.store.Get(ctx, s.keyer.CartKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return &Cart{}, nil
		}
		return nil, fmt.Errorf("loading cart: %w", err)
	}

	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("decoding cart: %w", err)
	}
	return &cart, nil
}

// Save writes the cart back under the session key, refreshing the TTL.
func (s *SessionStore) Save(ctx context.Context, sessionID string, cart *Cart) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	if cart == nil {
		return fmt.Errorf("cart is required")
	}
	encoded, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}
	if err := s.store.Set(ctx, s.keyer.CartKey(sessionID), string(encoded), s.ttl); err != nil {
		return fmt.Errorf("saving cart: %w", err)
	}
	return nil
}

// Clear deletes the session's cart. Clearing an absent cart is a no-op.
func (s *SessionStore) Clear(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	if err := s.store.Del(ctx, s.keyer.CartKey(sessionID)); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	return nil
}
