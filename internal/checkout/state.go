package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

// State tracks where a session stands in the purchase flow.
type State string

const (
	StateBrowsing        State = "browsing"
	StateReviewingCart   State = "reviewing_cart"
	StateAwaitingPayment State = "awaiting_payment"
	StateCompleted       State = "completed"
	StateRejected        State = "rejected"
)

var transitions = map[State][]State{
	StateBrowsing:        {StateReviewingCart},
	StateReviewingCart:   {StateBrowsing, StateAwaitingPayment, StateRejected},
	StateAwaitingPayment: {StateReviewingCart, StateCompleted, StateRejected},
	StateCompleted:       {},
	StateRejected:        {},
}

// IsValid reports whether the value is a known state.
func (s State) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether the state ends the flow. A new purchase starts
// over from StateBrowsing.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateRejected
}

// CanTransition reports whether moving to the target state is legal.
func (s State) CanTransition(to State) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

type stateStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type stateKeyer interface {
	CheckoutStateKey(sessionID string) string
}

// StateStore persists per-session checkout state in Redis. A missing key
// reads back as StateBrowsing.
type StateStore struct {
	store stateStore
	keyer stateKeyer
	ttl   time.Duration
}

// NewStateStore builds a checkout state store over the shared Redis client.
func NewStateStore(client interface {
	stateStore
	stateKeyer
}, ttl time.Duration) (*StateStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("state ttl must be positive")
	}
	return &StateStore{store: client, keyer: client, ttl: ttl}, nil
}

// Get returns the session's current state, defaulting to StateBrowsing.
func (s *StateStore) Get(ctx context.Context, sessionID string) (State, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", fmt.Errorf("session id is required")
	}
	raw, err := s.store.Get(ctx, s.keyer.CheckoutStateKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return StateBrowsing, nil
		}
		return "", fmt.Errorf("loading checkout state: %w", err)
	}
	state := State(raw)
	if !state.IsValid() {
		return StateBrowsing, nil
	}
	return state, nil
}

// Set persists the session's state, refreshing the TTL.
func (s *StateStore) Set(ctx context.Context, sessionID string, state State) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	if !state.IsValid() {
		return fmt.Errorf("unknown checkout state %q", state)
	}
	if err := s.store.Set(ctx, s.keyer.CheckoutStateKey(sessionID), string(state), s.ttl); err != nil {
		return fmt.Errorf("saving checkout state: %w", err)
	}
	return nil
}

// Reset clears the session's state back to the implicit StateBrowsing.
func (s *StateStore) Reset(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	if err := s.store.Del(ctx, s.keyer.CheckoutStateKey(sessionID)); err != nil {
		return fmt.Errorf("resetting checkout state: %w", err)
	}
	return nil
}
