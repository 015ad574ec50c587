package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/garcialeonbrayanacbtis272-beep/six/internal/cart"
	"github.com/garcialeonbrayanacbtis272-beep/six/internal/orders"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/db/models"
	pkgerrors "github.com/garcialeonbrayanacbtis272-beep/six/pkg/errors"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/logger"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/metrics"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/types"
)

const (
	outcomeCompleted = "completed"
	outcomeRejected  = "rejected"
	outcomeFailed    = "failed"
)

type orderInserter interface {
	Insert(ctx context.Context, run orders.TxRunner, order *models.Order, regenerate orders.ReferenceGenerator, retries int) error
}

// States abstracts checkout state persistence for the service layer.
type States interface {
	Get(ctx context.Context, sessionID string) (State, error)
	Set(ctx context.Context, sessionID string, state State) error
}

// Service runs the payment flow: validate the cart and card, persist the
// order (each insert attempt in its own transaction so a reference collision
// can be retried), then clear the cart. The cart clear happens after commit
// and is best-effort; a failure is logged, never rolled back.
type Service interface {
	State(ctx context.Context, sess types.SessionContext) (State, error)
	Pay(ctx context.Context, sess types.SessionContext, details PaymentDetails) (*models.Order, error)
}

type service struct {
	carts     cart.Store
	states    States
	validator *Validator
	factory   *orders.Factory
	orders    orderInserter
	tx        orders.TxRunner
	metrics   *metrics.CheckoutMetrics
	logg      *logger.Logger
	retries   int
}

// Config wires the checkout service dependencies.
type Config struct {
	Carts            cart.Store
	States           States
	Validator        *Validator
	Factory          *orders.Factory
	Orders           orderInserter
	Tx               orders.TxRunner
	Metrics          *metrics.CheckoutMetrics
	Logger           *logger.Logger
	ReferenceRetries int
}

// NewService validates dependencies and returns a checkout service.
func NewService(cfg Config) (Service, error) {
	if cfg.Carts == nil {
		return nil, fmt.Errorf("cart store is required")
	}
	if cfg.States == nil {
		return nil, fmt.Errorf("state store is required")
	}
	if cfg.Validator == nil {
		return nil, fmt.Errorf("validator is required")
	}
	if cfg.Factory == nil {
		return nil, fmt.Errorf("order factory is required")
	}
	if cfg.Orders == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if cfg.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cfg.ReferenceRetries < 0 {
		return nil, fmt.Errorf("reference retries must not be negative")
	}
	return &service{
		carts:     cfg.Carts,
		states:    cfg.States,
		validator: cfg.Validator,
		factory:   cfg.Factory,
		orders:    cfg.Orders,
		tx:        cfg.Tx,
		metrics:   cfg.Metrics,
		logg:      cfg.Logger,
		retries:   cfg.ReferenceRetries,
	}, nil
}

func (s *service) State(ctx context.Context, sess types.SessionContext) (State, error) {
	if err := requireSession(sess); err != nil {
		return "", err
	}
	state, err := s.states.Get(ctx, sess.SessionID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading checkout state")
	}
	return state, nil
}

func (s *service) Pay(ctx context.Context, sess types.SessionContext, details PaymentDetails) (*models.Order, error) {
	started := time.Now()

	if err := requireSession(sess); err != nil {
		return nil, err
	}
	ctx = s.logg.WithSessionID(ctx, sess.SessionID)

	state, err := s.states.Get(ctx, sess.SessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading checkout state")
	}
	// terminal states belong to a finished flow; a new attempt starts over
	if state.IsTerminal() {
		state = StateBrowsing
	}

	current, err := s.carts.Load(ctx, sess.SessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	// an empty cart never advances the state machine
	if current == nil || current.IsEmpty() {
		return nil, s.reject(ctx, started, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty").
			WithReason(pkgerrors.ReasonEmptyCart))
	}

	state = advanceToPayment(state)
	if err := s.states.Set(ctx, sess.SessionID, state); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving checkout state")
	}

	if err := s.validator.Validate(sess, current, details); err != nil {
		// a restriction failure ends the flow; card problems keep the
		// session in awaiting_payment for another try
		if pkgerrors.ReasonOf(err) == pkgerrors.ReasonAgeVerificationRequired && state.CanTransition(StateRejected) {
			if serr := s.states.Set(ctx, sess.SessionID, StateRejected); serr != nil {
				s.logg.Error(ctx, "recording rejected checkout state", serr)
			}
		}
		return nil, s.reject(ctx, started, err)
	}

	order, err := s.factory.Build(orders.BuildInput{
		UserID:         sess.UserID,
		Cart:           current,
		CardholderName: details.CardholderName,
		CardNumber:     details.CardNumber,
		CardExpiry:     details.Expiry,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assembling order")
	}

	if err := s.orders.Insert(ctx, s.tx, order, s.factory.Reference, s.retries); err != nil {
		s.metrics.IncAttempt(outcomeFailed)
		s.metrics.ObserveDuration(outcomeFailed, time.Since(started))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting order")
	}

	if err := s.states.Set(ctx, sess.SessionID, StateCompleted); err != nil {
		s.logg.Error(ctx, "recording completed checkout state", err)
	}
	// the order is committed; a stale cart is tolerable and expires on TTL
	if err := s.carts.Clear(ctx, sess.SessionID); err != nil {
		s.logg.Error(ctx, "clearing cart after checkout", err)
	}

	s.metrics.IncAttempt(outcomeCompleted)
	s.metrics.IncOrderCreated()
	s.metrics.ObserveDuration(outcomeCompleted, time.Since(started))
	s.logg.Info(s.logg.WithField(ctx, "reference", order.Reference), "checkout completed")

	return order, nil
}

// reject records a rejected attempt in the metrics and log, then hands the
// error back unchanged.
func (s *service) reject(ctx context.Context, started time.Time, err error) error {
	reason := pkgerrors.ReasonOf(err)
	s.metrics.IncAttempt(outcomeRejected)
	s.metrics.IncRejection(reason)
	s.metrics.ObserveDuration(outcomeRejected, time.Since(started))
	s.logg.Warn(s.logg.WithField(ctx, "reason", reason), "checkout rejected")
	return err
}

// advanceToPayment walks the legal path from the current state to
// awaiting_payment.
func advanceToPayment(state State) State {
	if state == StateBrowsing {
		state = StateReviewingCart
	}
	if state == StateReviewingCart {
		state = StateAwaitingPayment
	}
	return state
}

func requireSession(sess types.SessionContext) error {
	if sess.IsZero() || sess.SessionID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session required").
			WithReason(pkgerrors.ReasonAgeVerificationRequired)
	}
	return nil
}
