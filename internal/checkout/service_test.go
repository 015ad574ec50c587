package checkout

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/garcialeonbrayanacbtis272-beep/six/internal/cart"
	"github.com/garcialeonbrayanacbtis272-beep/six/internal/orders"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/db/models"
	pkgerrors "github.com/garcialeonbrayanacbtis272-beep/six/pkg/errors"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/logger"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type memCarts struct {
	mu    sync.Mutex
	carts map[string]*cart.Cart
}

func newMemCarts() *memCarts {
	return &memCarts{carts: make(map[string]*cart.Cart)}
}

func (m *memCarts) Load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.carts[sessionID]; ok {
		clone := *existing
		clone.Lines = append([]cart.Line(nil), existing.Lines...)
		return &clone, nil
	}
	return &cart.Cart{}, nil
}

func (m *memCarts) Save(ctx context.Context, sessionID string, c *cart.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *c
	clone.Lines = append([]cart.Line(nil), c.Lines...)
	m.carts[sessionID] = &clone
	return nil
}

func (m *memCarts) Clear(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

type memStates struct {
	mu     sync.Mutex
	states map[string]State
}

func newMemStates() *memStates {
	return &memStates{states: make(map[string]State)}
}

func (m *memStates) Get(ctx context.Context, sessionID string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.states[sessionID]; ok {
		return state, nil
	}
	return StateBrowsing, nil
}

func (m *memStates) Set(ctx context.Context, sessionID string, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[sessionID] = state
	return nil
}

type sqliteTx struct {
	db *gorm.DB
}

func (s sqliteTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

type checkoutFixture struct {
	svc    Service
	carts  *memCarts
	states *memStates
	repo   *orders.Repository
	db     *gorm.DB
}

func newFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Order{}, &models.OrderLine{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	carts := newMemCarts()
	states := newMemStates()
	repo := orders.NewRepository(conn)

	at := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc, err := NewService(Config{
		Carts:            carts,
		States:           states,
		Validator:        NewValidatorAt(func() time.Time { return at }),
		Factory:          orders.NewFactoryWithDeps(func() time.Time { return at }, nil),
		Orders:           repo,
		Tx:               sqliteTx{db: conn},
		Logger:           logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		ReferenceRetries: 5,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	return &checkoutFixture{svc: svc, carts: carts, states: states, repo: repo, db: conn}
}

func sessionFor(t *testing.T, verified bool) types.SessionContext {
	t.Helper()
	return types.SessionContext{
		UserID:      uuid.New(),
		Username:    "brayan",
		AgeVerified: verified,
		SessionID:   "sess-" + uuid.NewString(),
	}
}

func fillCart(t *testing.T, f *checkoutFixture, sess types.SessionContext, restricted bool) {
	t.Helper()
	var c cart.Cart
	c.Add(cart.Line{
		ProductID: uuid.New(),
		Name:      "snacks",
		Category:  "snacks",
		UnitPrice: decimal.RequireFromString("9.99"),
		Quantity:  2,
	})
	if restricted {
		c.Add(cart.Line{
			ProductID:  uuid.New(),
			Name:       "cerveza",
			Category:   "bebidas",
			UnitPrice:  decimal.RequireFromString("3.50"),
			Quantity:   1,
			Restricted: true,
		})
	}
	if err := f.carts.Save(context.Background(), sess.SessionID, &c); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
}

func TestPayCompletesOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := sessionFor(t, true)
	fillCart(t, f, sess, false)

	order, err := f.svc.Pay(ctx, sess, validDetails())
	if err != nil {
		t.Fatalf("pay: %v", err)
	}

	if want := decimal.RequireFromString("19.98"); !order.Total.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, order.Total)
	}
	if !referencePatternOK(order.Reference) {
		t.Fatalf("reference %q does not match SIX-######", order.Reference)
	}
	if order.CardLast4 != "1111" {
		t.Fatalf("expected last4 1111, got %q", order.CardLast4)
	}

	persisted, err := f.repo.FindByReference(ctx, order.Reference)
	if err != nil {
		t.Fatalf("order not persisted: %v", err)
	}
	if len(persisted.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(persisted.Lines))
	}

	remaining, err := f.carts.Load(ctx, sess.SessionID)
	if err != nil {
		t.Fatalf("load cart: %v", err)
	}
	if !remaining.IsEmpty() {
		t.Fatal("cart not cleared after completed checkout")
	}

	state, err := f.svc.State(ctx, sess)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state != StateCompleted {
		t.Fatalf("expected completed state, got %s", state)
	}
}

func referencePatternOK(ref string) bool {
	if len(ref) != len("SIX-123456") || ref[:4] != "SIX-" {
		return false
	}
	for _, r := range ref[4:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func TestPayRejectedKeepsCartAndState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := sessionFor(t, true)
	fillCart(t, f, sess, false)

	details := validDetails()
	details.Expiry = "01/20"
	_, err := f.svc.Pay(ctx, sess, details)
	if pkgerrors.ReasonOf(err) != pkgerrors.ReasonCardExpired {
		t.Fatalf("expected card_expired, got %v", err)
	}

	remaining, err := f.carts.Load(ctx, sess.SessionID)
	if err != nil {
		t.Fatalf("load cart: %v", err)
	}
	if remaining.IsEmpty() {
		t.Fatal("cart must survive a rejected payment")
	}

	state, err := f.svc.State(ctx, sess)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state != StateAwaitingPayment {
		t.Fatalf("expected awaiting_payment after card rejection, got %s", state)
	}

	var count int64
	if err := f.db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no persisted orders, got %d", count)
	}

	// fixing the card completes the same session
	if _, err := f.svc.Pay(ctx, sess, validDetails()); err != nil {
		t.Fatalf("retry after fixing card: %v", err)
	}
}

func TestPayRestrictedCartForMinor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := sessionFor(t, false)
	fillCart(t, f, sess, true)

	_, err := f.svc.Pay(ctx, sess, validDetails())
	if pkgerrors.ReasonOf(err) != pkgerrors.ReasonAgeVerificationRequired {
		t.Fatalf("expected age_verification_required, got %v", err)
	}

	state, err := f.svc.State(ctx, sess)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state != StateRejected {
		t.Fatalf("expected rejected state, got %s", state)
	}
}

func TestPayEmptyCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := sessionFor(t, true)

	_, err := f.svc.Pay(ctx, sess, validDetails())
	if pkgerrors.ReasonOf(err) != pkgerrors.ReasonEmptyCart {
		t.Fatalf("expected empty_cart, got %v", err)
	}

	// an empty cart never advances the state machine
	state, err := f.svc.State(ctx, sess)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state != StateBrowsing {
		t.Fatalf("expected browsing after empty-cart rejection, got %s", state)
	}
}

func TestPayAfterCompletionStartsFreshFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := sessionFor(t, true)
	fillCart(t, f, sess, false)

	if _, err := f.svc.Pay(ctx, sess, validDetails()); err != nil {
		t.Fatalf("first pay: %v", err)
	}

	// cart was cleared, so the next attempt starts over and hits the
	// empty-cart check instead of a state conflict
	_, err := f.svc.Pay(ctx, sess, validDetails())
	if pkgerrors.ReasonOf(err) != pkgerrors.ReasonEmptyCart {
		t.Fatalf("expected empty_cart on fresh flow, got %v", err)
	}
}

func TestPayRequiresSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Pay(context.Background(), types.SessionContext{}, validDetails())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
