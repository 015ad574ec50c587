package cart

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/garcialeonbrayanacbtis272-beep/six/internal/restriction"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/db/models"
	pkgerrors "github.com/garcialeonbrayanacbtis272-beep/six/pkg/errors"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/logger"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type memStore struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func newMemStore() *memStore {
	return &memStore{carts: make(map[string]*Cart)}
}

func (m *memStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.carts[sessionID]; ok {
		clone := *existing
		clone.Lines = append([]Line(nil), existing.Lines...)
		return &clone, nil
	}
	return &Cart{}, nil
}

func (m *memStore) Save(ctx context.Context, sessionID string, cart *Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *cart
	clone.Lines = append([]Line(nil), cart.Lines...)
	m.carts[sessionID] = &clone
	return nil
}

func (m *memStore) Clear(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

type stubCatalog struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubCatalog) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

type stubPolicy struct{}

func (stubPolicy) IsRestricted(category string) bool {
	return category == "alcohol"
}

func testService(t *testing.T, catalog *stubCatalog) (Service, *memStore) {
	t.Helper()
	store := newMemStore()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(store, catalog, stubPolicy{}, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, store
}

func adultSession() types.SessionContext {
	return types.SessionContext{
		UserID:      uuid.New(),
		Username:    "brayan",
		AgeVerified: true,
		SessionID:   "sess-adult",
	}
}

func minorSession() types.SessionContext {
	return types.SessionContext{
		UserID:      uuid.New(),
		Username:    "kid",
		AgeVerified: false,
		SessionID:   "sess-minor",
	}
}

func product(name, category, price string) *models.Product {
	return &models.Product{
		ID:       uuid.New(),
		Name:     name,
		Category: category,
		Price:    decimal.RequireFromString(price),
		IsActive: true,
	}
}

func TestAddItemMergesAndTotals(t *testing.T) {
	t.Parallel()

	snacks := product("snacks", "abarrotes", "10.00")
	soda := product("soda", "bebidas", "5.00")
	svc, _ := testService(t, &stubCatalog{products: map[uuid.UUID]*models.Product{
		snacks.ID: snacks,
		soda.ID:   soda,
	}})

	ctx := context.Background()
	sess := adultSession()

	if _, err := svc.AddItem(ctx, sess, snacks.ID, 1); err != nil {
		t.Fatalf("add snacks: %v", err)
	}
	if _, err := svc.AddItem(ctx, sess, snacks.ID, 1); err != nil {
		t.Fatalf("add snacks again: %v", err)
	}
	current, err := svc.AddItem(ctx, sess, soda.ID, 1)
	if err != nil {
		t.Fatalf("add soda: %v", err)
	}

	if len(current.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(current.Lines))
	}
	if !current.Total().Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("expected total 25.00, got %s", current.Total())
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	t.Parallel()

	svc, _ := testService(t, &stubCatalog{products: map[uuid.UUID]*models.Product{}})

	_, err := svc.AddItem(context.Background(), adultSession(), uuid.New(), 1)
	if err == nil {
		t.Fatal("expected error for unknown product")
	}
	if pkgerrors.ReasonOf(err) != pkgerrors.ReasonProductNotFound {
		t.Fatalf("expected product_not_found reason, got %q", pkgerrors.ReasonOf(err))
	}
}

func TestAddItemInactiveProduct(t *testing.T) {
	t.Parallel()

	discontinued := product("snacks", "abarrotes", "10.00")
	discontinued.IsActive = false
	svc, _ := testService(t, &stubCatalog{products: map[uuid.UUID]*models.Product{
		discontinued.ID: discontinued,
	}})

	_, err := svc.AddItem(context.Background(), adultSession(), discontinued.ID, 1)
	if pkgerrors.ReasonOf(err) != pkgerrors.ReasonProductNotFound {
		t.Fatalf("expected product_not_found reason, got %v", err)
	}
}

func TestAddRestrictedProductGate(t *testing.T) {
	t.Parallel()

	// neutral name, restricted category: the gate keys off the category
	beer := product("Corona Extra 355ml", "alcohol", "3.50")
	svc, _ := testService(t, &stubCatalog{products: map[uuid.UUID]*models.Product{
		beer.ID: beer,
	}})
	ctx := context.Background()

	_, err := svc.AddItem(ctx, minorSession(), beer.ID, 1)
	if err == nil {
		t.Fatal("expected restricted product to be blocked")
	}
	if pkgerrors.ReasonOf(err) != pkgerrors.ReasonAgeRestricted {
		t.Fatalf("expected age_restricted reason, got %q", pkgerrors.ReasonOf(err))
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden code, got %v", err)
	}

	current, err := svc.AddItem(ctx, adultSession(), beer.ID, 1)
	if err != nil {
		t.Fatalf("adult should add restricted product: %v", err)
	}
	if !current.HasRestrictedItems() {
		t.Fatal("restricted flag not set on line")
	}
}

func TestAddItemRestrictionKeysOffCategory(t *testing.T) {
	t.Parallel()

	// the default policy, wired the way main wires it
	beer := product("Corona Extra 355ml", "alcohol", "3.50")
	vinegar := product("Vinagre de vino tinto", "abarrotes", "1.20")
	store := newMemStore()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(store, &stubCatalog{products: map[uuid.UUID]*models.Product{
		beer.ID:    beer,
		vinegar.ID: vinegar,
	}}, restriction.NewPolicy(), logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	_, err = svc.AddItem(ctx, minorSession(), beer.ID, 1)
	if pkgerrors.ReasonOf(err) != pkgerrors.ReasonAgeRestricted {
		t.Fatalf("expected category alcohol blocked for minor, got %v", err)
	}

	// a restricted keyword in the name alone must not trip the gate
	current, err := svc.AddItem(ctx, minorSession(), vinegar.ID, 1)
	if err != nil {
		t.Fatalf("unrestricted category should pass: %v", err)
	}
	if current.HasRestrictedItems() {
		t.Fatal("vinegar line must not be flagged restricted")
	}
}

func TestUpdateQuantityAndRemove(t *testing.T) {
	t.Parallel()

	snacks := product("snacks", "abarrotes", "10.00")
	svc, _ := testService(t, &stubCatalog{products: map[uuid.UUID]*models.Product{
		snacks.ID: snacks,
	}})
	ctx := context.Background()
	sess := adultSession()

	if _, err := svc.AddItem(ctx, sess, snacks.ID, 3); err != nil {
		t.Fatalf("add: %v", err)
	}

	current, err := svc.UpdateQuantity(ctx, sess, snacks.ID, 0)
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if current.Lines[0].Quantity != 1 {
		t.Fatalf("expected clamp to 1, got %d", current.Lines[0].Quantity)
	}

	// updating a product the cart does not hold is a no-op
	current, err = svc.UpdateQuantity(ctx, sess, uuid.New(), 2)
	if err != nil {
		t.Fatalf("update absent line: %v", err)
	}
	if len(current.Lines) != 1 || current.Lines[0].Quantity != 1 {
		t.Fatalf("cart changed by absent-line update: %+v", current.Lines)
	}

	current, err = svc.RemoveItem(ctx, sess, snacks.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !current.IsEmpty() {
		t.Fatal("expected empty cart after remove")
	}

	// removing again stays a no-op
	if _, err := svc.RemoveItem(ctx, sess, snacks.ID); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestServiceRequiresSession(t *testing.T) {
	t.Parallel()

	svc, _ := testService(t, &stubCatalog{products: map[uuid.UUID]*models.Product{}})

	_, err := svc.Get(context.Background(), types.SessionContext{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for zero session, got %v", err)
	}
}
