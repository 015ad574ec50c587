package orders

import (
	"regexp"
	"testing"
	"time"

	"github.com/garcialeonbrayanacbtis272-beep/six/internal/cart"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var referencePattern = regexp.MustCompile(`^SIX-\d{6}$`)

func sampleCart() *cart.Cart {
	var c cart.Cart
	c.Add(cart.Line{
		ProductID: uuid.New(),
		Name:      "snacks",
		Category:  "snacks",
		UnitPrice: decimal.RequireFromString("9.99"),
		Quantity:  2,
	})
	beer := cart.Line{
		ProductID:  uuid.New(),
		Name:       "cerveza",
		Category:   "bebidas",
		UnitPrice:  decimal.RequireFromString("3.50"),
		Quantity:   1,
		Restricted: true,
	}
	c.Add(beer)
	return &c
}

func TestGenerateReferenceFormat(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		ref, err := GenerateReference()
		if err != nil {
			t.Fatalf("generate reference: %v", err)
		}
		if !referencePattern.MatchString(ref) {
			t.Fatalf("reference %q does not match SIX-######", ref)
		}
	}
}

func TestFactoryBuild(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	factory := NewFactoryWithDeps(
		func() time.Time { return at },
		func() (string, error) { return "SIX-123456", nil },
	)

	userID := uuid.New()
	order, err := factory.Build(BuildInput{
		UserID:         userID,
		Cart:           sampleCart(),
		CardholderName: "  Brayan Garcia  ",
		CardNumber:     "4111 1111 1111 1111",
		CardExpiry:     "12/30",
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if order.Reference != "SIX-123456" {
		t.Fatalf("unexpected reference %q", order.Reference)
	}
	if order.UserID != userID {
		t.Fatalf("unexpected user id %s", order.UserID)
	}
	if order.CardLast4 != "1111" {
		t.Fatalf("expected last4 1111, got %q", order.CardLast4)
	}
	if order.CardholderName != "Brayan Garcia" {
		t.Fatalf("cardholder not trimmed: %q", order.CardholderName)
	}
	if !order.Restricted {
		t.Fatal("restricted flag not carried from cart")
	}
	if want := decimal.RequireFromString("23.48"); !order.Total.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, order.Total)
	}
	if len(order.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(order.Lines))
	}
	if !order.CreatedAt.Equal(at) {
		t.Fatalf("expected created_at %v, got %v", at, order.CreatedAt)
	}
}

func TestFactoryBuildRejectsEmptyCart(t *testing.T) {
	t.Parallel()

	factory := NewFactory()
	if _, err := factory.Build(BuildInput{UserID: uuid.New(), Cart: &cart.Cart{}}); err == nil {
		t.Fatal("expected error for empty cart")
	}
	if _, err := factory.Build(BuildInput{Cart: sampleCart()}); err == nil {
		t.Fatal("expected error for missing user id")
	}
}

func TestLastFourDigits(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"4111 1111 1111 1234": "1234",
		"4111-1111-1111-5678": "5678",
		"123":                 "123",
	}
	for input, want := range cases {
		if got := lastFourDigits(input); got != want {
			t.Fatalf("lastFourDigits(%q) = %q, want %q", input, got, want)
		}
	}
}
