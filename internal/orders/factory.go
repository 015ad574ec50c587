package orders

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/garcialeonbrayanacbtis272-beep/six/internal/cart"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/db/models"
	"github.com/google/uuid"
)

// ReferencePrefix starts every order reference.
const ReferencePrefix = "SIX-"

const referenceDigits = 6

// ReferenceGenerator produces a candidate order reference.
type ReferenceGenerator func() (string, error)

// BuildInput carries everything the factory needs to assemble an order.
// CardNumber is the full validated PAN; only its last four digits survive
// into the order. The CVV is deliberately absent.
type BuildInput struct {
	UserID         uuid.UUID
	Cart           *cart.Cart
	CardholderName string
	CardNumber     string
	CardExpiry     string
}

// Factory assembles persistent orders from carts. The clock and reference
// generator are injectable for tests.
type Factory struct {
	now       func() time.Time
	reference ReferenceGenerator
}

// NewFactory returns a factory with the production clock and a random
// reference generator.
func NewFactory() *Factory {
	return &Factory{
		now:       time.Now,
		reference: GenerateReference,
	}
}

// NewFactoryWithDeps allows tests to pin the clock and reference source.
func NewFactoryWithDeps(now func() time.Time, reference ReferenceGenerator) *Factory {
	f := NewFactory()
	if now != nil {
		f.now = now
	}
	if reference != nil {
		f.reference = reference
	}
	return f
}

// Reference returns a fresh candidate reference from the factory's generator.
func (f *Factory) Reference() (string, error) {
	return f.reference()
}

// Build assembles an order snapshot from the cart. The cart must be
// non-empty and already validated upstream.
func (f *Factory) Build(in BuildInput) (*models.Order, error) {
	if in.UserID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	if in.Cart == nil || in.Cart.IsEmpty() {
		return nil, fmt.Errorf("cart must not be empty")
	}

	reference, err := f.reference()
	if err != nil {
		return nil, fmt.Errorf("generating reference: %w", err)
	}

	lines := make([]models.OrderLine, 0, len(in.Cart.Lines))
	for _, line := range in.Cart.Lines {
		lines = append(lines, models.OrderLine{
			ProductID: line.ProductID,
			Name:      line.Name,
			Category:  line.Category,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}

	return &models.Order{
		UserID:         in.UserID,
		Reference:      reference,
		Total:          in.Cart.Total(),
		CardholderName: strings.TrimSpace(in.CardholderName),
		CardLast4:      lastFourDigits(in.CardNumber),
		CardExpiry:     strings.TrimSpace(in.CardExpiry),
		Restricted:     in.Cart.HasRestrictedItems(),
		Lines:          lines,
		CreatedAt:      f.now().UTC(),
	}, nil
}

// GenerateReference builds a reference like SIX-042917 using crypto/rand.
func GenerateReference() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < referenceDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generating order reference: %w", err)
	}
	return fmt.Sprintf("%s%0*d", ReferencePrefix, referenceDigits, n), nil
}

func lastFourDigits(cardNumber string) string {
	digits := make([]rune, 0, len(cardNumber))
	for _, r := range cardNumber {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) <= 4 {
		return string(digits)
	}
	return string(digits[len(digits)-4:])
}
