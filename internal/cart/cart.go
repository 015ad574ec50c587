package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one product entry in a cart. Restricted is computed once when the
// line is added so later reads never re-run the policy.
type Line struct {
	ProductID  uuid.UUID       `json:"product_id"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Image      string          `json:"image,omitempty"`
	Quantity   int             `json:"quantity"`
	Restricted bool            `json:"restricted"`
}

// Subtotal returns unit price times quantity for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the session-scoped shopping cart. It is a plain value; persistence
// lives in SessionStore.
type Cart struct {
	Lines []Line `json:"lines"`
}

// Add merges the line into the cart. A line for the same product ID has its
// quantity increased instead of producing a duplicate entry.
func (c *Cart) Add(line Line) {
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == line.ProductID {
			c.Lines[i].Quantity += line.Quantity
			return
		}
	}
	c.Lines = append(c.Lines, line)
}

// SetQuantity overwrites the quantity for the product, clamping values below
// one up to one. It reports whether the product was present.
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) bool {
	if quantity < 1 {
		quantity = 1
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity = quantity
			return true
		}
	}
	return false
}

// Remove drops the product's line. Removing an absent product is a no-op.
func (c *Cart) Remove(productID uuid.UUID) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// ItemCount returns the total number of units across all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// Total sums every line subtotal using exact decimal arithmetic.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// HasRestrictedItems reports whether any line is age-restricted.
func (c *Cart) HasRestrictedItems() bool {
	for _, line := range c.Lines {
		if line.Restricted {
			return true
		}
	}
	return false
}

// Find returns the line for the product, if present.
func (c *Cart) Find(productID uuid.UUID) (Line, bool) {
	for _, line := range c.Lines {
		if line.ProductID == productID {
			return line, true
		}
	}
	return Line{}, false
}
