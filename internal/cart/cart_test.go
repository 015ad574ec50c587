package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func line(id uuid.UUID, name string, price string, qty int) Line {
	return Line{
		ProductID: id,
		Name:      name,
		UnitPrice: decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

func TestAddMergesByProductID(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	var c Cart
	c.Add(line(id, "snacks", "10.00", 1))
	c.Add(line(id, "snacks", "10.00", 1))

	if len(c.Lines) != 1 {
		t.Fatalf("expected one merged line, got %d", len(c.Lines))
	}
	if c.Lines[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", c.Lines[0].Quantity)
	}
}

func TestAddClampsQuantity(t *testing.T) {
	t.Parallel()

	var c Cart
	c.Add(line(uuid.New(), "snacks", "10.00", 0))
	if c.Lines[0].Quantity != 1 {
		t.Fatalf("expected quantity clamped to 1, got %d", c.Lines[0].Quantity)
	}
}

func TestSetQuantityClampsToOne(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	var c Cart
	c.Add(line(id, "snacks", "10.00", 3))

	if !c.SetQuantity(id, 0) {
		t.Fatal("expected product to be found")
	}
	if got := c.Lines[0].Quantity; got != 1 {
		t.Fatalf("expected quantity clamped to 1, got %d", got)
	}

	if c.SetQuantity(uuid.New(), 2) {
		t.Fatal("expected unknown product to report not found")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	var c Cart
	c.Add(line(id, "snacks", "10.00", 1))

	c.Remove(id)
	c.Remove(id)
	if !c.IsEmpty() {
		t.Fatal("expected empty cart after remove")
	}
}

func TestTotal(t *testing.T) {
	t.Parallel()

	var c Cart
	c.Add(line(uuid.New(), "snacks", "10.00", 2))
	c.Add(line(uuid.New(), "soda", "5.00", 1))

	want := decimal.RequireFromString("25.00")
	if got := c.Total(); !got.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, got)
	}
	if got := c.ItemCount(); got != 3 {
		t.Fatalf("expected 3 units, got %d", got)
	}
}

func TestHasRestrictedItems(t *testing.T) {
	t.Parallel()

	var c Cart
	c.Add(line(uuid.New(), "snacks", "10.00", 1))
	if c.HasRestrictedItems() {
		t.Fatal("unrestricted cart flagged as restricted")
	}

	restricted := line(uuid.New(), "cerveza", "3.50", 1)
	restricted.Restricted = true
	c.Add(restricted)
	if !c.HasRestrictedItems() {
		t.Fatal("restricted line not detected")
	}
}

func TestClear(t *testing.T) {
	t.Parallel()

	var c Cart
	c.Add(line(uuid.New(), "snacks", "10.00", 1))
	c.Clear()
	c.Clear()
	if !c.IsEmpty() {
		t.Fatal("expected empty cart after clear")
	}
	if !c.Total().Equal(decimal.Zero) {
		t.Fatal("expected zero total after clear")
	}
}
