package cart

import (
	"context"

	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/db/models"
	"github.com/google/uuid"
)

// Store abstracts cart persistence for the service layer.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, cart *Cart) error
	Clear(ctx context.Context, sessionID string) error
}

// ProductCatalog is the read-only product lookup the cart needs.
type ProductCatalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// RestrictionPolicy decides whether a product category is adult-only.
type RestrictionPolicy interface {
	IsRestricted(category string) bool
}
