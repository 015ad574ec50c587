package cart

import (
	"context"
	"errors"
	"fmt"

	pkgerrors "github.com/garcialeonbrayanacbtis272-beep/six/pkg/errors"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/logger"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes session-scoped cart operations. Restricted products are
// gated at add time: a session that is not age-verified never holds a
// restricted line. UpdateQuantity and RemoveItem on a product the cart does
// not hold are no-ops.
type Service interface {
	Get(ctx context.Context, sess types.SessionContext) (*Cart, error)
	AddItem(ctx context.Context, sess types.SessionContext, productID uuid.UUID, quantity int) (*Cart, error)
	UpdateQuantity(ctx context.Context, sess types.SessionContext, productID uuid.UUID, quantity int) (*Cart, error)
	RemoveItem(ctx context.Context, sess types.SessionContext, productID uuid.UUID) (*Cart, error)
	Clear(ctx context.Context, sess types.SessionContext) error
}

type service struct {
	store   Store
	catalog ProductCatalog
	policy  RestrictionPolicy
	logg    *logger.Logger
}

// NewService wires the cart service and validates its dependencies.
func NewService(store Store, catalog ProductCatalog, policy RestrictionPolicy, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store is required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product catalog is required")
	}
	if policy == nil {
		return nil, fmt.Errorf("restriction policy is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{store: store, catalog: catalog, policy: policy, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, sess types.SessionContext) (*Cart, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	current, err := s.store.Load(ctx, sess.SessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	return current, nil
}

func (s *service) AddItem(ctx context.Context, sess types.SessionContext, productID uuid.UUID, quantity int) (*Cart, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	product, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithReason(pkgerrors.ReasonProductNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
			WithReason(pkgerrors.ReasonProductNotFound)
	}

	restricted := s.policy.IsRestricted(product.Category)
	if restricted && !sess.AgeVerified {
		s.logg.Warn(s.logg.WithSessionID(ctx, sess.SessionID), "restricted product blocked for unverified session")
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "age-restricted product").
			WithReason(pkgerrors.ReasonAgeRestricted)
	}

	current, err := s.store.Load(ctx, sess.SessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}

	current.Add(Line{
		ProductID:  product.ID,
		Name:       product.Name,
		Category:   product.Category,
		UnitPrice:  product.Price,
		Image:      product.Image,
		Quantity:   quantity,
		Restricted: restricted,
	})

	if err := s.store.Save(ctx, sess.SessionID, current); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
	}
	return current, nil
}

func (s *service) UpdateQuantity(ctx context.Context, sess types.SessionContext, productID uuid.UUID, quantity int) (*Cart, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	current, err := s.store.Load(ctx, sess.SessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}

	// a product that is not in the cart leaves it untouched
	if current.SetQuantity(productID, quantity) {
		if err := s.store.Save(ctx, sess.SessionID, current); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
		}
	}
	return current, nil
}

func (s *service) RemoveItem(ctx context.Context, sess types.SessionContext, productID uuid.UUID) (*Cart, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	current, err := s.store.Load(ctx, sess.SessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}

	current.Remove(productID)

	if err := s.store.Save(ctx, sess.SessionID, current); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
	}
	return current, nil
}

func (s *service) Clear(ctx context.Context, sess types.SessionContext) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if err := s.store.Clear(ctx, sess.SessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart")
	}
	return nil
}

func requireSession(sess types.SessionContext) error {
	if sess.IsZero() || sess.SessionID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session required").
			WithReason(pkgerrors.ReasonAgeVerificationRequired)
	}
	return nil
}
