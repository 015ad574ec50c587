package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/db/models"
	pkgerrors "github.com/garcialeonbrayanacbtis272-beep/six/pkg/errors"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/pagination"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/types"
	"gorm.io/gorm"
)

// Service exposes a shopper's order history. Reads are always scoped to the
// authenticated user; an order belonging to someone else reads as not found.
type Service interface {
	History(ctx context.Context, sess types.SessionContext, params pagination.Params) ([]models.Order, string, error)
	Latest(ctx context.Context, sess types.SessionContext) (*models.Order, error)
	GetByReference(ctx context.Context, sess types.SessionContext, reference string) (*models.Order, error)
}

type service struct {
	repo *Repository
}

// NewService builds the order history service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) History(ctx context.Context, sess types.SessionContext, params pagination.Params) ([]models.Order, string, error) {
	if err := requireSession(sess); err != nil {
		return nil, "", err
	}

	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	orders, next, err := s.repo.ListByUser(ctx, sess.UserID, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, next, nil
}

func (s *service) Latest(ctx context.Context, sess types.SessionContext) (*models.Order, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	order, err := s.repo.FindLatestByUser(ctx, sess.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no orders yet")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest order")
	}
	return order, nil
}

func (s *service) GetByReference(ctx context.Context, sess types.SessionContext, reference string) (*models.Order, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order reference required")
	}

	order, err := s.repo.FindByReference(ctx, reference)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != sess.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func requireSession(sess types.SessionContext) error {
	if sess.IsZero() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session required").
			WithReason(pkgerrors.ReasonAgeVerificationRequired)
	}
	return nil
}
