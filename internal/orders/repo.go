package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/db/models"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists and reads completed orders.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an orders repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// TxRunner runs fn inside a fresh database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Insert persists the order. Every attempt runs in its own transaction: a
// unique-violation on the reference aborts the transaction it happened in,
// so the retry must start a new one. A colliding reference is redrawn and
// the insert retried up to retries times. A nil run falls back to the
// repository's own connection.
func (r *Repository) Insert(ctx context.Context, run TxRunner, order *models.Order, regenerate ReferenceGenerator, retries int) error {
	if order == nil {
		return fmt.Errorf("order is required")
	}
	if regenerate == nil {
		regenerate = GenerateReference
	}

	for attempt := 0; ; attempt++ {
		err := r.runTx(ctx, run, func(tx *gorm.DB) error {
			return tx.Create(order).Error
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) || attempt >= retries {
			return err
		}
		reference, regenErr := regenerate()
		if regenErr != nil {
			return fmt.Errorf("regenerating reference: %w", regenErr)
		}
		order.Reference = reference
	}
}

func (r *Repository) runTx(ctx context.Context, run TxRunner, fn func(tx *gorm.DB) error) error {
	if run != nil {
		return run.WithTx(ctx, fn)
	}
	return r.db.WithContext(ctx).Transaction(fn)
}

// FindByReference loads an order with its lines by reference.
func (r *Repository) FindByReference(ctx context.Context, reference string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("reference = ?", reference).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindLatestByUser returns the user's most recent order with its lines.
func (r *Repository) FindLatestByUser(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("user_id = ?", userID).
		Order("created_at desc").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUser pages through the user's order history, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	q := r.db.WithContext(ctx).
		Preload("Lines").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Order("id desc").
		Limit(pagination.LimitWithBuffer(params.Limit))

	if cursor != nil {
		q = q.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(orders) > limit {
		orders = orders[:limit]
		last := orders[len(orders)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return orders, nextCursor, nil
}
