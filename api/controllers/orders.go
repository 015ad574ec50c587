package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/garcialeonbrayanacbtis272-beep/six/api/middleware"
	"github.com/garcialeonbrayanacbtis272-beep/six/api/responses"
	"github.com/garcialeonbrayanacbtis272-beep/six/api/validators"
	"github.com/garcialeonbrayanacbtis272-beep/six/internal/orders"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/db/models"
	pkgerrors "github.com/garcialeonbrayanacbtis272-beep/six/pkg/errors"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/logger"
)

// OrderList pages through the caller's order history, newest first.
func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		params, err := validators.PaginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, next, err := svc.History(r.Context(), middleware.SessionFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(history))
		for i := range history {
			out = append(out, newOrderResponse(&history[i]))
		}
		responses.WriteSuccess(w, map[string]any{
			"orders":      out,
			"next_cursor": next,
		})
	}
}

// OrderLatest returns the caller's most recent order, typically the one just
// placed by checkout.
func OrderLatest(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		order, err := svc.Latest(r.Context(), middleware.SessionFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderGet loads one of the caller's orders by its public reference.
func OrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		reference := strings.TrimSpace(chi.URLParam(r, "reference"))
		order, err := svc.GetByReference(r.Context(), middleware.SessionFromContext(r.Context()), reference)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type orderLineResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

type orderResponse struct {
	ID             uuid.UUID           `json:"id"`
	Reference      string              `json:"reference"`
	Total          decimal.Decimal     `json:"total"`
	CardholderName string              `json:"cardholder_name"`
	CardLast4      string              `json:"card_last4"`
	CardExpiry     string              `json:"card_expiry"`
	Restricted     bool                `json:"restricted"`
	Lines          []orderLineResponse `json:"lines"`
	CreatedAt      time.Time           `json:"created_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, orderLineResponse{
			ProductID: line.ProductID,
			Name:      line.Name,
			Category:  line.Category,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}

	return orderResponse{
		ID:             order.ID,
		Reference:      order.Reference,
		Total:          order.Total,
		CardholderName: order.CardholderName,
		CardLast4:      order.CardLast4,
		CardExpiry:     order.CardExpiry,
		Restricted:     order.Restricted,
		Lines:          lines,
		CreatedAt:      order.CreatedAt,
	}
}
