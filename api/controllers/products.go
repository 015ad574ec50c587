package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/garcialeonbrayanacbtis272-beep/six/api/responses"
	"github.com/garcialeonbrayanacbtis272-beep/six/api/validators"
	product "github.com/garcialeonbrayanacbtis272-beep/six/internal/products"
	"github.com/garcialeonbrayanacbtis272-beep/six/internal/restriction"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/db/models"
	pkgerrors "github.com/garcialeonbrayanacbtis272-beep/six/pkg/errors"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/logger"
)

// ProductList serves the catalog browse endpoint. A search query beats the
// category filter when both are supplied.
func ProductList(svc product.Service, policy *restriction.Policy, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		query := strings.TrimSpace(r.URL.Query().Get("q"))
		category := strings.TrimSpace(r.URL.Query().Get("category"))

		items, err := svc.Browse(r.Context(), query, category)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]productResponse, 0, len(items))
		for i := range items {
			out = append(out, newProductResponse(&items[i], policy))
		}
		responses.WriteSuccess(w, map[string]any{"products": out})
	}
}

// ProductGet serves a single catalog listing by ID, restricted flag included
// so the storefront can badge adult-only products.
func ProductGet(svc product.Service, policy *restriction.Policy, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.UUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(item, policy))
	}
}

// ProductCategories lists the distinct catalog categories plus the "all"
// sentinel the storefront uses as its default filter.
func ProductCategories(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		categories, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := append([]string{models.CategoryAll}, categories...)
		responses.WriteSuccess(w, map[string][]string{"categories": out})
	}
}

type productResponse struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Brand      string          `json:"brand,omitempty"`
	Category   string          `json:"category"`
	Price      decimal.Decimal `json:"price"`
	Image      string          `json:"image,omitempty"`
	Restricted bool            `json:"restricted"`
	CreatedAt  time.Time       `json:"created_at"`
}

func newProductResponse(p *models.Product, policy *restriction.Policy) productResponse {
	restricted := false
	if policy != nil {
		restricted = policy.IsRestricted(p.Category)
	}
	return productResponse{
		ID:         p.ID,
		Name:       p.Name,
		Brand:      p.Brand,
		Category:   p.Category,
		Price:      p.Price,
		Image:      p.Image,
		Restricted: restricted,
		CreatedAt:  p.CreatedAt,
	}
}
