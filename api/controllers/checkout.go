package controllers

import (
	"net/http"

	"github.com/garcialeonbrayanacbtis272-beep/six/api/middleware"
	"github.com/garcialeonbrayanacbtis272-beep/six/api/responses"
	"github.com/garcialeonbrayanacbtis272-beep/six/api/validators"
	"github.com/garcialeonbrayanacbtis272-beep/six/internal/checkout"
	pkgerrors "github.com/garcialeonbrayanacbtis272-beep/six/pkg/errors"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/logger"
)

// CheckoutState reports where the session sits in the checkout flow.
func CheckoutState(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		state, err := svc.State(r.Context(), middleware.SessionFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"state": string(state)})
	}
}

// CheckoutPay runs the full payment validation and, on success, persists the
// order and clears the cart.
func CheckoutPay(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var body checkout.PaymentDetails
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Pay(r.Context(), middleware.SessionFromContext(r.Context()), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}
