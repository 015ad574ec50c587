package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/garcialeonbrayanacbtis272-beep/six/api/middleware"
	checkoutsvc "github.com/garcialeonbrayanacbtis272-beep/six/internal/checkout"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/db/models"
	pkgerrors "github.com/garcialeonbrayanacbtis272-beep/six/pkg/errors"
	"github.com/garcialeonbrayanacbtis272-beep/six/pkg/types"
)

type stubCheckoutService struct {
	state   checkoutsvc.State
	order   *models.Order
	err     error
	details checkoutsvc.PaymentDetails
}

func (s *stubCheckoutService) State(ctx context.Context, sess types.SessionContext) (checkoutsvc.State, error) {
	return s.state, s.err
}

func (s *stubCheckoutService) Pay(ctx context.Context, sess types.SessionContext, details checkoutsvc.PaymentDetails) (*models.Order, error) {
	s.details = details
	return s.order, s.err
}

func TestCheckoutPaySuccess(t *testing.T) {
	t.Parallel()

	order := &models.Order{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		Reference:      "SIX-123456",
		Total:          decimal.RequireFromString("19.98"),
		CardholderName: "Brayan Garcia",
		CardLast4:      "1111",
		CardExpiry:     "08/28",
		Lines: []models.OrderLine{
			{
				ProductID: uuid.New(),
				Name:      "Cafe de Olla",
				Category:  "bebidas",
				UnitPrice: decimal.RequireFromString("9.99"),
				Quantity:  2,
			},
		},
		CreatedAt: time.Now().UTC(),
	}
	svc := &stubCheckoutService{order: order}
	handler := CheckoutPay(svc, nil)

	body := `{"cardholder_name":"Brayan Garcia","card_number":"4111 1111 1111 1111","cvv":"123","expiry":"08/28"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/pay", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithSession(req.Context(), testSession()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.details.CardholderName != "Brayan Garcia" {
		t.Fatalf("payment details not forwarded: %+v", svc.details)
	}

	var envelope struct {
		Data orderResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Reference != "SIX-123456" {
		t.Fatalf("unexpected reference %s", envelope.Data.Reference)
	}
	if envelope.Data.CardLast4 != "1111" {
		t.Fatalf("unexpected last4 %s", envelope.Data.CardLast4)
	}
	if len(envelope.Data.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(envelope.Data.Lines))
	}
}

func TestCheckoutPayNeverEchoesCVV(t *testing.T) {
	t.Parallel()

	order := &models.Order{
		ID:        uuid.New(),
		Reference: "SIX-000001",
		Total:     decimal.RequireFromString("5.00"),
		CardLast4: "4242",
		CreatedAt: time.Now().UTC(),
	}
	handler := CheckoutPay(&stubCheckoutService{order: order}, nil)

	body := `{"cardholder_name":"Brayan Garcia","card_number":"4242424242424242","cvv":"987","expiry":"12/29"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/pay", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithSession(req.Context(), testSession()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "987") {
		t.Fatal("response must not contain the cvv")
	}
}

func TestCheckoutPayRejectionSurfacesReason(t *testing.T) {
	t.Parallel()

	svcErr := pkgerrors.New(pkgerrors.CodeValidation, "card is expired").
		WithReason(pkgerrors.ReasonCardExpired)
	handler := CheckoutPay(&stubCheckoutService{err: svcErr}, nil)

	body := `{"cardholder_name":"Brayan Garcia","card_number":"4111111111111111","cvv":"123","expiry":"01/20"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/pay", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithSession(req.Context(), testSession()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Details["reason"] != pkgerrors.ReasonCardExpired {
		t.Fatalf("expected card_expired reason, got %v", envelope.Error.Details)
	}
}

func TestCheckoutStateReportsCurrentState(t *testing.T) {
	t.Parallel()

	handler := CheckoutState(&stubCheckoutService{state: checkoutsvc.StateAwaitingPayment}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout", nil)
	req = req.WithContext(middleware.WithSession(req.Context(), testSession()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data["state"] != string(checkoutsvc.StateAwaitingPayment) {
		t.Fatalf("unexpected state %q", envelope.Data["state"])
	}
}
