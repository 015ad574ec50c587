package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/garcialeonbrayanacbtis272-beep/six/api/middleware"
	"github.com/garcialeonbrayanacbtis272-beep/six/internal/auth"
	pkgerrors "github.com/garcialeonbrayanacbtis272-beep/six/pkg/errors"
)

type stubAuthService struct {
	resp *auth.LoginResponse
	err  error

	loggedOut []string
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return s.resp, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	s.loggedOut = append(s.loggedOut, accessID)
	return s.err
}

func (s *stubAuthService) Recover(ctx context.Context, req auth.RecoverRequest) error {
	return s.err
}

func TestAuthLoginSuccess(t *testing.T) {
	t.Parallel()

	svc := &stubAuthService{resp: &auth.LoginResponse{
		AccessToken:  "token",
		RefreshToken: "refresh",
		AgeVerified:  true,
	}}
	handler := AuthLogin(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"brayan","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data auth.LoginResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != "token" || !envelope.Data.AgeVerified {
		t.Fatalf("unexpected response %+v", envelope.Data)
	}
}

func TestAuthLoginBadCredentials(t *testing.T) {
	t.Parallel()

	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid username or password")}
	handler := AuthLogin(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"brayan","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthLogoutRevokesCallerSession(t *testing.T) {
	t.Parallel()

	svc := &stubAuthService{}
	handler := AuthLogout(svc, nil)

	sess := testSession()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req = req.WithContext(middleware.WithSession(req.Context(), sess))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(svc.loggedOut) != 1 || svc.loggedOut[0] != sess.SessionID {
		t.Fatalf("session not revoked: %v", svc.loggedOut)
	}
}

func TestAuthLogoutWithoutSession(t *testing.T) {
	t.Parallel()

	handler := AuthLogout(&stubAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
