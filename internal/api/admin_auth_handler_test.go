package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "bookflow/internal/errors"
)

type stubAdminAuth struct {
	token string
	err   error
}

func (s *stubAdminAuth) Login(email, password string) (string, error) {
	return s.token, s.err
}

func (s *stubAdminAuth) CreateAdmin(email, password string) error {
	return s.err
}

func TestLogin_BadCredentialsIs401(t *testing.T) {
	h := NewAdminAuthHandler(&stubAdminAuth{err: apperrors.NewUnauthorized("invalid credentials")})

	req := httptest.NewRequest("POST", "/admin/login", strings.NewReader(`{"email":"a@b.com","password":"nope"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLogin_ServiceFailureIs500(t *testing.T) {
	h := NewAdminAuthHandler(&stubAdminAuth{err: fmt.Errorf("db unreachable")})

	req := httptest.NewRequest("POST", "/admin/login", strings.NewReader(`{"email":"a@b.com","password":"pw"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestLogin_Success(t *testing.T) {
	h := NewAdminAuthHandler(&stubAdminAuth{token: "signed.jwt.token"})

	req := httptest.NewRequest("POST", "/admin/login", strings.NewReader(`{"email":"a@b.com","password":"pw"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "signed.jwt.token") {
		t.Errorf("expected token in response, got %s", rec.Body.String())
	}
}
