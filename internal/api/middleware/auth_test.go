package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/stafull/auth-portal/internal/core/domain"
	"github.com/stafull/auth-portal/internal/core/ports"
)

// stubAuth implements only Snapshot; the other methods are never reached.
type stubAuth struct {
	ports.AuthService
	session domain.AuthSession
	err     error
	gotSID  string
}

func (s *stubAuth) Snapshot(_ context.Context, sid string) (domain.AuthSession, error) {
	s.gotSID = sid
	return s.session, s.err
}

func TestRequireReady_InjectsUser(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("sid", "sid-1")

	user := &domain.User{ID: "u1", Role: domain.RoleDriver, EmailVerified: true, TermsAccepted: true}
	auth := &stubAuth{session: domain.AuthSession{User: user}}

	called := false
	handler := RequireReady(auth)(func(c echo.Context) error {
		called = true
		if c.Get("user") != user {
			t.Fatalf("user not set")
		}
		if c.Get("role") != "driver" {
			t.Fatalf("role not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called || auth.gotSID != "sid-1" {
		t.Fatalf("expected next to run for sid-1")
	}
}

func TestRequireReady_Rejects(t *testing.T) {
	storeDown := errors.New("redis down")
	tests := []struct {
		name    string
		sid     string
		session domain.AuthSession
		err     error
		want    error
	}{
		{"no session cookie", "", domain.AuthSession{}, nil, domain.ErrNotAuthenticated},
		{"anonymous", "sid-1", domain.AuthSession{}, nil, domain.ErrNotAuthenticated},
		{"unverified", "sid-1", domain.AuthSession{User: &domain.User{ID: "u1"}}, nil, domain.ErrSessionNotReady},
		{"terms pending", "sid-1", domain.AuthSession{User: &domain.User{ID: "u1", EmailVerified: true}}, nil, domain.ErrSessionNotReady},
		{"store error", "sid-1", domain.AuthSession{}, storeDown, storeDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			if tt.sid != "" {
				c.Set("sid", tt.sid)
			}
			handler := RequireReady(&stubAuth{session: tt.session, err: tt.err})(func(echo.Context) error {
				t.Fatalf("should not reach next handler")
				return nil
			})
			if err := handler(c); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
