package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/stafull/auth-portal/internal/core/domain"
	"github.com/stafull/auth-portal/internal/core/ports"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/api/", Timeout: time.Second}, zerolog.Nop())
}

func TestClient_Login_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "a@example.com" || body["password"] != "secret123" {
			t.Errorf("unexpected body %v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"tok","refreshToken":"ref","user":{"id":"u1","email":"a@example.com","role":"Franchise_Owner","emailVerified":true}}`))
	})

	res, err := c.Login(context.Background(), "a@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.AccessToken != "tok" || res.RefreshToken != "ref" {
		t.Fatalf("unexpected tokens %+v", res)
	}
	if res.User.Role != domain.RoleFranchiseOwner || !res.User.EmailVerified || res.User.TermsAccepted {
		t.Fatalf("unexpected user %+v", res.User)
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantMsg  string
	}{
		{"error field", http.StatusUnauthorized, `{"error":"Invalid email or password"}`, "", "Invalid email or password"},
		{"message and code", http.StatusConflict, `{"message":"Email taken","code":"EMAIL_EXISTS"}`, domain.CodeEmailExists, "Email taken"},
		{"non json body", http.StatusBadGateway, `upstream exploded`, "", "Bad Gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.Register(context.Background(), ports.RegisterInput{Email: "a@example.com"})
			var ae *domain.AuthError
			if !errors.As(err, &ae) {
				t.Fatalf("expected AuthError, got %v", err)
			}
			if ae.Status != tt.status || ae.Code != tt.wantCode || ae.Message != tt.wantMsg {
				t.Fatalf("unexpected AuthError %+v", ae)
			}
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(Config{BaseURL: url, Timeout: time.Second}, zerolog.Nop())
	err := c.RequestPasswordReset(context.Background(), "a@example.com")
	var ne *domain.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if ne.Op != "request-reset" {
		t.Fatalf("unexpected op %q", ne.Op)
	}
}

func TestClient_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})
	c.http.Timeout = 50 * time.Millisecond

	var ne *domain.NetworkError
	if err := c.VerifyEmail(context.Background(), "a@example.com", "123456"); !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError on timeout, got %v", err)
	}
}

func TestClient_AcceptTerms_SendsBearer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected Authorization %q", got)
		}
		if r.URL.Path != "/api/auth/accept-terms" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.AcceptTerms(context.Background(), "tok"); err != nil {
		t.Fatalf("AcceptTerms: %v", err)
	}
}

func TestClient_ResetPassword_Body(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["token"] != "tkn" || body["newPassword"] != "password1" {
			t.Errorf("unexpected body %v", body)
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	if err := c.ResetPassword(context.Background(), "tkn", "password1"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
}
