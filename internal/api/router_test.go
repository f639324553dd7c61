package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/stafull/auth-portal/internal/api/middleware"
	"github.com/stafull/auth-portal/internal/core/domain"
	"github.com/stafull/auth-portal/internal/core/ports"
	"github.com/stafull/auth-portal/internal/infrastructure/http/handlers"
)

// routerAuth is an anonymous session holder; Login always fails.
type routerAuth struct {
	ports.AuthService
	logins int
}

func (a *routerAuth) Snapshot(context.Context, string) (domain.AuthSession, error) {
	return domain.AuthSession{}, nil
}

func (a *routerAuth) Portals() domain.PortalRoutes { return domain.ProductionPortalRoutes() }

func (a *routerAuth) Login(context.Context, string, string, string) (domain.Action, error) {
	a.logins++
	return domain.Action{}, &domain.AuthError{Status: 401, Message: "Invalid credentials"}
}

// signingInAuth accepts any credentials for an unverified account.
type signingInAuth struct {
	routerAuth
	loginSID string
	moved    [2]string
}

func (a *signingInAuth) Login(_ context.Context, sid, _, _ string) (domain.Action, error) {
	a.loginSID = sid
	return domain.Action{Kind: domain.ActionNavigate, State: domain.StateAuthenticatedUnverified, Target: domain.PathVerify}, nil
}

func (a *signingInAuth) RotateSession(_ context.Context, oldSID, newSID string) error {
	a.moved = [2]string{oldSID, newSID}
	return nil
}

type noDispatch struct{}

func (noDispatch) EnqueueBatch(b []ports.TelemetryInput) (int, error) { return len(b), nil }

func newTestRouter(t *testing.T, auth ports.AuthService) *echo.Echo {
	t.Helper()
	e, err := NewRouter(Dependencies{
		Auth:       auth,
		Dispatcher: noDispatch{},
		Health:     handlers.NewHealthDependenciesHandler(),
		Session:    middleware.SessionConfig{Secret: "test-secret", CookieName: "stafull_sid", TTL: time.Hour},
		WarnBefore: 5 * time.Minute,
		RateLimit:  RateLimit{PerMinute: 60, Burst: 2, ExpiresIn: time.Minute},
		Metrics:    prometheus.NewRegistry(),
		Log:        zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return e
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRouter_Probes(t *testing.T) {
	e := newTestRouter(t, &routerAuth{})
	for _, path := range []string{"/health", "/health/ready", "/metrics", "/static/auth.css"} {
		rec := serve(e, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouter_SignInPageIssuesCookies(t *testing.T) {
	e := newTestRouter(t, &routerAuth{})
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/signin", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cookieNamed(rec, "stafull_sid") == nil || cookieNamed(rec, csrfCookieName) == nil {
		t.Fatalf("expected session and csrf cookies, got %v", rec.Result().Cookies())
	}
}

func TestRouter_SignInRequiresCSRF(t *testing.T) {
	auth := &routerAuth{}
	e := newTestRouter(t, auth)

	form := url.Values{"email": {"a@b.co"}, "password": {"pw"}}
	req := httptest.NewRequest(http.MethodPost, "/signin", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := serve(e, req)
	if rec.Code != http.StatusBadRequest && rec.Code != http.StatusForbidden {
		t.Fatalf("expected csrf rejection, got %d", rec.Code)
	}
	if auth.logins != 0 {
		t.Fatalf("login must not run without a csrf token")
	}
}

func TestRouter_SignInWithCSRF(t *testing.T) {
	auth := &routerAuth{}
	e := newTestRouter(t, auth)

	first := serve(e, httptest.NewRequest(http.MethodGet, "/signin", nil))
	sid := cookieNamed(first, "stafull_sid")
	csrf := cookieNamed(first, csrfCookieName)
	if sid == nil || csrf == nil {
		t.Fatalf("missing cookies")
	}

	form := url.Values{"email": {"a@b.co"}, "password": {"pw"}, "csrf_token": {csrf.Value}}
	req := httptest.NewRequest(http.MethodPost, "/signin", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(sid)
	req.AddCookie(csrf)
	rec := serve(e, req)

	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "Invalid credentials") {
		t.Fatalf("expected sign-in page with banner, got %d", rec.Code)
	}
	if auth.logins != 1 {
		t.Fatalf("expected one login attempt, got %d", auth.logins)
	}
}

func TestRouter_SignInRotatesSessionID(t *testing.T) {
	auth := &signingInAuth{}
	e := newTestRouter(t, auth)
	cookies, err := middleware.NewSessionCookie(middleware.SessionConfig{Secret: "test-secret", CookieName: "stafull_sid", TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewSessionCookie: %v", err)
	}

	first := serve(e, httptest.NewRequest(http.MethodGet, "/signin", nil))
	sid := cookieNamed(first, "stafull_sid")
	csrf := cookieNamed(first, csrfCookieName)
	if sid == nil || csrf == nil {
		t.Fatalf("missing cookies")
	}
	before, _, err := cookies.Parse(sid.Value)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	form := url.Values{"email": {"a@b.co"}, "password": {"password1"}, "csrf_token": {csrf.Value}}
	req := httptest.NewRequest(http.MethodPost, "/signin", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(sid)
	req.AddCookie(csrf)
	rec := serve(e, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	rotated := cookieNamed(rec, "stafull_sid")
	if rotated == nil {
		t.Fatalf("expected a new session cookie after sign-in")
	}
	after, _, err := cookies.Parse(rotated.Value)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if after == before {
		t.Fatalf("session id %s survived sign-in", before)
	}
	if auth.loginSID != before || auth.moved != [2]string{before, after} {
		t.Fatalf("expected session moved %s -> %s, got login=%s moved=%v", before, after, auth.loginSID, auth.moved)
	}
}

func TestRouter_AuthPostsAreRateLimited(t *testing.T) {
	e := newTestRouter(t, &routerAuth{})

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/forgot-password", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		codes = append(codes, serve(e, req).Code)
	}
	if codes[len(codes)-1] != http.StatusTooManyRequests {
		t.Fatalf("expected the burst to be exhausted, got %v", codes)
	}
}

func TestRouter_DriverAPIRequiresSession(t *testing.T) {
	e := newTestRouter(t, &routerAuth{})
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/driver/state", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouter_SessionEndpoint(t *testing.T) {
	e := newTestRouter(t, &routerAuth{})
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/session", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"state":"anonymous"`) {
		t.Fatalf("expected anonymous session, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_UnknownPathRedirectsHome(t *testing.T) {
	e := newTestRouter(t, &routerAuth{})
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/reset-password/legacy", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/" {
		t.Fatalf("expected 303 to /, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestResolveError(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{domain.NewValidationError("email", "Email is required"), http.StatusBadRequest},
		{&domain.AuthError{Status: 409, Code: domain.CodeEmailExists}, http.StatusConflict},
		{&domain.AuthError{Status: 500}, http.StatusBadGateway},
		{&domain.AuthError{Status: 503, Message: "upstream down"}, http.StatusBadGateway},
		{&domain.NetworkError{Op: "login", Err: errors.New("timeout")}, http.StatusBadGateway},
		{domain.ErrNotAuthenticated, http.StatusUnauthorized},
		{domain.ErrSessionNotReady, http.StatusForbidden},
		{domain.ErrRequestInFlight, http.StatusConflict},
		{fmt.Errorf("%w: speed", domain.ErrInvalidTelemetry), http.StatusUnprocessableEntity},
		{domain.ErrInvalidMode, http.StatusUnprocessableEntity},
		{domain.ErrChecklistItem, http.StatusNotFound},
		{domain.ErrNotInDelivery, http.StatusConflict},
		{fmt.Errorf("complete: %w", domain.ErrChecklistIncomplete), http.StatusConflict},
		{echo.NewHTTPError(http.StatusTooManyRequests, "slow down"), http.StatusTooManyRequests},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	e := echo.New()
	for _, tt := range tests {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		if code, _ := resolveError(tt.err, zerolog.Nop(), c); code != tt.code {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.code, code)
		}
	}
}
