package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

var (
	pingOK   = pingFunc(func(context.Context) error { return nil })
	pingDown = pingFunc(func(context.Context) error { return errors.New("connection refused") })
)

func readiness(t *testing.T, deps ...Dependency) (int, readinessResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := NewHealthDependenciesHandler(deps...).Readiness(c); err != nil {
		t.Fatalf("Readiness returned error: %v", err)
	}
	var body readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return rec.Code, body
}

func TestReadiness_AllHealthy(t *testing.T) {
	code, body := readiness(t,
		Dependency{Name: "mongodb", Pinger: pingOK},
		Dependency{Name: "redis", Pinger: pingOK},
	)
	if code != http.StatusOK || body.Status != "ok" {
		t.Fatalf("expected 200 ok, got %d %s", code, body.Status)
	}
}

func TestReadiness_RequiredDown(t *testing.T) {
	code, body := readiness(t,
		Dependency{Name: "mongodb", Pinger: pingOK},
		Dependency{Name: "redis", Pinger: pingDown},
	)
	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	if body.Dependencies["redis"].Status != "unhealthy" || body.Dependencies["redis"].Error == "" {
		t.Fatalf("expected redis unhealthy with error, got %+v", body.Dependencies["redis"])
	}
}

func TestReadiness_OptionalDownIsDegraded(t *testing.T) {
	code, body := readiness(t,
		Dependency{Name: "redis", Pinger: pingOK},
		Dependency{Name: "auth_api", Pinger: pingDown, Optional: true},
	)
	if code != http.StatusOK || body.Status != "degraded" {
		t.Fatalf("expected 200 degraded, got %d %s", code, body.Status)
	}
}

func TestLiveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("Liveness: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
