package config

import (
	"testing"

	"github.com/stafull/auth-portal/internal/core/domain"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "development")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.AuthAPI.BaseURL != "http://localhost:3001/api" {
		t.Fatalf("unexpected auth API URL %q", cfg.AuthAPI.BaseURL)
	}
	if got := cfg.ModeThresholds(); got != domain.DefaultModeThresholds() {
		t.Fatalf("unexpected thresholds %+v", got)
	}
	if got := cfg.PortalRoutes(); got != domain.LocalPortalRoutes() {
		t.Fatalf("expected local portals in development, got %+v", got)
	}
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_SECRET", "")

	defer func() {
		if recover() == nil {
			t.Fatalf("expected Load to panic without SESSION_SECRET")
		}
	}()
	Load()
}

func TestConfig_PortalOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("PORTAL_DRIVER_URL", "https://drivers.staging.stafull.com/")

	cfg := Load()
	routes := cfg.PortalRoutes()
	if routes.Driver != "https://drivers.staging.stafull.com" {
		t.Fatalf("expected trimmed override, got %q", routes.Driver)
	}
	if routes.HQ != domain.ProductionPortalRoutes().HQ {
		t.Fatalf("expected production HQ, got %q", routes.HQ)
	}
}
