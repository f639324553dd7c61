package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/stafull/auth-portal/internal/core/domain"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session    SessionConfig
	AuthAPI    AuthAPIConfig
	Portals    PortalConfig
	Driver     DriverConfig
	Dispatcher DispatcherConfig
	RateLimit  RateLimitConfig
	Mongo      MongoConfig
	Redis      RedisConfig
}

// SessionConfig controls the browser session cookie and its server-side record.
type SessionConfig struct {
	// Secret is the input key material for the cookie signing key. Required
	// outside development.
	Secret       string        `env:"SESSION_SECRET"`
	CookieName   string        `env:"SESSION_COOKIE,        default=stafull_sid"`
	Secure       bool          `env:"SESSION_COOKIE_SECURE, default=false"`
	TTL          time.Duration `env:"SESSION_TTL,           default=24h"`
	WarnBefore   time.Duration `env:"SESSION_WARN_BEFORE,   default=5m"`
	SubmitWindow time.Duration `env:"SUBMIT_GUARD_TTL,      default=30s"`
}

type AuthAPIConfig struct {
	BaseURL string        `env:"AUTH_API_URL,     default=http://localhost:3001/api"`
	Timeout time.Duration `env:"AUTH_API_TIMEOUT, default=10s"`
}

// PortalConfig overrides individual portal URLs. Empty fields keep the
// production or local default picked by Env.
type PortalConfig struct {
	HQ        string `env:"PORTAL_HQ_URL"`
	Franchise string `env:"PORTAL_FRANCHISE_URL"`
	Driver    string `env:"PORTAL_DRIVER_URL"`
	Customer  string `env:"PORTAL_CUSTOMER_URL"`
	Default   string `env:"PORTAL_DEFAULT_URL"`
}

type DriverConfig struct {
	SpeedThreshold     float64 `env:"DRIVER_SPEED_THRESHOLD,     default=5"`
	ProximityThreshold float64 `env:"DRIVER_PROXIMITY_THRESHOLD, default=150"`
}

type DispatcherConfig struct {
	Workers   int `env:"TELEMETRY_WORKERS,     default=4"`
	QueueSize int `env:"TELEMETRY_QUEUE_SIZE,  default=256"`
}

// RateLimitConfig throttles auth form submissions per client IP.
type RateLimitConfig struct {
	PerMinute int           `env:"AUTH_RATE_PER_MINUTE, default=30"`
	Burst     int           `env:"AUTH_RATE_BURST,      default=10"`
	ExpiresIn time.Duration `env:"AUTH_RATE_EXPIRES,    default=3m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=stafull"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	if err := cfg.validate(); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return &cfg
}

// IsDevelopment reports whether the service runs against local portals.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// PortalRoutes returns the portal mapping for Env with any overrides applied.
func (c *Config) PortalRoutes() domain.PortalRoutes {
	routes := domain.ProductionPortalRoutes()
	if c.IsDevelopment() {
		routes = domain.LocalPortalRoutes()
	}
	override(&routes.HQ, c.Portals.HQ)
	override(&routes.Franchise, c.Portals.Franchise)
	override(&routes.Driver, c.Portals.Driver)
	override(&routes.Customer, c.Portals.Customer)
	override(&routes.Default, c.Portals.Default)
	return routes
}

// ModeThresholds returns the driver mode machine constants.
func (c *Config) ModeThresholds() domain.ModeThresholds {
	return domain.ModeThresholds{
		Speed:     c.Driver.SpeedThreshold,
		Proximity: c.Driver.ProximityThreshold,
	}
}

func (c *Config) validate() error {
	if c.Session.Secret == "" && !c.IsDevelopment() {
		return fmt.Errorf("SESSION_SECRET is required when ENV=%s", c.Env)
	}
	if c.Driver.SpeedThreshold < 0 || c.Driver.ProximityThreshold < 0 {
		return fmt.Errorf("driver thresholds must be non-negative")
	}
	if c.Dispatcher.Workers <= 0 {
		return fmt.Errorf("TELEMETRY_WORKERS must be positive, got %d", c.Dispatcher.Workers)
	}
	if c.RateLimit.PerMinute <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("AUTH_RATE_PER_MINUTE and AUTH_RATE_BURST must be positive")
	}
	return nil
}

func override(dst *string, v string) {
	if v = strings.TrimRight(strings.TrimSpace(v), "/"); v != "" {
		*dst = v
	}
}
