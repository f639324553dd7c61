package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/stafull/auth-portal/docs"
	"github.com/stafull/auth-portal/internal/api/handler"
	"github.com/stafull/auth-portal/internal/api/middleware"
	"github.com/stafull/auth-portal/internal/api/view"
	"github.com/stafull/auth-portal/internal/core/domain"
	"github.com/stafull/auth-portal/internal/core/ports"
	"github.com/stafull/auth-portal/internal/infrastructure/http/handlers"
)

const csrfCookieName = "stafull_csrf"

// RateLimit throttles auth form POSTs per client IP.
type RateLimit struct {
	PerMinute int
	Burst     int
	ExpiresIn time.Duration
}

// Dependencies are the wired services the router exposes.
type Dependencies struct {
	Auth       ports.AuthService
	Driver     ports.DriverService
	Dispatcher handler.TelemetryDispatcher
	Health     *handlers.HealthDependenciesHandler

	Session    middleware.SessionConfig
	WarnBefore time.Duration
	RateLimit  RateLimit

	// Metrics defaults to the global Prometheus registry.
	Metrics *prometheus.Registry

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer

	cookie, err := middleware.NewSessionCookie(deps.Session)
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Metrics != nil {
		registerer, gatherer = deps.Metrics, deps.Metrics
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echomiddleware.Secure())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "stafull",
		Registerer: registerer,
	}))

	// --- Probes, metrics and docs (no session) ---
	healthHandler := handlers.NewHealthHandler()
	e.GET("/health", healthHandler.Liveness)      // liveness  – is the process alive?
	e.GET("/health/ready", deps.Health.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.StaticFS("/static", view.Static())

	// --- Auth pages ---
	session := cookie.Middleware()
	csrf := echomiddleware.CSRFWithConfig(csrfConfig(deps.Session.Secure))
	limiter := authRateLimiter(deps.RateLimit)

	page := []echo.MiddlewareFunc{session, csrf}
	submit := []echo.MiddlewareFunc{limiter, session, csrf}

	auth := handler.NewAuthHandler(deps.Auth, deps.Log)
	e.GET("/", auth.Index, page...)
	e.GET("/signin", auth.SignInPage, page...)
	e.POST("/signin", auth.SignIn, submit...)
	e.GET("/signup", auth.SignUpPage, page...)
	e.POST("/signup", auth.SignUp, submit...)
	e.GET("/verify", auth.VerifyPage, page...)
	e.POST("/verify", auth.Verify, submit...)
	e.POST("/verify/resend", auth.ResendVerification, submit...)
	e.GET("/terms", auth.TermsPage, page...)
	e.POST("/terms/accept", auth.AcceptTerms, submit...)
	e.GET("/forgot-password", auth.ForgotPasswordPage, page...)
	e.POST("/forgot-password", auth.ForgotPassword, submit...)
	e.GET("/reset-password", auth.ResetPasswordPage, page...)
	e.POST("/reset-password", auth.ResetPassword, submit...)
	e.POST("/signout", auth.SignOut, session)
	e.GET("/*", auth.NotFound)

	// --- JSON API ---
	api := e.Group("/api", session)
	api.GET("/session", handler.NewSessionHandler(deps.Auth, deps.WarnBefore).Get)

	driver := handler.NewDriverHandler(deps.Driver, deps.Dispatcher)
	d := api.Group("/driver",
		middleware.RequireReady(deps.Auth),
		middleware.RBAC(domain.RoleDriver, domain.RoleFranchiseOwner, domain.RoleManager, domain.RoleHoldingsAdmin),
	)
	d.GET("/state", driver.State)
	d.POST("/clock", driver.ToggleClock)
	d.POST("/telemetry", driver.Telemetry)
	d.POST("/telemetry/batch", driver.TelemetryBatch)
	d.POST("/simulate", driver.Simulate)
	d.POST("/checklist/:id", driver.ToggleChecklistItem)
	d.POST("/complete", driver.CompleteDelivery)
	d.GET("/deliveries", driver.Deliveries)

	return e, nil
}

func csrfConfig(secure bool) echomiddleware.CSRFConfig {
	return echomiddleware.CSRFConfig{
		TokenLookup:    "form:csrf_token",
		ContextKey:     handler.ContextCSRF,
		CookieName:     csrfCookieName,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   secure,
		CookieSameSite: http.SameSiteLaxMode,
	}
}

func authRateLimiter(cfg RateLimit) echo.MiddlewareFunc {
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = 30
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}
	if cfg.ExpiresIn <= 0 {
		cfg.ExpiresIn = 3 * time.Minute
	}
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(cfg.PerMinute) / 60),
		Burst:     cfg.Burst,
		ExpiresIn: cfg.ExpiresIn,
	})
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many attempts, please wait a moment and try again")
		},
	})
}
