// @title        StaFull Auth Gateway API
// @version      1.0
// @description  Session, driver portal and health endpoints of the StaFull auth gateway.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/stafull/auth-portal/internal/api"
	"github.com/stafull/auth-portal/internal/api/middleware"
	"github.com/stafull/auth-portal/internal/core/service"
	"github.com/stafull/auth-portal/internal/infrastructure/authapi"
	mongodb "github.com/stafull/auth-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/stafull/auth-portal/internal/infrastructure/db/redis"
	"github.com/stafull/auth-portal/internal/infrastructure/http/handlers"
	"github.com/stafull/auth-portal/internal/infrastructure/queue"
	"github.com/stafull/auth-portal/internal/pkg/config"
	"github.com/stafull/auth-portal/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	envLoaded := loadLocalEnv()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "stafull-auth",
		Env:     cfg.Env,
	})
	if !envLoaded {
		log.Debug().Msg("no .env file found; relying on existing environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to create MongoDB indexes")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer rdb.Close()

	// --- Services ---
	authClient := authapi.New(authapi.Config{BaseURL: cfg.AuthAPI.BaseURL, Timeout: cfg.AuthAPI.Timeout}, logger.Component("authapi"))
	gateway := service.NewAuthGateway(
		authClient,
		redisdb.NewSessionStore(rdb),
		redisdb.NewSubmitGuard(rdb, cfg.Session.SubmitWindow),
		cfg.PortalRoutes(),
		cfg.Session.TTL,
		logger.Component("auth"),
	)
	drivers := service.NewDriverService(
		redisdb.NewDriverStateStore(rdb),
		mongodb.NewDriverEventRepository(db),
		cfg.ModeThresholds(),
		logger.Component("driver"),
	)

	dispatcher := queue.NewDispatcher(cfg.Dispatcher.Workers, cfg.Dispatcher.QueueSize, drivers, logger.Component("telemetry"))
	dispatcher.Start(context.Background())

	secret := cfg.Session.Secret
	if secret == "" {
		// Only reachable in development; sessions do not survive a restart.
		secret = uuid.NewString()
		log.Warn().Msg("SESSION_SECRET not set; using an ephemeral cookie key")
	}

	e, err := api.NewRouter(api.Dependencies{
		Auth:       gateway,
		Driver:     drivers,
		Dispatcher: dispatcher,
		Health: handlers.NewHealthDependenciesHandler(
			handlers.Dependency{Name: "mongodb", Pinger: mongodb.NewPinger(mongoClient)},
			handlers.Dependency{Name: "redis", Pinger: redisdb.NewPinger(rdb)},
			handlers.Dependency{Name: "auth_api", Pinger: authClient, Optional: true},
		),
		Session: middleware.SessionConfig{
			Secret:     secret,
			CookieName: cfg.Session.CookieName,
			Secure:     cfg.Session.Secure,
			TTL:        cfg.Session.TTL,
		},
		WarnBefore: cfg.Session.WarnBefore,
		RateLimit: api.RateLimit{
			PerMinute: cfg.RateLimit.PerMinute,
			Burst:     cfg.RateLimit.Burst,
			ExpiresIn: cfg.RateLimit.ExpiresIn,
		},
		Log: logger.Component("http"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("auth_api", cfg.AuthAPI.BaseURL).
			Int("telemetry_workers", cfg.Dispatcher.Workers).
			Msg("auth gateway listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}

	// No handler can enqueue any more; flush what was accepted.
	dispatcher.Stop()
	dispatcher.Wait()
}

func loadLocalEnv() bool {
	return godotenv.Load() == nil
}
