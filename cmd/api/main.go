package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/courtline/court-booking/internal/api/dto"
	httptransport "github.com/courtline/court-booking/internal/api/http"
	"github.com/courtline/court-booking/internal/api/http/handlers"
	"github.com/courtline/court-booking/internal/auth"
	"github.com/courtline/court-booking/internal/config"
	"github.com/courtline/court-booking/internal/events"
	"github.com/courtline/court-booking/internal/observability"
	"github.com/courtline/court-booking/internal/persistence"
	"github.com/courtline/court-booking/internal/repository"
	"github.com/courtline/court-booking/internal/service"
	"github.com/courtline/court-booking/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	dispatcher := events.NewInMemoryDispatcher()
	stopNotifications := worker.StartNotificationWorker(cfg.Events, dispatcher, logger)

	bookingService := service.NewBookingService(service.BookingDependencies{
		Store:      repository.NewStore(pg.PoolHandle()),
		Cache:      repository.NewAvailabilityCache(redis.Client, cfg.Redis.CacheTTL()),
		Registry:   service.NewUserRegistry(),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
		Location:   cfg.App.Location(),
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	if tokens == nil {
		logger.Info("AUTH_JWT_SECRET not provided; identity tokens disabled")
	}

	rateLimiter := httptransport.NewRateLimiter(cfg.RateLimit.BookingsPerMinute, 5*time.Minute)
	defer rateLimiter.Stop()

	validator := dto.NewValidator()

	var readinessRedis handlers.Pinger
	if redis.Enabled() {
		readinessRedis = redis
	}

	routes := httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, readinessRedis),
		Bookings:       handlers.NewBookingsHandler(bookingService, validator),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		RateLimiter:    rateLimiter,
		Metrics:        metrics,
	}
	if tokens != nil && cfg.Auth.IdentityBootstrapSecret != "" {
		routes.Identity = handlers.NewIdentityHandler(tokens, validator, cfg.Auth.IdentityBootstrapSecret)
	} else {
		logger.Info("identity endpoint disabled; AUTH_JWT_SECRET and AUTH_IDENTITY_BOOTSTRAP_SECRET are both required")
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout(), cfg.App.CORSAllowOrigins)
	httptransport.RegisterRoutes(app, routes)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := stopNotifications(); err != nil {
		logger.Warn("closing event sink", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
