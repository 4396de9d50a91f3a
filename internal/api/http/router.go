package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/courtline/court-booking/internal/api/http/handlers"
	"github.com/courtline/court-booking/internal/auth"
	"github.com/courtline/court-booking/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Bookings       *handlers.BookingsHandler
	Identity       *handlers.IdentityHandler
	AuthMiddleware *auth.AuthMiddleware
	RateLimiter    *RateLimiter
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authMiddleware := cfg.AuthMiddleware
	if authMiddleware == nil {
		authMiddleware = auth.NewAuthMiddleware(nil)
	}

	api := app.Group("/api", authMiddleware.Handle)
	api.Get("/slots", cfg.Bookings.Slots)
	api.Post("/book", cfg.RateLimiter.Middleware(), cfg.Bookings.Book)
	api.Get("/my-bookings", cfg.Bookings.MyBookings)
	api.Delete("/booking/:id", cfg.Bookings.Cancel)

	if cfg.Identity != nil {
		api.Post("/identity", cfg.Identity.Issue)
	}
}
