package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-service/internal/api/http/handlers"
	"github.com/spec-kit/queue-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Queue           *handlers.QueueHandler
	Auth            *handlers.AuthHandler
	StaffMiddleware *auth.StaffMiddleware
}

// RegisterRoutes wires HTTP routes. Kiosk routes are public; mutating staff
// operations sit behind the operator token.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/staff/login", cfg.Auth.Login)

	api := app.Group("/api")
	api.Post("/tickets", cfg.Queue.IssueTicket)
	api.Get("/queue/status", cfg.Queue.QueueStatus)
	api.Get("/queue/current", cfg.Queue.CurrentlyCalled)
	api.Get("/queue/history", cfg.Queue.TicketHistory)

	staff := api.Group("/queue", cfg.StaffMiddleware.Handle)
	staff.Post("/call-next", cfg.Queue.CallNext)
	staff.Post("/reset", cfg.Queue.ResetQueue)
}
