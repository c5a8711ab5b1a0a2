package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ericlong128/reimbursement-service/internal/api/http/handlers"
	"github.com/ericlong128/reimbursement-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	users := app.Group("/users")
	users.Post("/register", cfg.Users.Register)
	users.Post("/login", cfg.Users.Login)
	users.Put("/password", cfg.AuthMiddleware.Handle, cfg.Users.UpdatePassword)
	users.Put("/role", cfg.AuthMiddleware.Handle, cfg.Users.UpdateRole)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Put("/update", cfg.Tickets.UpdateTicket)
	tickets.Get("/:status", cfg.Tickets.ListByStatus)
}
