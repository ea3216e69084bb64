package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contact-gateway/internal/api/http/handlers"
	"github.com/spec-kit/contact-gateway/internal/auth"
	"github.com/spec-kit/contact-gateway/internal/gateway"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Sessions       *handlers.SessionsHandler
	Contacts       *handlers.ContactsHandler
	Tickets        *handlers.TicketsHandler
	Gateway        *gateway.Handler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Sessions.Register)
	authGroup.Post("/login", cfg.Sessions.Login)

	// The realtime gateway authenticates on its own via the connect-time
	// token, not through the REST bearer middleware.
	app.Get("/ws", gateway.UpgradeRequired, cfg.Gateway.Handle())

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	contactGroup := protected.Group("/contacts")
	contactGroup.Get("/", cfg.Contacts.List)
	contactGroup.Post("/", cfg.Contacts.Create)
	contactGroup.Delete("/", cfg.Contacts.DeleteAll)
	contactGroup.Get("/:id", cfg.Contacts.Show)
	contactGroup.Put("/:id", cfg.Contacts.Update)
	contactGroup.Delete("/:id", cfg.Contacts.Delete)

	ticketGroup := protected.Group("/tickets")
	ticketGroup.Get("/", cfg.Tickets.ListByStatus)
	ticketGroup.Post("/", cfg.Tickets.Create)
	ticketGroup.Put("/:id/status", cfg.Tickets.UpdateStatus)
}
