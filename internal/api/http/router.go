package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/minijira/issue-tracker/internal/api/http/handlers"
	"github.com/minijira/issue-tracker/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Projects       *handlers.ProjectsHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api")
	api.Get("/health", cfg.Health.API)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	requireAuth := cfg.AuthMiddleware.Handle

	users := api.Group("/users", requireAuth)
	users.Get("/", cfg.Users.ListUsers)

	projects := api.Group("/projects", requireAuth)
	projects.Get("/", cfg.Projects.ListProjects)
	projects.Post("/", cfg.Projects.CreateProject)
	projects.Patch("/:id", cfg.Projects.RenameProject)
	projects.Delete("/:id", cfg.Projects.DeleteProject)

	tickets := api.Group("/tickets", requireAuth)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)
}
