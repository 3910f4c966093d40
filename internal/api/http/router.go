package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/appdotbuilder/helpdesk-system/internal/api/http/handlers"
	"github.com/appdotbuilder/helpdesk-system/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")
	api.Post("/auth/token", cfg.Auth.IssueToken)

	protected := api.Group("", cfg.AuthMiddleware.Handle)

	users := protected.Group("/users")
	users.Post("", cfg.Users.Create)
	users.Get("", cfg.Users.List)
	users.Get("/:id", cfg.Users.Get)
	users.Patch("/:id", cfg.Users.Update)

	tickets := protected.Group("/tickets")
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Patch("/:id", cfg.Tickets.Update)
	tickets.Post("/:id/assign", cfg.Tickets.Assign)
	tickets.Post("/:id/transfer", cfg.Tickets.Transfer)
	tickets.Get("/:id/history", cfg.Tickets.History)

	reports := protected.Group("/reports")
	reports.Get("/dashboard", cfg.Reports.Dashboard)
	reports.Get("/dashboard/users/:id", cfg.Reports.UserDashboard)
	reports.Get("/monthly", cfg.Reports.Monthly)
	reports.Get("/workload", cfg.Reports.Workload)
	reports.Get("/issue-types", cfg.Reports.IssueTypes)
	reports.Get("/customers/frequent", cfg.Reports.FrequentCustomers)
	reports.Get("/team-performance", cfg.Reports.TeamPerformance)
}
