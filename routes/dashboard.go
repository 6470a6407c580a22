package routes

import (
	"github.com/gofiber/fiber/v2"

	dashboard_handlers "rsvp.link/handlers/dashboard"
	"rsvp.link/middlewares"
)

func registerDashboardRoutes(app *fiber.App, h *dashboard_handlers.DashboardHandler) {
	group := app.Group("/dashboard")
	group.Use(middlewares.RequireAuth)

	group.Get("/", h.Home)
	group.Get("/invitations", h.ListInvitations)
	group.Post("/invitations", h.CreateInvitation)
	group.Put("/invitations/:id", h.UpdateInvitation)
	group.Delete("/invitations/:id", h.DeleteInvitation)
}
