package routes

import (
	"github.com/gofiber/fiber/v2"

	admin_handlers "rsvp.link/handlers/admin"
	"rsvp.link/middlewares"
)

func registerAdminRoutes(app *fiber.App, h *admin_handlers.AdminHandler) {
	group := app.Group("/admin")
	group.Use(middlewares.RequireAuth, middlewares.RequireAdmin)

	group.Get("/", h.Home)
	group.Get("/invitations", h.ListInvitations)

	group.Get("/users", h.ListUsers)
	group.Post("/users", h.CreateUser)
	group.Patch("/users/:id/active", h.SetUserActive)
	group.Post("/users/:id/password", h.ResetUserPassword)

	group.Get("/styles", h.ListStyles)
	group.Patch("/styles/:id/active", h.SetStyleActive)

	group.Get("/config", h.GetConfig)
	group.Put("/config", h.UpdateConfig)

	group.Get("/notifications", h.ListNotificationLogs)
}
