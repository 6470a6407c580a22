package routes

import (
	"github.com/gofiber/fiber/v2"

	api_handlers "rsvp.link/handlers/api"
	invite_handlers "rsvp.link/handlers/invite"
	"rsvp.link/middlewares"
)

// registerInviteRoutes is the public guest surface. The unique token is
// the only credential; no session is required.
func registerInviteRoutes(app *fiber.App, h *invite_handlers.InviteHandler) {
	group := app.Group("/invite")
	group.Get("/:token", h.ShowInvitation)
	group.Post("/:token/respond", h.Respond)
	group.Post("/:token/reconsider", h.Reconsider)
}

// registerAPIRoutes is the staff JSON API (any authenticated role).
func registerAPIRoutes(app *fiber.App, h *api_handlers.QRHandler) {
	group := app.Group("/api")
	group.Use(middlewares.RequireAuth)
	group.Get("/qr/:token", h.GetQR)
}
