package routes

import (
	"github.com/gofiber/fiber/v2"

	auth_handlers "rsvp.link/handlers/auth"
	"rsvp.link/middlewares"
)

func registerAuthRoutes(app *fiber.App, h *auth_handlers.AuthHandler) {
	app.Get("/login", middlewares.RedirectIfAuthenticated, h.ShowLogin)
	app.Post("/login", middlewares.RedirectIfAuthenticated, h.Login)
	app.Post("/logout", h.Logout)
	app.Get("/logout", h.Logout)
}
