package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	recoverMiddleware "github.com/gofiber/fiber/v2/middleware/recover"

	admin_handlers "rsvp.link/handlers/admin"
	api_handlers "rsvp.link/handlers/api"
	auth_handlers "rsvp.link/handlers/auth"
	dashboard_handlers "rsvp.link/handlers/dashboard"
	invite_handlers "rsvp.link/handlers/invite"
	"rsvp.link/middlewares"
	"rsvp.link/models"
	"rsvp.link/pkg/sessiontoken"
)

// Handlers bundles the constructed handlers for route registration.
type Handlers struct {
	Auth      *auth_handlers.AuthHandler
	Invite    *invite_handlers.InviteHandler
	QR        *api_handlers.QRHandler
	Dashboard *dashboard_handlers.DashboardHandler
	Admin     *admin_handlers.AdminHandler
}

// SetupRoutes wires all middleware and route groups.
func SetupRoutes(app *fiber.App, codec *sessiontoken.Codec, h Handlers) {
	app.Use(recoverMiddleware.New())
	app.Use(logger.New())
	app.Use(middlewares.Session(codec))

	registerAuthRoutes(app, h.Auth)
	registerDashboardRoutes(app, h.Dashboard)
	registerAdminRoutes(app, h.Admin)
	registerAPIRoutes(app, h.QR)
	registerInviteRoutes(app, h.Invite)

	app.Get("/", rootRedirector)
	app.Use(notFoundHandler)
}

// rootRedirector sends visitors to their area: admins to /admin, sales
// to /dashboard, everyone else to the login page.
func rootRedirector(c *fiber.Ctx) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusFound)
	}
	if user.Role == models.RoleAdmin {
		return c.Redirect("/admin", fiber.StatusFound)
	}
	return c.Redirect("/dashboard", fiber.StatusFound)
}

// notFoundHandler catches everything unmatched, JSON or page depending
// on what the client accepts.
func notFoundHandler(c *fiber.Ctx) error {
	accepts := c.Accepts("text/html", "application/json")
	if accepts == "application/json" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}
	return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{"Title": "页面不存在"})
}
