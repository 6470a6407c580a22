package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"rsvp.link/models"
	"rsvp.link/pkg/sessiontoken"
)

// SessionCookieName is the auth cookie set at login.
const SessionCookieName = "session"

const localsSessionUser = "sessionUser"

// Session decodes the session cookie and stores the identity in Locals.
// It never rejects on its own; a bad or absent cookie simply leaves the
// request anonymous.
func Session(codec *sessiontoken.Codec) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw := c.Cookies(SessionCookieName); raw != "" {
			if user, err := codec.Decrypt(raw); err == nil {
				c.Locals(localsSessionUser, user)
			}
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated identity, if any.
func CurrentUser(c *fiber.Ctx) (*sessiontoken.SessionUser, bool) {
	user, ok := c.Locals(localsSessionUser).(*sessiontoken.SessionUser)
	return user, ok && user != nil
}

// RequireAuth gates the protected areas. Browser requests go to the
// login page; API requests get a bare 401.
func RequireAuth(c *fiber.Ctx) error {
	if _, ok := CurrentUser(c); ok {
		return c.Next()
	}
	if wantsJSON(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}
	return c.Redirect("/login", fiber.StatusFound)
}

// RequireAdmin sends authenticated non-admins back to their dashboard,
// regardless of content negotiation. Must run after RequireAuth.
func RequireAdmin(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.Redirect("/login", fiber.StatusFound)
	}
	if user.Role != models.RoleAdmin {
		return c.Redirect("/dashboard", fiber.StatusFound)
	}
	return c.Next()
}

// RedirectIfAuthenticated keeps logged-in users off the login page.
func RedirectIfAuthenticated(c *fiber.Ctx) error {
	if user, ok := CurrentUser(c); ok {
		if user.Role == models.RoleAdmin {
			return c.Redirect("/admin", fiber.StatusFound)
		}
		return c.Redirect("/dashboard", fiber.StatusFound)
	}
	return c.Next()
}

func wantsJSON(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/") ||
		strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
}
