package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"rsvp.link/configs/configslog"
	"rsvp.link/middlewares"
	"rsvp.link/models"
	"rsvp.link/pkg/sessiontoken"
	"rsvp.link/services"
)

// AuthHandler serves the login page and manages the session cookie.
type AuthHandler struct {
	authService  services.IAuthService
	codec        *sessiontoken.Codec
	secureCookie bool
}

func NewAuthHandler(authService services.IAuthService, codec *sessiontoken.Codec, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, codec: codec, secureCookie: secureCookie}
}

// ShowLogin renders the login form.
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	return c.Render("auth/login", fiber.Map{"Title": "登录"})
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Login verifies credentials and sets the signed session cookie
// (httpOnly, SameSite Lax, secure in production, 7-day expiry).
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return h.loginFailed(c, "请输入用户名和密码")
	}

	user, err := h.authService.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) || errors.Is(err, services.ErrUserInactive) {
			return h.loginFailed(c, err.Error())
		}
		configslog.Log.Error("login failed unexpectedly", zap.String("username", req.Username), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).Render("errors/500", fiber.Map{"Title": "服务器错误"})
	}

	token, err := h.codec.Encrypt(sessiontoken.SessionUser{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
		Name:     user.Name,
	})
	if err != nil {
		configslog.Log.Error("session token issue failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).Render("errors/500", fiber.Map{"Title": "服务器错误"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     middlewares.SessionCookieName,
		Value:    token,
		Expires:  time.Now().Add(sessiontoken.TTL),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})

	if user.Role == models.RoleAdmin {
		return c.Redirect("/admin", fiber.StatusFound)
	}
	return c.Redirect("/dashboard", fiber.StatusFound)
}

// Logout clears the cookie and returns to the login page.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middlewares.SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return c.Redirect("/login", fiber.StatusFound)
}

func (h *AuthHandler) loginFailed(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).Render("auth/login", fiber.Map{
		"Title": "登录",
		"Error": message,
	})
}
