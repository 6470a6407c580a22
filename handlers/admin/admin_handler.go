package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"rsvp.link/configs/configslog"
	"rsvp.link/middlewares"
	"rsvp.link/pkg/queryparams"
	"rsvp.link/repositories"
	"rsvp.link/services"
)

// AdminHandler is the admin area: staff accounts, styles, event
// configuration and the webhook audit trail.
type AdminHandler struct {
	userService       services.IUserService
	styleService      services.IStyleService
	configService     services.IConfigService
	invitationService services.IInvitationService
	logRepo           repositories.INotificationLogRepository
}

func NewAdminHandler(
	userService services.IUserService,
	styleService services.IStyleService,
	configService services.IConfigService,
	invitationService services.IInvitationService,
	logRepo repositories.INotificationLogRepository,
) *AdminHandler {
	return &AdminHandler{
		userService:       userService,
		styleService:      styleService,
		configService:     configService,
		invitationService: invitationService,
		logRepo:           logRepo,
	}
}

// Home renders the admin shell with global stats.
func (h *AdminHandler) Home(c *fiber.Ctx) error {
	user, _ := middlewares.CurrentUser(c)
	stats, err := h.invitationService.GlobalStats(c.UserContext())
	if err != nil {
		configslog.Log.Error("global stats failed", zap.Error(err))
		stats = &services.InvitationStats{}
	}
	return c.Render("admin/home", fiber.Map{
		"Title": "管理后台",
		"User":  user,
		"Stats": stats,
	})
}

// ListInvitations returns all invitations, paginated (admin overview).
func (h *AdminHandler) ListInvitations(c *fiber.Ctx) error {
	params := queryparams.DefaultListParams("created_at")
	if err := c.QueryParser(&params); err != nil {
		params = queryparams.DefaultListParams("created_at")
	}
	params.SortBy = "created_at"

	result, err := h.invitationService.ListAll(c.UserContext(), params)
	if err != nil {
		configslog.Log.Error("admin invitation list failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not list invitations"})
	}
	return c.JSON(result)
}

// --- users ---

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	params := queryparams.DefaultListParams("created_at")
	if err := c.QueryParser(&params); err != nil {
		params = queryparams.DefaultListParams("created_at")
	}
	params.SortBy = "created_at"

	result, err := h.userService.List(c.UserContext(), params)
	if err != nil {
		configslog.Log.Error("user list failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not list users"})
	}
	return c.JSON(result)
}

func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	admin, _ := middlewares.CurrentUser(c)

	var input services.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	user, err := h.userService.Create(c.UserContext(), admin.ID, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrUserInvalidInput), errors.Is(err, services.ErrPasswordTooShort):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		configslog.Log.Error("user create failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not create user"})
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

type setActiveRequest struct {
	Active bool `json:"active" form:"active"`
}

func (h *AdminHandler) SetUserActive(c *fiber.Ctx) error {
	admin, _ := middlewares.CurrentUser(c)
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	var req setActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.userService.SetActive(c.UserContext(), admin.ID, uint(id), req.Active); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		if errors.Is(err, services.ErrLastAdmin) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		configslog.Log.Error("user toggle failed", zap.Int("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "operation failed"})
	}
	return c.JSON(fiber.Map{"message": "updated"})
}

type resetPasswordRequest struct {
	Password string `json:"password" form:"password"`
}

func (h *AdminHandler) ResetUserPassword(c *fiber.Ctx) error {
	admin, _ := middlewares.CurrentUser(c)
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.userService.ResetPassword(c.UserContext(), admin.ID, uint(id), req.Password); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		case errors.Is(err, services.ErrPasswordTooShort):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		configslog.Log.Error("password reset failed", zap.Int("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "operation failed"})
	}
	return c.JSON(fiber.Map{"message": "password reset"})
}

// --- styles ---

func (h *AdminHandler) ListStyles(c *fiber.Ctx) error {
	styles, err := h.styleService.ListWithUsage(c.UserContext())
	if err != nil {
		configslog.Log.Error("style list failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not list styles"})
	}
	return c.JSON(styles)
}

func (h *AdminHandler) SetStyleActive(c *fiber.Ctx) error {
	admin, _ := middlewares.CurrentUser(c)
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid style id"})
	}

	var req setActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.styleService.SetActive(c.UserContext(), admin.ID, uint(id), req.Active); err != nil {
		if errors.Is(err, services.ErrStyleNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "style not found"})
		}
		configslog.Log.Error("style toggle failed", zap.Int("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "operation failed"})
	}
	return c.JSON(fiber.Map{"message": "updated"})
}

// --- system config ---

func (h *AdminHandler) GetConfig(c *fiber.Ctx) error {
	config, err := h.configService.Get(c.UserContext())
	if err != nil {
		configslog.Log.Error("config read failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not read config"})
	}
	return c.JSON(config)
}

func (h *AdminHandler) UpdateConfig(c *fiber.Ctx) error {
	admin, _ := middlewares.CurrentUser(c)

	var input services.UpdateConfigInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	config, err := h.configService.Upsert(c.UserContext(), admin.ID, input)
	if err != nil {
		if errors.Is(err, services.ErrConfigInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		configslog.Log.Error("config upsert failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not save config"})
	}
	return c.JSON(config)
}

// --- notification audit ---

func (h *AdminHandler) ListNotificationLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	logs, err := h.logRepo.FindRecent(c.UserContext(), limit)
	if err != nil {
		configslog.Log.Error("notification log list failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not list notification logs"})
	}
	return c.JSON(logs)
}
