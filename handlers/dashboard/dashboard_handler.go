package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"rsvp.link/configs/configslog"
	"rsvp.link/middlewares"
	"rsvp.link/pkg/queryparams"
	"rsvp.link/services"
)

// DashboardHandler is the sales area: each user manages their own
// invitations. Admins pass through the same routes with full visibility
// enforced in the service layer.
type DashboardHandler struct {
	invitationService services.IInvitationService
	styleService      services.IStyleService
}

func NewDashboardHandler(invitationService services.IInvitationService, styleService services.IStyleService) *DashboardHandler {
	return &DashboardHandler{invitationService: invitationService, styleService: styleService}
}

// Home renders the dashboard shell with the owner's stats.
func (h *DashboardHandler) Home(c *fiber.Ctx) error {
	user, _ := middlewares.CurrentUser(c)
	stats, err := h.invitationService.StatsForUser(c.UserContext(), user.ID)
	if err != nil {
		configslog.Log.Error("dashboard stats failed", zap.Uint("user_id", user.ID), zap.Error(err))
		stats = &services.InvitationStats{}
	}
	styles, _ := h.styleService.ListActive(c.UserContext())
	return c.Render("dashboard/home", fiber.Map{
		"Title":  "我的邀请",
		"User":   user,
		"Stats":  stats,
		"Styles": styles,
	})
}

// ListInvitations returns the owner's invitations, paginated.
func (h *DashboardHandler) ListInvitations(c *fiber.Ctx) error {
	user, _ := middlewares.CurrentUser(c)

	params := queryparams.DefaultListParams("created_at")
	if err := c.QueryParser(&params); err != nil {
		params = queryparams.DefaultListParams("created_at")
	}
	params.SortBy = "created_at" // only sane sort column for this list

	result, err := h.invitationService.ListForUser(c.UserContext(), user.ID, params)
	if err != nil {
		configslog.Log.Error("invitation list failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not list invitations"})
	}
	return c.JSON(result)
}

// CreateInvitation creates a new invitation owned by the current user.
func (h *DashboardHandler) CreateInvitation(c *fiber.Ctx) error {
	user, _ := middlewares.CurrentUser(c)

	var input services.CreateInvitationInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	invitation, err := h.invitationService.Create(c.UserContext(), user.ID, input)
	if err != nil {
		if errors.Is(err, services.ErrInvInvalidInput) || errors.Is(err, services.ErrStyleNotAvailable) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		configslog.Log.Error("invitation create failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not create invitation"})
	}
	return c.Status(fiber.StatusCreated).JSON(invitation)
}

// UpdateInvitation edits guest name, language, style or note.
func (h *DashboardHandler) UpdateInvitation(c *fiber.Ctx) error {
	user, _ := middlewares.CurrentUser(c)
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid invitation id"})
	}

	var input services.UpdateInvitationInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.invitationService.Update(c.UserContext(), uint(id), user.ID, input); err != nil {
		return h.mutationError(c, err, uint(id))
	}
	return c.JSON(fiber.Map{"message": "updated"})
}

// DeleteInvitation soft-deletes an invitation, revoking its token.
func (h *DashboardHandler) DeleteInvitation(c *fiber.Ctx) error {
	user, _ := middlewares.CurrentUser(c)
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid invitation id"})
	}

	if err := h.invitationService.Delete(c.UserContext(), uint(id), user.ID); err != nil {
		return h.mutationError(c, err, uint(id))
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

func (h *DashboardHandler) mutationError(c *fiber.Ctx, err error, id uint) error {
	switch {
	case errors.Is(err, services.ErrInvitationNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "invitation not found"})
	case errors.Is(err, services.ErrInvitationForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvInvalidInput), errors.Is(err, services.ErrStyleNotAvailable):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	configslog.Log.Error("invitation mutation failed", zap.Uint("id", id), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "operation failed"})
}
