package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"rsvp.link/configs/configslog"
	"rsvp.link/models"
	"rsvp.link/services"
)

// InviteHandler serves the public guest flow: view a tokenized
// invitation, accept, decline, reconsider. No authentication; the token
// is the capability.
type InviteHandler struct {
	invitationService services.IInvitationService
	configService     services.IConfigService
}

func NewInviteHandler(invitationService services.IInvitationService, configService services.IConfigService) *InviteHandler {
	return &InviteHandler{invitationService: invitationService, configService: configService}
}

// ShowInvitation renders the styled invitation page. Visiting counts as
// a view: the counter increments and a PENDING invitation opens.
func (h *InviteHandler) ShowInvitation(c *fiber.Ctx) error {
	token := c.Params("token")

	invitation, err := h.invitationService.VisitByToken(c.UserContext(), token, c.Get(fiber.HeaderUserAgent))
	if err != nil {
		if errors.Is(err, services.ErrInvitationNotFound) {
			return h.renderNotFound(c)
		}
		configslog.Log.Error("invitation page failed", zap.String("token", token), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).Render("errors/500", fiber.Map{"Title": "服务器错误"})
	}

	config, err := h.configService.Get(c.UserContext())
	if err != nil {
		configslog.Log.Error("system config read failed", zap.Error(err))
		config = &models.SystemConfig{ID: models.SystemConfigID}
	}

	// Style component key selects the template; each style ships its own.
	return c.Render("styles/"+invitation.Style.Component, fiber.Map{
		"Title":      invitation.GuestName,
		"Invitation": invitation,
		"Config":     config,
		"Language":   invitation.Language,
	})
}

type respondRequest struct {
	Status models.InvitationStatus `json:"status" form:"status"`
}

// Respond records the guest decision and reports the new state as JSON.
func (h *InviteHandler) Respond(c *fiber.Ctx) error {
	token := c.Params("token")

	var req respondRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	invitation, err := h.invitationService.Respond(c.UserContext(), token, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvitationNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "invitation not found"})
		case errors.Is(err, services.ErrInvalidResponseStatus):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrEventEnded):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		configslog.Log.Error("respond failed", zap.String("token", token), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not record response"})
	}

	result := fiber.Map{"status": invitation.Status}
	if invitation.Status == models.StatusAccepted {
		result["discount_code"] = invitation.DiscountCode
	}
	return c.JSON(result)
}

// Reconsider reopens an answered invitation so the guest can change
// their mind.
func (h *InviteHandler) Reconsider(c *fiber.Ctx) error {
	token := c.Params("token")

	invitation, err := h.invitationService.Reconsider(c.UserContext(), token)
	if err != nil {
		if errors.Is(err, services.ErrInvitationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "invitation not found"})
		}
		configslog.Log.Error("reconsider failed", zap.String("token", token), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not reopen invitation"})
	}
	return c.JSON(fiber.Map{"status": invitation.Status})
}

func (h *InviteHandler) renderNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{
		"Title": "邀请不存在",
	})
}
