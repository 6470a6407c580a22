package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"rsvp.link/configs/configslog"
	"rsvp.link/services"
)

// QRHandler returns a scannable QR image for an invitation link. Staff
// only; any authenticated role may fetch it.
type QRHandler struct {
	invitationService services.IInvitationService
	baseURL           string
}

func NewQRHandler(invitationService services.IInvitationService, baseURL string) *QRHandler {
	return &QRHandler{invitationService: invitationService, baseURL: baseURL}
}

// GetQR encodes the guest URL for a token as a PNG data URL.
// 404 for unknown tokens; the auth middleware already answered 401.
func (h *QRHandler) GetQR(c *fiber.Ctx) error {
	token := c.Params("token")

	invitation, err := h.invitationService.GetByToken(c.UserContext(), token)
	if err != nil {
		if errors.Is(err, services.ErrInvitationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "invitation not found"})
		}
		configslog.Log.Error("QR lookup failed", zap.String("token", token), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "QR generation failed"})
	}

	target := fmt.Sprintf("%s/invite/%s", h.baseURL, invitation.UniqueToken)
	png, err := qrcode.Encode(target, qrcode.Medium, 256)
	if err != nil {
		configslog.Log.Error("QR encode failed", zap.String("token", token), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "QR generation failed"})
	}

	return c.JSON(fiber.Map{
		"token":  invitation.UniqueToken,
		"url":    target,
		"qrcode": "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	})
}
