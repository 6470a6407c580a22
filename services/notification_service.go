package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"rsvp.link/configs/configslog"
	"rsvp.link/models"
	"rsvp.link/repositories"
)

const webhookTimeout = 10 * time.Second

// INotificationService delivers guest response notifications to the
// configured WeCom webhook and records every attempt.
type INotificationService interface {
	NotifyResponse(ctx context.Context, invitation *models.Invitation, status models.InvitationStatus) error
}

// NotificationService posts a markdown message to the webhook from
// SystemConfig. Best effort: a failed delivery is logged, never
// propagated to the guest-facing caller.
type NotificationService struct {
	configRepo repositories.ISystemConfigRepository
	logRepo    repositories.INotificationLogRepository
	client     *resty.Client
}

// NewNotificationService wires the dispatcher with an explicit timeout.
// The webhook call is awaited inside the respond request, so the timeout
// bounds guest-facing latency.
func NewNotificationService(configRepo repositories.ISystemConfigRepository, logRepo repositories.INotificationLogRepository) INotificationService {
	return &NotificationService{
		configRepo: configRepo,
		logRepo:    logRepo,
		client:     resty.New().SetTimeout(webhookTimeout),
	}
}

type wecomMessage struct {
	MsgType  string `json:"msgtype"`
	Markdown struct {
		Content string `json:"content"`
	} `json:"markdown"`
}

// NotifyResponse sends one notification for an accept/decline and writes
// exactly one NotificationLog row, success or not. The returned error is
// informational; callers must not fail the parent status update on it.
func (s *NotificationService) NotifyResponse(ctx context.Context, invitation *models.Invitation, status models.InvitationStatus) error {
	entry := models.NotificationLog{
		InvitationID: invitation.ID,
		GuestName:    invitation.GuestName,
		Status:       status,
	}

	config, err := s.configRepo.Get(ctx)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		entry.ErrorMessage = "system config unavailable: " + err.Error()
		s.record(ctx, &entry)
		return err
	}
	if config == nil || config.WecomWebhook == "" {
		entry.ErrorMessage = "no webhook configured"
		s.record(ctx, &entry)
		return errors.New("no webhook configured")
	}

	msg := wecomMessage{MsgType: "markdown"}
	msg.Markdown.Content = composeResponseMessage(invitation, status)

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(msg).
		Post(config.WecomWebhook)
	if err != nil {
		entry.ErrorMessage = err.Error()
		s.record(ctx, &entry)
		configslog.Log.Warn("webhook delivery failed",
			zap.Uint("invitation_id", invitation.ID), zap.Error(err))
		return err
	}

	httpStatus := resp.StatusCode()
	entry.HTTPStatus = &httpStatus
	if httpStatus >= 200 && httpStatus < 300 {
		entry.Success = true
	} else {
		entry.ErrorMessage = fmt.Sprintf("webhook returned HTTP %d", httpStatus)
		configslog.Log.Warn("webhook rejected notification",
			zap.Uint("invitation_id", invitation.ID), zap.Int("http_status", httpStatus))
	}
	s.record(ctx, &entry)
	if !entry.Success {
		return errors.New(entry.ErrorMessage)
	}
	return nil
}

func (s *NotificationService) record(ctx context.Context, entry *models.NotificationLog) {
	if err := s.logRepo.Create(ctx, entry); err != nil {
		configslog.Log.Error("notification log write failed",
			zap.Uint("invitation_id", entry.InvitationID), zap.Error(err))
	}
}

func composeResponseMessage(invitation *models.Invitation, status models.InvitationStatus) string {
	var verdict string
	switch status {
	case models.StatusAccepted:
		verdict = "**已接受邀请** ✅"
	case models.StatusDeclined:
		verdict = "**已婉拒邀请** ❌"
	default:
		verdict = string(status)
	}

	content := fmt.Sprintf("### 邀请回执\n> 宾客：**%s**\n> 状态：%s", invitation.GuestName, verdict)
	if status == models.StatusAccepted && invitation.DiscountCode != "" {
		content += fmt.Sprintf("\n> 优惠码：`%s`", invitation.DiscountCode)
	}
	if invitation.User.WechatID != "" {
		content += fmt.Sprintf("\n<@%s>", invitation.User.WechatID)
	}
	return content
}

var _ INotificationService = (*NotificationService)(nil)
