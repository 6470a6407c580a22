package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rsvp.link/configs/configslog"
	"rsvp.link/models"
	"rsvp.link/repositories"
)

// ConfigServiceError is the typed error family of this service.
type ConfigServiceError string

func (e ConfigServiceError) Error() string { return string(e) }

const (
	ErrConfigInvalidInput ConfigServiceError = "invalid system config input"
)

// UpdateConfigInput carries the admin-editable event settings.
type UpdateConfigInput struct {
	EventTime    *time.Time `json:"event_time" form:"event_time"`
	EventEndTime *time.Time `json:"event_end_time" form:"event_end_time"`
	MeetingLink  string     `json:"meeting_link" form:"meeting_link"`
	WecomWebhook string     `json:"wecom_webhook" form:"wecom_webhook"`
}

// IConfigService reads and upserts the singleton system configuration.
type IConfigService interface {
	Get(ctx context.Context) (*models.SystemConfig, error)
	Upsert(ctx context.Context, adminUserID uint, input UpdateConfigInput) (*models.SystemConfig, error)
}

type ConfigService struct {
	repo repositories.ISystemConfigRepository
}

func NewConfigService(repo repositories.ISystemConfigRepository) IConfigService {
	return &ConfigService{repo: repo}
}

// Get returns the config row, or an empty default when none was saved yet.
func (s *ConfigService) Get(ctx context.Context) (*models.SystemConfig, error) {
	config, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return &models.SystemConfig{ID: models.SystemConfigID}, nil
		}
		return nil, err
	}
	return config, nil
}

func (s *ConfigService) Upsert(ctx context.Context, adminUserID uint, input UpdateConfigInput) (*models.SystemConfig, error) {
	if input.EventTime != nil && input.EventEndTime != nil && input.EventEndTime.Before(*input.EventTime) {
		return nil, fmt.Errorf("%w: event end before event start", ErrConfigInvalidInput)
	}

	config := &models.SystemConfig{
		ID:           models.SystemConfigID,
		EventTime:    input.EventTime,
		EventEndTime: input.EventEndTime,
		MeetingLink:  input.MeetingLink,
		WecomWebhook: input.WecomWebhook,
	}
	if err := s.repo.Upsert(ctx, config); err != nil {
		configslog.SLog.Errorf("system config upsert failed: %v", err)
		return nil, err
	}
	configslog.SLog.Infof("system config updated (by admin %d)", adminUserID)
	return config, nil
}

var _ IConfigService = (*ConfigService)(nil)
