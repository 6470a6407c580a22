package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"rsvp.link/models"
)

// INotificationLogRepository is the append-only webhook audit trail.
type INotificationLogRepository interface {
	Create(ctx context.Context, log *models.NotificationLog) error
	FindRecent(ctx context.Context, limit int) ([]models.NotificationLog, error)
	CountByInvitation(ctx context.Context, invitationID uint) (int64, error)
}

type NotificationLogRepository struct {
	db *gorm.DB
}

func NewNotificationLogRepository(db *gorm.DB) INotificationLogRepository {
	return &NotificationLogRepository{db: db}
}

func (r *NotificationLogRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func (r *NotificationLogRepository) Create(ctx context.Context, log *models.NotificationLog) error {
	if log == nil {
		return errors.New("notification log must not be nil")
	}
	return r.getDB(ctx).Create(log).Error
}

func (r *NotificationLogRepository) FindRecent(ctx context.Context, limit int) ([]models.NotificationLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var logs []models.NotificationLog
	err := r.getDB(ctx).Order("created_at desc").Limit(limit).Find(&logs).Error
	return logs, err
}

func (r *NotificationLogRepository) CountByInvitation(ctx context.Context, invitationID uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.NotificationLog{}).
		Where("invitation_id = ?", invitationID).Count(&count).Error
	return count, err
}

var _ INotificationLogRepository = (*NotificationLogRepository)(nil)
