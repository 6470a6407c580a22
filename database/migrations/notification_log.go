package migrations

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rsvp.link/configs/configslog"
	"rsvp.link/models"
)

func MigrateNotificationLogsTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating notification_logs table...")
	if err := db.AutoMigrate(&models.NotificationLog{}); err != nil {
		configslog.Log.Error("Failed to migrate notification_logs table", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Notification_logs table migrated successfully")
	return nil
}
