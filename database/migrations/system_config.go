package migrations

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rsvp.link/configs/configslog"
	"rsvp.link/models"
)

func MigrateSystemConfigTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating system_configs table...")
	if err := db.AutoMigrate(&models.SystemConfig{}); err != nil {
		configslog.Log.Error("Failed to migrate system_configs table", zap.Error(err))
		return err
	}
	configslog.SLog.Info("System_configs table migrated successfully")
	return nil
}
