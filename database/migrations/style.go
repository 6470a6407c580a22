package migrations

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rsvp.link/configs/configslog"
	"rsvp.link/models"
)

func MigrateStylesTable(db *gorm.DB) error {
	configslog.SLog.Info("Migrating styles table...")
	if err := db.AutoMigrate(&models.Style{}); err != nil {
		configslog.Log.Error("Failed to migrate styles table", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Styles table migrated successfully")
	return nil
}
