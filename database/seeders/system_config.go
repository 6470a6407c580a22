package seeders

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"rsvp.link/configs/configslog"
	"rsvp.link/models"
)

// SeedSystemConfig makes sure the singleton config row exists so admin
// screens always have something to edit.
func SeedSystemConfig(db *gorm.DB) error {
	var existing models.SystemConfig
	result := db.Where("id = ?", models.SystemConfigID).First(&existing)
	if result.Error == nil {
		configslog.SLog.Debug("System config row already exists, skipping.")
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		configslog.Log.Error("System config lookup failed", zap.Error(result.Error))
		return result.Error
	}

	config := models.SystemConfig{ID: models.SystemConfigID}
	if err := db.Create(&config).Error; err != nil {
		configslog.Log.Error("System config row could not be created", zap.Error(err))
		return err
	}
	configslog.SLog.Info("Empty system config row created.")
	return nil
}
