package seeders

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"rsvp.link/configs/configslog"
	"rsvp.link/models"
)

// SeedStyles inserts the built-in invitation styles. Idempotent: styles
// already present by name are left alone.
func SeedStyles(db *gorm.DB) error {
	stylesToSeed := []models.Style{
		{Name: "经典红", Component: models.StyleComponentClassic, IsActive: true, PreviewURL: "/static/previews/classic.png"},
		{Name: "简约雅致", Component: models.StyleComponentElegant, IsActive: true, PreviewURL: "/static/previews/elegant.png"},
		{Name: "节日庆典", Component: models.StyleComponentFestival, IsActive: true, PreviewURL: "/static/previews/festival.png"},
	}

	var createdCount int64
	var errorOccurred bool

	configslog.SLog.Info("Style seed starting...")

	for _, styleToSeed := range stylesToSeed {
		var existing models.Style
		result := db.Where("name = ?", styleToSeed.Name).First(&existing)

		if result.Error == nil {
			configslog.SLog.Debugf("Style %q already exists, skipping.", styleToSeed.Name)
			continue
		} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			configslog.Log.Error("Style lookup failed during seed",
				zap.String("style_name", styleToSeed.Name),
				zap.Error(result.Error),
			)
			errorOccurred = true
			continue
		}

		if err := db.Create(&styleToSeed).Error; err != nil {
			configslog.Log.Error("Style could not be created",
				zap.String("style_name", styleToSeed.Name),
				zap.Error(err),
			)
			errorOccurred = true
			continue
		}
		configslog.SLog.Infof("Style %q created (ID: %d).", styleToSeed.Name, styleToSeed.ID)
		createdCount++
	}

	if createdCount > 0 {
		configslog.SLog.Infof("%d new styles seeded.", createdCount)
	} else if !errorOccurred {
		configslog.SLog.Info("All styles already present, nothing to seed.")
	}

	if errorOccurred {
		return errors.New("at least one style failed to seed")
	}
	return nil
}
