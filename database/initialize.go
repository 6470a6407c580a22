package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rsvp.link/configs/configslog"
	"rsvp.link/database/migrations"
	"rsvp.link/database/seeders"
)

// Initialize runs migrations and seeders inside one transaction,
// depending on the flags.
func Initialize(db *gorm.DB, migrate bool, seed bool) {
	if !migrate && !seed {
		configslog.SLog.Info("Neither migrate nor seed requested, nothing to do.")
		return
	}

	tx := db.Begin()
	if tx.Error != nil {
		configslog.Log.Fatal("Could not begin database transaction", zap.Error(tx.Error))
		return
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			configslog.Log.Fatal("Database initialization panicked", zap.Any("panic_info", r))
		}
	}()

	configslog.SLog.Info("Database initialization starting...")

	if migrate {
		configslog.SLog.Info("Running migrations...")
		if err := RunMigrationsInOrder(tx); err != nil {
			configslog.Log.Error("Migration failed, rolling back", zap.Error(err))
			tx.Rollback()
			return
		}
		configslog.SLog.Info("Migrations finished.")
	}

	if seed {
		configslog.SLog.Info("Running seeders...")
		if err := RunSeeders(tx); err != nil {
			configslog.Log.Error("Seeding failed, rolling back", zap.Error(err))
			tx.Rollback()
			return
		}
		configslog.SLog.Info("Seeders finished.")
	}

	if err := tx.Commit().Error; err != nil {
		configslog.Log.Error("Commit failed", zap.Error(err))
		return
	}
	configslog.SLog.Info("Database initialization completed successfully")
}

// RunMigrationsInOrder migrates tables respecting FK dependencies:
// users and styles before invitations.
func RunMigrationsInOrder(db *gorm.DB) error {
	steps := []struct {
		name string
		run  func(*gorm.DB) error
	}{
		{"users", migrations.MigrateUsersTable},
		{"styles", migrations.MigrateStylesTable},
		{"invitations", migrations.MigrateInvitationsTable},
		{"system_configs", migrations.MigrateSystemConfigTable},
		{"notification_logs", migrations.MigrateNotificationLogsTable},
	}
	for _, step := range steps {
		configslog.SLog.Infof(" -> Migrating %s...", step.name)
		if err := step.run(db); err != nil {
			return err
		}
	}
	configslog.SLog.Info("All migrations ran successfully.")
	return nil
}

// RunSeeders inserts the baseline data set: admin account, built-in
// styles, empty config row. All idempotent.
func RunSeeders(db *gorm.DB) error {
	if err := seeders.SeedAdminUser(db); err != nil {
		return err
	}
	if err := seeders.SeedStyles(db); err != nil {
		return err
	}
	if err := seeders.SeedSystemConfig(db); err != nil {
		return err
	}
	configslog.SLog.Info("All seeders ran successfully.")
	return nil
}
