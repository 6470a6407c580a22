package seeders

import (
	"errors"
	"os"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"rsvp.link/configs/configslog"
	"rsvp.link/models"
)

const defaultAdminUsername = "admin"

// SeedAdminUser makes sure one active admin account exists. The initial
// password comes from ADMIN_PASSWORD; the account should change it
// right after first login.
func SeedAdminUser(db *gorm.DB) error {
	var existing models.User
	result := db.Where("username = ?", defaultAdminUsername).First(&existing)
	if result.Error == nil {
		configslog.SLog.Debugf("Admin user %q already exists, skipping.", defaultAdminUsername)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		configslog.Log.Error("Admin user lookup failed", zap.Error(result.Error))
		return result.Error
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		return errors.New("ADMIN_PASSWORD must be set to seed the admin user")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username: defaultAdminUsername,
		Password: string(hash),
		Role:     models.RoleAdmin,
		Name:     "系统管理员",
		IsActive: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		configslog.Log.Error("Admin user could not be created", zap.Error(err))
		return err
	}
	configslog.SLog.Infof("Admin user %q created (ID: %d).", admin.Username, admin.ID)
	return nil
}
