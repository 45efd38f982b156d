package db

import (
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/yasminey01/station-manager-portal-sub000/internal/config"
	"github.com/yasminey01/station-manager-portal-sub000/internal/models"
	"github.com/yasminey01/station-manager-portal-sub000/internal/utils"
)

// BootstrapAdmin creates the initial admin account on a fresh database when
// ADMIN_BOOTSTRAP_EMAIL and ADMIN_BOOTSTRAP_PASSWORD are both set. Existing
// accounts are never touched.
func BootstrapAdmin(database *gorm.DB, cfg config.Config) error {
	if cfg.AdminBootstrap == "" || cfg.AdminBootstrapPass == "" {
		return nil
	}

	normalizedEmail := strings.ToLower(strings.TrimSpace(cfg.AdminBootstrap))

	var existing models.User
	err := database.Where("email = ?", normalizedEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := utils.HashPassword(cfg.AdminBootstrapPass)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:        normalizedEmail,
		PasswordHash: passwordHash,
		Name:         "Administrator",
		Role:         "admin",
	}
	if err := database.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("bootstrapped admin account %s", normalizedEmail)
	return nil
}
