package seeders

import (
	"fmt"

	"github.com/shashiranjanraj/cafe/app/models"
	"github.com/shashiranjanraj/cafe/config"
	"github.com/shashiranjanraj/cafe/pkg/auth"
	"gorm.io/gorm"
)

func init() {
	Register("admin user", SeedAdmin)
}

// SeedAdmin creates the back-office account from ADMIN_EMAIL and
// ADMIN_PASSWORD unless it already exists.
func SeedAdmin(db *gorm.DB) error {
	email := config.Get("ADMIN_EMAIL", "admin@cafe.local")
	password := config.Get("ADMIN_PASSWORD", "")
	if password == "" {
		return fmt.Errorf("ADMIN_PASSWORD is not set")
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return db.Create(&models.User{
		Role:     models.RoleAdmin,
		Nickname: "Admin",
		Email:    email,
		Password: hash,
	}).Error
}
