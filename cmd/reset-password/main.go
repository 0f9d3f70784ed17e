package main

import (
	"log"

	"fruitpos-backend/internal/config"
	"fruitpos-backend/internal/model"
	"fruitpos-backend/pkg/database"

	"golang.org/x/crypto/bcrypt"
)

// Ops tool: resets the seeded admin account's password to the configured
// ADMIN_PASSWORD. Useful when the shop locks itself out.
func main() {
	cfg := config.LoadConfig()
	db := database.ConnectDB(cfg)

	var user model.User
	if err := db.Where("username = ?", cfg.AdminUser).First(&user).Error; err != nil {
		log.Fatalf("User %s not found in database: %v", cfg.AdminUser, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPass), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	if err := db.Model(&user).Update("password", string(hashedPassword)).Error; err != nil {
		log.Fatalf("Failed to update password in DB: %v", err)
	}

	log.Printf("Password for %s has been reset", cfg.AdminUser)
}
