package database

import (
	"fmt"
	"log"

	"github.com/taskhub/task-manager-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	Username string
	Email    string
	Password string
}

var seedUsers = []seedUser{
	{Username: "john_1", Email: "fake@email.com", Password: "pass123"},
	{Username: "john_2", Email: "fake@email.com.eu", Password: "123"},
}

// Seed inserts the demo users if they are not present yet.
func Seed() error {
	for _, su := range seedUsers {
		var count int64
		if err := DB.Model(&models.User{}).Where("username = ?", su.Username).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check seed user %s: %w", su.Username, err)
		}
		if count > 0 {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}

		user := models.User{
			Username:     su.Username,
			Email:        su.Email,
			PasswordHash: string(hash),
		}
		if err := DB.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create seed user %s: %w", su.Username, err)
		}
		log.Printf("Seeded user %s", su.Username)
	}

	return nil
}
