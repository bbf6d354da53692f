package database

import (
	"gorm.io/gorm"

	"github.com/dumumtergo/server/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Vendor{},
		&models.Car{},
		&models.Reservation{},
		&models.CampingItem{},
		&models.Order{},
		&models.Rental{},
		&models.Experience{},
		&models.ExperienceLike{},
		&models.ExperienceComment{},
		&models.ExperienceFavorite{},
		&models.Event{},
		&models.EventParticipant{},
		&models.Complaint{},
		&models.Rating{},
		&models.Notification{},
		&models.OTPChallenge{},
	)
}
