package repository

import (
	"github.com/architect/elective-advisor/internal/electives/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the electives tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ActivityResult{},
		&models.SurveyResult{},
		&models.ElectiveRecommendation{},
	)
}
