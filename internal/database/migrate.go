package database

import (
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assignment-hub/internal/models"
)

// Migrate creates or updates the tables backing the assignment pipeline.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Student{}, &models.Assignment{}, &models.AssignmentTemplate{})
}
