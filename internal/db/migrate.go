package db

import (
	"fmt"

	"github.com/formbridge/formbridge/internal/models"
	"gorm.io/gorm"
)

// Migrate applies the schema for every persisted model.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	return conn.AutoMigrate(
		&models.FormDefinition{},
		&models.FormSubmission{},
	)
}
