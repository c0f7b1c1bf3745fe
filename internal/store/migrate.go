package store

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/feral-file/mint-sync/internal/store/schema"
)

// Migrate creates or updates the database schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&schema.KeyValueStore{},
		&schema.Item{},
		&schema.Profile{},
		&schema.PendingItem{},
	); err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}
	return nil
}
