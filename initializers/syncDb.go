package initializers

import (
	"gorm.io/gorm"

	"github.com/modernwebbuilds/forkitt-api/models"
)

// Migrate applies the schema to the given database. Exposed separately from
// SyncDatabase so tests can migrate their own connections.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Restaurant{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.CreditLogEntry{},
		&models.WhatsappOptin{},
		&models.MessageLog{},
	)
}

func SyncDatabase() {
	if err := Migrate(DB); err != nil {
		Log.Fatalf("Failed to migrate database: %v", err)
	}
	Log.Info("Database synced successfully.")
}
