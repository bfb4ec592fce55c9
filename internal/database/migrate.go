package database

import (
	"fmt"

	"gorm.io/gorm"

	"TalentHive/internal/logger"
	"TalentHive/internal/models"
)

// Models lists every table the engine owns or reads, in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.BankAccount{},
		&models.Contract{},
		&models.Milestone{},
		&models.Signature{},
		&models.Amendment{},
		&models.Transaction{},
		&models.Notification{},
	}
}

func Migrate(db *gorm.DB, log *logger.Logger) error {
	log.Info("running database migrations")
	if err := db.AutoMigrate(Models()...); err != nil {
		log.Error("error migrating database", "error", err)
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("database migration completed successfully")
	return nil
}
