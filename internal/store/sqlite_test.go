package store

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"TalentHive/internal/models"
)

// openSQLite returns a fresh in-memory database, or nil when the sqlite
// driver is unavailable in this build.
func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Logf("sqlite unavailable, skipping gorm store: %v", err)
		return nil
	}
	if err := db.AutoMigrate(
		&models.Contract{},
		&models.Milestone{},
		&models.Signature{},
		&models.Amendment{},
		&models.Transaction{},
		&models.Notification{},
		&models.User{},
		&models.BankAccount{},
	); err != nil {
		t.Logf("sqlite migrate failed, skipping gorm store: %v", err)
		return nil
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
