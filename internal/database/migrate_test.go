package database

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"TalentHive/internal/logger"
)

func TestMigrateCreatesEngineTables(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	defer Close(db)

	if err := Migrate(db, logger.Nop()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	for _, table := range []string{"contracts", "contract_milestones", "contract_signatures", "contract_amendments", "escrow_transactions", "notifications"} {
		if !db.Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
	if err := Migrate(db, logger.Nop()); err != nil {
		t.Fatalf("second Migrate must be a no-op: %v", err)
	}
}
