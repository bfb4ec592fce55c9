package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"TalentHive/internal/config"
	"TalentHive/internal/logger"
)

// Connect opens the Postgres pool. Driver errors are translated so unique
// violations surface as gorm.ErrDuplicatedKey.
func Connect(cfg config.DatabaseConfig, env string, log *logger.Logger) (*gorm.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	if cfg.URL != "" {
		log.Info("using DATABASE_URL")
	} else {
		log.Info("using individual database environment variables", "host", cfg.Host, "user", cfg.User, "password", logger.Mask(cfg.Password))
	}

	level := gormlogger.Info
	if env == "production" {
		level = gormlogger.Warn
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.Info("database connected successfully")
	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
