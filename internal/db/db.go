package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"eventease/internal/logging"
	"eventease/internal/model"
)

// Open returns a connected GORM DB for driver ("mysql" or "postgres").
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql", "":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	db, err := gorm.Open(dialector, Options())
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	return db, nil
}

// Options is the gorm configuration shared by every dialect.
// TranslateError maps unique violations to gorm.ErrDuplicatedKey.
func Options() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

// Migrate creates or updates the schema. With reset it drops every table first.
func Migrate(db *gorm.DB, reset bool) error {
	models := model.All()
	if reset {
		logging.Warn().Msg("RESET_DB=true detected, dropping all tables")
		for i := len(models) - 1; i >= 0; i-- {
			if err := db.Migrator().DropTable(models[i]); err != nil {
				logging.Warn().Err(err).Msg("drop table failed (may not exist)")
			}
		}
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
