package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"parklot-service/internal/config"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// Setup runs the schema migrations and seeds the physical spots
// described by the lot layout.
func Setup(db *gorm.DB, lot config.LotConfig) error {
	if err := runMigrations(db); err != nil {
		return err
	}
	return seedSpots(db, lot)
}
