package db

import (
	"fmt"

	"gorm.io/gorm"

	"parklot-service/internal/config"
	"parklot-service/internal/domain/parking"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS parking_spots (
		number          INT PRIMARY KEY,
		type            TEXT NOT NULL,
		available       BOOLEAN NOT NULL DEFAULT true
	);`,
	`CREATE INDEX IF NOT EXISTS idx_parking_spots_type_available ON parking_spots(type, available);`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id                  BIGSERIAL PRIMARY KEY,
		ref                 TEXT NOT NULL,
		vehicle_reg_number  TEXT NOT NULL,
		spot_number         INT NOT NULL REFERENCES parking_spots(number),
		in_time             TIMESTAMPTZ NOT NULL,
		out_time            TIMESTAMPTZ,
		price               DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_tickets_ref ON tickets(ref);`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_vehicle_reg_number ON tickets(vehicle_reg_number);`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_open ON tickets(vehicle_reg_number) WHERE out_time IS NULL;`,
	`CREATE TABLE IF NOT EXISTS gate_events (
		id                  BIGSERIAL PRIMARY KEY,
		ticket_id           BIGINT REFERENCES tickets(id),
		direction           TEXT NOT NULL,
		vehicle_reg_number  TEXT NOT NULL,
		spot_number         INT NOT NULL,
		event_time          TIMESTAMPTZ NOT NULL,
		payload             JSONB,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_gate_events_vehicle_reg_number ON gate_events(vehicle_reg_number);`,
	`CREATE INDEX IF NOT EXISTS idx_gate_events_event_time ON gate_events(event_time);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

// seedSpots creates the physical spot rows on first start. Car spots
// are numbered from 1, bike spots follow. Existing rows are left
// untouched so availability survives restarts.
func seedSpots(db *gorm.DB, lot config.LotConfig) error {
	number := 1
	for i := 0; i < lot.CarSpots; i++ {
		if err := insertSpotIfMissing(db, number, parking.VehicleTypeCar); err != nil {
			return err
		}
		number++
	}
	for i := 0; i < lot.BikeSpots; i++ {
		if err := insertSpotIfMissing(db, number, parking.VehicleTypeBike); err != nil {
			return err
		}
		number++
	}
	return nil
}

func insertSpotIfMissing(db *gorm.DB, number int, vt parking.VehicleType) error {
	err := db.Exec(
		`INSERT INTO parking_spots (number, type, available) VALUES (?, ?, true) ON CONFLICT (number) DO NOTHING`,
		number, string(vt),
	).Error
	if err != nil {
		return fmt.Errorf("failed to seed spot %d: %w", number, err)
	}
	return nil
}
