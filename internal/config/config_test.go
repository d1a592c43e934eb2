package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 1.5, cfg.Fare.CarRatePerHour)
	assert.Equal(t, 1.0, cfg.Fare.BikeRatePerHour)
	assert.Equal(t, 3, cfg.Lot.CarSpots)
	assert.Equal(t, 2, cfg.Lot.BikeSpots)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
server:
  port: "9090"
fare:
  car_rate_per_hour: 2.0
  bike_rate_per_hour: 1.25
lot:
  car_spots: 10
  bike_spots: 5
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 2.0, cfg.Fare.CarRatePerHour)
	assert.Equal(t, 1.25, cfg.Fare.BikeRatePerHour)
	assert.Equal(t, 10, cfg.Lot.CarSpots)
	assert.Equal(t, 5, cfg.Lot.BikeSpots)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "parklot",
		Password: "secret",
		Name:     "parklot",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=parklot password=secret dbname=parklot sslmode=require",
		cfg.DSN(),
	)
}
