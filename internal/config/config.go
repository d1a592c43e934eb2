package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Fare     FareConfig     `mapstructure:"fare"`
	Lot      LotConfig      `mapstructure:"lot"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// FareConfig holds the facility's hourly rates. The free-stay threshold
// is fixed at 30 minutes and not configurable.
type FareConfig struct {
	CarRatePerHour  float64 `mapstructure:"car_rate_per_hour"`
	BikeRatePerHour float64 `mapstructure:"bike_rate_per_hour"`
}

// LotConfig describes the physical layout seeded at first start.
type LotConfig struct {
	CarSpots  int `mapstructure:"car_spots"`
	BikeSpots int `mapstructure:"bike_spots"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("PARKLOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "parklot")
	v.SetDefault("database.password", "parklot")
	v.SetDefault("database.name", "parklot")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("fare.car_rate_per_hour", 1.5)
	v.SetDefault("fare.bike_rate_per_hour", 1.0)

	v.SetDefault("lot.car_spots", 3)
	v.SetDefault("lot.bike_spots", 2)
}
