// Package config loads the simulation configuration through viper. All
// settings have working defaults; the config file only overrides.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// SimConfig holds the simulation loop and traffic settings.
type SimConfig struct {
	Seed             int64   `json:"seed" mapstructure:"seed"`
	TickRate         float64 `json:"tickRate" mapstructure:"tickRate"`
	Duration         string  `json:"duration" mapstructure:"duration"`
	SpawnInterval    string  `json:"spawnInterval" mapstructure:"spawnInterval"`
	ElectricShare    float64 `json:"electricShare" mapstructure:"electricShare"`
	PriceSeekerShare float64 `json:"priceSeekerShare" mapstructure:"priceSeekerShare"`
}

// MapConfig holds the facility mix and pricing ranges for world generation.
type MapConfig struct {
	SmallParking     int     `json:"smallParking" mapstructure:"smallParking"`
	LargeParking     int     `json:"largeParking" mapstructure:"largeParking"`
	SmallCharging    int     `json:"smallCharging" mapstructure:"smallCharging"`
	LargeCharging    int     `json:"largeCharging" mapstructure:"largeCharging"`
	ParkingPriceMin  float64 `json:"parkingPriceMin" mapstructure:"parkingPriceMin"`
	ParkingPriceMax  float64 `json:"parkingPriceMax" mapstructure:"parkingPriceMax"`
	ChargingPriceMin float64 `json:"chargingPriceMin" mapstructure:"chargingPriceMin"`
	ChargingPriceMax float64 `json:"chargingPriceMax" mapstructure:"chargingPriceMax"`
}

// Load reads configuration from a JSON file and sets default values.
// configDir is the directory containing the config file. A missing file is
// not an error; the defaults stand.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("sim.seed", 0)
	viper.SetDefault("sim.tickRate", 30.0)
	viper.SetDefault("sim.duration", "5m")
	viper.SetDefault("sim.spawnInterval", "2s")
	viper.SetDefault("sim.electricShare", 0.4)
	viper.SetDefault("sim.priceSeekerShare", 0.3)

	viper.SetDefault("map.smallParking", 2)
	viper.SetDefault("map.largeParking", 1)
	viper.SetDefault("map.smallCharging", 1)
	viper.SetDefault("map.largeCharging", 1)
	viper.SetDefault("map.parkingPriceMin", 1.0)
	viper.SetDefault("map.parkingPriceMax", 5.0)
	viper.SetDefault("map.chargingPriceMin", 2.0)
	viper.SetDefault("map.chargingPriceMax", 8.0)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./sessions")
	viper.SetDefault("storage.sqlite.path", "./parklogic.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "parklogic")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "parklogic-metrics")
	viper.SetDefault("influx.bucket", "simulation")

	viper.SetConfigName("parklogic.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetSimConfig returns the simulation settings.
func GetSimConfig() SimConfig {
	var cfg SimConfig
	if err := viper.UnmarshalKey("sim", &cfg); err != nil {
		return SimConfig{}
	}
	return cfg
}

// GetMapConfig returns the world generation settings.
func GetMapConfig() MapConfig {
	var cfg MapConfig
	if err := viper.UnmarshalKey("map", &cfg); err != nil {
		return MapConfig{}
	}
	return cfg
}
