// Package config holds the typed pipeline configuration loaded from viper.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Bounds is the geographic bounding box both trip endpoints must fall inside.
type Bounds struct {
	MinLat float64 `mapstructure:"min_lat" validate:"gte=-90,lte=90"`
	MaxLat float64 `mapstructure:"max_lat" validate:"gte=-90,lte=90,gtfield=MinLat"`
	MinLon float64 `mapstructure:"min_lon" validate:"gte=-180,lte=180"`
	MaxLon float64 `mapstructure:"max_lon" validate:"gte=-180,lte=180,gtfield=MinLon"`
}

// Cleaning configures the cleaning pipeline stages.
type Cleaning struct {
	Bounds            Bounds  `mapstructure:"bounds"`
	MinDurationSec    int     `mapstructure:"min_duration_sec" validate:"gt=0"`
	MaxDurationSec    int     `mapstructure:"max_duration_sec" validate:"gtfield=MinDurationSec"`
	MaxPassengers     int     `mapstructure:"max_passengers" validate:"gt=0"`
	OutlierMultiplier float64 `mapstructure:"outlier_multiplier" validate:"gt=0"`
	SampleThreshold   int     `mapstructure:"sample_threshold" validate:"gt=0"`
	SampleSize        int     `mapstructure:"sample_size" validate:"gt=0"`
	SampleSeed        int64   `mapstructure:"sample_seed"`
}

// Loading configures the SQLite loader.
type Loading struct {
	BatchSize int `mapstructure:"batch_size" validate:"gt=0"`
}

// Config is the full pipeline configuration.
type Config struct {
	Cleaning Cleaning `mapstructure:"cleaning"`
	Loading  Loading  `mapstructure:"loading"`
}

// SetDefaults registers the default configuration values on viper. The
// bounding box defaults to the NYC box the source data was collected in.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("cleaning.bounds.min_lat", 40.4774)
	v.SetDefault("cleaning.bounds.max_lat", 40.9176)
	v.SetDefault("cleaning.bounds.min_lon", -74.2591)
	v.SetDefault("cleaning.bounds.max_lon", -73.7004)
	v.SetDefault("cleaning.min_duration_sec", 60)
	v.SetDefault("cleaning.max_duration_sec", 3600)
	v.SetDefault("cleaning.max_passengers", 8)
	v.SetDefault("cleaning.outlier_multiplier", 2.0)
	v.SetDefault("cleaning.sample_threshold", 100000)
	v.SetDefault("cleaning.sample_size", 50000)
	v.SetDefault("cleaning.sample_seed", 1)
	v.SetDefault("loading.batch_size", 1000)
}

// Load unmarshals and validates the configuration from viper.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
