// Package config provides configuration management.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"rental-quote/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Environment is the deployment environment
	Environment string

	// Cache contains cache lifetime settings
	Cache CacheConfig

	// Distance contains distance-resolution settings
	Distance DistanceConfig

	// Quote contains quote assembly settings
	Quote QuoteConfig

	// DB contains durable-store settings
	DB DBConfig

	// Catalog contains catalog-source settings
	Catalog CatalogConfig

	// Logging contains logging configuration
	Logging logging.Config
}

// CacheConfig contains cache-related settings
type CacheConfig struct {
	// CatalogTTL is how long the pricing catalog stays cached
	CatalogTTL time.Duration

	// DistanceTTL is how long a resolved branch distance stays cached
	DistanceTTL time.Duration
}

// DistanceConfig contains distance-resolution settings
type DistanceConfig struct {
	// ProviderBaseURL is the geocoding/routing provider endpoint
	ProviderBaseURL string

	// ProviderTimeout bounds each provider call
	ProviderTimeout time.Duration

	// MaxConcurrent bounds per-request branch fan-out
	MaxConcurrent int

	// HubName/HubAddress identify the straight-line fallback origin
	HubName    string
	HubAddress string

	// HubLat/HubLon are the fixed hub coordinates for the
	// straight-line fallback
	HubLat float64
	HubLon float64

	// AverageSpeedMPH approximates drive time in the straight-line fallback
	AverageSpeedMPH float64
}

// QuoteConfig contains quote assembly settings
type QuoteConfig struct {
	// ValidDays is how long a generated quote remains valid
	ValidDays int
}

// DBConfig contains durable-store settings
type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// CatalogConfig contains catalog-source settings
type CatalogConfig struct {
	// SeedPath is the HCL catalog file used by the file-backed store
	SeedPath string
}

// Load reads configuration from the environment and an optional
// config file, applying defaults for anything unset. An empty path
// searches the working directory and ./config; a missing file is only
// an error when a path was given explicitly.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("RQ")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("rental-quote")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		_ = v.ReadInConfig()
	}

	setDefaults(v)

	cfg := &Config{
		Environment: v.GetString("environment"),
		Cache: CacheConfig{
			CatalogTTL:  v.GetDuration("cache.catalog_ttl"),
			DistanceTTL: v.GetDuration("cache.distance_ttl"),
		},
		Distance: DistanceConfig{
			ProviderBaseURL: v.GetString("distance.provider_base_url"),
			ProviderTimeout: v.GetDuration("distance.provider_timeout"),
			MaxConcurrent:   v.GetInt("distance.max_concurrent"),
			HubName:         v.GetString("distance.hub_name"),
			HubAddress:      v.GetString("distance.hub_address"),
			HubLat:          v.GetFloat64("distance.hub_lat"),
			HubLon:          v.GetFloat64("distance.hub_lon"),
			AverageSpeedMPH: v.GetFloat64("distance.average_speed_mph"),
		},
		Quote: QuoteConfig{
			ValidDays: v.GetInt("quote.valid_days"),
		},
		DB: DBConfig{
			DSN:          v.GetString("db.dsn"),
			MaxOpenConns: v.GetInt("db.max_open_conns"),
			MaxIdleConns: v.GetInt("db.max_idle_conns"),
		},
		Catalog: CatalogConfig{
			SeedPath: v.GetString("catalog.seed_path"),
		},
		Logging: logging.Config{
			Level:       v.GetString("logging.level"),
			Format:      v.GetString("logging.format"),
			Output:      v.GetString("logging.output"),
			Development: v.GetBool("logging.development"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("cache.catalog_ttl", "1h")
	v.SetDefault("cache.distance_ttl", "720h")
	v.SetDefault("distance.provider_timeout", "10s")
	v.SetDefault("distance.max_concurrent", 8)
	v.SetDefault("distance.average_speed_mph", 45.0)
	v.SetDefault("quote.valid_days", 14)
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
}

func validate(cfg *Config) error {
	if cfg.Quote.ValidDays <= 0 {
		return fmt.Errorf("quote.valid_days must be positive")
	}
	if cfg.Distance.MaxConcurrent <= 0 {
		return fmt.Errorf("distance.max_concurrent must be positive")
	}
	return nil
}
