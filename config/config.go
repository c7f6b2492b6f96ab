package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	Storefront StorefrontConfig
	Source     SourceConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
	Catalog    CatalogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// StorefrontConfig holds Storefront GraphQL API configuration
type StorefrontConfig struct {
	Domain            string        `mapstructure:"domain"`
	Token             string        `mapstructure:"token"`
	APIVersion        string        `mapstructure:"api_version"`
	PageSize          int           `mapstructure:"page_size"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Debug             bool          `mapstructure:"debug"`
}

// SourceConfig selects where the server reads products from
type SourceConfig struct {
	Type        string `mapstructure:"type"` // "static" or "storefront"
	CatalogPath string `mapstructure:"catalog_path"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// CatalogConfig holds catalog build configuration
type CatalogConfig struct {
	Input       string `mapstructure:"input"`
	Output      string `mapstructure:"output"`
	Workers     int    `mapstructure:"workers"`
	DatabaseURL string `mapstructure:"database_url"`
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/outboard-catalog/")

	// Environment variable settings: CATALOG_SERVER_PORT -> server.port
	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory if present.
// Variables already set in the environment are not overridden.
func loadEnvFile() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values. Keys without a meaningful
// default are registered empty so AutomaticEnv can still populate them.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("log.level", "info")

	// Storefront defaults
	v.SetDefault("storefront.domain", "")
	v.SetDefault("storefront.token", "")
	v.SetDefault("storefront.api_version", "2024-10")
	v.SetDefault("storefront.page_size", 50)
	v.SetDefault("storefront.timeout", "30s")
	v.SetDefault("storefront.requests_per_second", 2)
	v.SetDefault("storefront.debug", false)

	v.SetDefault("source.type", "static")
	v.SetDefault("source.catalog_path", "generated/catalog.json")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "15m")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)

	// Catalog build defaults
	v.SetDefault("catalog.input", "data/products_export.csv")
	v.SetDefault("catalog.output", "generated/catalog.json")
	v.SetDefault("catalog.workers", 4)
	v.SetDefault("catalog.database_url", "")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Source.Type {
	case "static":
		if config.Source.CatalogPath == "" {
			return fmt.Errorf("catalog path is required when source type is 'static'")
		}
	case "storefront":
		if config.Storefront.Domain == "" || config.Storefront.Token == "" {
			return fmt.Errorf("storefront domain and token are required (set CATALOG_STOREFRONT_DOMAIN and CATALOG_STOREFRONT_TOKEN)")
		}
	default:
		return fmt.Errorf("source type must be 'static' or 'storefront', got: %s", config.Source.Type)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Catalog.Workers < 1 {
		return fmt.Errorf("catalog workers must be at least 1, got: %d", config.Catalog.Workers)
	}

	return nil
}
