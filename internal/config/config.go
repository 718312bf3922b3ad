// Package config provides configuration management for Banyan.
// Settings come from an optional YAML file plus environment variables
// with the BANYAN_ prefix; environment variables take precedence, and
// every option has a sensible default.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings for the Banyan application.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Security SecurityConfig `yaml:"security"`
	Assets   AssetsConfig   `yaml:"assets"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    `yaml:"port"` // Server port (default: 8363)
	Host string `yaml:"host"` // Server host (default: 127.0.0.1)
}

// StorageConfig contains database configuration.
type StorageConfig struct {
	StorageEngine  string `yaml:"engine"`          // Storage engine: sqlite, postgres (default: sqlite)
	DataPath       string `yaml:"data_path"`       // SQLite data directory (default: ./data)
	PostgresURL    string `yaml:"postgres_url"`    // PostgreSQL connection string
	MigrationsPath string `yaml:"migrations_path"` // Migration files directory (default: ./migrations)
}

// SecurityConfig contains authentication settings.
type SecurityConfig struct {
	SecurityMode   string        `yaml:"mode"`             // Security mode: development, production (default: production)
	JWTSecret      string        `yaml:"jwt_secret"`       // HMAC secret for bearer tokens
	TokenTTL       time.Duration `yaml:"token_ttl"`        // Token lifetime (default: 720h)
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`   // Requests per second per server (default: 25)
	RateLimitBurst int           `yaml:"rate_limit_burst"` // Burst allowance (default: 50)
}

// AssetsConfig contains photo upload configuration.
type AssetsConfig struct {
	Path        string `yaml:"path"`          // Local directory for uploaded photos (default: ./data/photos)
	BaseURL     string `yaml:"base_url"`      // Public URL prefix for stored photos (default: /photos)
	MaxUploadMB int    `yaml:"max_upload_mb"` // Upload size cap in MiB (default: 5)
}

// LoadConfig loads configuration from environment variables with
// defaults.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()
	applyEnv(cfg)
	return cfg, nil
}

// LoadConfigFromFile loads configuration from a YAML file, then applies
// environment variable overrides on top.
func LoadConfigFromFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8363,
			Host: "127.0.0.1",
		},
		Storage: StorageConfig{
			StorageEngine:  "sqlite",
			DataPath:       "./data",
			MigrationsPath: "./migrations",
		},
		Security: SecurityConfig{
			SecurityMode:   "production",
			TokenTTL:       720 * time.Hour,
			RateLimitRPS:   25,
			RateLimitBurst: 50,
		},
		Assets: AssetsConfig{
			Path:        "./data/photos",
			BaseURL:     "/photos",
			MaxUploadMB: 5,
		},
	}
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnvInt("BANYAN_PORT", cfg.Server.Port)
	cfg.Server.Host = getEnv("BANYAN_HOST", cfg.Server.Host)

	cfg.Storage.StorageEngine = getEnv("BANYAN_STORAGE_ENGINE", cfg.Storage.StorageEngine)
	cfg.Storage.DataPath = getEnv("BANYAN_DATA_PATH", cfg.Storage.DataPath)
	cfg.Storage.PostgresURL = getEnv("BANYAN_POSTGRES_URL", cfg.Storage.PostgresURL)
	cfg.Storage.MigrationsPath = getEnv("BANYAN_MIGRATIONS_PATH", cfg.Storage.MigrationsPath)

	cfg.Security.SecurityMode = getEnv("BANYAN_SECURITY_MODE", cfg.Security.SecurityMode)
	cfg.Security.JWTSecret = getEnv("BANYAN_JWT_SECRET", cfg.Security.JWTSecret)
	cfg.Security.TokenTTL = getEnvDuration("BANYAN_TOKEN_TTL", cfg.Security.TokenTTL)
	cfg.Security.RateLimitRPS = getEnvFloat("BANYAN_RATE_LIMIT_RPS", cfg.Security.RateLimitRPS)
	cfg.Security.RateLimitBurst = getEnvInt("BANYAN_RATE_LIMIT_BURST", cfg.Security.RateLimitBurst)

	cfg.Assets.Path = getEnv("BANYAN_ASSETS_PATH", cfg.Assets.Path)
	cfg.Assets.BaseURL = getEnv("BANYAN_ASSETS_BASE_URL", cfg.Assets.BaseURL)
	cfg.Assets.MaxUploadMB = getEnvInt("BANYAN_MAX_UPLOAD_MB", cfg.Assets.MaxUploadMB)
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value. Unparseable values fall back to the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default
// value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns a
// default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
