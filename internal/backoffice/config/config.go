// Package config loads the back-office service configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no path is given.
var DefaultPath = filepath.Join("internal", "backoffice", "config", "config.yaml")

// Config struct for YAML configuration
type Config struct {
	HTTPPort int `yaml:"HTTP_PORT"`
	GRPCPort int `yaml:"GRPC_PORT"`

	// DBDriver is one of postgres, mysql or sqlite.
	DBDriver   string `yaml:"DB_DRIVER"`
	DBHost     string `yaml:"DB_HOST"`
	DBPort     int    `yaml:"DB_PORT"`
	DBUser     string `yaml:"DB_USER"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBName     string `yaml:"DB_NAME"`
	DBSSLMode  string `yaml:"DB_SSLMODE"`
	// DBPath is the database file for the sqlite driver.
	DBPath string `yaml:"DB_PATH"`

	KafkaBrokers []string `yaml:"KAFKA_BROKERS"`
	Topic        string   `yaml:"TOPIC"`

	SessionSecret string        `yaml:"SESSION_SECRET"`
	SessionTTL    time.Duration `yaml:"SESSION_TTL"`
	CookieSecure  bool          `yaml:"COOKIE_SECURE"`

	PageSize         int `yaml:"PAGE_SIZE"`
	LogPageSize      int `yaml:"LOG_PAGE_SIZE"`
	LogRetentionDays int `yaml:"LOG_RETENTION_DAYS"`
}

// Default returns the configuration used for keys missing from the file.
func Default() *Config {
	return &Config{
		HTTPPort:         8080,
		GRPCPort:         50051,
		DBDriver:         "sqlite",
		DBPath:           "backoffice.db",
		DBSSLMode:        "disable",
		Topic:            "backoffice.activity",
		SessionTTL:       12 * time.Hour,
		PageSize:         25,
		LogPageSize:      50,
		LogRetentionDays: 30,
	}
}

// Load reads the YAML file at path over the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(file)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "mysql":
		if c.DBHost == "" || c.DBName == "" {
			return fmt.Errorf("DB_HOST and DB_NAME are required for driver %q", c.DBDriver)
		}
	case "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for driver sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.PageSize < 1 || c.LogPageSize < 1 {
		return fmt.Errorf("PAGE_SIZE and LOG_PAGE_SIZE must be positive")
	}
	return nil
}
