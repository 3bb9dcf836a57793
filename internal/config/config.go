// Package config provides configuration loading and validation for the
// career portal commands.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Store backends
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or CLI flags.
type Config struct {
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	Store       string `json:"store,omitempty"`        // "postgres" or "memory"
	Port        int    `json:"port,omitempty"`         // HTTP listen port
	RedisURL    string `json:"redis_url,omitempty"`    // Shared rate limit backend (optional)
	LogLevel    string `json:"log_level,omitempty"`    // debug, info, warn or error
	LogFormat   string `json:"log_format,omitempty"`   // text or json; empty lets the command choose

	// ReconcileStaleAfter is how long a cascade may stay running before the
	// reconciliation pass treats it as abandoned.
	ReconcileStaleAfter string `json:"reconcile_stale_after,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Store:               StorePostgres,
		Port:                8080,
		LogLevel:            "info",
		ReconcileStaleAfter: "10m",
	}
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configured values are usable. Empty fields are
// accepted; they are filled by MergeWithDefaults.
func (c *Config) Validate() error {
	switch c.Store {
	case "", StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("config error: 'store' must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535")
	}

	if c.LogLevel != "" {
		if _, err := ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("config error: 'log_format' must be text or json")
	}

	if c.ReconcileStaleAfter != "" {
		d, err := time.ParseDuration(c.ReconcileStaleAfter)
		if err != nil || d < 0 {
			return fmt.Errorf("config error: invalid 'reconcile_stale_after': %q", c.ReconcileStaleAfter)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Store == "" {
		result.Store = defaults.Store
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if result.ReconcileStaleAfter == "" {
		result.ReconcileStaleAfter = defaults.ReconcileStaleAfter
	}

	return result
}

// StaleAfter returns ReconcileStaleAfter as a duration, or zero if unset.
func (c *Config) StaleAfter() time.Duration {
	d, err := time.ParseDuration(c.ReconcileStaleAfter)
	if err != nil {
		return 0
	}
	return d
}
