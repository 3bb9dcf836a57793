package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jonathan/career-services/internal/config"
	"github.com/jonathan/career-services/internal/db"
)

// loadSettings resolves the configuration in order of precedence: flags,
// config file, environment, defaults.
func loadSettings() (config.Config, error) {
	var cfg config.Config
	if rootConfigPath != "" {
		loaded, err := config.LoadConfig(rootConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	flags := rootCmd.PersistentFlags()
	if flags.Changed("store") {
		cfg.Store = rootStore
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = rootDatabaseURL
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = rootLogLevel
	}

	env := config.Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}
	cfg = cfg.MergeWithDefaults(env)
	cfg = cfg.MergeWithDefaults(config.Defaults())

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newLogger builds the command logger on w.
func newLogger(cfg config.Config, w io.Writer) (*slog.Logger, error) {
	return config.NewLogger(w, cfg.LogLevel, cfg.LogFormat)
}

// openStore opens the configured document store. The returned function
// releases it.
func openStore(ctx context.Context, cfg config.Config) (db.Store, func(), error) {
	switch cfg.Store {
	case config.StoreMemory:
		return db.NewMemoryStore(), func() {}, nil
	case config.StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
		}
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return database, database.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
