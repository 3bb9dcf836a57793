package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, `{
		"database_url": "postgres://localhost/career",
		"store": "memory",
		"port": 9090,
		"redis_url": "redis://localhost:6379/0",
		"log_level": "debug",
		"reconcile_stale_after": "5m"
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/career", cfg.DatabaseURL)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.StaleAfter())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, `{"port": "eighty"}`))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"empty", Config{}, false},
		{"defaults", Defaults(), false},
		{"unknown store", Config{Store: "firestore"}, true},
		{"port out of range", Config{Port: 70000}, true},
		{"unknown log level", Config{LogLevel: "verbose"}, true},
		{"unknown log format", Config{LogFormat: "xml"}, true},
		{"bad duration", Config{ReconcileStaleAfter: "soon"}, true},
		{"negative duration", Config{ReconcileStaleAfter: "-1m"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Store: StoreMemory, Port: 9000}

	merged := cfg.MergeWithDefaults(Defaults())
	assert.Equal(t, StoreMemory, merged.Store)
	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, "info", merged.LogLevel)
	assert.Empty(t, merged.LogFormat)
	assert.Equal(t, 10*time.Minute, merged.StaleAfter())

	// The receiver is not modified
	assert.Empty(t, cfg.LogLevel)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn", "json")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "cascade_id", "c1")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"cascade_id":"c1"`)

	_, err = NewLogger(&buf, "loud", "text")
	assert.Error(t, err)
	_, err = NewLogger(&buf, "info", "xml")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}
