package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLiteConfig(t *testing.T) {
	cfg := DefaultLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 0.5, cfg.FuzzyThreshold)
	assert.Equal(t, 1000, cfg.SessionMaxItems)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadLiteConfig_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 1000, cfg.SessionMaxItems)
	assert.Equal(t, 0.5, cfg.FuzzyThreshold)
}

func TestLoadLiteConfig_EnvironmentOverrides(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("DISPUTEKIT_DATA_DIR", "/tmp/test-disputekit")
	t.Setenv("DISPUTEKIT_FUZZY_THRESHOLD", "0.7")
	t.Setenv("DISPUTEKIT_SESSION_MAX_ITEMS", "500")
	t.Setenv("DISPUTEKIT_SESSION_TTL", "12h")
	t.Setenv("DISPUTEKIT_LOG_LEVEL", "debug")
	t.Setenv("DISPUTEKIT_LOG_FORMAT", "text")

	cfg := LoadLiteConfig()

	assert.Equal(t, "/tmp/test-disputekit", cfg.DataDir)
	assert.Equal(t, 0.7, cfg.FuzzyThreshold)
	assert.Equal(t, 500, cfg.SessionMaxItems)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadLiteConfig_IgnoresInvalidValues(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("DISPUTEKIT_FUZZY_THRESHOLD", "1.5")
	t.Setenv("DISPUTEKIT_SESSION_MAX_ITEMS", "-3")
	t.Setenv("DISPUTEKIT_SESSION_TTL", "soon")

	cfg := LoadLiteConfig()

	assert.Equal(t, 0.5, cfg.FuzzyThreshold)
	assert.Equal(t, 1000, cfg.SessionMaxItems)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestLiteConfig_RecordsDBPath(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.disputekit"}

	assert.Equal(t, "/home/user/.disputekit/disputes.db", cfg.RecordsDBPath())
}

func TestLiteConfig_ExportDir(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.disputekit"}

	assert.Equal(t, "/home/user/.disputekit/exports", cfg.ExportDir())
}

func TestLiteConfig_EnsureDataDir(t *testing.T) {
	cfg := &LiteConfig{DataDir: filepath.Join(t.TempDir(), "disputekit")}

	err := cfg.EnsureDataDir()
	require.NoError(t, err)

	_, err = os.Stat(cfg.DataDir)
	assert.NoError(t, err)

	_, err = os.Stat(cfg.ExportDir())
	assert.NoError(t, err)
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"DISPUTEKIT_DATA_DIR",
		"DISPUTEKIT_FUZZY_THRESHOLD",
		"DISPUTEKIT_SESSION_MAX_ITEMS",
		"DISPUTEKIT_SESSION_TTL",
		"DISPUTEKIT_LOG_LEVEL",
		"DISPUTEKIT_LOG_FORMAT",
	}
	for _, v := range vars {
		t.Setenv(v, "")
	}
}
