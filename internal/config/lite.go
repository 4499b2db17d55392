// Package config provides configuration management for the dispute server.
// This file contains the lightweight configuration for the standalone MCP server.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// LiteConfig is a simplified configuration for standalone operation.
// It requires no external services and uses sensible defaults.
type LiteConfig struct {
	// Data storage
	DataDir string // Base directory holding reasons/, strategies/ and the records db

	// Matching
	FuzzyThreshold float64

	// Session settings
	SessionMaxItems int
	SessionTTL      time.Duration

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".disputekit")

	return &LiteConfig{
		DataDir:         dataDir,
		FuzzyThreshold:  0.5,
		SessionMaxItems: 1000,
		SessionTTL:      24 * time.Hour,
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	if v := os.Getenv("DISPUTEKIT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	if v := os.Getenv("DISPUTEKIT_FUZZY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 1 {
			cfg.FuzzyThreshold = f
		}
	}

	if v := os.Getenv("DISPUTEKIT_SESSION_MAX_ITEMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SessionMaxItems = n
		}
	}
	if v := os.Getenv("DISPUTEKIT_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SessionTTL = d
		}
	}

	if v := os.Getenv("DISPUTEKIT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DISPUTEKIT_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// RecordsDBPath returns the path to the dispute records SQLite database.
func (c *LiteConfig) RecordsDBPath() string {
	return filepath.Join(c.DataDir, "disputes.db")
}

// ExportDir returns the directory for JSON exports.
func (c *LiteConfig) ExportDir() string {
	return filepath.Join(c.DataDir, "exports")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *LiteConfig) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return err
	}
	return os.MkdirAll(c.ExportDir(), 0755)
}
