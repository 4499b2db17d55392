package domain

import (
	"context"
)

// ReasonCatalogReader is the read-only view of the per-network catalog.
type ReasonCatalogReader interface {
	Networks() []string
	Get(network, code string) (ReasonCodeEntry, error)
	Entries(network string) []ReasonCodeEntry
	AllForNetwork(network string) map[string]ReasonCodeEntry
}

// StrategyReader looks up rebuttal strategies by (network, code).
type StrategyReader interface {
	Strategy(network, code string) (RebuttalStrategy, error)
}

// IntakeStore persists intake sessions between the intake and letter steps.
type IntakeStore interface {
	Save(ctx context.Context, intake Intake) error
	Get(ctx context.Context, sessionID string) (Intake, error)
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetCatalogConfig() *CatalogConfig
	GetSessionConfig() *SessionConfig
	GetDatabaseConfig() *DatabaseConfig
	Reload() error
	Validate() error
	GetDatabaseConnectionString() string
	GetDatabaseURL() string
	IsProduction() bool
	IsDevelopment() bool
}
