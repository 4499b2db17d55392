package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	"github.com/disputekit/disputekit-server/internal/domain"
)

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	v      *viper.Viper
	config *domain.Config
}

// NewManager creates a new configuration manager backed by the global viper
// instance, so flags bound by the CLI are honoured.
func NewManager() (*Manager, error) {
	return NewManagerWithViper(viper.GetViper())
}

// NewManagerWithViper creates a configuration manager over an explicit viper
// instance.
func NewManagerWithViper(v *viper.Viper) (*Manager, error) {
	m := &Manager{v: v}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	v := m.v

	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/disputekit/")
	}

	// Set environment variable prefix and enable automatic env binding
	v.SetEnvPrefix("DISPUTEKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	m.setDefaults()

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.Catalog.Networks = normalizeNetworks(config.Catalog.Networks)

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	v := m.v

	v.SetDefault("environment", "development")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "15s")
	v.SetDefault("server.rate_limit_per_minute", 100)
	v.SetDefault("server.admin_token", "")
	v.SetDefault("server.plugin_token", "")
	v.SetDefault("server.user_token_secret", "")
	v.SetDefault("server.user_token_ttl", "720h")

	// Catalog defaults
	v.SetDefault("catalog.data_dir", "./data")
	v.SetDefault("catalog.networks", domain.DefaultNetworks)
	v.SetDefault("catalog.fuzzy_threshold", 0.5)
	v.SetDefault("catalog.fuzzy_cache_size", 512)
	v.SetDefault("catalog.strategy_search_limit", 5)

	// Session defaults
	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.redis_url", "redis://localhost:6379")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.max_retries", 3)
	v.SetDefault("session.pool_size", 10)
	v.SetDefault("session.pool_timeout", "4s")
	v.SetDefault("session.memory_max_items", 1000)

	// Records defaults
	v.SetDefault("records.backend", "sqlite")
	v.SetDefault("records.sqlite_path", "./data/disputes.db")
	v.SetDefault("records.migrations_path", "./migrations")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "disputekit")
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetCatalogConfig returns catalog configuration
func (m *Manager) GetCatalogConfig() *domain.CatalogConfig {
	return &m.config.Catalog
}

// GetSessionConfig returns session store configuration
func (m *Manager) GetSessionConfig() *domain.SessionConfig {
	return &m.config.Session
}

// GetDatabaseConfig returns database configuration
func (m *Manager) GetDatabaseConfig() *domain.DatabaseConfig {
	return &m.config.Database
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Server.RateLimitPerMinute < 0 {
		return fmt.Errorf("invalid rate limit: %d", config.Server.RateLimitPerMinute)
	}

	if config.Catalog.DataDir == "" {
		return fmt.Errorf("catalog data directory is required")
	}
	if len(config.Catalog.Networks) == 0 {
		return fmt.Errorf("at least one catalog network is required")
	}
	if config.Catalog.FuzzyThreshold <= 0 || config.Catalog.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy threshold must be in (0, 1]: %v", config.Catalog.FuzzyThreshold)
	}

	switch config.Session.Backend {
	case "memory":
	case "redis":
		if config.Session.RedisURL == "" {
			return fmt.Errorf("Redis URL is required for the redis session backend")
		}
	default:
		return fmt.Errorf("invalid session backend: %s", config.Session.Backend)
	}

	switch config.Records.Backend {
	case "sqlite":
		if config.Records.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for the sqlite records backend")
		}
	case "postgres":
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if config.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if config.Database.Username == "" {
			return fmt.Errorf("database username is required")
		}
	default:
		return fmt.Errorf("invalid records backend: %s", config.Records.Backend)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// GetDatabaseConnectionString returns a formatted database connection string
func (m *Manager) GetDatabaseConnectionString() string {
	db := m.config.Database
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.Username, db.Password, db.Database, db.SSLMode)
}

// GetDatabaseURL returns the database configuration as a postgres URL, the
// form golang-migrate expects.
func (m *Manager) GetDatabaseURL() string {
	db := m.config.Database
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.Username, db.Password),
		Host:     fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:     db.Database,
		RawQuery: "sslmode=" + db.SSLMode,
	}
	return u.String()
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.config.Environment) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(m.config.Environment)
	return env == "development" || env == "dev" || env == ""
}

func normalizeNetworks(networks []string) []string {
	out := make([]string, 0, len(networks))
	seen := make(map[string]bool, len(networks))
	for _, n := range networks {
		n = domain.NormalizeNetwork(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
