package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"server"`
	Catalog     CatalogConfig  `mapstructure:"catalog"`
	Session     SessionConfig  `mapstructure:"session"`
	Records     RecordsConfig  `mapstructure:"records"`
	Database    DatabaseConfig `mapstructure:"database"`
	Logging     LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute"`
	AdminToken         string        `mapstructure:"admin_token"`
	PluginToken        string        `mapstructure:"plugin_token"`
	UserTokenSecret    string        `mapstructure:"user_token_secret"`
	UserTokenTTL       time.Duration `mapstructure:"user_token_ttl"`
}

// CatalogConfig locates the reason-code data and tunes matching.
type CatalogConfig struct {
	DataDir             string   `mapstructure:"data_dir"`
	Networks            []string `mapstructure:"networks"`
	FuzzyThreshold      float64  `mapstructure:"fuzzy_threshold"`
	FuzzyCacheSize      int      `mapstructure:"fuzzy_cache_size"`
	StrategySearchLimit int      `mapstructure:"strategy_search_limit"`
}

// SessionConfig selects and tunes the intake session store.
type SessionConfig struct {
	Backend        string        `mapstructure:"backend"` // "memory", "redis"
	RedisURL       string        `mapstructure:"redis_url"`
	TTL            time.Duration `mapstructure:"ttl"`
	MaxRetries     int           `mapstructure:"max_retries"`
	PoolSize       int           `mapstructure:"pool_size"`
	PoolTimeout    time.Duration `mapstructure:"pool_timeout"`
	MemoryMaxItems int           `mapstructure:"memory_max_items"`
}

// RecordsConfig selects the dispute-record and entitlement store.
type RecordsConfig struct {
	Backend        string `mapstructure:"backend"` // "sqlite", "postgres"
	SQLitePath     string `mapstructure:"sqlite_path"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
