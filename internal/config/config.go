// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Source   SourceConfig
	View     ViewConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings. Only needed when
// records are loaded from a table.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// SourceConfig says where columns and records come from.
type SourceConfig struct {
	// ColumnsFile is the JSON (comments allowed) column descriptor file (required)
	ColumnsFile string `env:"SOURCE_COLUMNS_FILE" required:"true"`

	// DataFile is a .csv or .json record file; exclusive with Table
	DataFile string `env:"SOURCE_DATA_FILE"`

	// Table is a PostgreSQL table, optionally schema-qualified; exclusive with DataFile
	Table string `env:"SOURCE_TABLE"`

	// Limit caps the rows loaded from Table, 0 for all (default: 0)
	Limit int `env:"SOURCE_LIMIT" default:"0"`

	// LoadTimeout bounds one load of the record set (default: 30s)
	LoadTimeout time.Duration `env:"SOURCE_LOAD_TIMEOUT" default:"30s"`
}

// ViewConfig holds the defaults and limits of view sessions.
type ViewConfig struct {
	// PageSize is the page size of new views: 5, 10 or 25 (default: 5)
	PageSize int `env:"VIEW_PAGE_SIZE" default:"5"`

	// Locale is the BCP 47 tag used to collate strings (default: en)
	Locale string `env:"VIEW_LOCALE" default:"en"`

	// SessionTTL is how long an unused view session is kept (default: 30m)
	SessionTTL time.Duration `env:"VIEW_SESSION_TTL" default:"30m"`

	// SweepInterval is how often expired sessions are removed (default: 1m)
	SweepInterval time.Duration `env:"VIEW_SWEEP_INTERVAL" default:"1m"`

	// MaxSessions caps the number of open view sessions (default: 1000)
	MaxSessions int `env:"VIEW_MAX_SESSIONS" default:"1000"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// ReloadLimit is requests per minute for the reload endpoint (default: 6)
	ReloadLimit int `env:"RATE_LIMIT_RELOAD" default:"6"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// UsesDatabase reports whether records are loaded from PostgreSQL.
func (c *Config) UsesDatabase() bool {
	return c.Source.Table != ""
}
