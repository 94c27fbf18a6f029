// Package config provides centralized configuration management for the
// application. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast
// on misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Redis    RedisConfig
	Source   SourceConfig
	Import   ImportConfig
	Match    MatchConfig
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

	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// forwarding headers are honored for client IPs.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// DatabaseConfig holds database connection settings. When URL is empty
// the server runs on the in-memory store, which is fine for a single
// coach on a laptop but loses everything on restart.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// CacheConfig holds the local mapping-cache settings.
type CacheConfig struct {
	// Path is the SQLite file mirroring field mappings locally.
	// Empty disables the cache.
	Path string `env:"CACHE_PATH" default:"rosterd-cache.db"`
}

// RedisConfig holds roster-event publishing settings. When Addr is
// empty events are discarded.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" default:"0"`

	// Channel is the pub/sub channel for roster events (default: rosterd:events)
	Channel string `env:"REDIS_CHANNEL" default:"rosterd:events"`
}

// SourceConfig holds upstream CSV export settings.
type SourceConfig struct {
	// RiderURL and CoachURL are the export endpoints for server-side
	// fetch. Empty disables fetch for that entity; pasted CSV always works.
	RiderURL string `env:"SOURCE_RIDER_URL"`
	CoachURL string `env:"SOURCE_COACH_URL"`

	// AuthHeader and AuthToken are sent on every fetch when set,
	// e.g. AUTH_HEADER=Authorization AUTH_TOKEN="Bearer xyz".
	AuthHeader string `env:"SOURCE_AUTH_HEADER"`
	AuthToken  string `env:"SOURCE_AUTH_TOKEN"`

	// Timeout is the fetch timeout (default: 30s)
	Timeout time.Duration `env:"SOURCE_TIMEOUT" default:"30s"`
}

// ImportConfig holds CSV import settings.
type ImportConfig struct {
	// MaxBodySize is the maximum accepted CSV payload in bytes (default: 10MB)
	MaxBodySize int64 `env:"IMPORT_MAX_BODY_SIZE" default:"10485760"`
}

// MatchConfig holds record-matching settings.
type MatchConfig struct {
	// Threshold is the minimum score that counts as a match (default: 0.7)
	Threshold float64 `env:"MATCH_THRESHOLD" default:"0.7"`

	// ExactOnly disables fuzzy matching entirely (default: false)
	ExactOnly bool `env:"MATCH_EXACT_ONLY" default:"false"`
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
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
