// Package config provides the configuration schema and loader for the
// painvoice service.
package config

import (
	"log/slog"
	"time"
)

// LogLevel controls log verbosity for the painvoice server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps l to a slog level. Unknown values map to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SessionBackend selects where review-session state is kept.
type SessionBackend string

const (
	// SessionMemory keeps sessions in process memory. State is lost on
	// restart and not shared between replicas.
	SessionMemory SessionBackend = "memory"

	// SessionRedis keeps sessions in Redis.
	SessionRedis SessionBackend = "redis"
)

// IsValid reports whether b is a recognised session backend.
func (b SessionBackend) IsValid() bool {
	return b == SessionMemory || b == SessionRedis
}

// Config is the root configuration structure for painvoice.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Parser   ParserConfig   `yaml:"parser"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Sessions SessionsConfig `yaml:"sessions"`
	MCP      MCPConfig      `yaml:"mcp"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// Timezone is the IANA zone relative times ("gestern abend") are
	// resolved in.
	Timezone string `yaml:"timezone"`

	// TLS configures TLS for the server. When nil, the server runs plain HTTP.
	TLS *TLSConfig `yaml:"tls"`
}

// TLSConfig holds paths to TLS certificate and key files.
type TLSConfig struct {
	// CertFile is the path to the PEM-encoded TLS certificate.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded TLS private key.
	KeyFile string `yaml:"key_file"`
}

// ParserConfig tunes the transcript parser.
type ParserConfig struct {
	// LexiconFile is an optional YAML file with lexicon overrides applied
	// on top of the built-in German rules.
	LexiconFile string `yaml:"lexicon_file"`

	// DefaultPainLevel is filled in by the merge when no pain level was
	// ever stated. Nil selects 5; a negative value disables the default.
	DefaultPainLevel *int `yaml:"default_pain_level"`
}

// DatabaseConfig configures PostgreSQL.
type DatabaseConfig struct {
	// PostgresDSN is the connection string. When empty, segments are not
	// persisted and medication lists must be sent with each request.
	PostgresDSN string `yaml:"postgres_dsn"`
}

// CacheConfig configures in-process caches.
type CacheConfig struct {
	// MedicationTTL is how long a user's medication list is cached.
	MedicationTTL time.Duration `yaml:"medication_ttl"`
}

// SessionsConfig configures review-session storage.
type SessionsConfig struct {
	Backend       SessionBackend `yaml:"backend"`
	RedisAddr     string         `yaml:"redis_addr"`
	RedisPassword string         `yaml:"redis_password"`
	RedisDB       int            `yaml:"redis_db"`

	// TTL is how long an idle session is kept.
	TTL time.Duration `yaml:"ttl"`
}

// MCPConfig configures the MCP tool endpoint.
type MCPConfig struct {
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path the streamable transport is mounted on.
	Path string `yaml:"path"`
}
