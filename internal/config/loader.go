package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by [ApplyDefaults].
const (
	DefaultListenAddr    = ":8080"
	DefaultTimezone      = "Europe/Berlin"
	DefaultMedicationTTL = 5 * time.Minute
	DefaultSessionTTL    = 2 * time.Hour
	DefaultMCPPath       = "/mcp"
)

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, fills defaults and validates
// the result. An empty document yields the default configuration.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills zero-valued fields of cfg with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = DefaultListenAddr
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.Server.Timezone == "" {
		cfg.Server.Timezone = DefaultTimezone
	}
	if cfg.Cache.MedicationTTL == 0 {
		cfg.Cache.MedicationTTL = DefaultMedicationTTL
	}
	if cfg.Sessions.Backend == "" {
		cfg.Sessions.Backend = SessionMemory
	}
	if cfg.Sessions.TTL == 0 {
		cfg.Sessions.TTL = DefaultSessionTTL
	}
	if cfg.MCP.Path == "" {
		cfg.MCP.Path = DefaultMCPPath
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Server.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("server.timezone %q is invalid: %w", cfg.Server.Timezone, err))
		}
	}
	if tls := cfg.Server.TLS; tls != nil && (tls.CertFile == "" || tls.KeyFile == "") {
		errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
	}

	// Parser
	if p := cfg.Parser.DefaultPainLevel; p != nil && *p > 10 {
		errs = append(errs, fmt.Errorf("parser.default_pain_level %d is out of range [0, 10]", *p))
	}
	if f := cfg.Parser.LexiconFile; f != "" {
		if _, err := os.Stat(f); err != nil {
			slog.Warn("parser.lexicon_file is not readable; built-in rules will be used until it appears", "path", f, "err", err)
		}
	}

	// Database
	if dsn := cfg.Database.PostgresDSN; dsn != "" && !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") && !strings.Contains(dsn, "=") {
		errs = append(errs, errors.New("database.postgres_dsn is neither a URL nor a key=value connection string"))
	}
	if cfg.Database.PostgresDSN == "" {
		slog.Warn("database.postgres_dsn is empty; segments will not be persisted and userId lookups are disabled")
	}

	// Cache
	if cfg.Cache.MedicationTTL < 0 {
		errs = append(errs, fmt.Errorf("cache.medication_ttl %s must not be negative", cfg.Cache.MedicationTTL))
	}

	// Sessions
	if cfg.Sessions.Backend != "" && !cfg.Sessions.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("sessions.backend %q is invalid; valid values: memory, redis", cfg.Sessions.Backend))
	}
	if cfg.Sessions.Backend == SessionRedis && cfg.Sessions.RedisAddr == "" {
		errs = append(errs, errors.New("sessions.redis_addr is required when backend is redis"))
	}
	if cfg.Sessions.TTL < 0 {
		errs = append(errs, fmt.Errorf("sessions.ttl %s must not be negative", cfg.Sessions.TTL))
	}

	// MCP
	if cfg.MCP.Enabled && !strings.HasPrefix(cfg.MCP.Path, "/") {
		errs = append(errs, fmt.Errorf("mcp.path %q must start with /", cfg.MCP.Path))
	}

	return errors.Join(errs...)
}

// Location returns the configured time zone, falling back to UTC when the
// zone cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
