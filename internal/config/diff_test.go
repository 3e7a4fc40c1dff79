package config_test

import (
	"slices"
	"testing"
	"time"

	"github.com/MrWong99/painvoice/internal/config"
)

func baseConfig() *config.Config {
	pain := 5
	cfg := &config.Config{
		Server: config.ServerConfig{LogLevel: config.LogInfo},
		Parser: config.ParserConfig{DefaultPainLevel: &pain},
	}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestDiff_NoChanges(t *testing.T) {
	t.Parallel()
	d := config.Diff(baseConfig(), baseConfig())
	if d.Changed() {
		t.Errorf("expected no changes for identical configs, got %+v", d)
	}
}

func TestDiff_LogLevelChanged(t *testing.T) {
	t.Parallel()
	old, new := baseConfig(), baseConfig()
	new.Server.LogLevel = config.LogDebug

	d := config.Diff(old, new)
	if !d.LogLevelChanged {
		t.Error("expected LogLevelChanged=true")
	}
	if d.NewLogLevel != config.LogDebug {
		t.Errorf("expected NewLogLevel=debug, got %q", d.NewLogLevel)
	}
	if len(d.RestartRequired) != 0 {
		t.Errorf("log level is hot-reloadable, got restart %v", d.RestartRequired)
	}
}

func TestDiff_ParserChanged(t *testing.T) {
	t.Parallel()

	old, new := baseConfig(), baseConfig()
	new.Parser.LexiconFile = "/etc/painvoice/lexicon.yaml"
	if !config.Diff(old, new).ParserChanged {
		t.Error("lexicon file change not detected")
	}

	// Same value behind a different pointer is not a change.
	new = baseConfig()
	if config.Diff(old, new).ParserChanged {
		t.Error("equal default pain reported as changed")
	}

	new.Parser.DefaultPainLevel = nil
	if !config.Diff(old, new).ParserChanged {
		t.Error("removed default pain not detected")
	}
}

func TestDiff_MedicationTTL(t *testing.T) {
	t.Parallel()
	old, new := baseConfig(), baseConfig()
	new.Cache.MedicationTTL = time.Minute
	if !config.Diff(old, new).MedicationTTLChanged {
		t.Error("medication ttl change not detected")
	}
}

func TestDiff_RestartRequired(t *testing.T) {
	t.Parallel()
	old, new := baseConfig(), baseConfig()
	new.Server.ListenAddr = ":9999"
	new.Database.PostgresDSN = "postgres://localhost/other"
	new.Sessions.Backend = config.SessionRedis
	new.Server.TLS = &config.TLSConfig{CertFile: "c", KeyFile: "k"}

	d := config.Diff(old, new)
	want := []string{"server.listen_addr", "server.tls", "database.postgres_dsn", "sessions"}
	if !slices.Equal(d.RestartRequired, want) {
		t.Errorf("RestartRequired = %v, want %v", d.RestartRequired, want)
	}
}
