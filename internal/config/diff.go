package config

// ConfigDiff describes what changed between two configs. Hot-reloadable
// fields are reported individually; everything else is listed in
// RestartRequired.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// ParserChanged is set when the lexicon file or the default pain level
	// changed; the parser must be rebuilt.
	ParserChanged bool

	MedicationTTLChanged bool

	// RestartRequired names changed settings that only take effect after a
	// restart.
	RestartRequired []string
}

// Changed reports whether d contains any change.
func (d ConfigDiff) Changed() bool {
	return d.LogLevelChanged || d.ParserChanged || d.MedicationTTLChanged || len(d.RestartRequired) > 0
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}
	if old.Parser.LexiconFile != new.Parser.LexiconFile || !samePain(old.Parser.DefaultPainLevel, new.Parser.DefaultPainLevel) {
		d.ParserChanged = true
	}
	if old.Cache.MedicationTTL != new.Cache.MedicationTTL {
		d.MedicationTTLChanged = true
	}

	restart := func(field string, changed bool) {
		if changed {
			d.RestartRequired = append(d.RestartRequired, field)
		}
	}
	restart("server.listen_addr", old.Server.ListenAddr != new.Server.ListenAddr)
	restart("server.timezone", old.Server.Timezone != new.Server.Timezone)
	restart("server.tls", !sameTLS(old.Server.TLS, new.Server.TLS))
	restart("database.postgres_dsn", old.Database.PostgresDSN != new.Database.PostgresDSN)
	restart("sessions", old.Sessions != new.Sessions)
	restart("mcp", old.MCP != new.MCP)

	return d
}

func samePain(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameTLS(a, b *TLSConfig) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
