// Package app wires all painvoice subsystems into a running service.
//
// New builds the parser engine, stores, caches and HTTP routes from the
// config, Serve/Run handle HTTP until the context ends, and Shutdown
// releases the stores. Reload applies hot-reloadable config changes.
//
// For testing, inject doubles via functional options (WithSessionStore,
// WithMedicationSource, WithSegmentStore). When an option is not provided,
// New creates real implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/painvoice/internal/api"
	"github.com/MrWong99/painvoice/internal/config"
	"github.com/MrWong99/painvoice/internal/engine"
	"github.com/MrWong99/painvoice/internal/health"
	"github.com/MrWong99/painvoice/internal/mcpserver"
	"github.com/MrWong99/painvoice/internal/observe"
	"github.com/MrWong99/painvoice/internal/resilience"
	"github.com/MrWong99/painvoice/internal/session"
	"github.com/MrWong99/painvoice/internal/store/medcache"
	"github.com/MrWong99/painvoice/internal/store/postgres"
)

// ShutdownTimeout bounds the graceful HTTP shutdown.
const ShutdownTimeout = 15 * time.Second

// App owns all subsystem lifetimes of the painvoice service.
type App struct {
	cfg        *config.Config
	configPath string
	version    string
	level      *slog.LevelVar
	metrics    *observe.Metrics

	// Subsystems, initialised in New, torn down in Shutdown.
	engine       *engine.Handle
	medSrc       medcache.Source
	meds         *medcache.Cache
	segments     api.SegmentStore
	sessionStore session.Store
	sessions     *session.Manager
	checkers     []health.Checker
	handler      http.Handler

	// closers are called in order during Shutdown.
	closers []func() error

	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithConfigPath makes Run watch path and apply changes via [App.Reload].
func WithConfigPath(path string) Option {
	return func(a *App) { a.configPath = path }
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *App) { a.version = v }
}

// WithLevelVar lets Reload change the level of the handler lv belongs to.
func WithLevelVar(lv *slog.LevelVar) Option {
	return func(a *App) { a.level = lv }
}

// WithMetrics records to m instead of [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithSessionStore injects a review-session store instead of creating one
// from config.
func WithSessionStore(s session.Store) Option {
	return func(a *App) { a.sessionStore = s }
}

// WithMedicationSource injects the medication source behind the cache
// instead of connecting to PostgreSQL. If src also implements
// [api.MedicationWriter] the add-medication route is enabled.
func WithMedicationSource(src medcache.Source) Option {
	return func(a *App) { a.medSrc = src }
}

// WithSegmentStore injects a segment store instead of connecting to
// PostgreSQL.
func WithSegmentStore(s api.SegmentStore) Option {
	return func(a *App) { a.segments = s }
}

// ─── New ─────────────────────────────────────────────────────────────────────

// New creates an App by wiring all subsystems together. A PostgreSQL
// connection is opened only when database.postgres_dsn is set and neither
// store was injected.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg, version: "dev"}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	// ── 1. Parser engine ─────────────────────────────────────────────────
	eng, err := engine.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("app: init engine: %w", err)
	}
	a.engine = engine.NewHandle(eng)

	// ── 2. PostgreSQL ────────────────────────────────────────────────────
	if err := a.initPostgres(ctx); err != nil {
		a.closeAll()
		return nil, fmt.Errorf("app: init postgres: %w", err)
	}

	// ── 3. Medication cache ──────────────────────────────────────────────
	if a.medSrc != nil {
		a.meds = medcache.New(a.medSrc, cfg.Cache.MedicationTTL,
			medcache.WithBreaker(resilience.New(resilience.Config{Name: "medications"})),
			medcache.WithMetrics(a.metrics),
		)
	}

	// ── 4. Review sessions ───────────────────────────────────────────────
	if err := a.initSessions(ctx); err != nil {
		a.closeAll()
		return nil, fmt.Errorf("app: init sessions: %w", err)
	}
	a.sessions = session.NewManager(a.sessionStore, a.engine, session.WithMetrics(a.metrics))

	// ── 5. HTTP routes ───────────────────────────────────────────────────
	a.handler = a.buildHandler()

	slog.Info("app initialised",
		"nlp_version", eng.Version(),
		"postgres", a.segments != nil,
		"sessions", cfg.Sessions.Backend,
		"mcp", cfg.MCP.Enabled,
	)
	return a, nil
}

// ─── Init helpers ────────────────────────────────────────────────────────────

func (a *App) initPostgres(ctx context.Context) error {
	if a.cfg.Database.PostgresDSN == "" || a.medSrc != nil || a.segments != nil {
		return nil
	}
	st, err := postgres.NewStore(ctx, a.cfg.Database.PostgresDSN)
	if err != nil {
		return err
	}
	a.medSrc = st
	a.segments = st
	a.checkers = append(a.checkers, health.Ping("postgres", st))
	a.closers = append(a.closers, func() error { st.Close(); return nil })
	return nil
}

func (a *App) initSessions(ctx context.Context) error {
	if a.sessionStore != nil {
		return nil
	}
	sc := a.cfg.Sessions
	switch sc.Backend {
	case config.SessionRedis:
		rs, err := session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     sc.RedisAddr,
			Password: sc.RedisPassword,
			DB:       sc.RedisDB,
			TTL:      sc.TTL,
		})
		if err != nil {
			return err
		}
		a.sessionStore = rs
		a.checkers = append(a.checkers, health.Ping("redis", rs))
		a.closers = append(a.closers, rs.Close)
	default:
		a.sessionStore = session.NewMemoryStore(sc.TTL)
	}
	return nil
}

func (a *App) buildHandler() http.Handler {
	apiOpts := []api.Option{
		api.WithMetrics(a.metrics),
		api.WithSessions(a.sessions),
	}
	mcpOpts := []mcpserver.Option{mcpserver.WithMetrics(a.metrics)}
	if a.segments != nil {
		apiOpts = append(apiOpts, api.WithSegmentStore(a.segments))
	}
	if a.meds != nil {
		apiOpts = append(apiOpts, api.WithMedicationSource(a.meds))
		mcpOpts = append(mcpOpts, mcpserver.WithMedicationSource(a.meds))
	}
	if w, ok := a.medSrc.(api.MedicationWriter); ok {
		apiOpts = append(apiOpts, api.WithMedicationWriter(w))
	}

	mux := http.NewServeMux()
	api.New(a.engine, apiOpts...).Register(mux)
	health.New(a.checkers...).Register(mux)
	mux.Handle("GET /metrics", observe.MetricsHandler())
	if a.cfg.MCP.Enabled {
		mux.Handle(a.cfg.MCP.Path, mcpserver.Handler(mcpserver.New(a.engine, a.version, mcpOpts...)))
	}
	return observe.Middleware(a.metrics)(mux)
}

// Handler returns the fully wired HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

// Engine returns the handle of the active parser engine.
func (a *App) Engine() *engine.Handle { return a.engine }

// ─── Run ─────────────────────────────────────────────────────────────────────

// Run listens on server.listen_addr and serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Server.ListenAddr)
	if err != nil {
		return fmt.Errorf("app: listen: %w", err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves HTTP on ln until ctx is cancelled, then drains in-flight
// requests for up to [ShutdownTimeout]. When a config path was given, the
// file is watched for hot-reloadable changes for the same duration.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	if a.configPath != "" {
		w, err := config.NewWatcher(a.configPath, a.ApplyChange)
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("app: %w", err)
		}
		g.Go(func() error {
			<-gctx.Done()
			w.Stop()
			return nil
		})
	}

	g.Go(func() error {
		tls := a.cfg.Server.TLS
		slog.Info("http server listening", "addr", ln.Addr().String(), "tls", tls != nil)

		var err error
		if tls != nil {
			err = srv.ServeTLS(ln, tls.CertFile, tls.KeyFile)
		} else {
			err = srv.Serve(ln)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("app: http server: %w", err)
	})

	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("app: http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// ─── Reload ──────────────────────────────────────────────────────────────────

// Reload applies the hot-reloadable differences between old and new: log
// level, parser rules and medication cache TTL. Other changes are logged as
// requiring a restart.
func (a *App) Reload(old, new *config.Config) {
	a.apply(config.Diff(old, new), new)
}

// ApplyChange applies a change reported by the config watcher. An edited
// lexicon file rebuilds the parser even when the config itself is
// unchanged.
func (a *App) ApplyChange(ch config.Change) {
	a.apply(ch.Diff(), ch.New)
}

func (a *App) apply(d config.ConfigDiff, new *config.Config) {
	if !d.Changed() {
		return
	}

	if d.LogLevelChanged && a.level != nil {
		a.level.Set(d.NewLogLevel.Level())
		slog.Info("log level changed", "level", d.NewLogLevel)
	}

	if d.ParserChanged {
		// The timezone is fixed at startup.
		next := *new
		next.Server.Timezone = a.cfg.Server.Timezone
		eng, err := engine.FromConfig(&next)
		if err != nil {
			slog.Error("parser reload failed, keeping previous rules", "err", err)
		} else {
			a.engine.Swap(eng)
			slog.Info("parser reloaded", "lexicon_file", new.Parser.LexiconFile)
		}
	}

	if d.MedicationTTLChanged && a.meds != nil {
		a.meds.SetTTL(new.Cache.MedicationTTL)
		slog.Info("medication cache ttl changed", "ttl", new.Cache.MedicationTTL)
	}

	if len(d.RestartRequired) > 0 {
		slog.Warn("config changes require a restart", "fields", d.RestartRequired)
	}
}

// ─── Shutdown ────────────────────────────────────────────────────────────────

// Shutdown closes all stores. It respects the context deadline: if ctx
// expires before all closers finish, remaining closers are skipped and the
// context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))
		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}
		slog.Info("shutdown complete")
	})
	return shutdownErr
}

// closeAll releases whatever New opened before failing.
func (a *App) closeAll() {
	for _, c := range a.closers {
		_ = c()
	}
	a.closers = nil
}
