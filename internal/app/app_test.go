package app_test

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/MrWong99/painvoice/internal/app"
	"github.com/MrWong99/painvoice/internal/config"
	"github.com/MrWong99/painvoice/internal/merge"
	"github.com/MrWong99/painvoice/internal/observe"
	"github.com/MrWong99/painvoice/internal/segment"
	"github.com/MrWong99/painvoice/internal/session"
	"github.com/MrWong99/painvoice/pkg/types"
)

// testConfig returns the default config: in-memory sessions, no database.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	return cfg
}

func testMetrics(t *testing.T) *observe.Metrics {
	t.Helper()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m
}

func newApp(t *testing.T, cfg *config.Config, opts ...app.Option) *app.App {
	t.Helper()
	opts = append([]app.Option{app.WithMetrics(testMetrics(t))}, opts...)
	a, err := app.New(context.Background(), cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a
}

func request(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

type countingMeds struct {
	mu    sync.Mutex
	calls int
	meds  []types.UserMedication
}

func (c *countingMeds) ListMedications(context.Context, string) ([]types.UserMedication, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.meds, nil
}

func (c *countingMeds) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type memSegments struct {
	mu   sync.Mutex
	segs map[string][]segment.ContextSegment
}

func (m *memSegments) ReplaceSegments(_ context.Context, id string, segs []segment.ContextSegment, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.segs == nil {
		m.segs = make(map[string][]segment.ContextSegment)
	}
	m.segs[id] = segs
	return nil
}

func (m *memSegments) ListSegments(_ context.Context, id string) ([]segment.ContextSegment, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.segs[id], "test", nil
}

// ── New ──────────────────────────────────────────────────────────────────────

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	h := newApp(t, testConfig(t)).Handler()

	tests := []struct {
		method, path, body string
		want               int
	}{
		{"GET", "/healthz", "", http.StatusOK},
		{"GET", "/readyz", "", http.StatusOK},
		{"GET", "/metrics", "", http.StatusOK},
		{"POST", "/v1/entry", `{"text":"Kopfschmerz Stärke 7"}`, http.StatusOK},
		{"POST", "/v1/sessions/a/append", `{"text":"Kopfschmerz Stärke 7"}`, http.StatusOK},
		{"GET", "/v1/segments/x", "", http.StatusServiceUnavailable},
		{"POST", "/mcp", "{}", http.StatusNotFound},
	}
	for _, tc := range tests {
		if rec := request(t, h, tc.method, tc.path, tc.body); rec.Code != tc.want {
			t.Errorf("%s %s = %d, want %d", tc.method, tc.path, rec.Code, tc.want)
		}
	}
}

func TestNew_CorrelationHeader(t *testing.T) {
	t.Parallel()

	rec := request(t, newApp(t, testConfig(t)).Handler(), "GET", "/healthz", "")
	if rec.Header().Get("X-Correlation-ID") == "" {
		t.Error("middleware not installed")
	}
}

func TestNew_MCPEnabled(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.MCP.Enabled = true
	rec := request(t, newApp(t, cfg).Handler(), "GET", cfg.MCP.Path, "")
	if rec.Code == http.StatusNotFound {
		t.Errorf("GET %s = 404, want MCP handler mounted", cfg.MCP.Path)
	}
}

func TestNew_InjectedStores(t *testing.T) {
	t.Parallel()

	meds := &countingMeds{meds: []types.UserMedication{{Name: "Ibuprofen 400"}}}
	segs := &memSegments{}
	store := session.NewMemoryStore(time.Hour)
	h := newApp(t, testConfig(t),
		app.WithMedicationSource(meds),
		app.WithSegmentStore(segs),
		app.WithSessionStore(store),
	).Handler()

	for range 3 {
		rec := request(t, h, "POST", "/v1/segment", `{"voiceNoteId":"n1","userId":"u1","text":"Ibuprofen genommen"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("segment status = %d: %s", rec.Code, rec.Body)
		}
	}
	if n := meds.count(); n != 1 {
		t.Errorf("medication source calls = %d, want 1 (cached)", n)
	}
	if len(segs.segs["n1"]) == 0 {
		t.Error("segments not persisted")
	}

	request(t, h, "POST", "/v1/sessions/s/append", `{"text":"Kopfschmerz Stärke 6"}`)
	if _, err := store.Get(context.Background(), "s"); err != nil {
		t.Errorf("injected session store not used: %v", err)
	}

	// countingMeds has no AddMedication.
	if rec := request(t, h, "POST", "/v1/users/u1/medications", `{"name":"x"}`); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("add medication = %d, want 503", rec.Code)
	}
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"missing lexicon file", func(c *config.Config) { c.Parser.LexiconFile = "/does/not/exist.yaml" }},
		{"unreachable redis", func(c *config.Config) {
			c.Sessions.Backend = config.SessionRedis
			c.Sessions.RedisAddr = "127.0.0.1:1"
		}},
		{"unreachable postgres", func(c *config.Config) {
			c.Database.PostgresDSN = "postgres://painvoice@127.0.0.1:1/painvoice?connect_timeout=2"
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig(t)
			tc.mutate(cfg)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if _, err := app.New(ctx, cfg, app.WithMetrics(testMetrics(t))); err == nil {
				t.Error("New succeeded, want error")
			}
		})
	}
}

// ── Reload ───────────────────────────────────────────────────────────────────

func TestReload(t *testing.T) {
	t.Parallel()

	var level slog.LevelVar
	old := testConfig(t)
	a := newApp(t, old, app.WithLevelVar(&level), app.WithMedicationSource(&countingMeds{}))

	next := *old
	next.Server.LogLevel = config.LogDebug
	disabled := -1
	next.Parser.DefaultPainLevel = &disabled
	next.Cache.MedicationTTL = time.Minute
	next.Server.ListenAddr = ":9999"

	before := a.Engine().Load()
	a.Reload(old, &next)

	if level.Level() != slog.LevelDebug {
		t.Errorf("level = %v, want debug", level.Level())
	}
	if a.Engine().Load() == before {
		t.Fatal("engine not swapped")
	}
	res := merge.Merge(merge.ReviewState{}, merge.NewParseResult{}, merge.UserEditedFlags{}, a.Engine().Load().MergeOptions()...)
	if res.PainDefaultUsed {
		t.Error("default pain still applied after reload disabled it")
	}

	// A broken lexicon file keeps the current engine.
	current := a.Engine().Load()
	broken := next
	broken.Parser.LexiconFile = "/does/not/exist.yaml"
	a.Reload(&next, &broken)
	if a.Engine().Load() != current {
		t.Error("engine replaced despite failed reload")
	}
}

func TestReload_NoChange(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	a := newApp(t, cfg)
	before := a.Engine().Load()
	a.Reload(cfg, cfg)
	if a.Engine().Load() != before {
		t.Error("engine swapped without a change")
	}
}

func TestApplyChange_LexiconEdit(t *testing.T) {
	t.Parallel()

	lexPath := filepath.Join(t.TempDir(), "lexicon.yaml")
	writeLexicon := func(canonical string) {
		t.Helper()
		if err := os.WriteFile(lexPath, []byte("synonyms:\n  dolormin: "+canonical+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	writeLexicon("Ibuprofen")

	cfg := testConfig(t)
	cfg.Parser.LexiconFile = lexPath
	a := newApp(t, cfg)
	canonical := func() string {
		c, _ := a.Engine().Load().Parser().Lexicon().Canonical("dolormin")
		return c
	}
	if got := canonical(); got != "Ibuprofen" {
		t.Fatalf("canonical = %q, want Ibuprofen", got)
	}

	writeLexicon("Naproxen")
	a.ApplyChange(config.Change{Old: cfg, New: cfg})
	if got := canonical(); got != "Ibuprofen" {
		t.Errorf("engine rebuilt without a reported lexicon change: %q", got)
	}

	a.ApplyChange(config.Change{Old: cfg, New: cfg, LexiconChanged: true})
	if got := canonical(); got != "Naproxen" {
		t.Errorf("canonical after lexicon edit = %q, want Naproxen", got)
	}
}

// ── Serve / Shutdown ─────────────────────────────────────────────────────────

func TestServe_GracefulStop(t *testing.T) {
	t.Parallel()

	a := newApp(t, testConfig(t))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		cancel()
		t.Fatalf("GET /healthz: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServe_BadConfigPath(t *testing.T) {
	t.Parallel()

	a := newApp(t, testConfig(t), app.WithConfigPath("/does/not/exist.yaml"))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Serve(context.Background(), ln); err == nil {
		t.Error("Serve succeeded without a readable config file")
	}
}

func TestShutdown_Idempotent(t *testing.T) {
	t.Parallel()

	a := newApp(t, testConfig(t))
	for range 2 {
		if err := a.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown: %v", err)
		}
	}

	expired, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.Shutdown(expired); err != nil && !errors.Is(err, context.Canceled) {
		t.Errorf("Shutdown after stop = %v", err)
	}
}
