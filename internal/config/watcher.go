package config

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Change is one reload reported by a [Watcher].
type Change struct {
	Old, New *Config

	// LexiconChanged is set when the contents of the lexicon override file
	// changed while parser.lexicon_file kept naming the same file.
	LexiconChanged bool
}

// Diff returns Diff(c.Old, c.New). An edited lexicon file also marks the
// parser as changed.
func (c Change) Diff() ConfigDiff {
	d := Diff(c.Old, c.New)
	if c.LexiconChanged {
		d.ParserChanged = true
	}
	return d
}

// sources fingerprints every file a configuration is read from. A lexicon
// file that cannot be read hashes to the zero value.
type sources struct {
	config  [sha256.Size]byte
	lexicon [sha256.Size]byte
}

// Watcher polls the config file and the lexicon override file it names.
// Edits to either produce a [Change] once the config parses; invalid
// configs are logged and the previous one stays current.
type Watcher struct {
	path     string
	interval time.Duration
	onChange func(Change)

	mu       sync.Mutex
	current  *Config
	sums     sources
	done     chan struct{}
	stopOnce sync.Once
}

// WatcherOption configures a [Watcher].
type WatcherOption func(*Watcher)

// WithInterval sets the polling interval. The default is 5 seconds.
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// NewWatcher loads the config at path and starts polling it and its
// lexicon file in a background goroutine. The initial load must succeed.
func NewWatcher(path string, onChange func(Change), opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		path:     path,
		interval: 5 * time.Second,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	cfg, sums, err := w.snapshot()
	if err != nil {
		return nil, fmt.Errorf("config: watcher initial load: %w", err)
	}
	w.current, w.sums = cfg, sums

	go w.poll()
	return w, nil
}

// Current returns the most recently loaded valid config.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Stop stops polling. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
	})
}

func (w *Watcher) poll() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

func (w *Watcher) check() {
	cfg, sums, err := w.snapshot()
	if err != nil {
		slog.Warn("config watcher: keeping previous config", "path", w.path, "err", err)
		return
	}

	w.mu.Lock()
	if sums == w.sums {
		w.mu.Unlock()
		return
	}
	ch := Change{
		Old:            w.current,
		New:            cfg,
		LexiconChanged: sums.lexicon != w.sums.lexicon && cfg.Parser.LexiconFile == w.current.Parser.LexiconFile,
	}
	w.current, w.sums = cfg, sums
	w.mu.Unlock()

	slog.Info("config watcher: configuration reloaded", "path", w.path, "lexicon_changed", ch.LexiconChanged)

	// Outside the lock so the callback may call Current.
	if w.onChange != nil {
		w.onChange(ch)
	}
}

func (w *Watcher) snapshot() (*Config, sources, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil, sources{}, err
	}
	cfg, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, sources{}, err
	}

	sums := sources{config: sha256.Sum256(data)}
	if f := cfg.Parser.LexiconFile; f != "" {
		// The loader already warned about a missing file; it counts as a
		// change once it appears.
		if lex, err := os.ReadFile(f); err == nil {
			sums.lexicon = sha256.Sum256(lex)
		}
	}
	return cfg, sums, nil
}
