// Package engine bundles the parser components built from one lexicon so
// that the transport layers (HTTP, websocket, MCP) and the session manager
// always see a consistent set, and so that a lexicon reload can replace the
// whole set atomically.
package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MrWong99/painvoice/internal/config"
	"github.com/MrWong99/painvoice/internal/entry"
	"github.com/MrWong99/painvoice/internal/lexicon"
	"github.com/MrWong99/painvoice/internal/merge"
	"github.com/MrWong99/painvoice/internal/segment"
	"github.com/MrWong99/painvoice/pkg/types"
)

// Engine is an immutable parser bundle. It is safe for concurrent use.
type Engine struct {
	parser    *entry.Parser
	segmenter *segment.Segmenter
	mergeOpts []merge.Option
}

// Options configures [New].
type Options struct {
	// Lexicon defaults to the German lexicon.
	Lexicon *lexicon.Lexicon

	// DefaultPain is applied by merges when no pain level was spoken. Nil
	// keeps [merge.DefaultPainLevel]; a negative value disables the default.
	DefaultPain *int

	// Location resolves relative times. Defaults to time.Local.
	Location *time.Location

	// Clock replaces time.Now, for tests.
	Clock func() time.Time
}

// New builds an Engine.
func New(o Options) *Engine {
	lex := o.Lexicon
	if lex == nil {
		lex = lexicon.Default()
	}

	parserOpts := []entry.Option{entry.WithLexicon(lex)}
	if o.Location != nil {
		parserOpts = append(parserOpts, entry.WithLocation(o.Location))
	}
	if o.Clock != nil {
		parserOpts = append(parserOpts, entry.WithClock(o.Clock))
	}

	var mergeOpts []merge.Option
	switch {
	case o.DefaultPain == nil:
	case *o.DefaultPain < 0:
		mergeOpts = append(mergeOpts, merge.WithoutDefaultPain())
	default:
		mergeOpts = append(mergeOpts, merge.WithDefaultPain(*o.DefaultPain))
	}

	return &Engine{
		parser:    entry.New(parserOpts...),
		segmenter: segment.New(lex, nil),
		mergeOpts: mergeOpts,
	}
}

// FromConfig builds an Engine from the parser section of cfg, loading the
// lexicon override file if one is configured.
func FromConfig(cfg *config.Config) (*Engine, error) {
	lex, err := lexicon.LoadFile(cfg.Parser.LexiconFile)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	return New(Options{
		Lexicon:     lex,
		DefaultPain: cfg.Parser.DefaultPainLevel,
		Location:    cfg.Location(),
	}), nil
}

// Parser returns the voice entry parser.
func (e *Engine) Parser() *entry.Parser { return e.parser }

// Segmenter returns the context segmenter.
func (e *Engine) Segmenter() *segment.Segmenter { return e.segmenter }

// MergeOptions returns the options every merge must be called with.
func (e *Engine) MergeOptions() []merge.Option {
	return append([]merge.Option(nil), e.mergeOpts...)
}

// Version identifies the rule set results were produced with.
func (e *Engine) Version() string { return e.segmenter.Version() }

// Handle holds the current Engine. Readers never block a reload.
type Handle struct {
	cur atomic.Pointer[Engine]
}

// NewHandle returns a Handle serving e.
func NewHandle(e *Engine) *Handle {
	h := &Handle{}
	h.cur.Store(e)
	return h
}

// Load returns the current Engine.
func (h *Handle) Load() *Engine { return h.cur.Load() }

// Swap installs e for all later calls.
func (h *Handle) Swap(e *Engine) { h.cur.Store(e) }

// Parse parses with the current Engine.
func (h *Handle) Parse(text string, userMeds []types.UserMedication) entry.VoiceEntry {
	return h.Load().Parser().Parse(text, userMeds)
}
