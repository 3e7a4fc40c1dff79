package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MrWong99/painvoice/internal/entry"
	"github.com/MrWong99/painvoice/internal/merge"
	"github.com/MrWong99/painvoice/internal/observe"
	"github.com/MrWong99/painvoice/pkg/types"
)

// ErrEmptyID is returned for a blank session ID.
var ErrEmptyID = errors.New("session: empty id")

// Parser parses one utterance. *entry.Parser and *engine.Handle implement
// it; the latter picks up lexicon reloads.
type Parser interface {
	Parse(text string, userMeds []types.UserMedication) entry.VoiceEntry
}

// AppendResult is the outcome of one [Manager.Append].
type AppendResult struct {
	State           merge.ReviewState `json:"state"`
	PainDefaultUsed bool              `json:"pain_default_used"`
	Entry           entry.VoiceEntry  `json:"entry"`
}

// Manager applies utterances to stored sessions. Appends to the same
// session run one at a time so each merge sees the previous result;
// different sessions proceed in parallel.
type Manager struct {
	store   Store
	parser  Parser
	metrics *observe.Metrics
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// ManagerOption configures a [Manager].
type ManagerOption func(*Manager)

// WithMetrics records merges to m.
func WithMetrics(m *observe.Metrics) ManagerOption {
	return func(mgr *Manager) { mgr.metrics = m }
}

// WithClock replaces time.Now for UpdatedAt stamps.
func WithClock(now func() time.Time) ManagerOption {
	return func(mgr *Manager) { mgr.now = now }
}

// NewManager returns a Manager backed by store and parser.
func NewManager(store Store, parser Parser, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		parser: parser,
		now:    time.Now,
		locks:  make(map[string]*keyLock),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Append parses text and merges it into session id, creating the session on
// first use. mergeOpts are passed to [merge.Merge].
func (m *Manager) Append(ctx context.Context, id, text string, userMeds []types.UserMedication, edited merge.UserEditedFlags, mergeOpts ...merge.Option) (AppendResult, error) {
	if strings.TrimSpace(id) == "" {
		return AppendResult{}, ErrEmptyID
	}

	unlock := m.lock(id)
	defer unlock()

	rec, err := m.store.Get(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return AppendResult{}, fmt.Errorf("session: append %s: %w", id, err)
	}

	parsed := m.parser.Parse(text, userMeds)
	res := merge.Merge(rec.State, parsed.ParseResult(), edited, mergeOpts...)

	rec.State = res.State
	rec.Appends++
	rec.UpdatedAt = m.now()
	if err := m.store.Put(ctx, id, rec); err != nil {
		return AppendResult{}, fmt.Errorf("session: append %s: %w", id, err)
	}
	if m.metrics != nil {
		m.metrics.RecordMerge(ctx, res.PainDefaultUsed)
	}

	return AppendResult{State: res.State, PainDefaultUsed: res.PainDefaultUsed, Entry: parsed}, nil
}

// Get returns the stored record of session id.
func (m *Manager) Get(ctx context.Context, id string) (Record, error) {
	return m.store.Get(ctx, id)
}

// Delete removes session id. Deleting an unknown session is not an error.
func (m *Manager) Delete(ctx context.Context, id string) error {
	unlock := m.lock(id)
	defer unlock()
	return m.store.Delete(ctx, id)
}

// lock acquires the per-session mutex and returns its release function.
// Entries are dropped from the map once no caller holds or waits for them.
func (m *Manager) lock(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &keyLock{}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, id)
		}
		m.mu.Unlock()
	}
}
