// Package api exposes the transcript parser over HTTP.
//
// All routes accept and return JSON. Request bodies use the camelCase field
// names of the diary app (text, userMeds, userId, voiceNoteId); responses
// reuse the JSON shapes of the parser packages.
//
//	POST   /v1/normalize
//	POST   /v1/intent
//	POST   /v1/segment
//	GET    /v1/segments/{voiceNoteId}
//	POST   /v1/reminder
//	POST   /v1/entry
//	POST   /v1/merge
//	POST   /v1/sessions/{id}/append
//	GET    /v1/sessions/{id}
//	DELETE /v1/sessions/{id}
//	GET    /v1/users/{userId}/medications
//	POST   /v1/users/{userId}/medications
//	GET    /v1/dictate            (websocket)
package api

import (
	"context"
	"net/http"

	"github.com/MrWong99/painvoice/internal/engine"
	"github.com/MrWong99/painvoice/internal/observe"
	"github.com/MrWong99/painvoice/internal/segment"
	"github.com/MrWong99/painvoice/internal/session"
	"github.com/MrWong99/painvoice/pkg/types"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// SegmentStore persists per-note segmentations. *postgres.Store implements it.
type SegmentStore interface {
	ReplaceSegments(ctx context.Context, voiceNoteID string, segs []segment.ContextSegment, version string) error
	ListSegments(ctx context.Context, voiceNoteID string) ([]segment.ContextSegment, string, error)
}

// MedicationSource resolves a user ID to the user's medication list.
// *medcache.Cache implements it. If the source also has an
// Invalidate(userID string) method it is called after a medication is added.
type MedicationSource interface {
	ListMedications(ctx context.Context, userID string) ([]types.UserMedication, error)
}

// MedicationWriter adds medications to a user's list. *postgres.Store
// implements it.
type MedicationWriter interface {
	AddMedication(ctx context.Context, userID, name string) (types.UserMedication, error)
}

type invalidator interface {
	Invalidate(userID string)
}

// Server holds the handler dependencies. Only the engine is required; the
// routes backed by a missing dependency answer 503.
type Server struct {
	engine    *engine.Handle
	sessions  *session.Manager
	segments  SegmentStore
	meds      MedicationSource
	medWriter MedicationWriter
	metrics   *observe.Metrics
	origins   []string
}

// Option configures a [Server].
type Option func(*Server)

// WithSessions enables the session and dictation routes.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) { s.sessions = m }
}

// WithSegmentStore persists segmentations that carry a voiceNoteId.
func WithSegmentStore(st SegmentStore) Option {
	return func(s *Server) { s.segments = st }
}

// WithMedicationSource resolves userId when a request has no userMeds.
func WithMedicationSource(src MedicationSource) Option {
	return func(s *Server) { s.meds = src }
}

// WithMedicationWriter enables POST /v1/users/{userId}/medications.
func WithMedicationWriter(w MedicationWriter) Option {
	return func(s *Server) { s.medWriter = w }
}

// WithMetrics records parser metrics to m. Defaults to [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithOriginPatterns allows cross-origin websocket connections from hosts
// matching patterns.
func WithOriginPatterns(patterns ...string) Option {
	return func(s *Server) { s.origins = patterns }
}

// New returns a Server parsing with the engine held by h.
func New(h *engine.Handle, opts ...Option) *Server {
	s := &Server{engine: h}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// Register adds all routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/normalize", s.handleNormalize)
	mux.HandleFunc("POST /v1/intent", s.handleIntent)
	mux.HandleFunc("POST /v1/segment", s.handleSegment)
	mux.HandleFunc("GET /v1/segments/{voiceNoteId}", s.handleListSegments)
	mux.HandleFunc("POST /v1/reminder", s.handleReminder)
	mux.HandleFunc("POST /v1/entry", s.handleEntry)
	mux.HandleFunc("POST /v1/merge", s.handleMerge)

	mux.HandleFunc("POST /v1/sessions/{id}/append", s.handleSessionAppend)
	mux.HandleFunc("GET /v1/sessions/{id}", s.handleSessionGet)
	mux.HandleFunc("DELETE /v1/sessions/{id}", s.handleSessionDelete)
	mux.HandleFunc("GET /v1/dictate", s.handleDictate)

	mux.HandleFunc("GET /v1/users/{userId}/medications", s.handleListMedications)
	mux.HandleFunc("POST /v1/users/{userId}/medications", s.handleAddMedication)
}

// Handler returns a mux with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

// userMeds returns explicit when non-empty, otherwise the medication list
// of userID. A failed lookup is logged and parsing continues without a
// personal lexicon.
func (s *Server) userMeds(ctx context.Context, explicit []types.UserMedication, userID string) []types.UserMedication {
	if len(explicit) > 0 || userID == "" || s.meds == nil {
		return explicit
	}
	meds, err := s.meds.ListMedications(ctx, userID)
	if err != nil {
		observe.Logger(ctx).Warn("medication lookup failed, parsing without user lexicon", "user_id", userID, "err", err)
		return nil
	}
	return meds
}
