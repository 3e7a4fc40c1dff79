package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/MrWong99/painvoice/internal/merge"
	"github.com/MrWong99/painvoice/internal/observe"
	"github.com/MrWong99/painvoice/internal/segment"
	"github.com/MrWong99/painvoice/pkg/types"
)

// textRequest is the body of every parse route.
type textRequest struct {
	Text     string                 `json:"text"`
	UserMeds []types.UserMedication `json:"userMeds"`
	UserID   string                 `json:"userId"`
}

type segmentRequest struct {
	textRequest
	VoiceNoteID string `json:"voiceNoteId"`
}

type segmentResponse struct {
	Segments     []segment.ContextSegment `json:"segments"`
	NLPVersion   string                   `json:"nlp_version,omitempty"`
	SegmentCount int                      `json:"segment_count"`
	Error        string                   `json:"error,omitempty"`
}

type mergeRequest struct {
	PreviousState  merge.ReviewState     `json:"previousState"`
	NewParseResult merge.NewParseResult  `json:"newParseResult"`
	UserEdited     merge.UserEditedFlags `json:"userEdited"`
}

// readText decodes a textRequest and rejects blank text with 400.
func (s *Server) readText(w http.ResponseWriter, r *http.Request) (textRequest, bool) {
	var req textRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return req, false
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, errEmptyText)
		return req, false
	}
	return req, true
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	req, ok := s.readText(w, r)
	if !ok {
		return
	}
	defer s.metrics.RecordParse(r.Context(), "normalize", time.Now())
	writeJSON(w, http.StatusOK, s.engine.Load().Parser().Normalize(req.Text))
}

func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	req, ok := s.readText(w, r)
	if !ok {
		return
	}
	meds := s.userMeds(r.Context(), req.UserMeds, req.UserID)

	start := time.Now()
	res := s.engine.Load().Parser().Score(req.Text, meds)
	s.metrics.RecordParse(r.Context(), "intent", start)
	s.metrics.RecordIntent(r.Context(), string(res.Intent))

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReminder(w http.ResponseWriter, r *http.Request) {
	req, ok := s.readText(w, r)
	if !ok {
		return
	}
	meds := s.userMeds(r.Context(), req.UserMeds, req.UserID)

	start := time.Now()
	res := s.engine.Load().Parser().Reminder(req.Text, meds)
	s.metrics.RecordParse(r.Context(), "reminder", start)

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	req, ok := s.readText(w, r)
	if !ok {
		return
	}
	meds := s.userMeds(r.Context(), req.UserMeds, req.UserID)

	start := time.Now()
	e := s.engine.Load().Parser().Parse(req.Text, meds)
	s.metrics.RecordParse(r.Context(), "entry", start)
	s.metrics.RecordIntent(r.Context(), string(e.Intent.Intent))

	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := merge.Validate(req.PreviousState, req.NewParseResult); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res := merge.Merge(req.PreviousState, req.NewParseResult, req.UserEdited, s.engine.Load().MergeOptions()...)
	s.metrics.RecordMerge(r.Context(), res.PainDefaultUsed)
	writeJSON(w, http.StatusOK, res)
}

// handleSegment splits the transcript into context segments. When a
// voiceNoteId is given and a store is configured the segmentation replaces
// the stored one; a storage failure still returns the segments, with 500.
func (s *Server) handleSegment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req segmentRequest
	if err := decode(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, segmentResponse{Segments: []segment.ContextSegment{}, Error: err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, segmentResponse{Segments: []segment.ContextSegment{}, Error: errEmptyText.Error()})
		return
	}
	meds := s.userMeds(ctx, req.UserMeds, req.UserID)

	eng := s.engine.Load()
	start := time.Now()
	segs := eng.Segmenter().Segment(req.Text, meds)
	s.metrics.RecordParse(ctx, "segment", start)
	for _, seg := range segs {
		s.metrics.RecordSegment(ctx, string(seg.Type))
	}

	resp := segmentResponse{Segments: segs, NLPVersion: eng.Version(), SegmentCount: len(segs)}

	if req.VoiceNoteID != "" && s.segments != nil {
		pctx, span := observe.StartSpan(ctx, "segment.persist")
		span.SetAttributes(
			attribute.String("voice_note_id", req.VoiceNoteID),
			attribute.Int("segment_count", len(segs)),
		)
		err := s.segments.ReplaceSegments(pctx, req.VoiceNoteID, segs, eng.Version())
		observe.EndSpan(span, err)
		if err != nil {
			s.metrics.RecordStoreError(ctx, "postgres", "replace_segments")
			observe.Logger(ctx).Error("persist segments", "voice_note_id", req.VoiceNoteID, "err", err)
			resp.Error = "failed to persist segments"
			writeJSON(w, http.StatusInternalServerError, resp)
			return
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSegments(w http.ResponseWriter, r *http.Request) {
	if s.segments == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("segment store not configured"))
		return
	}
	id := r.PathValue("voiceNoteId")
	segs, version, err := s.segments.ListSegments(r.Context(), id)
	if err != nil {
		s.metrics.RecordStoreError(r.Context(), "postgres", "list_segments")
		observe.Logger(r.Context()).Error("list segments", "voice_note_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, fmt.Errorf("list segments for %s failed", id))
		return
	}
	if len(segs) == 0 {
		writeJSON(w, http.StatusNotFound, segmentResponse{Segments: []segment.ContextSegment{}, Error: "no segments stored"})
		return
	}
	writeJSON(w, http.StatusOK, segmentResponse{Segments: segs, NLPVersion: version, SegmentCount: len(segs)})
}
