package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/MrWong99/painvoice/internal/merge"
	"github.com/MrWong99/painvoice/internal/observe"
	"github.com/MrWong99/painvoice/internal/session"
)

var errNoSessions = errors.New("review sessions not configured")

type appendRequest struct {
	textRequest
	UserEdited merge.UserEditedFlags `json:"userEdited"`
}

func (s *Server) handleSessionAppend(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeError(w, http.StatusServiceUnavailable, errNoSessions)
		return
	}
	var req appendRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, errEmptyText)
		return
	}

	ctx := r.Context()
	id := r.PathValue("id")
	meds := s.userMeds(ctx, req.UserMeds, req.UserID)

	res, err := s.sessions.Append(ctx, id, req.Text, meds, req.UserEdited, s.engine.Load().MergeOptions()...)
	if err != nil {
		s.metrics.RecordStoreError(ctx, "sessions", "append")
		observe.Logger(ctx).Error("session append", "session_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, errors.New("session append failed"))
		return
	}
	s.metrics.RecordIntent(ctx, string(res.Entry.Intent.Intent))
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeError(w, http.StatusServiceUnavailable, errNoSessions)
		return
	}
	id := r.PathValue("id")
	rec, err := s.sessions.Get(r.Context(), id)
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case err != nil:
		s.metrics.RecordStoreError(r.Context(), "sessions", "get")
		observe.Logger(r.Context()).Error("session get", "session_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, errors.New("session lookup failed"))
	default:
		writeJSON(w, http.StatusOK, rec)
	}
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeError(w, http.StatusServiceUnavailable, errNoSessions)
		return
	}
	id := r.PathValue("id")
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.metrics.RecordStoreError(r.Context(), "sessions", "delete")
		observe.Logger(r.Context()).Error("session delete", "session_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, errors.New("session delete failed"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
