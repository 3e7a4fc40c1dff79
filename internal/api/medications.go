package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/MrWong99/painvoice/internal/observe"
)

type addMedicationRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListMedications(w http.ResponseWriter, r *http.Request) {
	if s.meds == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("medication store not configured"))
		return
	}
	userID := r.PathValue("userId")
	meds, err := s.meds.ListMedications(r.Context(), userID)
	if err != nil {
		observe.Logger(r.Context()).Error("list medications", "user_id", userID, "err", err)
		writeError(w, http.StatusBadGateway, errors.New("medication lookup failed"))
		return
	}
	writeJSON(w, http.StatusOK, meds)
}

func (s *Server) handleAddMedication(w http.ResponseWriter, r *http.Request) {
	if s.medWriter == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("medication store not configured"))
		return
	}
	var req addMedicationRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}

	ctx := r.Context()
	userID := r.PathValue("userId")
	med, err := s.medWriter.AddMedication(ctx, userID, name)
	if err != nil {
		s.metrics.RecordStoreError(ctx, "postgres", "add_medication")
		observe.Logger(ctx).Error("add medication", "user_id", userID, "err", err)
		writeError(w, http.StatusInternalServerError, errors.New("add medication failed"))
		return
	}
	if inv, ok := s.meds.(invalidator); ok {
		inv.Invalidate(userID)
	}
	writeJSON(w, http.StatusCreated, med)
}
