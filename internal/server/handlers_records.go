package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/claude/ironplan/internal/models"
)

type createRecordRequest struct {
	LiftID uuid.UUID `json:"liftId"`
	Weight float64   `json:"weight"`
	Reps   int       `json:"reps"`
	Date   time.Time `json:"date"`
	Notes  string    `json:"notes"`
}

// handleCreateRecord records a manually entered personal record. The
// estimated one-rep max comes from the same Epley rule the detector uses.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)

	var req createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.LiftID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "liftId is required"})
		return
	}
	if req.Date.IsZero() {
		req.Date = time.Now()
	}

	res, err := s.detector.CheckAndRecord(r.Context(), uid, req.LiftID, req.Weight, req.Reps, nil, req.Date, req.Notes)
	if err != nil {
		s.writeError(w, err)
		return
	}

	record := res.Record
	if record == nil {
		// Not a new best; still return the computed estimate so the client
		// can show it, without persisting a redundant record.
		record = &models.PersonalRecord{
			UserID:             uid,
			LiftID:             req.LiftID,
			Weight:             req.Weight,
			Reps:               req.Reps,
			EstimatedOneRepMax: models.EstimateOneRepMax(req.Weight, req.Reps),
			Date:               req.Date,
			Notes:              req.Notes,
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"record":       record,
		"isPR":         res.IsPR,
		"previousBest": res.PreviousBest,
	})
}

func (s *Server) handleQueryRecords(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)

	var liftID *uuid.UUID
	if v := r.URL.Query().Get("liftId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid liftId"})
			return
		}
		liftID = &id
	}

	recs, err := s.store.QueryRecords(r.Context(), uid, liftID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
