package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/ironplan/internal/apperr"
)

func (s *Server) handleActiveAssignment(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	view, err := s.engine.ActiveViewFor(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type assignRequest struct {
	ProgramID uuid.UUID `json:"programId"`
	StartDate time.Time `json:"startDate"`
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.ProgramID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "programId is required"})
		return
	}
	if req.StartDate.IsZero() {
		req.StartDate = time.Now()
	}

	a, err := s.engine.Assign(r.Context(), uid, req.ProgramID, req.StartDate)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"assignment": a})
}

func (s *Server) handleUnassign(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid assignment or program id"})
		return
	}

	a, err := s.engine.Unassign(r.Context(), uid, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assignment": a})
}

type completeDayRequest struct {
	ProgramDayID uuid.UUID `json:"programDayId"`
}

func (s *Server) handleCompleteDay(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)

	var req completeDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.ProgramDayID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "programDayId is required"})
		return
	}

	result, err := s.engine.CompleteDay(r.Context(), uid, req.ProgramDayID, nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeError maps the error taxonomy to HTTP statuses. Internal failures
// are logged and surface a generic message only.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindInternal:
		s.log.Error("internal error", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": apperr.Message(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 30 days
		end = time.Now()
		start = end.AddDate(0, 0, -30)
		return
	}

	start, err = parseFlexTime(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if endStr == "" {
		end = time.Now()
		return
	}
	end, err = parseFlexTime(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}
