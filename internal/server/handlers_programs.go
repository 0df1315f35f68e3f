package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := s.store.ListPrograms(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, programs)
}

func (s *Server) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid program id"})
		return
	}

	program, err := s.store.ProgramByID(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if program == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "program not found"})
		return
	}
	writeJSON(w, http.StatusOK, program)
}

func (s *Server) handleListLifts(w http.ResponseWriter, r *http.Request) {
	lifts, err := s.store.ListLifts(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lifts)
}

// liftHistoryResponse is what the session client needs to seed load
// suggestions for one lift.
type liftHistoryResponse struct {
	OneRepMax  *float64         `json:"oneRepMax"`
	RecentSets []liftHistorySet `json:"recentSets"`
}

type liftHistorySet struct {
	Weight   float64 `json:"weight"`
	Reps     int     `json:"reps"`
	SetType  string  `json:"setType"`
	Feedback *string `json:"feedback,omitempty"`
}

// handleLiftHistory returns the derived one-rep max and recent set history
// for a lift, oldest set first.
func (s *Server) handleLiftHistory(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)

	liftID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid lift id"})
		return
	}

	resp := liftHistoryResponse{RecentSets: []liftHistorySet{}}

	if max, ok, err := s.store.OneRepMaxForLift(r.Context(), uid, liftID); err != nil {
		s.writeError(w, err)
		return
	} else if ok {
		resp.OneRepMax = &max
	}

	sets, err := s.store.RecentSetsForLift(r.Context(), uid, liftID, 20)
	if err != nil {
		s.writeError(w, err)
		return
	}
	for _, set := range sets {
		hs := liftHistorySet{Weight: set.Weight, Reps: set.Reps, SetType: string(set.SetType)}
		if set.Feedback != nil {
			fb := string(*set.Feedback)
			hs.Feedback = &fb
		}
		resp.RecentSets = append(resp.RecentSets, hs)
	}

	writeJSON(w, http.StatusOK, resp)
}
