package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/claude/ironplan/internal/apperr"
	"github.com/claude/ironplan/internal/models"
	"github.com/claude/ironplan/internal/progression"
)

type finishSetPayload struct {
	LiftID   uuid.UUID           `json:"liftId"`
	Weight   float64             `json:"weight"`
	Reps     int                 `json:"reps"`
	SetType  models.SetType      `json:"setType"`
	Feedback *models.SetFeedback `json:"feedback,omitempty"`
	RPE      *float64            `json:"rpe,omitempty"`
	LoggedAt time.Time           `json:"loggedAt"`
}

type finishSessionRequest struct {
	ProgramDayID *uuid.UUID         `json:"programDayId,omitempty"`
	Title        string             `json:"title"`
	StartedAt    time.Time          `json:"startedAt"`
	Sets         []finishSetPayload `json:"sets"`
}

type finishSessionResponse struct {
	Session         *models.WorkoutSession  `json:"session"`
	PersonalRecords []models.PersonalRecord `json:"personalRecords"`
	PRCount         int                     `json:"prCount"`
	Advanced        bool                    `json:"advanced"`
	NewWeekNumber   *int                    `json:"newWeekNumber"`
	NewCycle        *int                    `json:"newCycle"`
}

// handleFinishSession persists a finished live session, runs PR detection
// per set, and completes the scheduled day when one is referenced.
func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)

	var req finishSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	for i, set := range req.Sets {
		if !set.SetType.Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown set type"})
			return
		}
		if set.Feedback != nil && !set.Feedback.Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown feedback value"})
			return
		}
		if set.Weight < 0 || set.Reps <= 0 || set.LiftID == uuid.Nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set"})
			return
		}
		if req.Sets[i].LoggedAt.IsZero() {
			req.Sets[i].LoggedAt = time.Now()
		}
	}

	session := &models.WorkoutSession{
		Title:     req.Title,
		StartedAt: req.StartedAt,
	}
	for _, set := range req.Sets {
		session.Sets = append(session.Sets, models.WorkoutSet{
			ID:       uuid.New(),
			LiftID:   set.LiftID,
			Weight:   set.Weight,
			Reps:     set.Reps,
			SetType:  set.SetType,
			Feedback: set.Feedback,
			RPE:      set.RPE,
			LoggedAt: set.LoggedAt,
		})
	}

	var result *progression.CompleteDayResult
	if req.ProgramDayID != nil {
		var err error
		result, err = s.engine.CompleteDay(r.Context(), uid, *req.ProgramDayID, session)
		if err != nil {
			s.writeError(w, err)
			return
		}
	} else {
		session.ID = uuid.New()
		session.UserID = uid
		session.CompletedAt = time.Now()
		if session.StartedAt.IsZero() {
			session.StartedAt = session.CompletedAt
		}
		if session.Title == "" {
			session.Title = "Training session"
		}
		if err := s.store.InsertSession(r.Context(), session); err != nil {
			s.writeError(w, apperr.Internal(err))
			return
		}
	}

	resp := finishSessionResponse{Session: session}
	if result != nil {
		resp.Advanced = result.Advanced
		resp.NewWeekNumber = result.NewWeekNumber
		resp.NewCycle = result.NewCycle
	}

	for i := range session.Sets {
		set := &session.Sets[i]
		res, err := s.detector.CheckAndRecord(r.Context(), uid, set.LiftID,
			set.Weight, set.Reps, &set.ID, set.LoggedAt, "")
		if err != nil {
			s.log.Error("pr detection failed", "set", set.ID, "error", err)
			continue
		}
		if res.IsPR && res.Record != nil {
			resp.PersonalRecords = append(resp.PersonalRecords, *res.Record)
		}
	}
	resp.PRCount = len(resp.PersonalRecords)

	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleQuerySessions(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)

	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sessions, err := s.store.QuerySessions(r.Context(), uid, start, end)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}
