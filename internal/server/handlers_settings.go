package server

import (
	"encoding/json"
	"net/http"

	"github.com/claude/ironplan/internal/apperr"
	"github.com/claude/ironplan/internal/models"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.GetSettings(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.TrainingSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := validateSettings(&settings); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.store.SaveSettings(r.Context(), userIDFromContext(r), settings); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func validateSettings(settings *models.TrainingSettings) error {
	if settings.BarWeight <= 0 {
		return apperr.Validation("barWeight must be positive")
	}
	if settings.OlympicIncrement <= 0 || settings.PowerliftingIncrement <= 0 || settings.AccessoryIncrement <= 0 {
		return apperr.Validation("increments must be positive")
	}
	if settings.DefaultRestSeconds < 0 || settings.DefaultBlockRest < 0 {
		return apperr.Validation("rest durations cannot be negative")
	}
	return nil
}
