// Package server exposes the training progression API over HTTP: assignment
// lifecycle, day completion, finished sessions, personal records, and the
// supporting program/lift/settings reads.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/ironplan/internal/models"
	"github.com/claude/ironplan/internal/progression"
	"github.com/claude/ironplan/internal/records"
)

// Store is the persistence surface the handlers read from, beyond what the
// progression engine and PR detector already own. *storage.DB implements it.
type Store interface {
	ListPrograms(ctx context.Context) ([]models.ProgramTemplate, error)
	ProgramByID(ctx context.Context, id uuid.UUID) (*models.ProgramTemplate, error)
	ListLifts(ctx context.Context) ([]models.Lift, error)
	GetSettings(ctx context.Context, userID int) (models.TrainingSettings, error)
	SaveSettings(ctx context.Context, userID int, s models.TrainingSettings) error
	QueryRecords(ctx context.Context, userID int, liftID *uuid.UUID) ([]models.PersonalRecord, error)
	QuerySessions(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutSession, error)
	InsertSession(ctx context.Context, s *models.WorkoutSession) error
	RecentSetsForLift(ctx context.Context, userID int, liftID uuid.UUID, limit int) ([]models.WorkoutSet, error)
	OneRepMaxForLift(ctx context.Context, userID int, liftID uuid.UUID) (float64, bool, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    Store
	engine   *progression.Engine
	detector *records.Detector
	log      *slog.Logger
	router   chi.Router
}

// New creates a new Server with all routes configured. identity wraps every
// route; pass DevIdentity outside the tailnet.
func New(store Store, engine *progression.Engine, detector *records.Detector, identity func(http.Handler) http.Handler, log *slog.Logger) *Server {
	s := &Server{
		store:    store,
		engine:   engine,
		detector: detector,
		log:      log,
		router:   chi.NewRouter(),
	}
	s.routes(identity)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes(identity func(http.Handler) http.Handler) {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(identity)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/active-assignment", s.handleActiveAssignment)
		r.Post("/assignments", s.handleAssign)
		r.Post("/assignments/{id}/unassign", s.handleUnassign)
		r.Post("/complete-day", s.handleCompleteDay)

		r.Get("/sessions", s.handleQuerySessions)
		r.Post("/sessions", s.handleFinishSession)

		r.Get("/personal-records", s.handleQueryRecords)
		r.Post("/personal-records", s.handleCreateRecord)

		r.Get("/programs", s.handleListPrograms)
		r.Get("/programs/{id}", s.handleGetProgram)
		r.Get("/lifts", s.handleListLifts)
		r.Get("/lifts/{id}/history", s.handleLiftHistory)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleSaveSettings)
	})
}
