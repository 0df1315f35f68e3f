package mcp

import (
	"context"

	"github.com/google/uuid"

	"github.com/claude/ironplan/internal/models"
	"github.com/claude/ironplan/internal/progression"
	"github.com/claude/ironplan/internal/storage"
	"github.com/claude/ironplan/internal/suggest"
)

// DataSource abstracts the data layer for MCP tools. Local (pgx-backed, via
// NewLocalSource) and HTTPClient (remote via REST API) both satisfy it.
type DataSource interface {
	ActiveAssignmentView(ctx context.Context, userID int) (*progression.ActiveView, error)
	PersonalRecords(ctx context.Context, userID int, liftID *uuid.UUID) ([]models.PersonalRecord, error)
	Sessions(ctx context.Context, userID int, start, end string) ([]models.WorkoutSession, error)
	Settings(ctx context.Context, userID int) (models.TrainingSettings, error)
	LiftByID(ctx context.Context, id uuid.UUID) (*models.Lift, error)
	// LiftHistory returns the lifter's current one-rep max for the lift (nil
	// when none) and their recent sets, oldest first.
	LiftHistory(ctx context.Context, userID int, liftID uuid.UUID) (*float64, []suggest.PreviousSet, error)
}

// localSource serves MCP tools straight from the database and the
// progression engine, for in-process use inside the server binary.
type localSource struct {
	db     *storage.DB
	engine *progression.Engine
}

// NewLocalSource wraps the storage layer and progression engine as a
// DataSource.
func NewLocalSource(db *storage.DB, engine *progression.Engine) DataSource {
	return &localSource{db: db, engine: engine}
}

func (l *localSource) ActiveAssignmentView(ctx context.Context, userID int) (*progression.ActiveView, error) {
	return l.engine.ActiveViewFor(ctx, userID)
}

func (l *localSource) PersonalRecords(ctx context.Context, userID int, liftID *uuid.UUID) ([]models.PersonalRecord, error) {
	return l.db.QueryRecords(ctx, userID, liftID)
}

func (l *localSource) Sessions(ctx context.Context, userID int, start, end string) ([]models.WorkoutSession, error) {
	s, e, err := defaultTimeRange(start, end)
	if err != nil {
		return nil, err
	}
	return l.db.QuerySessions(ctx, userID, s, e)
}

func (l *localSource) Settings(ctx context.Context, userID int) (models.TrainingSettings, error) {
	return l.db.GetSettings(ctx, userID)
}

func (l *localSource) LiftByID(ctx context.Context, id uuid.UUID) (*models.Lift, error) {
	return l.db.LiftByID(ctx, id)
}

func (l *localSource) LiftHistory(ctx context.Context, userID int, liftID uuid.UUID) (*float64, []suggest.PreviousSet, error) {
	var oneRM *float64
	if max, ok, err := l.db.OneRepMaxForLift(ctx, userID, liftID); err != nil {
		return nil, nil, err
	} else if ok {
		oneRM = &max
	}

	sets, err := l.db.RecentSetsForLift(ctx, userID, liftID, 20)
	if err != nil {
		return nil, nil, err
	}
	history := make([]suggest.PreviousSet, 0, len(sets))
	for _, s := range sets {
		history = append(history, suggest.PreviousSet{
			Weight:   s.Weight,
			SetType:  s.SetType,
			Feedback: s.Feedback,
		})
	}
	return oneRM, history, nil
}
