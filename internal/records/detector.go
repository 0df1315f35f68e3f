// Package records detects and stores personal records. PR-ness is evaluated
// strictly within the same rep count: a heavier triple never displaces a
// lighter single, even when its estimated max is greater.
package records

import (
	"context"
	"time"

	"github.com/claude/ironplan/internal/apperr"
	"github.com/claude/ironplan/internal/models"
	"github.com/google/uuid"
)

// Store is the persistence the detector needs.
type Store interface {
	// BestWeight returns the heaviest weight the user has ever logged for
	// this exact (lift, reps) pair, or ok=false if none exists.
	BestWeight(ctx context.Context, userID int, liftID uuid.UUID, reps int) (weight float64, ok bool, err error)
	InsertRecord(ctx context.Context, rec *models.PersonalRecord) error
}

// Result reports the outcome of a PR check.
type Result struct {
	IsPR         bool                   `json:"isPR"`
	PreviousBest *float64               `json:"previousBest,omitempty"`
	Record       *models.PersonalRecord `json:"record,omitempty"`
}

// Detector checks logged sets against the lifter's history.
type Detector struct {
	store Store
}

func New(store Store) *Detector {
	return &Detector{store: store}
}

// CheckAndRecord compares a set against the user's best at the same rep
// count, persisting a new PersonalRecord when the weight beats it.
func (d *Detector) CheckAndRecord(ctx context.Context, userID int, liftID uuid.UUID, weight float64, reps int, sessionSetID *uuid.UUID, date time.Time, notes string) (Result, error) {
	if weight < 0 {
		return Result{}, apperr.Validation("weight must be non-negative")
	}
	if reps <= 0 {
		return Result{}, apperr.Validation("reps must be positive")
	}

	best, ok, err := d.store.BestWeight(ctx, userID, liftID, reps)
	if err != nil {
		return Result{}, apperr.Internal(err)
	}

	var prev *float64
	if ok {
		prev = &best
		if weight <= best {
			return Result{IsPR: false, PreviousBest: prev}, nil
		}
	}

	rec := &models.PersonalRecord{
		ID:                 uuid.New(),
		UserID:             userID,
		LiftID:             liftID,
		Weight:             weight,
		Reps:               reps,
		EstimatedOneRepMax: models.EstimateOneRepMax(weight, reps),
		Date:               date,
		SessionSetID:       sessionSetID,
		Notes:              notes,
	}
	if err := d.store.InsertRecord(ctx, rec); err != nil {
		return Result{}, apperr.Internal(err)
	}
	return Result{IsPR: true, PreviousBest: prev, Record: rec}, nil
}
