package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// PersonalRecord is an append-only best-effort record of a lifter's heaviest
// set at a given rep count. The logical "best" per (user, lift, reps) is
// derived by query, never stored redundantly.
type PersonalRecord struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             int        `json:"userId"`
	LiftID             uuid.UUID  `json:"liftId"`
	Weight             float64    `json:"weight"`
	Reps               int        `json:"reps"`
	EstimatedOneRepMax float64    `json:"estimatedOneRepMax"`
	Date               time.Time  `json:"date"`
	SessionSetID       *uuid.UUID `json:"sessionSetId,omitempty"`
	Notes              string     `json:"notes,omitempty"`
}

// EstimateOneRepMax computes the Epley one-rep-max estimate for a set,
// rounded to two decimals. A single (or a zero/negative rep count) is its
// own estimate. This is the one shared definition; both the PR detector and
// the personal-record endpoint use it.
func EstimateOneRepMax(weight float64, reps int) float64 {
	if reps <= 1 {
		return weight
	}
	est := weight * (1 + float64(reps)/30)
	return math.Round(est*100) / 100
}
