package models

import (
	"time"

	"github.com/google/uuid"
)

// SetType classifies a logged set.
type SetType string

const (
	SetWarmup  SetType = "warmup"
	SetWorking SetType = "working"
	SetBackoff SetType = "backoff"
	SetDropset SetType = "dropset"
	SetAMRAP   SetType = "amrap"
)

// Valid reports whether t is a known set type.
func (t SetType) Valid() bool {
	switch t {
	case SetWarmup, SetWorking, SetBackoff, SetDropset, SetAMRAP:
		return true
	}
	return false
}

// SetFeedback is the lifter's subjective rating of a set, used for
// autoregulation of the next session's load.
type SetFeedback string

const (
	FeedbackHard   SetFeedback = "hard"
	FeedbackNormal SetFeedback = "normal"
	FeedbackEasy   SetFeedback = "easy"
)

// Valid reports whether f is a known feedback value.
func (f SetFeedback) Valid() bool {
	switch f {
	case FeedbackHard, FeedbackNormal, FeedbackEasy:
		return true
	}
	return false
}

// LocalSession is the device-local in-progress workout. It exists only
// between "start session" and "finish/discard" and is not server state until
// finished. The JSON shape is persisted to device storage and must stay
// stable across versions.
type LocalSession struct {
	SessionID            string          `json:"sessionId"`
	Title                string          `json:"title"`
	StartedAt            time.Time       `json:"startedAt"`
	CurrentExerciseIndex int             `json:"currentExerciseIndex"`
	Exercises            []LocalExercise `json:"exercises"`
}

// LocalExercise is one block of the session's exercise queue, seeded from
// the program block and the load suggestion engine.
type LocalExercise struct {
	ExerciseID        string            `json:"exerciseId"`
	LiftID            string            `json:"liftId"`
	LiftName          string            `json:"liftName"`
	LiftCategory      LiftCategory      `json:"liftCategory"`
	ProgramBlockID    string            `json:"programBlockId"`
	TargetSets        int               `json:"targetSets"`
	TargetReps        int               `json:"targetReps"`
	UpToPercent       *float64          `json:"upToPercent"`
	OneRepMax         *float64          `json:"oneRepMax"`
	Sets              []LoggedSet       `json:"sets"`
	Movements         []SessionMovement `json:"movements"`
	BlockDisplayOrder int               `json:"blockDisplayOrder"`
}

// LoggedSet is one set recorded during a live session. Weight is kilograms.
type LoggedSet struct {
	LocalID  string       `json:"localId"`
	Weight   float64      `json:"weight"`
	Reps     int          `json:"reps"`
	SetType  SetType      `json:"setType"`
	Feedback *SetFeedback `json:"feedback,omitempty"`
	RPE      *float64     `json:"rpe,omitempty"`
	LoggedAt time.Time    `json:"loggedAt"`
}

// SessionMovement tracks one movement of a complex block with its own rep
// target.
type SessionMovement struct {
	MovementID   string `json:"movementId"`
	LiftID       string `json:"liftId"`
	LiftName     string `json:"liftName"`
	DisplayOrder int    `json:"displayOrder"`
	Reps         int    `json:"reps"`
}

// WorkoutSession is a finished session as persisted server-side.
type WorkoutSession struct {
	ID           uuid.UUID    `json:"id"`
	UserID       int          `json:"userId"`
	ProgramDayID *uuid.UUID   `json:"programDayId,omitempty"`
	Title        string       `json:"title"`
	StartedAt    time.Time    `json:"startedAt"`
	CompletedAt  time.Time    `json:"completedAt"`
	Sets         []WorkoutSet `json:"sets,omitempty"`
}

// WorkoutSet is one persisted set of a finished session.
type WorkoutSet struct {
	ID       uuid.UUID    `json:"id"`
	LiftID   uuid.UUID    `json:"liftId"`
	Weight   float64      `json:"weight"`
	Reps     int          `json:"reps"`
	SetType  SetType      `json:"setType"`
	Feedback *SetFeedback `json:"feedback,omitempty"`
	RPE      *float64     `json:"rpe,omitempty"`
	LoggedAt time.Time    `json:"loggedAt"`
}
