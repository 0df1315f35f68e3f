package models

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus is the lifecycle state of a program assignment. Ended is
// terminal; unassigning and reassigning starts a fresh assignment at
// week 1, cycle 1.
type AssignmentStatus string

const (
	AssignmentActive AssignmentStatus = "active"
	AssignmentEnded  AssignmentStatus = "ended"
)

// Assignment binds a lifter to a program template plus their current
// position within it. At most one active assignment exists per user.
type Assignment struct {
	ID                   uuid.UUID        `json:"id"`
	UserID               int              `json:"userId"`
	ProgramID            uuid.UUID        `json:"programId"`
	CurrentWeekNumber    int              `json:"currentWeekNumber"`
	CurrentCycle         int              `json:"currentCycle"`
	CurrentWeekStartedAt time.Time        `json:"currentWeekStartedAt"`
	Status               AssignmentStatus `json:"status"`
	CreatedAt            time.Time        `json:"createdAt"`
}
