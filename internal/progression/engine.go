// Package progression tracks a lifter's position in a cyclical program:
// which week and cycle are active, which days of the current week window are
// done, and when the week rolls over.
package progression

import (
	"context"
	"time"

	"github.com/claude/ironplan/internal/apperr"
	"github.com/claude/ironplan/internal/models"
	"github.com/google/uuid"
)

// Store is the persistence the engine runs against. InTransaction must
// serialize concurrent calls for the same user (row lock or equivalent) so
// complete-day runs as one atomic unit.
type Store interface {
	// ActiveAssignment returns the user's active assignment, or nil.
	ActiveAssignment(ctx context.Context, userID int) (*models.Assignment, error)
	// ProgramByID returns the full template hierarchy, or nil if unknown.
	ProgramByID(ctx context.Context, id uuid.UUID) (*models.ProgramTemplate, error)
	CreateAssignment(ctx context.Context, a *models.Assignment) error
	// UpdateAssignmentPosition moves an assignment to a new week/cycle and
	// resets the week window anchor.
	UpdateAssignmentPosition(ctx context.Context, id uuid.UUID, week, cycle int, weekStartedAt time.Time) error
	EndAssignment(ctx context.Context, id uuid.UUID) error
	// CompletedDayIDs returns the program day ids with a finished session
	// completed at or after since.
	CompletedDayIDs(ctx context.Context, userID int, since time.Time) (map[uuid.UUID]bool, error)
	InsertSession(ctx context.Context, s *models.WorkoutSession) error

	// InTransaction runs fn against a transactional view of the store with
	// the user's assignment serialized against concurrent writers.
	InTransaction(ctx context.Context, userID int, fn func(ctx context.Context, tx Store) error) error
}

// Engine is the assignment and progression state machine.
type Engine struct {
	store Store
	now   func() time.Time
}

// New creates an Engine. nowFn may be nil, defaulting to time.Now.
func New(store Store, nowFn func() time.Time) *Engine {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Engine{store: store, now: nowFn}
}

// Assign creates an active assignment at week 1, cycle 1. It fails with
// Conflict when the user already has an active assignment.
func (e *Engine) Assign(ctx context.Context, userID int, programID uuid.UUID, startDate time.Time) (*models.Assignment, error) {
	program, err := e.store.ProgramByID(ctx, programID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if program == nil {
		return nil, apperr.NotFound("program not found")
	}

	var created *models.Assignment
	err = e.store.InTransaction(ctx, userID, func(ctx context.Context, tx Store) error {
		existing, err := tx.ActiveAssignment(ctx, userID)
		if err != nil {
			return apperr.Internal(err)
		}
		if existing != nil {
			return apperr.Conflict("an active program assignment already exists")
		}

		a := &models.Assignment{
			ID:                   uuid.New(),
			UserID:               userID,
			ProgramID:            programID,
			CurrentWeekNumber:    1,
			CurrentCycle:         1,
			CurrentWeekStartedAt: startDate,
			Status:               models.AssignmentActive,
			CreatedAt:            e.now(),
		}
		if err := tx.CreateAssignment(ctx, a); err != nil {
			return apperr.Internal(err)
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DayView is a template day annotated with completion within the current
// week window.
type DayView struct {
	models.Day
	IsCompleted bool `json:"isCompleted"`
}

// WeekView is the current week of the active assignment.
type WeekView struct {
	WeekNumber int       `json:"weekNumber"`
	TotalWeeks int       `json:"totalWeeks"`
	Cycle      int       `json:"cycle"`
	Days       []DayView `json:"days"`
}

// ActiveView is the response shape for the active-assignment query. All
// fields are nil when the user has no active assignment.
type ActiveView struct {
	Assignment  *models.Assignment      `json:"assignment"`
	Program     *models.ProgramTemplate `json:"program"`
	CurrentWeek *WeekView               `json:"currentWeek"`
	UpNextDay   *models.Day             `json:"upNextDay"`
}

// ActiveViewFor resolves the current week of the user's active assignment,
// marking days completed when a finished session references them at or after
// the week window anchor. Up-next is the first incomplete day in template
// order.
func (e *Engine) ActiveViewFor(ctx context.Context, userID int) (*ActiveView, error) {
	a, err := e.store.ActiveAssignment(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if a == nil {
		return &ActiveView{}, nil
	}

	program, err := e.store.ProgramByID(ctx, a.ProgramID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if program == nil {
		return nil, apperr.NotFound("assigned program not found")
	}

	week := program.WeekByNumber(a.CurrentWeekNumber)
	if week == nil {
		return &ActiveView{Assignment: a, Program: program}, nil
	}

	completed, err := e.store.CompletedDayIDs(ctx, userID, a.CurrentWeekStartedAt)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	view := &ActiveView{
		Assignment: a,
		Program:    program,
		CurrentWeek: &WeekView{
			WeekNumber: a.CurrentWeekNumber,
			TotalWeeks: program.DurationWeeks,
			Cycle:      a.CurrentCycle,
		},
	}
	for _, d := range week.Days {
		dv := DayView{Day: d, IsCompleted: completed[d.ID]}
		view.CurrentWeek.Days = append(view.CurrentWeek.Days, dv)
		if view.UpNextDay == nil && !dv.IsCompleted {
			day := d
			view.UpNextDay = &day
		}
	}
	return view, nil
}

// Advancement is the outcome of a week-advance evaluation.
type Advancement struct {
	Advanced      bool `json:"advanced"`
	NewWeekNumber int  `json:"newWeekNumber"`
	NewCycle      int  `json:"newCycle"`
}

// AdvanceWeekIfComplete decides whether the assignment's week rolls over:
// it advances iff completedDayIDs covers every day of the current week. The
// last week wraps to week 1 and increments the cycle. Pure on its inputs.
func AdvanceWeekIfComplete(a *models.Assignment, program *models.ProgramTemplate, completedDayIDs map[uuid.UUID]bool) Advancement {
	week := program.WeekByNumber(a.CurrentWeekNumber)
	if week == nil || len(week.Days) == 0 {
		return Advancement{Advanced: false, NewWeekNumber: a.CurrentWeekNumber, NewCycle: a.CurrentCycle}
	}
	for _, d := range week.Days {
		if !completedDayIDs[d.ID] {
			return Advancement{Advanced: false, NewWeekNumber: a.CurrentWeekNumber, NewCycle: a.CurrentCycle}
		}
	}

	adv := Advancement{Advanced: true, NewWeekNumber: a.CurrentWeekNumber + 1, NewCycle: a.CurrentCycle}
	if a.CurrentWeekNumber == program.DurationWeeks {
		adv.NewWeekNumber = 1
		adv.NewCycle = a.CurrentCycle + 1
	}
	return adv
}

// CompleteDayResult is the outcome of completing a scheduled day.
type CompleteDayResult struct {
	Session       *models.WorkoutSession `json:"session"`
	Advanced      bool                   `json:"advanced"`
	NewWeekNumber *int                   `json:"newWeekNumber"`
	NewCycle      *int                   `json:"newCycle"`
}

// CompleteDay records a finished session for a scheduled day and re-evaluates
// week completion, advancing the assignment when the whole week is done.
// The session insert, the completed-day recompute and the advancement run in
// one transaction so concurrent completions for the same user cannot
// double-advance.
//
// The provided session may carry a title, start time and logged sets from a
// finished live session; zero values get sensible defaults.
func (e *Engine) CompleteDay(ctx context.Context, userID int, programDayID uuid.UUID, session *models.WorkoutSession) (*CompleteDayResult, error) {
	now := e.now()
	var result *CompleteDayResult

	err := e.store.InTransaction(ctx, userID, func(ctx context.Context, tx Store) error {
		a, err := tx.ActiveAssignment(ctx, userID)
		if err != nil {
			return apperr.Internal(err)
		}
		if a == nil {
			return apperr.NotFound("no active program assignment")
		}

		program, err := tx.ProgramByID(ctx, a.ProgramID)
		if err != nil {
			return apperr.Internal(err)
		}
		if program == nil || len(program.Weeks) == 0 {
			return apperr.NotFound("assigned program has no weeks")
		}

		week := program.WeekByNumber(a.CurrentWeekNumber)
		if week == nil || !week.DayInWeek(programDayID) {
			return apperr.Validation("day is not part of the current program week")
		}

		completed, err := tx.CompletedDayIDs(ctx, userID, a.CurrentWeekStartedAt)
		if err != nil {
			return apperr.Internal(err)
		}
		if completed[programDayID] {
			return apperr.Conflict("day already completed this week")
		}

		if session == nil {
			session = &models.WorkoutSession{}
		}
		session.ID = uuid.New()
		session.UserID = userID
		session.ProgramDayID = &programDayID
		session.CompletedAt = now
		if session.StartedAt.IsZero() {
			session.StartedAt = now
		}
		if session.Title == "" {
			session.Title = dayTitle(week, programDayID)
		}
		if err := tx.InsertSession(ctx, session); err != nil {
			return apperr.Internal(err)
		}

		completed[programDayID] = true
		adv := AdvanceWeekIfComplete(a, program, completed)
		if adv.Advanced {
			if err := tx.UpdateAssignmentPosition(ctx, a.ID, adv.NewWeekNumber, adv.NewCycle, now); err != nil {
				return apperr.Internal(err)
			}
		}

		result = &CompleteDayResult{Session: session, Advanced: adv.Advanced}
		if adv.Advanced {
			result.NewWeekNumber = &adv.NewWeekNumber
			result.NewCycle = &adv.NewCycle
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Unassign ends the user's active assignment for the given assignment or
// program id. Ended is terminal; reassigning starts fresh at week 1.
func (e *Engine) Unassign(ctx context.Context, userID int, id uuid.UUID) (*models.Assignment, error) {
	var ended *models.Assignment
	err := e.store.InTransaction(ctx, userID, func(ctx context.Context, tx Store) error {
		a, err := tx.ActiveAssignment(ctx, userID)
		if err != nil {
			return apperr.Internal(err)
		}
		if a == nil || (a.ID != id && a.ProgramID != id) {
			return apperr.NotFound("no matching active assignment")
		}
		if err := tx.EndAssignment(ctx, a.ID); err != nil {
			return apperr.Internal(err)
		}
		a.Status = models.AssignmentEnded
		ended = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ended, nil
}

func dayTitle(week *models.Week, dayID uuid.UUID) string {
	for _, d := range week.Days {
		if d.ID == dayID {
			if d.Name != "" {
				return d.Name
			}
			return "Training day"
		}
	}
	return "Training day"
}
