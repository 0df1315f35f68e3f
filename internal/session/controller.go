// Package session is the client-resident live workout controller: it builds
// the exercise queue for a scheduled day, logs and undoes sets, runs the
// rest timer, and submits the finished session to the server.
//
// Every mutation loads the session from the local store and saves it back,
// so state survives process restarts. Operations against a missing session
// are no-ops returning nil: the UI treats that as "no active session".
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/ironplan/internal/models"
	"github.com/claude/ironplan/internal/suggest"
	"github.com/google/uuid"
)

// Submitter sends a finished session to the server. programDayID names the
// scheduled day the session fulfills; nil means ad-hoc.
type Submitter interface {
	SubmitSession(ctx context.Context, s *models.LocalSession, programDayID *uuid.UUID) (*FinishResult, error)
}

// FinishResult is the server's response to a finished session.
type FinishResult struct {
	Session       *models.WorkoutSession `json:"session"`
	PRCount       int                    `json:"prCount"`
	Advanced      bool                   `json:"advanced"`
	NewWeekNumber *int                   `json:"newWeekNumber"`
	NewCycle      *int                   `json:"newCycle"`
}

// Controller drives one lifter's live session against the local store.
// It is single-goroutine by design; the surrounding event loop serializes
// calls.
type Controller struct {
	store     Store
	submitter Submitter
	now       func() time.Time

	// activeMovement tracks the selected movement per exercise index for
	// complex blocks. UI state only, reset on restart.
	activeMovement map[int]int
}

// NewController creates a Controller. nowFn may be nil, defaulting to
// time.Now.
func NewController(store Store, submitter Submitter, nowFn func() time.Time) *Controller {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Controller{
		store:          store,
		submitter:      submitter,
		now:            nowFn,
		activeMovement: map[int]int{},
	}
}

// OneRepMaxLookup resolves a lifter's current one-rep max for a lift, and
// their recent set history for it. Both may be absent.
type OneRepMaxLookup func(liftID uuid.UUID) (oneRepMax *float64, history []suggest.PreviousSet)

// Start builds a new session for a scheduled day, seeding each block's
// target sets and reps from the suggestion engine. For complex blocks the
// first movement's lift anchors the load and each movement keeps its own
// rep target. Any existing local session is replaced. The returned
// prescriptions parallel the session's exercises and carry the suggested
// warm-up ramp and working weights for display.
func (c *Controller) Start(day *models.Day, title string, settings models.TrainingSettings, lifts map[uuid.UUID]models.Lift, lookup OneRepMaxLookup) (*models.LocalSession, []suggest.Prescription, error) {
	sess := &models.LocalSession{
		SessionID: uuid.NewString(),
		Title:     title,
		StartedAt: c.now(),
	}
	var prescriptions []suggest.Prescription

	for _, block := range day.Blocks {
		if len(block.Movements) == 0 {
			continue
		}
		primary := block.Movements[0]
		lift := lifts[primary.LiftID]
		max, history := lookup(primary.LiftID)

		prescription := suggest.Suggest(settings, max, lift.Category, suggest.BlockTemplate{
			Sets:        block.Sets,
			Reps:        block.Reps,
			UpToPercent: block.UpToPercent,
		}, history)

		ex := models.LocalExercise{
			ExerciseID:        uuid.NewString(),
			LiftID:            primary.LiftID.String(),
			LiftName:          lift.Name,
			LiftCategory:      lift.Category,
			ProgramBlockID:    block.ID.String(),
			TargetSets:        block.Sets,
			TargetReps:        block.Reps,
			UpToPercent:       block.UpToPercent,
			OneRepMax:         max,
			BlockDisplayOrder: block.DisplayOrder,
		}
		for _, m := range block.Movements {
			name := m.LiftName
			if l, ok := lifts[m.LiftID]; ok && name == "" {
				name = l.Name
			}
			ex.Movements = append(ex.Movements, models.SessionMovement{
				MovementID:   m.ID.String(),
				LiftID:       m.LiftID.String(),
				LiftName:     name,
				DisplayOrder: m.DisplayOrder,
				Reps:         m.Reps,
			})
		}
		sess.Exercises = append(sess.Exercises, ex)
		prescriptions = append(prescriptions, prescription)
	}

	if err := c.store.Save(sess); err != nil {
		return nil, nil, err
	}
	// Persist the scheduled-day binding with the session so a resumed
	// session still completes its day on finish. A day without an id is
	// ad-hoc.
	var dayID *uuid.UUID
	if day.ID != uuid.Nil {
		dayID = &day.ID
	}
	if err := c.store.SaveScheduledDay(dayID); err != nil {
		return nil, nil, err
	}
	return sess, prescriptions, nil
}

// Current returns the in-progress session, or nil.
func (c *Controller) Current() (*models.LocalSession, error) {
	return c.store.Load()
}

// LogSet appends a set to the exercise at the given index, stamping a local
// id and timestamp. Weight must be non-negative and reps positive.
func (c *Controller) LogSet(exerciseIndex int, weight float64, reps int, setType models.SetType, feedback *models.SetFeedback, rpe *float64) (*models.LocalSession, error) {
	if weight < 0 || reps <= 0 {
		return nil, fmt.Errorf("invalid set: weight %v reps %d", weight, reps)
	}
	if !setType.Valid() {
		return nil, fmt.Errorf("invalid set type %q", setType)
	}

	return c.mutate(func(s *models.LocalSession) {
		if exerciseIndex < 0 || exerciseIndex >= len(s.Exercises) {
			return
		}
		s.Exercises[exerciseIndex].Sets = append(s.Exercises[exerciseIndex].Sets, models.LoggedSet{
			LocalID:  uuid.NewString(),
			Weight:   weight,
			Reps:     reps,
			SetType:  setType,
			Feedback: feedback,
			RPE:      rpe,
			LoggedAt: c.now(),
		})
	})
}

// UndoLastSet removes the most recent set of the current exercise.
func (c *Controller) UndoLastSet() (*models.LocalSession, error) {
	return c.mutate(func(s *models.LocalSession) {
		if s.CurrentExerciseIndex < 0 || s.CurrentExerciseIndex >= len(s.Exercises) {
			return
		}
		ex := &s.Exercises[s.CurrentExerciseIndex]
		if len(ex.Sets) > 0 {
			ex.Sets = ex.Sets[:len(ex.Sets)-1]
		}
	})
}

// RemoveSet deletes the set with the given local id, wherever it was logged.
func (c *Controller) RemoveSet(localID string) (*models.LocalSession, error) {
	return c.mutate(func(s *models.LocalSession) {
		for i := range s.Exercises {
			sets := s.Exercises[i].Sets
			for j := range sets {
				if sets[j].LocalID == localID {
					s.Exercises[i].Sets = append(sets[:j], sets[j+1:]...)
					return
				}
			}
		}
	})
}

// SelectMovement changes the active movement of the current exercise without
// touching logged data. Out-of-range indexes are ignored.
func (c *Controller) SelectMovement(index int) (*models.LocalSession, error) {
	s, err := c.store.Load()
	if err != nil || s == nil {
		return nil, err
	}
	if s.CurrentExerciseIndex >= 0 && s.CurrentExerciseIndex < len(s.Exercises) {
		if index >= 0 && index < len(s.Exercises[s.CurrentExerciseIndex].Movements) {
			c.activeMovement[s.CurrentExerciseIndex] = index
		}
	}
	return s, nil
}

// ActiveMovement returns the selected movement index for an exercise,
// defaulting to the first.
func (c *Controller) ActiveMovement(exerciseIndex int) int {
	return c.activeMovement[exerciseIndex]
}

// UpdateMovementReps sets a movement's rep target, clamped at zero.
func (c *Controller) UpdateMovementReps(movementID string, reps int) (*models.LocalSession, error) {
	if reps < 0 {
		reps = 0
	}
	return c.mutate(func(s *models.LocalSession) {
		for i := range s.Exercises {
			for j := range s.Exercises[i].Movements {
				if s.Exercises[i].Movements[j].MovementID == movementID {
					s.Exercises[i].Movements[j].Reps = reps
					return
				}
			}
		}
	})
}

// WorkingSetCount counts non-warm-up sets logged for an exercise.
func WorkingSetCount(ex *models.LocalExercise) int {
	n := 0
	for _, set := range ex.Sets {
		if set.SetType != models.SetWarmup {
			n++
		}
	}
	return n
}

// Advance moves to the next exercise once the working sets meet the target.
// allowExtra skips the target check, covering both "move on early" and
// "I did extra sets" flows.
func (c *Controller) Advance(allowExtra bool) (*models.LocalSession, error) {
	return c.mutate(func(s *models.LocalSession) {
		if s.CurrentExerciseIndex >= len(s.Exercises)-1 {
			return
		}
		ex := &s.Exercises[s.CurrentExerciseIndex]
		if !allowExtra && WorkingSetCount(ex) < ex.TargetSets {
			return
		}
		s.CurrentExerciseIndex++
	})
}

// Finish submits the session to the server and clears local state on
// success. A missing session returns nil.
func (c *Controller) Finish(ctx context.Context) (*FinishResult, error) {
	s, err := c.store.Load()
	if err != nil || s == nil {
		return nil, err
	}
	dayID, err := c.store.LoadScheduledDay()
	if err != nil {
		return nil, err
	}

	result, err := c.submitter.SubmitSession(ctx, s, dayID)
	if err != nil {
		// Keep local state so the lifter can retry.
		return nil, err
	}
	if err := c.store.Clear(); err != nil {
		return nil, err
	}
	c.activeMovement = map[int]int{}
	return result, nil
}

// Discard clears local state without persisting anything server-side.
func (c *Controller) Discard() error {
	c.activeMovement = map[int]int{}
	return c.store.Clear()
}

// mutate loads the session, applies fn, and saves. A missing session is a
// no-op returning nil.
func (c *Controller) mutate(fn func(*models.LocalSession)) (*models.LocalSession, error) {
	s, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}
	fn(s)
	if err := c.store.Save(s); err != nil {
		return nil, err
	}
	return s, nil
}
