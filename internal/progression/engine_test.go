package progression

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/claude/ironplan/internal/apperr"
	"github.com/claude/ironplan/internal/models"
	"github.com/google/uuid"
)

// memStore is an in-memory Store. InTransaction serializes per-store with a
// mutex, mirroring the row lock the SQL implementation takes.
type memStore struct {
	mu          sync.Mutex
	assignments []*models.Assignment
	programs    map[uuid.UUID]*models.ProgramTemplate
	sessions    []*models.WorkoutSession
}

func newMemStore() *memStore {
	return &memStore{programs: map[uuid.UUID]*models.ProgramTemplate{}}
}

func (m *memStore) ActiveAssignment(_ context.Context, userID int) (*models.Assignment, error) {
	for _, a := range m.assignments {
		if a.UserID == userID && a.Status == models.AssignmentActive {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) ProgramByID(_ context.Context, id uuid.UUID) (*models.ProgramTemplate, error) {
	return m.programs[id], nil
}

func (m *memStore) CreateAssignment(_ context.Context, a *models.Assignment) error {
	cp := *a
	m.assignments = append(m.assignments, &cp)
	return nil
}

func (m *memStore) UpdateAssignmentPosition(_ context.Context, id uuid.UUID, week, cycle int, startedAt time.Time) error {
	for _, a := range m.assignments {
		if a.ID == id {
			a.CurrentWeekNumber = week
			a.CurrentCycle = cycle
			a.CurrentWeekStartedAt = startedAt
			return nil
		}
	}
	return errors.New("assignment not found")
}

func (m *memStore) EndAssignment(_ context.Context, id uuid.UUID) error {
	for _, a := range m.assignments {
		if a.ID == id {
			a.Status = models.AssignmentEnded
			return nil
		}
	}
	return errors.New("assignment not found")
}

func (m *memStore) CompletedDayIDs(_ context.Context, userID int, since time.Time) (map[uuid.UUID]bool, error) {
	out := map[uuid.UUID]bool{}
	for _, s := range m.sessions {
		if s.UserID == userID && s.ProgramDayID != nil && !s.CompletedAt.Before(since) {
			out[*s.ProgramDayID] = true
		}
	}
	return out, nil
}

func (m *memStore) InsertSession(_ context.Context, s *models.WorkoutSession) error {
	cp := *s
	m.sessions = append(m.sessions, &cp)
	return nil
}

func (m *memStore) InTransaction(ctx context.Context, _ int, fn func(context.Context, Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, m)
}

// testProgram builds a program with the given number of weeks, each with
// daysPerWeek days.
func testProgram(weeks, daysPerWeek int) *models.ProgramTemplate {
	p := &models.ProgramTemplate{ID: uuid.New(), Name: "Test Cycle", DurationWeeks: weeks}
	for w := 1; w <= weeks; w++ {
		week := models.Week{ID: uuid.New(), WeekNumber: w}
		for d := 1; d <= daysPerWeek; d++ {
			week.Days = append(week.Days, models.Day{ID: uuid.New(), DayNumber: d})
		}
		p.Weeks = append(p.Weeks, week)
	}
	return p
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
}

func setupEngine(t *testing.T, weeks, daysPerWeek int) (*Engine, *memStore, *models.ProgramTemplate) {
	t.Helper()
	store := newMemStore()
	p := testProgram(weeks, daysPerWeek)
	store.programs[p.ID] = p
	return New(store, fixedNow), store, p
}

// TestAssignCreatesWeekOneCycleOne verifies a fresh assignment starts at
// week 1, cycle 1 with the given start date anchoring the window.
func TestAssignCreatesWeekOneCycleOne(t *testing.T) {
	e, _, p := setupEngine(t, 4, 3)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	a, err := e.Assign(context.Background(), 1, p.ID, start)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if a.CurrentWeekNumber != 1 || a.CurrentCycle != 1 {
		t.Errorf("position = week %d cycle %d, want 1/1", a.CurrentWeekNumber, a.CurrentCycle)
	}
	if !a.CurrentWeekStartedAt.Equal(start) {
		t.Errorf("CurrentWeekStartedAt = %v, want %v", a.CurrentWeekStartedAt, start)
	}
	if a.Status != models.AssignmentActive {
		t.Errorf("Status = %q, want active", a.Status)
	}
}

// TestAssignConflictsWhenActive verifies a second assign fails with Conflict
// while one is active.
func TestAssignConflictsWhenActive(t *testing.T) {
	e, _, p := setupEngine(t, 4, 3)
	ctx := context.Background()

	if _, err := e.Assign(ctx, 1, p.ID, fixedNow()); err != nil {
		t.Fatalf("first Assign: %v", err)
	}
	_, err := e.Assign(ctx, 1, p.ID, fixedNow())
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("second Assign error kind = %v, want Conflict", apperr.KindOf(err))
	}
}

// TestAssignUnknownProgram verifies assigning an unknown program fails with
// NotFound.
func TestAssignUnknownProgram(t *testing.T) {
	e, _, _ := setupEngine(t, 4, 3)
	_, err := e.Assign(context.Background(), 1, uuid.New(), fixedNow())
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("error kind = %v, want NotFound", apperr.KindOf(err))
	}
}

// TestActiveViewUpNext verifies day completion marking and up-next
// selection in template order.
func TestActiveViewUpNext(t *testing.T) {
	e, _, p := setupEngine(t, 4, 3)
	ctx := context.Background()
	if _, err := e.Assign(ctx, 1, p.ID, fixedNow().Add(-24*time.Hour)); err != nil {
		t.Fatal(err)
	}

	view, err := e.ActiveViewFor(ctx, 1)
	if err != nil {
		t.Fatalf("ActiveViewFor: %v", err)
	}
	if view.UpNextDay == nil || view.UpNextDay.ID != p.Weeks[0].Days[0].ID {
		t.Fatalf("UpNextDay = %+v, want first day of week 1", view.UpNextDay)
	}

	if _, err := e.CompleteDay(ctx, 1, p.Weeks[0].Days[0].ID, nil); err != nil {
		t.Fatalf("CompleteDay: %v", err)
	}

	view, err = e.ActiveViewFor(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !view.CurrentWeek.Days[0].IsCompleted {
		t.Error("day 1 not marked completed")
	}
	if view.UpNextDay == nil || view.UpNextDay.ID != p.Weeks[0].Days[1].ID {
		t.Errorf("UpNextDay = %+v, want second day", view.UpNextDay)
	}
}

// TestActiveViewNoAssignment verifies the all-nil view for a user without an
// active assignment.
func TestActiveViewNoAssignment(t *testing.T) {
	e, _, _ := setupEngine(t, 4, 3)
	view, err := e.ActiveViewFor(context.Background(), 42)
	if err != nil {
		t.Fatalf("ActiveViewFor: %v", err)
	}
	if view.Assignment != nil || view.Program != nil || view.CurrentWeek != nil || view.UpNextDay != nil {
		t.Errorf("view = %+v, want empty", view)
	}
}

// TestCompleteDayAdvancesWeek verifies completing all days of week 1 of a
// 4-week program advances to week 2 with the cycle unchanged.
func TestCompleteDayAdvancesWeek(t *testing.T) {
	e, _, p := setupEngine(t, 4, 3)
	ctx := context.Background()
	if _, err := e.Assign(ctx, 1, p.ID, fixedNow().Add(-24*time.Hour)); err != nil {
		t.Fatal(err)
	}

	var last *CompleteDayResult
	for _, d := range p.Weeks[0].Days {
		res, err := e.CompleteDay(ctx, 1, d.ID, nil)
		if err != nil {
			t.Fatalf("CompleteDay(%v): %v", d.DayNumber, err)
		}
		last = res
	}

	if !last.Advanced {
		t.Fatal("Advanced = false after completing all days, want true")
	}
	if last.NewWeekNumber == nil || *last.NewWeekNumber != 2 {
		t.Errorf("NewWeekNumber = %v, want 2", last.NewWeekNumber)
	}
	if last.NewCycle == nil || *last.NewCycle != 1 {
		t.Errorf("NewCycle = %v, want 1 (unchanged)", last.NewCycle)
	}
}

// TestLastWeekWrapsAndIncrementsCycle verifies completing the final week
// wraps to week 1 and increments the cycle.
func TestLastWeekWrapsAndIncrementsCycle(t *testing.T) {
	e, store, p := setupEngine(t, 4, 2)
	ctx := context.Background()
	if _, err := e.Assign(ctx, 1, p.ID, fixedNow().Add(-24*time.Hour)); err != nil {
		t.Fatal(err)
	}
	// Jump the assignment to the last week.
	a, _ := store.ActiveAssignment(ctx, 1)
	if err := store.UpdateAssignmentPosition(ctx, a.ID, 4, 1, fixedNow().Add(-24*time.Hour)); err != nil {
		t.Fatal(err)
	}

	var last *CompleteDayResult
	for _, d := range p.Weeks[3].Days {
		res, err := e.CompleteDay(ctx, 1, d.ID, nil)
		if err != nil {
			t.Fatalf("CompleteDay: %v", err)
		}
		last = res
	}

	if !last.Advanced {
		t.Fatal("Advanced = false, want true")
	}
	if *last.NewWeekNumber != 1 {
		t.Errorf("NewWeekNumber = %d, want 1 (wrap)", *last.NewWeekNumber)
	}
	if *last.NewCycle != 2 {
		t.Errorf("NewCycle = %d, want 2", *last.NewCycle)
	}
}

// TestCompleteDayErrors verifies the error taxonomy: NotFound without an
// assignment, Validation for a day outside the current week, Conflict for a
// repeat completion.
func TestCompleteDayErrors(t *testing.T) {
	e, _, p := setupEngine(t, 4, 3)
	ctx := context.Background()

	_, err := e.CompleteDay(ctx, 1, p.Weeks[0].Days[0].ID, nil)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("no assignment: kind = %v, want NotFound", apperr.KindOf(err))
	}

	if _, err := e.Assign(ctx, 1, p.ID, fixedNow().Add(-24*time.Hour)); err != nil {
		t.Fatal(err)
	}

	_, err = e.CompleteDay(ctx, 1, p.Weeks[1].Days[0].ID, nil)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("day in week 2: kind = %v, want Validation", apperr.KindOf(err))
	}

	_, err = e.CompleteDay(ctx, 1, uuid.New(), nil)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("unknown day: kind = %v, want Validation", apperr.KindOf(err))
	}

	if _, err := e.CompleteDay(ctx, 1, p.Weeks[0].Days[0].ID, nil); err != nil {
		t.Fatal(err)
	}
	_, err = e.CompleteDay(ctx, 1, p.Weeks[0].Days[0].ID, nil)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("repeat completion: kind = %v, want Conflict", apperr.KindOf(err))
	}
}

// TestCompleteDayWindowResetsOnAdvance verifies that after advancing, the
// new week window excludes the previous week's sessions, so a single-day
// repeat of an old day id is a Validation error and days of the new week
// start incomplete.
func TestCompleteDayWindowResetsOnAdvance(t *testing.T) {
	e, _, p := setupEngine(t, 4, 1)
	ctx := context.Background()
	if _, err := e.Assign(ctx, 1, p.ID, fixedNow().Add(-24*time.Hour)); err != nil {
		t.Fatal(err)
	}

	res, err := e.CompleteDay(ctx, 1, p.Weeks[0].Days[0].ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Advanced || *res.NewWeekNumber != 2 {
		t.Fatalf("result = %+v, want advance to week 2", res)
	}

	view, err := e.ActiveViewFor(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if view.CurrentWeek.WeekNumber != 2 {
		t.Fatalf("current week = %d, want 2", view.CurrentWeek.WeekNumber)
	}
	if view.CurrentWeek.Days[0].IsCompleted {
		t.Error("week 2 day marked completed by week 1 session")
	}
}

// TestConcurrentCompleteDaySingleAdvance verifies two racing complete-day
// calls for the last remaining days cannot both advance the week twice:
// the store serializes them and the second sees updated state.
func TestConcurrentCompleteDaySingleAdvance(t *testing.T) {
	e, store, p := setupEngine(t, 4, 2)
	ctx := context.Background()
	if _, err := e.Assign(ctx, 1, p.ID, fixedNow().Add(-24*time.Hour)); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	results := make([]*CompleteDayResult, 2)
	errs := make([]error, 2)
	for i, d := range p.Weeks[0].Days {
		wg.Add(1)
		go func(i int, dayID uuid.UUID) {
			defer wg.Done()
			results[i], errs[i] = e.CompleteDay(ctx, 1, dayID, nil)
		}(i, d.ID)
	}
	wg.Wait()

	advances := 0
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("CompleteDay[%d]: %v", i, errs[i])
		}
		if results[i].Advanced {
			advances++
		}
	}
	if advances != 1 {
		t.Errorf("advances = %d, want exactly 1", advances)
	}

	a, _ := store.ActiveAssignment(ctx, 1)
	if a.CurrentWeekNumber != 2 || a.CurrentCycle != 1 {
		t.Errorf("assignment at week %d cycle %d, want 2/1", a.CurrentWeekNumber, a.CurrentCycle)
	}
}

// TestUnassignEndsAssignment verifies unassign by assignment id and by
// program id, and NotFound when nothing is active.
func TestUnassignEndsAssignment(t *testing.T) {
	e, _, p := setupEngine(t, 4, 3)
	ctx := context.Background()

	_, err := e.Unassign(ctx, 1, p.ID)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("nothing active: kind = %v, want NotFound", apperr.KindOf(err))
	}

	a, err := e.Assign(ctx, 1, p.ID, fixedNow())
	if err != nil {
		t.Fatal(err)
	}
	ended, err := e.Unassign(ctx, 1, a.ID)
	if err != nil {
		t.Fatalf("Unassign: %v", err)
	}
	if ended.Status != models.AssignmentEnded {
		t.Errorf("Status = %q, want ended", ended.Status)
	}

	// Reassigning starts fresh at week 1, cycle 1.
	a2, err := e.Assign(ctx, 1, p.ID, fixedNow())
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if a2.ID == a.ID || a2.CurrentWeekNumber != 1 || a2.CurrentCycle != 1 {
		t.Errorf("reassigned = %+v, want fresh week 1 cycle 1", a2)
	}
}

// TestAdvanceWeekIfCompleteSupersets verifies the advance decision is a
// superset check over the current week's day ids.
func TestAdvanceWeekIfCompleteSupersets(t *testing.T) {
	p := testProgram(3, 2)
	a := &models.Assignment{CurrentWeekNumber: 2, CurrentCycle: 1}
	days := p.Weeks[1].Days

	partial := map[uuid.UUID]bool{days[0].ID: true}
	if adv := AdvanceWeekIfComplete(a, p, partial); adv.Advanced {
		t.Error("partial completion advanced, want no-op")
	}

	full := map[uuid.UUID]bool{days[0].ID: true, days[1].ID: true, uuid.New(): true}
	adv := AdvanceWeekIfComplete(a, p, full)
	if !adv.Advanced || adv.NewWeekNumber != 3 || adv.NewCycle != 1 {
		t.Errorf("adv = %+v, want week 3 cycle 1", adv)
	}
}
