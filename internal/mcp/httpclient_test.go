package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/claude/ironplan/internal/models"
	"github.com/claude/ironplan/internal/progression"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestActiveAssignmentView verifies the client parses the assignment view,
// including the empty (nothing assigned) shape.
func TestActiveAssignmentView(t *testing.T) {
	a := &models.Assignment{ID: uuid.New(), UserID: 1, CurrentWeekNumber: 2, CurrentCycle: 1}
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/active-assignment": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, progression.ActiveView{Assignment: a})
		},
	})
	defer ts.Close()

	view, err := NewHTTPClient(ts.URL).ActiveAssignmentView(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if view.Assignment == nil || view.Assignment.CurrentWeekNumber != 2 {
		t.Errorf("view = %+v, want assignment at week 2", view)
	}
}

// TestPersonalRecordsFilter verifies the liftId query param is sent when a
// filter is given.
func TestPersonalRecordsFilter(t *testing.T) {
	lift := uuid.New()
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/personal-records": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("liftId"); got != lift.String() {
				t.Errorf("liftId=%q, want %s", got, lift)
			}
			writeTestJSON(t, w, []models.PersonalRecord{
				{ID: uuid.New(), LiftID: lift, Weight: 140, Reps: 1, EstimatedOneRepMax: 140},
			})
		},
	})
	defer ts.Close()

	recs, err := NewHTTPClient(ts.URL).PersonalRecords(context.Background(), 1, &lift)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Weight != 140 {
		t.Errorf("records = %+v, want single 140x1", recs)
	}
}

// TestLiftHistory verifies the history response maps onto the suggestion
// engine's input types.
func TestLiftHistory(t *testing.T) {
	lift := uuid.New()
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/lifts/" + lift.String() + "/history": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, map[string]any{
				"oneRepMax": 120.0,
				"recentSets": []map[string]any{
					{"weight": 100, "reps": 3, "setType": "working", "feedback": "easy"},
				},
			})
		},
	})
	defer ts.Close()

	oneRM, history, err := NewHTTPClient(ts.URL).LiftHistory(context.Background(), 1, lift)
	if err != nil {
		t.Fatal(err)
	}
	if oneRM == nil || *oneRM != 120 {
		t.Errorf("oneRepMax = %v, want 120", oneRM)
	}
	if len(history) != 1 || history[0].Feedback == nil || *history[0].Feedback != models.FeedbackEasy {
		t.Errorf("history = %+v, want one easy working set", history)
	}
}

// TestLiftByIDUnknown verifies an id missing from the catalog returns nil
// without error.
func TestLiftByIDUnknown(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/lifts": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, []models.Lift{
				{ID: uuid.New(), Name: "Back Squat", Category: models.CategoryPowerlifting},
			})
		},
	})
	defer ts.Close()

	lift, err := NewHTTPClient(ts.URL).LiftByID(context.Background(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if lift != nil {
		t.Errorf("lift = %+v, want nil for unknown id", lift)
	}
}

// TestErrorStatus verifies non-200 responses surface as errors with the body.
func TestErrorStatus(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/settings": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
		},
	})
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).Settings(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}
