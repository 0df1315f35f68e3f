package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/claude/ironplan/internal/models"
	"github.com/claude/ironplan/internal/progression"
	"github.com/claude/ironplan/internal/suggest"
)

// ErrDayCompleted reports that the scheduled day was already marked
// complete when a submit reached the server. On a retried submit the usual
// cause is a first attempt that landed but whose response was lost, so the
// local session should be reviewed rather than resubmitted.
var ErrDayCompleted = errors.New("scheduled day already completed")

// Client talks to the ironplan server over HTTP.
type Client struct {
	serverURL  string
	httpClient *http.Client
}

// NewClient creates a new HTTP client for the ironplan server.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: serverURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *Client) getJSON(path string, out any) error {
	resp, err := c.httpClient.Get(c.serverURL + path)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s failed (status %d): %s", path, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// FetchActiveAssignment retrieves the lifter's active assignment view. The
// view is empty, not an error, when nothing is assigned.
func (c *Client) FetchActiveAssignment() (*progression.ActiveView, error) {
	var view progression.ActiveView
	if err := c.getJSON("/api/v1/active-assignment", &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// FetchSettings retrieves the lifter's training settings.
func (c *Client) FetchSettings() (models.TrainingSettings, error) {
	var s models.TrainingSettings
	if err := c.getJSON("/api/v1/settings", &s); err != nil {
		return models.TrainingSettings{}, err
	}
	return s, nil
}

// FetchLifts retrieves the lift catalog keyed by id.
func (c *Client) FetchLifts() (map[uuid.UUID]models.Lift, error) {
	var lifts []models.Lift
	if err := c.getJSON("/api/v1/lifts", &lifts); err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Lift, len(lifts))
	for _, l := range lifts {
		byID[l.ID] = l
	}
	return byID, nil
}

type liftHistory struct {
	OneRepMax  *float64 `json:"oneRepMax"`
	RecentSets []struct {
		Weight   float64 `json:"weight"`
		Reps     int     `json:"reps"`
		SetType  string  `json:"setType"`
		Feedback *string `json:"feedback"`
	} `json:"recentSets"`
}

// FetchLiftHistory retrieves the derived one-rep max and recent set history
// for a lift, in the shape the suggestion engine consumes.
func (c *Client) FetchLiftHistory(liftID uuid.UUID) (*float64, []suggest.PreviousSet, error) {
	var h liftHistory
	if err := c.getJSON("/api/v1/lifts/"+liftID.String()+"/history", &h); err != nil {
		return nil, nil, err
	}

	history := make([]suggest.PreviousSet, 0, len(h.RecentSets))
	for _, s := range h.RecentSets {
		ps := suggest.PreviousSet{
			Weight:  s.Weight,
			SetType: models.SetType(s.SetType),
		}
		if s.Feedback != nil {
			fb := models.SetFeedback(*s.Feedback)
			ps.Feedback = &fb
		}
		history = append(history, ps)
	}
	return h.OneRepMax, history, nil
}

type submitSet struct {
	LiftID   string              `json:"liftId"`
	Weight   float64             `json:"weight"`
	Reps     int                 `json:"reps"`
	SetType  models.SetType      `json:"setType"`
	Feedback *models.SetFeedback `json:"feedback,omitempty"`
	RPE      *float64            `json:"rpe,omitempty"`
	LoggedAt time.Time           `json:"loggedAt"`
}

type submitRequest struct {
	ProgramDayID *uuid.UUID  `json:"programDayId,omitempty"`
	Title        string      `json:"title"`
	StartedAt    time.Time   `json:"startedAt"`
	Sets         []submitSet `json:"sets"`
}

// SubmitSession POSTs the finished session to the server, flattening the
// exercise queue into logged sets. programDayID binds the session to its
// scheduled day; nil submits ad-hoc. Retries up to 3 times with exponential
// backoff on failure. A Conflict response maps to ErrDayCompleted: either
// the day was completed elsewhere, or an earlier attempt landed but its
// response was lost.
func (c *Client) SubmitSession(ctx context.Context, s *models.LocalSession, programDayID *uuid.UUID) (*FinishResult, error) {
	req := submitRequest{
		ProgramDayID: programDayID,
		Title:        s.Title,
		StartedAt:    s.StartedAt,
	}
	for _, ex := range s.Exercises {
		for _, set := range ex.Sets {
			req.Sets = append(req.Sets, submitSet{
				LiftID:   ex.LiftID,
				Weight:   set.Weight,
				Reps:     set.Reps,
				SetType:  set.SetType,
				Feedback: set.Feedback,
				RPE:      set.RPE,
				LoggedAt: set.LoggedAt,
			})
		}
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling session: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(1<<uint(attempt-1)) * time.Second):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.serverURL+"/api/v1/sessions", bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusCreated {
			var result FinishResult
			if err := json.Unmarshal(body, &result); err != nil {
				return nil, fmt.Errorf("decoding finish response: %w", err)
			}
			return &result, nil
		}

		if resp.StatusCode == http.StatusConflict {
			return nil, fmt.Errorf("%w: %s", ErrDayCompleted, body)
		}
		lastErr = fmt.Errorf("finish failed (status %d): %s", resp.StatusCode, body)
		// Client errors won't improve on retry.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			break
		}
	}

	return nil, fmt.Errorf("after retries: %w", lastErr)
}
