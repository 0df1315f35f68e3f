package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/ironplan/internal/models"
	"github.com/claude/ironplan/internal/progression"
	"github.com/claude/ironplan/internal/suggest"
)

// HTTPClient implements DataSource by calling the ironplan REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale). The server
// resolves the user from the connection, so userID arguments are ignored.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) ActiveAssignmentView(ctx context.Context, _ int) (*progression.ActiveView, error) {
	body, err := c.get(ctx, "/api/v1/active-assignment", nil)
	if err != nil {
		return nil, err
	}
	var view progression.ActiveView
	if err := json.Unmarshal(body, &view); err != nil {
		return nil, fmt.Errorf("httpclient: decode active assignment: %w", err)
	}
	return &view, nil
}

func (c *HTTPClient) PersonalRecords(ctx context.Context, _ int, liftID *uuid.UUID) ([]models.PersonalRecord, error) {
	params := url.Values{}
	if liftID != nil {
		params.Set("liftId", liftID.String())
	}
	body, err := c.get(ctx, "/api/v1/personal-records", params)
	if err != nil {
		return nil, err
	}
	var recs []models.PersonalRecord
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("httpclient: decode records: %w", err)
	}
	return recs, nil
}

func (c *HTTPClient) Sessions(ctx context.Context, _ int, start, end string) ([]models.WorkoutSession, error) {
	params := url.Values{}
	if start != "" {
		params.Set("start", start)
	}
	if end != "" {
		params.Set("end", end)
	}
	body, err := c.get(ctx, "/api/v1/sessions", params)
	if err != nil {
		return nil, err
	}
	var sessions []models.WorkoutSession
	if err := json.Unmarshal(body, &sessions); err != nil {
		return nil, fmt.Errorf("httpclient: decode sessions: %w", err)
	}
	return sessions, nil
}

func (c *HTTPClient) Settings(ctx context.Context, _ int) (models.TrainingSettings, error) {
	body, err := c.get(ctx, "/api/v1/settings", nil)
	if err != nil {
		return models.TrainingSettings{}, err
	}
	var s models.TrainingSettings
	if err := json.Unmarshal(body, &s); err != nil {
		return models.TrainingSettings{}, fmt.Errorf("httpclient: decode settings: %w", err)
	}
	return s, nil
}

func (c *HTTPClient) LiftByID(ctx context.Context, id uuid.UUID) (*models.Lift, error) {
	// The catalog is small; filter client-side rather than adding a
	// by-id endpoint.
	body, err := c.get(ctx, "/api/v1/lifts", nil)
	if err != nil {
		return nil, err
	}
	var lifts []models.Lift
	if err := json.Unmarshal(body, &lifts); err != nil {
		return nil, fmt.Errorf("httpclient: decode lifts: %w", err)
	}
	for _, l := range lifts {
		if l.ID == id {
			lift := l
			return &lift, nil
		}
	}
	return nil, nil
}

func (c *HTTPClient) LiftHistory(ctx context.Context, _ int, liftID uuid.UUID) (*float64, []suggest.PreviousSet, error) {
	body, err := c.get(ctx, "/api/v1/lifts/"+liftID.String()+"/history", nil)
	if err != nil {
		return nil, nil, err
	}

	var h struct {
		OneRepMax  *float64 `json:"oneRepMax"`
		RecentSets []struct {
			Weight   float64 `json:"weight"`
			Reps     int     `json:"reps"`
			SetType  string  `json:"setType"`
			Feedback *string `json:"feedback"`
		} `json:"recentSets"`
	}
	if err := json.Unmarshal(body, &h); err != nil {
		return nil, nil, fmt.Errorf("httpclient: decode lift history: %w", err)
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
