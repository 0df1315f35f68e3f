package mcp

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/ironplan/internal/suggest"
)

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// --- Tool definitions ---

var toolGetActiveAssignment = mcp.NewTool("get_active_assignment",
	mcp.WithDescription("Get the lifter's active program assignment: the program, current week and cycle, which days of the week are completed, and the up-next day. Empty when nothing is assigned."),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("List the lifter's personal records. Each record is the heaviest logged set at a given rep count for a lift, with its estimated one-rep max."),
	mcp.WithString("lift_id", mcp.Description("Filter by lift UUID. Omit for all lifts.")),
)

var toolSuggestLoads = mcp.NewTool("suggest_loads",
	mcp.WithDescription("Suggest warm-up and working weights for a lift. Uses the lifter's one-rep max and an optional percentage target when available, otherwise autoregulates from their most recent working sets."),
	mcp.WithString("lift_id", mcp.Required(), mcp.Description("Lift UUID")),
	mcp.WithString("sets", mcp.Description("Number of working sets. Defaults to 3.")),
	mcp.WithString("reps", mcp.Description("Reps per working set. Defaults to 5.")),
	mcp.WithString("up_to_percent", mcp.Description("Target as a percentage of one-rep max (e.g. '80'). Omit to autoregulate from history.")),
)

var toolGetRecentSessions = mcp.NewTool("get_recent_sessions",
	mcp.WithDescription("Query finished training sessions with their logged sets."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolGetTrainingSettings = mcp.NewTool("get_training_settings",
	mcp.WithDescription("Get the lifter's training settings: bar weight, per-category weight increments, and rest durations."),
)

// --- Tool handlers ---

func (h *handlers) getActiveAssignment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	view, err := h.ds.ActiveAssignmentView(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_active_assignment", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(view)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	var liftID *uuid.UUID
	if v := req.GetString("lift_id", ""); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return mcp.NewToolResultError("invalid lift_id: " + err.Error()), nil
		}
		liftID = &id
	}

	recs, err := h.ds.PersonalRecords(ctx, uid, liftID)
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(recs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) suggestLoads(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	liftStr, err := req.RequireString("lift_id")
	if err != nil {
		return mcp.NewToolResultError("lift_id parameter is required"), nil
	}
	liftID, err := uuid.Parse(liftStr)
	if err != nil {
		return mcp.NewToolResultError("invalid lift_id: " + err.Error()), nil
	}

	sets, err := parsePositiveInt(req.GetString("sets", ""), 3)
	if err != nil {
		return mcp.NewToolResultError("invalid sets: " + err.Error()), nil
	}
	reps, err := parsePositiveInt(req.GetString("reps", ""), 5)
	if err != nil {
		return mcp.NewToolResultError("invalid reps: " + err.Error()), nil
	}

	var upToPercent *float64
	if v := req.GetString("up_to_percent", ""); v != "" {
		pct, err := strconv.ParseFloat(v, 64)
		if err != nil || pct <= 0 || pct > 200 {
			return mcp.NewToolResultError("invalid up_to_percent"), nil
		}
		upToPercent = &pct
	}

	lift, err := h.ds.LiftByID(ctx, liftID)
	if err != nil {
		h.log.Error("mcp suggest_loads lift", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if lift == nil {
		return mcp.NewToolResultError("unknown lift"), nil
	}

	settings, err := h.ds.Settings(ctx, uid)
	if err != nil {
		h.log.Error("mcp suggest_loads settings", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	oneRM, history, err := h.ds.LiftHistory(ctx, uid, liftID)
	if err != nil {
		h.log.Error("mcp suggest_loads history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	block := suggest.BlockTemplate{Sets: sets, Reps: reps, UpToPercent: upToPercent}
	p := suggest.Suggest(settings, oneRM, lift.Category, block, history)

	result, err := mcp.NewToolResultJSON(map[string]any{
		"lift":         lift,
		"prescription": p,
		"oneRepMax":    oneRM,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRecentSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	sessions, err := h.ds.Sessions(ctx, uid, req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		h.log.Error("mcp get_recent_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingSettings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	settings, err := h.ds.Settings(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_training_settings", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(settings)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func parsePositiveInt(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return def, nil
	}
	return n, nil
}
