package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/ironplan/internal/models"
)

// InsertSession persists a finished session and its sets in one statement
// batch. The session id must already be assigned.
func (db *DB) InsertSession(ctx context.Context, s *models.WorkoutSession) error {
	_, err := db.q.Exec(ctx,
		`INSERT INTO workout_sessions (id, user_id, program_day_id, title, started_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.UserID, s.ProgramDayID, s.Title, s.StartedAt, s.CompletedAt)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	if len(s.Sets) == 0 {
		return nil
	}

	query := `INSERT INTO workout_sets (id, session_id, lift_id, weight_kg, reps, set_type, feedback, rpe, logged_at) VALUES `
	args := make([]any, 0, len(s.Sets)*9)
	valueStrings := make([]string, 0, len(s.Sets))

	for i := range s.Sets {
		set := &s.Sets[i]
		if set.ID == uuid.Nil {
			set.ID = uuid.New()
		}
		base := i * 9
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9))
		args = append(args, set.ID, s.ID, set.LiftID, set.Weight, set.Reps,
			set.SetType, set.Feedback, set.RPE, set.LoggedAt)
	}

	if _, err := db.q.Exec(ctx, query+strings.Join(valueStrings, ","), args...); err != nil {
		return fmt.Errorf("inserting sets: %w", err)
	}
	return nil
}

// CompletedDayIDs returns the program day ids with a finished session
// completed at or after since.
func (db *DB) CompletedDayIDs(ctx context.Context, userID int, since time.Time) (map[uuid.UUID]bool, error) {
	rows, err := db.q.Query(ctx,
		`SELECT DISTINCT program_day_id FROM workout_sessions
		 WHERE user_id = $1 AND program_day_id IS NOT NULL AND completed_at >= $2`,
		userID, since)
	if err != nil {
		return nil, fmt.Errorf("querying completed days: %w", err)
	}
	defer rows.Close()

	out := map[uuid.UUID]bool{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning day id: %w", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}

// QuerySessions returns finished sessions with their sets in a date range,
// newest first.
func (db *DB) QuerySessions(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutSession, error) {
	rows, err := db.q.Query(ctx,
		`SELECT id, user_id, program_day_id, title, started_at, completed_at
		 FROM workout_sessions
		 WHERE user_id = $1 AND completed_at >= $2 AND completed_at < $3
		 ORDER BY completed_at DESC`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.WorkoutSession
	for rows.Next() {
		var s models.WorkoutSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.ProgramDayID, &s.Title,
			&s.StartedAt, &s.CompletedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sessions {
		sets, err := db.sessionSets(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].Sets = sets
	}
	return sessions, nil
}

func (db *DB) sessionSets(ctx context.Context, sessionID uuid.UUID) ([]models.WorkoutSet, error) {
	rows, err := db.q.Query(ctx,
		`SELECT id, lift_id, weight_kg, reps, set_type, feedback, rpe, logged_at
		 FROM workout_sets WHERE session_id = $1 ORDER BY logged_at`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer rows.Close()

	var sets []models.WorkoutSet
	for rows.Next() {
		var s models.WorkoutSet
		if err := rows.Scan(&s.ID, &s.LiftID, &s.Weight, &s.Reps,
			&s.SetType, &s.Feedback, &s.RPE, &s.LoggedAt); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		sets = append(sets, s)
	}
	return sets, rows.Err()
}

// RecentSetsForLift returns the user's most recent sets for one lift,
// oldest first, capped at limit. The suggestion engine autoregulates off
// this history.
func (db *DB) RecentSetsForLift(ctx context.Context, userID int, liftID uuid.UUID, limit int) ([]models.WorkoutSet, error) {
	rows, err := db.q.Query(ctx,
		`SELECT ws.id, ws.lift_id, ws.weight_kg, ws.reps, ws.set_type, ws.feedback, ws.rpe, ws.logged_at
		 FROM workout_sets ws
		 JOIN workout_sessions s ON s.id = ws.session_id
		 WHERE s.user_id = $1 AND ws.lift_id = $2
		 ORDER BY ws.logged_at DESC
		 LIMIT $3`, userID, liftID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent sets: %w", err)
	}
	defer rows.Close()

	var sets []models.WorkoutSet
	for rows.Next() {
		var s models.WorkoutSet
		if err := rows.Scan(&s.ID, &s.LiftID, &s.Weight, &s.Reps,
			&s.SetType, &s.Feedback, &s.RPE, &s.LoggedAt); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		sets = append(sets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to oldest-first for the engine.
	for i, j := 0, len(sets)-1; i < j; i, j = i+1, j-1 {
		sets[i], sets[j] = sets[j], sets[i]
	}
	return sets, nil
}
