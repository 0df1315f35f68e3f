package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/claude/ironplan/internal/models"
)

// BestWeight returns the heaviest recorded weight for (user, lift, reps),
// or ok=false when the user has no record at that rep count.
func (db *DB) BestWeight(ctx context.Context, userID int, liftID uuid.UUID, reps int) (float64, bool, error) {
	var weight *float64
	err := db.q.QueryRow(ctx,
		`SELECT MAX(weight_kg) FROM personal_records
		 WHERE user_id = $1 AND lift_id = $2 AND reps = $3`,
		userID, liftID, reps).Scan(&weight)
	if err != nil {
		return 0, false, fmt.Errorf("querying best weight: %w", err)
	}
	if weight == nil {
		return 0, false, nil
	}
	return *weight, true, nil
}

// InsertRecord appends a personal record.
func (db *DB) InsertRecord(ctx context.Context, r *models.PersonalRecord) error {
	_, err := db.q.Exec(ctx,
		`INSERT INTO personal_records (id, user_id, lift_id, weight_kg, reps,
		        estimated_one_rep_max, recorded_on, session_set_id, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.UserID, r.LiftID, r.Weight, r.Reps,
		r.EstimatedOneRepMax, r.Date, r.SessionSetID, r.Notes)
	if err != nil {
		return fmt.Errorf("inserting personal record: %w", err)
	}
	return nil
}

// QueryRecords returns a user's records, optionally filtered to one lift,
// newest first.
func (db *DB) QueryRecords(ctx context.Context, userID int, liftID *uuid.UUID) ([]models.PersonalRecord, error) {
	query := `SELECT id, user_id, lift_id, weight_kg, reps, estimated_one_rep_max,
	                 recorded_on, session_set_id, COALESCE(notes, '')
	          FROM personal_records WHERE user_id = $1`
	args := []any{userID}
	if liftID != nil {
		query += ` AND lift_id = $2`
		args = append(args, *liftID)
	}
	query += ` ORDER BY recorded_on DESC`

	rows, err := db.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying personal records: %w", err)
	}
	defer rows.Close()

	var out []models.PersonalRecord
	for rows.Next() {
		var r models.PersonalRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.LiftID, &r.Weight, &r.Reps,
			&r.EstimatedOneRepMax, &r.Date, &r.SessionSetID, &r.Notes); err != nil {
			return nil, fmt.Errorf("scanning personal record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// OneRepMaxForLift derives the user's current one-rep max for a lift: the
// highest estimated max across all their records. ok=false when no records
// exist.
func (db *DB) OneRepMaxForLift(ctx context.Context, userID int, liftID uuid.UUID) (float64, bool, error) {
	var max *float64
	err := db.q.QueryRow(ctx,
		`SELECT MAX(estimated_one_rep_max) FROM personal_records
		 WHERE user_id = $1 AND lift_id = $2`, userID, liftID).Scan(&max)
	if err != nil {
		return 0, false, fmt.Errorf("querying one-rep max: %w", err)
	}
	if max == nil {
		return 0, false, nil
	}
	return *max, true, nil
}
