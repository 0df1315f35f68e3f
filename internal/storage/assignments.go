package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/ironplan/internal/models"
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// ActiveAssignment returns the user's active assignment, or nil when none
// exists. The unique partial index on (user_id) WHERE status = 'active'
// guarantees at most one row.
func (db *DB) ActiveAssignment(ctx context.Context, userID int) (*models.Assignment, error) {
	var a models.Assignment
	err := db.q.QueryRow(ctx,
		`SELECT id, user_id, program_id, current_week_number, current_cycle,
		        current_week_started_at, status, created_at
		 FROM assignments
		 WHERE user_id = $1 AND status = 'active'`, userID).
		Scan(&a.ID, &a.UserID, &a.ProgramID, &a.CurrentWeekNumber, &a.CurrentCycle,
			&a.CurrentWeekStartedAt, &a.Status, &a.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying active assignment: %w", err)
	}
	return &a, nil
}

// CreateAssignment inserts a new assignment.
func (db *DB) CreateAssignment(ctx context.Context, a *models.Assignment) error {
	_, err := db.q.Exec(ctx,
		`INSERT INTO assignments (id, user_id, program_id, current_week_number,
		        current_cycle, current_week_started_at, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.UserID, a.ProgramID, a.CurrentWeekNumber, a.CurrentCycle,
		a.CurrentWeekStartedAt, a.Status, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting assignment: %w", err)
	}
	return nil
}

// UpdateAssignmentPosition moves an assignment to a new week/cycle and
// resets the week window anchor.
func (db *DB) UpdateAssignmentPosition(ctx context.Context, id uuid.UUID, week, cycle int, weekStartedAt time.Time) error {
	tag, err := db.q.Exec(ctx,
		`UPDATE assignments
		 SET current_week_number = $2, current_cycle = $3, current_week_started_at = $4
		 WHERE id = $1`, id, week, cycle, weekStartedAt)
	if err != nil {
		return fmt.Errorf("updating assignment position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("assignment %s not found", id)
	}
	return nil
}

// EndAssignment marks an assignment ended. Ended is terminal.
func (db *DB) EndAssignment(ctx context.Context, id uuid.UUID) error {
	tag, err := db.q.Exec(ctx,
		`UPDATE assignments SET status = 'ended' WHERE id = $1 AND status = 'active'`, id)
	if err != nil {
		return fmt.Errorf("ending assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("active assignment %s not found", id)
	}
	return nil
}
