package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/claude/ironplan/internal/models"
)

// ListPrograms returns all program templates without their week hierarchy.
func (db *DB) ListPrograms(ctx context.Context) ([]models.ProgramTemplate, error) {
	rows, err := db.q.Query(ctx,
		`SELECT id, name, duration_weeks FROM programs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying programs: %w", err)
	}
	defer rows.Close()

	var out []models.ProgramTemplate
	for rows.Next() {
		var p models.ProgramTemplate
		if err := rows.Scan(&p.ID, &p.Name, &p.DurationWeeks); err != nil {
			return nil, fmt.Errorf("scanning program: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ProgramByID loads a template with its full week/day/block/movement
// hierarchy, ordered the way it is trained. Returns nil when unknown.
func (db *DB) ProgramByID(ctx context.Context, id uuid.UUID) (*models.ProgramTemplate, error) {
	var p models.ProgramTemplate
	err := db.q.QueryRow(ctx,
		`SELECT id, name, duration_weeks FROM programs WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.DurationWeeks)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying program: %w", err)
	}

	weeks, err := db.programWeeks(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Weeks = weeks
	return &p, nil
}

func (db *DB) programWeeks(ctx context.Context, programID uuid.UUID) ([]models.Week, error) {
	rows, err := db.q.Query(ctx,
		`SELECT id, week_number FROM program_weeks
		 WHERE program_id = $1 ORDER BY week_number`, programID)
	if err != nil {
		return nil, fmt.Errorf("querying weeks: %w", err)
	}
	defer rows.Close()

	var weeks []models.Week
	for rows.Next() {
		var w models.Week
		if err := rows.Scan(&w.ID, &w.WeekNumber); err != nil {
			return nil, fmt.Errorf("scanning week: %w", err)
		}
		weeks = append(weeks, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range weeks {
		days, err := db.weekDays(ctx, weeks[i].ID)
		if err != nil {
			return nil, err
		}
		weeks[i].Days = days
	}
	return weeks, nil
}

func (db *DB) weekDays(ctx context.Context, weekID uuid.UUID) ([]models.Day, error) {
	rows, err := db.q.Query(ctx,
		`SELECT id, day_number, COALESCE(name, '') FROM program_days
		 WHERE week_id = $1 ORDER BY day_number`, weekID)
	if err != nil {
		return nil, fmt.Errorf("querying days: %w", err)
	}
	defer rows.Close()

	var days []models.Day
	for rows.Next() {
		var d models.Day
		if err := rows.Scan(&d.ID, &d.DayNumber, &d.Name); err != nil {
			return nil, fmt.Errorf("scanning day: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range days {
		blocks, err := db.dayBlocks(ctx, days[i].ID)
		if err != nil {
			return nil, err
		}
		days[i].Blocks = blocks
	}
	return days, nil
}

func (db *DB) dayBlocks(ctx context.Context, dayID uuid.UUID) ([]models.Block, error) {
	rows, err := db.q.Query(ctx,
		`SELECT id, display_order, sets, reps, up_to, up_to_percent, up_to_rpe, COALESCE(notes, '')
		 FROM program_blocks WHERE day_id = $1 ORDER BY display_order`, dayID)
	if err != nil {
		return nil, fmt.Errorf("querying blocks: %w", err)
	}
	defer rows.Close()

	var blocks []models.Block
	for rows.Next() {
		var b models.Block
		if err := rows.Scan(&b.ID, &b.DisplayOrder, &b.Sets, &b.Reps,
			&b.UpTo, &b.UpToPercent, &b.UpToRPE, &b.Notes); err != nil {
			return nil, fmt.Errorf("scanning block: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range blocks {
		movements, err := db.blockMovements(ctx, blocks[i].ID)
		if err != nil {
			return nil, err
		}
		blocks[i].Movements = movements
	}
	return blocks, nil
}

func (db *DB) blockMovements(ctx context.Context, blockID uuid.UUID) ([]models.Movement, error) {
	rows, err := db.q.Query(ctx,
		`SELECT m.id, m.lift_id, l.name, m.reps, m.display_order
		 FROM block_movements m
		 JOIN lifts l ON l.id = m.lift_id
		 WHERE m.block_id = $1 ORDER BY m.display_order`, blockID)
	if err != nil {
		return nil, fmt.Errorf("querying movements: %w", err)
	}
	defer rows.Close()

	var movements []models.Movement
	for rows.Next() {
		var m models.Movement
		if err := rows.Scan(&m.ID, &m.LiftID, &m.LiftName, &m.Reps, &m.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scanning movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// ListLifts returns the lift catalog.
func (db *DB) ListLifts(ctx context.Context) ([]models.Lift, error) {
	rows, err := db.q.Query(ctx,
		`SELECT id, name, category FROM lifts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying lifts: %w", err)
	}
	defer rows.Close()

	var out []models.Lift
	for rows.Next() {
		var l models.Lift
		if err := rows.Scan(&l.ID, &l.Name, &l.Category); err != nil {
			return nil, fmt.Errorf("scanning lift: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// LiftByID returns one lift, or nil when unknown.
func (db *DB) LiftByID(ctx context.Context, id uuid.UUID) (*models.Lift, error) {
	var l models.Lift
	err := db.q.QueryRow(ctx,
		`SELECT id, name, category FROM lifts WHERE id = $1`, id).
		Scan(&l.ID, &l.Name, &l.Category)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying lift: %w", err)
	}
	return &l, nil
}
