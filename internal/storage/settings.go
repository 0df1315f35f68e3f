package storage

import (
	"context"
	"fmt"

	"github.com/claude/ironplan/internal/models"
)

// GetSettings returns the user's training settings, falling back to the
// stock defaults when they have never saved any.
func (db *DB) GetSettings(ctx context.Context, userID int) (models.TrainingSettings, error) {
	var s models.TrainingSettings
	err := db.q.QueryRow(ctx,
		`SELECT bar_weight, olympic_increment, powerlifting_increment,
		        accessory_increment, default_rest_seconds, default_block_rest_seconds
		 FROM training_settings WHERE user_id = $1`, userID).
		Scan(&s.BarWeight, &s.OlympicIncrement, &s.PowerliftingIncrement,
			&s.AccessoryIncrement, &s.DefaultRestSeconds, &s.DefaultBlockRest)
	if err != nil {
		if isNoRows(err) {
			return models.DefaultSettings(), nil
		}
		return models.TrainingSettings{}, fmt.Errorf("querying settings: %w", err)
	}
	return s, nil
}

// SaveSettings upserts the user's training settings.
func (db *DB) SaveSettings(ctx context.Context, userID int, s models.TrainingSettings) error {
	_, err := db.q.Exec(ctx,
		`INSERT INTO training_settings (user_id, bar_weight, olympic_increment,
		        powerlifting_increment, accessory_increment,
		        default_rest_seconds, default_block_rest_seconds)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id) DO UPDATE SET
		        bar_weight = excluded.bar_weight,
		        olympic_increment = excluded.olympic_increment,
		        powerlifting_increment = excluded.powerlifting_increment,
		        accessory_increment = excluded.accessory_increment,
		        default_rest_seconds = excluded.default_rest_seconds,
		        default_block_rest_seconds = excluded.default_block_rest_seconds`,
		userID, s.BarWeight, s.OlympicIncrement, s.PowerliftingIncrement,
		s.AccessoryIncrement, s.DefaultRestSeconds, s.DefaultBlockRest)
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}
