package models

import "github.com/google/uuid"

// LiftCategory determines which per-category weight increment applies when
// suggesting loads.
type LiftCategory string

const (
	CategoryOlympic      LiftCategory = "olympic"
	CategoryPowerlifting LiftCategory = "powerlifting"
	CategoryAccessory    LiftCategory = "accessory"
)

// Valid reports whether c is one of the known categories.
func (c LiftCategory) Valid() bool {
	switch c {
	case CategoryOlympic, CategoryPowerlifting, CategoryAccessory:
		return true
	}
	return false
}

// Lift is a catalog entry for a single exercise (snatch, back squat, ...).
type Lift struct {
	ID       uuid.UUID    `json:"id"`
	Name     string       `json:"name"`
	Category LiftCategory `json:"category"`
}
