package models

import "github.com/google/uuid"

// ProgramTemplate is a multi-week plan definition. Templates are immutable
// once assigned; edits in the surrounding app create a new template.
type ProgramTemplate struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	DurationWeeks int       `json:"durationWeeks"`
	Weeks         []Week    `json:"weeks"`
}

// Week is one week of a program, 1-based.
type Week struct {
	ID         uuid.UUID `json:"id"`
	WeekNumber int       `json:"weekNumber"`
	Days       []Day     `json:"days"`
}

// Day is a scheduled training day within a week.
type Day struct {
	ID        uuid.UUID `json:"id"`
	DayNumber int       `json:"dayNumber"`
	Name      string    `json:"name,omitempty"`
	Blocks    []Block   `json:"blocks"`
}

// Block prescribes sets x reps for one or more movements. A block with more
// than one movement is a complex (superset/combo); Reps then means reps per
// movement.
type Block struct {
	ID           uuid.UUID  `json:"id"`
	DisplayOrder int        `json:"displayOrder"`
	Sets         int        `json:"sets"`
	Reps         int        `json:"reps"`
	UpTo         bool       `json:"upTo"`
	UpToPercent  *float64   `json:"upToPercent,omitempty"`
	UpToRPE      *float64   `json:"upToRpe,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	Movements    []Movement `json:"movements"`
}

// IsComplex reports whether the block contains more than one movement.
func (b Block) IsComplex() bool {
	return len(b.Movements) > 1
}

// Movement is one exercise within a block.
type Movement struct {
	ID           uuid.UUID `json:"id"`
	LiftID       uuid.UUID `json:"liftId"`
	LiftName     string    `json:"liftName,omitempty"`
	Reps         int       `json:"reps"`
	DisplayOrder int       `json:"displayOrder"`
}

// WeekByNumber returns the week with the given 1-based number, or nil.
func (p *ProgramTemplate) WeekByNumber(n int) *Week {
	for i := range p.Weeks {
		if p.Weeks[i].WeekNumber == n {
			return &p.Weeks[i]
		}
	}
	return nil
}

// DayInWeek reports whether the given day id belongs to the week.
func (w *Week) DayInWeek(dayID uuid.UUID) bool {
	for _, d := range w.Days {
		if d.ID == dayID {
			return true
		}
	}
	return false
}
