package models

// TrainingSettings are per-user load-suggestion defaults. Read-mostly; when
// a user has never saved settings the hard-coded defaults apply.
type TrainingSettings struct {
	BarWeight             float64 `json:"barWeight"`
	OlympicIncrement      float64 `json:"olympicIncrement"`
	PowerliftingIncrement float64 `json:"powerliftingIncrement"`
	AccessoryIncrement    float64 `json:"accessoryIncrement"`
	DefaultRestSeconds    int     `json:"defaultRestSeconds"`
	DefaultBlockRest      int     `json:"defaultBlockRestSeconds"`
}

// DefaultSettings returns the stock settings used when a user has none.
func DefaultSettings() TrainingSettings {
	return TrainingSettings{
		BarWeight:             20,
		OlympicIncrement:      1.0,
		PowerliftingIncrement: 2.5,
		AccessoryIncrement:    2.5,
		DefaultRestSeconds:    120,
		DefaultBlockRest:      180,
	}
}

// IncrementFor returns the weight increment for a lift category. Unknown
// categories fall back to the accessory increment.
func (s TrainingSettings) IncrementFor(c LiftCategory) float64 {
	switch c {
	case CategoryOlympic:
		return s.OlympicIncrement
	case CategoryPowerlifting:
		return s.PowerliftingIncrement
	default:
		return s.AccessoryIncrement
	}
}
