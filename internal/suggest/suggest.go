// Package suggest turns a block template plus training history into concrete
// warm-up and working set prescriptions. Everything here is pure and
// deterministic so it can run identically on the server and in the session
// client.
package suggest

import (
	"math"

	"github.com/claude/ironplan/internal/models"
)

// warmupFractions of the target weight, ascending. Fractions that round to
// the bar weight or to the target itself are dropped.
var warmupFractions = [...]float64{0.40, 0.60, 0.75}

const maxWarmupReps = 5

// SetPrescription is one suggested set.
type SetPrescription struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

// Prescription is the full output for one block: warm-ups then working sets.
type Prescription struct {
	Warmups []SetPrescription `json:"warmups"`
	Working []SetPrescription `json:"working"`
}

// PreviousSet is the slice of history the engine looks at: what was lifted
// and how it felt.
type PreviousSet struct {
	Weight   float64
	SetType  models.SetType
	Feedback *models.SetFeedback
}

// BlockTemplate is the part of a program block the engine needs.
type BlockTemplate struct {
	Sets        int
	Reps        int
	UpToPercent *float64
}

// RoundToIncrement snaps w to the nearest multiple of inc. A zero or
// negative increment returns w unchanged.
func RoundToIncrement(w, inc float64) float64 {
	if inc <= 0 {
		return w
	}
	return math.Round(w/inc) * inc
}

// Suggest computes warm-up and working sets for a block.
//
// Target selection, in order: percentage of the one-rep max when both are
// known; otherwise autoregulation off the most recent set (easy feedback
// adds one increment, hard and normal repeat the load — loads are never
// automatically decreased); otherwise the empty bar. With no one-rep max
// and no history at all, the prescription is a single warm-up at bar
// weight and no working sets.
func Suggest(settings models.TrainingSettings, oneRepMax *float64, category models.LiftCategory, block BlockTemplate, previousSets []PreviousSet) Prescription {
	inc := settings.IncrementFor(category)
	bar := settings.BarWeight

	if oneRepMax == nil && len(previousSets) == 0 {
		return Prescription{
			Warmups: []SetPrescription{{Weight: bar, Reps: warmupReps(block.Reps)}},
		}
	}

	target := bar
	switch {
	case oneRepMax != nil && block.UpToPercent != nil:
		target = RoundToIncrement(*oneRepMax * *block.UpToPercent / 100, inc)
	case len(previousSets) > 0:
		last := lastRelevantSet(previousSets)
		if last.Feedback != nil && *last.Feedback == models.FeedbackEasy {
			target = RoundToIncrement(last.Weight+inc, inc)
		} else {
			target = RoundToIncrement(last.Weight, inc)
		}
	}

	return Prescription{
		Warmups: warmupProgression(bar, target, inc, block.Reps),
		Working: workingSets(target, block),
	}
}

// lastRelevantSet picks the most recent working set, falling back to the
// most recent set of any type. previousSets is ordered oldest first.
func lastRelevantSet(sets []PreviousSet) PreviousSet {
	for i := len(sets) - 1; i >= 0; i-- {
		if sets[i].SetType == models.SetWorking {
			return sets[i]
		}
	}
	return sets[len(sets)-1]
}

// warmupProgression builds a monotonic ramp from the bar toward the target.
// Intermediate weights are included only when strictly between bar and
// target, which deduplicates by construction.
func warmupProgression(bar, target, inc float64, blockReps int) []SetPrescription {
	reps := warmupReps(blockReps)
	if target <= bar {
		return []SetPrescription{{Weight: bar, Reps: reps}}
	}

	warmups := []SetPrescription{{Weight: bar, Reps: reps}}
	for _, f := range warmupFractions {
		w := RoundToIncrement(target*f, inc)
		if w > warmups[len(warmups)-1].Weight && w < target {
			warmups = append(warmups, SetPrescription{Weight: w, Reps: reps})
		}
	}
	return warmups
}

func warmupReps(blockReps int) int {
	if blockReps < maxWarmupReps {
		return blockReps
	}
	return maxWarmupReps
}

func workingSets(target float64, block BlockTemplate) []SetPrescription {
	sets := make([]SetPrescription, block.Sets)
	for i := range sets {
		sets[i] = SetPrescription{Weight: target, Reps: block.Reps}
	}
	return sets
}
