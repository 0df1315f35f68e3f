package suggest

import (
	"testing"

	"github.com/claude/ironplan/internal/models"
)

func f64(v float64) *float64 { return &v }

func fb(f models.SetFeedback) *models.SetFeedback { return &f }

// TestSuggestPercentOfMax verifies the canonical percentage path: a known
// one-rep max plus an up-to percentage produces the rounded target with the
// full warm-up ramp.
func TestSuggestPercentOfMax(t *testing.T) {
	settings := models.DefaultSettings()
	settings.OlympicIncrement = 1

	p := Suggest(settings, f64(100), models.CategoryOlympic,
		BlockTemplate{Sets: 3, Reps: 2, UpToPercent: f64(80)}, nil)

	wantWarmups := []float64{20, 32, 48, 60}
	if len(p.Warmups) != len(wantWarmups) {
		t.Fatalf("warmups = %v, want weights %v", p.Warmups, wantWarmups)
	}
	for i, w := range wantWarmups {
		if p.Warmups[i].Weight != w {
			t.Errorf("warmup[%d].Weight = %v, want %v", i, p.Warmups[i].Weight, w)
		}
		if p.Warmups[i].Reps > 5 {
			t.Errorf("warmup[%d].Reps = %d, want <= 5", i, p.Warmups[i].Reps)
		}
	}

	if len(p.Working) != 3 {
		t.Fatalf("working sets = %d, want 3", len(p.Working))
	}
	for i, s := range p.Working {
		if s.Weight != 80 || s.Reps != 2 {
			t.Errorf("working[%d] = %+v, want {80 2}", i, s)
		}
	}
}

// TestSuggestAutoregulation verifies the feedback paths off the previous
// working set: easy adds one increment, hard and normal repeat the load.
func TestSuggestAutoregulation(t *testing.T) {
	settings := models.DefaultSettings() // powerlifting increment 2.5

	cases := []struct {
		name       string
		feedback   *models.SetFeedback
		wantTarget float64
	}{
		{"easy adds increment", fb(models.FeedbackEasy), 102.5},
		{"hard repeats", fb(models.FeedbackHard), 100},
		{"normal repeats", fb(models.FeedbackNormal), 100},
		{"no feedback repeats", nil, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prev := []PreviousSet{{Weight: 100, SetType: models.SetWorking, Feedback: tc.feedback}}
			p := Suggest(settings, nil, models.CategoryPowerlifting,
				BlockTemplate{Sets: 5, Reps: 5}, prev)
			if len(p.Working) != 5 {
				t.Fatalf("working sets = %d, want 5", len(p.Working))
			}
			if p.Working[0].Weight != tc.wantTarget {
				t.Errorf("target = %v, want %v", p.Working[0].Weight, tc.wantTarget)
			}
		})
	}
}

// TestSuggestFallsBackToLastSetOfAnyType verifies that with no working set
// in history the most recent set of any type anchors the target.
func TestSuggestFallsBackToLastSetOfAnyType(t *testing.T) {
	settings := models.DefaultSettings()

	prev := []PreviousSet{
		{Weight: 40, SetType: models.SetWarmup},
		{Weight: 60, SetType: models.SetWarmup},
	}
	p := Suggest(settings, nil, models.CategoryAccessory,
		BlockTemplate{Sets: 3, Reps: 8}, prev)
	if p.Working[0].Weight != 60 {
		t.Errorf("target = %v, want 60 (most recent set)", p.Working[0].Weight)
	}
}

// TestSuggestNoAnchor verifies that with neither a one-rep max nor history
// the engine prescribes a single bar-weight warm-up and no working sets.
func TestSuggestNoAnchor(t *testing.T) {
	p := Suggest(models.DefaultSettings(), nil, models.CategoryPowerlifting,
		BlockTemplate{Sets: 3, Reps: 5}, nil)
	if len(p.Warmups) != 1 || p.Warmups[0].Weight != 20 {
		t.Errorf("warmups = %+v, want single bar-weight set", p.Warmups)
	}
	if len(p.Working) != 0 {
		t.Errorf("working = %+v, want none", p.Working)
	}
}

// TestWarmupProgressionProperties verifies the ramp is non-decreasing,
// starts at bar weight, and stays strictly below the target.
func TestWarmupProgressionProperties(t *testing.T) {
	settings := models.DefaultSettings()
	targets := []float64{25, 60, 80, 100, 142.5, 200}

	for _, max := range targets {
		p := Suggest(settings, f64(max), models.CategoryPowerlifting,
			BlockTemplate{Sets: 3, Reps: 3, UpToPercent: f64(90)}, nil)
		target := p.Working[0].Weight

		if p.Warmups[0].Weight != settings.BarWeight {
			t.Errorf("max %v: first warmup = %v, want bar weight", max, p.Warmups[0].Weight)
		}
		for i := 1; i < len(p.Warmups); i++ {
			if p.Warmups[i].Weight < p.Warmups[i-1].Weight {
				t.Errorf("max %v: warmups not non-decreasing: %+v", max, p.Warmups)
			}
			if p.Warmups[i].Weight >= target {
				t.Errorf("max %v: warmup %v reaches target %v", max, p.Warmups[i].Weight, target)
			}
		}
	}
}

// TestSuggestTargetAtOrBelowBar verifies that a target at or below the bar
// collapses the ramp to a single bar-weight warm-up.
func TestSuggestTargetAtOrBelowBar(t *testing.T) {
	settings := models.DefaultSettings()
	p := Suggest(settings, f64(25), models.CategoryPowerlifting,
		BlockTemplate{Sets: 2, Reps: 5, UpToPercent: f64(70)}, nil)
	// 25 * 0.70 = 17.5 <= bar 20
	if len(p.Warmups) != 1 || p.Warmups[0].Weight != 20 {
		t.Errorf("warmups = %+v, want [bar only]", p.Warmups)
	}
	if p.Working[0].Weight != 17.5 {
		t.Errorf("target = %v, want 17.5", p.Working[0].Weight)
	}
}

// TestRoundToIncrement verifies rounding to category increments.
func TestRoundToIncrement(t *testing.T) {
	cases := []struct {
		w, inc, want float64
	}{
		{81.2, 2.5, 80},
		{81.3, 1, 81},
		{78.76, 2.5, 80},
		{100, 2.5, 100},
		{33, 0, 33}, // no increment: unchanged
	}
	for _, tc := range cases {
		if got := RoundToIncrement(tc.w, tc.inc); got != tc.want {
			t.Errorf("RoundToIncrement(%v, %v) = %v, want %v", tc.w, tc.inc, got, tc.want)
		}
	}
}

// TestWarmupRepsCappedAtFive verifies warm-up reps follow the block reps but
// never exceed five.
func TestWarmupRepsCappedAtFive(t *testing.T) {
	settings := models.DefaultSettings()
	p := Suggest(settings, f64(100), models.CategoryPowerlifting,
		BlockTemplate{Sets: 3, Reps: 10, UpToPercent: f64(75)}, nil)
	for i, w := range p.Warmups {
		if w.Reps != 5 {
			t.Errorf("warmup[%d].Reps = %d, want 5", i, w.Reps)
		}
	}

	p = Suggest(settings, f64(100), models.CategoryPowerlifting,
		BlockTemplate{Sets: 3, Reps: 2, UpToPercent: f64(75)}, nil)
	for i, w := range p.Warmups {
		if w.Reps != 2 {
			t.Errorf("warmup[%d].Reps = %d, want 2", i, w.Reps)
		}
	}
}
