package records

import (
	"context"
	"testing"
	"time"

	"github.com/claude/ironplan/internal/models"
	"github.com/google/uuid"
)

// fakeStore keeps records in memory keyed by (lift, reps).
type fakeStore struct {
	records []*models.PersonalRecord
}

func (f *fakeStore) BestWeight(_ context.Context, userID int, liftID uuid.UUID, reps int) (float64, bool, error) {
	var best float64
	found := false
	for _, r := range f.records {
		if r.UserID == userID && r.LiftID == liftID && r.Reps == reps && r.Weight > best {
			best = r.Weight
			found = true
		}
	}
	return best, found, nil
}

func (f *fakeStore) InsertRecord(_ context.Context, rec *models.PersonalRecord) error {
	f.records = append(f.records, rec)
	return nil
}

// TestFirstSetIsAlwaysPR verifies that with no history any valid set is a PR
// with no previous best.
func TestFirstSetIsAlwaysPR(t *testing.T) {
	d := New(&fakeStore{})
	res, err := d.CheckAndRecord(context.Background(), 1, uuid.New(), 100, 5, nil, time.Now(), "")
	if err != nil {
		t.Fatalf("CheckAndRecord: %v", err)
	}
	if !res.IsPR {
		t.Error("IsPR = false, want true for first set")
	}
	if res.PreviousBest != nil {
		t.Errorf("PreviousBest = %v, want nil", *res.PreviousBest)
	}
	if res.Record == nil || res.Record.EstimatedOneRepMax != models.EstimateOneRepMax(100, 5) {
		t.Errorf("Record = %+v, want Epley estimate set", res.Record)
	}
}

// TestPRMonotonicity verifies that over a strictly increasing weight
// sequence every new maximum is a PR with the prior maximum as previous
// best, and any weight at or below the running maximum is not.
func TestPRMonotonicity(t *testing.T) {
	d := New(&fakeStore{})
	ctx := context.Background()
	lift := uuid.New()

	weights := []float64{60, 70, 80, 95}
	for i, w := range weights {
		res, err := d.CheckAndRecord(ctx, 1, lift, w, 3, nil, time.Now(), "")
		if err != nil {
			t.Fatalf("CheckAndRecord(%v): %v", w, err)
		}
		if !res.IsPR {
			t.Errorf("weight %v: IsPR = false, want true", w)
		}
		if i > 0 {
			if res.PreviousBest == nil || *res.PreviousBest != weights[i-1] {
				t.Errorf("weight %v: PreviousBest = %v, want %v", w, res.PreviousBest, weights[i-1])
			}
		}
	}

	// At or below the running max: never a PR.
	for _, w := range []float64{95, 94, 60} {
		res, err := d.CheckAndRecord(ctx, 1, lift, w, 3, nil, time.Now(), "")
		if err != nil {
			t.Fatalf("CheckAndRecord(%v): %v", w, err)
		}
		if res.IsPR {
			t.Errorf("weight %v: IsPR = true, want false", w)
		}
		if res.PreviousBest == nil || *res.PreviousBest != 95 {
			t.Errorf("weight %v: PreviousBest = %v, want 95", w, res.PreviousBest)
		}
	}
}

// TestPRScopedToRepCount verifies no cross-rep normalization: a heavier set
// at a different rep count does not affect another rep count's best.
func TestPRScopedToRepCount(t *testing.T) {
	d := New(&fakeStore{})
	ctx := context.Background()
	lift := uuid.New()

	if _, err := d.CheckAndRecord(ctx, 1, lift, 120, 5, nil, time.Now(), ""); err != nil {
		t.Fatal(err)
	}

	// 105x1: no prior single, so a PR even though 120x5 estimates higher.
	res, err := d.CheckAndRecord(ctx, 1, lift, 105, 1, nil, time.Now(), "")
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsPR {
		t.Error("IsPR = false, want true for first single")
	}
	if res.Record.EstimatedOneRepMax != 105 {
		t.Errorf("EstimatedOneRepMax = %v, want 105 (single)", res.Record.EstimatedOneRepMax)
	}
}

// TestPRAgainstKnownBest mirrors the single-at-105 scenario: previous best
// 103 for singles, logging 105x1 is a PR with estimate 105.
func TestPRAgainstKnownBest(t *testing.T) {
	store := &fakeStore{}
	lift := uuid.New()
	store.records = append(store.records, &models.PersonalRecord{
		ID: uuid.New(), UserID: 1, LiftID: lift, Weight: 103, Reps: 1,
		EstimatedOneRepMax: 103, Date: time.Now(),
	})

	d := New(store)
	res, err := d.CheckAndRecord(context.Background(), 1, lift, 105, 1, nil, time.Now(), "")
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsPR {
		t.Error("IsPR = false, want true")
	}
	if res.PreviousBest == nil || *res.PreviousBest != 103 {
		t.Errorf("PreviousBest = %v, want 103", res.PreviousBest)
	}
	if res.Record.EstimatedOneRepMax != 105 {
		t.Errorf("EstimatedOneRepMax = %v, want 105", res.Record.EstimatedOneRepMax)
	}
}

// TestPRRejectsInvalidInput verifies validation of weight and reps.
func TestPRRejectsInvalidInput(t *testing.T) {
	d := New(&fakeStore{})
	if _, err := d.CheckAndRecord(context.Background(), 1, uuid.New(), -5, 3, nil, time.Now(), ""); err == nil {
		t.Error("negative weight: want error")
	}
	if _, err := d.CheckAndRecord(context.Background(), 1, uuid.New(), 50, 0, nil, time.Now(), ""); err == nil {
		t.Error("zero reps: want error")
	}
}
