package session

import (
	"testing"
	"time"
)

// TestTimerLifecycle verifies the idle → running → paused → running → skipped
// transitions and that remaining time is preserved across pause/resume.
func TestTimerLifecycle(t *testing.T) {
	fired := make(chan struct{}, 1)
	timer := NewRestTimer(func() { fired <- struct{}{} })
	defer timer.Stop()

	if timer.State() != TimerIdle {
		t.Fatalf("initial state = %v, want idle", timer.State())
	}

	timer.Start(120)
	if timer.State() != TimerRunning {
		t.Fatalf("state after Start = %v, want running", timer.State())
	}
	if timer.Remaining() != 120 {
		t.Errorf("remaining = %d, want 120", timer.Remaining())
	}

	timer.Pause()
	if timer.State() != TimerPaused {
		t.Fatalf("state after Pause = %v, want paused", timer.State())
	}
	rem := timer.Remaining()

	timer.Resume()
	if timer.State() != TimerRunning {
		t.Fatalf("state after Resume = %v, want running", timer.State())
	}
	if got := timer.Remaining(); got > rem {
		t.Errorf("remaining grew across pause/resume: %d > %d", got, rem)
	}

	timer.Skip()
	if timer.State() != TimerSkipped {
		t.Fatalf("state after Skip = %v, want skipped", timer.State())
	}
	if timer.Remaining() != 0 {
		t.Errorf("remaining after Skip = %d, want 0", timer.Remaining())
	}
	select {
	case <-fired:
	default:
		t.Error("Skip did not fire the completion callback")
	}
}

// TestTimerCompletesAndFiresOnce verifies a short countdown reaches
// Completed and fires the callback exactly once.
func TestTimerCompletesAndFiresOnce(t *testing.T) {
	fired := make(chan struct{}, 2)
	timer := NewRestTimer(func() { fired <- struct{}{} })
	defer timer.Stop()

	timer.Start(1)

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("countdown did not complete")
	}
	if timer.State() != TimerCompleted {
		t.Errorf("state = %v, want completed", timer.State())
	}
	if timer.Progress() != 1 {
		t.Errorf("progress = %v, want 1", timer.Progress())
	}

	select {
	case <-fired:
		t.Error("completion callback fired more than once")
	case <-time.After(1500 * time.Millisecond):
	}
}

// TestTimerAdjust verifies Adjust shifts both remaining and duration and is
// bounded at zero.
func TestTimerAdjust(t *testing.T) {
	timer := NewRestTimer(nil)
	defer timer.Stop()

	timer.Start(60)
	timer.Adjust(30)
	if timer.Remaining() != 90 {
		t.Errorf("remaining after +30 = %d, want 90", timer.Remaining())
	}

	timer.Adjust(-200)
	if timer.Remaining() != 0 {
		t.Errorf("remaining after -200 = %d, want 0", timer.Remaining())
	}

	// Adjust on an idle timer is a no-op.
	idle := NewRestTimer(nil)
	idle.Adjust(30)
	if idle.Remaining() != 0 {
		t.Errorf("idle remaining = %d, want 0", idle.Remaining())
	}
}

// TestTimerProgress verifies the elapsed fraction.
func TestTimerProgress(t *testing.T) {
	timer := NewRestTimer(nil)
	defer timer.Stop()

	if timer.Progress() != 0 {
		t.Errorf("idle progress = %v, want 0", timer.Progress())
	}

	timer.Start(100)
	timer.Pause()
	timer.Adjust(0)
	p := timer.Progress()
	if p < 0 || p > 0.1 {
		t.Errorf("progress just after start = %v, want near 0", p)
	}
}

// TestTimerStopIsIdempotent verifies repeated Stop calls are safe and the
// timer can be restarted after a stop.
func TestTimerStopIsIdempotent(t *testing.T) {
	timer := NewRestTimer(nil)
	timer.Start(30)
	timer.Stop()
	timer.Stop()
	if timer.State() != TimerIdle {
		t.Errorf("state after Stop = %v, want idle", timer.State())
	}

	timer.Start(45)
	if timer.State() != TimerRunning || timer.Remaining() != 45 {
		t.Errorf("restart: state %v remaining %d, want running/45", timer.State(), timer.Remaining())
	}
	timer.Stop()
}
