package session

import (
	"sync"
	"time"
)

// TimerState is the rest timer's lifecycle state.
type TimerState int

const (
	TimerIdle TimerState = iota
	TimerRunning
	TimerPaused
	TimerCompleted
	TimerSkipped
)

func (s TimerState) String() string {
	switch s {
	case TimerIdle:
		return "idle"
	case TimerRunning:
		return "running"
	case TimerPaused:
		return "paused"
	case TimerCompleted:
		return "completed"
	case TimerSkipped:
		return "skipped"
	}
	return "unknown"
}

// RestTimer counts down rest between sets on a once-per-second tick. It is
// safe for the timer goroutine and the caller to touch concurrently; all
// state lives behind one mutex. Stop must be called on teardown to release
// the ticker.
type RestTimer struct {
	mu        sync.Mutex
	state     TimerState
	duration  int // seconds
	remaining int // seconds
	ticker    *time.Ticker
	done      chan struct{}
	onDone    func()
}

// NewRestTimer creates an idle timer. onDone fires once when the countdown
// completes or is skipped; it may be nil.
func NewRestTimer(onDone func()) *RestTimer {
	return &RestTimer{state: TimerIdle, onDone: onDone}
}

// Start begins a countdown of the given duration in seconds, replacing any
// countdown in progress.
func (t *RestTimer) Start(duration int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if duration <= 0 {
		return
	}

	t.stopTickerLocked()
	t.duration = duration
	t.remaining = duration
	t.state = TimerRunning
	t.startTickerLocked()
}

// Pause suspends the countdown without resetting remaining time.
func (t *RestTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TimerRunning {
		return
	}
	t.stopTickerLocked()
	t.state = TimerPaused
}

// Resume continues a paused countdown.
func (t *RestTimer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TimerPaused {
		return
	}
	t.state = TimerRunning
	t.startTickerLocked()
}

// Skip forces the countdown to zero and fires the completion callback
// immediately.
func (t *RestTimer) Skip() {
	t.mu.Lock()
	if t.state != TimerRunning && t.state != TimerPaused {
		t.mu.Unlock()
		return
	}
	t.stopTickerLocked()
	t.remaining = 0
	t.state = TimerSkipped
	cb := t.onDone
	t.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Adjust adds delta seconds to both the remaining time and the duration,
// bounded at zero.
func (t *RestTimer) Adjust(delta int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TimerRunning && t.state != TimerPaused {
		return
	}
	t.remaining += delta
	t.duration += delta
	if t.remaining < 0 {
		t.remaining = 0
	}
	if t.duration < 0 {
		t.duration = 0
	}
}

// Remaining returns the seconds left.
func (t *RestTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// State returns the current lifecycle state.
func (t *RestTimer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Progress returns elapsed fraction in [0, 1]; 0 when idle.
func (t *RestTimer) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.duration == 0 {
		return 0
	}
	return float64(t.duration-t.remaining) / float64(t.duration)
}

// Stop tears the timer down, releasing the ticker goroutine. The timer
// returns to idle and may be started again.
func (t *RestTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopTickerLocked()
	t.state = TimerIdle
	t.duration = 0
	t.remaining = 0
}

func (t *RestTimer) startTickerLocked() {
	t.ticker = time.NewTicker(time.Second)
	t.done = make(chan struct{})
	go t.run(t.ticker, t.done)
}

func (t *RestTimer) stopTickerLocked() {
	if t.ticker != nil {
		t.ticker.Stop()
		close(t.done)
		t.ticker = nil
		t.done = nil
	}
}

func (t *RestTimer) run(ticker *time.Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if t.tick(ticker) {
				return
			}
		}
	}
}

// tick decrements remaining by one second; returns true when the countdown
// finished and the goroutine should exit. A tick from a superseded ticker
// (buffered before a restart) is discarded.
func (t *RestTimer) tick(ticker *time.Ticker) bool {
	t.mu.Lock()
	if t.ticker != ticker || t.state != TimerRunning {
		t.mu.Unlock()
		return true
	}
	t.remaining--
	if t.remaining > 0 {
		t.mu.Unlock()
		return false
	}
	t.remaining = 0
	t.state = TimerCompleted
	t.stopTickerLocked()
	cb := t.onDone
	t.mu.Unlock()

	if cb != nil {
		cb()
	}
	return true
}
