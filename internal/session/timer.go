package session

import (
	"sync"
	"time"
)

// Clock returns the current time.
type Clock func() time.Time

// Timer measures how long the current question has been on screen.
type Timer struct {
	mu      sync.Mutex
	now     Clock
	started time.Time
	running bool
}

// NewTimer creates a stopped timer. A nil clock uses time.Now.
func NewTimer(clock Clock) *Timer {
	if clock == nil {
		clock = time.Now
	}
	return &Timer{now: clock}
}

// Restart starts timing from now.
func (t *Timer) Restart() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started = t.now()
	t.running = true
}

// Elapsed returns the time since the last Restart, or zero when stopped.
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return 0
	}
	if d := t.now().Sub(t.started); d > 0 {
		return d
	}
	return 0
}

// Running reports whether the timer has been started and not stopped.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Stop halts the timer.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
}
