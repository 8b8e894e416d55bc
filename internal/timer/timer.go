// Package timer implements a deadline-based kitchen countdown.
//
// The timer stores an absolute deadline instead of counting ticks, so the
// remaining time is always max(0, deadline-now). A process that was asleep
// or backgrounded catches up on its next tick without drift.
package timer

import (
	"sync"
	"time"
)

type State string

const (
	Idle    State = "idle"
	Running State = "running"
	Paused  State = "paused"
	Rung    State = "rung"
)

// Completion is published once per Start when the countdown reaches zero.
type Completion struct {
	Name string    `json:"name"`
	At   time.Time `json:"at"`
}

type Snapshot struct {
	Name            string `json:"name"`
	State           State  `json:"state"`
	Running         bool   `json:"running"`
	HasRung         bool   `json:"hasRung"`
	RemainingMs     int64  `json:"remainingMs"`
	DeadlineEpochMs *int64 `json:"deadlineEpochMs,omitempty"`
}

// Timer — конечный автомат обратного отсчета.
// Инвариант: running => hasDeadline.
type Timer struct {
	mu    sync.Mutex
	clock Clock
	name  string

	deadline    time.Time
	hasDeadline bool
	running     bool
	hasRung     bool

	// заморожено на паузе
	paused          bool
	pausedRemaining time.Duration
}

func New(name string, clock Clock) *Timer {
	if clock == nil {
		clock = SystemClock
	}
	return &Timer{name: name, clock: clock}
}

func (t *Timer) SetName(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.name = name
}

func (t *Timer) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.name
}

// Start always begins a fresh cycle, whatever the current state.
func (t *Timer) Start(d time.Duration) {
	if d < 0 {
		d = 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.deadline = t.clock.Now().Add(d)
	t.hasDeadline = true
	t.running = true
	t.hasRung = false
	t.paused = false
	t.pausedRemaining = 0
}

// Pause freezes the remaining time. No-op unless running.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	now := t.clock.Now()
	remaining := t.remainingAt(now)
	t.deadline = now.Add(remaining)
	t.pausedRemaining = remaining
	t.paused = true
	t.running = false
}

// Resume continues a paused countdown from the frozen remaining time.
func (t *Timer) Resume() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.paused {
		return false
	}
	t.deadline = t.clock.Now().Add(t.pausedRemaining)
	t.running = true
	t.paused = false
	t.pausedRemaining = 0
	return true
}

func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.deadline = time.Time{}
	t.hasDeadline = false
	t.running = false
	t.hasRung = false
	t.paused = false
	t.pausedRemaining = 0
}

// Tick recomputes the remaining time from the wall clock. When a running
// countdown reaches zero for the first time in this cycle it stops the
// timer, latches hasRung and returns the completion.
func (t *Timer) Tick() (Snapshot, *Completion) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	var done *Completion
	if t.running && !t.hasRung && t.remainingAt(now) == 0 {
		t.running = false
		t.hasRung = true
		done = &Completion{Name: t.name, At: now}
	}
	return t.snapshotAt(now), done
}

func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotAt(t.clock.Now())
}

func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remainingAt(t.clock.Now())
}

func (t *Timer) remainingAt(now time.Time) time.Duration {
	switch {
	case t.paused:
		return t.pausedRemaining
	case !t.hasDeadline || t.hasRung:
		return 0
	}
	if left := t.deadline.Sub(now); left > 0 {
		return left
	}
	return 0
}

func (t *Timer) stateLocked() State {
	switch {
	case t.running:
		return Running
	case t.paused:
		return Paused
	case t.hasRung:
		return Rung
	}
	return Idle
}

func (t *Timer) snapshotAt(now time.Time) Snapshot {
	s := Snapshot{
		Name:        t.name,
		State:       t.stateLocked(),
		Running:     t.running,
		HasRung:     t.hasRung,
		RemainingMs: t.remainingAt(now).Milliseconds(),
	}
	if t.hasDeadline {
		ms := t.deadline.UnixMilli()
		s.DeadlineEpochMs = &ms
	}
	return s
}
