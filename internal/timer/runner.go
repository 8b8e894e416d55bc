package timer

import (
	"context"
	"log"
	"sync"
	"time"
)

const DefaultTickInterval = 250 * time.Millisecond

// Runner drives a Timer with a single cooperative tick loop. The loop is
// started when the timer starts or resumes and is gone as soon as the
// timer stops running, so at most one tick source exists at a time.
type Runner struct {
	timer    *Timer
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	subsMu sync.Mutex
	subs   []chan Completion
	closed bool
}

func NewRunner(t *Timer, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Runner{timer: t, interval: interval}
}

func (r *Runner) Timer() *Timer {
	return r.timer
}

// Subscribe returns a channel receiving every completion from now on.
// The channel is closed by Close.
func (r *Runner) Subscribe() <-chan Completion {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()

	ch := make(chan Completion, 4)
	if r.closed {
		close(ch)
		return ch
	}
	r.subs = append(r.subs, ch)
	return ch
}

func (r *Runner) Start(d time.Duration) {
	r.timer.Start(d)
	log.Printf("Таймер %q запущен на %s", r.timer.Name(), d)
	r.ensureTicking()
}

func (r *Runner) Pause() {
	r.timer.Pause()
	r.stopTicking()
}

func (r *Runner) Resume() bool {
	if !r.timer.Resume() {
		return false
	}
	r.ensureTicking()
	return true
}

func (r *Runner) Reset() {
	r.timer.Reset()
	r.stopTicking()
}

// Wake ticks immediately, e.g. when the app comes back to the foreground.
func (r *Runner) Wake() Snapshot {
	snap, done := r.timer.Tick()
	r.publish(done)
	if !snap.Running {
		r.stopTicking()
	}
	return snap
}

func (r *Runner) Snapshot() Snapshot {
	return r.timer.Snapshot()
}

// Ticking reports whether the tick loop is live.
func (r *Runner) Ticking() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done != nil
}

// Close stops ticking and closes all subscriber channels.
func (r *Runner) Close() {
	r.stopTicking()

	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for _, ch := range r.subs {
		close(ch)
	}
	r.subs = nil
}

func (r *Runner) ensureTicking() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done != nil || !r.timer.Running() {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done
	go r.loop(ctx, done)
}

func (r *Runner) stopTicking() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, completion := r.timer.Tick()
			r.publish(completion)
			if snap.Running {
				continue
			}
			if r.release(done) {
				return
			}
		}
	}
}

// release hands the loop slot back if the timer is still stopped. A Start
// that raced with the last tick keeps the loop alive instead.
func (r *Runner) release(done chan struct{}) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done != done {
		// stopTicking already owns the shutdown
		return true
	}
	if r.timer.Running() {
		return false
	}
	r.cancel()
	r.cancel, r.done = nil, nil
	return true
}

func (r *Runner) publish(c *Completion) {
	if c == nil {
		return
	}
	log.Printf("Таймер %q завершен", c.Name)

	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	for _, ch := range r.subs {
		select {
		case ch <- *c:
		default:
			log.Printf("ВНИМАНИЕ: подписчик не успевает читать события таймера")
		}
	}
}
