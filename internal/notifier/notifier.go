// Package notifier reacts to finished timers: it rings once and shows the
// timer name for a bounded window.
package notifier

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"kitchencalc/internal/timer"
)

const (
	DisplayWindow = 12 * time.Second
	PulsePeriod   = 1200 * time.Millisecond
	FallbackLabel = "Timer"
)

type Overlay struct {
	Visible   bool      `json:"visible"`
	Label     string    `json:"label"`
	ShownAt   time.Time `json:"shownAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type scheduleFunc func(d time.Duration, f func()) (stop func() bool)

func afterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

type Option func(*Notifier)

func WithClock(c timer.Clock) Option {
	return func(n *Notifier) { n.clock = c }
}

func WithWindow(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.window = d
		}
	}
}

// Notifier shows at most one overlay; a newer completion replaces the label
// and restarts the window.
type Notifier struct {
	chime    *Chime
	clock    timer.Clock
	window   time.Duration
	schedule scheduleFunc

	mu      sync.Mutex
	overlay Overlay
	gen     int
	stop    func() bool
}

func New(chime *Chime, opts ...Option) *Notifier {
	n := &Notifier{
		chime:    chime,
		clock:    timer.SystemClock,
		window:   DisplayWindow,
		schedule: afterFunc,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify shows the overlay and rings the chime.
func (n *Notifier) Notify(ctx context.Context, c timer.Completion) {
	label := strings.TrimSpace(c.Name)
	if label == "" {
		label = FallbackLabel
	}

	n.mu.Lock()
	n.cancelLocked()
	n.gen++
	gen := n.gen
	now := n.clock.Now()
	n.overlay = Overlay{
		Visible:   true,
		Label:     label,
		ShownAt:   now,
		ExpiresAt: now.Add(n.window),
	}
	n.stop = n.schedule(n.window, func() { n.expire(gen) })
	n.mu.Unlock()

	if n.chime != nil {
		n.chime.Ring(ctx)
	}
}

// Dismiss hides the overlay and cancels the pending auto-dismiss.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.cancelLocked()
	n.gen++
	n.overlay.Visible = false
}

func (n *Notifier) Overlay() Overlay {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.overlay
}

// Pulse returns the overlay opacity in [0, 1] at the given moment.
func (n *Notifier) Pulse(now time.Time) float64 {
	o := n.Overlay()
	if !o.Visible {
		return 0
	}
	elapsed := now.Sub(o.ShownAt)
	if elapsed < 0 {
		elapsed = 0
	}
	phase := float64(elapsed%PulsePeriod) / float64(PulsePeriod)
	return 0.5 + 0.5*math.Cos(2*math.Pi*phase)
}

// Listen consumes completions until ctx is done or the channel is closed.
func (n *Notifier) Listen(ctx context.Context, events <-chan timer.Completion) {
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-events:
			if !ok {
				return
			}
			n.Notify(ctx, c)
		}
	}
}

func (n *Notifier) expire(gen int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	// устаревший таймер скрытия
	if gen != n.gen {
		return
	}
	n.overlay.Visible = false
	n.stop = nil
}

func (n *Notifier) cancelLocked() {
	if n.stop != nil {
		n.stop()
		n.stop = nil
	}
}
