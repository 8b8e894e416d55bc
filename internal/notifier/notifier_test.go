package notifier

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchencalc/internal/timer"
)

type fakeAudio struct {
	prepares atomic.Int32
	plays    atomic.Int32
	unloads  atomic.Int32
	delay    time.Duration
	failures atomic.Int32 // how many prepares fail before succeeding
}

func (f *fakeAudio) Prepare(context.Context) error {
	f.prepares.Add(1)
	time.Sleep(f.delay)
	if f.failures.Load() > 0 {
		f.failures.Add(-1)
		return errors.New("asset missing")
	}
	return nil
}

func (f *fakeAudio) Play() error {
	f.plays.Add(1)
	return nil
}

func (f *fakeAudio) Unload() error {
	f.unloads.Add(1)
	return nil
}

type fakeScheduler struct {
	mu      sync.Mutex
	pending []*scheduled
}

type scheduled struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (s *fakeScheduler) schedule(d time.Duration, f func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := &scheduled{d: d, f: f}
	s.pending = append(s.pending, item)
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		was := !item.stopped
		item.stopped = true
		return was
	}
}

// fireAll runs every callback, including stopped ones, to prove that a
// superseded dismiss has no effect even if it fires late.
func (s *fakeScheduler) fireAll() {
	s.mu.Lock()
	items := append([]*scheduled(nil), s.pending...)
	s.mu.Unlock()
	for _, item := range items {
		item.f()
	}
}

var epoch = time.Date(2026, 10, 17, 18, 30, 0, 0, time.UTC)

func newTestNotifier(audio Audio) (*Notifier, *fakeScheduler, *timer.ManualClock) {
	clock := timer.NewManualClock(epoch)
	sched := &fakeScheduler{}
	n := New(NewChime(audio), WithClock(clock))
	n.schedule = sched.schedule
	return n, sched, clock
}

func TestNotifyShowsLabelAndRings(t *testing.T) {
	audio := &fakeAudio{}
	n, sched, _ := newTestNotifier(audio)

	n.Notify(context.Background(), timer.Completion{Name: "Eggs"})

	o := n.Overlay()
	assert.True(t, o.Visible)
	assert.Equal(t, "Eggs", o.Label)
	assert.Equal(t, epoch.Add(DisplayWindow), o.ExpiresAt)
	require.Len(t, sched.pending, 1)
	assert.Equal(t, DisplayWindow, sched.pending[0].d)
	assert.Equal(t, int32(1), audio.prepares.Load())
	assert.Equal(t, int32(1), audio.plays.Load())

	sched.fireAll()
	assert.False(t, n.Overlay().Visible, "auto-dismiss after the window")
}

func TestFallbackLabel(t *testing.T) {
	n, _, _ := newTestNotifier(&fakeAudio{})
	n.Notify(context.Background(), timer.Completion{Name: "   "})
	assert.Equal(t, FallbackLabel, n.Overlay().Label)
}

func TestDismissCancelsAutoDismiss(t *testing.T) {
	n, sched, _ := newTestNotifier(&fakeAudio{})
	n.Notify(context.Background(), timer.Completion{Name: "Rice"})

	n.Dismiss()
	assert.False(t, n.Overlay().Visible)
	assert.True(t, sched.pending[0].stopped)

	n.Notify(context.Background(), timer.Completion{Name: "Tea"})
	sched.pending[0].f() // stale dismiss from the first overlay
	o := n.Overlay()
	assert.True(t, o.Visible)
	assert.Equal(t, "Tea", o.Label)
}

func TestNewCompletionRestartsWindow(t *testing.T) {
	audio := &fakeAudio{}
	n, sched, clock := newTestNotifier(audio)

	n.Notify(context.Background(), timer.Completion{Name: "Pasta"})
	clock.Advance(5 * time.Second)
	n.Notify(context.Background(), timer.Completion{Name: "Sauce"})

	require.Len(t, sched.pending, 2)
	assert.True(t, sched.pending[0].stopped)

	sched.pending[0].f()
	o := n.Overlay()
	assert.True(t, o.Visible)
	assert.Equal(t, "Sauce", o.Label)
	assert.Equal(t, epoch.Add(5*time.Second+DisplayWindow), o.ExpiresAt)

	sched.pending[1].f()
	assert.False(t, n.Overlay().Visible)

	assert.Equal(t, int32(1), audio.prepares.Load(), "prepare is memoized")
	assert.Equal(t, int32(2), audio.plays.Load())
}

func TestPulse(t *testing.T) {
	n, _, _ := newTestNotifier(&fakeAudio{})
	assert.Equal(t, 0.0, n.Pulse(epoch))

	n.Notify(context.Background(), timer.Completion{Name: "x"})
	assert.InDelta(t, 1.0, n.Pulse(epoch), 1e-9)
	assert.InDelta(t, 0.0, n.Pulse(epoch.Add(PulsePeriod/2)), 1e-9)
	assert.InDelta(t, 1.0, n.Pulse(epoch.Add(PulsePeriod)), 1e-9)
}

func TestChimeConcurrentPrepareLoadsOnce(t *testing.T) {
	audio := &fakeAudio{delay: 20 * time.Millisecond}
	chime := NewChime(audio)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			chime.Ring(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), audio.prepares.Load())
	assert.Equal(t, int32(8), audio.plays.Load())
}

func TestChimeRetriesFailedPrepare(t *testing.T) {
	audio := &fakeAudio{}
	audio.failures.Store(1)
	chime := NewChime(audio)

	chime.Play()
	assert.Equal(t, int32(0), audio.plays.Load(), "play before prepare is a no-op")

	chime.Ring(context.Background())
	assert.Equal(t, int32(0), audio.plays.Load(), "failed load is swallowed")

	chime.Ring(context.Background())
	assert.Equal(t, int32(2), audio.prepares.Load())
	assert.Equal(t, int32(1), audio.plays.Load())

	chime.Unload()
	chime.Unload()
	assert.Equal(t, int32(1), audio.unloads.Load())
}

func TestListen(t *testing.T) {
	n, _, _ := newTestNotifier(&fakeAudio{})
	events := make(chan timer.Completion, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		n.Listen(ctx, events)
		close(done)
	}()

	events <- timer.Completion{Name: "Bread"}
	assert.Eventually(t, func() bool { return n.Overlay().Label == "Bread" }, time.Second, 5*time.Millisecond)

	close(events)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Listen did not return after the channel closed")
	}
}

func TestBellPlayer(t *testing.T) {
	var buf bytes.Buffer
	b := NewBellPlayer(&buf)

	require.NoError(t, b.Play())
	assert.Empty(t, buf.String())

	require.NoError(t, b.Prepare(context.Background()))
	require.NoError(t, b.Play())
	assert.Equal(t, "\a", buf.String())

	require.NoError(t, b.Unload())
	require.NoError(t, b.Play())
	assert.Equal(t, "\a", buf.String())
}
