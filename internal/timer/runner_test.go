package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitCompletion(t *testing.T, ch <-chan Completion) Completion {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no completion received")
	}
	return Completion{}
}

func TestRunnerPublishesOnce(t *testing.T) {
	clock := NewManualClock(epoch)
	r := NewRunner(New("Bread", clock), 5*time.Millisecond)
	defer r.Close()
	events := r.Subscribe()

	r.Start(5 * time.Second)
	assert.True(t, r.Ticking())

	clock.Advance(6 * time.Second)
	c := waitCompletion(t, events)
	assert.Equal(t, "Bread", c.Name)

	assert.Eventually(t, func() bool { return !r.Ticking() }, time.Second, 5*time.Millisecond,
		"the tick loop stops with the timer")

	select {
	case extra := <-events:
		t.Fatalf("unexpected second completion: %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}

	snap := r.Snapshot()
	assert.True(t, snap.HasRung)
	assert.False(t, snap.Running)
}

func TestRunnerPauseStopsTicking(t *testing.T) {
	clock := NewManualClock(epoch)
	r := NewRunner(New("", clock), 5*time.Millisecond)
	defer r.Close()

	r.Start(time.Minute)
	require.True(t, r.Ticking())

	r.Pause()
	assert.False(t, r.Ticking())

	require.True(t, r.Resume())
	assert.True(t, r.Ticking())

	r.Reset()
	assert.False(t, r.Ticking())
	assert.False(t, r.Resume())
	assert.False(t, r.Ticking())
}

func TestRunnerRestartAfterCompletion(t *testing.T) {
	clock := NewManualClock(epoch)
	r := NewRunner(New("Tea", clock), 5*time.Millisecond)
	defer r.Close()
	events := r.Subscribe()

	for i := 0; i < 3; i++ {
		r.Start(time.Second)
		clock.Advance(2 * time.Second)
		waitCompletion(t, events)
	}
}

func TestRunnerWake(t *testing.T) {
	clock := NewManualClock(epoch)
	// interval long enough that only Wake can observe the deadline
	r := NewRunner(New("Soup", clock), time.Hour)
	defer r.Close()
	events := r.Subscribe()

	r.Start(time.Second)
	clock.Advance(time.Minute)
	snap := r.Wake()
	assert.True(t, snap.HasRung)
	assert.False(t, r.Ticking())
	assert.Equal(t, "Soup", waitCompletion(t, events).Name)
}

func TestRunnerCloseClosesSubscribers(t *testing.T) {
	r := NewRunner(New("", NewManualClock(epoch)), time.Millisecond)
	ch := r.Subscribe()
	r.Close()
	_, ok := <-ch
	assert.False(t, ok)

	late := r.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}
