package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func TestCompletionFiresOnce(t *testing.T) {
	clock := NewManualClock(epoch)
	tm := New("Eggs", clock)

	tm.Start(5 * time.Second)
	snap, done := tm.Tick()
	assert.Nil(t, done)
	assert.Equal(t, Running, snap.State)
	assert.Equal(t, int64(5000), snap.RemainingMs)
	require.NotNil(t, snap.DeadlineEpochMs)
	assert.Equal(t, epoch.Add(5*time.Second).UnixMilli(), *snap.DeadlineEpochMs)

	clock.Advance(6 * time.Second)
	snap, done = tm.Tick()
	require.NotNil(t, done)
	assert.Equal(t, "Eggs", done.Name)
	assert.Equal(t, epoch.Add(6*time.Second), done.At)
	assert.Equal(t, int64(0), snap.RemainingMs)
	assert.False(t, snap.Running)
	assert.True(t, snap.HasRung)
	assert.Equal(t, Rung, snap.State)

	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
		_, done = tm.Tick()
		assert.Nil(t, done, "completion is latched")
	}
}

func TestRemainingIsWallClockBased(t *testing.T) {
	clock := NewManualClock(epoch)
	tm := New("", clock)
	tm.Start(10 * time.Second)

	// no ticks while "backgrounded"
	clock.Advance(7*time.Second + 500*time.Millisecond)
	snap, done := tm.Tick()
	assert.Nil(t, done)
	assert.Equal(t, int64(2500), snap.RemainingMs)
}

func TestPauseFreezesRemaining(t *testing.T) {
	clock := NewManualClock(epoch)
	tm := New("Rice", clock)
	tm.Start(10 * time.Second)

	clock.Advance(4 * time.Second)
	tm.Pause()
	snap := tm.Snapshot()
	assert.Equal(t, Paused, snap.State)
	assert.False(t, snap.Running)
	require.NotNil(t, snap.DeadlineEpochMs)

	clock.Advance(time.Hour)
	snap, done := tm.Tick()
	assert.Nil(t, done, "a paused timer never completes")
	assert.Equal(t, int64(6000), snap.RemainingMs)

	// повторная пауза ничего не меняет
	tm.Pause()
	assert.Equal(t, 6*time.Second, tm.Remaining())

	require.True(t, tm.Resume())
	clock.Advance(5 * time.Second)
	snap, done = tm.Tick()
	assert.Nil(t, done)
	assert.Equal(t, int64(1000), snap.RemainingMs)

	clock.Advance(time.Second)
	_, done = tm.Tick()
	require.NotNil(t, done)
	assert.Equal(t, "Rice", done.Name)
}

func TestResumeRequiresPause(t *testing.T) {
	tm := New("", NewManualClock(epoch))
	assert.False(t, tm.Resume())
	tm.Start(time.Second)
	assert.False(t, tm.Resume())
}

func TestRestartBeforeCompletion(t *testing.T) {
	clock := NewManualClock(epoch)
	tm := New("Pasta", clock)

	tm.Start(5 * time.Second)
	clock.Advance(6 * time.Second)
	_, done := tm.Tick()
	require.NotNil(t, done)

	tm.Start(5 * time.Second)
	snap := tm.Snapshot()
	assert.False(t, snap.HasRung)
	assert.True(t, snap.Running)

	clock.Advance(3 * time.Second)
	tm.Start(5 * time.Second)
	clock.Advance(3 * time.Second)
	_, done = tm.Tick()
	assert.Nil(t, done, "restart moved the deadline")

	clock.Advance(2 * time.Second)
	_, done = tm.Tick()
	require.NotNil(t, done, "fresh cycle completes independently")
}

func TestReset(t *testing.T) {
	clock := NewManualClock(epoch)
	tm := New("", clock)
	tm.Start(time.Second)
	tm.Reset()

	snap := tm.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Nil(t, snap.DeadlineEpochMs)
	assert.Equal(t, int64(0), snap.RemainingMs)

	clock.Advance(2 * time.Second)
	_, done := tm.Tick()
	assert.Nil(t, done)
}

func TestStartZeroAndNegative(t *testing.T) {
	tm := New("", NewManualClock(epoch))
	tm.Start(-time.Second)
	_, done := tm.Tick()
	assert.NotNil(t, done)
}
