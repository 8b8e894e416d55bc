package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"kitchencalc/internal/storage"
)

type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}
func (failingKV) Set(context.Context, string, string) error { return errors.New("disk on fire") }
func (failingKV) Remove(context.Context, string) error      { return errors.New("disk on fire") }

func newTestLedger(kv storage.KV) *Ledger {
	l := NewLedger(kv)
	n := 0
	l.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	l.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return l
}

func TestAppendNewestFirstAndCap(t *testing.T) {
	l := newTestLedger(storage.NewMemory())

	for i := 1; i <= MaxEntries+1; i++ {
		l.Append(fmt.Sprintf("%d+0", i), fmt.Sprint(i))
	}

	entries := l.Entries()
	require.Len(t, entries, MaxEntries)
	assert.Equal(t, "21+0", entries[0].Expression)
	assert.Equal(t, "2+0", entries[MaxEntries-1].Expression, "the oldest entry is evicted")
	assert.Equal(t, int64(1_700_000_000_000), entries[0].Timestamp)
}

func TestRemoveAndClearAll(t *testing.T) {
	l := newTestLedger(storage.NewMemory())
	l.Append("1+1", "2")
	second := l.Append("2+2", "4")
	l.Append("3+3", "6")

	assert.True(t, l.Remove(second.ID))
	assert.False(t, l.Remove(second.ID))
	assert.False(t, l.Remove("unknown"))

	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "3+3", entries[0].Expression)
	assert.Equal(t, "1+1", entries[1].Expression)

	l.ClearAll()
	assert.Empty(t, l.Entries())
}

func TestPersistAndReload(t *testing.T) {
	kv := storage.NewMemory()
	l := newTestLedger(kv)
	l.Append("2+2", "4")
	l.Append("Ans*10", "40")
	l.Flush()

	reloaded := NewLedger(kv).Load(context.Background())
	require.Len(t, reloaded, 2)
	assert.Equal(t, Entry{ID: "id-2", Expression: "Ans*10", Result: "40", Timestamp: 1_700_000_000_000}, reloaded[0])

	l.ClearAll()
	l.Flush()
	raw, ok, err := kv.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", raw)
}

func TestLoadToleratesBadStorage(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(context.Background(), StorageKey, "{not json"))
	assert.Empty(t, NewLedger(kv).Load(context.Background()))

	assert.Empty(t, NewLedger(storage.NewMemory()).Load(context.Background()))

	l := newTestLedger(failingKV{})
	assert.Empty(t, l.Load(context.Background()))

	// ошибки сохранения проглатываются
	l.Append("1+1", "2")
	l.Flush()
	assert.Equal(t, 1, l.Len())
}

func TestLastWriteWins(t *testing.T) {
	kv := storage.NewMemory()
	l := newTestLedger(kv)
	for i := 0; i < 50; i++ {
		l.Append("1", "1")
	}
	l.Flush()

	reloaded := NewLedger(kv).Load(context.Background())
	assert.Len(t, reloaded, MaxEntries)
	assert.Equal(t, "id-50", reloaded[0].ID)
}

func TestCapProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		l := newTestLedger(storage.NewMemory())
		n := rapid.IntRange(0, 60).Draw(rt, "n")
		for i := 0; i < n; i++ {
			l.Append(fmt.Sprint(i), fmt.Sprint(i))
		}
		l.Flush()

		entries := l.Entries()
		want := n
		if want > MaxEntries {
			want = MaxEntries
		}
		if len(entries) != want {
			rt.Fatalf("len = %d, want %d", len(entries), want)
		}
		for i, e := range entries {
			if e.Expression != fmt.Sprint(n-1-i) {
				rt.Fatalf("entry %d = %q, want %q", i, e.Expression, fmt.Sprint(n-1-i))
			}
		}
	})
}
