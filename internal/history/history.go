// Package history keeps the list of submitted calculations, newest first.
package history

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"kitchencalc/internal/storage"
)

const (
	StorageKey = "calc_history_v1"
	MaxEntries = 20
)

type Entry struct {
	ID         string `json:"id"`
	Expression string `json:"expression"`
	Result     string `json:"result"`
	Timestamp  int64  `json:"timestamp"`
}

// Ledger owns the entries in memory and mirrors every change to the store.
// Saves are fire-and-forget: errors are logged, never returned.
type Ledger struct {
	kv storage.KV

	mu      sync.Mutex
	entries []Entry
	version int

	saveMu  sync.Mutex
	written int
	pending sync.WaitGroup

	now   func() time.Time
	newID func() string
}

func NewLedger(kv storage.KV) *Ledger {
	return &Ledger{
		kv:    kv,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// Load читает историю из хранилища. Отсутствующие или поврежденные данные
// дают пустой список.
func (l *Ledger) Load(ctx context.Context) []Entry {
	var entries []Entry

	raw, ok, err := l.kv.Get(ctx, StorageKey)
	switch {
	case err != nil:
		log.Printf("Ошибка загрузки истории: %v", err)
	case !ok:
	default:
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			log.Printf("История повреждена, начинаем с пустой: %v", err)
			entries = nil
		}
	}

	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()

	return l.Entries()
}

// Append creates an entry for a successful submission and stores it on top.
func (l *Ledger) Append(expression, result string) Entry {
	entry := Entry{
		ID:         l.newID(),
		Expression: expression,
		Result:     result,
		Timestamp:  l.now().UnixMilli(),
	}
	l.AppendEntry(entry)
	return entry
}

func (l *Ledger) AppendEntry(entry Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]Entry, 0, len(l.entries)+1)
	entries = append(entries, entry)
	entries = append(entries, l.entries...)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	l.entries = entries
	l.saveLocked()
}

// Remove deletes the entry with the given id and reports whether it existed.
func (l *Ledger) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, e := range l.entries {
		if e.ID == id {
			l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			l.saveLocked()
			return true
		}
	}
	return false
}

// ClearAll is destructive; asking the user is up to the caller.
func (l *Ledger) ClearAll() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
	l.saveLocked()
}

func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Flush waits for saves already started.
func (l *Ledger) Flush() {
	l.pending.Wait()
}

// вызывается под l.mu
func (l *Ledger) saveLocked() {
	entries := l.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		log.Printf("Ошибка сериализации истории: %v", err)
		return
	}

	l.version++
	version := l.version

	l.pending.Add(1)
	go func() {
		defer l.pending.Done()

		l.saveMu.Lock()
		defer l.saveMu.Unlock()

		// более новая версия уже записана
		if version < l.written {
			return
		}
		if err := l.kv.Set(context.Background(), StorageKey, string(data)); err != nil {
			log.Printf("Ошибка сохранения истории: %v", err)
			return
		}
		l.written = version
	}()
}
