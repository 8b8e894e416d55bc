package convert

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"kitchencalc/internal/storage"
)

const overridePrefix = "ovr_"

// OverrideKey is the storage key for a user override of an ingredient.
func OverrideKey(id string) string {
	return overridePrefix + NormalizeID(id)
}

// Override holds user-corrected factors; nil fields keep the catalog value.
type Override struct {
	GramsPerTbsp  *float64 `json:"gramsPerTbsp,omitempty"`
	GramsPerTsp   *float64 `json:"gramsPerTsp,omitempty"`
	GramsPerPiece *float64 `json:"gramsPerPiece,omitempty"`
	PeeledYield   *float64 `json:"peeledYield,omitempty"`
}

func (o Override) Empty() bool {
	return o.GramsPerTbsp == nil && o.GramsPerTsp == nil && o.GramsPerPiece == nil && o.PeeledYield == nil
}

// Apply merges the set fields into ing.
func (o Override) Apply(ing Ingredient) Ingredient {
	if o.GramsPerTbsp != nil {
		ing.GramsPerTbsp = *o.GramsPerTbsp
	}
	if o.GramsPerTsp != nil {
		ing.GramsPerTsp = *o.GramsPerTsp
	}
	if o.GramsPerPiece != nil {
		ing.GramsPerPiece = *o.GramsPerPiece
	}
	if o.PeeledYield != nil {
		ing.PeeledYield = *o.PeeledYield
	}
	return ing
}

// OverrideStore caches overrides in memory and mirrors changes to the store
// in the background; write failures are only logged.
type OverrideStore struct {
	kv storage.KV

	mu      sync.Mutex
	cache   map[string]*Override // nil value: known to be absent
	version int

	saveMu  sync.Mutex
	written map[string]int
	pending sync.WaitGroup
}

func NewOverrideStore(kv storage.KV) *OverrideStore {
	return &OverrideStore{
		kv:      kv,
		cache:   make(map[string]*Override),
		written: make(map[string]int),
	}
}

// Get returns the override for id. Missing or corrupt values read as absent.
func (s *OverrideStore) Get(ctx context.Context, id string) (Override, bool) {
	key := OverrideKey(id)

	s.mu.Lock()
	if o, ok := s.cache[key]; ok {
		s.mu.Unlock()
		if o == nil {
			return Override{}, false
		}
		return *o, true
	}
	s.mu.Unlock()

	var loaded *Override
	raw, ok, err := s.kv.Get(ctx, key)
	switch {
	case err != nil:
		log.Printf("Ошибка загрузки поправки %s: %v", key, err)
		return Override{}, false
	case ok:
		var o Override
		if err := json.Unmarshal([]byte(raw), &o); err != nil {
			log.Printf("Поправка %s повреждена: %v", key, err)
		} else if !o.Empty() {
			loaded = &o
		}
	}

	s.mu.Lock()
	// Set мог успеть раньше нас
	if o, ok := s.cache[key]; ok {
		loaded = o
	} else {
		s.cache[key] = loaded
	}
	s.mu.Unlock()

	if loaded == nil {
		return Override{}, false
	}
	return *loaded, true
}

func (s *OverrideStore) Set(id string, o Override) {
	if o.Empty() {
		s.Remove(id)
		return
	}
	key := OverrideKey(id)

	data, err := json.Marshal(o)
	if err != nil {
		log.Printf("Ошибка сериализации поправки %s: %v", key, err)
		return
	}

	s.mu.Lock()
	s.cache[key] = &o
	s.version++
	version := s.version
	s.mu.Unlock()

	s.save(key, version, func(ctx context.Context) error {
		return s.kv.Set(ctx, key, string(data))
	})
}

func (s *OverrideStore) Remove(id string) {
	key := OverrideKey(id)

	s.mu.Lock()
	s.cache[key] = nil
	s.version++
	version := s.version
	s.mu.Unlock()

	s.save(key, version, func(ctx context.Context) error {
		return s.kv.Remove(ctx, key)
	})
}

// Resolve returns the catalog entry with its override applied.
func (s *OverrideStore) Resolve(ctx context.Context, c *Catalog, id string) (Ingredient, error) {
	ing, err := c.Get(id)
	if err != nil {
		return Ingredient{}, err
	}
	if o, ok := s.Get(ctx, id); ok {
		ing = o.Apply(ing)
	}
	return ing, nil
}

// Flush waits for saves already started.
func (s *OverrideStore) Flush() {
	s.pending.Wait()
}

func (s *OverrideStore) save(key string, version int, write func(context.Context) error) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		s.saveMu.Lock()
		defer s.saveMu.Unlock()

		if version < s.written[key] {
			return
		}
		if err := write(context.Background()); err != nil {
			log.Printf("Ошибка сохранения поправки %s: %v", key, err)
			return
		}
		s.written[key] = version
	}()
}
