// Package memstore is an in-memory store.Store. Entities live in id-indexed
// maps; the category tree is resolved through parent ids and cascades are
// explicit traversals.
package memstore

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/store"
)

type arena struct {
	seq        int64
	countries  map[int64]*domain.Country
	modules    map[int64]*domain.Module
	categories map[int64]*domain.Category
	values     map[int64]*domain.PriceValue
	designs    map[int64]*domain.PriceDesign // by country id
	gens       map[int64]*domain.PriceGen
	genValues  map[int64][]domain.PriceGenValue // by price gen id
	rates      map[string]float64
	marker     *time.Time
}

func newArena() *arena {
	return &arena{
		countries:  make(map[int64]*domain.Country),
		modules:    make(map[int64]*domain.Module),
		categories: make(map[int64]*domain.Category),
		values:     make(map[int64]*domain.PriceValue),
		designs:    make(map[int64]*domain.PriceDesign),
		gens:       make(map[int64]*domain.PriceGen),
		genValues:  make(map[int64][]domain.PriceGenValue),
		rates:      make(map[string]float64),
	}
}

func cloneMap[K comparable, V any](m map[K]*V) map[K]*V {
	out := make(map[K]*V, len(m))
	for k, v := range m {
		c := *v
		out[k] = &c
	}
	return out
}

func (a *arena) clone() *arena {
	c := &arena{
		seq:        a.seq,
		countries:  cloneMap(a.countries),
		modules:    cloneMap(a.modules),
		categories: cloneMap(a.categories),
		values:     cloneMap(a.values),
		designs:    cloneMap(a.designs),
		gens:       cloneMap(a.gens),
		genValues:  make(map[int64][]domain.PriceGenValue, len(a.genValues)),
		rates:      maps.Clone(a.rates),
	}
	for k, v := range a.genValues {
		c.genValues[k] = slices.Clone(v)
	}
	if a.marker != nil {
		m := *a.marker
		c.marker = &m
	}
	return c
}

func (a *arena) nextID() int64 {
	a.seq++
	return a.seq
}

// Store is safe for concurrent use. Writes and transactions are serialized;
// reads never observe an uncommitted transaction.
type Store struct {
	mu      sync.RWMutex
	writeMu sync.Mutex
	data    *arena
}

func New() *Store {
	return &Store{data: newArena()}
}

func (s *Store) read(fn func(a *arena)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

func (s *Store) write(fn func(a *arena) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// InTx runs fn against a private copy of the arena and swaps it in on success.
func (s *Store) InTx(ctx context.Context, fn func(store.Store) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	tx := &Store{data: s.data.clone()}
	s.mu.RUnlock()

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = tx.data
	s.mu.Unlock()
	return nil
}

func copyOf[T any](v *T) *T {
	c := *v
	return &c
}

func sortedByID[T any](m map[int64]*T, keep func(*T) bool) []*T {
	ids := slices.Sorted(maps.Keys(m))
	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		if keep == nil || keep(m[id]) {
			out = append(out, copyOf(m[id]))
		}
	}
	return out
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func findOne[T any](m map[int64]*T, match func(*T) bool) *T {
	for _, v := range m {
		if match(v) {
			return v
		}
	}
	return nil
}

var _ store.Store = (*Store)(nil)

func byName[T any](name func(*T) string) func(a, b *T) int {
	return func(a, b *T) int { return cmp.Compare(name(a), name(b)) }
}
