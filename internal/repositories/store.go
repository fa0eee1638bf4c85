package repositories

import (
	"sort"
	"sync"
)

// Store is a mutex-guarded keyed store. Values are cloned on the way in and out,
// so no caller ever holds a reference to the canonical instance.
type Store[T any] struct {
	mu    sync.Mutex
	items map[int]T
	clone func(T) T
}

// NewStore returns an empty store. clone must return an independent copy of its argument.
func NewStore[T any](clone func(T) T) *Store[T] {
	return &Store[T]{items: make(map[int]T), clone: clone}
}

func (s *Store[T]) FindByID(id int) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	return s.clone(v), true
}

// Save upserts v under id.
func (s *Store[T]) Save(id int, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = s.clone(v)
}

// All returns a snapshot of every value, ordered by key.
func (s *Store[T]) All() []T {
	return s.filter(func(T) bool { return true })
}

func (s *Store[T]) Remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// filter returns clones of the values matching keep, ordered by key.
func (s *Store[T]) filter(keep func(T) bool) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(s.items))
	for id, v := range s.items {
		if keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.clone(s.items[id]))
	}
	return out
}

// locked runs fn with the store lock held and direct access to the map.
func (s *Store[T]) locked(fn func(items map[int]T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.items)
}
