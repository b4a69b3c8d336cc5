package collections

import (
	"slices"
	"sync"
)

// OrderedSet is a hash set that remembers insertion order.
type OrderedSet struct {
	index map[any]struct{}
	items []any
}

// NewOrderedSet returns a set holding vs.
func NewOrderedSet(vs ...any) *OrderedSet {
	s := &OrderedSet{}
	for _, v := range vs {
		s.Append(v)
	}
	return s
}

func (s *OrderedSet) Len() int { return len(s.items) }

func (s *OrderedSet) Append(v any) {
	k := hashKey(v)
	if _, ok := s.index[k]; ok {
		return
	}
	if s.index == nil {
		s.index = make(map[any]struct{})
	}
	s.index[k] = struct{}{}
	s.items = append(s.items, v)
}

func (s *OrderedSet) Contains(v any) bool {
	_, ok := s.index[hashKey(v)]
	return ok
}

func (s *OrderedSet) Range(fn func(v any) bool) {
	for _, v := range s.items {
		if !fn(v) {
			return
		}
	}
}

// SortedSet is a set whose elements are kept in Compare order.
type SortedSet struct {
	items []any
}

func (s *SortedSet) search(v any) (int, bool) {
	return slices.BinarySearchFunc(s.items, v, Compare)
}

func (s *SortedSet) Len() int { return len(s.items) }

func (s *SortedSet) Append(v any) {
	i, found := s.search(v)
	if found {
		return
	}
	s.items = slices.Insert(s.items, i, v)
}

func (s *SortedSet) Contains(v any) bool {
	_, found := s.search(v)
	return found
}

func (s *SortedSet) Range(fn func(v any) bool) {
	for _, v := range s.items {
		if !fn(v) {
			return
		}
	}
}

// SyncSet is an OrderedSet safe for concurrent use.
type SyncSet struct {
	mu sync.Mutex
	s  OrderedSet
}

func (s *SyncSet) Snapshot() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.s.items...)
}

func (s *SyncSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.s.Len()
}

func (s *SyncSet) Append(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s.Append(v)
}

func (s *SyncSet) Contains(v any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.s.Contains(v)
}

// Range iterates over a snapshot, so fn may call back into s.
func (s *SyncSet) Range(fn func(v any) bool) {
	for _, v := range s.Snapshot() {
		if !fn(v) {
			return
		}
	}
}
