package collections

import (
	"container/list"
	"sync"
)

// List is a growable array.
type List struct {
	items []any
}

// NewList returns a List holding vs.
func NewList(vs ...any) *List {
	return &List{items: append([]any(nil), vs...)}
}

func (l *List) Len() int { return len(l.items) }

func (l *List) Append(v any) { l.items = append(l.items, v) }

func (l *List) Range(fn func(v any) bool) {
	for _, v := range l.items {
		if !fn(v) {
			return
		}
	}
}

// At returns the element at index i.
func (l *List) At(i int) any { return l.items[i] }

// Slice returns a copy of the elements.
func (l *List) Slice() []any { return append([]any(nil), l.items...) }

// LinkedList is a doubly linked list.
type LinkedList struct {
	l *list.List
}

func (ll *LinkedList) init() {
	if ll.l == nil {
		ll.l = list.New()
	}
}

func (ll *LinkedList) Len() int {
	if ll.l == nil {
		return 0
	}
	return ll.l.Len()
}

func (ll *LinkedList) Append(v any) {
	ll.init()
	ll.l.PushBack(v)
}

func (ll *LinkedList) PushFront(v any) {
	ll.init()
	ll.l.PushFront(v)
}

func (ll *LinkedList) Range(fn func(v any) bool) {
	if ll.l == nil {
		return
	}
	for e := ll.l.Front(); e != nil; e = e.Next() {
		if !fn(e.Value) {
			return
		}
	}
}

// SyncList is a List safe for concurrent use.
type SyncList struct {
	mu sync.Mutex
	l  List
}

func (s *SyncList) Snapshot() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.l.Slice()
}

func (s *SyncList) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.l.Len()
}

func (s *SyncList) Append(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.l.Append(v)
}

// Range iterates over a snapshot, so fn may call back into s.
func (s *SyncList) Range(fn func(v any) bool) {
	for _, v := range s.Snapshot() {
		if !fn(v) {
			return
		}
	}
}
