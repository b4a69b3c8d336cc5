package collections

import (
	"slices"
	"sync"
	"sync/atomic"
)

type entry struct {
	key   any
	value any
}

// OrderedMap is a hash map that remembers key insertion order. Replacing
// the value of an existing key keeps its position.
type OrderedMap struct {
	index   map[any]int
	entries []entry
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{}
}

func (m *OrderedMap) Len() int { return len(m.entries) }

func (m *OrderedMap) Get(k any) (any, bool) {
	i, ok := m.index[hashKey(k)]
	if !ok {
		return nil, false
	}
	return m.entries[i].value, true
}

func (m *OrderedMap) Put(k, v any) {
	hk := hashKey(k)
	if i, ok := m.index[hk]; ok {
		m.entries[i].value = v
		return
	}
	if m.index == nil {
		m.index = make(map[any]int)
	}
	m.index[hk] = len(m.entries)
	m.entries = append(m.entries, entry{key: k, value: v})
}

func (m *OrderedMap) Range(fn func(k, v any) bool) {
	for _, e := range m.entries {
		if !fn(e.key, e.value) {
			return
		}
	}
}

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []any {
	keys := make([]any, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.key
	}
	return keys
}

// SortedMap is a map whose entries are kept in Compare order of their keys.
type SortedMap struct {
	entries []entry
}

func (m *SortedMap) search(k any) (int, bool) {
	return slices.BinarySearchFunc(m.entries, k, func(e entry, k any) int {
		return Compare(e.key, k)
	})
}

func (m *SortedMap) Len() int { return len(m.entries) }

func (m *SortedMap) Get(k any) (any, bool) {
	if i, ok := m.search(k); ok {
		return m.entries[i].value, true
	}
	return nil, false
}

func (m *SortedMap) Put(k, v any) {
	i, ok := m.search(k)
	if ok {
		m.entries[i].value = v
		return
	}
	m.entries = slices.Insert(m.entries, i, entry{key: k, value: v})
}

func (m *SortedMap) Range(fn func(k, v any) bool) {
	for _, e := range m.entries {
		if !fn(e.key, e.value) {
			return
		}
	}
}

// HashMap is an unordered map. Range order is unspecified.
type HashMap struct {
	m map[any]entry
}

func (m *HashMap) Len() int { return len(m.m) }

func (m *HashMap) Get(k any) (any, bool) {
	e, ok := m.m[hashKey(k)]
	return e.value, ok
}

func (m *HashMap) Put(k, v any) {
	if m.m == nil {
		m.m = make(map[any]entry)
	}
	m.m[hashKey(k)] = entry{key: k, value: v}
}

func (m *HashMap) Range(fn func(k, v any) bool) {
	for _, e := range m.m {
		if !fn(e.key, e.value) {
			return
		}
	}
}

// SyncMap is a sync.Map that also tracks its length.
type SyncMap struct {
	m sync.Map
	n atomic.Int64
}

func (m *SyncMap) Len() int { return int(m.n.Load()) }

func (m *SyncMap) Get(k any) (any, bool) {
	e, ok := m.m.Load(hashKey(k))
	if !ok {
		return nil, false
	}
	return e.(entry).value, true
}

func (m *SyncMap) Put(k, v any) {
	if _, loaded := m.m.Swap(hashKey(k), entry{key: k, value: v}); !loaded {
		m.n.Add(1)
	}
}

func (m *SyncMap) LoadOrStore(k, v any) (any, bool) {
	e, loaded := m.m.LoadOrStore(hashKey(k), entry{key: k, value: v})
	if !loaded {
		m.n.Add(1)
	}
	return e.(entry).value, loaded
}

func (m *SyncMap) Range(fn func(k, v any) bool) {
	m.m.Range(func(_, e any) bool {
		en := e.(entry)
		return fn(en.key, en.value)
	})
}
