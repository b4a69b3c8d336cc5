package collections

import (
	"cmp"
	"fmt"
	"reflect"
)

// Sequence is an ordered, growable container.
type Sequence interface {
	Len() int
	Append(v any)
	// Range calls fn for each element in order until fn returns false.
	Range(fn func(v any) bool)
}

// Set is a Sequence that holds each element at most once.
type Set interface {
	Sequence
	Contains(v any) bool
}

// Deque is a Sequence that can also grow at the front.
type Deque interface {
	Sequence
	PushFront(v any)
}

// ConcurrentSequence is a Sequence safe for concurrent use.
type ConcurrentSequence interface {
	Sequence
	// Snapshot copies the elements under the container's lock.
	Snapshot() []any
}

// ConcurrentSet is a Set safe for concurrent use.
type ConcurrentSet interface {
	Set
	Snapshot() []any
}

// Map associates keys with values.
type Map interface {
	Len() int
	Get(k any) (any, bool)
	Put(k, v any)
	// Range calls fn for each entry until fn returns false.
	Range(fn func(k, v any) bool)
}

// ConcurrentMap is a Map safe for concurrent use.
type ConcurrentMap interface {
	Map
	LoadOrStore(k, v any) (actual any, loaded bool)
}

// Slice copies the elements of s into a new slice.
func Slice(s Sequence) []any {
	out := make([]any, 0, s.Len())
	s.Range(func(v any) bool {
		out = append(out, v)
		return true
	})
	return out
}

// hashKey returns a value usable as a Go map key that identifies v.
// Non-comparable values (decoded objects and arrays) are keyed by their
// printed form.
func hashKey(v any) any {
	if v == nil {
		return nil
	}
	if reflect.TypeOf(v).Comparable() {
		return v
	}
	return printedKey(fmt.Sprintf("%T:%v", v, v))
}

type printedKey string

// Compare orders two untyped values: nil, then booleans, then numbers, then
// strings, then everything else by printed form. Numbers of different Go
// types compare by value.
func Compare(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case 0:
		return 0
	case 1:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case 2:
		return cmp.Compare(toFloat(a), toFloat(b))
	case 3:
		return cmp.Compare(reflect.ValueOf(a).String(), reflect.ValueOf(b).String())
	default:
		return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

func rank(v any) int {
	if v == nil {
		return 0
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool:
		return 1
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return 2
	case reflect.String:
		return 3
	default:
		return 4
	}
}

func toFloat(v any) float64 {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	default:
		return rv.Float()
	}
}
