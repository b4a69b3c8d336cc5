// Package collections provides the concrete containers the codec
// instantiates when a value is declared with an interface type.
//
// Elements, keys and values are untyped (any). Every container has a usable
// zero value, so the codec can allocate one with reflect.New.
//
// # Interfaces
//
//   - Sequence: ordered, growable; implemented by every container here except the maps
//   - Set: a Sequence that ignores duplicates
//   - Map: key/value association
//   - Deque, ConcurrentSequence, ConcurrentSet, ConcurrentMap: narrower
//     capabilities that steer interface substitution to a specific container
//
// # Implementations
//
//	List        growable array
//	LinkedList  doubly linked list (also a Deque)
//	SyncList    List guarded by a mutex
//	OrderedSet  insertion-ordered hash set
//	SortedSet   set kept in Compare order
//	SyncSet     OrderedSet guarded by a mutex
//	OrderedMap  insertion-ordered hash map
//	SortedMap   map kept in Compare key order
//	HashMap     unordered hash map
//	SyncMap     sync.Map with a length counter
package collections
