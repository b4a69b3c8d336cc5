// Package types defines the type descriptors the codec resolves handlers
// from.
//
// A Descriptor is a tagged variant built once per reflect.Type. Element and
// key types are kept as reflect.Type rather than nested descriptors, so
// self-referential Go types describe without recursion; the codec resolves
// nested handlers lazily.
//
// # Key Types
//
//   - Descriptor: variant tag plus the Go types it needs
//   - Kind: the variant discriminator (scalar, array, list, map, ...)
//
// This package is internal to the codec.
package types
