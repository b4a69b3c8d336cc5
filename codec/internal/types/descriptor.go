package types

import (
	"reflect"
	"strconv"
)

// Descriptor describes a static Go type for handler resolution.
type Descriptor struct {
	// GoType is the raw identity the descriptor was built from.
	GoType reflect.Type
	// Elem is the element type of arrays, lists and pointers, and the value
	// type of maps.
	Elem reflect.Type
	// Key is the key type of maps.
	Key reflect.Type
	// Bound is the interface an unresolved value must satisfy.
	Bound reflect.Type
	// Len is the fixed length of arrays.
	Len  int
	Kind Kind
	// Set marks a list backed by a map[T]struct{}.
	Set bool
}

// Scalar describes a scalar type.
func Scalar(t reflect.Type) *Descriptor {
	return &Descriptor{Kind: KindScalar, GoType: t}
}

// Array describes a fixed-length array.
func Array(t reflect.Type) *Descriptor {
	return &Descriptor{Kind: KindArray, GoType: t, Elem: t.Elem(), Len: t.Len()}
}

// List describes a growable sequence with elements of type elem.
func List(t, elem reflect.Type) *Descriptor {
	return &Descriptor{Kind: KindList, GoType: t, Elem: elem}
}

// Map describes a key/value container.
func Map(t, key, value reflect.Type) *Descriptor {
	return &Descriptor{Kind: KindMap, GoType: t, Key: key, Elem: value}
}

// Unresolved describes a value known only by the interface it satisfies.
func Unresolved(bound reflect.Type) *Descriptor {
	return &Descriptor{Kind: KindUnresolved, GoType: bound, Bound: bound}
}

// Of describes a type whose variant needs no extra type information.
func Of(kind Kind, t reflect.Type) *Descriptor {
	return &Descriptor{Kind: kind, GoType: t}
}

// IsUntyped reports whether the descriptor places no constraint on values.
func (d *Descriptor) IsUntyped() bool {
	return d.Kind == KindUnresolved && d.Bound.NumMethod() == 0
}

func (d *Descriptor) String() string {
	name := "<nil>"
	if d.GoType != nil {
		name = d.GoType.String()
	}
	switch d.Kind {
	case KindArray:
		return "array[" + strconv.Itoa(d.Len) + "]<" + typeName(d.Elem) + ">"
	case KindList:
		if d.Set {
			return "set<" + typeName(d.Elem) + ">"
		}
		return "list<" + typeName(d.Elem) + ">"
	case KindMap:
		return "map<" + typeName(d.Key) + "," + typeName(d.Elem) + ">"
	case KindPointer:
		return "pointer<" + typeName(d.Elem) + ">"
	default:
		return d.Kind.String() + "(" + name + ")"
	}
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "any"
	}
	return t.String()
}
