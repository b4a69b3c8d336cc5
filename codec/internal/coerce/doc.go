// Package coerce narrows decoded numbers to fixed-width Go numeric kinds.
//
// Every function range-checks before narrowing and reports false instead
// of wrapping around. Floating-point sources are truncated toward zero when
// the target is an integer, after the range check.
//
// This package is internal to the codec.
package coerce
