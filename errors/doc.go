// Package errors provides structured error types for the jsonbind codec.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: member path, Go type name, JSON token,
// stream offset and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindNumericOverflow).
//		Path("config", "port").
//		GoType("uint16").
//		Detail("value 70000 does not fit").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Malformed(offset, "expected ':' after member name")
//	err := errors.UnknownField("main.Config", "colour")
//
// Container handlers prepend breadcrumbs while unwinding, so a failure deep
// in a document reads like:
//
//	[decode] invalid_enum at palettes[1].color: Go type Color - invalid enum value PURPLE for Color
//
// All errors implement the standard error interface and support errors.Is/As.
// Use IsKind to test for a category independent of phase.
package errors
