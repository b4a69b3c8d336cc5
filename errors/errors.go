package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseResolve Phase = "resolve" // handler resolution
	PhaseEncode  Phase = "encode"  // Go to JSON
	PhaseDecode  Phase = "decode"  // JSON to Go
	PhaseStream  Phase = "stream"  // reader/writer plumbing
	PhaseConfig  Phase = "config"  // codec or session configuration
)

// Kind categorizes the error
type Kind string

const (
	KindMalformedInput       Kind = "malformed_input"
	KindNumericOverflow      Kind = "numeric_overflow"
	KindInvalidEnum          Kind = "invalid_enum"
	KindUnsupportedContainer Kind = "unsupported_container"
	KindUnconvertible        Kind = "unconvertible_type"
	KindFieldImmutable       Kind = "field_immutable"
	KindUnknownField         Kind = "unknown_field"
	KindCyclicReference      Kind = "cyclic_reference"
	KindTypeMismatch         Kind = "type_mismatch"
	KindIO                   Kind = "io"
	KindInvalidInput         Kind = "invalid_input"
)

// Error is the structured error type used throughout the codec
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	Token  string
	Detail string
	Path   []string
	Offset int64
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(FormatPath(e.Path))
	}

	if e.GoType != "" || e.Token != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.Token != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", JSON ")
			b.WriteString(e.Token)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("JSON ")
			b.WriteString(e.Token)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.Token != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Offset > 0 {
		fmt.Fprintf(&b, " (offset %d)", e.Offset)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// FormatPath joins path segments, attaching index segments ("[3]") without a dot.
func FormatPath(path []string) string {
	var b strings.Builder
	for i, seg := range path {
		if i > 0 && !strings.HasPrefix(seg, "[") {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Token sets the JSON token kind the error refers to
func (b *Builder) Token(t string) *Builder {
	b.err.Token = t
	return b
}

// Offset sets the stream offset where the error was detected
func (b *Builder) Offset(off int64) *Builder {
	b.err.Offset = off
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// WithPath prepends a breadcrumb segment to err. Errors that are not *Error
// are wrapped as io errors so the breadcrumb is never lost.
func WithPath(phase Phase, err error, segment string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		e.Path = append([]string{segment}, e.Path...)
		return err
	}
	return &Error{
		Phase: phase,
		Kind:  KindIO,
		Path:  []string{segment},
		Cause: err,
	}
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given Kind, regardless of phase.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Convenience constructors for common error patterns

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, token string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		GoType: goType,
		Token:  token,
	}
}

// Malformed creates a grammar violation error at the given stream offset
func Malformed(offset int64, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindMalformedInput,
		Detail: detail,
		Offset: offset,
	}
}

// Overflow creates a numeric overflow error
func Overflow(phase Phase, value any, targetType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNumericOverflow,
		GoType: targetType,
		Detail: fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:  value,
	}
}

// UnknownField creates an unknown field error
func UnknownField(goType, fieldName string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnknownField,
		GoType: goType,
		Detail: fmt.Sprintf("unknown field %q", fieldName),
		Value:  fieldName,
	}
}

// InvalidEnum creates an invalid enum value error
func InvalidEnum(value any, enumType string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidEnum,
		GoType: enumType,
		Detail: fmt.Sprintf("invalid enum value %v for %s", value, enumType),
		Value:  value,
	}
}

// Unconvertible creates an error for a type no handler can serve
func Unconvertible(phase Phase, goType, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnconvertible,
		GoType: goType,
		Detail: detail,
	}
}

// UnsupportedContainer creates an error for an interface with no concrete substitute
func UnsupportedContainer(goType string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindUnsupportedContainer,
		GoType: goType,
		Detail: "no concrete implementation found for interface",
	}
}

// FieldImmutable creates an error for a struct field that cannot be assigned
func FieldImmutable(goType, fieldName string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindFieldImmutable,
		GoType: goType,
		Detail: fmt.Sprintf("field %q cannot be set", fieldName),
	}
}

// Cyclic creates a cyclic reference error
func Cyclic(goType string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindCyclicReference,
		GoType: goType,
		Detail: "value refers back to itself",
	}
}

// IO wraps a failure of the underlying stream
func IO(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIO,
		Detail: detail,
		Cause:  cause,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
