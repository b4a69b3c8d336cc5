package codec

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/wippyai/jsonbind/errors"
	"github.com/wippyai/jsonbind/stream"
)

// Encoder is one encode session: a sink, its stream filters and the
// per-session state handlers consult. An Encoder is not safe for concurrent
// use.
//
// Without To or ToFile the session writes to an in-memory buffer read back
// with String. Unless KeepOpen is set, the first Put closes the session.
type Encoder struct {
	codec         *Codec
	w             *stream.Writer
	buf           *strings.Builder
	visited       map[visit]struct{}
	err           error
	indent        string
	puts          int
	compression   stream.Compression
	writeDefaults bool
	keepOpen      bool
	digesting     bool
	closed        bool
}

// visit identifies a reference on the current encode path.
type visit struct {
	typ reflect.Type
	ptr uintptr
	len int
}

// Enc starts an encode session with the codec's indent.
func (c *Codec) Enc() *Encoder {
	return &Encoder{codec: c, indent: c.indent, visited: make(map[visit]struct{})}
}

// To writes to w. The caller keeps ownership of w.
func (e *Encoder) To(w io.Writer) *Encoder {
	return e.attach(stream.NewWriter(w))
}

// ToFile creates path and owns the file until the session closes.
func (e *Encoder) ToFile(path string) *Encoder {
	f, err := os.Create(path)
	if err != nil {
		e.err = errors.IO(errors.PhaseStream, "create "+path, err)
		return e
	}
	return e.attach(stream.OpenWriter(f))
}

func (e *Encoder) attach(w *stream.Writer) *Encoder {
	e.w = w.WithIndent(e.indent)
	if e.err != nil {
		return e
	}
	if err := w.WithCharset(e.codec.charset); err != nil {
		e.err = err
		return e
	}
	if err := w.WithCompression(e.compression); err != nil {
		e.err = err
		return e
	}
	if e.digesting {
		w.WithDigest(e.codec.newHash)
	}
	return e
}

func (e *Encoder) writer() *stream.Writer {
	if e.w == nil {
		e.buf = &strings.Builder{}
		e.attach(stream.NewWriter(e.buf))
	}
	return e.w
}

// WithIndent sets the indent unit; empty means compact output.
func (e *Encoder) WithIndent(unit string) *Encoder {
	e.indent = unit
	if e.w != nil {
		e.w.WithIndent(unit)
	}
	return e
}

// WithWriteDefaults emits struct fields even when they equal the default
// template.
func (e *Encoder) WithWriteDefaults() *Encoder {
	e.writeDefaults = true
	return e
}

// WithCompression writes through the given filter. It must be selected
// before the first value is written.
func (e *Encoder) WithCompression(c stream.Compression) *Encoder {
	e.compression = c
	if e.w != nil && e.err == nil {
		if err := e.w.WithCompression(c); err != nil {
			e.err = err
		}
	}
	return e
}

// Deflate writes through a raw DEFLATE filter.
func (e *Encoder) Deflate() *Encoder {
	return e.WithCompression(stream.CompressionDeflate)
}

// KeepOpen lets successive Put calls append values to the same sink,
// separated by newlines. The caller must Close the session.
func (e *Encoder) KeepOpen() *Encoder {
	e.keepOpen = true
	return e
}

// Mark starts digesting the written characters, or resets a running digest.
func (e *Encoder) Mark() *Encoder {
	e.digesting = true
	switch {
	case e.w == nil:
	case e.w.Digest() == nil:
		e.w.WithDigest(e.codec.newHash)
	default:
		e.w.Mark()
	}
	return e
}

// Digest returns the hash of the characters written since Mark, or nil.
func (e *Encoder) Digest() []byte {
	if e.w == nil {
		return nil
	}
	return e.w.Digest()
}

// Put encodes v by its runtime type.
func (e *Encoder) Put(v any) error {
	return e.PutAs(v, nil)
}

// PutAs encodes v against the declared type t. A nil t means the runtime
// type of v.
func (e *Encoder) PutAs(v any, t reflect.Type) error {
	if e.err != nil {
		e.Close()
		return e.err
	}
	if e.closed {
		return errors.InvalidInput(errors.PhaseEncode, "encoder is closed")
	}
	w := e.writer()
	if e.err != nil {
		e.Close()
		return e.err
	}

	rv := reflect.ValueOf(v)
	if t != nil && t.Kind() != reflect.Interface && rv.IsValid() && rv.Type() != t {
		if !rv.Type().ConvertibleTo(t) {
			return errors.InvalidInput(errors.PhaseEncode, fmt.Sprintf("%T cannot be encoded as %v", v, t))
		}
		rv = rv.Convert(t)
	}

	if e.keepOpen && e.puts > 0 {
		w.WriteString("\n")
	}
	e.puts++
	err := e.Encode(rv, t)
	if err == nil {
		err = w.Err()
	}
	if !e.keepOpen {
		if cerr := e.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// String returns what was written to the in-memory buffer. It is empty
// when the session writes to an external sink.
func (e *Encoder) String() string {
	if e.buf == nil {
		return ""
	}
	if !e.closed {
		e.w.Flush()
	}
	return e.buf.String()
}

// Flush pushes buffered output to the sink.
func (e *Encoder) Flush() error {
	if e.w == nil {
		return e.err
	}
	return e.w.Flush()
}

// Close flushes, finishes compression and releases an owned sink.
func (e *Encoder) Close() error {
	if e.w == nil || e.closed {
		return e.err
	}
	e.closed = true
	if err := e.w.Close(); err != nil {
		return err
	}
	return e.err
}

// Encode writes v against the declared type t. Interface types, and a nil
// t, encode by the runtime type of v. References already on the current
// path fail with a cyclic_reference error.
func (e *Encoder) Encode(v reflect.Value, t reflect.Type) error {
	if t == nil || t.Kind() == reflect.Interface {
		if _, ok := e.codec.overrides[t]; !ok || t == nil {
			if v.IsValid() && v.Kind() == reflect.Interface {
				v = v.Elem()
			}
			if !v.IsValid() {
				e.WriteString("null")
				return nil
			}
			t = v.Type()
		}
	}
	h, err := e.codec.Handler(t)
	if err != nil {
		return err
	}
	if key, ok := visitOf(v); ok {
		if _, seen := e.visited[key]; seen {
			return errors.Cyclic(t.String())
		}
		e.visited[key] = struct{}{}
		defer delete(e.visited, key)
	}
	return h.Encode(e, v)
}

// EncodeAny writes x by its runtime type.
func (e *Encoder) EncodeAny(x any) error {
	return e.Encode(reflect.ValueOf(x), nil)
}

func visitOf(v reflect.Value) (visit, bool) {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map:
		if v.IsNil() {
			return visit{}, false
		}
		return visit{typ: v.Type(), ptr: v.Pointer()}, true
	case reflect.Slice:
		if v.Len() == 0 {
			return visit{}, false
		}
		return visit{typ: v.Type(), ptr: v.Pointer(), len: v.Len()}, true
	}
	return visit{}, false
}

// WriteString appends s unquoted.
func (e *Encoder) WriteString(s string) {
	e.w.WriteString(s)
}

// WriteRune appends one character.
func (e *Encoder) WriteRune(r rune) {
	e.w.WriteRune(r)
}

// PushIndent opens a nesting level when pretty-printing.
func (e *Encoder) PushIndent() {
	e.w.PushIndent()
}

// PopIndent closes a nesting level when pretty-printing.
func (e *Encoder) PopIndent() {
	e.w.PopIndent()
}

// Newline starts a new line at the current level when pretty-printing.
func (e *Encoder) Newline() {
	e.w.Newline()
}

// Indenting reports whether the session pretty-prints.
func (e *Encoder) Indenting() bool {
	return e.w.Indenting()
}

// WriteDefaults reports whether struct fields equal to their defaults are
// written.
func (e *Encoder) WriteDefaults() bool {
	return e.writeDefaults
}

// Quote writes s as a JSON string literal.
func (e *Encoder) Quote(s string) {
	e.w.WriteRune('"')
	start := 0
	for i := 0; i < len(s); {
		r, n := utf8.DecodeRuneInString(s[i:])
		esc, ok := escapeOf(r, n)
		if ok {
			e.w.WriteString(s[start:i])
			e.w.WriteString(esc)
			start = i + n
		}
		i += n
	}
	e.w.WriteString(s[start:])
	e.w.WriteRune('"')
}

const hexDigits = "0123456789abcdef"

// escapeOf returns the escape sequence for r, if it needs one. Invalid
// UTF-8 bytes are replaced with U+FFFD.
func escapeOf(r rune, width int) (string, bool) {
	switch r {
	case '"':
		return `\"`, true
	case '\\':
		return `\\`, true
	case '\b':
		return `\b`, true
	case '\f':
		return `\f`, true
	case '\n':
		return `\n`, true
	case '\r':
		return `\r`, true
	case '\t':
		return `\t`, true
	case utf8.RuneError:
		if width == 1 {
			return `\ufffd`, true
		}
	}
	if r < 0x20 || (r >= 0x7f && r <= 0x9f) {
		return `\u00` + string(hexDigits[r>>4]) + string(hexDigits[r&0xf]), true
	}
	return "", false
}
