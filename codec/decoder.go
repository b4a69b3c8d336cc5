package codec

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/wippyai/jsonbind/errors"
	"github.com/wippyai/jsonbind/stream"
)

// Decoder is one decode session: a source, its stream filters and the
// per-session state handlers consult. A Decoder is not safe for concurrent
// use.
//
// Unless KeepOpen is set, the first Get reads a single value, checks that
// only whitespace follows and closes the source.
type Decoder struct {
	codec       *Codec
	r           *stream.Reader
	extra       map[string]any
	err         error
	compression stream.Compression
	strict      bool
	keepOpen    bool
	digesting   bool
}

// Dec starts a decode session. Select a source with From, FromBytes,
// FromReader or FromFile.
func (c *Codec) Dec() *Decoder {
	return &Decoder{codec: c}
}

// From reads from text.
func (d *Decoder) From(text string) *Decoder {
	return d.attach(stream.NewReader(strings.NewReader(text)))
}

// FromBytes reads from data.
func (d *Decoder) FromBytes(data []byte) *Decoder {
	return d.attach(stream.NewReader(bytes.NewReader(data)))
}

// FromReader reads from r. The caller keeps ownership of r.
func (d *Decoder) FromReader(r io.Reader) *Decoder {
	return d.attach(stream.NewReader(r))
}

// FromFile opens path and owns the file until the session closes.
func (d *Decoder) FromFile(path string) *Decoder {
	f, err := os.Open(path)
	if err != nil {
		d.err = errors.IO(errors.PhaseStream, "open "+path, err)
		return d
	}
	return d.attach(stream.OpenReader(f))
}

func (d *Decoder) attach(r *stream.Reader) *Decoder {
	d.r = r
	if d.err != nil {
		return d
	}
	if err := r.WithCharset(d.codec.charset); err != nil {
		d.err = err
		return d
	}
	if err := r.WithCompression(d.compression); err != nil {
		d.err = err
		return d
	}
	if d.digesting {
		r.WithDigest(d.codec.newHash)
	}
	return d
}

// Strict turns unknown struct members into UnknownField errors.
func (d *Decoder) Strict() *Decoder {
	d.strict = true
	return d
}

// KeepOpen lets successive Get calls read consecutive values from the same
// source. The caller must Close the session.
func (d *Decoder) KeepOpen() *Decoder {
	d.keepOpen = true
	return d
}

// Inflate reads the source through a raw DEFLATE filter.
func (d *Decoder) Inflate() *Decoder {
	return d.WithCompression(stream.CompressionDeflate)
}

// WithCompression reads the source through the given filter. It must be
// selected before the first value is read.
func (d *Decoder) WithCompression(c stream.Compression) *Decoder {
	d.compression = c
	if d.r != nil && d.err == nil {
		if err := d.r.WithCompression(c); err != nil {
			d.err = err
		}
	}
	return d
}

// Mark starts digesting the consumed characters, or resets a running
// digest.
func (d *Decoder) Mark() *Decoder {
	d.digesting = true
	switch {
	case d.r == nil:
	case d.r.Digest() == nil:
		d.r.WithDigest(d.codec.newHash)
	default:
		d.r.Mark()
	}
	return d
}

// Digest returns the hash of the characters consumed since Mark, or nil.
func (d *Decoder) Digest() []byte {
	if d.r == nil {
		return nil
	}
	return d.r.Digest()
}

// Extra returns the unknown members stashed by struct handlers, keyed by
// "<type>.<member>".
func (d *Decoder) Extra() map[string]any {
	return d.extra
}

func (d *Decoder) stash(key string, v any) {
	if d.extra == nil {
		d.extra = make(map[string]any)
	}
	d.extra[key] = v
}

// IsEOF reports whether only whitespace remains in the source.
func (d *Decoder) IsEOF() bool {
	return d.r == nil || d.r.EOF()
}

// Get decodes the next value as type t.
func (d *Decoder) Get(t reflect.Type) (any, error) {
	v, err := d.get(t)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// Into decodes the next value into the value ptr points to.
func (d *Decoder) Into(ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		d.Close()
		return errors.InvalidInput(errors.PhaseDecode, fmt.Sprintf("decode target must be a non-nil pointer, got %T", ptr))
	}
	v, err := d.get(rv.Type().Elem())
	if err != nil {
		return err
	}
	rv.Elem().Set(v)
	return nil
}

// Get decodes the next value of the session as T.
func Get[T any](d *Decoder) (T, error) {
	var zero T
	v, err := d.get(reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	out, _ := v.Interface().(T)
	return out, nil
}

func (d *Decoder) get(t reflect.Type) (reflect.Value, error) {
	if d.err != nil {
		d.Close()
		return reflect.Value{}, d.err
	}
	if d.r == nil {
		return reflect.Value{}, errors.InvalidInput(errors.PhaseDecode, "decoder has no source")
	}
	v, err := d.Decode(t)
	if d.keepOpen {
		return v, err
	}
	if err == nil && !d.r.EOF() {
		err = errors.Malformed(d.r.Offset(), "unexpected %q after value", d.r.Current())
	}
	if cerr := d.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return reflect.Value{}, err
	}
	return v, nil
}

// Close releases the source if the session owns it.
func (d *Decoder) Close() error {
	if d.r == nil {
		return nil
	}
	return d.r.Close()
}

// Decode reads the next value and dispatches it to the handler for t by
// its first significant character.
func (d *Decoder) Decode(t reflect.Type) (reflect.Value, error) {
	h, err := d.codec.Handler(t)
	if err != nil {
		return reflect.Value{}, err
	}
	switch c := d.r.SkipWhitespace(); {
	case c == '{':
		return h.DecodeObject(d)
	case c == '[':
		return h.DecodeArray(d)
	case c == '"':
		s, err := d.ReadString()
		if err != nil {
			return reflect.Value{}, err
		}
		return h.DecodeString(d, s)
	case c == 't', c == 'f':
		lit := "true"
		if c == 'f' {
			lit = "false"
		}
		if err := d.r.Expect(lit); err != nil {
			return reflect.Value{}, err
		}
		return h.DecodeBool(d, c == 't')
	case c == 'n':
		if err := d.r.Expect("null"); err != nil {
			return reflect.Value{}, err
		}
		return h.DecodeNull(d)
	case c == '-', isDigit(c):
		n, err := d.ReadNumber()
		if err != nil {
			return reflect.Value{}, err
		}
		return h.DecodeNumber(d, n)
	default:
		return reflect.Value{}, d.unexpected(c, "a value")
	}
}

// Members reads an object, calling fn for each member with the reader
// positioned at the member's value. fn must consume the value.
func (d *Decoder) Members(fn func(name string) error) error {
	if err := d.r.Expect("{"); err != nil {
		return err
	}
	c := d.r.SkipWhitespace()
	if c == '}' {
		d.r.Advance()
		return nil
	}
	for {
		if c != '"' {
			return d.unexpected(c, "member name")
		}
		name, err := d.ReadString()
		if err != nil {
			return err
		}
		if c = d.r.SkipWhitespace(); c != ':' {
			return d.unexpected(c, "':'")
		}
		d.r.Advance()
		if err := fn(name); err != nil {
			return err
		}
		switch c = d.r.SkipWhitespace(); c {
		case ',':
			d.r.Advance()
			c = d.r.SkipWhitespace()
		case '}':
			d.r.Advance()
			return nil
		default:
			return d.unexpected(c, "',' or '}'")
		}
	}
}

// Elements reads an array, calling fn with the index of each element. fn
// must consume the element.
func (d *Decoder) Elements(fn func(i int) error) error {
	if err := d.r.Expect("["); err != nil {
		return err
	}
	if d.r.SkipWhitespace() == ']' {
		d.r.Advance()
		return nil
	}
	for i := 0; ; i++ {
		if err := fn(i); err != nil {
			return err
		}
		switch c := d.r.SkipWhitespace(); c {
		case ',':
			d.r.Advance()
			if d.r.SkipWhitespace() == ']' {
				return errors.Malformed(d.r.Offset(), "trailing comma in array")
			}
		case ']':
			d.r.Advance()
			return nil
		default:
			return d.unexpected(c, "',' or ']'")
		}
	}
}

// Raw consumes the next value and returns its JSON text as read.
func (d *Decoder) Raw() (string, error) {
	d.r.SkipWhitespace()
	d.r.StartCapture()
	_, err := d.Decode(anyType)
	raw := d.r.StopCapture()
	if err != nil {
		return "", err
	}
	return raw, nil
}
