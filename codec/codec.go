package codec

import (
	"fmt"
	"hash"
	"reflect"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/jsonbind/errors"
	"github.com/wippyai/jsonbind/stream"
)

// Codec binds JSON text to Go values. A configured Codec is safe for
// concurrent use; configure it before sharing it.
type Codec struct {
	overrides        map[reflect.Type]Handler
	logger           *zap.Logger
	newHash          func() hash.Hash
	indent           string
	charset          string
	recovered        atomic.Int64
	ignoreNull       bool
	promiscuous      bool
	unorderedObjects bool
}

// New creates a codec with compact output, UTF-8 streams and no overrides.
func New() *Codec {
	return &Codec{overrides: make(map[reflect.Type]Handler)}
}

// WithIndent sets the default indent unit of encode sessions.
func (c *Codec) WithIndent(unit string) *Codec {
	c.indent = unit
	return c
}

// WithIgnoreNull omits null map entries and record components on encode
// and drops null members of maps on decode.
func (c *Codec) WithIgnoreNull() *Codec {
	c.ignoreNull = true
	return c
}

// WithPromiscuous constructs records cut short by the end of input from the
// members read so far instead of failing.
func (c *Codec) WithPromiscuous() *Codec {
	c.promiscuous = true
	return c
}

// WithUnorderedObjects decodes untyped objects into map[string]any instead
// of *collections.OrderedMap. Member order is lost.
func (c *Codec) WithUnorderedObjects() *Codec {
	c.unorderedObjects = true
	return c
}

// WithLogger sets the logger for this codec's sessions. Without one, the
// package logger is used.
func (c *Codec) WithLogger(l *zap.Logger) *Codec {
	c.logger = l
	return c
}

// WithHandler makes h the handler for t in this codec, ahead of every
// built-in and registered handler.
func (c *Codec) WithHandler(t reflect.Type, h Handler) *Codec {
	c.overrides[t] = h
	return c
}

// WithDigest selects the hash used by Mark. The default is BLAKE3.
func (c *Codec) WithDigest(newHash func() hash.Hash) *Codec {
	c.newHash = newHash
	return c
}

// WithCharset sets the IANA charset of encoded and decoded streams.
func (c *Codec) WithCharset(name string) *Codec {
	c.charset = name
	return c
}

// RecoveredRecords returns how many records were constructed from partial
// input in promiscuous mode.
func (c *Codec) RecoveredRecords() int64 {
	return c.recovered.Load()
}

func (c *Codec) log() *zap.Logger {
	if c.logger != nil {
		return c.logger
	}
	return Logger()
}

// Encode returns the JSON text of v, encoded by its runtime type.
func (c *Codec) Encode(v any) (string, error) {
	e := c.Enc()
	if err := e.Put(v); err != nil {
		return "", err
	}
	return e.String(), nil
}

// EncodeAs returns the JSON text of v encoded against the declared type t.
func (c *Codec) EncodeAs(v any, t reflect.Type) (string, error) {
	e := c.Enc()
	if err := e.PutAs(v, t); err != nil {
		return "", err
	}
	return e.String(), nil
}

// Decode parses text into the value ptr points to.
func (c *Codec) Decode(text string, ptr any) error {
	return c.Dec().From(text).Into(ptr)
}

// DecodeAs parses text as a value of type t.
func (c *Codec) DecodeAs(text string, t reflect.Type) (any, error) {
	return c.Dec().From(text).Get(t)
}

// Decode parses text as a T.
func Decode[T any](c *Codec, text string) (T, error) {
	return Get[T](c.Dec().From(text))
}

// encodeText renders v compactly, for map keys that are not strings.
func (c *Codec) encodeText(v reflect.Value, t reflect.Type) (string, error) {
	var sb strings.Builder
	e := c.Enc()
	e.w = stream.NewWriter(&sb)
	if err := e.Encode(v, t); err != nil {
		return "", err
	}
	if err := e.Close(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// decodeText parses a member name produced by encodeText.
func (c *Codec) decodeText(s string, t reflect.Type) (reflect.Value, error) {
	d := c.Dec()
	d.r = stream.NewReader(strings.NewReader(s))
	v, err := d.get(t)
	if err != nil {
		return reflect.Value{}, errors.Wrap(errors.PhaseDecode, errors.KindOf(err), err, fmt.Sprintf("map key %q", s))
	}
	return v, nil
}
