package codec

import (
	"encoding"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/jsonbind/codec/internal/coerce"
	"github.com/wippyai/jsonbind/errors"
)

// bytesHandler carries []byte and [N]byte as an upper-case hex string.
type bytesHandler struct{ BaseHandler }

func (h bytesHandler) Encode(enc *Encoder, v reflect.Value) error {
	if v.Kind() == reflect.Slice && v.IsNil() {
		enc.WriteString("null")
		return nil
	}
	enc.Quote(strings.ToUpper(hex.EncodeToString(byteSlice(v))))
	return nil
}

func byteSlice(v reflect.Value) []byte {
	if v.Kind() == reflect.Slice {
		return v.Bytes()
	}
	b := make([]byte, v.Len())
	for i := range b {
		b[i] = byte(v.Index(i).Uint())
	}
	return b
}

func (h bytesHandler) of(b []byte) (reflect.Value, error) {
	if b == nil {
		b = []byte{}
	}
	if h.Type.Kind() == reflect.Slice {
		return reflect.ValueOf(b).Convert(h.Type), nil
	}
	if len(b) > h.Type.Len() {
		return reflect.Value{}, errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
			GoType(h.Type.String()).
			Detail("%d bytes do not fit %s", len(b), h.Type).
			Build()
	}
	v := reflect.New(h.Type).Elem()
	for i, c := range b {
		v.Index(i).SetUint(uint64(c))
	}
	return v, nil
}

// DecodeArray accepts an array of byte-sized integers. Values from -128 to
// 255 are accepted so signed bytes survive.
func (h bytesHandler) DecodeArray(dec *Decoder) (reflect.Value, error) {
	b := []byte{}
	err := dec.Elements(func(i int) error {
		n, err := dec.Decode(anyType)
		if err != nil {
			return errors.WithPath(errors.PhaseDecode, err, "["+strconv.Itoa(i)+"]")
		}
		x, ok := coerce.ToInt(n.Interface(), 16)
		if !ok || x < -128 || x > 255 {
			return errors.WithPath(errors.PhaseDecode, errors.Overflow(errors.PhaseDecode, n.Interface(), "byte"), "["+strconv.Itoa(i)+"]")
		}
		b = append(b, byte(x))
		return nil
	})
	if err != nil {
		return reflect.Value{}, err
	}
	return h.of(b)
}

// DecodeString takes the text as hex when, after removing whitespace, it
// consists of an even number of hex digits, and as Base64 otherwise.
func (h bytesHandler) DecodeString(_ *Decoder, s string) (reflect.Value, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if isHex(s) {
		b, err := hex.DecodeString(s)
		if err == nil {
			return h.of(b)
		}
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		var rawErr error
		if b, rawErr = base64.RawStdEncoding.DecodeString(s); rawErr != nil {
			return reflect.Value{}, errors.Wrap(errors.PhaseDecode, errors.KindMalformedInput, err, "neither hex nor base64")
		}
	}
	return h.of(b)
}

func isHex(s string) bool {
	if len(s)%2 != 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

// timeLayout is the ISO-8601 local date-time form, always rendered in UTC.
const timeLayout = "2006-01-02T15:04:05.999999999"

type timeHandler struct{ BaseHandler }

func (h timeHandler) Encode(enc *Encoder, v reflect.Value) error {
	t := v.Interface().(time.Time)
	enc.Quote(t.UTC().Format(timeLayout))
	return nil
}

// DecodeString accepts the encoded form and RFC 3339.
func (h timeHandler) DecodeString(_ *Decoder, s string) (reflect.Value, error) {
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		var rfcErr error
		if t, rfcErr = time.Parse(time.RFC3339Nano, s); rfcErr != nil {
			return reflect.Value{}, errors.Wrap(errors.PhaseDecode, errors.KindTypeMismatch, err, "timestamp "+strconv.Quote(s))
		}
	}
	return reflect.ValueOf(t.UTC()), nil
}

// DecodeNumber reads epoch milliseconds.
func (h timeHandler) DecodeNumber(_ *Decoder, n Number) (reflect.Value, error) {
	src, err := n.exact()
	if err != nil {
		return reflect.Value{}, errors.Overflow(errors.PhaseDecode, string(n), "epoch milliseconds")
	}
	ms, ok := coerce.ToInt(src, 64)
	if !ok {
		return reflect.Value{}, errors.Overflow(errors.PhaseDecode, src, "epoch milliseconds")
	}
	return reflect.ValueOf(time.UnixMilli(ms).UTC()), nil
}

type uuidHandler struct{ BaseHandler }

func (h uuidHandler) Encode(enc *Encoder, v reflect.Value) error {
	enc.Quote(v.Interface().(uuid.UUID).String())
	return nil
}

func (h uuidHandler) DecodeString(_ *Decoder, s string) (reflect.Value, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return reflect.Value{}, errors.Wrap(errors.PhaseDecode, errors.KindTypeMismatch, err, "uuid "+strconv.Quote(s))
	}
	return reflect.ValueOf(u), nil
}

type regexpHandler struct{ BaseHandler }

func (h regexpHandler) Encode(enc *Encoder, v reflect.Value) error {
	if v.IsNil() {
		enc.WriteString("null")
		return nil
	}
	enc.Quote(v.Interface().(*regexp.Regexp).String())
	return nil
}

func (h regexpHandler) DecodeString(_ *Decoder, s string) (reflect.Value, error) {
	re, err := regexp.Compile(s)
	if err != nil {
		return reflect.Value{}, errors.Wrap(errors.PhaseDecode, errors.KindTypeMismatch, err, "pattern "+strconv.Quote(s))
	}
	return reflect.ValueOf(re), nil
}

type fileHandler struct{ BaseHandler }

// Encode inlines the content of the referenced regular file.
func (h fileHandler) Encode(enc *Encoder, v reflect.Value) error {
	path := v.String()
	info, err := os.Stat(path)
	if err != nil {
		return errors.IO(errors.PhaseEncode, "stat "+path, err)
	}
	if !info.Mode().IsRegular() {
		return errors.InvalidInput(errors.PhaseEncode, path+" is not a regular file")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.IO(errors.PhaseEncode, "read "+path, err)
	}
	enc.Quote(base64.StdEncoding.EncodeToString(data))
	return nil
}

// DecodeString writes the content to a new temporary file. The codec never
// removes it.
func (h fileHandler) DecodeString(dec *Decoder, s string) (reflect.Value, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return reflect.Value{}, errors.Wrap(errors.PhaseDecode, errors.KindMalformedInput, err, "file content is not base64")
	}
	f, err := os.CreateTemp("", "jsonbind-*")
	if err != nil {
		return reflect.Value{}, errors.IO(errors.PhaseDecode, "create temp file", err)
	}
	_, werr := f.Write(data)
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		return reflect.Value{}, errors.IO(errors.PhaseDecode, "write "+f.Name(), werr)
	}
	dec.codec.log().Debug("decoded file reference", zap.String("path", f.Name()), zap.Int("bytes", len(data)))
	return reflect.ValueOf(File(f.Name())).Convert(h.Type), nil
}

// specialHandler carries an opaque type as its string form. It decodes
// through a registered parse function or encoding.TextUnmarshaler.
type specialHandler struct {
	BaseHandler
	parse reflect.Value
}

func (h specialHandler) Encode(enc *Encoder, v reflect.Value) error {
	if isNull(v) {
		enc.WriteString("null")
		return nil
	}
	s, err := textOf(v)
	if err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindUnconvertible, err, "marshal "+v.Type().String())
	}
	enc.Quote(s)
	return nil
}

func textOf(v reflect.Value) (string, error) {
	if !v.CanAddr() {
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		v = p.Elem()
	}
	switch m := v.Addr().Interface().(type) {
	case encoding.TextMarshaler:
		b, err := m.MarshalText()
		return string(b), err
	case fmt.Stringer:
		return m.String(), nil
	}
	return fmt.Sprint(v.Interface()), nil
}

func (h specialHandler) DecodeString(_ *Decoder, s string) (reflect.Value, error) {
	if h.parse.IsValid() {
		out := h.parse.Call([]reflect.Value{reflect.ValueOf(s)})
		if err, _ := out[1].Interface().(error); err != nil {
			return reflect.Value{}, errors.Wrap(errors.PhaseDecode, errors.KindTypeMismatch, err, "parse "+h.Type.String())
		}
		return out[0], nil
	}
	p := reflect.New(h.Type)
	if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
		return reflect.Value{}, errors.Wrap(errors.PhaseDecode, errors.KindTypeMismatch, err, "parse "+h.Type.String())
	}
	return p.Elem(), nil
}

// DecodeNumber hands the literal text to the string form.
func (h specialHandler) DecodeNumber(dec *Decoder, n Number) (reflect.Value, error) {
	return h.DecodeString(dec, string(n))
}

type enumHandler struct {
	BaseHandler
	info *enumInfo
}

func (h enumHandler) Encode(enc *Encoder, v reflect.Value) error {
	enc.Quote(v.Interface().(fmt.Stringer).String())
	return nil
}

func (h enumHandler) DecodeString(_ *Decoder, s string) (reflect.Value, error) {
	for i, name := range h.info.names {
		if name == s {
			return h.info.values[i], nil
		}
	}
	return reflect.Value{}, errors.InvalidEnum(s, h.Type.String())
}
