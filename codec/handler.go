package codec

import (
	"reflect"

	"github.com/wippyai/jsonbind/errors"
)

// Handler encodes and decodes values of one Go type.
//
// The decoder picks a Decode method from the next significant input
// character. DecodeObject and DecodeArray are called with the opening
// bracket still unread; the other methods receive the already lexed token.
// Every Decode method returns a value assignable to the handler's type.
//
// Handlers are shared between goroutines and must not keep per-call state.
type Handler interface {
	Encode(enc *Encoder, v reflect.Value) error
	DecodeObject(dec *Decoder) (reflect.Value, error)
	DecodeArray(dec *Decoder) (reflect.Value, error)
	DecodeString(dec *Decoder, s string) (reflect.Value, error)
	DecodeNumber(dec *Decoder, n Number) (reflect.Value, error)
	DecodeBool(dec *Decoder, b bool) (reflect.Value, error)
	DecodeNull(dec *Decoder) (reflect.Value, error)
}

// BaseHandler rejects every JSON production except null, which decodes to
// the zero value of Type. Embed it and override what the type accepts.
type BaseHandler struct {
	Type reflect.Type
}

func (h BaseHandler) goType() reflect.Type { return h.Type }

func (h BaseHandler) mismatch(token string) (reflect.Value, error) {
	return reflect.Value{}, errors.TypeMismatch(errors.PhaseDecode, nil, h.Type.String(), token)
}

func (h BaseHandler) DecodeObject(*Decoder) (reflect.Value, error) {
	return h.mismatch("object")
}

func (h BaseHandler) DecodeArray(*Decoder) (reflect.Value, error) {
	return h.mismatch("array")
}

func (h BaseHandler) DecodeString(*Decoder, string) (reflect.Value, error) {
	return h.mismatch("string")
}

func (h BaseHandler) DecodeNumber(*Decoder, Number) (reflect.Value, error) {
	return h.mismatch("number")
}

func (h BaseHandler) DecodeBool(*Decoder, bool) (reflect.Value, error) {
	return h.mismatch("boolean")
}

func (h BaseHandler) DecodeNull(*Decoder) (reflect.Value, error) {
	return reflect.Zero(h.Type), nil
}

// Char is a character encoded as its numeric code point.
type Char rune

// File is the path of a file whose content is carried inline as Base64.
// Decoding writes the content to a new temporary file owned by the caller.
type File string

// Defaulter is implemented by struct types whose default template is not
// their zero value. Default is called on a fresh zero value once per type.
type Defaulter interface {
	Default()
}

var (
	anyType = reflect.TypeFor[any]()
	errType = reflect.TypeFor[error]()
)

// anyValue returns x as a reflect.Value of type any.
func anyValue(x any) reflect.Value {
	v := reflect.New(anyType).Elem()
	if x != nil {
		v.Set(reflect.ValueOf(x))
	}
	return v
}

// into returns v as a value of type t, wrapping it when t is an interface.
func into(v reflect.Value, t reflect.Type) reflect.Value {
	if !v.IsValid() {
		return reflect.Zero(t)
	}
	if v.Type() == t {
		return v
	}
	if t.Kind() == reflect.Interface {
		iv := reflect.New(t).Elem()
		iv.Set(v)
		return iv
	}
	return v.Convert(t)
}

// isNull reports whether v encodes as JSON null.
func isNull(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}
