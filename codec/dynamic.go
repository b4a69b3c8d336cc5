package codec

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/jsonbind/collections"
)

// pointerHandler encodes through the pointee and decodes into a fresh
// allocation. JSON null maps to a nil pointer.
type pointerHandler struct {
	BaseHandler
	elem reflect.Type
}

func (h pointerHandler) Encode(enc *Encoder, v reflect.Value) error {
	if v.IsNil() {
		enc.WriteString("null")
		return nil
	}
	return enc.Encode(v.Elem(), h.elem)
}

func (h pointerHandler) decode(dec *Decoder, fn func(Handler) (reflect.Value, error)) (reflect.Value, error) {
	eh, err := dec.codec.Handler(h.elem)
	if err != nil {
		return reflect.Value{}, err
	}
	v, err := fn(eh)
	if err != nil {
		return reflect.Value{}, err
	}
	p := reflect.New(h.elem)
	p.Elem().Set(v)
	return into(p, h.Type), nil
}

func (h pointerHandler) DecodeObject(dec *Decoder) (reflect.Value, error) {
	return h.decode(dec, func(eh Handler) (reflect.Value, error) { return eh.DecodeObject(dec) })
}

func (h pointerHandler) DecodeArray(dec *Decoder) (reflect.Value, error) {
	return h.decode(dec, func(eh Handler) (reflect.Value, error) { return eh.DecodeArray(dec) })
}

func (h pointerHandler) DecodeString(dec *Decoder, s string) (reflect.Value, error) {
	return h.decode(dec, func(eh Handler) (reflect.Value, error) { return eh.DecodeString(dec, s) })
}

func (h pointerHandler) DecodeNumber(dec *Decoder, n Number) (reflect.Value, error) {
	return h.decode(dec, func(eh Handler) (reflect.Value, error) { return eh.DecodeNumber(dec, n) })
}

func (h pointerHandler) DecodeBool(dec *Decoder, b bool) (reflect.Value, error) {
	return h.decode(dec, func(eh Handler) (reflect.Value, error) { return eh.DecodeBool(dec, b) })
}

// encodeDynamic encodes an interface value by its runtime type.
func encodeDynamic(enc *Encoder, v reflect.Value) error {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			enc.WriteString("null")
			return nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		enc.WriteString("null")
		return nil
	}
	return enc.Encode(v, v.Type())
}

// untypedHandler decodes into the natural dynamic form: objects become
// *collections.OrderedMap (map[string]any for codecs with unordered
// objects), arrays []any, numbers int32, int64, *big.Int or float64.
type untypedHandler struct {
	BaseHandler
}

func (h untypedHandler) Encode(enc *Encoder, v reflect.Value) error {
	return encodeDynamic(enc, v)
}

func (h untypedHandler) DecodeObject(dec *Decoder) (reflect.Value, error) {
	var put func(name string, v any)
	var out any
	if dec.codec.unorderedObjects {
		m := make(map[string]any)
		put, out = func(name string, v any) { m[name] = v }, m
	} else {
		m := collections.NewOrderedMap()
		put, out = func(name string, v any) { m.Put(name, v) }, m
	}

	err := dec.Members(func(name string) error {
		v, err := dec.Decode(anyType)
		if err != nil {
			return err
		}
		if dec.codec.ignoreNull && isNull(v) {
			return nil
		}
		put(name, v.Interface())
		return nil
	})
	if err != nil {
		return reflect.Value{}, err
	}
	return anyValue(out), nil
}

func (h untypedHandler) DecodeArray(dec *Decoder) (reflect.Value, error) {
	out := []any{}
	err := dec.Elements(func(int) error {
		v, err := dec.Decode(anyType)
		if err != nil {
			return err
		}
		out = append(out, v.Interface())
		return nil
	})
	if err != nil {
		return reflect.Value{}, err
	}
	return anyValue(out), nil
}

func (h untypedHandler) DecodeString(_ *Decoder, s string) (reflect.Value, error) {
	return anyValue(s), nil
}

func (h untypedHandler) DecodeNumber(_ *Decoder, n Number) (reflect.Value, error) {
	return anyValue(n.Value()), nil
}

func (h untypedHandler) DecodeBool(_ *Decoder, b bool) (reflect.Value, error) {
	return anyValue(b), nil
}

// unresolvedHandler serves interface types other than any. Decoding picks
// a concrete implementation from the substitution table; encoding uses the
// runtime type.
type unresolvedHandler struct {
	BaseHandler
}

func (h unresolvedHandler) Encode(enc *Encoder, v reflect.Value) error {
	return encodeDynamic(enc, v)
}

func (h unresolvedHandler) decode(dec *Decoder, fn func(Handler) (reflect.Value, error)) (reflect.Value, error) {
	ct, err := implementationFor(h.Type)
	if err != nil {
		return reflect.Value{}, err
	}
	ch, err := dec.codec.Handler(ct)
	if err != nil {
		return reflect.Value{}, err
	}
	dec.codec.log().Debug("interface substituted", zap.Stringer("interface", h.Type), zap.Stringer("concrete", ct))
	v, err := fn(ch)
	if err != nil {
		return reflect.Value{}, err
	}
	return into(v, h.Type), nil
}

func (h unresolvedHandler) DecodeObject(dec *Decoder) (reflect.Value, error) {
	return h.decode(dec, func(ch Handler) (reflect.Value, error) { return ch.DecodeObject(dec) })
}

func (h unresolvedHandler) DecodeArray(dec *Decoder) (reflect.Value, error) {
	return h.decode(dec, func(ch Handler) (reflect.Value, error) { return ch.DecodeArray(dec) })
}

func (h unresolvedHandler) DecodeString(dec *Decoder, s string) (reflect.Value, error) {
	return h.decode(dec, func(ch Handler) (reflect.Value, error) { return ch.DecodeString(dec, s) })
}

func (h unresolvedHandler) DecodeNumber(dec *Decoder, n Number) (reflect.Value, error) {
	return h.decode(dec, func(ch Handler) (reflect.Value, error) { return ch.DecodeNumber(dec, n) })
}

func (h unresolvedHandler) DecodeBool(dec *Decoder, b bool) (reflect.Value, error) {
	return h.decode(dec, func(ch Handler) (reflect.Value, error) { return ch.DecodeBool(dec, b) })
}
