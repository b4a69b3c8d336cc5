package codec

import (
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/wippyai/jsonbind/codec/internal/coerce"
	"github.com/wippyai/jsonbind/errors"
)

type stringHandler struct{ BaseHandler }

func (h stringHandler) Encode(enc *Encoder, v reflect.Value) error {
	enc.Quote(v.String())
	return nil
}

func (h stringHandler) str(s string) (reflect.Value, error) {
	return reflect.ValueOf(s).Convert(h.Type), nil
}

// DecodeObject keeps the raw text of the object.
func (h stringHandler) DecodeObject(dec *Decoder) (reflect.Value, error) {
	raw, err := dec.Raw()
	if err != nil {
		return reflect.Value{}, err
	}
	return h.str(raw)
}

// DecodeArray keeps the raw text of the array.
func (h stringHandler) DecodeArray(dec *Decoder) (reflect.Value, error) {
	raw, err := dec.Raw()
	if err != nil {
		return reflect.Value{}, err
	}
	return h.str(raw)
}

func (h stringHandler) DecodeString(_ *Decoder, s string) (reflect.Value, error) {
	return h.str(s)
}

func (h stringHandler) DecodeNumber(_ *Decoder, n Number) (reflect.Value, error) {
	return h.str(string(n))
}

func (h stringHandler) DecodeBool(_ *Decoder, b bool) (reflect.Value, error) {
	return h.str(strconv.FormatBool(b))
}

type boolHandler struct{ BaseHandler }

func (h boolHandler) Encode(enc *Encoder, v reflect.Value) error {
	enc.WriteString(strconv.FormatBool(v.Bool()))
	return nil
}

func (h boolHandler) of(b bool) reflect.Value {
	return reflect.ValueOf(b).Convert(h.Type)
}

func (h boolHandler) DecodeBool(_ *Decoder, b bool) (reflect.Value, error) {
	return h.of(b), nil
}

func (h boolHandler) DecodeString(_ *Decoder, s string) (reflect.Value, error) {
	return h.of(strings.EqualFold(s, "true")), nil
}

func (h boolHandler) DecodeNumber(_ *Decoder, n Number) (reflect.Value, error) {
	f, err := n.Float64()
	if err != nil && !math.IsInf(f, 0) {
		return reflect.Value{}, errors.Wrap(errors.PhaseDecode, errors.KindMalformedInput, err, "number "+string(n))
	}
	return h.of(f != 0), nil
}

type charHandler struct{ BaseHandler }

func (h charHandler) Encode(enc *Encoder, v reflect.Value) error {
	enc.WriteString(strconv.FormatInt(v.Int(), 10))
	return nil
}

func (h charHandler) of(r rune) reflect.Value {
	return reflect.ValueOf(Char(r)).Convert(h.Type)
}

func (h charHandler) DecodeBool(_ *Decoder, b bool) (reflect.Value, error) {
	if b {
		return h.of('t'), nil
	}
	return h.of('f'), nil
}

func (h charHandler) DecodeString(_ *Decoder, s string) (reflect.Value, error) {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return reflect.Value{}, errors.Wrap(errors.PhaseDecode, errors.KindTypeMismatch, err, "character code point "+strconv.Quote(s))
	}
	return h.of(rune(i)), nil
}

// DecodeNumber keeps the low 16 bits of the code point.
func (h charHandler) DecodeNumber(_ *Decoder, n Number) (reflect.Value, error) {
	f, err := n.Float64()
	if err != nil {
		return reflect.Value{}, errors.Overflow(errors.PhaseDecode, string(n), h.Type.String())
	}
	return h.of(rune(int64(f) & 0xFFFF)), nil
}

// numberHandler is bound to one fixed-width numeric kind.
type numberHandler struct {
	BaseHandler
	bits int
	kind reflect.Kind
}

func newNumberHandler(t reflect.Type) numberHandler {
	return numberHandler{BaseHandler: BaseHandler{t}, bits: t.Bits(), kind: t.Kind()}
}

func (h numberHandler) Encode(enc *Encoder, v reflect.Value) error {
	switch {
	case v.CanInt():
		enc.WriteString(strconv.FormatInt(v.Int(), 10))
	case v.CanUint():
		enc.WriteString(strconv.FormatUint(v.Uint(), 10))
	default:
		s, err := formatFloat(v.Float(), h.bits)
		if err != nil {
			return err
		}
		enc.WriteString(s)
	}
	return nil
}

// formatFloat renders f in its shortest round-tripping form, in plain
// notation for moderate magnitudes and exponent notation otherwise. A
// trailing ".0" never appears.
func formatFloat(f float64, bits int) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", errors.Overflow(errors.PhaseEncode, f, "JSON number")
	}
	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	s := strconv.FormatFloat(f, format, -1, bits)
	if format == 'e' {
		// 1e-07 -> 1e-7
		if n := len(s); n >= 4 && s[n-4] == 'e' && s[n-3] == '-' && s[n-2] == '0' {
			s = s[:n-2] + s[n-1:]
		}
	}
	return strings.TrimSuffix(s, ".0"), nil
}

// set narrows src into a new value of the handler's type.
func (h numberHandler) set(src any) (reflect.Value, error) {
	v := reflect.New(h.Type).Elem()
	switch {
	case v.CanInt():
		i, ok := coerce.ToInt(src, h.bits)
		if !ok {
			return reflect.Value{}, errors.Overflow(errors.PhaseDecode, src, h.Type.String())
		}
		v.SetInt(i)
	case v.CanUint():
		u, ok := coerce.ToUint(src, h.bits)
		if !ok {
			return reflect.Value{}, errors.Overflow(errors.PhaseDecode, src, h.Type.String())
		}
		v.SetUint(u)
	default:
		f, ok := coerce.ToFloat(src, h.bits)
		if !ok {
			return reflect.Value{}, errors.Overflow(errors.PhaseDecode, src, h.Type.String())
		}
		v.SetFloat(f)
	}
	return v, nil
}

func (h numberHandler) DecodeNumber(_ *Decoder, n Number) (reflect.Value, error) {
	src, err := n.exact()
	if err != nil {
		return reflect.Value{}, errors.Overflow(errors.PhaseDecode, string(n), h.Type.String())
	}
	return h.set(src)
}

func (h numberHandler) DecodeString(dec *Decoder, s string) (reflect.Value, error) {
	s = strings.TrimSpace(s)
	if _, err := strconv.ParseFloat(s, 64); err != nil && !isRangeErr(err) {
		return reflect.Value{}, errors.Wrap(errors.PhaseDecode, errors.KindTypeMismatch, err, "number "+strconv.Quote(s))
	}
	return h.DecodeNumber(dec, Number(s))
}

func (h numberHandler) DecodeBool(_ *Decoder, b bool) (reflect.Value, error) {
	return h.set(b)
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

type bigIntHandler struct{ BaseHandler }

func (h bigIntHandler) Encode(enc *Encoder, v reflect.Value) error {
	if v.IsNil() {
		enc.WriteString("null")
		return nil
	}
	enc.WriteString(v.Interface().(*big.Int).String())
	return nil
}

func (h bigIntHandler) DecodeNumber(_ *Decoder, n Number) (reflect.Value, error) {
	if !n.IsFloat() {
		if i, ok := new(big.Int).SetString(string(n), 10); ok {
			return reflect.ValueOf(i), nil
		}
	}
	f, _, err := big.ParseFloat(string(n), 10, 512, big.ToZero)
	if err != nil {
		return reflect.Value{}, errors.Wrap(errors.PhaseDecode, errors.KindMalformedInput, err, "number "+string(n))
	}
	i, _ := f.Int(nil)
	return reflect.ValueOf(i), nil
}

func (h bigIntHandler) DecodeString(dec *Decoder, s string) (reflect.Value, error) {
	return h.DecodeNumber(dec, Number(strings.TrimSpace(s)))
}

func (h bigIntHandler) DecodeBool(_ *Decoder, b bool) (reflect.Value, error) {
	if b {
		return reflect.ValueOf(big.NewInt(1)), nil
	}
	return reflect.ValueOf(new(big.Int)), nil
}

type bigFloatHandler struct{ BaseHandler }

func (h bigFloatHandler) Encode(enc *Encoder, v reflect.Value) error {
	if v.IsNil() {
		enc.WriteString("null")
		return nil
	}
	f := v.Interface().(*big.Float)
	if f.IsInf() {
		return errors.Overflow(errors.PhaseEncode, f, "JSON number")
	}
	enc.WriteString(strings.TrimSuffix(f.Text('g', -1), ".0"))
	return nil
}

func (h bigFloatHandler) DecodeNumber(_ *Decoder, n Number) (reflect.Value, error) {
	f, _, err := big.ParseFloat(string(n), 10, bigFloatPrec(string(n)), big.ToNearestEven)
	if err != nil {
		return reflect.Value{}, errors.Wrap(errors.PhaseDecode, errors.KindMalformedInput, err, "number "+string(n))
	}
	return reflect.ValueOf(f), nil
}

func (h bigFloatHandler) DecodeString(dec *Decoder, s string) (reflect.Value, error) {
	return h.DecodeNumber(dec, Number(strings.TrimSpace(s)))
}

func (h bigFloatHandler) DecodeBool(_ *Decoder, b bool) (reflect.Value, error) {
	if b {
		return reflect.ValueOf(big.NewFloat(1)), nil
	}
	return reflect.ValueOf(new(big.Float)), nil
}

// bigFloatPrec gives decoded decimals at least float64 precision and
// enough mantissa bits for every digit of the literal.
func bigFloatPrec(s string) uint {
	digits := 0
	for _, c := range s {
		if c == 'e' || c == 'E' {
			break
		}
		if c >= '0' && c <= '9' {
			digits++
		}
	}
	return max(53, uint(math.Ceil(float64(digits)*math.Log2(10))))
}
