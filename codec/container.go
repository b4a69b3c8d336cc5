package codec

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/wippyai/jsonbind/codec/internal/types"
	"github.com/wippyai/jsonbind/collections"
	"github.com/wippyai/jsonbind/errors"
)

func elemPath(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

// arrayHandler serves fixed-length Go arrays. Elements are separated by
// commas only: pretty-printing indents the array as a whole.
type arrayHandler struct {
	BaseHandler
	elem reflect.Type
	n    int
}

func (h arrayHandler) Encode(enc *Encoder, v reflect.Value) error {
	if h.n == 0 {
		enc.WriteString("[]")
		return nil
	}
	enc.WriteRune('[')
	enc.PushIndent()
	for i := 0; i < h.n; i++ {
		if i > 0 {
			enc.WriteRune(',')
		}
		if err := enc.Encode(v.Index(i), h.elem); err != nil {
			return errors.WithPath(errors.PhaseEncode, err, elemPath(i))
		}
	}
	enc.PopIndent()
	enc.WriteRune(']')
	return nil
}

// DecodeArray stages the elements and materializes the array. Missing
// trailing elements stay zero.
func (h arrayHandler) DecodeArray(dec *Decoder) (reflect.Value, error) {
	staged := getValues()
	defer putValues(staged)
	err := dec.Elements(func(i int) error {
		if i >= h.n {
			return errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
				Path(elemPath(i)).
				GoType(h.Type.String()).
				Detail("more than %d elements", h.n).
				Build()
		}
		v, err := dec.Decode(h.elem)
		if err != nil {
			return errors.WithPath(errors.PhaseDecode, err, elemPath(i))
		}
		*staged = append(*staged, v)
		return nil
	})
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.New(h.Type).Elem()
	for i, v := range *staged {
		out.Index(i).Set(v)
	}
	return out, nil
}

type collectionFlavor uint8

const (
	flavorNative collectionFlavor = iota
	flavorSet
	flavorContainer
	flavorSyncMap
)

// collectionHandler serves slices, map-backed sets and collections.Sequence
// implementations. Pretty-printed output puts every element on its own line.
type collectionHandler struct {
	BaseHandler
	elem   reflect.Type
	flavor collectionFlavor
}

func newCollectionHandler(d *types.Descriptor) collectionHandler {
	h := collectionHandler{BaseHandler: BaseHandler{d.GoType}, elem: d.Elem}
	switch {
	case d.Set:
		h.flavor = flavorSet
	case d.GoType.Kind() != reflect.Slice:
		h.flavor = flavorContainer
		h.elem = anyType
	}
	return h
}

func (h collectionHandler) elements(v reflect.Value) []reflect.Value {
	switch h.flavor {
	case flavorSet:
		keys := v.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return collections.Compare(a.Interface(), b.Interface())
		})
		return keys
	case flavorContainer:
		var out []reflect.Value
		v.Interface().(collections.Sequence).Range(func(x any) bool {
			out = append(out, anyValue(x))
			return true
		})
		return out
	default:
		out := make([]reflect.Value, v.Len())
		for i := range out {
			out[i] = v.Index(i)
		}
		return out
	}
}

func (h collectionHandler) Encode(enc *Encoder, v reflect.Value) error {
	if isNull(v) {
		enc.WriteString("null")
		return nil
	}
	elems := h.elements(v)
	if len(elems) == 0 {
		enc.WriteString("[]")
		return nil
	}
	enc.WriteRune('[')
	enc.PushIndent()
	for i, e := range elems {
		if i > 0 {
			enc.WriteRune(',')
			enc.Newline()
		}
		if err := enc.Encode(e, h.elem); err != nil {
			return errors.WithPath(errors.PhaseEncode, err, elemPath(i))
		}
	}
	enc.PopIndent()
	enc.WriteRune(']')
	return nil
}

func (h collectionHandler) DecodeArray(dec *Decoder) (reflect.Value, error) {
	var out reflect.Value
	var seq collections.Sequence
	switch h.flavor {
	case flavorSet:
		out = reflect.MakeMap(h.Type)
	case flavorContainer:
		out = reflect.New(h.Type.Elem())
		seq = out.Interface().(collections.Sequence)
	default:
		out = reflect.MakeSlice(h.Type, 0, 0)
	}
	empty := reflect.Value{}
	if h.flavor == flavorSet {
		empty = reflect.Zero(h.Type.Elem())
	}

	err := dec.Elements(func(i int) error {
		v, err := dec.Decode(h.elem)
		if err != nil {
			return errors.WithPath(errors.PhaseDecode, err, elemPath(i))
		}
		switch h.flavor {
		case flavorSet:
			out.SetMapIndex(v, empty)
		case flavorContainer:
			seq.Append(v.Interface())
		default:
			out = reflect.Append(out, v)
		}
		return nil
	})
	if err != nil {
		return reflect.Value{}, err
	}
	return out, nil
}

// mapHandler serves Go maps, collections.Map implementations and sync.Map.
type mapHandler struct {
	BaseHandler
	key    reflect.Type
	value  reflect.Type
	flavor collectionFlavor
}

func newMapHandler(d *types.Descriptor) mapHandler {
	h := mapHandler{BaseHandler: BaseHandler{d.GoType}, key: d.Key, value: d.Elem}
	switch {
	case d.GoType == syncMapType:
		h.flavor = flavorSyncMap
	case d.GoType.Kind() != reflect.Map:
		h.flavor = flavorContainer
	}
	if h.key == nil {
		h.key, h.value = anyType, anyType
	}
	return h
}

type member struct {
	typ   reflect.Type
	value reflect.Value
	name  string
}

// memberName renders a key. String-like and untyped keys are used as they
// are; any other key is encoded and its JSON text becomes the name.
func (h mapHandler) memberName(c *Codec, k reflect.Value) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if h.key == anyType {
		if k.Kind() == reflect.Interface {
			k = k.Elem()
		}
		if !k.IsValid() {
			return "null", nil
		}
		if k.Kind() == reflect.String {
			return k.String(), nil
		}
		return fmt.Sprint(k.Interface()), nil
	}
	return c.encodeText(k, h.key)
}

func (h mapHandler) members(c *Codec, v reflect.Value) ([]member, error) {
	var out []member
	var err error
	add := func(k, val reflect.Value) bool {
		var name string
		if name, err = h.memberName(c, k); err != nil {
			return false
		}
		out = append(out, member{name: name, value: val, typ: h.value})
		return true
	}
	switch h.flavor {
	case flavorContainer:
		v.Interface().(collections.Map).Range(func(k, val any) bool {
			return add(anyValue(k), anyValue(val))
		})
		return out, err
	case flavorSyncMap:
		v.Interface().(*sync.Map).Range(func(k, val any) bool {
			return add(anyValue(k), anyValue(val))
		})
	default:
		iter := v.MapRange()
		for iter.Next() {
			if !add(iter.Key(), iter.Value()) {
				break
			}
		}
	}
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b member) int { return strings.Compare(a.name, b.name) })
	return out, nil
}

func (h mapHandler) Encode(enc *Encoder, v reflect.Value) error {
	if isNull(v) {
		enc.WriteString("null")
		return nil
	}
	ms, err := h.members(enc.codec, v)
	if err != nil {
		return err
	}
	if enc.codec.ignoreNull {
		ms = slices.DeleteFunc(ms, func(m member) bool { return isNull(m.value) })
	}
	return writeObject(enc, ms)
}

// writeObject emits members in the given order, one per line when
// pretty-printing.
func writeObject(enc *Encoder, ms []member) error {
	if len(ms) == 0 {
		enc.WriteString("{}")
		return nil
	}
	enc.WriteRune('{')
	enc.PushIndent()
	for i, m := range ms {
		if i > 0 {
			enc.WriteRune(',')
			enc.Newline()
		}
		enc.Quote(m.name)
		enc.WriteRune(':')
		if err := enc.Encode(m.value, m.typ); err != nil {
			return errors.WithPath(errors.PhaseEncode, err, m.name)
		}
	}
	enc.PopIndent()
	enc.WriteRune('}')
	return nil
}

func (h mapHandler) decodeKey(dec *Decoder, name string) (reflect.Value, error) {
	switch {
	case h.key.Kind() == reflect.String:
		return reflect.ValueOf(name).Convert(h.key), nil
	case h.key == anyType:
		return anyValue(name), nil
	default:
		return dec.codec.decodeText(name, h.key)
	}
}

func (h mapHandler) DecodeObject(dec *Decoder) (reflect.Value, error) {
	var out reflect.Value
	var put func(k, v reflect.Value)
	switch h.flavor {
	case flavorContainer:
		out = reflect.New(h.Type.Elem())
		m := out.Interface().(collections.Map)
		put = func(k, v reflect.Value) { m.Put(k.Interface(), v.Interface()) }
	case flavorSyncMap:
		m := &sync.Map{}
		out = reflect.ValueOf(m)
		put = func(k, v reflect.Value) { m.Store(k.Interface(), v.Interface()) }
	default:
		out = reflect.MakeMap(h.Type)
		put = func(k, v reflect.Value) { out.SetMapIndex(k, v) }
	}

	err := dec.Members(func(name string) error {
		k, err := h.decodeKey(dec, name)
		if err != nil {
			return errors.WithPath(errors.PhaseDecode, err, name)
		}
		v, err := dec.Decode(h.value)
		if err != nil {
			return errors.WithPath(errors.PhaseDecode, err, name)
		}
		if dec.codec.ignoreNull && isNull(v) {
			return nil
		}
		put(k, v)
		return nil
	})
	if err != nil {
		return reflect.Value{}, err
	}
	return out, nil
}
