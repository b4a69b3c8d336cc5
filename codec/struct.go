package codec

import (
	"reflect"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/jsonbind/errors"
)

const (
	// reservedPrefix marks member names that are never emitted.
	reservedPrefix = "__"
	// catchAllName is the member that absorbs unknown members on decode.
	catchAllName = "__extra"
)

type structField struct {
	typ   reflect.Type
	def   reflect.Value
	name  string
	index []int
}

// structHandler maps a mutable struct to a JSON object. Fields are kept
// sorted by member name, which fixes the encode order and lets decode stop
// scanning early.
//
// The template is only read. Every decode starts from a fresh value so
// decoded structs never share maps or pointers with it.
type structHandler struct {
	BaseHandler
	template  reflect.Value
	catchAll  *structField
	fields    []structField
	defaulter bool
}

func newStructHandler(t reflect.Type) (Handler, error) {
	h := &structHandler{BaseHandler: BaseHandler{t}}
	_, h.defaulter = reflect.New(t).Interface().(Defaulter)
	h.template = h.fresh()

	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || !flattened(t, f.Index) {
			continue
		}
		name, tagged, ok := fieldName(f)
		if !ok {
			continue
		}
		if f.Anonymous && !tagged && structOrPointer(f.Type) {
			continue
		}
		def, ok := fieldValue(h.template, f.Index)
		if !ok {
			def = reflect.Zero(f.Type)
		}
		sf := structField{
			typ:   f.Type,
			def:   def,
			name:  name,
			index: f.Index,
		}
		if name == catchAllName && f.Type.Kind() == reflect.Map && f.Type.Key().Kind() == reflect.String {
			h.catchAll = &sf
			continue
		}
		h.fields = append(h.fields, sf)
	}
	slices.SortFunc(h.fields, func(a, b structField) int { return strings.Compare(a.name, b.name) })
	return h, nil
}

// fresh returns a new value holding the defaults.
func (h *structHandler) fresh() reflect.Value {
	p := reflect.New(h.Type)
	if h.defaulter {
		p.Interface().(Defaulter).Default()
	}
	return p.Elem()
}

func structOrPointer(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// flattened reports whether the field at index is reachable through
// untagged embedded structs or struct pointers only. Fields promoted
// through tagged embedded structs are not members of the object.
func flattened(t reflect.Type, index []int) bool {
	for _, i := range index[:len(index)-1] {
		f := t.Field(i)
		if !f.Anonymous || !structOrPointer(f.Type) {
			return false
		}
		if _, tagged, _ := fieldName(f); tagged {
			return false
		}
		t = f.Type
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
	}
	return true
}

// fieldValue walks index from v. It reports false when a nil embedded
// pointer is on the way.
func fieldValue(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

// settableField walks index from v, allocating nil embedded pointers. A nil
// embedded pointer to an unexported struct type cannot be allocated, so
// fields promoted through it are immutable.
func settableField(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !v.CanSet() {
					return reflect.Value{}, false
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, v.CanSet()
}

// fieldName returns the member name of f from its json tag or Go name.
func fieldName(f reflect.StructField) (name string, tagged, ok bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false, false
	}
	name, _, _ = strings.Cut(tag, ",")
	if name == "" {
		return f.Name, false, true
	}
	return name, true, true
}

// lookup scans the sorted fields and gives up once it has passed name.
func (h *structHandler) lookup(name string) *structField {
	for i := range h.fields {
		switch c := strings.Compare(h.fields[i].name, name); {
		case c == 0:
			return &h.fields[i]
		case c > 0:
			return nil
		}
	}
	return nil
}

// Encode writes the fields that differ from the template, or every field
// when the encoder writes defaults.
func (h *structHandler) Encode(enc *Encoder, v reflect.Value) error {
	ms := make([]member, 0, len(h.fields))
	for i := range h.fields {
		f := &h.fields[i]
		if strings.HasPrefix(f.name, reservedPrefix) {
			continue
		}
		fv, ok := fieldValue(v, f.index)
		if !ok {
			continue
		}
		if !enc.writeDefaults && reflect.DeepEqual(fv.Interface(), f.def.Interface()) {
			continue
		}
		ms = append(ms, member{typ: f.typ, value: fv, name: f.name})
	}
	return writeObject(enc, ms)
}

// DecodeObject starts from fresh defaults so absent members keep them.
func (h *structHandler) DecodeObject(dec *Decoder) (reflect.Value, error) {
	out := h.fresh()

	err := dec.Members(func(name string) error {
		f := h.lookup(name)
		if f == nil {
			return h.unknown(dec, out, name)
		}
		fv, ok := settableField(out, f.index)
		if !ok {
			return errors.FieldImmutable(h.Type.String(), name)
		}
		v, err := dec.Decode(f.typ)
		if err != nil {
			return errors.WithPath(errors.PhaseDecode, err, name)
		}
		fv.Set(v)
		return nil
	})
	if err != nil {
		return reflect.Value{}, err
	}
	return out, nil
}

// unknown routes a member with no field: into the catch-all map if the
// struct has one, to an error in strict mode, and to the session's extra
// map otherwise.
func (h *structHandler) unknown(dec *Decoder, out reflect.Value, name string) error {
	if h.catchAll != nil {
		m, ok := settableField(out, h.catchAll.index)
		if !ok {
			return errors.FieldImmutable(h.Type.String(), catchAllName)
		}
		if m.IsNil() {
			m.Set(reflect.MakeMap(m.Type()))
		}
		v, err := dec.Decode(m.Type().Elem())
		if err != nil {
			return errors.WithPath(errors.PhaseDecode, err, name)
		}
		m.SetMapIndex(reflect.ValueOf(name).Convert(m.Type().Key()), v)
		return nil
	}
	if dec.strict {
		return errors.UnknownField(h.Type.String(), name)
	}
	v, err := dec.Decode(anyType)
	if err != nil {
		return errors.WithPath(errors.PhaseDecode, err, name)
	}
	key := h.Type.String() + "." + name
	dec.stash(key, v.Interface())
	dec.codec.log().Debug("unknown member kept in session extra", zap.String("key", key))
	return nil
}
