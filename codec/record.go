package codec

import (
	stderrors "errors"
	"fmt"
	"go/token"
	"io"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/wippyai/jsonbind/errors"
)

type recordComponent struct {
	typ     reflect.Type
	name    string
	field   []int
	method  int
	ptrRecv bool
	deref   bool
}

// get reads the component from a record value.
func (c *recordComponent) get(v reflect.Value) reflect.Value {
	if c.field != nil {
		if c.deref {
			v = v.Elem()
		}
		return v.FieldByIndex(c.field)
	}
	if c.ptrRecv {
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		v = p
	}
	return v.Method(c.method).Call(nil)[0]
}

type recordInfo struct {
	ctor       reflect.Value
	components []recordComponent
	catchAll   int
	withError  bool
}

// RegisterRecord declares an immutable aggregate built by a canonical
// constructor. ctor must be a function returning T or (T, error); its
// parameters, in order, are the named components. Each component is read
// back through an exported method or field of the same name (first letter
// upper-cased), and a trailing underscore on a Go keyword is dropped from
// the member name, so "type_" becomes member "type" read by Type().
//
// A component named "__extra" of a map type collects unknown members.
func RegisterRecord(ctor any, components ...string) error {
	cv := reflect.ValueOf(ctor)
	if !cv.IsValid() || cv.Kind() != reflect.Func {
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("record constructor must be a function, got %T", ctor))
	}
	ct := cv.Type()
	switch {
	case ct.IsVariadic():
		return errors.InvalidInput(errors.PhaseConfig, "record constructor cannot be variadic")
	case ct.NumIn() != len(components):
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("record constructor takes %d arguments, %d components named", ct.NumIn(), len(components)))
	case ct.NumOut() != 1 && !(ct.NumOut() == 2 && ct.Out(1) == errType):
		return errors.InvalidInput(errors.PhaseConfig, "record constructor must return T or (T, error)")
	}

	rt := ct.Out(0)
	info := &recordInfo{ctor: cv, withError: ct.NumOut() == 2, catchAll: -1}
	for i, c := range components {
		comp, err := recordAccessor(rt, c, ct.In(i))
		if err != nil {
			return err
		}
		if comp.name == catchAllName && comp.typ.Kind() == reflect.Map && comp.typ.Key().Kind() == reflect.String {
			info.catchAll = i
		}
		info.components = append(info.components, comp)
	}

	registry.mu.Lock()
	registry.records[rt] = info
	registry.mu.Unlock()
	handlers.Delete(rt)
	return nil
}

// recordMember maps a component name to its member name.
func recordMember(component string) string {
	if base, ok := strings.CutSuffix(component, "_"); ok && token.IsKeyword(base) {
		return base
	}
	return component
}

func exportedName(s string) string {
	s = strings.TrimLeft(s, "_")
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}

func recordAccessor(rt reflect.Type, component string, want reflect.Type) (recordComponent, error) {
	comp := recordComponent{typ: want, name: recordMember(component)}
	accessor := exportedName(comp.name)

	getter := func(m reflect.Method) bool {
		return m.Type.NumIn() == 1 && m.Type.NumOut() == 1 && m.Type.Out(0) == want
	}
	if m, ok := rt.MethodByName(accessor); ok && getter(m) {
		comp.method = m.Index
		return comp, nil
	}
	if rt.Kind() != reflect.Pointer {
		if m, ok := reflect.PointerTo(rt).MethodByName(accessor); ok && getter(m) {
			comp.method, comp.ptrRecv = m.Index, true
			return comp, nil
		}
	}

	st := rt
	if st.Kind() == reflect.Pointer {
		st, comp.deref = st.Elem(), true
	}
	if st.Kind() == reflect.Struct {
		if f, ok := st.FieldByName(accessor); ok && f.IsExported() && f.Type == want {
			comp.field = f.Index
			return comp, nil
		}
	}
	return comp, errors.Unconvertible(errors.PhaseConfig, rt.String(),
		fmt.Sprintf("no accessor %s() %v for record component %q", accessor, want, component))
}

// recordHandler maps an immutable aggregate to a JSON object. Components
// keep their declaration order.
type recordHandler struct {
	BaseHandler
	info *recordInfo
}

func (h recordHandler) Encode(enc *Encoder, v reflect.Value) error {
	if isNull(v) {
		enc.WriteString("null")
		return nil
	}
	ms := make([]member, 0, len(h.info.components))
	for i := range h.info.components {
		c := &h.info.components[i]
		if strings.HasPrefix(c.name, reservedPrefix) {
			continue
		}
		val := c.get(v)
		if enc.codec.ignoreNull && isNull(val) {
			continue
		}
		ms = append(ms, member{typ: c.typ, value: val, name: c.name})
	}
	return writeObject(enc, ms)
}

// DecodeObject stages constructor arguments by position. In promiscuous
// mode a record cut short by the end of input is still constructed from
// what was read.
func (h recordHandler) DecodeObject(dec *Decoder) (reflect.Value, error) {
	staged := getValues()
	defer putValues(staged)
	for _, c := range h.info.components {
		*staged = append(*staged, reflect.Zero(c.typ))
	}
	args := *staged

	err := dec.Members(func(name string) error {
		for i := range h.info.components {
			c := &h.info.components[i]
			if c.name != name {
				continue
			}
			v, err := dec.Decode(c.typ)
			if err != nil {
				return errors.WithPath(errors.PhaseDecode, err, name)
			}
			args[i] = v
			return nil
		}
		if h.info.catchAll < 0 {
			_, err := dec.Decode(anyType)
			return errors.WithPath(errors.PhaseDecode, err, name)
		}
		m := args[h.info.catchAll]
		if m.IsNil() {
			m = reflect.MakeMap(m.Type())
			args[h.info.catchAll] = m
		}
		v, err := dec.Decode(m.Type().Elem())
		if err != nil {
			return errors.WithPath(errors.PhaseDecode, err, name)
		}
		m.SetMapIndex(reflect.ValueOf(name).Convert(m.Type().Key()), v)
		return nil
	})
	if err != nil {
		if !dec.codec.promiscuous || !stderrors.Is(err, io.ErrUnexpectedEOF) {
			return reflect.Value{}, err
		}
		n := dec.codec.recovered.Add(1)
		dec.codec.log().Warn("recovered partial record at end of input",
			zap.Stringer("type", h.Type),
			zap.Int64("recovered", n),
			zap.Error(err))
	}

	out := h.info.ctor.Call(args)
	if h.info.withError {
		if cerr, _ := out[1].Interface().(error); cerr != nil {
			return reflect.Value{}, errors.Wrap(errors.PhaseDecode, errors.KindUnconvertible, cerr, "construct "+h.Type.String())
		}
	}
	return out[0], nil
}
