package codec

import (
	"encoding"
	"fmt"
	"math/big"
	"reflect"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/jsonbind/codec/internal/types"
	"github.com/wippyai/jsonbind/collections"
	"github.com/wippyai/jsonbind/errors"
)

// handlers caches one Handler per reflect.Type for the life of the process.
// Construction is idempotent: when two goroutines race, the first stored
// handler wins and the other is dropped.
var handlers sync.Map // reflect.Type -> Handler

var (
	stringType      = reflect.TypeFor[string]()
	bigIntType      = reflect.TypeFor[*big.Int]()
	bigFloatType    = reflect.TypeFor[*big.Float]()
	syncMapType     = reflect.TypeFor[*sync.Map]()
	sequenceType    = reflect.TypeFor[collections.Sequence]()
	mapType         = reflect.TypeFor[collections.Map]()
	unmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// builtins never need reflection and are shared by every codec.
var builtins = indexHandlers(
	stringHandler{BaseHandler{stringType}},
	boolHandler{BaseHandler{reflect.TypeFor[bool]()}},
	charHandler{BaseHandler{reflect.TypeFor[Char]()}},
	bytesHandler{BaseHandler{reflect.TypeFor[[]byte]()}},
	regexpHandler{BaseHandler{reflect.TypeFor[*regexp.Regexp]()}},
	timeHandler{BaseHandler{reflect.TypeFor[time.Time]()}},
	fileHandler{BaseHandler{reflect.TypeFor[File]()}},
	uuidHandler{BaseHandler{reflect.TypeFor[uuid.UUID]()}},
	untypedHandler{BaseHandler{anyType}},
)

func indexHandlers(hs ...Handler) map[reflect.Type]Handler {
	m := make(map[reflect.Type]Handler, len(hs))
	for _, h := range hs {
		m[h.(interface{ goType() reflect.Type }).goType()] = h
	}
	return m
}

// defaultImplementations is the substitution table for interface-typed
// containers, in order of preference.
var defaultImplementations = []reflect.Type{
	reflect.TypeFor[*collections.List](),
	reflect.TypeFor[*collections.LinkedList](),
	reflect.TypeFor[*collections.SyncList](),
	reflect.TypeFor[*collections.OrderedSet](),
	reflect.TypeFor[*collections.SortedSet](),
	reflect.TypeFor[*collections.SyncSet](),
	reflect.TypeFor[*collections.OrderedMap](),
	reflect.TypeFor[*collections.SortedMap](),
	reflect.TypeFor[*collections.HashMap](),
	reflect.TypeFor[*collections.SyncMap](),
}

type registrations struct {
	mu      sync.RWMutex
	enums   map[reflect.Type]*enumInfo
	records map[reflect.Type]*recordInfo
	parsers map[reflect.Type]reflect.Value
	impls   []reflect.Type
}

var registry = registrations{
	enums:   make(map[reflect.Type]*enumInfo),
	records: make(map[reflect.Type]*recordInfo),
	parsers: make(map[reflect.Type]reflect.Value),
}

type enumInfo struct {
	names  []string
	values []reflect.Value
}

// RegisterEnum declares the variants of an enumeration type. Values encode
// as their String form and decode by exact name match.
//
// Register types before their first use; registering again replaces the
// previous variants.
func RegisterEnum[T fmt.Stringer](values ...T) {
	t := reflect.TypeFor[T]()
	info := &enumInfo{}
	for _, v := range values {
		info.names = append(info.names, v.String())
		info.values = append(info.values, reflect.ValueOf(v))
	}
	registry.mu.Lock()
	registry.enums[t] = info
	registry.mu.Unlock()
	handlers.Delete(t)
}

// RegisterParser binds a type to a parse function of the form
// func(string) (T, error). Values of T decode from JSON strings through
// parse and encode through MarshalText, String or fmt.Sprint.
func RegisterParser(parse any) error {
	ft := reflect.TypeOf(parse)
	if ft == nil || ft.Kind() != reflect.Func || ft.IsVariadic() ||
		ft.NumIn() != 1 || ft.In(0) != stringType ||
		ft.NumOut() != 2 || ft.Out(1) != errType {
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("parser must be func(string) (T, error), got %v", ft))
	}
	t := ft.Out(0)
	registry.mu.Lock()
	registry.parsers[t] = reflect.ValueOf(parse)
	registry.mu.Unlock()
	handlers.Delete(t)
	return nil
}

// RegisterImplementation adds concrete as a candidate for decoding values
// declared with an interface type it satisfies. Registered candidates are
// tried before the built-in ones, most recent first.
func RegisterImplementation(iface, concrete reflect.Type) error {
	if iface == nil || iface.Kind() != reflect.Interface {
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("%v is not an interface type", iface))
	}
	if concrete == nil || concrete.Kind() == reflect.Interface || !concrete.Implements(iface) {
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("%v does not implement %v", concrete, iface))
	}
	registry.mu.Lock()
	registry.impls = append([]reflect.Type{concrete}, registry.impls...)
	registry.mu.Unlock()
	return nil
}

// implementationFor picks the first candidate that satisfies iface.
func implementationFor(iface reflect.Type) (reflect.Type, error) {
	registry.mu.RLock()
	user := registry.impls
	registry.mu.RUnlock()
	for _, c := range user {
		if c.Implements(iface) {
			return c, nil
		}
	}
	for _, c := range defaultImplementations {
		if c.Implements(iface) {
			return c, nil
		}
	}
	return nil, errors.UnsupportedContainer(iface.String())
}

// describe classifies a Go type. Registered types come first, then the
// numeric family, text-convertible types, container capabilities, the
// kind switch and finally plain structs.
func describe(t reflect.Type) (*types.Descriptor, error) {
	registry.mu.RLock()
	_, isEnum := registry.enums[t]
	_, isRecord := registry.records[t]
	_, hasParser := registry.parsers[t]
	registry.mu.RUnlock()

	switch {
	case isEnum:
		return types.Of(types.KindEnum, t), nil
	case isRecord:
		return types.Of(types.KindRecord, t), nil
	case hasParser:
		return types.Of(types.KindOpaque, t), nil
	case isNumeric(t.Kind()), t == bigIntType, t == bigFloatType:
		return types.Scalar(t), nil
	case t.Kind() != reflect.Interface && t.Kind() != reflect.Pointer &&
		reflect.PointerTo(t).Implements(unmarshalerType):
		return types.Of(types.KindOpaque, t), nil
	case t == syncMapType:
		return types.Map(t, nil, nil), nil
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		if t.Implements(sequenceType) {
			return types.List(t, nil), nil
		}
		if t.Implements(mapType) {
			return types.Map(t, nil, nil), nil
		}
	}

	switch t.Kind() {
	case reflect.Bool, reflect.String:
		return types.Scalar(t), nil
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return types.Of(types.KindBytes, t), nil
		}
		return types.Array(t), nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return types.Of(types.KindBytes, t), nil
		}
		return types.List(t, t.Elem()), nil
	case reflect.Map:
		if v := t.Elem(); v.Kind() == reflect.Struct && v.NumField() == 0 {
			d := types.List(t, t.Key())
			d.Set = true
			return d, nil
		}
		return types.Map(t, t.Key(), t.Elem()), nil
	case reflect.Interface:
		return types.Unresolved(t), nil
	case reflect.Pointer:
		return &types.Descriptor{Kind: types.KindPointer, GoType: t, Elem: t.Elem()}, nil
	case reflect.Struct:
		return types.Of(types.KindStruct, t), nil
	}
	return nil, errors.Unconvertible(errors.PhaseResolve, t.String(), "no handler for "+t.Kind().String()+" values")
}

func isNumeric(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64
}

func newHandler(d *types.Descriptor) (Handler, error) {
	t := d.GoType
	base := BaseHandler{t}
	switch d.Kind {
	case types.KindScalar:
		switch {
		case t == bigIntType:
			return bigIntHandler{base}, nil
		case t == bigFloatType:
			return bigFloatHandler{base}, nil
		case t.Kind() == reflect.Bool:
			return boolHandler{base}, nil
		case t.Kind() == reflect.String:
			return stringHandler{base}, nil
		default:
			return newNumberHandler(t), nil
		}
	case types.KindBytes:
		return bytesHandler{base}, nil
	case types.KindArray:
		return arrayHandler{BaseHandler: base, elem: d.Elem, n: d.Len}, nil
	case types.KindList:
		return newCollectionHandler(d), nil
	case types.KindMap:
		return newMapHandler(d), nil
	case types.KindEnum:
		registry.mu.RLock()
		info := registry.enums[t]
		registry.mu.RUnlock()
		return enumHandler{BaseHandler: base, info: info}, nil
	case types.KindStruct:
		return newStructHandler(t)
	case types.KindRecord:
		registry.mu.RLock()
		info := registry.records[t]
		registry.mu.RUnlock()
		return recordHandler{BaseHandler: base, info: info}, nil
	case types.KindOpaque:
		registry.mu.RLock()
		parse := registry.parsers[t]
		registry.mu.RUnlock()
		return specialHandler{BaseHandler: base, parse: parse}, nil
	case types.KindUnresolved:
		if d.IsUntyped() {
			return untypedHandler{base}, nil
		}
		return unresolvedHandler{base}, nil
	case types.KindPointer:
		return pointerHandler{BaseHandler: base, elem: d.Elem}, nil
	}
	return nil, errors.Unconvertible(errors.PhaseResolve, t.String(), "no handler for "+d.String())
}

// Handler resolves the handler for t: codec overrides first, then the
// built-in table, then the process-wide cache, constructing and caching a
// new handler on a miss.
func (c *Codec) Handler(t reflect.Type) (Handler, error) {
	if t == nil {
		return nil, errors.InvalidInput(errors.PhaseResolve, "type cannot be nil")
	}
	if h, ok := c.overrides[t]; ok {
		return h, nil
	}
	if h, ok := builtins[t]; ok {
		return h, nil
	}
	if h, ok := handlers.Load(t); ok {
		return h.(Handler), nil
	}

	d, err := describe(t)
	if err != nil {
		return nil, err
	}
	h, err := newHandler(d)
	if err != nil {
		return nil, err
	}
	actual, loaded := handlers.LoadOrStore(t, h)
	if loaded {
		Logger().Debug("handler constructed concurrently, keeping cached one", zap.Stringer("type", t))
	} else {
		Logger().Debug("handler created", zap.Stringer("type", t), zap.Stringer("descriptor", d))
	}
	return actual.(Handler), nil
}
