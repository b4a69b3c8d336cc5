// Package codec binds JSON text to Go values by their static types.
//
// A Codec resolves one Handler per Go type and caches it for the life of
// the process. Handlers are stateless; all per-call state lives in the
// Encoder or Decoder session driving them.
//
//	┌──────────────────────────────────────────────────────────────┐
//	│ Go value ←→ [Handler for reflect.Type] ←→ stream ←→ JSON    │
//	└──────────────────────────────────────────────────────────────┘
//
// # Resolution
//
// Codec.Handler looks a type up in this order:
//
//  1. handlers installed on the codec with WithHandler
//  2. the built-in scalars (string, bool, Char, []byte, *regexp.Regexp,
//     time.Time, File, uuid.UUID, any)
//  3. the process-wide cache
//  4. a new handler chosen by the type's shape
//
// Shapes, in order of precedence:
//
//	Registered enum        RegisterEnum             "Name"
//	Registered record      RegisterRecord           {"a":1,"b":2} in component order
//	Registered parser      RegisterParser           "text"
//	Numbers, *big.Int/Float                         1, -2.5e3
//	encoding.TextUnmarshaler                        "text"
//	*sync.Map, collections.Map, Go maps             {"k":v}
//	collections.Sequence, slices, map[T]struct{}    [a,b]
//	Go arrays                                       [a,b] (fixed length)
//	Interfaces                                      runtime type on encode
//	Pointers                                        pointee, or null
//	Structs                                         {"field":v} sorted by name
//
// Decoding into an interface other than any picks a concrete type from a
// substitution table (collections.List for collections.Sequence,
// collections.OrderedSet for collections.Set and so on); extend it with
// RegisterImplementation.
//
// # Key Types
//
//	Codec    - Configuration and entry points (Encode, Decode)
//	Encoder  - Encode session: sink, indent, digest, compression
//	Decoder  - Decode session: source, strict mode, extra members
//	Handler  - Encode/decode strategy for one Go type
//	Number   - Literal text of a JSON number
//
// # Usage
//
//	c := codec.New().WithIndent("  ")
//	text, err := c.Encode(cfg)
//
//	cfg, err := codec.Decode[Config](c, text)
//
//	d := c.Dec().FromFile("events.json.zst").WithCompression(stream.CompressionZstd).KeepOpen()
//	defer d.Close()
//	for !d.IsEOF() {
//	    ev, err := codec.Get[Event](d)
//	    ...
//	}
//
// # Structs
//
// Exported fields are members, named by their json tag or Go name
// (json:"-" skips a field). Embedded structs without a tag are flattened.
// A field equal to its value in the default template is omitted unless the
// encoder writes defaults; the template is the zero value after Default()
// when *T implements Defaulter. A map field tagged json:"__extra" collects
// unknown members. Member names starting with "__" are never written.
package codec
