package jsonbind

import (
	"github.com/wippyai/jsonbind/codec"
)

var defaultCodec = codec.New()

// Default returns the codec used by the package-level helpers. It has
// compact output and no overrides; configure it before concurrent use.
func Default() *codec.Codec {
	return defaultCodec
}

// Encode returns the JSON text of v.
func Encode(v any) (string, error) {
	return defaultCodec.Encode(v)
}

// Decode parses text as a T.
func Decode[T any](text string) (T, error) {
	return codec.Decode[T](defaultCodec, text)
}

// DecodeInto parses text into the value ptr points to.
func DecodeInto(text string, ptr any) error {
	return defaultCodec.Decode(text, ptr)
}
