// Package stream provides the character-level I/O beneath the JSON codec.
//
// Reader is a pull-based reader with one character of lookahead. Writer is
// an append-only sink that tracks an indentation stack for pretty-printed
// output. Both sides can run a content digest over the characters that pass
// through them and can wrap the underlying byte stream in a compression
// filter and a charset transform.
//
// # Pipeline
//
//	Reader: source -> decompress -> charset decode -> runes
//	Writer: runes -> charset encode -> compress -> sink
//
// Digests are computed over UTF-16 code units (high byte first), so the
// digest of a document is the same on both sides and for every charset.
//
// Neither Reader nor Writer is safe for concurrent use.
package stream
