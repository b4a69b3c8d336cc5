package stream

import (
	"bufio"
	"hash"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/encoding"

	"github.com/wippyai/jsonbind/errors"
)

// EOF is the lookahead value once the stream is exhausted.
const EOF rune = -1

// Reader is a pull-based character reader with one character of lookahead.
//
// Characters are counted and digested when consumed (Advance), not when
// they become the lookahead, so a digest taken right after a value covers
// exactly the text of that value.
//
// Errors from the underlying stream are sticky: the lookahead turns into
// EOF and Err reports the cause.
type Reader struct {
	src         io.Reader
	owned       io.Closer
	filter      io.ReadCloser
	in          *bufio.Reader
	charset     encoding.Encoding
	digest      *Digest
	capture     *strings.Builder
	err         error
	offset      int64
	cur         rune
	compression Compression
	primed      bool
}

// NewReader wraps r. The caller keeps ownership of r.
func NewReader(r io.Reader) *Reader {
	return &Reader{src: r}
}

// OpenReader wraps rc and takes ownership: Close closes rc.
func OpenReader(rc io.ReadCloser) *Reader {
	return &Reader{src: rc, owned: rc}
}

// WithCompression selects a decompression filter. It must be called before
// the first character is read.
func (r *Reader) WithCompression(c Compression) error {
	if r.in != nil {
		return errors.InvalidInput(errors.PhaseConfig, "compression must be selected before reading")
	}
	r.compression = c
	return nil
}

// WithCharset selects the character encoding of the byte stream. It must be
// called before the first character is read.
func (r *Reader) WithCharset(name string) error {
	if r.in != nil {
		return errors.InvalidInput(errors.PhaseConfig, "charset must be selected before reading")
	}
	enc, err := lookupCharset(name)
	if err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "charset "+name)
	}
	r.charset = enc
	return nil
}

// WithDigest starts a running digest over every consumed character.
func (r *Reader) WithDigest(newHash func() hash.Hash) {
	r.digest = NewDigest(newHash)
}

// Mark resets the digest, starting one with DefaultDigest if none is active.
func (r *Reader) Mark() {
	if r.digest == nil {
		r.digest = NewDigest(nil)
		return
	}
	r.digest.Reset()
}

// Digest returns the hash of everything consumed since the last Mark, or
// nil when digest mode is off.
func (r *Reader) Digest() []byte {
	if r.digest == nil {
		return nil
	}
	return r.digest.Sum()
}

func (r *Reader) start() {
	if r.in != nil {
		return
	}
	src := r.src
	filter, err := r.compression.newReader(src)
	if err != nil {
		r.err = errors.IO(errors.PhaseStream, "open "+r.compression.String()+" reader", err)
		r.in = bufio.NewReader(strings.NewReader(""))
		return
	}
	r.filter = filter
	src = filter
	if r.charset != nil {
		src = r.charset.NewDecoder().Reader(src)
	}
	r.in = bufio.NewReader(src)
}

func (r *Reader) fill() {
	if r.err != nil {
		r.cur = EOF
		return
	}
	c, _, err := r.in.ReadRune()
	if err != nil {
		if err != io.EOF {
			r.err = errors.IO(errors.PhaseStream, "read", err)
		}
		r.cur = EOF
		return
	}
	r.cur = c
}

// Current returns the lookahead character, or EOF.
func (r *Reader) Current() rune {
	if !r.primed {
		r.start()
		r.fill()
		r.primed = true
	}
	return r.cur
}

// Advance consumes the lookahead and returns the new one.
func (r *Reader) Advance() rune {
	c := r.Current()
	if c == EOF {
		return EOF
	}
	if r.digest != nil {
		r.digest.WriteRune(c)
	}
	if r.capture != nil {
		r.capture.WriteRune(c)
	}
	r.offset++
	r.fill()
	return r.cur
}

// SkipWhitespace consumes whitespace and returns the first significant
// lookahead character.
func (r *Reader) SkipWhitespace() rune {
	c := r.Current()
	for c != EOF && unicode.IsSpace(c) {
		c = r.Advance()
	}
	return c
}

// Expect consumes exactly lit, failing with malformed_input otherwise.
func (r *Reader) Expect(lit string) error {
	for _, want := range lit {
		c := r.Current()
		if c != want {
			if c == EOF {
				return r.UnexpectedEOF("expected " + lit)
			}
			return errors.Malformed(r.offset, "expected %q but got %q", lit, c)
		}
		r.Advance()
	}
	return nil
}

// EOF reports whether only whitespace remains.
func (r *Reader) EOF() bool {
	return r.SkipWhitespace() == EOF
}

// Offset returns the number of characters consumed so far.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Err returns the first error of the underlying stream.
func (r *Reader) Err() error {
	return r.err
}

// StartCapture begins recording consumed characters.
func (r *Reader) StartCapture() {
	r.capture = &strings.Builder{}
}

// StopCapture ends recording and returns the captured text.
func (r *Reader) StopCapture() string {
	if r.capture == nil {
		return ""
	}
	s := r.capture.String()
	r.capture = nil
	return s
}

// UnexpectedEOF builds the error reported when input ends inside a value.
// Its cause is io.ErrUnexpectedEOF unless the stream itself failed.
func (r *Reader) UnexpectedEOF(detail string) error {
	if r.err != nil {
		return r.err
	}
	return errors.New(errors.PhaseDecode, errors.KindMalformedInput).
		Offset(r.offset).
		Detail("unexpected end of input: %s", detail).
		Cause(io.ErrUnexpectedEOF).
		Build()
}

// Close releases the decompression filter and, if owned, the source.
func (r *Reader) Close() error {
	var first error
	if r.filter != nil {
		if err := r.filter.Close(); err != nil {
			first = err
		}
		r.filter = nil
	}
	if r.owned != nil {
		if err := r.owned.Close(); err != nil && first == nil {
			first = err
		}
		r.owned = nil
	}
	if first != nil {
		return errors.IO(errors.PhaseStream, "close reader", first)
	}
	return nil
}
