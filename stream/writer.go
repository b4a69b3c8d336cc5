package stream

import (
	"bufio"
	"hash"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/wippyai/jsonbind/errors"
)

// Writer is an append-only character sink with indentation tracking, an
// optional running digest and optional compression.
//
// Write errors are sticky: after the first failure every append is a no-op
// and Err (as well as Flush and Close) reports the failure.
type Writer struct {
	dst         io.Writer
	owned       io.Closer
	out         *bufio.Writer
	filter      io.WriteCloser
	charset     io.Writer
	digest      *Digest
	err         error
	indent      string
	charsetName string
	level       int
	count       int64
	compression Compression
}

// NewWriter wraps w. The caller keeps ownership of w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{dst: w}
}

// OpenWriter wraps wc and takes ownership: Close closes wc.
func OpenWriter(wc io.WriteCloser) *Writer {
	return &Writer{dst: wc, owned: wc}
}

// WithIndent sets the indent unit. An empty unit produces compact output.
func (w *Writer) WithIndent(unit string) *Writer {
	w.indent = unit
	return w
}

// WithCompression selects a compression filter. It must be called before
// the first character is written.
func (w *Writer) WithCompression(c Compression) error {
	if w.out != nil {
		return errors.InvalidInput(errors.PhaseConfig, "compression must be selected before writing")
	}
	w.compression = c
	return nil
}

// WithCharset selects the character encoding of the byte stream. It must be
// called before the first character is written.
func (w *Writer) WithCharset(name string) error {
	if w.out != nil {
		return errors.InvalidInput(errors.PhaseConfig, "charset must be selected before writing")
	}
	if _, err := lookupCharset(name); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "charset "+name)
	}
	w.charsetName = name
	return nil
}

// WithDigest starts a running digest over every written character.
func (w *Writer) WithDigest(newHash func() hash.Hash) {
	w.digest = NewDigest(newHash)
}

// Mark resets the digest, starting one with DefaultDigest if none is active.
func (w *Writer) Mark() {
	if w.digest == nil {
		w.digest = NewDigest(nil)
		return
	}
	w.digest.Reset()
}

// Digest returns the hash of everything written since the last Mark, or nil
// when digest mode is off.
func (w *Writer) Digest() []byte {
	if w.digest == nil {
		return nil
	}
	return w.digest.Sum()
}

// Indenting reports whether pretty-printing is enabled.
func (w *Writer) Indenting() bool {
	return w.indent != ""
}

func (w *Writer) start() {
	if w.out != nil {
		return
	}
	filter, err := w.compression.newWriter(w.dst)
	if err != nil {
		w.err = errors.IO(errors.PhaseStream, "open "+w.compression.String()+" writer", err)
		w.out = bufio.NewWriter(io.Discard)
		return
	}
	w.filter = filter
	var sink io.Writer = filter
	if enc, _ := lookupCharset(w.charsetName); enc != nil {
		w.charset = enc.NewEncoder().Writer(filter)
		sink = w.charset
	}
	w.out = bufio.NewWriter(sink)
}

// WriteRune appends one character.
func (w *Writer) WriteRune(r rune) {
	w.start()
	if w.err != nil {
		return
	}
	if w.digest != nil {
		w.digest.WriteRune(r)
	}
	if _, err := w.out.WriteRune(r); err != nil {
		w.err = errors.IO(errors.PhaseStream, "write", err)
		return
	}
	w.count++
}

// WriteString appends s.
func (w *Writer) WriteString(s string) {
	w.start()
	if w.err != nil {
		return
	}
	if w.digest != nil {
		w.digest.WriteString(s)
	}
	if _, err := w.out.WriteString(s); err != nil {
		w.err = errors.IO(errors.PhaseStream, "write", err)
		return
	}
	w.count += int64(utf8.RuneCountInString(s))
}

// PushIndent writes a newline plus one more indent unit and remembers the
// deeper level. It is a no-op for compact output.
func (w *Writer) PushIndent() {
	if w.indent == "" {
		return
	}
	w.level++
	w.Newline()
}

// PopIndent writes a newline at one indent unit less. It is a no-op for
// compact output.
func (w *Writer) PopIndent() {
	if w.indent == "" {
		return
	}
	if w.level > 0 {
		w.level--
	}
	w.Newline()
}

// Newline writes a newline followed by the current indentation. It is a
// no-op for compact output.
func (w *Writer) Newline() {
	if w.indent == "" {
		return
	}
	w.WriteString("\n" + strings.Repeat(w.indent, w.level))
}

// Count returns the number of characters written.
func (w *Writer) Count() int64 {
	return w.count
}

// Err returns the first write error.
func (w *Writer) Err() error {
	return w.err
}

// Flush pushes buffered characters through the filters to the destination.
// Compressed output is only complete after Close.
func (w *Writer) Flush() error {
	if w.out == nil {
		return w.err
	}
	if err := w.out.Flush(); err != nil && w.err == nil {
		w.err = errors.IO(errors.PhaseStream, "flush", err)
	}
	if f, ok := w.filter.(interface{ Flush() error }); ok && w.err == nil {
		if err := f.Flush(); err != nil {
			w.err = errors.IO(errors.PhaseStream, "flush", err)
		}
	}
	return w.err
}

// Close flushes, finishes the compression stream and, if owned, closes the
// destination.
func (w *Writer) Close() error {
	w.start()
	if w.out != nil {
		if err := w.out.Flush(); err != nil && w.err == nil {
			w.err = errors.IO(errors.PhaseStream, "flush", err)
		}
	}
	if c, ok := w.charset.(io.Closer); ok {
		if err := c.Close(); err != nil && w.err == nil {
			w.err = errors.IO(errors.PhaseStream, "close charset encoder", err)
		}
	}
	if w.filter != nil {
		if err := w.filter.Close(); err != nil && w.err == nil {
			w.err = errors.IO(errors.PhaseStream, "close "+w.compression.String()+" writer", err)
		}
		w.filter = nil
	}
	if w.owned != nil {
		if err := w.owned.Close(); err != nil && w.err == nil {
			w.err = errors.IO(errors.PhaseStream, "close writer", err)
		}
		w.owned = nil
	}
	return w.err
}
