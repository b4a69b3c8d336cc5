package stream

import (
	"bytes"
	"crypto/sha256"
	stderrors "errors"
	"io"
	"strings"
	"testing"

	"github.com/wippyai/jsonbind/errors"
)

func readAll(r *Reader) string {
	var sb strings.Builder
	for c := r.Current(); c != EOF; c = r.Advance() {
		sb.WriteRune(c)
	}
	return sb.String()
}

func TestReaderLookahead(t *testing.T) {
	r := NewReader(strings.NewReader("ab"))
	if got := r.Current(); got != 'a' {
		t.Fatalf("Current() = %q, want 'a'", got)
	}
	if got := r.Current(); got != 'a' {
		t.Errorf("Current() again = %q, want 'a'", got)
	}
	if got := r.Advance(); got != 'b' {
		t.Errorf("Advance() = %q, want 'b'", got)
	}
	if got := r.Advance(); got != EOF {
		t.Errorf("Advance() = %q, want EOF", got)
	}
	if got := r.Advance(); got != EOF {
		t.Errorf("Advance() past end = %q, want EOF", got)
	}
	if r.Offset() != 2 {
		t.Errorf("Offset() = %d, want 2", r.Offset())
	}
}

func TestReaderSkipWhitespace(t *testing.T) {
	r := NewReader(strings.NewReader(" \t\r\n x"))
	if got := r.SkipWhitespace(); got != 'x' {
		t.Errorf("SkipWhitespace() = %q, want 'x'", got)
	}
	if r.EOF() {
		t.Error("EOF() = true before x is consumed")
	}
	r.Advance()
	if !r.EOF() {
		t.Error("EOF() = false after last character")
	}
}

func TestReaderExpect(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		lit     string
		wantErr bool
		eof     bool
	}{
		{"match", "true", "true", false, false},
		{"prefix", "nullx", "null", false, false},
		{"mismatch", "trux", "true", true, false},
		{"truncated", "fal", "false", true, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(tc.input))
			err := r.Expect(tc.lit)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Expect(%q) error = %v, wantErr %v", tc.lit, err, tc.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.IsKind(err, errors.KindMalformedInput) {
				t.Errorf("kind = %v, want malformed_input", errors.KindOf(err))
			}
			if got := stderrors.Is(err, io.ErrUnexpectedEOF); got != tc.eof {
				t.Errorf("errors.Is(err, io.ErrUnexpectedEOF) = %v, want %v", got, tc.eof)
			}
		})
	}
}

func TestReaderCapture(t *testing.T) {
	r := NewReader(strings.NewReader(`x{"a":1}y`))
	r.Advance()
	r.StartCapture()
	for r.Current() != 'y' {
		r.Advance()
	}
	if got := r.StopCapture(); got != `{"a":1}` {
		t.Errorf("StopCapture() = %q", got)
	}
	if got := r.StopCapture(); got != "" {
		t.Errorf("StopCapture() without capture = %q, want empty", got)
	}
}

func TestReaderDigestExcludesLookahead(t *testing.T) {
	r := NewReader(strings.NewReader("abc"))
	r.Mark()
	r.Current()
	r.Advance()
	r.Advance()

	d := NewDigest(nil)
	d.WriteString("ab")
	if !bytes.Equal(r.Digest(), d.Sum()) {
		t.Error("digest should cover consumed characters only")
	}
}

func TestReaderMarkResets(t *testing.T) {
	r := NewReader(strings.NewReader("xyz"))
	r.WithDigest(sha256.New)
	r.Advance()
	r.Mark()
	r.Advance()
	r.Advance()

	want := sha256.Sum256([]byte{0, 'y', 0, 'z'})
	if !bytes.Equal(r.Digest(), want[:]) {
		t.Errorf("Digest() = %x, want %x", r.Digest(), want)
	}
}

func TestReaderDigestOff(t *testing.T) {
	r := NewReader(strings.NewReader("a"))
	r.Advance()
	if r.Digest() != nil {
		t.Error("Digest() should be nil when digest mode is off")
	}
}

func TestReaderLateConfiguration(t *testing.T) {
	r := NewReader(strings.NewReader("a"))
	r.Current()
	if err := r.WithCompression(CompressionDeflate); err == nil {
		t.Error("WithCompression after first read should fail")
	}
	if err := r.WithCharset("ISO-8859-1"); err == nil {
		t.Error("WithCharset after first read should fail")
	}
}

func TestReaderCharset(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{'"', 0xE9, '"'}))
	if err := r.WithCharset("ISO-8859-1"); err != nil {
		t.Fatalf("WithCharset: %v", err)
	}
	if got := readAll(r); got != `"é"` {
		t.Errorf("decoded = %q, want %q", got, `"é"`)
	}
}

func TestReaderUnknownCharset(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	if err := r.WithCharset("no-such-charset"); err == nil {
		t.Error("expected error for unknown charset")
	}
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestReaderOwnership(t *testing.T) {
	owned := &closeRecorder{Reader: strings.NewReader("1")}
	if err := OpenReader(owned).Close(); err != nil {
		t.Fatal(err)
	}
	if !owned.closed {
		t.Error("OpenReader should close its source")
	}

	borrowed := &closeRecorder{Reader: strings.NewReader("1")}
	if err := NewReader(borrowed).Close(); err != nil {
		t.Fatal(err)
	}
	if borrowed.closed {
		t.Error("NewReader must not close its source")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, stderrors.New("disk on fire") }

func TestReaderStickyError(t *testing.T) {
	r := NewReader(failingReader{})
	if got := r.Current(); got != EOF {
		t.Errorf("Current() = %q, want EOF", got)
	}
	if !errors.IsKind(r.Err(), errors.KindIO) {
		t.Errorf("Err() = %v, want io error", r.Err())
	}
	if err := r.UnexpectedEOF("value"); err != r.Err() {
		t.Errorf("UnexpectedEOF should report the stream error, got %v", err)
	}
}
