package stream

import (
	"hash"
	"unicode/utf16"

	"github.com/zeebo/blake3"
)

// DefaultDigest is the hash used when digest mode is requested without an
// explicit algorithm.
func DefaultDigest() hash.Hash {
	return blake3.New()
}

// Digest is a running content hash fed one character at a time. Each
// character contributes its UTF-16 code units, high byte first, so the
// digest of a document does not depend on the byte encoding of the stream.
type Digest struct {
	h   hash.Hash
	buf [4]byte
}

// NewDigest creates a digest over the hash returned by newHash. A nil
// newHash selects DefaultDigest.
func NewDigest(newHash func() hash.Hash) *Digest {
	if newHash == nil {
		newHash = DefaultDigest
	}
	return &Digest{h: newHash()}
}

// WriteRune feeds one character.
func (d *Digest) WriteRune(r rune) {
	if r < 0x10000 {
		d.buf[0] = byte(r >> 8)
		d.buf[1] = byte(r)
		d.h.Write(d.buf[:2])
		return
	}
	r1, r2 := utf16.EncodeRune(r)
	d.buf[0] = byte(r1 >> 8)
	d.buf[1] = byte(r1)
	d.buf[2] = byte(r2 >> 8)
	d.buf[3] = byte(r2)
	d.h.Write(d.buf[:4])
}

// WriteString feeds every character of s.
func (d *Digest) WriteString(s string) {
	for _, r := range s {
		d.WriteRune(r)
	}
}

// Reset discards everything fed so far.
func (d *Digest) Reset() {
	d.h.Reset()
}

// Sum returns the hash of everything fed since the last Reset.
func (d *Digest) Sum() []byte {
	return d.h.Sum(nil)
}
