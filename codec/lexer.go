package codec

import (
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/wippyai/jsonbind/errors"
	"github.com/wippyai/jsonbind/stream"
)

// ReadString lexes a JSON string starting at the opening quote and returns
// its unescaped content. \u escapes forming a surrogate pair are combined;
// an unpaired surrogate becomes U+FFFD.
func (d *Decoder) ReadString() (string, error) {
	if err := d.r.Expect(`"`); err != nil {
		return "", err
	}
	var sb strings.Builder
	var high rune
	flush := func() {
		if high != 0 {
			sb.WriteRune(unicode.ReplacementChar)
			high = 0
		}
	}

	for {
		c := d.r.Current()
		switch {
		case c == stream.EOF:
			return "", d.r.UnexpectedEOF("unterminated string")
		case c == '"':
			flush()
			d.r.Advance()
			return sb.String(), nil
		case c == '\\':
			u, err := d.readEscape()
			if err != nil {
				return "", err
			}
			if high != 0 {
				if r := utf16.DecodeRune(high, u); r != unicode.ReplacementChar {
					sb.WriteRune(r)
					high = 0
					continue
				}
				flush()
			}
			switch {
			case u >= 0xD800 && u < 0xDC00:
				high = u
			case utf16.IsSurrogate(u):
				sb.WriteRune(unicode.ReplacementChar)
			default:
				sb.WriteRune(u)
			}
		case unicode.IsControl(c):
			return "", errors.Malformed(d.r.Offset(), "control character %U in string", c)
		default:
			flush()
			sb.WriteRune(c)
			d.r.Advance()
		}
	}
}

// readEscape consumes a backslash escape and returns the character, or the
// UTF-16 code unit for \u escapes.
func (d *Decoder) readEscape() (rune, error) {
	c := d.r.Advance()
	var r rune
	switch c {
	case '"', '\\', '/':
		r = c
	case 'b':
		r = '\b'
	case 'f':
		r = '\f'
	case 'n':
		r = '\n'
	case 'r':
		r = '\r'
	case 't':
		r = '\t'
	case 'u':
		return d.readHex4()
	case stream.EOF:
		return 0, d.r.UnexpectedEOF("unterminated escape")
	default:
		return 0, errors.Malformed(d.r.Offset(), "invalid escape \\%c", c)
	}
	d.r.Advance()
	return r, nil
}

func (d *Decoder) readHex4() (rune, error) {
	var u rune
	c := d.r.Advance()
	for range 4 {
		v, ok := hexDigit(c)
		if !ok {
			return 0, d.unexpected(c, "hex digit")
		}
		u = u<<4 | v
		c = d.r.Advance()
	}
	return u, nil
}

func hexDigit(c rune) (rune, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

// ReadNumber lexes a JSON number and returns its literal text. A leading
// zero stands alone; a fraction or exponent needs at least one digit.
func (d *Decoder) ReadNumber() (Number, error) {
	var sb strings.Builder
	c := d.r.Current()
	if c == '-' {
		sb.WriteRune(c)
		c = d.r.Advance()
	}
	switch {
	case c == '0':
		sb.WriteRune(c)
		c = d.r.Advance()
	case c >= '1' && c <= '9':
		c = d.digits(&sb)
	default:
		return "", d.unexpected(c, "digit")
	}

	if c == '.' {
		sb.WriteRune(c)
		if c = d.r.Advance(); !isDigit(c) {
			return "", d.unexpected(c, "digit after '.'")
		}
		c = d.digits(&sb)
	}
	if c == 'e' || c == 'E' {
		sb.WriteRune(c)
		c = d.r.Advance()
		if c == '+' || c == '-' {
			sb.WriteRune(c)
			c = d.r.Advance()
		}
		if !isDigit(c) {
			return "", d.unexpected(c, "exponent digit")
		}
		d.digits(&sb)
	}
	return Number(sb.String()), nil
}

func (d *Decoder) digits(sb *strings.Builder) rune {
	c := d.r.Current()
	for isDigit(c) {
		sb.WriteRune(c)
		c = d.r.Advance()
	}
	return c
}

// unexpected reports c where want was required.
func (d *Decoder) unexpected(c rune, want string) error {
	if c == stream.EOF {
		return d.r.UnexpectedEOF("expected " + want)
	}
	return errors.Malformed(d.r.Offset(), "expected %s but got %q", want, c)
}
