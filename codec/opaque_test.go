package codec

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wippyai/jsonbind/errors"
)

func TestBytesEncode(t *testing.T) {
	c := New()
	tests := []struct {
		value any
		want  string
	}{
		{[]byte{0x2b, 0x29}, `"2B29"`},
		{[]byte{0x00, 0xff}, `"00FF"`},
		{[]byte{}, `""`},
		{[]byte(nil), "null"},
		{[2]byte{1, 2}, `"0102"`},
	}

	for _, tt := range tests {
		got, err := c.Encode(tt.value)
		if err != nil {
			t.Errorf("Encode(%#v) error: %v", tt.value, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Encode(%#v) = %s, want %s", tt.value, got, tt.want)
		}
	}
}

func TestBytesDecode(t *testing.T) {
	c := New()
	tests := []struct {
		name string
		text string
		want []byte
	}{
		{"hex", `"0a1b"`, []byte{0x0a, 0x1b}},
		{"upper hex", `"2B29"`, []byte{0x2b, 0x29}},
		{"hex with whitespace", `"61 62\n63"`, []byte("abc")},
		{"base64", `"Zm9v"`, []byte("foo")},
		{"base64 unpadded", `"Zm9vYg"`, []byte("foob")},
		{"non-hex letters use base64", `"YWJj"`, []byte("abc")},
		{"array", `[1, 255, -1, 0]`, []byte{1, 255, 255, 0}},
		{"empty array", `[]`, []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode[[]byte](c, tt.text)
			if err != nil {
				t.Fatalf("Decode[[]byte](%s) error: %v", tt.text, err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Decode[[]byte](%s) = %x, want %x", tt.text, got, tt.want)
			}
		})
	}
}

func TestBytesDecodeErrors(t *testing.T) {
	c := New()
	if _, err := Decode[[]byte](c, `[256]`); !errors.IsKind(err, errors.KindNumericOverflow) {
		t.Errorf("Decode[[]byte]([256]) error = %v, want numeric_overflow", err)
	}
	if _, err := Decode[[]byte](c, `"not base64!"`); !errors.IsKind(err, errors.KindMalformedInput) {
		t.Errorf("Decode[[]byte](bad base64) error = %v, want malformed_input", err)
	}
	if _, err := Decode[[2]byte](c, `"010203"`); !errors.IsKind(err, errors.KindTypeMismatch) {
		t.Errorf("Decode[[2]byte](3 bytes) error = %v, want type_mismatch", err)
	}

	short, err := Decode[[4]byte](c, `"0102"`)
	if err != nil {
		t.Fatalf("Decode[[4]byte] error: %v", err)
	}
	if short != [4]byte{1, 2, 0, 0} {
		t.Errorf("Decode[[4]byte](0102) = %v, want [1 2 0 0]", short)
	}
}

func TestTime(t *testing.T) {
	c := New()

	ts := time.Date(2024, 2, 29, 13, 4, 5, 0, time.UTC)
	text, err := c.Encode(ts)
	if err != nil {
		t.Fatalf("Encode(time) error: %v", err)
	}
	if text != `"2024-02-29T13:04:05"` {
		t.Errorf("Encode(time) = %s", text)
	}

	zoned := time.Date(2024, 1, 1, 2, 0, 0, 500000000, time.FixedZone("CET", 3600))
	text, err = c.Encode(zoned)
	if err != nil {
		t.Fatalf("Encode(zoned time) error: %v", err)
	}
	if text != `"2024-01-01T01:00:00.5"` {
		t.Errorf("Encode(zoned time) = %s, want UTC rendering", text)
	}

	tests := []struct {
		text string
		want time.Time
	}{
		{`"2024-02-29T13:04:05"`, ts},
		{`"2024-01-01T01:00:00.5"`, zoned},
		{`"2024-02-29T15:04:05+02:00"`, ts},
		{`"2024-02-29T13:04:05Z"`, ts},
		{"86400000", time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"0", time.Unix(0, 0)},
	}
	for _, tt := range tests {
		got, err := Decode[time.Time](c, tt.text)
		if err != nil {
			t.Errorf("Decode[time.Time](%s) error: %v", tt.text, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("Decode[time.Time](%s) = %v, want %v", tt.text, got, tt.want)
		}
	}

	if _, err := Decode[time.Time](c, `"yesterday"`); !errors.IsKind(err, errors.KindTypeMismatch) {
		t.Errorf("Decode[time.Time](yesterday) error = %v, want type_mismatch", err)
	}
}

func TestUUID(t *testing.T) {
	c := New()
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	text, err := c.Encode(id)
	if err != nil {
		t.Fatalf("Encode(uuid) error: %v", err)
	}
	if text != `"6ba7b810-9dad-11d1-80b4-00c04fd430c8"` {
		t.Errorf("Encode(uuid) = %s", text)
	}
	got, err := Decode[uuid.UUID](c, text)
	if err != nil {
		t.Fatalf("Decode[uuid.UUID] error: %v", err)
	}
	if got != id {
		t.Errorf("Decode[uuid.UUID] = %v, want %v", got, id)
	}
	if _, err := Decode[uuid.UUID](c, `"nope"`); !errors.IsKind(err, errors.KindTypeMismatch) {
		t.Errorf("Decode[uuid.UUID](nope) error = %v, want type_mismatch", err)
	}
}

func TestRegexp(t *testing.T) {
	c := New()
	text, err := c.Encode(regexp.MustCompile(`a+\d`))
	if err != nil {
		t.Fatalf("Encode(regexp) error: %v", err)
	}
	if text != `"a+\\d"` {
		t.Errorf("Encode(regexp) = %s", text)
	}
	re, err := Decode[*regexp.Regexp](c, text)
	if err != nil {
		t.Fatalf("Decode[*regexp.Regexp] error: %v", err)
	}
	if !re.MatchString("aa7") || re.MatchString("b7") {
		t.Errorf("decoded pattern %q does not behave like a+\\d", re)
	}
	if _, err := Decode[*regexp.Regexp](c, `"("`); !errors.IsKind(err, errors.KindTypeMismatch) {
		t.Errorf("Decode[*regexp.Regexp](\"(\") error = %v, want type_mismatch", err)
	}
}

func TestFileReference(t *testing.T) {
	c := New()
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}

	text, err := c.Encode(File(path))
	if err != nil {
		t.Fatalf("Encode(File) error: %v", err)
	}
	if text != `"aGVsbG8="` {
		t.Errorf("Encode(File) = %s, want base64 of content", text)
	}

	got, err := Decode[File](c, text)
	if err != nil {
		t.Fatalf("Decode[File] error: %v", err)
	}
	defer os.Remove(string(got))
	if string(got) == path {
		t.Error("Decode[File] reused the source path, want a new temporary file")
	}
	data, err := os.ReadFile(string(got))
	if err != nil {
		t.Fatalf("read decoded file: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("decoded file content = %q, want hello", data)
	}

	if _, err := c.Encode(File(dir)); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("Encode(File(dir)) error = %v, want invalid_input", err)
	}
	if _, err := c.Encode(File(filepath.Join(dir, "missing"))); !errors.IsKind(err, errors.KindIO) {
		t.Errorf("Encode(File(missing)) error = %v, want io", err)
	}
}

type color int

const (
	red color = iota
	green
	blue
)

func (c color) String() string {
	return [...]string{"red", "green", "blue"}[c]
}

func TestEnum(t *testing.T) {
	RegisterEnum(red, green)
	c := New()

	text, err := c.Encode(green)
	if err != nil {
		t.Fatalf("Encode(green) error: %v", err)
	}
	if text != `"green"` {
		t.Errorf("Encode(green) = %s, want \"green\"", text)
	}

	got, err := Decode[color](c, `"red"`)
	if err != nil {
		t.Fatalf("Decode[color](red) error: %v", err)
	}
	if got != red {
		t.Errorf("Decode[color](red) = %v, want red", got)
	}

	for _, text := range []string{`"blue"`, `"RED"`, `"Red "`} {
		if _, err := Decode[color](c, text); !errors.IsKind(err, errors.KindInvalidEnum) {
			t.Errorf("Decode[color](%s) error = %v, want invalid_enum", text, err)
		}
	}
	if _, err := Decode[color](c, "1"); !errors.IsKind(err, errors.KindTypeMismatch) {
		t.Errorf("Decode[color](1) error = %v, want type_mismatch", err)
	}
}

type semver struct {
	major, minor int
}

func parseSemver(s string) (semver, error) {
	var v semver
	if _, err := fmt.Sscanf(s, "%d.%d", &v.major, &v.minor); err != nil {
		return semver{}, err
	}
	return v, nil
}

func (v semver) String() string {
	return fmt.Sprintf("%d.%d", v.major, v.minor)
}

func TestRegisterParser(t *testing.T) {
	if err := RegisterParser(parseSemver); err != nil {
		t.Fatalf("RegisterParser error: %v", err)
	}
	c := New()

	text, err := c.Encode(semver{1, 12})
	if err != nil {
		t.Fatalf("Encode(semver) error: %v", err)
	}
	if text != `"1.12"` {
		t.Errorf("Encode(semver) = %s, want \"1.12\"", text)
	}

	for _, in := range []string{`"1.12"`, "1.12"} {
		got, err := Decode[semver](c, in)
		if err != nil {
			t.Errorf("Decode[semver](%s) error: %v", in, err)
			continue
		}
		if got != (semver{1, 12}) {
			t.Errorf("Decode[semver](%s) = %v, want 1.12", in, got)
		}
	}

	if _, err := Decode[semver](c, `"x"`); !errors.IsKind(err, errors.KindTypeMismatch) {
		t.Errorf("Decode[semver](x) error = %v, want type_mismatch", err)
	}

	for _, bad := range []any{nil, 42, func(int) (semver, error) { return semver{}, nil }, func(string) semver { return semver{} }} {
		if err := RegisterParser(bad); !errors.IsKind(err, errors.KindInvalidInput) {
			t.Errorf("RegisterParser(%T) error = %v, want invalid_input", bad, err)
		}
	}
}

type endpoint struct {
	Addr net.IP
	Port int
}

func TestTextUnmarshaler(t *testing.T) {
	c := New()
	in := endpoint{Addr: net.ParseIP("10.0.0.1"), Port: 53}

	text, err := c.Encode(in)
	if err != nil {
		t.Fatalf("Encode(endpoint) error: %v", err)
	}
	if text != `{"Addr":"10.0.0.1","Port":53}` {
		t.Errorf("Encode(endpoint) = %s", text)
	}

	got, err := Decode[endpoint](c, text)
	if err != nil {
		t.Fatalf("Decode[endpoint] error: %v", err)
	}
	if !got.Addr.Equal(in.Addr) || got.Port != 53 {
		t.Errorf("Decode[endpoint] = %+v, want %+v", got, in)
	}

	if _, err := Decode[net.IP](c, `"300.1.1.1"`); !errors.IsKind(err, errors.KindTypeMismatch) {
		t.Errorf("Decode[net.IP](bad) error = %v, want type_mismatch", err)
	}
}
