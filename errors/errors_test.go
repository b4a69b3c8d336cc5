package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseDecode,
				Kind:   KindTypeMismatch,
				Path:   []string{"user", "addresses", "[2]", "zip"},
				GoType: "int",
				Token:  "string",
				Detail: "cannot convert",
			},
			contains: []string{"[decode]", "type_mismatch", "user.addresses[2].zip", "int", "JSON string", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindMalformedInput,
			},
			contains: []string{"[decode]", "malformed_input"},
		},
		{
			name: "error with offset",
			err: &Error{
				Phase:  PhaseDecode,
				Kind:   KindMalformedInput,
				Detail: "unexpected '}'",
				Offset: 12,
			},
			contains: []string{"unexpected '}'", "offset 12"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseStream,
				Kind:   KindIO,
				Detail: "read failed",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[stream]", "io", "read failed", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindIO,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindUnknownField,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseDecode, Kind: KindUnknownField}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseEncode, Kind: KindUnknownField}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindInvalidEnum}) {
		t.Error("Is should not match different kind")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseDecode, KindNumericOverflow).
		Path("config", "port").
		GoType("uint16").
		Token("number").
		Offset(7).
		Value(70000).
		Cause(cause).
		Detail("value %d does not fit", 70000).
		Build()

	if err.Phase != PhaseDecode {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseDecode)
	}
	if err.Kind != KindNumericOverflow {
		t.Errorf("Kind = %v, want %v", err.Kind, KindNumericOverflow)
	}
	if FormatPath(err.Path) != "config.port" {
		t.Errorf("Path = %v, want config.port", err.Path)
	}
	if err.GoType != "uint16" || err.Token != "number" {
		t.Errorf("GoType=%v Token=%v", err.GoType, err.Token)
	}
	if err.Offset != 7 {
		t.Errorf("Offset = %d, want 7", err.Offset)
	}
	if err.Value != 70000 {
		t.Errorf("Value = %v, want 70000", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "value 70000 does not fit" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestWithPath(t *testing.T) {
	var err error = InvalidEnum("PURPLE", "Color")
	err = WithPath(PhaseDecode, err, "color")
	err = WithPath(PhaseDecode, err, "[1]")
	err = WithPath(PhaseDecode, err, "palettes")

	var e *Error
	if !errors.As(err, &e) {
		t.Fatal("expected *Error")
	}
	if got := FormatPath(e.Path); got != "palettes[1].color" {
		t.Errorf("path = %q, want palettes[1].color", got)
	}

	t.Run("foreign error", func(t *testing.T) {
		plain := fmt.Errorf("disk full")
		wrapped := WithPath(PhaseEncode, plain, "blob")
		if KindOf(wrapped) != KindIO {
			t.Errorf("KindOf = %v, want io", KindOf(wrapped))
		}
		if !errors.Is(wrapped, plain) {
			t.Error("wrapped error should keep the cause")
		}
	})

	t.Run("nil", func(t *testing.T) {
		if WithPath(PhaseEncode, nil, "x") != nil {
			t.Error("WithPath(nil) should be nil")
		}
	})
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", UnknownField("pkg.T", "unknown"))
	if !IsKind(err, KindUnknownField) {
		t.Error("IsKind should see through fmt wrapping")
	}
	if IsKind(err, KindMalformedInput) {
		t.Error("IsKind matched wrong kind")
	}
	if IsKind(nil, KindUnknownField) {
		t.Error("IsKind(nil) should be false")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind Kind
	}{
		{"TypeMismatch", TypeMismatch(PhaseEncode, []string{"f"}, "int", "string"), KindTypeMismatch},
		{"Malformed", Malformed(3, "unexpected %q", '}'), KindMalformedInput},
		{"Overflow", Overflow(PhaseDecode, 300, "int8"), KindNumericOverflow},
		{"UnknownField", UnknownField("T", "x"), KindUnknownField},
		{"InvalidEnum", InvalidEnum("X", "E"), KindInvalidEnum},
		{"Unconvertible", Unconvertible(PhaseResolve, "chan int", "channels"), KindUnconvertible},
		{"UnsupportedContainer", UnsupportedContainer("Queue"), KindUnsupportedContainer},
		{"FieldImmutable", FieldImmutable("T", "x"), KindFieldImmutable},
		{"Cyclic", Cyclic("*Node"), KindCyclicReference},
		{"IO", IO(PhaseStream, "read", errors.New("eof")), KindIO},
		{"InvalidInput", InvalidInput(PhaseConfig, "late"), KindInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Error() == "" {
				t.Error("empty message")
			}
		})
	}

	if got := Malformed(3, "unexpected %q", '}').Detail; got != "unexpected '}'" {
		t.Errorf("Malformed detail = %q", got)
	}
	if v := Overflow(PhaseDecode, 300, "int8").Value; v != 300 {
		t.Errorf("Overflow value = %v", v)
	}
}
