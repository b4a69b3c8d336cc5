package main

import (
	"bytes"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-json-experiment/json/jsontext"
	"go.uber.org/zap"

	"github.com/wippyai/jsonbind/codec"
	"github.com/wippyai/jsonbind/stream"
)

// source names the input for messages.
func source(args []string) string {
	if len(args) == 0 || args[0] == "-" {
		return "-"
	}
	return args[0]
}

// decoder opens the single input argument, or stdin, through comp.
func (s *session) decoder(c *codec.Codec, args []string, comp stream.Compression) (*codec.Decoder, error) {
	if len(args) > 1 {
		return nil, fmt.Errorf("expected at most one input file, got %d", len(args))
	}
	d := c.Dec().WithCompression(comp)
	if source(args) == "-" {
		return d.FromReader(s.stdin), nil
	}
	return d.FromFile(args[0]), nil
}

func (s *session) read(args []string, comp stream.Compression) (any, error) {
	d, err := s.decoder(s.codec, args, comp)
	if err != nil {
		return nil, err
	}
	return codec.Get[any](d)
}

// emit writes v to the output file or stdout. Text on a colour terminal is
// highlighted.
func (s *session) emit(v any, indent string, comp stream.Compression) error {
	enc := func() *codec.Encoder {
		return s.codec.Enc().WithIndent(indent).WithCompression(comp)
	}
	if s.opts.output != "" {
		return enc().ToFile(s.opts.output).Put(v)
	}
	if comp != stream.CompressionNone {
		if isTerminal(s.stdout) {
			return stderrors.New("refusing to write compressed output to a terminal, use -o")
		}
		return enc().To(s.stdout).Put(v)
	}

	e := enc()
	if err := e.Put(v); err != nil {
		return err
	}
	text := e.String() + "\n"
	if s.color {
		return highlight(s.stdout, text)
	}
	_, err := io.WriteString(s.stdout, text)
	return err
}

func highlight(w io.Writer, text string) error {
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, text, "json", "terminal256", "monokai"); err != nil {
		_, err = io.WriteString(w, text)
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func runFmt(s *session, args []string) error {
	v, err := s.read(args, s.compression)
	if err != nil {
		return err
	}
	if !s.opts.check {
		return s.emit(v, s.indent, stream.CompressionNone)
	}

	text, err := s.codec.Encode(v)
	if err != nil {
		return err
	}
	if !jsontext.Value(text).IsValid() {
		return fmt.Errorf("%s: re-encoded document is not valid JSON", source(args))
	}
	fmt.Fprintf(s.stdout, "%s: valid\n", source(args))
	return nil
}

func runDigest(s *session, args []string) error {
	var sum []byte
	if s.opts.canonical {
		v, err := s.read(args, s.compression)
		if err != nil {
			return err
		}
		e := s.codec.Enc().WithIndent("").Mark()
		if err := e.Put(v); err != nil {
			return err
		}
		sum = e.Digest()
	} else {
		d, err := s.decoder(s.codec, args, s.compression)
		if err != nil {
			return err
		}
		d.KeepOpen().Mark()
		defer d.Close()
		if _, err := codec.Get[any](d); err != nil {
			return err
		}
		sum = d.Digest()
		if !d.IsEOF() {
			return fmt.Errorf("%s: unexpected text after the document", source(args))
		}
	}
	fmt.Fprintf(s.stdout, "%s  %s\n", hex.EncodeToString(sum), source(args))
	return nil
}

func runCompress(s *session, args []string) error {
	comp := s.compression
	if comp == stream.CompressionNone {
		comp = stream.CompressionDeflate
	}
	v, err := s.read(args, stream.CompressionNone)
	if err != nil {
		return err
	}
	s.logger.Debug("compressing", zap.Stringer("compression", comp), zap.String("input", source(args)))
	return s.emit(v, "", comp)
}

func runDecompress(s *session, args []string) error {
	comp := s.compression
	if comp == stream.CompressionNone {
		comp = stream.CompressionDeflate
	}
	v, err := s.read(args, comp)
	if err != nil {
		return err
	}
	return s.emit(v, s.indent, stream.CompressionNone)
}

func runCBOR(s *session, args []string) error {
	d, err := s.decoder(s.newCodec(false), args, s.compression)
	if err != nil {
		return err
	}
	v, err := codec.Get[any](d)
	if err != nil {
		return err
	}

	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return fmt.Errorf("cbor encoder: %w", err)
	}
	data, err := mode.Marshal(v)
	if err != nil {
		return fmt.Errorf("cbor encode: %w", err)
	}

	switch {
	case s.opts.diag:
		notation, err := cbor.Diagnose(data)
		if err != nil {
			return fmt.Errorf("cbor diagnose: %w", err)
		}
		_, err = fmt.Fprintln(s.stdout, notation)
		return err
	case s.opts.output != "":
		return os.WriteFile(s.opts.output, data, 0o644)
	case isTerminal(s.stdout):
		_, err = fmt.Fprintln(s.stdout, hex.EncodeToString(data))
		return err
	default:
		_, err = s.stdout.Write(data)
		return err
	}
}

func runInspect(s *session, args []string) error {
	v, err := s.read(args, s.compression)
	if err != nil {
		return err
	}
	if s.opts.path != "" {
		sub, err := lookup(v, s.opts.path)
		if err != nil {
			return err
		}
		return s.emit(sub, s.indent, stream.CompressionNone)
	}

	nodes := flatten(s.codec, v)
	if s.opts.interactive {
		return runInteractive(s, source(args), nodes)
	}
	width := 0
	for _, n := range nodes {
		width = max(width, len(n.display()))
	}
	for _, n := range nodes {
		fmt.Fprintf(s.stdout, "%-*s  %-7s  %s\n", width, n.display(), n.kind, n.preview)
	}
	return nil
}
