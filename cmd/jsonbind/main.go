package main

import (
	"crypto/sha256"
	stderrors "errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/jsonbind/codec"
	"github.com/wippyai/jsonbind/stream"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type command struct {
	flags   func(fs *pflag.FlagSet, o *options)
	run     func(s *session, args []string) error
	name    string
	usage   string
	summary string
}

var commands = []command{
	{
		name:    "fmt",
		usage:   "jsonbind fmt [file] [--check] [--compact]",
		summary: "Reformat a JSON document, keeping member order",
		flags: func(fs *pflag.FlagSet, o *options) {
			fs.BoolVar(&o.check, "check", false, "Only validate the document")
		},
		run: runFmt,
	},
	{
		name:    "digest",
		usage:   "jsonbind digest [file] [--algo blake3|sha256] [--canonical]",
		summary: "Print the content digest of a JSON document",
		flags: func(fs *pflag.FlagSet, o *options) {
			fs.BoolVar(&o.canonical, "canonical", false, "Digest the compact re-encoding instead of the input text")
		},
		run: runDigest,
	},
	{
		name:    "compress",
		usage:   "jsonbind compress [file] -o out [--compression deflate|zstd|lz4]",
		summary: "Re-encode a JSON document through a compression filter",
		run:     runCompress,
	},
	{
		name:    "decompress",
		usage:   "jsonbind decompress [file] [--compression deflate|zstd|lz4]",
		summary: "Decode a compressed JSON document and print it",
		run:     runDecompress,
	},
	{
		name:    "cbor",
		usage:   "jsonbind cbor [file] [--diag]",
		summary: "Transcode a JSON document to deterministic CBOR",
		flags: func(fs *pflag.FlagSet, o *options) {
			fs.BoolVar(&o.diag, "diag", false, "Print CBOR diagnostic notation")
		},
		run: runCBOR,
	},
	{
		name:    "inspect",
		usage:   "jsonbind inspect [file] [--path a.b[2]] [-i]",
		summary: "List the values of a JSON document by path",
		flags: func(fs *pflag.FlagSet, o *options) {
			fs.StringVar(&o.path, "path", "", "Print only the value at this path")
			fs.BoolVarP(&o.interactive, "interactive", "i", false, "Interactive browser with TUI")
		},
		run: runInspect,
	},
}

// options holds the flags shared by every command plus the per-command ones.
type options struct {
	configPath  string
	indent      string
	compression string
	charset     string
	algo        string
	output      string
	color       string
	path        string
	compact     bool
	ignoreNull  bool
	verbose     bool
	check       bool
	canonical   bool
	diag        bool
	interactive bool
}

func (o *options) register(fs *pflag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "Config file (.yaml, .yml or .json/.jsonc)")
	fs.StringVar(&o.indent, "indent", "  ", "Indent unit for pretty output")
	fs.BoolVar(&o.compact, "compact", false, "Compact output")
	fs.StringVar(&o.compression, "compression", "", "Stream compression: none, deflate, zstd, lz4")
	fs.StringVar(&o.charset, "charset", "", "IANA charset of input and output streams")
	fs.StringVar(&o.algo, "algo", "blake3", "Digest algorithm: blake3, sha256")
	fs.StringVarP(&o.output, "output", "o", "", "Write output to this file instead of stdout")
	fs.StringVar(&o.color, "color", "auto", "Colorize output: auto, always, never")
	fs.BoolVar(&o.ignoreNull, "ignore-null", false, "Drop null object members")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "Debug logging on stderr")
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: jsonbind <command> [flags] [file]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-11s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'jsonbind <command> --help' for the flags of a command.")
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return stderrors.New("no command given")
	}
	switch args[0] {
	case "help", "-h", "--help":
		usage(stdout)
		return nil
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		usage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}

	var o options
	fs := pflag.NewFlagSet(cmd.name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s\n\n%s\n\nFlags:\n", cmd.usage, cmd.summary)
		fs.PrintDefaults()
	}
	o.register(fs)
	if cmd.flags != nil {
		cmd.flags(fs, &o)
	}
	if err := fs.Parse(args[1:]); err != nil {
		if stderrors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	s, err := newSession(&o, fs, stdin, stdout, stderr)
	if err != nil {
		return err
	}
	defer s.logger.Sync()
	s.logger.Debug("running command", zap.String("command", cmd.name), zap.Strings("args", fs.Args()))
	return cmd.run(s, fs.Args())
}

// session is the resolved configuration of one command invocation.
type session struct {
	opts        *options
	codec       *codec.Codec
	logger      *zap.Logger
	newHash     func() hash.Hash
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	indent      string
	compression stream.Compression
	color       bool
}

func newSession(o *options, fs *pflag.FlagSet, stdin io.Reader, stdout, stderr io.Writer) (*session, error) {
	s := &session{opts: o, stdin: stdin, stdout: stdout, stderr: stderr}
	s.logger = newLogger(o.verbose, stderr)

	if o.configPath != "" {
		cfg, err := loadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg.apply(o, fs)
		s.logger.Debug("loaded config", zap.String("path", o.configPath))
	}

	s.indent = o.indent
	if o.compact {
		s.indent = ""
	}

	c, err := stream.ParseCompression(o.compression)
	if err != nil {
		return nil, err
	}
	s.compression = c

	switch strings.ToLower(o.algo) {
	case "blake3":
		s.newHash = stream.DefaultDigest
	case "sha256", "sha-256":
		s.newHash = sha256.New
	default:
		return nil, fmt.Errorf("unknown digest algorithm %q", o.algo)
	}

	switch o.color {
	case "always":
		s.color = true
	case "never":
	case "auto":
		s.color = isTerminal(stdout)
	default:
		return nil, fmt.Errorf("invalid --color value %q", o.color)
	}

	codec.SetLogger(s.logger)
	s.codec = s.newCodec(true)
	return s, nil
}

// newCodec builds a codec from the session settings. ordered keeps the
// member order of decoded objects.
func (s *session) newCodec(ordered bool) *codec.Codec {
	c := codec.New().
		WithLogger(s.logger).
		WithCharset(s.opts.charset).
		WithDigest(s.newHash)
	if !ordered {
		c.WithUnorderedObjects()
	}
	if s.opts.ignoreNull {
		c.WithIgnoreNull()
	}
	return c
}

func newLogger(verbose bool, w io.Writer) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	var enc zapcore.Encoder
	if isTerminal(w) {
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level))
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
