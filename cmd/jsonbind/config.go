package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/jsonbind/codec"
)

// config is the file form of the shared flags. Flags given on the command
// line win over the file.
type config struct {
	Indent      *string `yaml:"indent" json:"indent"`
	Compression string  `yaml:"compression" json:"compression"`
	Charset     string  `yaml:"charset" json:"charset"`
	Digest      string  `yaml:"digest" json:"digest"`
	Color       string  `yaml:"color" json:"color"`
	Compact     bool    `yaml:"compact" json:"compact"`
	IgnoreNull  bool    `yaml:"ignore_null" json:"ignore_null"`
}

// loadConfig reads a YAML file (.yaml, .yml) or a JSON file with comments
// and trailing commas (anything else). Unknown keys are errors.
func loadConfig(path string) (config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		if err := codec.New().Dec().Strict().FromBytes(jsonc.ToJSON(data)).Into(&cfg); err != nil {
			return config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return cfg, nil
}

func (c config) apply(o *options, fs *pflag.FlagSet) {
	set := func(flag string, dst *string, v string) {
		if v != "" && !fs.Changed(flag) {
			*dst = v
		}
	}
	if c.Indent != nil && !fs.Changed("indent") {
		o.indent = *c.Indent
	}
	set("compression", &o.compression, c.Compression)
	set("charset", &o.charset, c.Charset)
	set("algo", &o.algo, c.Digest)
	set("color", &o.color, c.Color)
	if c.Compact && !fs.Changed("compact") {
		o.compact = true
	}
	if c.IgnoreNull && !fs.Changed("ignore-null") {
		o.ignoreNull = true
	}
}
