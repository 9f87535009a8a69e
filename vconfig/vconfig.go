// Package vconfig loads cmd/vellum's optional project file, vellum.toml.
// It is new relative to the teacher (vartan has no config file at all)
// but follows dekarrin-tunaq's server/config.go shape exactly: a plain
// struct with doc-commented exported fields, a FillDefaults that returns
// a defaulted copy, and a Validate that checks field values.
package vconfig

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Compression levels accepted by the "compression" field.
const (
	CompressionNone = "none"
	CompressionDFA  = "dfa"
)

// Output formats accepted by the "format" field, matching the formats
// cmd/vellum's parse subcommand already supports.
const (
	FormatText = "text"
	FormatTree = "tree"
	FormatJSON = "json"
)

// Config is the decoded shape of vellum.toml.
type Config struct {
	// Compression selects the DFA compression strategy `vellum compile`
	// serializes the lexicon's transition table with (lexicon/compressor,
	// via Lex.MarshalCompressedJSON); "none" or "dfa". Overridden by an
	// explicit --compress/--compress=false flag.
	Compression string `toml:"compression"`

	// Format is the default output format for `vellum parse` when
	// -f/--format is not given on the command line.
	Format string `toml:"format"`

	// StartContext names a lexer context (normally the language's own
	// name, the first entry of Lex.Contexts). It is decoded and carried
	// on Config only: no vellum subcommand reads it, and a parse always
	// starts from the contexts its parser state infers.
	StartContext string `toml:"start_context"`
}

// FillDefaults returns a copy of c with every zero-valued field replaced
// by its default.
func (c Config) FillDefaults() Config {
	if c.Compression == "" {
		c.Compression = CompressionDFA
	}
	if c.Format == "" {
		c.Format = FormatText
	}
	return c
}

// Validate checks that every set field holds one of its accepted values.
// StartContext is not checked here since its validity depends on the
// grammar being compiled, not on the config file alone.
func (c Config) Validate() error {
	switch c.Compression {
	case "", CompressionNone, CompressionDFA:
	default:
		return fmt.Errorf("vconfig: invalid compression %q: must be %q or %q", c.Compression, CompressionNone, CompressionDFA)
	}
	switch c.Format {
	case "", FormatText, FormatTree, FormatJSON:
	default:
		return fmt.Errorf("vconfig: invalid format %q: must be one of %q, %q, %q", c.Format, FormatText, FormatTree, FormatJSON)
	}
	return nil
}

// Load reads and decodes the project file at path. A missing file is not
// an error: Load returns a defaulted, zero-value Config instead, since
// vellum.toml is always optional (SPEC_FULL.md §3 "Configuration").
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}.FillDefaults(), nil
		}
		return Config{}, fmt.Errorf("vconfig: cannot read %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("vconfig: cannot parse %s: %w", path, err)
	}
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
