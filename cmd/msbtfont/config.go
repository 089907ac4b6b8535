package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/misbitfont/msbtfont"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	defaultBitsPerPixel = 1
	defaultFirst        = "U+0020"
	defaultLast         = "U+007E"
	defaultName         = "basicfont 7x13"
	defaultLanguage     = "en"
	defaultCharsPerRow  = 16
	defaultFormat       = "indexed8"
	defaultOrigin       = "upper-left"
)

// fontConfig is the YAML font descriptor accepted by --config.
//
// Example:
//
//	name: tiny
//	language: en-GB
//	bpp: 2
//	first: U+0041
//	last: U+005A
//	variable_widths: true
//	surface:
//	  chars_per_row: 8
//	  format: indexed32
//	  origin: lower-left
type fontConfig struct {
	Name           string        `yaml:"name"`
	Language       string        `yaml:"language"`
	BitsPerPixel   int           `yaml:"bpp"`
	First          string        `yaml:"first"`
	Last           string        `yaml:"last"`
	VariableWidths bool          `yaml:"variable_widths"`
	Surface        surfaceConfig `yaml:"surface"`
}

type surfaceConfig struct {
	CharsPerRow int    `yaml:"chars_per_row"`
	StartOffset int    `yaml:"start_offset"`
	Format      string `yaml:"format"`
	Origin      string `yaml:"origin"`
}

// surfaceOptions is a surfaceConfig with its names resolved.
type surfaceOptions struct {
	charsPerRow int
	startOffset int
	format      msbtfont.SurfaceFormat
	origin      msbtfont.Origin
}

func defaultConfig() fontConfig {
	return fontConfig{
		Name:         defaultName,
		Language:     defaultLanguage,
		BitsPerPixel: defaultBitsPerPixel,
		First:        defaultFirst,
		Last:         defaultLast,
		Surface: surfaceConfig{
			CharsPerRow: defaultCharsPerRow,
			Format:      defaultFormat,
			Origin:      defaultOrigin,
		},
	}
}

// loadConfig reads a descriptor on top of the defaults. Unknown keys are
// rejected so typos do not silently fall back to a default.
func loadConfig(path string) (fontConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fontConfig{}, err
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (fontConfig, error) {
	cfg := defaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// An empty document leaves the defaults in place.
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return fontConfig{}, fmt.Errorf("parsing descriptor: %w", err)
	}
	return cfg, nil
}

// applyFlags copies every flag the user set over cfg.
func applyFlags(cfg *fontConfig, fs *pflag.FlagSet, v *flagValues) {
	set := func(name string) bool { return fs.Changed(name) }
	if set("bpp") {
		cfg.BitsPerPixel = v.bpp
	}
	if set("first") {
		cfg.First = v.first
	}
	if set("last") {
		cfg.Last = v.last
	}
	if set("name") {
		cfg.Name = v.name
	}
	if set("lang") {
		cfg.Language = v.lang
	}
	if set("variable") {
		cfg.VariableWidths = v.variable
	}
	if set("chars-per-row") {
		cfg.Surface.CharsPerRow = v.charsPerRow
	}
	if set("start-offset") {
		cfg.Surface.StartOffset = v.startOffset
	}
	if set("format") {
		cfg.Surface.Format = v.format
	}
	if set("origin") {
		cfg.Surface.Origin = v.origin
	}
}

func (s surfaceConfig) resolve() (surfaceOptions, error) {
	if s.CharsPerRow <= 0 {
		return surfaceOptions{}, fmt.Errorf("chars per row must be positive, got %d", s.CharsPerRow)
	}
	if s.StartOffset < 0 {
		return surfaceOptions{}, fmt.Errorf("start offset cannot be negative, got %d", s.StartOffset)
	}
	format, err := parseFormat(s.Format)
	if err != nil {
		return surfaceOptions{}, err
	}
	origin, err := parseOrigin(s.Origin)
	if err != nil {
		return surfaceOptions{}, err
	}
	return surfaceOptions{
		charsPerRow: s.CharsPerRow,
		startOffset: s.StartOffset,
		format:      format,
		origin:      origin,
	}, nil
}

func parseFormat(s string) (msbtfont.SurfaceFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "indexed8", "8":
		return msbtfont.FormatIndexed8, nil
	case "indexed16", "16":
		return msbtfont.FormatIndexed16, nil
	case "indexed24", "24":
		return msbtfont.FormatIndexed24, nil
	case "indexed32", "32":
		return msbtfont.FormatIndexed32, nil
	}
	return 0, fmt.Errorf("unknown surface format: %q", s)
}

func parseOrigin(s string) (msbtfont.Origin, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "upper-left", "upperleft", "top":
		return msbtfont.OriginUpperLeft, nil
	case "lower-left", "lowerleft", "bottom":
		return msbtfont.OriginLowerLeft, nil
	}
	return 0, fmt.Errorf("unknown surface origin: %q", s)
}

// parseRune parses a rune given in one of these forms:
//   - Literal character (e.g., "A")
//   - Escaped Unicode: "\uXXXX", "\UXXXXXXXX"
//   - Unicode notation: "U+XXXX"
//   - Decimal: "65"
//   - Hexadecimal: "0x41"
func parseRune(s string) (rune, error) {
	if s == "" {
		return 0, fmt.Errorf("rune cannot be empty")
	}

	runes := []rune(s)
	if len(runes) == 1 {
		return runes[0], nil
	}

	if r, ok := parseEscapedUnicode(s); ok {
		return r, nil
	}
	if r, ok := parseUnicodeNotation(s); ok {
		return r, nil
	}
	if r, ok := parseHexadecimal(s); ok {
		return r, nil
	}
	if r, ok := parseDecimal(s); ok {
		return r, nil
	}

	return 0, fmt.Errorf("invalid rune format: %s", s)
}

// validateRune rejects values outside Unicode and UTF-16 surrogates
func validateRune(r rune) (rune, bool) {
	if r < 0 || r > utf8.MaxRune {
		return 0, false
	}
	if r >= 0xD800 && r <= 0xDFFF {
		return 0, false
	}
	return r, true
}

func parseEscapedUnicode(s string) (rune, bool) {
	if (strings.HasPrefix(s, "\\u") && len(s) == 6) || (strings.HasPrefix(s, "\\U") && len(s) == 10) {
		code, err := strconv.ParseInt(s[2:], 16, 32)
		if err == nil {
			return validateRune(rune(code))
		}
	}
	return 0, false
}

func parseUnicodeNotation(s string) (rune, bool) {
	if strings.HasPrefix(s, "U+") || strings.HasPrefix(s, "u+") {
		code, err := strconv.ParseInt(s[2:], 16, 32)
		if err == nil {
			return validateRune(rune(code))
		}
	}
	return 0, false
}

func parseHexadecimal(s string) (rune, bool) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		code, err := strconv.ParseInt(s[2:], 16, 32)
		if err == nil {
			return validateRune(rune(code))
		}
	}
	return 0, false
}

func parseDecimal(s string) (rune, bool) {
	code, err := strconv.ParseInt(s, 10, 32)
	if err == nil {
		return validateRune(rune(code))
	}
	return 0, false
}

// runeRange resolves cfg's first and last runes.
func (cfg fontConfig) runeRange() (first, last rune, err error) {
	first, err = parseRune(cfg.First)
	if err != nil {
		return 0, 0, fmt.Errorf("first rune: %w", err)
	}
	last, err = parseRune(cfg.Last)
	if err != nil {
		return 0, 0, fmt.Errorf("last rune: %w", err)
	}
	if last < first {
		return 0, 0, fmt.Errorf("rune range %U..%U is empty", first, last)
	}
	return first, last, nil
}
