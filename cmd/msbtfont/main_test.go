package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/misbitfont/msbtfont"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/font/basicfont"
)

func TestParseRune(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    rune
		wantErr bool
	}{
		{"literal", "A", 'A', false},
		{"literal digit", "7", '7', false},
		{"literal unicode", "☺", '☺', false},

		{"unicode escape \\u0041", "\\u0041", 'A', false},
		{"unicode escape \\U0000007E", "\\U0000007E", '~', false},

		{"unicode U+0020", "U+0020", ' ', false},
		{"unicode u+007e", "u+007e", '~', false},

		{"decimal 65", "65", 'A', false},
		{"hex 0x41", "0x41", 'A', false},
		{"hex 0X7E", "0X7E", '~', false},

		{"empty string", "", 0, true},
		{"invalid unicode notation", "U+", 0, true},
		{"invalid hex", "0x", 0, true},
		{"multi-rune literal", "abc", 0, true},
		{"beyond max rune", "U+110000", 0, true},
		{"negative decimal", "-1", 0, true},
		{"surrogate", "U+D800", 0, true},
		{"unicode escape too short", "\\u004", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRune(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseConfig(t *testing.T) {
	t.Run("overrides defaults", func(t *testing.T) {
		cfg, err := parseConfig([]byte(`
name: tiny
bpp: 2
first: U+0041
last: U+005A
variable_widths: true
surface:
  chars_per_row: 8
  format: indexed32
  origin: lower-left
`))
		require.NoError(t, err)
		assert.Equal(t, "tiny", cfg.Name)
		assert.Equal(t, defaultLanguage, cfg.Language, "unset keys keep their default")
		assert.Equal(t, 2, cfg.BitsPerPixel)
		assert.True(t, cfg.VariableWidths)
		assert.Equal(t, 8, cfg.Surface.CharsPerRow)

		opts, err := cfg.Surface.resolve()
		require.NoError(t, err)
		assert.Equal(t, msbtfont.FormatIndexed32, opts.format)
		assert.Equal(t, msbtfont.OriginLowerLeft, opts.origin)

		first, last, err := cfg.runeRange()
		require.NoError(t, err)
		assert.Equal(t, 'A', first)
		assert.Equal(t, 'Z', last)
	})

	t.Run("empty document", func(t *testing.T) {
		cfg, err := parseConfig(nil)
		require.NoError(t, err)
		assert.Equal(t, defaultConfig(), cfg)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := parseConfig([]byte("bits_per_pixel: 2\n"))
		assert.Error(t, err)
	})
}

func TestApplyFlags(t *testing.T) {
	cfg := defaultConfig()
	cfg.BitsPerPixel = 4
	cfg.Surface.Format = "indexed16"

	var v flagValues
	fs := newFlagSet(&v)
	require.NoError(t, fs.Parse([]string{"--format", "indexed24", "-r", "4"}))
	applyFlags(&cfg, fs, &v)

	assert.Equal(t, 4, cfg.BitsPerPixel, "unset flags must not override the config")
	assert.Equal(t, "indexed24", cfg.Surface.Format)
	assert.Equal(t, 4, cfg.Surface.CharsPerRow)
}

func TestSurfaceConfigResolve(t *testing.T) {
	tests := []struct {
		name string
		cfg  surfaceConfig
	}{
		{"zero chars per row", surfaceConfig{CharsPerRow: 0, Format: "indexed8", Origin: "top"}},
		{"negative start offset", surfaceConfig{CharsPerRow: 1, StartOffset: -1, Format: "indexed8", Origin: "top"}},
		{"unknown format", surfaceConfig{CharsPerRow: 1, Format: "rgb565", Origin: "top"}},
		{"unknown origin", surfaceConfig{CharsPerRow: 1, Format: "8", Origin: "center"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.resolve()
			assert.Error(t, err)
		})
	}
}

func TestRasterizer(t *testing.T) {
	rz, err := newRasterizer(basicfont.Face7x13, 2)
	require.NoError(t, err)
	assert.Equal(t, 7, rz.width)
	assert.Equal(t, 13, rz.height)

	pixels, advance, ok := rz.glyph('M')
	require.True(t, ok)
	require.Len(t, pixels, 7*13)
	var ink int
	for _, p := range pixels {
		assert.LessOrEqual(t, p, uint8(3))
		if p != 0 {
			ink++
		}
	}
	assert.Positive(t, ink)
	assert.GreaterOrEqual(t, advance, 1)
	assert.LessOrEqual(t, advance, 7)

	blank, _, ok := rz.glyph(' ')
	require.True(t, ok)
	assert.Equal(t, make([]uint8, 7*13), blank)

	_, err = newRasterizer(basicfont.Face7x13, 9)
	assert.Error(t, err)
}

func TestRunWritesImageAndPreview(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "font.msbt")
	bmpPath := filepath.Join(dir, "preview.bmp")

	var stdout, stderr bytes.Buffer
	code := run([]string{
		"--bpp", "2",
		"--variable",
		"--format", "indexed24",
		"--origin", "lower-left",
		"--image", imagePath,
		"-o", bmpPath,
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "basicfont 7x13: 95 glyphs, 7x13 cells, 2 bpp")

	// 95 glyphs at 16 per row: 6 rows
	file, err := os.Open(bmpPath)
	require.NoError(t, err)
	defer file.Close()
	img, err := bmp.Decode(file)
	require.NoError(t, err)
	assert.Equal(t, 16*7, img.Bounds().Dx())
	assert.Equal(t, 6*13, img.Bounds().Dy())

	data, err := os.ReadFile(imagePath)
	require.NoError(t, err)
	font, err := msbtfont.ParseFontBytes(data)
	require.NoError(t, err)
	m, err := font.Metrics()
	require.NoError(t, err)
	assert.Equal(t, 95, m.GlyphCount)
	assert.True(t, m.VariableWidths)
	assert.Equal(t, "en", font.Header.Language())

	// Reload the image instead of rebuilding
	stdout.Reset()
	code = run([]string{"--input", imagePath, "-r", "19"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "surface: 133x65 Indexed8/UpperLeft")
}

func TestRunDebugTrace(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "trace.txt")
	var stdout, stderr bytes.Buffer
	code := run([]string{"--first", "A", "--last", "C", "--debug-file", tracePath, "--debug-pretty"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	trace, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	assert.Contains(t, string(trace), "[blit/Start]")
	assert.Equal(t, 3, strings.Count(string(trace), "[blit/Glyph]"))
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"unexpected argument", []string{"hello"}, 2},
		{"unknown flag", []string{"--nope"}, 2},
		{"bad format", []string{"--format", "rgb"}, 1},
		{"empty range", []string{"--first", "Z", "--last", "A"}, 1},
		{"bad bpp", []string{"--bpp", "0"}, 1},
		{"bad language", []string{"--lang", "not a tag"}, 1},
		{"missing input", []string{"--input", filepath.Join(t.TempDir(), "missing.msbt")}, 1},
		{"missing config", []string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, tt.code, run(tt.args, &stdout, &stderr))
			assert.NotEmpty(t, stderr.String())
		})
	}
}

func TestRunHelpAndVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"--help"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "--chars-per-row")

	stdout.Reset()
	require.Equal(t, 0, run([]string{"-v"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "msbtfont version dev")
}
