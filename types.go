package msbtfont

import (
	"github.com/misbitfont/msbtfont/internal/common"
	"github.com/misbitfont/msbtfont/internal/debug"
)

// Metrics are the addressing parameters of a font, decoded from its header.
//
// Metrics is a plain value; the header stays the single source of truth and
// Metrics is recomputed from it whenever a font operation runs.
type Metrics struct {
	// BitsPerPixel is the width of one stored palette index (1-8)
	BitsPerPixel int

	// GlyphWidth is the width of every glyph cell in pixels (1-256)
	GlyphWidth int

	// GlyphHeight is the height of every glyph cell in pixels (1-256)
	GlyphHeight int

	// GlyphCount is the number of glyphs stored in the font
	GlyphCount int

	// VariableWidths reports whether a per-glyph advance table precedes the pixels
	VariableWidths bool
}

// GlyphPixels returns the number of pixels in one glyph cell.
func (m Metrics) GlyphPixels() int {
	return m.GlyphWidth * m.GlyphHeight
}

// GlyphBits returns the number of bits one glyph occupies in the packed region.
func (m Metrics) GlyphBits() int {
	return m.BitsPerPixel * m.GlyphPixels()
}

// GlyphBitOffset returns the global bit offset of glyph i inside the packed region.
// Glyphs are packed back-to-back, so this is the only addressing rule.
func (m Metrics) GlyphBitOffset(i int) int {
	return i * m.GlyphBits()
}

// Common errors returned by the msbtfont package.
// All of them are sentinels and should be tested with errors.Is, since some
// call sites wrap them with extra context.
var (
	// ErrMissingHeader is returned when a nil header is provided
	ErrMissingHeader = common.ErrMissingHeader

	// ErrMissingHeaderDescriptor is returned when a nil header descriptor is provided
	ErrMissingHeaderDescriptor = common.ErrMissingHeaderDescriptor

	// ErrMissingFileData is returned when nil file data is provided
	ErrMissingFileData = common.ErrMissingFileData

	// ErrInvalidHeader is returned when a header carries no recognised identity marker
	ErrInvalidHeader = common.ErrInvalidHeader

	// ErrInvalidPaletteFormat is returned when the palette format is outside 0-7
	ErrInvalidPaletteFormat = common.ErrInvalidPaletteFormat

	// ErrNotInitialized is returned when file data has not been allocated
	// (or was released, or is too small for the header it is used with)
	ErrNotInitialized = common.ErrNotInitialized

	// ErrMissingSourceData is returned when glyph source data is nil
	ErrMissingSourceData = common.ErrMissingSourceData

	// ErrShortSourceData is returned when glyph source data is shorter than one glyph
	ErrShortSourceData = common.ErrShortSourceData

	// ErrIndexOutOfBounds is returned when a glyph index is negative or not below the glyph count
	ErrIndexOutOfBounds = common.ErrIndexOutOfBounds

	// ErrMissingSurfaceDescriptor is returned when a nil surface descriptor is provided
	ErrMissingSurfaceDescriptor = common.ErrMissingSurfaceDescriptor

	// ErrNoCharacters is returned when a surface size is requested with zero characters per row
	ErrNoCharacters = common.ErrNoCharacters

	// ErrMissingSurfaceData is returned when the surface buffer is nil
	ErrMissingSurfaceData = common.ErrMissingSurfaceData

	// ErrShortSurfaceData is returned when the surface buffer is smaller than
	// SurfaceMemoryRequirement reports for its descriptor
	ErrShortSurfaceData = common.ErrShortSurfaceData

	// ErrNoSurfaceArea is returned when a surface rectangle has zero width or height
	ErrNoSurfaceArea = common.ErrNoSurfaceArea

	// ErrUnsupportedSurfaceFormat is returned for surface formats or origins
	// outside the defined ones
	ErrUnsupportedSurfaceFormat = common.ErrUnsupportedSurfaceFormat
)

// Option configures a CopyToSurface call.
type Option func(*options)

type options struct {
	charsPerRow int
	startOffset int
	debug       *debug.Session
}

func defaultOptions() *options {
	return &options{}
}

// WithCharsPerRow sets how many glyphs are placed on each surface row.
//
// Row Behavior:
//   - 0 (default): glyphs fill the surface width and wrap automatically
//     once the cursor reaches the right edge
//   - n > 0: a new row starts after every n glyphs, counted from the
//     start offset, regardless of the surface width
//
// Negative values are treated as 0.
func WithCharsPerRow(n int) Option {
	return func(opts *options) {
		if n < 0 {
			n = 0
		}
		opts.charsPerRow = n
	}
}

// WithStartOffset shifts the first glyph by n glyph cells before drawing.
//
// This lets several fonts share one surface: blit the first font, then blit
// the second one with a start offset equal to the glyph count of the first.
// If the offset moves the cursor below the surface, CopyToSurface returns
// nil without writing anything.
//
// Negative values are treated as 0.
func WithStartOffset(n int) Option {
	return func(opts *options) {
		if n < 0 {
			n = 0
		}
		opts.startOffset = n
	}
}

// WithDebug attaches a debug session that receives blit events.
// A nil session disables tracing for the call.
func WithDebug(session *debug.Session) Option {
	return func(opts *options) {
		opts.debug = session
	}
}
