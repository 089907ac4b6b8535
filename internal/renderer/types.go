package renderer

import (
	"errors"

	"github.com/misbitfont/msbtfont/internal/debug"
)

// Error definitions for the renderer package
var (
	// ErrInvalidGlyphs is returned when glyph metrics are outside their valid range
	ErrInvalidGlyphs = errors.New("invalid glyph metrics")
)

// Glyphs describes a packed glyph region as the public package decoded it
// from a header.
type Glyphs struct {
	// Data is the packed pixel region, without the advance table
	Data []byte
	// BitsPerPixel is the width of one index (1-8)
	BitsPerPixel int
	// Width and Height are the glyph cell size in pixels
	Width  int
	Height int
	// Count is the number of glyphs in Data
	Count int
}

// Target describes the caller-owned surface a blit writes to.
type Target struct {
	// Buf is the surface memory, at least Stride*Height bytes long
	Buf []byte
	// X and Y place the first glyph
	X, Y int
	// Width and Height bound the drawable area
	Width, Height int
	// Format is a common.Format* value
	Format int
	// Origin is a common.Origin* value
	Origin int
	// Stride is the number of bytes per row, padding included
	Stride int
}

// Options contains blit options passed from the main package
type Options struct {
	// CharsPerRow wraps rows every n glyphs; 0 wraps at the surface width
	CharsPerRow int
	// StartOffset pre-advances the cursor by n glyph cells
	StartOffset int
	// Debug receives trace events, nil disables tracing
	Debug *debug.Session
}

// Stats reports what a blit did.
type Stats struct {
	GlyphsVisited int
	PixelsWritten int
	StoppedEarly  bool
}

// blitState holds per-call scratch memory.
type blitState struct {
	pixels []uint8 // decoded indices of the current glyph, row-major
}
