package msbtfont

import (
	"fmt"

	"github.com/misbitfont/msbtfont/internal/bitfield"
	"github.com/misbitfont/msbtfont/internal/common"
)

// AdvanceTableSize returns the size of the per-glyph advance table, which is
// one byte per glyph for variable-width fonts and empty otherwise.
func AdvanceTableSize(m Metrics) int {
	if !m.VariableWidths {
		return 0
	}
	return m.GlyphCount
}

// PixelDataSize returns the size of the packed pixel region: every glyph's
// bits back-to-back, rounded up to a whole byte once at the end.
func PixelDataSize(m Metrics) int {
	return bitfield.ByteLen(m.GlyphBits() * m.GlyphCount)
}

// RequiredBufferSize returns the number of bytes a FileData needs for a font
// with these metrics: the optional advance table followed by the pixel region.
//
// Example:
//
//	// 1 bpp, 8x8 glyphs, 10 glyphs
//	RequiredBufferSize(Metrics{1, 8, 8, 10, false}) // 80
//	RequiredBufferSize(Metrics{1, 8, 8, 10, true})  // 90
func RequiredBufferSize(m Metrics) int {
	return AdvanceTableSize(m) + PixelDataSize(m)
}

// SurfaceSize returns the extent of a surface that holds every glyph of the
// font laid out charsPerRow glyphs to a row. Only Width and Height are set.
func SurfaceSize(h *Header, charsPerRow int) (Rect, error) {
	if h == nil {
		return Rect{}, ErrMissingHeader
	}
	if charsPerRow <= 0 {
		return Rect{}, fmt.Errorf("%w: %d", ErrNoCharacters, charsPerRow)
	}
	m, err := h.Metrics()
	if err != nil {
		return Rect{}, err
	}
	rows := (m.GlyphCount + charsPerRow - 1) / charsPerRow
	return Rect{
		Width:  m.GlyphWidth * charsPerRow,
		Height: m.GlyphHeight * rows,
	}, nil
}

// RowStride returns the number of bytes per surface row for a format.
//
// Rows of the 8, 16 and 24-bit formats are padded to a multiple of four
// bytes; Indexed32 rows are always aligned and never padded. Unknown formats
// and non-positive widths yield 0.
func RowStride(format SurfaceFormat, width int) int {
	bpp := format.BytesPerPixel()
	if bpp == 0 || width <= 0 {
		return 0
	}
	natural := width * bpp
	if format == FormatIndexed32 {
		return natural
	}
	return (natural + common.RowAlignment - 1) / common.RowAlignment * common.RowAlignment
}

// SurfaceMemoryRequirement returns the number of bytes a surface described by
// d occupies, row padding included.
//
// It returns 0 for a nil descriptor, a zero-area rectangle or an unknown
// format. Callers use 0 as "don't allocate"; there is no error channel.
func SurfaceMemoryRequirement(d *SurfaceDescriptor) int {
	if d == nil || d.Rect.Width <= 0 || d.Rect.Height <= 0 {
		return 0
	}
	return RowStride(d.Format, d.Rect.Width) * d.Rect.Height
}
