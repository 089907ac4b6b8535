package msbtfont

import (
	"math/rand"
	"testing"
)

// newTestFont creates a header and file data for a font with the given
// geometry. Width and height are in pixels, not the header's minus-one form.
func newTestFont(t testing.TB, bpp, width, height, count int, variable bool) (*Header, *FileData) {
	t.Helper()
	var flags uint8
	if variable {
		flags = FlagVariableWidths
	}
	h, err := NewHeader(&HeaderDescriptor{
		PaletteFormat:  uint8(bpp - 1),
		MaxFontWidth:   uint8(width - 1),
		MaxFontHeight:  uint8(height - 1),
		Flags:          flags,
		CharacterCount: uint32(count),
		FontName:       "test",
	})
	if err != nil {
		t.Fatalf("NewHeader() error = %v", err)
	}
	fd, err := NewFileData(h)
	if err != nil {
		t.Fatalf("NewFileData() error = %v", err)
	}
	return h, fd
}

// filledGlyph returns a glyph whose pixels all hold v.
func filledGlyph(m Metrics, v uint8) []uint8 {
	px := make([]uint8, m.GlyphPixels())
	for i := range px {
		px[i] = v
	}
	return px
}

// randomGlyph returns a glyph of random indices below 2^bpp.
func randomGlyph(rng *rand.Rand, m Metrics) []uint8 {
	px := make([]uint8, m.GlyphPixels())
	for i := range px {
		px[i] = uint8(rng.Intn(1 << m.BitsPerPixel))
	}
	return px
}

func mustMetrics(t testing.TB, h *Header) Metrics {
	t.Helper()
	m, err := h.Metrics()
	if err != nil {
		t.Fatalf("Metrics() error = %v", err)
	}
	return m
}

func mustStore(t testing.TB, h *Header, fd *FileData, pixels []uint8, index int) {
	t.Helper()
	if err := StoreGlyphPixels(h, fd, pixels, index); err != nil {
		t.Fatalf("StoreGlyphPixels(%d) error = %v", index, err)
	}
}

// fill returns n bytes of v.
func fill(n int, v byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = v
	}
	return b
}
