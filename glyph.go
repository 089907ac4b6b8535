package msbtfont

import (
	"fmt"

	"github.com/misbitfont/msbtfont/internal/bitfield"
)

// glyphSlot runs the checks shared by StoreGlyph and ReadGlyph and returns the
// font metrics. Checks happen in a fixed order and before any mutation.
func glyphSlot(h *Header, fd *FileData, index int) (Metrics, error) {
	if fd.Data == nil {
		return Metrics{}, ErrNotInitialized
	}
	m, err := h.Metrics()
	if err != nil {
		return Metrics{}, err
	}
	if index < 0 || index >= m.GlyphCount {
		return Metrics{}, fmt.Errorf("%w: glyph %d of %d", ErrIndexOutOfBounds, index, m.GlyphCount)
	}
	if err := fd.check(m); err != nil {
		return Metrics{}, err
	}
	return m, nil
}

// StoreGlyph copies one glyph into the packed region.
//
// src holds GlyphWidth*GlyphHeight palette indices in row-major order, each
// BitsPerPixel bits wide and densely packed from the most significant bit of
// src[0] (the same layout PackPixels produces). Only the bits of the target
// glyph change; a neighbour sharing a byte at either end keeps its bits.
//
// Errors, in check order: ErrMissingHeader, ErrMissingFileData,
// ErrMissingSourceData, ErrNotInitialized, ErrInvalidHeader,
// ErrIndexOutOfBounds, ErrShortSourceData.
//
// StoreGlyph is not safe for concurrent use on the same FileData.
func StoreGlyph(h *Header, fd *FileData, src []byte, index int) error {
	if h == nil {
		return ErrMissingHeader
	}
	if fd == nil {
		return ErrMissingFileData
	}
	if src == nil {
		return ErrMissingSourceData
	}
	m, err := glyphSlot(h, fd, index)
	if err != nil {
		return err
	}
	pixels := m.GlyphPixels()
	if need := bitfield.ByteLen(m.GlyphBits()); len(src) < need {
		return fmt.Errorf("%w: got %d bytes, glyph needs %d", ErrShortSourceData, len(src), need)
	}

	bitfield.Copy(fd.FontData, bitfield.At(m.GlyphBitOffset(index)),
		src, bitfield.Cursor{}, uint(m.BitsPerPixel), pixels)
	return nil
}

// StoreGlyphPixels stores a glyph given as one palette index per byte.
// Values are truncated to BitsPerPixel bits.
func StoreGlyphPixels(h *Header, fd *FileData, pixels []uint8, index int) error {
	if h == nil {
		return ErrMissingHeader
	}
	if pixels == nil {
		if fd == nil {
			return ErrMissingFileData
		}
		return ErrMissingSourceData
	}
	m, err := h.Metrics()
	if err != nil {
		// let StoreGlyph report errors in its usual order
		return StoreGlyph(h, fd, []byte{}, index)
	}
	if len(pixels) < m.GlyphPixels() {
		return fmt.Errorf("%w: got %d pixels, glyph needs %d", ErrShortSourceData, len(pixels), m.GlyphPixels())
	}
	return StoreGlyph(h, fd, PackPixels(m.BitsPerPixel, pixels[:m.GlyphPixels()]), index)
}

// ReadGlyph returns the palette indices of one glyph in row-major order, one
// per byte, each in [0, 2^BitsPerPixel).
func ReadGlyph(h *Header, fd *FileData, index int) ([]uint8, error) {
	if h == nil {
		return nil, ErrMissingHeader
	}
	if fd == nil {
		return nil, ErrMissingFileData
	}
	m, err := glyphSlot(h, fd, index)
	if err != nil {
		return nil, err
	}
	out := make([]uint8, m.GlyphPixels())
	bitfield.NewReader(fd.FontData, bitfield.At(m.GlyphBitOffset(index)), uint(m.BitsPerPixel)).ReadInto(out)
	return out, nil
}

// PackPixels packs one index per byte into the dense layout StoreGlyph reads.
// bpp must be between 1 and 8; values are truncated to bpp bits.
func PackPixels(bpp int, pixels []uint8) []byte {
	if !bitfield.ValidWidth(uint(bpp)) {
		panic(fmt.Sprintf("msbtfont: invalid bits per pixel %d", bpp))
	}
	out := make([]byte, bitfield.ByteLen(bpp*len(pixels)))
	w := bitfield.NewWriter(out, bitfield.Cursor{}, uint(bpp))
	for _, p := range pixels {
		w.Put(p)
	}
	return out
}

// UnpackPixels is the inverse of PackPixels: it reads n indices of bpp bits
// from packed. It panics if packed is shorter than n fields.
func UnpackPixels(bpp int, packed []byte, n int) []uint8 {
	if !bitfield.ValidWidth(uint(bpp)) {
		panic(fmt.Sprintf("msbtfont: invalid bits per pixel %d", bpp))
	}
	if len(packed) < bitfield.ByteLen(bpp*n) {
		panic(fmt.Sprintf("msbtfont: %d packed bytes cannot hold %d fields of %d bits", len(packed), n, bpp))
	}
	out := make([]uint8, n)
	bitfield.NewReader(packed, bitfield.Cursor{}, uint(bpp)).ReadInto(out)
	return out
}
