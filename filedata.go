package msbtfont

import (
	"errors"
	"fmt"
	"log/slog"
)

// Advance table errors
var (
	// ErrNoAdvanceTable is returned when advances are accessed on a fixed-width font
	ErrNoAdvanceTable = errors.New("font has no advance table")

	// ErrInvalidAdvance is returned when an advance is outside 1..GlyphWidth
	ErrInvalidAdvance = errors.New("invalid advance width")
)

// FileData is the in-memory body of a font: an optional advance table
// followed by the densely packed glyph pixels.
//
// VariableTable and FontData are views into Data; all three share one
// allocation that is created by NewFileData and dropped by Release.
//
// FileData is safe for concurrent reads. Writes (StoreGlyph, SetAdvance) must
// be serialized per FileData, because neighbouring glyphs can share a byte.
type FileData struct {
	// Data is the whole allocation
	Data []byte

	// VariableTable holds one advance byte per glyph, nil for fixed-width fonts
	VariableTable []byte

	// FontData holds the packed glyph pixels
	FontData []byte
}

// NewFileData allocates file data sized for the font the header describes.
//
// Pixels start cleared to index 0. For variable-width fonts every advance
// table entry starts at the header's MaxFontWidth byte, i.e. every glyph
// advances by the full cell width.
func NewFileData(h *Header) (*FileData, error) {
	if h == nil {
		return nil, ErrMissingHeader
	}
	m, err := h.Metrics()
	if err != nil {
		return nil, err
	}

	size := RequiredBufferSize(m)
	table := AdvanceTableSize(m)
	fd := &FileData{Data: make([]byte, size)}
	if m.VariableWidths {
		fd.VariableTable = fd.Data[:table:table]
		for i := range fd.VariableTable {
			fd.VariableTable[i] = h.MaxFontWidth
		}
	}
	fd.FontData = fd.Data[table:]

	Logger().Debug("msbtfont: file data allocated",
		slog.Int("size", size),
		slog.Int("advance_table", table),
		slog.Int("glyphs", m.GlyphCount),
		slog.Int("bpp", m.BitsPerPixel))
	return fd, nil
}

// Release drops the allocation. Further use of fd fails with ErrNotInitialized.
func (fd *FileData) Release() error {
	if fd == nil {
		return ErrMissingFileData
	}
	if fd.Data == nil {
		return ErrNotInitialized
	}
	fd.Data = nil
	fd.VariableTable = nil
	fd.FontData = nil
	return nil
}

// Size returns the size of the allocation in bytes.
func (fd *FileData) Size() int {
	if fd == nil {
		return 0
	}
	return len(fd.Data)
}

// check validates fd against metrics decoded from its header. The packed
// region must be large enough for every glyph so that the bit codec, which
// trusts its caller, never runs past the end.
func (fd *FileData) check(m Metrics) error {
	if fd == nil {
		return ErrMissingFileData
	}
	if fd.Data == nil {
		return ErrNotInitialized
	}
	if need := PixelDataSize(m); len(fd.FontData) < need {
		return fmt.Errorf("%w: pixel region holds %d bytes, font needs %d", ErrNotInitialized, len(fd.FontData), need)
	}
	return nil
}

func (fd *FileData) advanceSlot(h *Header, index int) (Metrics, error) {
	if h == nil {
		return Metrics{}, ErrMissingHeader
	}
	if fd == nil {
		return Metrics{}, ErrMissingFileData
	}
	if fd.Data == nil {
		return Metrics{}, ErrNotInitialized
	}
	m, err := h.Metrics()
	if err != nil {
		return Metrics{}, err
	}
	if !m.VariableWidths || len(fd.VariableTable) < m.GlyphCount {
		return Metrics{}, ErrNoAdvanceTable
	}
	if index < 0 || index >= m.GlyphCount {
		return Metrics{}, fmt.Errorf("%w: glyph %d of %d", ErrIndexOutOfBounds, index, m.GlyphCount)
	}
	return m, nil
}

// Advance returns the advance width in pixels of glyph index.
// Table entries use the header's minus-one encoding.
func (fd *FileData) Advance(h *Header, index int) (int, error) {
	if _, err := fd.advanceSlot(h, index); err != nil {
		return 0, err
	}
	return int(fd.VariableTable[index]) + 1, nil
}

// SetAdvance sets the advance width in pixels of glyph index.
// The width must be between 1 and the glyph cell width.
func (fd *FileData) SetAdvance(h *Header, index, width int) error {
	m, err := fd.advanceSlot(h, index)
	if err != nil {
		return err
	}
	if width < 1 || width > m.GlyphWidth {
		return fmt.Errorf("%w: %d not in 1..%d", ErrInvalidAdvance, width, m.GlyphWidth)
	}
	fd.VariableTable[index] = uint8(width - 1)
	return nil
}
