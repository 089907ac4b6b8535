package msbtfont

import (
	"fmt"
	"log/slog"

	"github.com/misbitfont/msbtfont/internal/common"
	"github.com/misbitfont/msbtfont/internal/debug"
	"github.com/misbitfont/msbtfont/internal/renderer"
)

// SurfaceFormat selects the pixel layout of a blit target.
// Every format carries the palette index in byte 0 of the pixel.
type SurfaceFormat int

// Surface formats
const (
	// FormatIndexed8 uses 1 byte per pixel
	FormatIndexed8 SurfaceFormat = common.FormatIndexed8
	// FormatIndexed16 uses 2 bytes per pixel, index in the first
	FormatIndexed16 SurfaceFormat = common.FormatIndexed16
	// FormatIndexed24 uses 3 bytes per pixel, index in the first
	FormatIndexed24 SurfaceFormat = common.FormatIndexed24
	// FormatIndexed32 uses 4 bytes per pixel, index in the first
	FormatIndexed32 SurfaceFormat = common.FormatIndexed32
)

// BytesPerPixel returns the pixel size of the format, or 0 if unknown.
func (f SurfaceFormat) BytesPerPixel() int {
	switch f {
	case FormatIndexed8:
		return 1
	case FormatIndexed16:
		return 2
	case FormatIndexed24:
		return 3
	case FormatIndexed32:
		return 4
	}
	return 0
}

// String returns the format name.
func (f SurfaceFormat) String() string {
	return debug.FormatName(int(f))
}

// Origin selects which surface row is row 0.
type Origin int

// Surface origins
const (
	// OriginUpperLeft puts row 0 at the top; y grows downward
	OriginUpperLeft Origin = common.OriginUpperLeft
	// OriginLowerLeft puts row 0 at the bottom; rows are mirrored
	OriginLowerLeft Origin = common.OriginLowerLeft
)

// String returns the origin name.
func (o Origin) String() string {
	return debug.OriginName(int(o))
}

// Rect is a placement offset plus an extent, in pixels.
type Rect struct {
	X, Y          int
	Width, Height int
}

// SurfaceDescriptor describes a caller-owned surface.
//
// Rect.Width and Rect.Height are the size of the whole surface; Rect.X and
// Rect.Y place the first glyph inside it.
type SurfaceDescriptor struct {
	Rect   Rect
	Format SurfaceFormat
	Origin Origin
}

// CopyToSurface draws every glyph of the font onto surface.
//
// Glyphs are placed left to right in index order, starting at (Rect.X, Rect.Y)
// and shifted by WithStartOffset cells. Rows wrap every WithCharsPerRow
// glyphs, or at the surface width when that option is 0. Pixels outside the
// surface are clipped and drawing stops once a row starts below it.
//
// Only byte 0 of each destination pixel is written. For the 16, 24 and
// 32-bit formats the remaining bytes keep whatever the caller stored, so zero
// the surface first if those channels must be defined.
//
// All checks run before anything is written. Errors, in check order:
// ErrMissingHeader, ErrMissingFileData, ErrMissingSurfaceDescriptor,
// ErrMissingSurfaceData, ErrInvalidHeader, ErrNoSurfaceArea,
// ErrNotInitialized, ErrUnsupportedSurfaceFormat, ErrShortSurfaceData.
//
// Concurrent calls may share the same header and file data as long as no
// StoreGlyph runs at the same time; each call must use its own surface.
func CopyToSurface(h *Header, fd *FileData, d *SurfaceDescriptor, surface []byte, opts ...Option) error {
	if h == nil {
		return ErrMissingHeader
	}
	if fd == nil {
		return ErrMissingFileData
	}
	if d == nil {
		return ErrMissingSurfaceDescriptor
	}
	if surface == nil {
		return ErrMissingSurfaceData
	}
	m, err := h.Metrics()
	if err != nil {
		return err
	}
	if d.Rect.Width <= 0 || d.Rect.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrNoSurfaceArea, d.Rect.Width, d.Rect.Height)
	}
	if err := fd.check(m); err != nil {
		return err
	}
	if d.Format.BytesPerPixel() == 0 {
		return fmt.Errorf("%w: format %d", ErrUnsupportedSurfaceFormat, d.Format)
	}
	if d.Origin != OriginUpperLeft && d.Origin != OriginLowerLeft {
		return fmt.Errorf("%w: origin %d", ErrUnsupportedSurfaceFormat, d.Origin)
	}
	need := SurfaceMemoryRequirement(d)
	if len(surface) < need {
		return fmt.Errorf("%w: got %d bytes, surface needs %d", ErrShortSurfaceData, len(surface), need)
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	stats, err := renderer.Blit(renderer.Glyphs{
		Data:         fd.FontData,
		BitsPerPixel: m.BitsPerPixel,
		Width:        m.GlyphWidth,
		Height:       m.GlyphHeight,
		Count:        m.GlyphCount,
	}, renderer.Target{
		Buf:    surface,
		X:      d.Rect.X,
		Y:      d.Rect.Y,
		Width:  d.Rect.Width,
		Height: d.Rect.Height,
		Format: int(d.Format),
		Origin: int(d.Origin),
		Stride: RowStride(d.Format, d.Rect.Width),
	}, options.toInternal())
	if err != nil {
		return err
	}

	Logger().Debug("msbtfont: copied to surface",
		slog.String("format", d.Format.String()),
		slog.String("origin", d.Origin.String()),
		slog.Int("glyphs", stats.GlyphsVisited),
		slog.Int("pixels", stats.PixelsWritten),
		slog.Bool("stopped_early", stats.StoppedEarly))
	return nil
}

func (o *options) toInternal() *renderer.Options {
	return &renderer.Options{
		CharsPerRow: o.charsPerRow,
		StartOffset: o.startOffset,
		Debug:       o.debug,
	}
}
