// Package renderer copies packed glyphs onto byte-aligned pixel surfaces.
//
// A blit is a pipeline of three independent parts:
//   - grid: walks glyph cells over the surface (row wrapping, start offset)
//   - extractor: decodes one glyph's packed indices, chosen by bits per pixel
//   - pixelWriter: stores indices into the surface, chosen by format and origin
//
// The package trusts its caller (the msbtfont package) to have validated
// every argument; it only guards against values it cannot represent.
package renderer

import (
	"fmt"
	"time"

	"github.com/misbitfont/msbtfont/internal/bitfield"
	"github.com/misbitfont/msbtfont/internal/common"
	"github.com/misbitfont/msbtfont/internal/debug"
)

// Blit draws every glyph of g onto t in ascending index order.
//
// Pixels falling outside [0, t.Width) x [0, t.Height) are skipped. Only the
// first byte of each destination pixel is written; any other bytes keep the
// values the caller put there.
func Blit(g Glyphs, t Target, opts *Options) (Stats, error) {
	if opts == nil {
		opts = &Options{}
	}
	if !bitfield.ValidWidth(uint(g.BitsPerPixel)) || g.Width <= 0 || g.Height <= 0 || g.Count < 0 {
		return Stats{}, fmt.Errorf("%w: %d bpp, %dx%d, %d glyphs", ErrInvalidGlyphs, g.BitsPerPixel, g.Width, g.Height, g.Count)
	}
	writer, err := newPixelWriter(t)
	if err != nil {
		return Stats{}, err
	}

	session := opts.Debug
	session.BeginBlit()
	start := time.Now()
	session.Emit("blit", "Start", debug.BlitStartData{
		GlyphCount:   g.Count,
		GlyphWidth:   g.Width,
		GlyphHeight:  g.Height,
		BitsPerPixel: g.BitsPerPixel,
		Format:       debug.FormatName(t.Format),
		Origin:       debug.OriginName(t.Origin),
		RectX:        t.X,
		RectY:        t.Y,
		RectWidth:    t.Width,
		RectHeight:   t.Height,
		Stride:       t.Stride,
		CharsPerRow:  opts.CharsPerRow,
		StartOffset:  opts.StartOffset,
	})

	var stats Stats
	defer func() {
		session.Emit("blit", "End", debug.BlitEndData{
			GlyphsVisited: stats.GlyphsVisited,
			PixelsWritten: stats.PixelsWritten,
			StoppedEarly:  stats.StoppedEarly,
			ElapsedUs:     time.Since(start).Microseconds(),
		})
	}()

	cells := newGrid(g, t, opts)
	if !cells.applyStartOffset() {
		session.Emit("blit", "StartSkip", debug.StartSkipData{CursorX: cells.x, CursorY: cells.y})
		stats.StoppedEarly = g.Count > 0
		return stats, nil
	}

	state := acquireBlitState(g.Width * g.Height)
	defer releaseBlitState(state)
	extract := extractorFor(g.BitsPerPixel)

	for i := 0; i < g.Count; i++ {
		if !cells.enter(i) {
			stats.StoppedEarly = true
			break
		}
		bitOff := i * g.BitsPerPixel * g.Width * g.Height
		extract(state.pixels, g.Data, bitfield.At(bitOff), uint(g.BitsPerPixel))
		written := writer.glyph(state.pixels, g.Width, g.Height, cells.x, cells.y)
		stats.GlyphsVisited++
		stats.PixelsWritten += written

		session.Emit("blit", "Glyph", debug.GlyphPlacedData{
			Index:   i,
			CursorX: cells.x,
			CursorY: cells.y,
			BitOff:  bitOff,
			Written: written,
			Clipped: written < g.Width*g.Height,
		})

		if !cells.leave(i) {
			if i < g.Count-1 {
				stats.StoppedEarly = true
			}
			break
		}
	}
	return stats, nil
}

// grid tracks the cursor of the glyph cell being drawn.
type grid struct {
	x, y          int // top-left corner of the current cell
	originX       int // column rows restart at
	width, height int // surface bounds
	cellW, cellH  int
	perRow        int
	startOffset   int
	session       *debug.Session
}

func newGrid(g Glyphs, t Target, opts *Options) *grid {
	return &grid{
		x:           t.X,
		y:           t.Y,
		originX:     t.X,
		width:       t.Width,
		height:      t.Height,
		cellW:       g.Width,
		cellH:       g.Height,
		perRow:      opts.CharsPerRow,
		startOffset: opts.StartOffset,
		session:     opts.Debug,
	}
}

// applyStartOffset pre-advances the cursor by startOffset cells. Cells that
// overflow the surface width fold into whole rows. It reports false when the
// cursor ends up below the surface.
func (gr *grid) applyStartOffset() bool {
	if gr.startOffset == 0 {
		return true
	}
	gr.x += gr.startOffset * gr.cellW
	if gr.x >= gr.width {
		rows := gr.x / gr.width
		gr.x %= gr.width
		gr.y += rows * gr.cellH
		gr.session.Emit("blit", "RowWrap", debug.RowWrapData{Reason: "start_offset", Index: 0, CursorY: gr.y})
		if gr.y >= gr.height {
			return false
		}
	}
	return true
}

// enter positions the cursor for glyph i, starting a new row every perRow
// glyphs. It reports false when the new row lies below the surface.
func (gr *grid) enter(i int) bool {
	if gr.perRow == 0 {
		return true
	}
	n := gr.startOffset + i
	if n != 0 && n%gr.perRow == 0 {
		gr.x = gr.originX
		gr.y += gr.cellH
		gr.session.Emit("blit", "RowWrap", debug.RowWrapData{Reason: "chars_per_row", Index: i, CursorY: gr.y})
		if gr.y >= gr.height {
			return false
		}
	}
	return true
}

// leave advances the cursor past glyph i. Without a fixed row length the
// cursor wraps once it reaches the surface width. It reports false when the
// cursor lies below the surface.
func (gr *grid) leave(i int) bool {
	gr.x += gr.cellW
	if gr.perRow == 0 && gr.x >= gr.width {
		gr.x = gr.originX
		gr.y += gr.cellH
		gr.session.Emit("blit", "RowWrap", debug.RowWrapData{Reason: "width", Index: i, CursorY: gr.y})
	}
	return gr.y < gr.height
}

// extractor decodes the len(dst) indices that start at c.
type extractor func(dst []uint8, data []byte, c bitfield.Cursor, bpp uint)

func extractorFor(bpp int) extractor {
	if bpp == 8 {
		return copyIndices
	}
	return unpackIndices
}

// copyIndices handles 8 bpp fonts, whose glyphs are always byte aligned and
// store each index verbatim.
func copyIndices(dst []uint8, data []byte, c bitfield.Cursor, _ uint) {
	copy(dst, data[c.Byte:c.Byte+len(dst)])
}

func unpackIndices(dst []uint8, data []byte, c bitfield.Cursor, bpp uint) {
	var r bitfield.Reader
	r.Reset(data, c, bpp)
	r.ReadInto(dst)
}

// pixelWriter stores indices into byte 0 of surface pixels.
type pixelWriter struct {
	buf           []byte
	width, height int
	pixelSize     int
	stride        int
	flip          bool
}

func newPixelWriter(t Target) (*pixelWriter, error) {
	var size int
	switch t.Format {
	case common.FormatIndexed8:
		size = 1
	case common.FormatIndexed16:
		size = 2
	case common.FormatIndexed24:
		size = 3
	case common.FormatIndexed32:
		size = 4
	default:
		return nil, fmt.Errorf("%w: format %d", common.ErrUnsupportedSurfaceFormat, t.Format)
	}

	var flip bool
	switch t.Origin {
	case common.OriginUpperLeft:
	case common.OriginLowerLeft:
		flip = true
	default:
		return nil, fmt.Errorf("%w: origin %d", common.ErrUnsupportedSurfaceFormat, t.Origin)
	}

	if t.Width <= 0 || t.Height <= 0 {
		return nil, common.ErrNoSurfaceArea
	}
	if t.Stride < t.Width*size || len(t.Buf) < t.Stride*t.Height {
		return nil, fmt.Errorf("%w: %d bytes for %d rows of %d", common.ErrShortSurfaceData, len(t.Buf), t.Height, t.Stride)
	}

	return &pixelWriter{
		buf:       t.Buf,
		width:     t.Width,
		height:    t.Height,
		pixelSize: size,
		stride:    t.Stride,
		flip:      flip,
	}, nil
}

// rowOffset returns the byte offset of surface row y.
func (w *pixelWriter) rowOffset(y int) int {
	if w.flip {
		y = w.height - 1 - y
	}
	return y * w.stride
}

// glyph writes a gw x gh cell of indices with its top-left corner at
// (ox, oy) and returns the number of pixels written.
func (w *pixelWriter) glyph(pixels []uint8, gw, gh, ox, oy int) int {
	written := 0
	for gy := 0; gy < gh; gy++ {
		y := oy + gy
		if y >= w.height {
			break
		}
		if y < 0 {
			continue
		}
		row := w.rowOffset(y)
		src := pixels[gy*gw : (gy+1)*gw]
		for gx, v := range src {
			x := ox + gx
			if x >= w.width {
				break
			}
			if x < 0 {
				continue
			}
			w.buf[row+x*w.pixelSize] = v
			written++
		}
	}
	return written
}
