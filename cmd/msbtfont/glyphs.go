package main

import (
	"fmt"
	"image"
	"os"

	"github.com/misbitfont/msbtfont"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// rasterizer renders glyphs of a face into fixed-size cells of palette
// indices.
type rasterizer struct {
	face          font.Face
	width, height int
	ascent        int
	bpp           int
}

func newRasterizer(face font.Face, bpp int) (*rasterizer, error) {
	if bpp < 1 || bpp > 8 {
		return nil, fmt.Errorf("bits per pixel must be 1-8, got %d", bpp)
	}
	m := face.Metrics()
	adv, ok := face.GlyphAdvance('M')
	if !ok {
		return nil, fmt.Errorf("face has no glyph for 'M'")
	}
	w, h := adv.Ceil(), m.Height.Ceil()
	if w < 1 || w > 256 || h < 1 || h > 256 {
		return nil, fmt.Errorf("face cell %dx%d does not fit a font header", w, h)
	}
	return &rasterizer{
		face:   face,
		width:  w,
		height: h,
		ascent: m.Ascent.Ceil(),
		bpp:    bpp,
	}, nil
}

// glyph returns the cell for r and its advance width. Runes the face lacks
// come back blank with ok false.
//
// Coverage is quantized by keeping the top bpp bits of the alpha value.
func (rz *rasterizer) glyph(r rune) (pixels []uint8, advance int, ok bool) {
	pixels = make([]uint8, rz.width*rz.height)
	cell := image.NewAlpha(image.Rect(0, 0, rz.width, rz.height))

	dr, mask, maskp, adv, ok := rz.face.Glyph(fixed.P(0, rz.ascent), r)
	if !ok {
		return pixels, rz.width, false
	}
	draw.DrawMask(cell, dr, image.Opaque, image.Point{}, mask, maskp, draw.Over)

	shift := 8 - uint(rz.bpp)
	inkRight := 0
	for y := 0; y < rz.height; y++ {
		row := cell.Pix[y*cell.Stride : y*cell.Stride+rz.width]
		for x, a := range row {
			v := a >> shift
			pixels[y*rz.width+x] = v
			if v != 0 && x+1 > inkRight {
				inkRight = x + 1
			}
		}
	}

	// Proportional advance: ink plus one column of spacing. Blank glyphs
	// such as space keep the face advance.
	advance = adv.Ceil()
	if inkRight > 0 {
		advance = inkRight + 1
	}
	advance = max(1, min(advance, rz.width))
	return pixels, advance, true
}

// buildFont rasterizes cfg's rune range from the built-in 7x13 face.
func buildFont(cfg fontConfig) (*msbtfont.Font, error) {
	first, last, err := cfg.runeRange()
	if err != nil {
		return nil, err
	}
	rz, err := newRasterizer(basicfont.Face7x13, cfg.BitsPerPixel)
	if err != nil {
		return nil, err
	}

	var flags uint8
	if cfg.VariableWidths {
		flags |= msbtfont.FlagVariableWidths
	}
	count := int(last-first) + 1
	f, err := msbtfont.NewFont(&msbtfont.HeaderDescriptor{
		PaletteFormat:  uint8(cfg.BitsPerPixel - 1),
		MaxFontWidth:   uint8(rz.width - 1),
		MaxFontHeight:  uint8(rz.height - 1),
		Flags:          flags,
		CharacterCount: uint32(count),
		FontName:       cfg.Name,
		Language:       cfg.Language,
	})
	if err != nil {
		return nil, err
	}

	missing := 0
	for i := 0; i < count; i++ {
		pixels, advance, ok := rz.glyph(first + rune(i))
		if !ok {
			missing++
		}
		if err := msbtfont.StoreGlyphPixels(f.Header, f.Data, pixels, i); err != nil {
			return nil, fmt.Errorf("storing %U: %w", first+rune(i), err)
		}
		if cfg.VariableWidths {
			if err := f.Data.SetAdvance(f.Header, i, advance); err != nil {
				return nil, fmt.Errorf("advance of %U: %w", first+rune(i), err)
			}
		}
	}
	if missing > 0 {
		msbtfont.Logger().Warn("glyphs missing from face, stored blank", "count", missing)
	}
	return f, nil
}

func loadFontFile(path string) (*msbtfont.Font, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening font image: %w", err)
	}
	defer file.Close()
	return msbtfont.ParseFont(file)
}

func writeFontImage(path string, f *msbtfont.Font) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.WriteTo(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
