package main

import (
	"image"
	"image/color"
	"os"

	"github.com/misbitfont/msbtfont"
	"github.com/misbitfont/msbtfont/internal/debug"
	"golang.org/x/image/bmp"
)

// preview is a font blitted onto a freshly allocated surface.
type preview struct {
	desc msbtfont.SurfaceDescriptor
	buf  []byte
	bpp  int
}

// renderPreview sizes a surface for the font laid out with opts, then
// copies every glyph onto it.
func renderPreview(f *msbtfont.Font, opts surfaceOptions, session *debug.Session) (*preview, error) {
	m, err := f.Metrics()
	if err != nil {
		return nil, err
	}
	rect, err := f.SurfaceSize(opts.charsPerRow)
	if err != nil {
		return nil, err
	}
	if opts.startOffset > 0 {
		// Room for the skipped cells as well.
		rows := (m.GlyphCount + opts.startOffset + opts.charsPerRow - 1) / opts.charsPerRow
		rect.Height = rows * m.GlyphHeight
	}

	p := &preview{
		desc: msbtfont.SurfaceDescriptor{
			Rect:   rect,
			Format: opts.format,
			Origin: opts.origin,
		},
		bpp: m.BitsPerPixel,
	}
	p.buf = make([]byte, msbtfont.SurfaceMemoryRequirement(&p.desc))

	err = f.CopyToSurface(&p.desc, p.buf,
		msbtfont.WithCharsPerRow(opts.charsPerRow),
		msbtfont.WithStartOffset(opts.startOffset),
		msbtfont.WithDebug(session),
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// grayPalette maps each palette index to an evenly spaced gray level.
func grayPalette(bpp int) color.Palette {
	n := 1 << bpp
	pal := make(color.Palette, n)
	for i := range pal {
		pal[i] = color.Gray{Y: uint8(i * 255 / (n - 1))}
	}
	return pal
}

// toImage converts the surface to a top-down paletted image, reading the
// index from byte 0 of each pixel.
func (p *preview) toImage() *image.Paletted {
	w, h := p.desc.Rect.Width, p.desc.Rect.Height
	img := image.NewPaletted(image.Rect(0, 0, w, h), grayPalette(p.bpp))
	stride := msbtfont.RowStride(p.desc.Format, w)
	size := p.desc.Format.BytesPerPixel()
	for y := 0; y < h; y++ {
		row := y
		if p.desc.Origin == msbtfont.OriginLowerLeft {
			row = h - 1 - y
		}
		src := p.buf[row*stride:]
		dst := img.Pix[y*img.Stride : y*img.Stride+w]
		for x := range dst {
			dst[x] = src[x*size]
		}
	}
	return img
}

func writeBMP(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := bmp.Encode(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
