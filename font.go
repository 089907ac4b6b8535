// Package msbtfont stores bitmap fonts whose pixels are palette indices packed
// at 1 to 8 bits each, and copies them onto byte-aligned indexed surfaces.
//
// A font is a Header describing the glyph cell, the bits per pixel and the
// glyph count, plus a FileData buffer holding an optional advance table and
// the packed pixels. Glyphs are written with StoreGlyph and drawn onto a
// caller-owned surface with CopyToSurface.
//
// Example:
//
//	h, err := msbtfont.NewHeader(&msbtfont.HeaderDescriptor{
//	    PaletteFormat:  1, // 2 bits per pixel
//	    MaxFontWidth:   7, // 8 pixels wide
//	    MaxFontHeight:  7, // 8 pixels tall
//	    CharacterCount: 96,
//	    FontName:       "tiny",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fd, err := msbtfont.NewFileData(h)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for i, glyph := range glyphs {
//	    if err := msbtfont.StoreGlyph(h, fd, glyph, i); err != nil {
//	        log.Fatal(err)
//	    }
//	}
package msbtfont

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
)

// ErrBadFontImage is returned when a serialized font image is truncated or
// has trailing bytes.
var ErrBadFontImage = errors.New("malformed font image")

// Font pairs a header with the file data it describes.
//
// A serialized font image is the 156-byte header record immediately followed
// by FileData.Data.
type Font struct {
	Header *Header
	Data   *FileData
}

// NewFont creates a header from d and allocates matching file data.
func NewFont(d *HeaderDescriptor) (*Font, error) {
	h, err := NewHeader(d)
	if err != nil {
		return nil, err
	}
	fd, err := NewFileData(h)
	if err != nil {
		return nil, err
	}
	return &Font{Header: h, Data: fd}, nil
}

// Metrics returns the addressing parameters from the font's header.
func (f *Font) Metrics() (Metrics, error) {
	if f == nil {
		return Metrics{}, ErrMissingHeader
	}
	return f.Header.Metrics()
}

// MarshalBinary encodes the font image.
func (f *Font) MarshalBinary() ([]byte, error) {
	if f == nil || f.Header == nil {
		return nil, ErrMissingHeader
	}
	m, err := f.Header.Metrics()
	if err != nil {
		return nil, err
	}
	if err := f.Data.check(m); err != nil {
		return nil, err
	}
	out := make([]byte, 0, HeaderSize+len(f.Data.Data))
	out, err = f.Header.AppendBinary(out)
	if err != nil {
		return nil, err
	}
	return append(out, f.Data.Data...), nil
}

// WriteTo writes the font image to w.
func (f *Font) WriteTo(w io.Writer) (int64, error) {
	img, err := f.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(img)
	return int64(n), err
}

// ParseFontBytes decodes a font image. The returned font owns a copy of the
// body, so data may be reused by the caller.
//
// The header markers are validated and the body must be exactly the size the
// header requires.
func ParseFontBytes(data []byte) (*Font, error) {
	h := new(Header)
	if err := h.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	m, err := h.Metrics()
	if err != nil {
		return nil, err
	}

	body := data[HeaderSize:]
	if need := RequiredBufferSize(m); len(body) != need {
		return nil, fmt.Errorf("%w: body is %d bytes, header requires %d", ErrBadFontImage, len(body), need)
	}

	fd, err := NewFileData(h)
	if err != nil {
		return nil, err
	}
	copy(fd.Data, body)
	return &Font{Header: h, Data: fd}, nil
}

// ParseFont reads a whole font image from r.
func ParseFont(r io.Reader) (*Font, error) {
	if r == nil {
		return nil, errors.New("reader cannot be nil")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read font image: %w", err)
	}
	return ParseFontBytes(data)
}

// cleanFSPath validates and cleans a path for use with fs.FS.
// It rejects absolute paths, backslashes and traversal outside the root.
func cleanFSPath(p string) (string, error) {
	if p == "" {
		return "", errors.New("path cannot be empty")
	}
	if strings.HasPrefix(p, "/") {
		return "", errors.New("absolute paths not allowed")
	}
	if strings.ContainsRune(p, '\\') {
		return "", errors.New("backslashes not allowed in fs paths")
	}
	if !fs.ValidPath(p) {
		return "", fmt.Errorf("invalid fs path: %s", p)
	}
	clean := path.Clean(p)
	if clean == "." || strings.HasPrefix(clean, "../") {
		return "", errors.New("path traversal not allowed")
	}
	return clean, nil
}

// LoadFontFS loads a font image from a filesystem.
//
// Example with embed.FS:
//
//	//go:embed fonts/*.msbt
//	var fonts embed.FS
//
//	font, err := msbtfont.LoadFontFS(fonts, "fonts/tiny.msbt")
//	if err != nil {
//	    log.Fatal(err)
//	}
func LoadFontFS(fsys fs.FS, fontPath string) (*Font, error) {
	if fsys == nil {
		return nil, fmt.Errorf("filesystem cannot be nil")
	}
	clean, err := cleanFSPath(fontPath)
	if err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(fsys, clean)
	if err != nil {
		return nil, fmt.Errorf("failed to open font file: %w", err)
	}
	font, err := ParseFontBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", clean, err)
	}
	return font, nil
}

// CopyToSurface draws the font onto surface. See the package-level
// CopyToSurface.
func (f *Font) CopyToSurface(d *SurfaceDescriptor, surface []byte, opts ...Option) error {
	if f == nil {
		return ErrMissingHeader
	}
	return CopyToSurface(f.Header, f.Data, d, surface, opts...)
}

// SurfaceSize returns the surface extent needed to lay the font out with
// charsPerRow glyphs per row.
func (f *Font) SurfaceSize(charsPerRow int) (Rect, error) {
	if f == nil {
		return Rect{}, ErrMissingHeader
	}
	return SurfaceSize(f.Header, charsPerRow)
}
