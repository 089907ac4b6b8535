// Package common provides shared constants and errors for internal packages.
// These values must match the public API in the msbtfont package.
package common

import "errors"

// Surface format constants (must match public API in msbtfont package)
const (
	// FormatIndexed8 stores one index byte per pixel
	FormatIndexed8 = iota
	// FormatIndexed16 stores the index in byte 0 of a 2-byte pixel
	FormatIndexed16
	// FormatIndexed24 stores the index in byte 0 of a 3-byte pixel
	FormatIndexed24
	// FormatIndexed32 stores the index in byte 0 of a 4-byte pixel
	FormatIndexed32
)

// Surface origin constants (must match public API)
const (
	// OriginUpperLeft makes row 0 the top row
	OriginUpperLeft = iota
	// OriginLowerLeft makes row 0 the bottom row
	OriginLowerLeft
)

// RowAlignment is the byte multiple that padded surface rows are rounded up to.
const RowAlignment = 4

// Common errors (must match public API in msbtfont package)
var (
	// ErrMissingHeader is returned when a nil header is provided
	ErrMissingHeader = errors.New("missing header")
	// ErrMissingHeaderDescriptor is returned when a nil header descriptor is provided
	ErrMissingHeaderDescriptor = errors.New("missing header descriptor")
	// ErrMissingFileData is returned when nil file data is provided
	ErrMissingFileData = errors.New("missing file data")
	// ErrInvalidHeader is returned when neither identity marker is recognised
	ErrInvalidHeader = errors.New("invalid header")
	// ErrInvalidPaletteFormat is returned when the palette format is outside 0-7
	ErrInvalidPaletteFormat = errors.New("invalid palette format")
	// ErrNotInitialized is returned when the file data buffer has not been allocated
	ErrNotInitialized = errors.New("file data not initialized")
	// ErrMissingSourceData is returned when glyph source data is nil
	ErrMissingSourceData = errors.New("missing source data")
	// ErrShortSourceData is returned when glyph source data holds fewer bits than one glyph
	ErrShortSourceData = errors.New("source data too short")
	// ErrIndexOutOfBounds is returned when a glyph index is not below the glyph count
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	// ErrMissingSurfaceDescriptor is returned when a nil surface descriptor is provided
	ErrMissingSurfaceDescriptor = errors.New("missing surface descriptor")
	// ErrNoCharacters is returned when zero characters per row are requested
	ErrNoCharacters = errors.New("no characters per row")
	// ErrMissingSurfaceData is returned when the surface buffer is nil
	ErrMissingSurfaceData = errors.New("missing surface data")
	// ErrShortSurfaceData is returned when the surface buffer is smaller than its descriptor requires
	ErrShortSurfaceData = errors.New("surface data too short")
	// ErrNoSurfaceArea is returned when the surface rectangle has zero width or height
	ErrNoSurfaceArea = errors.New("no surface area")
	// ErrUnsupportedSurfaceFormat is returned for unknown surface formats or origins
	ErrUnsupportedSurfaceFormat = errors.New("unsupported surface format")
)
