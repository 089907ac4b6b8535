package msbtfont

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// HeaderSize is the size in bytes of the encoded header record.
const HeaderSize = 156

// FlagVariableWidths marks fonts that carry a per-glyph advance table.
const FlagVariableWidths = 0x01

// TextFieldSize is the capacity of the font name and language fields.
const TextFieldSize = 64

// Record layout. Every multi-byte field is stored twice, once per byte order,
// so that a reader of either endianness finds a field it can read natively.
const (
	offMagicLE       = 0
	offVersionLE     = offMagicLE + 4
	offMagicBE       = offVersionLE + 4
	offVersionBE     = offMagicBE + 4
	offPaletteFormat = offVersionBE + 4
	offMaxWidth      = offPaletteFormat + 1
	offMaxHeight     = offMaxWidth + 1
	offFlags         = offMaxHeight + 1
	offCountLE       = offFlags + 1
	offCountBE       = offCountLE + 4
	offFontName      = offCountBE + 4
	offLanguage      = offFontName + TextFieldSize
)

func fourCC(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

var (
	magicLE = fourCC('M', 'S', 'B', 'T')
	magicBE = fourCC('T', 'B', 'S', 'M')

	// CurrentVersion is the format version written by NewHeader.
	CurrentVersion = Version{Major: 0, Minor: 1}
)

// Header validation errors
var (
	// ErrFieldTooLong is returned when a text field does not fit its 64-byte slot
	ErrFieldTooLong = errors.New("text field too long")

	// ErrInvalidText is returned when a text field is not valid UTF-8
	ErrInvalidText = errors.New("text field is not valid UTF-8")

	// ErrInvalidLanguage is returned when the language is not a BCP 47 tag
	ErrInvalidLanguage = errors.New("invalid language tag")
)

// Version is a format version pair.
type Version struct {
	Major uint16
	Minor uint16
}

func (v Version) swapped() Version {
	return Version{Major: bits.ReverseBytes16(v.Major), Minor: bits.ReverseBytes16(v.Minor)}
}

// String returns the version as "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Header is the fixed-size record that describes a MisbitFont image.
//
// Numeric fields hold the values a little-endian reader sees when it loads the
// record, so the *BE fields carry byte-swapped values. Build headers with
// NewHeader or UnmarshalBinary rather than by hand.
type Header struct {
	MagicLE   uint32
	VersionLE Version
	MagicBE   uint32
	VersionBE Version

	// PaletteFormat is bits per pixel minus one (0-7)
	PaletteFormat uint8
	// MaxFontWidth is the glyph width minus one
	MaxFontWidth uint8
	// MaxFontHeight is the glyph height minus one
	MaxFontHeight uint8
	// Flags holds FlagVariableWidths and reserved bits
	Flags uint8

	CountLE uint32
	CountBE uint32

	// Name and Lang are NUL-padded UTF-8 strings, both optional
	Name [TextFieldSize]byte
	Lang [TextFieldSize]byte
}

// HeaderDescriptor carries the values a caller chooses when creating a font.
// Width and height use the same minus-one encoding as the header.
type HeaderDescriptor struct {
	PaletteFormat  uint8
	MaxFontWidth   uint8
	MaxFontHeight  uint8
	Flags          uint8
	CharacterCount uint32
	FontName       string
	Language       string
}

// NewHeader builds a header from a descriptor, filling in the identity
// markers, the version and both byte orders of the character count.
//
// The font name is normalized to NFC. A non-empty language must parse as a
// BCP 47 tag and is stored in canonical form. Both must fit in 64 bytes.
func NewHeader(d *HeaderDescriptor) (*Header, error) {
	if d == nil {
		return nil, ErrMissingHeaderDescriptor
	}
	if d.PaletteFormat > 7 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPaletteFormat, d.PaletteFormat)
	}

	name, err := encodeTextField("font name", norm.NFC.String(d.FontName))
	if err != nil {
		return nil, err
	}

	lang := d.Language
	if lang != "" {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidLanguage, lang, err)
		}
		lang = tag.String()
	}
	langField, err := encodeTextField("language", lang)
	if err != nil {
		return nil, err
	}

	return &Header{
		MagicLE:       magicLE,
		VersionLE:     CurrentVersion,
		MagicBE:       magicBE,
		VersionBE:     CurrentVersion.swapped(),
		PaletteFormat: d.PaletteFormat,
		MaxFontWidth:  d.MaxFontWidth,
		MaxFontHeight: d.MaxFontHeight,
		Flags:         d.Flags,
		CountLE:       d.CharacterCount,
		CountBE:       bits.ReverseBytes32(d.CharacterCount),
		Name:          name,
		Lang:          langField,
	}, nil
}

func encodeTextField(field, s string) ([TextFieldSize]byte, error) {
	var out [TextFieldSize]byte
	if !utf8.ValidString(s) {
		return out, fmt.Errorf("%w: %s", ErrInvalidText, field)
	}
	if len(s) > TextFieldSize {
		return out, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFieldTooLong, field, len(s), TextFieldSize)
	}
	copy(out[:], s)
	return out, nil
}

func decodeTextField(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// FontName returns the font name with its NUL padding removed.
func (h *Header) FontName() string {
	return decodeTextField(h.Name[:])
}

// Language returns the language tag with its NUL padding removed.
func (h *Header) Language() string {
	return decodeTextField(h.Lang[:])
}

// Metrics validates the identity markers and returns the font's addressing
// parameters.
//
// Marker Selection:
//   - MagicLE == "MSBT": the little-endian count is used
//   - otherwise MagicBE == "TBSM": the big-endian count is used
//   - otherwise: ErrInvalidHeader
//
// Both paths compute sizes with the same formula, bits per pixel included.
func (h *Header) Metrics() (Metrics, error) {
	if h == nil {
		return Metrics{}, ErrMissingHeader
	}
	var count uint32
	switch {
	case h.MagicLE == magicLE:
		count = h.CountLE
	case h.MagicBE == magicBE:
		count = bits.ReverseBytes32(h.CountBE)
	default:
		return Metrics{}, ErrInvalidHeader
	}
	if h.PaletteFormat > 7 {
		return Metrics{}, fmt.Errorf("%w: %d", ErrInvalidPaletteFormat, h.PaletteFormat)
	}
	return Metrics{
		BitsPerPixel:   int(h.PaletteFormat) + 1,
		GlyphWidth:     int(h.MaxFontWidth) + 1,
		GlyphHeight:    int(h.MaxFontHeight) + 1,
		GlyphCount:     int(count),
		VariableWidths: h.Flags&FlagVariableWidths != 0,
	}, nil
}

// MarshalBinary encodes the header into its 156-byte record.
func (h *Header) MarshalBinary() ([]byte, error) {
	if h == nil {
		return nil, ErrMissingHeader
	}
	return h.AppendBinary(make([]byte, 0, HeaderSize))
}

// AppendBinary appends the encoded record to b.
func (h *Header) AppendBinary(b []byte) ([]byte, error) {
	if h == nil {
		return nil, ErrMissingHeader
	}
	var rec [HeaderSize]byte
	le := binary.LittleEndian
	le.PutUint32(rec[offMagicLE:], h.MagicLE)
	le.PutUint16(rec[offVersionLE:], h.VersionLE.Major)
	le.PutUint16(rec[offVersionLE+2:], h.VersionLE.Minor)
	le.PutUint32(rec[offMagicBE:], h.MagicBE)
	le.PutUint16(rec[offVersionBE:], h.VersionBE.Major)
	le.PutUint16(rec[offVersionBE+2:], h.VersionBE.Minor)
	rec[offPaletteFormat] = h.PaletteFormat
	rec[offMaxWidth] = h.MaxFontWidth
	rec[offMaxHeight] = h.MaxFontHeight
	rec[offFlags] = h.Flags
	le.PutUint32(rec[offCountLE:], h.CountLE)
	le.PutUint32(rec[offCountBE:], h.CountBE)
	copy(rec[offFontName:], h.Name[:])
	copy(rec[offLanguage:], h.Lang[:])
	return append(b, rec[:]...), nil
}

// UnmarshalBinary decodes a header record. Only the length is checked here;
// identity markers are validated by Metrics, as every font operation does.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: header needs %d bytes, got %d", ErrBadFontImage, HeaderSize, len(data))
	}
	le := binary.LittleEndian
	h.MagicLE = le.Uint32(data[offMagicLE:])
	h.VersionLE = Version{le.Uint16(data[offVersionLE:]), le.Uint16(data[offVersionLE+2:])}
	h.MagicBE = le.Uint32(data[offMagicBE:])
	h.VersionBE = Version{le.Uint16(data[offVersionBE:]), le.Uint16(data[offVersionBE+2:])}
	h.PaletteFormat = data[offPaletteFormat]
	h.MaxFontWidth = data[offMaxWidth]
	h.MaxFontHeight = data[offMaxHeight]
	h.Flags = data[offFlags]
	h.CountLE = le.Uint32(data[offCountLE:])
	h.CountBE = le.Uint32(data[offCountBE:])
	copy(h.Name[:], data[offFontName:offFontName+TextFieldSize])
	copy(h.Lang[:], data[offLanguage:offLanguage+TextFieldSize])
	return nil
}
