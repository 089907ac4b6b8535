package msbtfont

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
)

// testImage builds a small variable-width font with distinct glyphs and
// returns its encoded image.
func testImage(t testing.TB, name string) []byte {
	t.Helper()
	f, err := NewFont(&HeaderDescriptor{
		PaletteFormat:  2,
		MaxFontWidth:   4,
		MaxFontHeight:  2,
		Flags:          FlagVariableWidths,
		CharacterCount: 6,
		FontName:       name,
		Language:       "en",
	})
	if err != nil {
		t.Fatal(err)
	}
	m, err := f.Metrics()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < m.GlyphCount; i++ {
		if err := StoreGlyphPixels(f.Header, f.Data, filledGlyph(m, uint8(i)), i); err != nil {
			t.Fatal(err)
		}
		if err := f.Data.SetAdvance(f.Header, i, i%m.GlyphWidth+1); err != nil {
			t.Fatal(err)
		}
	}
	img, err := f.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestFontImageRoundTrip(t *testing.T) {
	img := testImage(t, "round trip")

	// 6 advances + ceil(3 * 15 * 6 / 8) = 6 + 34
	if want := HeaderSize + 40; len(img) != want {
		t.Fatalf("image is %d bytes, want %d", len(img), want)
	}

	f, err := ParseFontBytes(img)
	if err != nil {
		t.Fatalf("ParseFontBytes() error = %v", err)
	}
	if got := f.Header.FontName(); got != "round trip" {
		t.Errorf("FontName() = %q, want %q", got, "round trip")
	}
	m, err := f.Metrics()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < m.GlyphCount; i++ {
		got, err := ReadGlyph(f.Header, f.Data, i)
		if err != nil {
			t.Fatal(err)
		}
		if want := filledGlyph(m, uint8(i)); !bytes.Equal(got, want) {
			t.Errorf("glyph %d = %v, want %v", i, got, want)
		}
		adv, err := f.Data.Advance(f.Header, i)
		if err != nil {
			t.Fatal(err)
		}
		if adv != i%5+1 {
			t.Errorf("Advance(%d) = %d, want %d", i, adv, i%5+1)
		}
	}

	// The parsed font owns its data.
	img[len(img)-1] ^= 0xFF
	if f.Data.Data[len(f.Data.Data)-1] == img[len(img)-1] {
		t.Errorf("ParseFontBytes() aliases its input")
	}

	var buf bytes.Buffer
	n, err := f.WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(buf.Len()) || buf.Len() != len(img) {
		t.Errorf("WriteTo() wrote %d (reported %d), want %d", buf.Len(), n, len(img))
	}
}

func TestParseFontBytesErrors(t *testing.T) {
	img := testImage(t, "errors")

	noMarker := bytes.Clone(img)
	copy(noMarker[0:], "XXXX")
	copy(noMarker[8:], "XXXX")

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrBadFontImage},
		{"short header", img[:HeaderSize-1], ErrBadFontImage},
		{"header only", img[:HeaderSize], ErrBadFontImage},
		{"truncated body", img[:len(img)-1], ErrBadFontImage},
		{"trailing bytes", append(bytes.Clone(img), 0), ErrBadFontImage},
		{"no identity marker", noMarker, ErrInvalidHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFontBytes(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseFontBytes() error = %v, want %v", err, tt.wantErr)
			}
			if f != nil {
				t.Errorf("ParseFontBytes() returned a font with an error")
			}
		})
	}
}

// errorReader always fails
type errorReader struct {
	err error
}

func (r *errorReader) Read([]byte) (int, error) {
	return 0, r.err
}

func TestParseFont(t *testing.T) {
	img := testImage(t, "reader")
	f, err := ParseFont(bytes.NewReader(img))
	if err != nil {
		t.Fatalf("ParseFont() error = %v", err)
	}
	if f.Header.FontName() != "reader" {
		t.Errorf("FontName() = %q, want %q", f.Header.FontName(), "reader")
	}

	readErr := errors.New("disk on fire")
	if _, err := ParseFont(&errorReader{err: readErr}); !errors.Is(err, readErr) {
		t.Errorf("ParseFont(failing reader) error = %v, want %v", err, readErr)
	}
	if _, err := ParseFont(nil); err == nil {
		t.Error("ParseFont(nil) should return an error")
	}
}

func TestLoadFontFS(t *testing.T) {
	img := testImage(t, "fs")
	testFS := fstest.MapFS{
		"fonts/tiny.msbt":     &fstest.MapFile{Data: img},
		"fonts/my..font.msbt": &fstest.MapFile{Data: img},
		"fonts/broken.msbt":   &fstest.MapFile{Data: img[:10]},
	}

	tests := []struct {
		name      string
		path      string
		wantErr   bool
		errString string
	}{
		{"valid path", "fonts/tiny.msbt", false, ""},
		{"double dots in filename", "fonts/my..font.msbt", false, ""},
		{"empty path", "", true, "path cannot be empty"},
		{"path traversal", "fonts/../secret.msbt", true, "invalid fs path"},
		{"backslash", "fonts\\tiny.msbt", true, "backslashes not allowed"},
		{"absolute path", "/fonts/tiny.msbt", true, "absolute paths not allowed"},
		{"dot prefix", "./fonts/tiny.msbt", true, "invalid fs path"},
		{"missing file", "fonts/missing.msbt", true, "failed to open font file"},
		{"malformed image", "fonts/broken.msbt", true, "failed to parse font fonts/broken.msbt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := LoadFontFS(testFS, tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadFontFS() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !strings.Contains(err.Error(), tt.errString) {
					t.Errorf("LoadFontFS() error = %v, should contain %q", err, tt.errString)
				}
				return
			}
			if f.Header.FontName() != "fs" {
				t.Errorf("FontName() = %q, want %q", f.Header.FontName(), "fs")
			}
		})
	}

	if _, err := LoadFontFS(nil, "fonts/tiny.msbt"); err == nil {
		t.Error("LoadFontFS(nil) should return an error")
	}
}

func TestFontMethods(t *testing.T) {
	f, err := ParseFontBytes(testImage(t, "methods"))
	if err != nil {
		t.Fatal(err)
	}

	rect, err := f.SurfaceSize(3)
	if err != nil {
		t.Fatal(err)
	}
	if rect != (Rect{Width: 15, Height: 6}) {
		t.Errorf("SurfaceSize(3) = %+v, want 15x6", rect)
	}

	d := &SurfaceDescriptor{Rect: rect, Format: FormatIndexed8}
	buf := make([]byte, SurfaceMemoryRequirement(d))
	if err := f.CopyToSurface(d, buf, WithCharsPerRow(3)); err != nil {
		t.Fatalf("CopyToSurface() error = %v", err)
	}
	// Glyph 4 sits at column 1 of row 1.
	stride := RowStride(FormatIndexed8, rect.Width)
	if got := buf[3*stride+5]; got != 4 {
		t.Errorf("pixel of glyph 4 = %d, want 4", got)
	}

	var nilFont *Font
	if _, err := nilFont.Metrics(); !errors.Is(err, ErrMissingHeader) {
		t.Errorf("nil Metrics() error = %v", err)
	}
	if _, err := nilFont.MarshalBinary(); !errors.Is(err, ErrMissingHeader) {
		t.Errorf("nil MarshalBinary() error = %v", err)
	}
	if err := nilFont.CopyToSurface(d, buf); !errors.Is(err, ErrMissingHeader) {
		t.Errorf("nil CopyToSurface() error = %v", err)
	}
	if _, err := nilFont.SurfaceSize(3); !errors.Is(err, ErrMissingHeader) {
		t.Errorf("nil SurfaceSize() error = %v", err)
	}
}

func TestFontConcurrentAccess(t *testing.T) {
	f, err := ParseFontBytes(testImage(t, "concurrent"))
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.MarshalBinary(); err != nil {
				errs <- err
				return
			}
			for g := 0; g < 6; g++ {
				if _, err := ReadGlyph(f.Header, f.Data, g); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent access error: %v", err)
	}
}
