package debug

// BlitStartData describes a blit before any pixel is written.
type BlitStartData struct {
	GlyphCount   int    `json:"glyph_count"`
	GlyphWidth   int    `json:"glyph_width"`
	GlyphHeight  int    `json:"glyph_height"`
	BitsPerPixel int    `json:"bits_per_pixel"`
	Format       string `json:"format"`
	Origin       string `json:"origin"`
	RectX        int    `json:"rect_x"`
	RectY        int    `json:"rect_y"`
	RectWidth    int    `json:"rect_width"`
	RectHeight   int    `json:"rect_height"`
	Stride       int    `json:"stride"`
	CharsPerRow  int    `json:"chars_per_row"`
	StartOffset  int    `json:"start_offset"`
}

// StartSkipData is emitted when the start offset moves the cursor below the
// surface, so nothing is drawn.
type StartSkipData struct {
	CursorX int `json:"cursor_x"`
	CursorY int `json:"cursor_y"`
}

// GlyphPlacedData describes one glyph copied onto the surface.
type GlyphPlacedData struct {
	Index   int  `json:"index"`
	CursorX int  `json:"cursor_x"`
	CursorY int  `json:"cursor_y"`
	BitOff  int  `json:"bit_offset"`
	Written int  `json:"pixels_written"`
	Clipped bool `json:"clipped,omitempty"`
}

// RowWrapData describes a cursor move to the next glyph row.
type RowWrapData struct {
	Reason  string `json:"reason"` // "chars_per_row", "width", "start_offset"
	Index   int    `json:"index"`
	CursorY int    `json:"cursor_y"`
}

// BlitEndData summarises a finished blit.
type BlitEndData struct {
	GlyphsVisited int   `json:"glyphs_visited"`
	PixelsWritten int   `json:"pixels_written"`
	StoppedEarly  bool  `json:"stopped_early"`
	ElapsedUs     int64 `json:"elapsed_us"`
}

// SessionEndData closes a session trace.
type SessionEndData struct {
	Blits     int   `json:"blits"`
	Events    int   `json:"events"`
	ElapsedMs int64 `json:"elapsed_ms"`
}
