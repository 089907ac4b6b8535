package debug

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// Sink is the interface for debug output destinations.
type Sink interface {
	Write(event Event) error
	Flush() error
	Close() error
}

// JSONSink writes events in JSON Lines format.
type JSONSink struct {
	w       *bufio.Writer
	encoder *json.Encoder
}

// NewJSONSink creates a new JSON Lines sink writing to w.
func NewJSONSink(w io.Writer) *JSONSink {
	bw := bufio.NewWriter(w)
	return &JSONSink{
		w:       bw,
		encoder: json.NewEncoder(bw),
	}
}

// Write encodes and writes an event as a JSON line.
func (s *JSONSink) Write(event Event) error {
	return s.encoder.Encode(event)
}

// Flush writes any buffered data to the underlying writer.
func (s *JSONSink) Flush() error {
	return s.w.Flush()
}

// Close flushes the buffer.
func (s *JSONSink) Close() error {
	return s.Flush()
}

// PrettySink writes events in human-readable format.
type PrettySink struct {
	w *bufio.Writer
}

// NewPrettySink creates a new pretty-format sink writing to w.
func NewPrettySink(w io.Writer) *PrettySink {
	return &PrettySink{
		w: bufio.NewWriter(w),
	}
}

// Write formats and writes an event in human-readable format.
func (s *PrettySink) Write(event Event) error {
	fmt.Fprintf(s.w, "[%s] [%s/%s] session=%s", event.Timestamp, event.Phase, event.Event, event.SessionID)
	if event.Blit > 0 {
		fmt.Fprintf(s.w, " blit=%d", event.Blit)
	}
	fmt.Fprintln(s.w)

	// Pretty print data based on type
	switch d := event.Data.(type) {
	case BlitStartData:
		s.writeBlitStart(d)
	case StartSkipData:
		fmt.Fprintf(s.w, "  cursor: (%d, %d) below surface\n", d.CursorX, d.CursorY)
	case GlyphPlacedData:
		s.writeGlyphPlaced(d)
	case RowWrapData:
		fmt.Fprintf(s.w, "  reason: %s, index: %d, cursor_y: %d\n", d.Reason, d.Index, d.CursorY)
	case BlitEndData:
		s.writeBlitEnd(d)
	case SessionEndData:
		fmt.Fprintf(s.w, "  blits: %d, events: %d, elapsed_ms: %d\n", d.Blits, d.Events, d.ElapsedMs)
	case nil:
	case map[string]interface{}:
		s.writeMap(d)
	default:
		fmt.Fprintf(s.w, "  data: %+v\n", d)
	}

	return nil
}

func (s *PrettySink) writeBlitStart(d BlitStartData) {
	fmt.Fprintf(s.w, "  glyphs: %d, cell: %dx%d, bpp: %d\n", d.GlyphCount, d.GlyphWidth, d.GlyphHeight, d.BitsPerPixel)
	fmt.Fprintf(s.w, "  surface: %s/%s, rect: (%d, %d) %dx%d, stride: %d\n",
		d.Format, d.Origin, d.RectX, d.RectY, d.RectWidth, d.RectHeight, d.Stride)
	fmt.Fprintf(s.w, "  chars_per_row: %d, start_offset: %d\n", d.CharsPerRow, d.StartOffset)
}

func (s *PrettySink) writeGlyphPlaced(d GlyphPlacedData) {
	fmt.Fprintf(s.w, "  index: %d, cursor: (%d, %d), bit_offset: %d\n", d.Index, d.CursorX, d.CursorY, d.BitOff)
	fmt.Fprintf(s.w, "  pixels_written: %d", d.Written)
	if d.Clipped {
		fmt.Fprintf(s.w, " (clipped)")
	}
	fmt.Fprintln(s.w)
}

func (s *PrettySink) writeBlitEnd(d BlitEndData) {
	fmt.Fprintf(s.w, "  glyphs_visited: %d, pixels_written: %d\n", d.GlyphsVisited, d.PixelsWritten)
	fmt.Fprintf(s.w, "  stopped_early: %t, elapsed_us: %d\n", d.StoppedEarly, d.ElapsedUs)
}

func (s *PrettySink) writeMap(d map[string]interface{}) {
	for k, v := range d {
		fmt.Fprintf(s.w, "  %s: %v\n", k, v)
	}
}

// Flush writes any buffered data to the underlying writer.
func (s *PrettySink) Flush() error {
	return s.w.Flush()
}

// Close flushes the buffer.
func (s *PrettySink) Close() error {
	return s.Flush()
}
