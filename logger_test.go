package msbtfont

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultLoggerDiscards(t *testing.T) {
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger should be disabled at every level")
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })

	h, fd := newTestFont(t, 2, 2, 2, 4, false)
	out := buf.String()
	if !strings.Contains(out, "file data allocated") || !strings.Contains(out, "glyphs=4") {
		t.Errorf("allocation not logged, got %q", out)
	}

	buf.Reset()
	d := &SurfaceDescriptor{Rect: Rect{Width: 4, Height: 4}}
	surface := make([]byte, SurfaceMemoryRequirement(d))
	if err := CopyToSurface(h, fd, d, surface); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "copied to surface") {
		t.Errorf("blit not logged, got %q", buf.String())
	}

	SetLogger(nil)
	buf.Reset()
	newTestFont(t, 1, 1, 1, 1, false)
	if buf.Len() != 0 {
		t.Errorf("SetLogger(nil) should silence logging, got %q", buf.String())
	}
}
