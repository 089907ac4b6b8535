// Package debug traces surface blits.
//
// A Session collects the events of one or more blits and hands them to a
// Sink. Every blit started on a session gets a sequence number, so the trace
// of a CLI run that draws several fonts onto one surface can be split per
// blit. A nil *Session is valid and drops everything.
package debug

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"sync/atomic"
	"time"
)

// EnvDebug and EnvDebugPretty name the environment variables read by FromEnv.
const (
	EnvDebug       = "MSBTFONT_DEBUG"
	EnvDebugPretty = "MSBTFONT_DEBUG_PRETTY"
)

var enabled atomic.Bool

// SetEnabled switches tracing on or off for the whole process.
func SetEnabled(on bool) {
	enabled.Store(on)
}

// Enabled reports whether tracing is on.
func Enabled() bool {
	return enabled.Load()
}

// FromEnv reports whether MSBTFONT_DEBUG asks for tracing and whether
// MSBTFONT_DEBUG_PRETTY asks for the pretty format. Both accept "1" or "true".
func FromEnv() (on, pretty bool) {
	return envSet(EnvDebug), envSet(EnvDebugPretty)
}

func envSet(name string) bool {
	switch os.Getenv(name) {
	case "1", "true":
		return true
	}
	return false
}

// Session is a trace of blits. It must not be shared by concurrent blits.
type Session struct {
	id     string
	sink   Sink
	start  time.Time
	blit   int // sequence number of the current blit, 0 before the first
	events int
}

// NewSession opens a session writing to sink. It returns nil when tracing
// is disabled or sink is nil.
func NewSession(sink Sink) *Session {
	if !Enabled() || sink == nil {
		return nil
	}
	s := &Session{id: newSessionID(), sink: sink, start: time.Now()}
	s.Emit("session", "Start", nil)
	return s
}

// SessionID returns the session's random identifier.
func (s *Session) SessionID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// BeginBlit starts a new blit and returns its 1-based sequence number.
// Non-session events emitted afterwards carry that number.
func (s *Session) BeginBlit() int {
	if s == nil {
		return 0
	}
	s.blit++
	return s.blit
}

// Emit writes one event. Sink errors are dropped so tracing never fails a blit.
func (s *Session) Emit(phase, event string, data interface{}) {
	if s == nil {
		return
	}
	s.events++
	e := Event{
		Timestamp: time.Now().Format(time.RFC3339Nano),
		SessionID: s.id,
		Phase:     phase,
		Event:     event,
		Data:      data,
	}
	if phase != "session" {
		e.Blit = s.blit
	}
	_ = s.sink.Write(e)
}

// Close writes the session summary and closes the sink.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.Emit("session", "End", SessionEndData{
		Blits:     s.blit,
		Events:    s.events + 1,
		ElapsedMs: time.Since(s.start).Milliseconds(),
	})
	return s.sink.Close()
}

var fallbackID atomic.Uint32

func newSessionID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		n := fallbackID.Add(1)
		b = []byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
	}
	return hex.EncodeToString(b)
}

// Event is the envelope every sink receives.
type Event struct {
	Timestamp string      `json:"ts"`
	SessionID string      `json:"session_id"`
	Blit      int         `json:"blit,omitempty"`
	Phase     string      `json:"phase"`
	Event     string      `json:"event"`
	Data      interface{} `json:"data,omitempty"`
}
