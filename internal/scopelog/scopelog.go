// Package scopelog maintains the observer's ordered log history.
//
// A scope is the set of entries emitted while the saga processed one
// inbound message. History keeps scopes newest-first: the one-time bulk
// load reverses the host's oldest-first order, and every scope arriving on
// the stream is inserted at the front. Scopes are immutable once built
// except for the UI-only Expanded flag.
package scopelog

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"sagaview/internal/saga"
)

// Level is a saga log level code.
type Level int

// Level codes used by the saga host.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
)

var levelLabels = [...]string{"Trace", "Debug", "Info", "Warn", "Error", "Critical"}

// String returns the display label for l. Codes outside the known range
// render as "Unknown" rather than failing.
func (l Level) String() string {
	if l < LevelTrace || int(l) >= len(levelLabels) {
		return "Unknown"
	}
	return levelLabels[l]
}

// Entry is one timestamped log line within a scope.
type Entry struct {
	Timestamp time.Time
	// OffsetMs is the elapsed time since the scope started, display-only.
	OffsetMs int64
	Level    Level
	Message  string
}

// Clock formats the entry timestamp as local wall-clock time with
// millisecond precision.
func (e Entry) Clock() string {
	return FormatClock(e.Timestamp)
}

// Offset formats the relative offset from scope start, e.g. "+42ms".
func (e Entry) Offset() string {
	return fmt.Sprintf("+%dms", e.OffsetMs)
}

// Scope groups the entries of one processed message.
type Scope struct {
	MessageID   string
	MessageType string
	Started     time.Time
	Entries     []Entry

	// Expanded is UI-only state toggled by the operator.
	Expanded bool
}

// Clock formats the scope start as local wall-clock time.
func (s *Scope) Clock() string {
	return FormatClock(s.Started)
}

// History is the newest-first sequence of scopes.
type History struct {
	mu     sync.RWMutex
	scopes []*Scope
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// LoadHistory clears the history and installs raw (oldest-first, as the
// snapshot delivers it) in reversed, newest-first order. It is meant to run
// exactly once, after the initial snapshot arrives.
func (h *History) LoadHistory(raw []saga.Scope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.scopes = make([]*Scope, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		h.scopes = append(h.scopes, newScope(&raw[i]))
	}
}

// AppendScope builds a scope from raw and inserts it at the front. A nil
// raw scope is a no-op. The built scope is returned so callers can archive
// it.
func (h *History) AppendScope(raw *saga.Scope) *Scope {
	if raw == nil {
		return nil
	}
	s := newScope(raw)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.scopes = append([]*Scope{s}, h.scopes...)
	return s
}

// Scopes returns a snapshot of the history, newest-first.
func (h *History) Scopes() []*Scope {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Scope, len(h.scopes))
	copy(out, h.scopes)
	return out
}

// Len returns the number of scopes.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.scopes)
}

// ToggleExpanded flips the scope's expanded flag. Pure UI state, no effect
// on the underlying data.
func (h *History) ToggleExpanded(s *Scope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s.Expanded = !s.Expanded
}

// newScope maps a wire scope 1:1, preserving entry order. Missing fields
// default rather than fail: message type to "Unknown", message to empty.
func newScope(raw *saga.Scope) *Scope {
	s := &Scope{
		MessageID:   raw.MessageID,
		MessageType: raw.MessageType,
		Started:     raw.Started,
		Entries:     make([]Entry, 0, len(raw.Entries)),
		Expanded:    true,
	}
	if strings.TrimSpace(s.MessageType) == "" {
		s.MessageType = "Unknown"
	}
	for _, e := range raw.Entries {
		s.Entries = append(s.Entries, Entry{
			Timestamp: e.Timestamp,
			OffsetMs:  e.Timestamp.Sub(raw.Started).Milliseconds(),
			Level:     Level(e.LogLevel),
			Message:   e.Message,
		})
	}
	return s
}

// FormatClock renders t in local time as HH:MM:SS.mmm.
func FormatClock(t time.Time) string {
	return t.Local().Format("15:04:05.000")
}
