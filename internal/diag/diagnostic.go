// Package diag holds the diagnostic records every lintmux stage produces and
// the renderer that prints them for the user.
//
// Diagnostics are data, not errors: a stage that fails returns its findings
// through a Sink and lets the caller decide whether to continue.
package diag

import (
	"fmt"
	"sync"
)

// Level is the severity of a diagnostic. Levels are ordered; a higher value
// is more severe.
type Level int

const (
	Trace Level = iota
	Debug
	Info
	Warning
	Error
	Fatal
)

func (l Level) String() string {
	switch l {
	case Trace:
		return "trace"
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Diagnostic is a single message attributed to the component that raised it.
//
// FirstPos and LastPos are byte offsets into the source command line joined
// with single spaces. FirstPos == LastPos means there is no span to underline.
type Diagnostic struct {
	Level    Level
	Text     string
	Origin   string
	FirstPos int
	LastPos  int
}

// HasSpan reports whether the diagnostic points at a command-line range.
func (d Diagnostic) HasSpan() bool {
	return d.FirstPos < d.LastPos
}

// Sink is an append-only, goroutine-safe ordered collection of diagnostics.
// The zero value is ready to use.
type Sink struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Add appends one diagnostic.
func (s *Sink) Add(d Diagnostic) {
	s.mu.Lock()
	s.items = append(s.items, d)
	s.mu.Unlock()
}

// Addf appends a diagnostic without a command-line span.
func (s *Sink) Addf(level Level, origin, format string, args ...any) {
	s.Add(Diagnostic{Level: level, Origin: origin, Text: fmt.Sprintf(format, args...)})
}

// Append appends ds in order.
func (s *Sink) Append(ds ...Diagnostic) {
	if len(ds) == 0 {
		return
	}
	s.mu.Lock()
	s.items = append(s.items, ds...)
	s.mu.Unlock()
}

// All returns a copy of the collected diagnostics in append order.
func (s *Sink) All() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Diagnostic(nil), s.items...)
}

// Len returns the number of collected diagnostics.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// HasErrors reports whether any collected diagnostic is Error or Fatal.
func (s *Sink) HasErrors() bool {
	return HasErrors(s.All())
}

// HasErrors reports whether ds contains an Error or Fatal diagnostic.
func HasErrors(ds []Diagnostic) bool {
	for _, d := range ds {
		if d.Level >= Error {
			return true
		}
	}
	return false
}

// Count returns how many diagnostics in ds have exactly the given level.
func Count(ds []Diagnostic, level Level) int {
	n := 0
	for _, d := range ds {
		if d.Level == level {
			n++
		}
	}
	return n
}
