// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import "time"

// ─── Time Windows ───────────────────────────────────────────────────────────

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewWindow builds a window of the given length starting at start.
func NewWindow(start time.Time, length time.Duration) Window {
	return Window{Start: start, End: start.Add(length)}
}

// IsZero reports whether the window carries no data.
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Valid reports whether the window is well-formed. A missing or inverted
// window contributes nothing; it is never an error.
func (w Window) Valid() bool {
	return !w.Start.IsZero() && !w.End.IsZero() && w.End.After(w.Start)
}

// Duration returns the window length, or zero for malformed windows.
func (w Window) Duration() time.Duration {
	if !w.Valid() {
		return 0
	}
	return w.End.Sub(w.Start)
}

// Contains reports whether t falls inside [Start, End).
func (w Window) Contains(t time.Time) bool {
	if !w.Valid() {
		return false
	}
	return !t.Before(w.Start) && t.Before(w.End)
}

// Overlap returns the duration shared between two windows. Malformed or
// disjoint windows overlap for zero time.
func (w Window) Overlap(other Window) time.Duration {
	if !w.Valid() || !other.Valid() {
		return 0
	}
	start := w.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := w.End
	if other.End.Before(end) {
		end = other.End
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}
