package domain

import (
	"strings"
	"time"
)

// ─── Booster Windows ────────────────────────────────────────────────────────
// Boosters are best-effort side effects of unrelated wallet actions. Each
// qualifying action kind carries an independent activation window; kinds
// contribute additively to the rate while their windows overlap a session.

// ActionKind is one of the fixed wallet actions that can trigger a booster.
type ActionKind string

const (
	ActionPay      ActionKind = "pay"
	ActionDeposit  ActionKind = "deposit"
	ActionWithdraw ActionKind = "withdraw"
)

// ActionKinds lists every recognized kind in stable order.
func ActionKinds() []ActionKind {
	return []ActionKind{ActionPay, ActionDeposit, ActionWithdraw}
}

// NormalizeActionKind maps free-form input (case-insensitive, arbitrary
// punctuation tolerated) to a recognized kind. Unrecognized input returns
// ok=false; callers ignore it silently — boosters never fail the workflow
// that triggered them.
func NormalizeActionKind(raw string) (ActionKind, bool) {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	kind := ActionKind(b.String())
	switch kind {
	case ActionPay, ActionDeposit, ActionWithdraw:
		return kind, true
	}
	return "", false
}

// BoosterState maps each action kind to its optional activation window.
// Invariant: every stored window has End == Start + the boost duration.
type BoosterState map[ActionKind]Window

// Activate applies the non-extending activation policy: a fresh window is
// opened only when the kind has no window or the existing one has expired.
// Repeated triggers inside a live window do not extend it. Returns whether
// a new window was opened.
func (b BoosterState) Activate(kind ActionKind, now time.Time, boostDuration time.Duration) bool {
	existing, ok := b[kind]
	if ok && existing.Valid() && now.Before(existing.End) {
		return false
	}
	b[kind] = NewWindow(now, boostDuration)
	return true
}

// ActiveKinds returns the kinds whose windows are live at t, in stable order.
func (b BoosterState) ActiveKinds(t time.Time) []ActionKind {
	var kinds []ActionKind
	for _, k := range ActionKinds() {
		if w, ok := b[k]; ok && w.Contains(t) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// TimeLeft returns the longest remaining duration among windows live at t.
// Useful for display; zero when nothing is active.
func (b BoosterState) TimeLeft(t time.Time) time.Duration {
	var left time.Duration
	for _, w := range b {
		if w.Contains(t) {
			if rem := w.End.Sub(t); rem > left {
				left = rem
			}
		}
	}
	return left
}

// Clone returns a deep copy, so snapshots handed to readers are immune to
// concurrent mutation.
func (b BoosterState) Clone() BoosterState {
	if b == nil {
		return nil
	}
	out := make(BoosterState, len(b))
	for k, w := range b {
		out[k] = w
	}
	return out
}
