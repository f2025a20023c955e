package domain

import "time"

// ─── Mining Session ─────────────────────────────────────────────────────────

// SessionState is the derived lifecycle state of an account's session.
type SessionState int

const (
	StateIdle SessionState = iota
	StateActive
	StateCooldown
)

// String returns a human-readable session state.
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// MiningSession is the single authoritative session record per account.
// Invariant: IsActive implies StartTime is set.
type MiningSession struct {
	StartTime time.Time `json:"start_time"`
	LastClaim time.Time `json:"last_claim"`
	IsActive  bool      `json:"is_active"`
}

// EffectiveEnd returns the instant accrual stops: now, capped at the
// maximum session duration. Sessions never earn beyond the cap even if
// left open.
func (s MiningSession) EffectiveEnd(now time.Time, maxDuration time.Duration) time.Time {
	capped := s.StartTime.Add(maxDuration)
	if now.Before(capped) {
		return now
	}
	return capped
}

// Expired reports whether an active session has outlived the maximum
// duration and is due for a forced close.
func (s MiningSession) Expired(now time.Time, maxDuration time.Duration) bool {
	if !s.IsActive || s.StartTime.IsZero() {
		return false
	}
	return now.Sub(s.StartTime) > maxDuration
}

// ─── Account ────────────────────────────────────────────────────────────────

// Account owns one mining session, its booster windows, and the claimed
// balance. Referral IDs are non-owning references to other accounts.
type Account struct {
	ID          string        `json:"id"`
	Email       string        `json:"email"`
	Balance     float64       `json:"balance"` // claimed DPAYM, 6 decimal places
	Session     MiningSession `json:"mining_session"`
	CooldownEnd time.Time     `json:"cooldown_end"`
	Booster     BoosterState  `json:"booster"`
	Wallets     []string      `json:"wallets"`
	ReferralIDs []string      `json:"referral_ids"`
	ReferredBy  string        `json:"referred_by,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// State derives the lifecycle state from the session and cooldown fields.
// Cooldown expiry has no explicit transition; it is a comparison to now.
func (a *Account) State(now time.Time) SessionState {
	if a.Session.IsActive {
		return StateActive
	}
	if !a.CooldownEnd.IsZero() && now.Before(a.CooldownEnd) {
		return StateCooldown
	}
	return StateIdle
}

// InCooldown reports whether the account's cooldown window is still open.
func (a *Account) InCooldown(now time.Time) bool {
	return !a.CooldownEnd.IsZero() && now.Before(a.CooldownEnd)
}

// CooldownRemaining returns the time left before a cooldown lapses.
func (a *Account) CooldownRemaining(now time.Time) time.Duration {
	if !a.InCooldown(now) {
		return 0
	}
	return a.CooldownEnd.Sub(now)
}

// HasWallet reports whether the given (already lowercased) address is
// linked to this account.
func (a *Account) HasWallet(addr string) bool {
	for _, w := range a.Wallets {
		if w == addr {
			return true
		}
	}
	return false
}
