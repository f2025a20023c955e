package domain

import "time"

// ─── Referral Activity ──────────────────────────────────────────────────────
// A referral is a non-owning relation: the referred account's own session
// contributes a bonus rate to the referrer. Activity is derived at
// evaluation time, never stored.

// ReferralSnapshot is the slice of a referred account's state needed to
// evaluate its activity. Snapshots are read without locking the referred
// account; the referral bonus is informational, not safety-critical.
type ReferralSnapshot struct {
	AccountID   string        `json:"account_id"`
	Session     MiningSession `json:"mining_session"`
	CooldownEnd time.Time     `json:"cooldown_end"`
}

// Active reports whether the referral counts as currently active: its
// session is open, started within the maximum duration, and the account
// is not inside its own cooldown window.
func (r ReferralSnapshot) Active(now time.Time, maxDuration time.Duration) bool {
	if !r.Session.IsActive || r.Session.StartTime.IsZero() {
		return false
	}
	if now.Sub(r.Session.StartTime) > maxDuration {
		return false
	}
	if !r.CooldownEnd.IsZero() && now.Before(r.CooldownEnd) {
		return false
	}
	return true
}

// ActivityWindow returns the interval over which this referral contributes
// bonus rate, evaluated as of asOf. For an open session the end is asOf
// capped at the session maximum; for a closed one the last claim stands in
// as the end of activity (a heuristic — the referral's true earning window
// may differ), falling back to the cap when no claim is recorded.
func (r ReferralSnapshot) ActivityWindow(asOf time.Time, maxDuration time.Duration) Window {
	if r.Session.StartTime.IsZero() {
		return Window{}
	}
	start := r.Session.StartTime
	capped := start.Add(maxDuration)

	var end time.Time
	switch {
	case r.Session.IsActive:
		end = asOf
	case !r.Session.LastClaim.IsZero():
		end = r.Session.LastClaim
	default:
		end = asOf
	}
	if end.After(capped) {
		end = capped
	}
	return Window{Start: start, End: end}
}

// CountActiveReferrals returns how many of the given snapshots are active
// at now. The count multiplies the per-referral bonus in the instantaneous
// rate.
func CountActiveReferrals(refs []ReferralSnapshot, now time.Time, maxDuration time.Duration) int {
	n := 0
	for _, r := range refs {
		if r.Active(now, maxDuration) {
			n++
		}
	}
	return n
}
