// Package mining implements the session and accrual engine: the session
// state machine, booster activation, referral activity evaluation, and the
// overlap-integrating earnings calculator.
package mining

import (
	"time"
)

// ─── Rate Table ─────────────────────────────────────────────────────────────

// Rates is the fixed reward configuration. Monetary values are DPAYM per
// hour with 6 decimal places of precision; all windows are durations.
type Rates struct {
	BaseHourlyRate     float64       // accrued for every active session hour
	ReferralBonus      float64       // per active referral, per hour
	BoostPerAction     float64       // per active booster kind, per hour
	MaxSessionDuration time.Duration // earning cap per session
	SessionCooldown    time.Duration // lockout after stop
	BoostDuration      time.Duration // booster window length
}

// DefaultRates returns the production rate table.
func DefaultRates() Rates {
	return Rates{
		BaseHourlyRate:     0.021,
		ReferralBonus:      0.0025,
		BoostPerAction:     0.2,
		MaxSessionDuration: 4 * time.Hour,
		SessionCooldown:    4 * time.Hour,
		BoostDuration:      4 * time.Hour,
	}
}
