package mining

import (
	"time"

	"github.com/depaym-network/depaym/internal/domain"
)

// ─── Accrual Calculator ─────────────────────────────────────────────────────
// The reward is the exact integral of a piecewise-constant rate function
// over the session window. The rate changes only at window boundaries, so
// summing rate × overlap per bonus source is exact. Sampling the
// instantaneous rate and multiplying by elapsed time would be wrong
// whenever a bonus window starts or ends mid-session.

// Accrue computes the reward earned by the session as of asOf, given the
// account's booster windows and referral snapshots. The result is rounded
// to 6 decimal places; a session past its cap accrues nothing further.
func Accrue(r Rates, session domain.MiningSession, boosters domain.BoosterState, refs []domain.ReferralSnapshot, asOf time.Time) float64 {
	if session.StartTime.IsZero() {
		return 0
	}

	sessionWindow := domain.Window{
		Start: session.StartTime,
		End:   session.EffectiveEnd(asOf, r.MaxSessionDuration),
	}
	if !sessionWindow.Valid() {
		return 0
	}

	baseTotal := r.BaseHourlyRate * sessionWindow.Duration().Hours()

	// Each booster kind contributes independently: two simultaneously
	// active kinds accrue at double the per-kind rate during their mutual
	// overlap with the session.
	boosterTotal := 0.0
	for _, w := range boosters {
		boosterTotal += r.BoostPerAction * sessionWindow.Overlap(w).Hours()
	}

	referralTotal := 0.0
	for _, ref := range refs {
		w := ref.ActivityWindow(asOf, r.MaxSessionDuration)
		referralTotal += r.ReferralBonus * sessionWindow.Overlap(w).Hours()
	}

	return domain.Round6(baseTotal + boosterTotal + referralTotal)
}

// InstantRate is the displayed hourly rate at a single instant: base plus
// the live booster and referral bonuses. It is not integrated — use Accrue
// for amounts that move balances.
func InstantRate(r Rates, boosters domain.BoosterState, refs []domain.ReferralSnapshot, now time.Time) (total, boosterRate float64) {
	boosterRate = float64(len(boosters.ActiveKinds(now))) * r.BoostPerAction
	active := domain.CountActiveReferrals(refs, now, r.MaxSessionDuration)
	total = domain.Round6(r.BaseHourlyRate + r.ReferralBonus*float64(active) + boosterRate)
	return total, boosterRate
}

// Progress returns the fraction of the session cap consumed, in [0, 1].
func Progress(r Rates, session domain.MiningSession, now time.Time) float64 {
	if !session.IsActive || session.StartTime.IsZero() {
		return 0
	}
	p := now.Sub(session.StartTime).Hours() / r.MaxSessionDuration.Hours()
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
