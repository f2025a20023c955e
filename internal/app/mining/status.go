package mining

import (
	"github.com/depaym-network/depaym/internal/domain"
)

// ─── Status Projector ───────────────────────────────────────────────────────

// Status is a read-only view of an account's mining state for display.
// Everything here is derived from the stored windows at read time; nothing
// is mutated and no redundant rate field is ever persisted.
type Status struct {
	IsActive          bool          `json:"is_active"`
	Balance           float64       `json:"balance"`
	Accumulated       float64       `json:"accumulated"`
	Progress          float64       `json:"progress"`
	CooldownMs        int64         `json:"cooldown_ms"`
	Referrals         int           `json:"referrals"`
	ActiveReferrals   int           `json:"active_referrals"`
	Rate              float64       `json:"rate"`
	BoosterRate       float64       `json:"booster_rate"`
	BoosterTimeLeftMs int64         `json:"booster_time_left_ms"`
	WalletConnected   bool          `json:"wallet_connected"`
	BoosterDetail     BoosterDetail `json:"booster"`
}

// BoosterDetail breaks out the booster windows for the UI.
type BoosterDetail struct {
	Active  []domain.ActionKind                  `json:"functions"`
	Windows map[domain.ActionKind]domain.Window `json:"detailed"`
}

// Status assembles the current view of an account. It reads a single
// consistent snapshot (the store returns a fresh account value) and may
// run unsynchronized against concurrent writers.
func (s *Service) Status(accountID string) (Status, error) {
	acct, err := s.store.GetAccount(accountID)
	if err != nil {
		return Status{}, err
	}
	refs, err := s.store.ReferralSnapshots(accountID)
	if err != nil {
		return Status{}, err
	}

	now := s.now()
	boosters := acct.Booster.Clone()

	rate, boosterRate := InstantRate(s.rates, boosters, refs, now)

	var accumulated float64
	if acct.Session.IsActive {
		accumulated = Accrue(s.rates, acct.Session, boosters, refs, now)
	}

	detail := BoosterDetail{
		Active:  boosters.ActiveKinds(now),
		Windows: map[domain.ActionKind]domain.Window{},
	}
	for k, w := range boosters {
		detail.Windows[k] = w
	}

	return Status{
		IsActive:          acct.Session.IsActive,
		Balance:           domain.Round6(acct.Balance),
		Accumulated:       accumulated,
		Progress:          Progress(s.rates, acct.Session, now),
		CooldownMs:        acct.CooldownRemaining(now).Milliseconds(),
		Referrals:         len(acct.ReferralIDs),
		ActiveReferrals:   domain.CountActiveReferrals(refs, now, s.rates.MaxSessionDuration),
		Rate:              rate,
		BoosterRate:       boosterRate,
		BoosterTimeLeftMs: boosters.TimeLeft(now).Milliseconds(),
		WalletConnected:   len(acct.Wallets) > 0,
		BoosterDetail:     detail,
	}, nil
}
