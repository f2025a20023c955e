package mining

import (
	"strings"
	"sync"
	"time"

	"github.com/depaym-network/depaym/internal/domain"
	"github.com/depaym-network/depaym/internal/infra/observability"
)

// ─── Store Boundary ─────────────────────────────────────────────────────────

// Store is the persistence boundary the engine writes through. Accounts are
// read and written whole; every mutating operation in the service holds the
// account's lock across the read-compute-write cycle, so a Store needs no
// concurrency control of its own beyond atomic single-account writes.
type Store interface {
	// GetAccount loads an account by ID. Returns domain.ErrAccountNotFound
	// when no such account exists.
	GetAccount(id string) (*domain.Account, error)

	// GetAccountByWallet loads the account owning the given (lowercased)
	// wallet address. Returns domain.ErrAccountNotFound when unlinked.
	GetAccountByWallet(addr string) (*domain.Account, error)

	// SaveAccount atomically persists the account's full mutable state:
	// balance, session, cooldown, and booster windows.
	SaveAccount(a *domain.Account) error

	// WalletOwner returns the ID of the account a wallet address is linked
	// to, or "" when the address is unlinked.
	WalletOwner(addr string) (string, error)

	// ReferralSnapshots reads the session snapshots of the accounts
	// referred by accountID. Snapshots are unsynchronized reads of other
	// accounts; eventual consistency is acceptable here.
	ReferralSnapshots(accountID string) ([]domain.ReferralSnapshot, error)

	// ActiveSessionIDs lists accounts whose sessions are currently open,
	// for the maintenance sweep.
	ActiveSessionIDs() ([]string, error)
}

// ─── Service ────────────────────────────────────────────────────────────────

// Service is the session state machine. All mutating operations run with
// at-most-one-writer-at-a-time semantics per account.
type Service struct {
	store Store
	rates Rates
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	activations chan activation
	stopWorker  chan struct{}
	workerDone  sync.WaitGroup
}

// NewService creates a session engine over the given store.
func NewService(store Store, rates Rates) *Service {
	s := &Service{
		store:       store,
		rates:       rates,
		now:         time.Now,
		locks:       make(map[string]*sync.Mutex),
		activations: make(chan activation, 256),
		stopWorker:  make(chan struct{}),
	}
	s.workerDone.Add(1)
	go s.activationWorker()
	return s
}

// Close drains and stops the booster activation worker.
func (s *Service) Close() {
	close(s.stopWorker)
	s.workerDone.Wait()
}

// Rates returns the engine's fixed rate table.
func (s *Service) Rates() Rates { return s.rates }

// SetClock overrides the time source. Test hook.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// accountLock returns the mutex guarding one account's state.
func (s *Service) accountLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// ─── Start ──────────────────────────────────────────────────────────────────

// StartResult reports a successful session start.
type StartResult struct {
	StartTime time.Time `json:"start_time"`
}

// Start opens a mining session. It fails with ErrAlreadyActive when a
// session is open, and with ErrWalletConflict when any wallet linked to
// this account is also linked elsewhere. A live cooldown does not block
// re-entry. On success any stale booster state is cleared.
func (s *Service) Start(accountID string) (StartResult, error) {
	l := s.accountLock(accountID)
	l.Lock()
	defer l.Unlock()

	acct, err := s.store.GetAccount(accountID)
	if err != nil {
		return StartResult{}, err
	}

	for _, w := range acct.Wallets {
		owner, err := s.store.WalletOwner(w)
		if err != nil {
			return StartResult{}, err
		}
		if owner != "" && owner != acct.ID {
			return StartResult{}, domain.ErrWalletConflict
		}
	}

	if acct.Session.IsActive {
		return StartResult{}, domain.ErrAlreadyActive
	}

	now := s.now()
	acct.Session = domain.MiningSession{
		StartTime: now,
		LastClaim: now,
		IsActive:  true,
	}
	acct.CooldownEnd = time.Time{}
	acct.Booster = domain.BoosterState{}

	if err := s.store.SaveAccount(acct); err != nil {
		return StartResult{}, err
	}

	observability.SessionsStarted.Inc()
	observability.ActiveSessions.Inc()
	return StartResult{StartTime: now}, nil
}

// ─── Stop ───────────────────────────────────────────────────────────────────

// StopResult reports a claimed session.
type StopResult struct {
	Earned          float64 `json:"earned"`
	Balance         float64 `json:"balance"`
	CooldownMs      int64   `json:"cooldown_ms"`
	Referrals       int     `json:"referrals"`
	ActiveReferrals int     `json:"active_referrals"`
}

// Stop closes the active session as of now, credits the accrued reward to
// the balance, and opens the cooldown window. Fails with ErrNotActive when
// no session is open.
func (s *Service) Stop(accountID string) (StopResult, error) {
	return s.stopAccount(accountID, s.now(), false)
}

// StopByWallet is Stop addressed by a linked wallet address.
func (s *Service) StopByWallet(addr string) (StopResult, error) {
	acct, err := s.store.GetAccountByWallet(normalizeWallet(addr))
	if err != nil {
		return StopResult{}, err
	}
	return s.stopAccount(acct.ID, s.now(), false)
}

// ValidateAndForceClose closes a session that has outlived the maximum
// duration, crediting exactly the capped reward. It is idempotent: calling
// it on an idle or still-running session is a no-op, and a concurrent Stop
// racing it credits the balance exactly once — the loser observes the
// session already closed.
func (s *Service) ValidateAndForceClose(accountID string) error {
	_, err := s.stopAccount(accountID, time.Time{}, true)
	if err == domain.ErrNotActive {
		return nil
	}
	return err
}

// stopAccount is the single close path shared by Stop and the forced
// close. For a forced close the cutoff is startTime + MaxSessionDuration;
// a session that has not reached the cap is left untouched.
func (s *Service) stopAccount(accountID string, asOf time.Time, forced bool) (StopResult, error) {
	l := s.accountLock(accountID)
	l.Lock()
	defer l.Unlock()

	acct, err := s.store.GetAccount(accountID)
	if err != nil {
		return StopResult{}, err
	}
	if !acct.Session.IsActive {
		return StopResult{}, domain.ErrNotActive
	}

	now := s.now()
	if forced {
		if !acct.Session.Expired(now, s.rates.MaxSessionDuration) {
			return StopResult{}, domain.ErrNotActive
		}
		asOf = acct.Session.StartTime.Add(s.rates.MaxSessionDuration)
	}

	refs, err := s.store.ReferralSnapshots(accountID)
	if err != nil {
		return StopResult{}, err
	}

	earned := Accrue(s.rates, acct.Session, acct.Booster, refs, asOf)
	acct.Balance = domain.Round6(acct.Balance + earned)
	acct.Session.IsActive = false
	acct.Session.LastClaim = asOf
	acct.CooldownEnd = asOf.Add(s.rates.SessionCooldown)
	acct.Booster = domain.BoosterState{} // boosters do not persist across sessions

	if err := s.store.SaveAccount(acct); err != nil {
		return StopResult{}, err
	}

	if forced {
		observability.SessionsForceClosed.Inc()
	} else {
		observability.SessionsStopped.Inc()
	}
	observability.ActiveSessions.Dec()
	observability.CreditsClaimed.Add(earned)

	return StopResult{
		Earned:          earned,
		Balance:         acct.Balance,
		CooldownMs:      s.rates.SessionCooldown.Milliseconds(),
		Referrals:       len(acct.ReferralIDs),
		ActiveReferrals: domain.CountActiveReferrals(refs, now, s.rates.MaxSessionDuration),
	}, nil
}

// SweepExpired force-closes every session past its cap. Called on a timer
// by the daemon; safe to run concurrently with client traffic.
func (s *Service) SweepExpired() (closed int, err error) {
	ids, err := s.store.ActiveSessionIDs()
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		before, gerr := s.store.GetAccount(id)
		if gerr != nil || !before.Session.Expired(s.now(), s.rates.MaxSessionDuration) {
			continue
		}
		if cerr := s.ValidateAndForceClose(id); cerr != nil {
			err = cerr
			continue
		}
		closed++
	}
	return closed, err
}

func normalizeWallet(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
