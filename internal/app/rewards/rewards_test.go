package rewards

import (
	"errors"
	"testing"
	"time"

	"github.com/depaym-network/depaym/internal/domain"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// memStore mirrors the store contract: the credit is one atomic operation
// over the balance and the claim row, and nothing else.
type memStore struct {
	accounts     map[string]*domain.Account
	interactions map[string]time.Time
}

func newMemStore() *memStore {
	return &memStore{
		accounts:     make(map[string]*domain.Account),
		interactions: make(map[string]time.Time),
	}
}

func (m *memStore) put(a *domain.Account) {
	cp := *a
	m.accounts[a.ID] = &cp
}

func (m *memStore) CreditInteraction(accountID string, kind domain.ActionKind, amount float64, at time.Time, cooldown time.Duration) (float64, error) {
	a, ok := m.accounts[accountID]
	if !ok {
		return 0, domain.ErrAccountNotFound
	}
	key := accountID + "/" + string(kind)
	if last, ok := m.interactions[key]; ok && at.Sub(last) < cooldown {
		return 0, domain.ErrActionOnCooldown
	}
	a.Balance = domain.Round6(a.Balance + amount)
	m.interactions[key] = at
	return a.Balance, nil
}

func (m *memStore) LastInteraction(accountID string, kind domain.ActionKind) (time.Time, error) {
	return m.interactions[accountID+"/"+string(kind)], nil
}

func newTestService(t *testing.T) (*Service, *memStore, *time.Time) {
	t.Helper()
	store := newMemStore()
	svc := NewService(store)
	now := t0
	svc.SetClock(func() time.Time { return now })
	return svc, store, &now
}

func TestClaimInteraction(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.put(&domain.Account{ID: "a1", Balance: 0.5})

	claim, err := svc.ClaimInteraction("a1", domain.ActionPay)
	if err != nil {
		t.Fatalf("ClaimInteraction() error: %v", err)
	}
	if claim.Reward != InteractionReward {
		t.Errorf("Reward = %v, want %v", claim.Reward, InteractionReward)
	}
	if claim.Balance != 0.6 {
		t.Errorf("Balance = %v, want 0.6", claim.Balance)
	}
}

func TestClaimInteraction_Cooldown(t *testing.T) {
	svc, store, now := newTestService(t)
	store.put(&domain.Account{ID: "a1"})

	if _, err := svc.ClaimInteraction("a1", domain.ActionDeposit); err != nil {
		t.Fatalf("first claim error: %v", err)
	}

	// Same kind inside 24h is locked out; another kind is not.
	*now = now.Add(time.Hour)
	if _, err := svc.ClaimInteraction("a1", domain.ActionDeposit); !errors.Is(err, domain.ErrActionOnCooldown) {
		t.Errorf("second claim error = %v, want ErrActionOnCooldown", err)
	}
	if _, err := svc.ClaimInteraction("a1", domain.ActionWithdraw); err != nil {
		t.Errorf("other kind claim error = %v, want nil", err)
	}

	// After the lockout the kind is claimable again.
	*now = now.Add(24 * time.Hour)
	if _, err := svc.ClaimInteraction("a1", domain.ActionDeposit); err != nil {
		t.Errorf("claim after cooldown error = %v, want nil", err)
	}
}

func TestClaimInteraction_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.ClaimInteraction("ghost", domain.ActionPay); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("error = %v, want ErrAccountNotFound", err)
	}
}

// A claim never reads account state it could write back stale: the only
// store call is the narrow credit. An open session in the store survives a
// claim byte for byte.
func TestClaimInteraction_LeavesSessionStateAlone(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.put(&domain.Account{
		ID:      "a1",
		Balance: 0.042,
		Session: domain.MiningSession{StartTime: t0.Add(-time.Hour), LastClaim: t0.Add(-time.Hour), IsActive: true},
		Booster: domain.BoosterState{domain.ActionPay: domain.NewWindow(t0, 4*time.Hour)},
	})

	claim, err := svc.ClaimInteraction("a1", domain.ActionPay)
	if err != nil {
		t.Fatalf("ClaimInteraction() error: %v", err)
	}
	if claim.Balance != 0.142 {
		t.Errorf("Balance = %v, want 0.142", claim.Balance)
	}

	a := store.accounts["a1"]
	if !a.Session.IsActive {
		t.Error("claim flipped the session inactive")
	}
	if !a.Session.LastClaim.Equal(t0.Add(-time.Hour)) {
		t.Errorf("LastClaim = %v, claim must not touch session fields", a.Session.LastClaim)
	}
	if len(a.Booster) != 1 {
		t.Errorf("Booster = %v, claim must not touch booster state", a.Booster)
	}
}

func TestCooldowns(t *testing.T) {
	svc, store, now := newTestService(t)
	store.put(&domain.Account{ID: "a1"})

	svc.ClaimInteraction("a1", domain.ActionPay)
	*now = now.Add(10 * time.Hour)

	cd, err := svc.Cooldowns("a1")
	if err != nil {
		t.Fatalf("Cooldowns() error: %v", err)
	}
	if got := cd[domain.ActionPay]; got != 14*time.Hour {
		t.Errorf("pay cooldown = %v, want 14h", got)
	}
	if _, ok := cd[domain.ActionDeposit]; ok {
		t.Error("unclaimed kind should be omitted")
	}
}
