// Package rewards implements one-shot interaction rewards: a fixed credit
// for each qualifying wallet action, at most once per action kind per 24h.
// The same interaction event also fires the best-effort booster trigger;
// that side channel lives in the mining package.
package rewards

import (
	"time"

	"github.com/depaym-network/depaym/internal/domain"
	"github.com/depaym-network/depaym/internal/infra/observability"
)

const (
	// InteractionReward is the DPAYM credited per qualifying action.
	InteractionReward = 0.1
	// InteractionCooldown is the per-kind lockout between rewards.
	InteractionCooldown = 24 * time.Hour
)

// Store is the persistence the reward service needs. The credit path is a
// single narrow transaction that touches only the balance and the claim
// row — it never reads or writes session, cooldown, or booster state, so
// it cannot clobber a concurrent session stop.
type Store interface {
	// CreditInteraction atomically enforces the per-kind cooldown, adds
	// amount to the balance, and records the claim instant, all in one
	// transaction. Returns the new balance, ErrActionOnCooldown when the
	// kind was claimed within the cooldown before at, or
	// ErrAccountNotFound.
	CreditInteraction(accountID string, kind domain.ActionKind, amount float64, at time.Time, cooldown time.Duration) (float64, error)

	// LastInteraction returns when the account last claimed a reward for
	// the kind; the zero time when it never has.
	LastInteraction(accountID string, kind domain.ActionKind) (time.Time, error)
}

// Service credits interaction rewards.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates an interaction reward service.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// SetClock overrides the time source. Test hook.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Claim reports a successful interaction reward.
type Claim struct {
	Kind    domain.ActionKind `json:"action"`
	Reward  float64           `json:"reward"`
	Balance float64           `json:"balance"`
}

// ClaimInteraction credits the one-shot reward for a qualifying action.
// Returns ErrActionOnCooldown when the kind was rewarded within the last
// 24 hours. The raw action name must already be a recognized kind; the
// HTTP layer rejects unknown actions before reaching here.
func (s *Service) ClaimInteraction(accountID string, kind domain.ActionKind) (Claim, error) {
	balance, err := s.store.CreditInteraction(accountID, kind, InteractionReward, s.now(), InteractionCooldown)
	if err != nil {
		return Claim{}, err
	}

	observability.InteractionRewards.WithLabelValues(string(kind)).Inc()
	return Claim{Kind: kind, Reward: InteractionReward, Balance: balance}, nil
}

// Cooldowns returns the remaining lockout per action kind, for display.
// Kinds that are claimable now are omitted.
func (s *Service) Cooldowns(accountID string) (map[domain.ActionKind]time.Duration, error) {
	now := s.now()
	out := make(map[domain.ActionKind]time.Duration)
	for _, kind := range domain.ActionKinds() {
		last, err := s.store.LastInteraction(accountID, kind)
		if err != nil {
			return nil, err
		}
		if last.IsZero() {
			continue
		}
		if rem := InteractionCooldown - now.Sub(last); rem > 0 {
			out[kind] = rem
		}
	}
	return out, nil
}
