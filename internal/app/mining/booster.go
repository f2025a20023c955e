package mining

import (
	"log"

	"github.com/depaym-network/depaym/internal/domain"
	"github.com/depaym-network/depaym/internal/infra/observability"
)

// ─── Best-Effort Booster Activation ─────────────────────────────────────────
// Boosters are triggered by unrelated workflows (a payment notification, a
// deposit confirmation). Activation must never block or fail the workflow
// that triggered it: TriggerBooster enqueues an event and returns; a full
// queue drops the event with a logged warning.

type activation struct {
	accountID string
	rawKind   string
}

// TriggerBooster fires an asynchronous activation for the given account
// and free-form action name. It never returns an error and never blocks.
func (s *Service) TriggerBooster(accountID, rawKind string) {
	select {
	case s.activations <- activation{accountID: accountID, rawKind: rawKind}:
	default:
		log.Printf("booster queue full, dropping activation %q for account %s", rawKind, accountID)
		observability.BoosterActivationsDropped.Inc()
	}
}

// activationWorker drains the activation queue. Remaining events are
// processed before Close returns.
func (s *Service) activationWorker() {
	defer s.workerDone.Done()
	for {
		select {
		case a := <-s.activations:
			s.applyActivation(a)
		case <-s.stopWorker:
			for {
				select {
				case a := <-s.activations:
					s.applyActivation(a)
				default:
					return
				}
			}
		}
	}
}

// applyActivation performs one activation under the account lock.
// Unrecognized kinds and accounts without an open session are silent
// no-ops; boosters are best-effort side effects, not errors.
func (s *Service) applyActivation(a activation) {
	kind, ok := domain.NormalizeActionKind(a.rawKind)
	if !ok {
		log.Printf("ignoring booster trigger with unrecognized action %q", a.rawKind)
		return
	}

	l := s.accountLock(a.accountID)
	l.Lock()
	defer l.Unlock()

	acct, err := s.store.GetAccount(a.accountID)
	if err != nil {
		log.Printf("booster activation for account %s dropped: %v", a.accountID, err)
		observability.BoosterActivationsDropped.Inc()
		return
	}
	if !acct.Session.IsActive {
		return
	}

	if acct.Booster == nil {
		acct.Booster = domain.BoosterState{}
	}
	if !acct.Booster.Activate(kind, s.now(), s.rates.BoostDuration) {
		return // live window, not extended
	}

	if err := s.store.SaveAccount(acct); err != nil {
		log.Printf("booster activation for account %s dropped: %v", a.accountID, err)
		observability.BoosterActivationsDropped.Inc()
		return
	}
	observability.BoosterActivations.WithLabelValues(string(kind)).Inc()
}

// ActivateNow applies an activation synchronously. The HTTP interaction
// handler uses the asynchronous path; this exists for the sweep-free tests
// and any caller that needs the result applied before returning.
func (s *Service) ActivateNow(accountID, rawKind string) {
	s.applyActivation(activation{accountID: accountID, rawKind: rawKind})
}
