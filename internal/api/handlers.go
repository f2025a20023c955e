package api

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/depaym-network/depaym/internal/domain"
)

// ─── Accounts ───────────────────────────────────────────────────────────────

type createAccountRequest struct {
	Email      string `json:"email"`
	ReferredBy string `json:"referred_by,omitempty"`
}

// handleCreateAccount registers a new account.
// POST /api/accounts
func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if req.ReferredBy != "" {
		if _, err := s.store.GetAccount(req.ReferredBy); err != nil {
			writeError(w, http.StatusBadRequest, "unknown referrer")
			return
		}
	}

	acct := &domain.Account{
		ID:         uuid.NewString(),
		Email:      req.Email,
		ReferredBy: req.ReferredBy,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.CreateAccount(acct); err != nil {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":          acct.ID,
		"email":       acct.Email,
		"referred_by": acct.ReferredBy,
		"created_at":  acct.CreatedAt,
	})
}

// ─── Mining ─────────────────────────────────────────────────────────────────

// handleMiningStart opens a mining session for the caller.
// POST /api/mining/start
func (s *Server) handleMiningStart(w http.ResponseWriter, r *http.Request) {
	id := accountID(r)
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing X-Account-ID header")
		return
	}
	res, err := s.mining.Start(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type stopRequest struct {
	WalletAddress string `json:"walletAddress"`
}

// handleMiningStop claims the caller's open session. The caller is
// identified by the X-Account-ID header, or, for wallet-originated stops,
// by a walletAddress in the body.
// POST /api/mining/stop
func (s *Server) handleMiningStop(w http.ResponseWriter, r *http.Request) {
	id := accountID(r)
	if id == "" {
		var req stopRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.WalletAddress) == "" {
			writeError(w, http.StatusBadRequest, "missing X-Account-ID header or walletAddress")
			return
		}
		res, err := s.mining.StopByWallet(req.WalletAddress)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
		return
	}
	res, err := s.mining.Stop(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleMiningStatus projects the caller's current mining state.
// GET /api/mining/status
func (s *Server) handleMiningStatus(w http.ResponseWriter, r *http.Request) {
	id := accountID(r)
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing X-Account-ID header")
		return
	}
	st, err := s.mining.Status(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// ─── Interactions ───────────────────────────────────────────────────────────

// handleInteraction reports a payment-app action. The action always arms
// its booster window when a session is running; the flat interaction
// reward is additionally credited unless claimed within the last day.
// POST /api/interactions/{action}
func (s *Server) handleInteraction(w http.ResponseWriter, r *http.Request) {
	id := accountID(r)
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing X-Account-ID header")
		return
	}
	raw := chi.URLParam(r, "action")
	kind, ok := domain.NormalizeActionKind(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown action: "+raw)
		return
	}

	s.mining.TriggerBooster(id, raw)

	claim, err := s.rewards.ClaimInteraction(id, kind)
	if err == domain.ErrActionOnCooldown {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"action":   kind,
			"boosted":  true,
			"rewarded": false,
		})
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"action":   claim.Kind,
		"boosted":  true,
		"rewarded": true,
		"reward":   claim.Reward,
		"balance":  claim.Balance,
	})
}

// handleInteractionCooldowns lists the remaining reward cooldowns.
// GET /api/interactions
func (s *Server) handleInteractionCooldowns(w http.ResponseWriter, r *http.Request) {
	id := accountID(r)
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing X-Account-ID header")
		return
	}
	cds, err := s.rewards.Cooldowns(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make(map[string]float64, len(cds))
	for kind, d := range cds {
		out[string(kind)] = d.Seconds()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"cooldowns": out})
}

// ─── Wallet ─────────────────────────────────────────────────────────────────

var walletAddressRe = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

type connectWalletRequest struct {
	Address string `json:"address"`
}

// handleWalletConnect links an EVM address to the caller's account.
// Addresses are stored lowercased; an address already linked to another
// account is rejected.
// POST /api/wallet/connect
func (s *Server) handleWalletConnect(w http.ResponseWriter, r *http.Request) {
	id := accountID(r)
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing X-Account-ID header")
		return
	}
	var req connectWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	addr := strings.ToLower(strings.TrimSpace(req.Address))
	if !walletAddressRe.MatchString(addr) {
		writeDomainError(w, domain.ErrInvalidWallet)
		return
	}
	acct, err := s.store.GetAccount(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if acct.HasWallet(addr) {
		writeJSON(w, http.StatusOK, map[string]string{"address": addr})
		return
	}
	if err := s.store.LinkWallet(id, addr, s.now().UTC()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"address": addr})
}

// handleWalletDisconnect removes all wallet links from the account.
// DELETE /api/wallet/disconnect
func (s *Server) handleWalletDisconnect(w http.ResponseWriter, r *http.Request) {
	id := accountID(r)
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing X-Account-ID header")
		return
	}
	if _, err := s.store.GetAccount(id); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.store.UnlinkWallets(id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Currency ───────────────────────────────────────────────────────────────

// RateSource serves fiat conversion tables (see infra/exchange).
type RateSource interface {
	Rates(ctx context.Context, base string) (map[string]float64, time.Time, error)
}

// handleCurrencyRates returns the conversion table for a base currency.
// GET /api/currency/rates?base=USD
func (s *Server) handleCurrencyRates(w http.ResponseWriter, r *http.Request) {
	base := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("base")))
	if base == "" {
		base = "USD"
	}
	rates, fetchedAt, err := s.rates.Rates(r.Context(), base)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"base":       base,
		"rates":      rates,
		"fetched_at": fetchedAt,
	})
}
