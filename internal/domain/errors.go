package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Session state machine
	ErrAlreadyActive = errors.New("mining session already active")
	ErrNotActive     = errors.New("no active mining session")

	// Accounts and wallets
	ErrAccountNotFound = errors.New("account not found")
	ErrWalletConflict  = errors.New("wallet already linked to another account")
	ErrInvalidWallet   = errors.New("invalid wallet address")

	// Interaction rewards
	ErrActionOnCooldown = errors.New("action already rewarded in the last 24h")
)
