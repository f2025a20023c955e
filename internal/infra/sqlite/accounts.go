package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/depaym-network/depaym/internal/domain"
)

// ─── Account Operations ─────────────────────────────────────────────────────

// CreateAccount inserts a new account row. The caller assigns the ID.
func (db *DB) CreateAccount(a *domain.Account) error {
	_, err := db.db.Exec(`
		INSERT INTO accounts (id, email, balance, session_active, referred_by, created_at)
		VALUES (?, ?, ?, 0, NULLIF(?, ''), ?)
	`, a.ID, a.Email, a.Balance, a.ReferredBy, encodeTime(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// GetAccount loads an account with its wallets, booster windows, and
// referral IDs. The reads run in a single transaction so the returned
// value is one consistent snapshot, never an account row from before a
// concurrent stop paired with booster rows from after it. Returns
// domain.ErrAccountNotFound for unknown IDs.
func (db *DB) GetAccount(id string) (*domain.Account, error) {
	tx, err := db.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	defer tx.Rollback()

	a, err := loadAccount(tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// GetAccountByWallet loads the account owning a wallet address. The
// address resolution and the account load share one transaction.
func (db *DB) GetAccountByWallet(addr string) (*domain.Account, error) {
	tx, err := db.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("get account by wallet: %w", err)
	}
	defer tx.Rollback()

	var owner string
	err = tx.QueryRow(`SELECT account_id FROM wallets WHERE address = ?`, addr).Scan(&owner)
	if err == sql.ErrNoRows {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account by wallet: %w", err)
	}

	a, err := loadAccount(tx, owner)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("get account by wallet: %w", err)
	}
	return a, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func loadAccount(q querier, id string) (*domain.Account, error) {
	a := &domain.Account{ID: id}
	var start, lastClaim, cooldown, referredBy, created sql.NullString
	var active int

	err := q.QueryRow(`
		SELECT email, balance, session_start, session_last_claim, session_active,
		       cooldown_end, referred_by, created_at
		FROM accounts WHERE id = ?
	`, id).Scan(&a.Email, &a.Balance, &start, &lastClaim, &active, &cooldown, &referredBy, &created)
	if err == sql.ErrNoRows {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	a.Session = domain.MiningSession{
		StartTime: decodeTime(start),
		LastClaim: decodeTime(lastClaim),
		IsActive:  active == 1,
	}
	a.CooldownEnd = decodeTime(cooldown)
	a.ReferredBy = referredBy.String
	a.CreatedAt = decodeTime(created)

	if a.Wallets, err = accountWallets(q, id); err != nil {
		return nil, err
	}
	if a.Booster, err = accountBoosters(q, id); err != nil {
		return nil, err
	}
	if a.ReferralIDs, err = referralIDs(q, id); err != nil {
		return nil, err
	}
	return a, nil
}

// SaveAccount atomically persists the account's mutable state: balance,
// session fields, cooldown, and the booster windows. Either everything is
// written or nothing is — a failed stop never leaves a credited balance
// next to an open session.
func (db *DB) SaveAccount(a *domain.Account) error {
	tx, err := db.db.Begin()
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	defer tx.Rollback()

	active := 0
	if a.Session.IsActive {
		active = 1
	}
	res, err := tx.Exec(`
		UPDATE accounts SET
			balance            = ?,
			session_start      = ?,
			session_last_claim = ?,
			session_active     = ?,
			cooldown_end       = ?
		WHERE id = ?
	`, a.Balance, encodeTime(a.Session.StartTime), encodeTime(a.Session.LastClaim),
		active, encodeTime(a.CooldownEnd), a.ID)
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAccountNotFound
	}

	if _, err := tx.Exec(`DELETE FROM boosters WHERE account_id = ?`, a.ID); err != nil {
		return fmt.Errorf("save boosters: %w", err)
	}
	for kind, w := range a.Booster {
		if w.IsZero() {
			continue
		}
		if _, err := tx.Exec(`
			INSERT INTO boosters (account_id, kind, start_time, expiration)
			VALUES (?, ?, ?, ?)
		`, a.ID, string(kind), encodeTime(w.Start), encodeTime(w.End)); err != nil {
			return fmt.Errorf("save boosters: %w", err)
		}
	}

	return tx.Commit()
}

func accountWallets(q querier, id string) ([]string, error) {
	rows, err := q.Query(`SELECT address FROM wallets WHERE account_id = ? ORDER BY added_at`, id)
	if err != nil {
		return nil, fmt.Errorf("load wallets: %w", err)
	}
	defer rows.Close()

	var wallets []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

func accountBoosters(q querier, id string) (domain.BoosterState, error) {
	rows, err := q.Query(`SELECT kind, start_time, expiration FROM boosters WHERE account_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("load boosters: %w", err)
	}
	defer rows.Close()

	boosters := domain.BoosterState{}
	for rows.Next() {
		var kind string
		var start, end sql.NullString
		if err := rows.Scan(&kind, &start, &end); err != nil {
			return nil, err
		}
		boosters[domain.ActionKind(kind)] = domain.Window{
			Start: decodeTime(start),
			End:   decodeTime(end),
		}
	}
	return boosters, rows.Err()
}

func referralIDs(q querier, id string) ([]string, error) {
	rows, err := q.Query(`SELECT id FROM accounts WHERE referred_by = ? ORDER BY created_at`, id)
	if err != nil {
		return nil, fmt.Errorf("load referrals: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var rid string
		if err := rows.Scan(&rid); err != nil {
			return nil, err
		}
		ids = append(ids, rid)
	}
	return ids, rows.Err()
}

// ─── Wallet Operations ──────────────────────────────────────────────────────

// WalletOwner returns the account ID a wallet address is linked to, or ""
// when the address is unlinked.
func (db *DB) WalletOwner(addr string) (string, error) {
	var owner string
	err := db.db.QueryRow(`SELECT account_id FROM wallets WHERE address = ?`, addr).Scan(&owner)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("wallet owner: %w", err)
	}
	return owner, nil
}

// LinkWallet binds a wallet address to an account. Fails with
// domain.ErrWalletConflict when the address already belongs elsewhere;
// re-linking to the same account is a no-op.
func (db *DB) LinkWallet(accountID, addr string, at time.Time) error {
	owner, err := db.WalletOwner(addr)
	if err != nil {
		return err
	}
	if owner == accountID {
		return nil
	}
	if owner != "" {
		return domain.ErrWalletConflict
	}
	if _, err := db.db.Exec(`
		INSERT INTO wallets (address, account_id, added_at) VALUES (?, ?, ?)
	`, addr, accountID, encodeTime(at)); err != nil {
		return fmt.Errorf("link wallet: %w", err)
	}
	return nil
}

// UnlinkWallets removes every wallet bound to an account.
func (db *DB) UnlinkWallets(accountID string) error {
	_, err := db.db.Exec(`DELETE FROM wallets WHERE account_id = ?`, accountID)
	if err != nil {
		return fmt.Errorf("unlink wallets: %w", err)
	}
	return nil
}

// ─── Referral & Session Queries ─────────────────────────────────────────────

// ReferralSnapshots reads the session snapshots of the accounts referred
// by accountID. The referred rows are read without any account lock;
// staleness is acceptable for the referral bonus.
func (db *DB) ReferralSnapshots(accountID string) ([]domain.ReferralSnapshot, error) {
	rows, err := db.db.Query(`
		SELECT id, session_start, session_last_claim, session_active, cooldown_end
		FROM accounts WHERE referred_by = ?
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("referral snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []domain.ReferralSnapshot
	for rows.Next() {
		var id string
		var start, lastClaim, cooldown sql.NullString
		var active int
		if err := rows.Scan(&id, &start, &lastClaim, &active, &cooldown); err != nil {
			return nil, err
		}
		snaps = append(snaps, domain.ReferralSnapshot{
			AccountID: id,
			Session: domain.MiningSession{
				StartTime: decodeTime(start),
				LastClaim: decodeTime(lastClaim),
				IsActive:  active == 1,
			},
			CooldownEnd: decodeTime(cooldown),
		})
	}
	return snaps, rows.Err()
}

// ActiveSessionIDs lists accounts with an open session, for the sweeper.
func (db *DB) ActiveSessionIDs() ([]string, error) {
	rows, err := db.db.Query(`SELECT id FROM accounts WHERE session_active = 1`)
	if err != nil {
		return nil, fmt.Errorf("active sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ─── Interaction Operations ─────────────────────────────────────────────────

// LastInteraction returns the last reward claim for an action kind, or the
// zero time when the kind was never claimed.
func (db *DB) LastInteraction(accountID string, kind domain.ActionKind) (time.Time, error) {
	var s sql.NullString
	err := db.db.QueryRow(`
		SELECT last_claim FROM interactions WHERE account_id = ? AND kind = ?
	`, accountID, string(kind)).Scan(&s)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("last interaction: %w", err)
	}
	return decodeTime(s), nil
}

// CreditInteraction credits an interaction reward in one transaction:
// cooldown check, balance increment, and claim-instant upsert commit
// together or not at all. Only the balance column is written — session,
// cooldown, and booster state stay untouched, so a concurrent session
// stop is never clobbered.
func (db *DB) CreditInteraction(accountID string, kind domain.ActionKind, amount float64, at time.Time, cooldown time.Duration) (float64, error) {
	tx, err := db.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("credit interaction: %w", err)
	}
	defer tx.Rollback()

	var last sql.NullString
	err = tx.QueryRow(`
		SELECT last_claim FROM interactions WHERE account_id = ? AND kind = ?
	`, accountID, string(kind)).Scan(&last)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("credit interaction: %w", err)
	}
	if lastT := decodeTime(last); !lastT.IsZero() && at.Sub(lastT) < cooldown {
		return 0, domain.ErrActionOnCooldown
	}

	var balance float64
	err = tx.QueryRow(`SELECT balance FROM accounts WHERE id = ?`, accountID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, domain.ErrAccountNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("credit interaction: %w", err)
	}
	balance = domain.Round6(balance + amount)

	if _, err := tx.Exec(`UPDATE accounts SET balance = ? WHERE id = ?`, balance, accountID); err != nil {
		return 0, fmt.Errorf("credit interaction: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO interactions (account_id, kind, last_claim)
		VALUES (?, ?, ?)
		ON CONFLICT(account_id, kind) DO UPDATE SET last_claim = excluded.last_claim
	`, accountID, string(kind), encodeTime(at)); err != nil {
		return 0, fmt.Errorf("credit interaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("credit interaction: %w", err)
	}
	return balance, nil
}
