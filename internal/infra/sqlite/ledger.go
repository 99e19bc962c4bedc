package sqlite

import (
	"fmt"
	"time"

	"github.com/stride-works/stride/internal/domain"
)

// ─── Ledger Operations ──────────────────────────────────────────────────────

// AppendLedgerEntry inserts one immutable entry and returns its id.
// CreatedAt defaults to now when the caller leaves it zero.
func (db *DB) AppendLedgerEntry(e *domain.LedgerEntry) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	res, err := db.db.Exec(`
		INSERT INTO ledger_entries (user_id, type, amount, reason, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.UserID, string(e.Type), e.Amount, e.Reason, fmtTime(e.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("append ledger entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	e.ID = id
	return id, nil
}

// LedgerBalance sums all signed amounts for a (user, type) pair.
func (db *DB) LedgerBalance(userID string, t domain.CurrencyType) (int64, error) {
	var balance int64
	err := db.db.QueryRow(`
		SELECT COALESCE(SUM(amount), 0) FROM ledger_entries
		WHERE user_id = ? AND type = ?
	`, userID, string(t)).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("ledger balance: %w", err)
	}
	return balance, nil
}

// RecentLedgerEntries returns the latest entries, most recent first.
// An empty type matches all currency types.
func (db *DB) RecentLedgerEntries(userID string, t domain.CurrencyType, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, user_id, type, amount, reason, created_at FROM ledger_entries
		WHERE user_id = ?`
	args := []any{userID}
	if t != "" {
		query += ` AND type = ?`
		args = append(args, string(t))
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("recent ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var typ, created string
		if err := rows.Scan(&e.ID, &e.UserID, &typ, &e.Amount, &e.Reason, &created); err != nil {
			return nil, err
		}
		e.Type = domain.CurrencyType(typ)
		e.CreatedAt = parseTime(created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
