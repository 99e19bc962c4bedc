package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stride-works/stride/internal/domain"
)

// ─── Income Record Operations ───────────────────────────────────────────────

// CreateIncomeRecord inserts a new record in SUBMITTED state.
func (db *DB) CreateIncomeRecord(rec *domain.IncomeRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := db.db.Exec(`
		INSERT INTO income_records
			(id, user_id, amount, currency, amount_usd, source, proof_url, proof_type,
			 status, verified_by, verified_at, rejection_reason, earned_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.UserID, rec.Amount, rec.Currency, rec.AmountUSD, rec.Source,
		rec.ProofURL, rec.ProofType, string(rec.Status), rec.VerifiedBy,
		fmtTimePtr(rec.VerifiedAt), rec.RejectionReason, fmtTime(rec.EarnedAt), fmtTime(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("create income record: %w", err)
	}
	return nil
}

// GetIncomeRecord loads a record by id.
func (db *DB) GetIncomeRecord(id string) (*domain.IncomeRecord, error) {
	row := db.db.QueryRow(`
		SELECT id, user_id, amount, currency, amount_usd, source, proof_url, proof_type,
		       status, verified_by, verified_at, rejection_reason, earned_at, created_at
		FROM income_records WHERE id = ?
	`, id)

	var rec domain.IncomeRecord
	var status, earned, created string
	var verifiedAt sql.NullString
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Amount, &rec.Currency, &rec.AmountUSD,
		&rec.Source, &rec.ProofURL, &rec.ProofType, &status, &rec.VerifiedBy,
		&verifiedAt, &rec.RejectionReason, &earned, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrIncomeRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.Status = domain.IncomeStatus(status)
	rec.VerifiedAt = parseTimePtr(verifiedAt)
	rec.EarnedAt = parseTime(earned)
	rec.CreatedAt = parseTime(created)
	return &rec, nil
}

// MarkIncomeVerified flips a SUBMITTED record to VERIFIED and appends the
// ledger credit in the same transaction. The status guard is in the WHERE
// clause: a record already reviewed changes zero rows, the caller gets
// false, and the credit is never written — no double transition, no
// double credit, and no VERIFIED record left uncredited.
func (db *DB) MarkIncomeVerified(id, reviewerID string, at time.Time, credit *domain.LedgerEntry) (bool, error) {
	tx, err := db.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin income verify tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE income_records SET status = ?, verified_by = ?, verified_at = ?
		WHERE id = ? AND status = ?
	`, string(domain.IncomeVerified), reviewerID, fmtTime(at), id, string(domain.IncomeSubmitted))
	if err != nil {
		return false, fmt.Errorf("mark income verified: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	if credit != nil {
		if credit.CreatedAt.IsZero() {
			credit.CreatedAt = at
		}
		ins, err := tx.Exec(`
			INSERT INTO ledger_entries (user_id, type, amount, reason, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, credit.UserID, string(credit.Type), credit.Amount, credit.Reason, fmtTime(credit.CreatedAt))
		if err != nil {
			return false, fmt.Errorf("append income credit: %w", err)
		}
		if credit.ID, err = ins.LastInsertId(); err != nil {
			return false, err
		}
	}
	return true, tx.Commit()
}

// MarkIncomeRejected flips a SUBMITTED record to REJECTED with a reason.
func (db *DB) MarkIncomeRejected(id, reviewerID, reason string, at time.Time) (bool, error) {
	res, err := db.db.Exec(`
		UPDATE income_records SET status = ?, verified_by = ?, verified_at = ?, rejection_reason = ?
		WHERE id = ? AND status = ?
	`, string(domain.IncomeRejected), reviewerID, fmtTime(at), reason, id, string(domain.IncomeSubmitted))
	if err != nil {
		return false, fmt.Errorf("mark income rejected: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// SumVerifiedUSD returns the user's cumulative verified USD-equivalent.
func (db *DB) SumVerifiedUSD(userID string) (float64, error) {
	var total float64
	err := db.db.QueryRow(`
		SELECT COALESCE(SUM(amount_usd), 0) FROM income_records
		WHERE user_id = ? AND status = ?
	`, userID, string(domain.IncomeVerified)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum verified usd: %w", err)
	}
	return total, nil
}

// IncomeStats aggregates a user's records by status and native currency.
func (db *DB) IncomeStats(userID string) (*domain.IncomeStats, error) {
	stats := &domain.IncomeStats{UserID: userID}

	rows, err := db.db.Query(`
		SELECT status, COUNT(*), COALESCE(SUM(amount_usd), 0)
		FROM income_records WHERE user_id = ? GROUP BY status
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("income stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		var usd float64
		if err := rows.Scan(&status, &count, &usd); err != nil {
			return nil, err
		}
		switch domain.IncomeStatus(status) {
		case domain.IncomeSubmitted:
			stats.SubmittedCount = count
			stats.PendingUSD = usd
		case domain.IncomeVerified:
			stats.VerifiedCount = count
			stats.VerifiedUSD = usd
		case domain.IncomeRejected:
			stats.RejectedCount = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	curRows, err := db.db.Query(`
		SELECT currency, COUNT(*), COALESCE(SUM(amount), 0), COALESCE(SUM(amount_usd), 0)
		FROM income_records WHERE user_id = ? GROUP BY currency ORDER BY currency
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("income stats by currency: %w", err)
	}
	defer curRows.Close()
	for curRows.Next() {
		var cs domain.IncomeCurrencyStats
		if err := curRows.Scan(&cs.Currency, &cs.Count, &cs.TotalNative, &cs.TotalUSD); err != nil {
			return nil, err
		}
		stats.ByCurrency = append(stats.ByCurrency, cs)
	}
	return stats, curRows.Err()
}
