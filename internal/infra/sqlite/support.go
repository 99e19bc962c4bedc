package sqlite

import (
	"fmt"
	"strings"
	"time"

	"github.com/stride-works/stride/internal/domain"
)

// ─── Support Request Operations ─────────────────────────────────────────────

// CreateSupportRequest persists a new PENDING request and advances the
// participant's support cooldown in one transaction. Both effects commit
// together or neither does — a partial failure must not let a participant
// bypass the cooldown.
func (db *DB) CreateSupportRequest(req *domain.SupportRequest, cooldownUntil time.Time) error {
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	tx, err := db.db.Begin()
	if err != nil {
		return fmt.Errorf("begin support request tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO support_requests (id, user_id, type, status, mission_id, justification, evidence, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, req.ID, req.UserID, string(req.Type), string(req.Status), req.MissionID,
		req.Justification, req.Evidence, req.Amount, fmtTime(req.CreatedAt)); err != nil {
		return fmt.Errorf("insert support request: %w", err)
	}

	res, err := tx.Exec(`
		UPDATE participants SET support_cooldown_until = ? WHERE id = ?
	`, fmtTime(cooldownUntil), req.UserID)
	if err != nil {
		return fmt.Errorf("set support cooldown: %w", err)
	}
	if err := requireRow(res, domain.ErrParticipantNotFound); err != nil {
		return err
	}
	return tx.Commit()
}

// ListSupportRequests returns a user's requests, newest first.
func (db *DB) ListSupportRequests(userID string) ([]domain.SupportRequest, error) {
	rows, err := db.db.Query(`
		SELECT id, user_id, type, status, mission_id, justification, evidence, amount, created_at
		FROM support_requests WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list support requests: %w", err)
	}
	defer rows.Close()

	var out []domain.SupportRequest
	for rows.Next() {
		var r domain.SupportRequest
		var typ, status, created string
		if err := rows.Scan(&r.ID, &r.UserID, &typ, &status, &r.MissionID,
			&r.Justification, &r.Evidence, &r.Amount, &created); err != nil {
			return nil, err
		}
		r.Type = domain.SupportType(typ)
		r.Status = domain.SupportStatus(status)
		r.CreatedAt = parseTime(created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// HasLiveSupportRequest reports whether the user has a request in any
// status that blocks a new one.
func (db *DB) HasLiveSupportRequest(userID string) (bool, error) {
	statuses := domain.LiveSupportStatuses()
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
	args := []any{userID}
	for _, s := range statuses {
		args = append(args, string(s))
	}

	var count int
	err := db.db.QueryRow(`
		SELECT COUNT(*) FROM support_requests
		WHERE user_id = ? AND status IN (`+placeholders+`)
	`, args...).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("has live support request: %w", err)
	}
	return count > 0, nil
}
