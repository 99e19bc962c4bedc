package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stride-works/stride/internal/domain"
)

// ─── Participant Operations ─────────────────────────────────────────────────

// CreateParticipant inserts a new participant row.
func (db *DB) CreateParticipant(p *domain.Participant) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	active := 0
	if p.Active {
		active = 1
	}
	_, err := db.db.Exec(`
		INSERT INTO participants (id, level, active, paused_at, pause_reason, phase, support_cooldown_until, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, string(p.Level), active, fmtTimePtr(p.PausedAt), p.PauseReason,
		string(p.Phase), fmtTimePtr(p.SupportCooldownUntil), fmtTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("create participant: %w", err)
	}
	return nil
}

// GetParticipant loads a participant by id.
func (db *DB) GetParticipant(id string) (*domain.Participant, error) {
	row := db.db.QueryRow(`
		SELECT id, level, active, paused_at, pause_reason, phase, support_cooldown_until, created_at
		FROM participants WHERE id = ?
	`, id)
	p, err := scanParticipant(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrParticipantNotFound
	}
	return p, err
}

// ListActiveParticipants returns every participant with the active flag set.
func (db *DB) ListActiveParticipants() ([]domain.Participant, error) {
	rows, err := db.db.Query(`
		SELECT id, level, active, paused_at, pause_reason, phase, support_cooldown_until, created_at
		FROM participants WHERE active = 1 ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list active participants: %w", err)
	}
	defer rows.Close()

	var out []domain.Participant
	for rows.Next() {
		p, err := scanParticipant(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// UpdateParticipantLevel sets a participant's identity level.
// Monotonicity is enforced by the identity service, not here.
func (db *DB) UpdateParticipantLevel(id string, level domain.IdentityLevel) error {
	res, err := db.db.Exec(`UPDATE participants SET level = ? WHERE id = ?`, string(level), id)
	if err != nil {
		return fmt.Errorf("update participant level: %w", err)
	}
	return requireRow(res, domain.ErrParticipantNotFound)
}

// PauseParticipant clears the active flag and records why and when.
func (db *DB) PauseParticipant(id, reason string, at time.Time) error {
	res, err := db.db.Exec(`
		UPDATE participants SET active = 0, paused_at = ?, pause_reason = ? WHERE id = ?
	`, fmtTime(at), reason, id)
	if err != nil {
		return fmt.Errorf("pause participant: %w", err)
	}
	return requireRow(res, domain.ErrParticipantNotFound)
}

// ResumeParticipant restores the active flag and clears pause state.
func (db *DB) ResumeParticipant(id string) error {
	res, err := db.db.Exec(`
		UPDATE participants SET active = 1, paused_at = NULL, pause_reason = '' WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("resume participant: %w", err)
	}
	return requireRow(res, domain.ErrParticipantNotFound)
}

func scanParticipant(scan func(...any) error) (*domain.Participant, error) {
	var p domain.Participant
	var level, phase, created string
	var active int
	var pausedAt, cooldown sql.NullString
	if err := scan(&p.ID, &level, &active, &pausedAt, &p.PauseReason, &phase, &cooldown, &created); err != nil {
		return nil, err
	}
	p.Level = domain.IdentityLevel(level)
	p.Active = active == 1
	p.Phase = domain.ProgramPhase(phase)
	p.PausedAt = parseTimePtr(pausedAt)
	p.SupportCooldownUntil = parseTimePtr(cooldown)
	p.CreatedAt = parseTime(created)
	return &p, nil
}

// requireRow converts a zero-row UPDATE into notFound.
func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
