package sqlite

import (
	"fmt"
	"strings"
	"time"

	"github.com/stride-works/stride/internal/domain"
)

// ─── Mission Operations ─────────────────────────────────────────────────────
// Mission CRUD proper lives with an external collaborator; this store keeps
// just enough for the support gate and the inactivity sweep.

// CreateMission inserts a mission row.
func (db *DB) CreateMission(m *domain.Mission) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := db.db.Exec(`
		INSERT INTO missions (id, user_id, title, status, completed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.ID, m.UserID, m.Title, string(m.Status), fmtTimePtr(m.CompletedAt), fmtTime(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("create mission: %w", err)
	}
	return nil
}

// UpdateMissionStatus moves a mission to a new status, optionally recording
// its completion time.
func (db *DB) UpdateMissionStatus(id string, status domain.MissionStatus, completedAt *time.Time) error {
	_, err := db.db.Exec(`
		UPDATE missions SET status = ?, completed_at = ? WHERE id = ?
	`, string(status), fmtTimePtr(completedAt), id)
	if err != nil {
		return fmt.Errorf("update mission status: %w", err)
	}
	return nil
}

// HasActiveMission reports whether the user has a mission in ASSIGNED,
// IN_PROGRESS, or SUBMITTED.
func (db *DB) HasActiveMission(userID string) (bool, error) {
	statuses := domain.ActiveMissionStatuses()
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
	args := []any{userID}
	for _, s := range statuses {
		args = append(args, string(s))
	}

	var count int
	err := db.db.QueryRow(`
		SELECT COUNT(*) FROM missions WHERE user_id = ? AND status IN (`+placeholders+`)
	`, args...).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("has active mission: %w", err)
	}
	return count > 0, nil
}

// CompletedMissionSince reports whether the user completed any mission at
// or after the given time.
func (db *DB) CompletedMissionSince(userID string, since time.Time) (bool, error) {
	var count int
	err := db.db.QueryRow(`
		SELECT COUNT(*) FROM missions
		WHERE user_id = ? AND status = ? AND completed_at >= ?
	`, userID, string(domain.MissionCompleted), fmtTime(since)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("completed mission since: %w", err)
	}
	return count > 0, nil
}
