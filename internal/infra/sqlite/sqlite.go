// Package sqlite implements the domain.Store interface on SQLite.
// The ledger table is append-only: the only statement ever issued against
// it is INSERT, and balances are computed with SUM at query time.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection and implements domain.Store.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies migrations.
// Use ":memory:" for tests. The pool is pinned to a single connection:
// SQLite has one writer anyway, and a single connection gives read-after-
// write consistency for every subsequent query.
func Open(path string) (*DB, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqldb.SetMaxOpenConns(1)

	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA foreign_keys = ON`,
		`PRAGMA busy_timeout = 5000`,
	} {
		if _, err := sqldb.Exec(pragma); err != nil {
			sqldb.Close()
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}

	db := &DB{db: sqldb}
	if err := db.migrate(); err != nil {
		sqldb.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error { return db.db.Close() }

// migrate applies every schema statement in order.
func (db *DB) migrate() error {
	for _, stmt := range Migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Migrations returns the schema migration statements.
// Each string is a single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		// Append-only behavioral currency ledger
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    TEXT NOT NULL,
			type       TEXT NOT NULL,
			amount     INTEGER NOT NULL,
			reason     TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_user_type ON ledger_entries(user_id, type)`,

		// Participant identity state
		`CREATE TABLE IF NOT EXISTS participants (
			id                     TEXT PRIMARY KEY,
			level                  TEXT NOT NULL DEFAULT 'L0_APPLICANT',
			active                 INTEGER NOT NULL DEFAULT 1,
			paused_at              TEXT,
			pause_reason           TEXT NOT NULL DEFAULT '',
			phase                  TEXT NOT NULL DEFAULT 'ONBOARDING',
			support_cooldown_until TEXT,
			created_at             TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_participants_active ON participants(active)`,

		// Income verification records
		`CREATE TABLE IF NOT EXISTS income_records (
			id               TEXT PRIMARY KEY,
			user_id          TEXT NOT NULL,
			amount           REAL NOT NULL,
			currency         TEXT NOT NULL,
			amount_usd       REAL NOT NULL,
			source           TEXT NOT NULL DEFAULT '',
			proof_url        TEXT NOT NULL DEFAULT '',
			proof_type       TEXT NOT NULL DEFAULT '',
			status           TEXT NOT NULL DEFAULT 'SUBMITTED',
			verified_by      TEXT NOT NULL DEFAULT '',
			verified_at      TEXT,
			rejection_reason TEXT NOT NULL DEFAULT '',
			earned_at        TEXT NOT NULL,
			created_at       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_income_user ON income_records(user_id, status)`,

		// Support requests (amount is operator-side only)
		`CREATE TABLE IF NOT EXISTS support_requests (
			id            TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL,
			type          TEXT NOT NULL,
			status        TEXT NOT NULL DEFAULT 'PENDING',
			mission_id    TEXT NOT NULL DEFAULT '',
			justification TEXT NOT NULL DEFAULT '',
			evidence      TEXT NOT NULL DEFAULT '',
			amount        INTEGER NOT NULL DEFAULT 0,
			created_at    TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_support_user_status ON support_requests(user_id, status)`,

		// Missions (read side for gating and inactivity sweeps)
		`CREATE TABLE IF NOT EXISTS missions (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL,
			title        TEXT NOT NULL DEFAULT '',
			status       TEXT NOT NULL DEFAULT 'ASSIGNED',
			completed_at TEXT,
			created_at   TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_missions_user_status ON missions(user_id, status)`,

		// Applicants
		`CREATE TABLE IF NOT EXISTS applicants (
			id               TEXT PRIMARY KEY,
			email            TEXT NOT NULL,
			status           TEXT NOT NULL DEFAULT 'APPLIED',
			decision         TEXT NOT NULL DEFAULT '',
			risk_flags       TEXT NOT NULL DEFAULT '[]',
			skill_score      INTEGER NOT NULL DEFAULT 0,
			commitment_score INTEGER NOT NULL DEFAULT 0,
			resource_score   INTEGER NOT NULL DEFAULT 0,
			rejection_reason TEXT NOT NULL DEFAULT '',
			offer_type       TEXT NOT NULL DEFAULT '',
			stipend_offered  INTEGER NOT NULL DEFAULT 0,
			acceptance_token TEXT NOT NULL DEFAULT '',
			token_expires_at TEXT,
			created_at       TEXT NOT NULL
		)`,

		// Conditional tasks
		`CREATE TABLE IF NOT EXISTS conditional_tasks (
			id           TEXT PRIMARY KEY,
			applicant_id TEXT NOT NULL,
			type         TEXT NOT NULL,
			deadline     TEXT NOT NULL,
			completed    INTEGER NOT NULL DEFAULT 0,
			proof_url    TEXT NOT NULL DEFAULT '',
			submitted_at TEXT,
			created_at   TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_applicant ON conditional_tasks(applicant_id)`,
	}
}

// ─── Time Helpers ───────────────────────────────────────────────────────────
// Timestamps are stored as RFC3339 text.

func fmtTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}
