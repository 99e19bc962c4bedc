package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stride-works/stride/internal/domain"
)

// ─── Applicant Operations ───────────────────────────────────────────────────

// CreateApplicant inserts a new applicant row.
func (db *DB) CreateApplicant(a *domain.Applicant) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	flags, err := json.Marshal(a.RiskFlags)
	if err != nil {
		return fmt.Errorf("marshal risk flags: %w", err)
	}
	stipend := 0
	if a.StipendOffered {
		stipend = 1
	}
	_, err = db.db.Exec(`
		INSERT INTO applicants
			(id, email, status, decision, risk_flags, skill_score, commitment_score,
			 resource_score, rejection_reason, offer_type, stipend_offered,
			 acceptance_token, token_expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Email, string(a.Status), string(a.Decision), string(flags),
		a.SkillScore, a.CommitmentScore, a.ResourceScore, a.RejectionReason,
		a.OfferType, stipend, a.AcceptanceToken, fmtTimePtr(a.TokenExpiresAt), fmtTime(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("create applicant: %w", err)
	}
	return nil
}

// GetApplicant loads an applicant by id.
func (db *DB) GetApplicant(id string) (*domain.Applicant, error) {
	row := db.db.QueryRow(`
		SELECT id, email, status, decision, risk_flags, skill_score, commitment_score,
		       resource_score, rejection_reason, offer_type, stipend_offered,
		       acceptance_token, token_expires_at, created_at
		FROM applicants WHERE id = ?
	`, id)

	var a domain.Applicant
	var status, decision, flags, created string
	var stipend int
	var tokenExpires sql.NullString
	err := row.Scan(&a.ID, &a.Email, &status, &decision, &flags, &a.SkillScore,
		&a.CommitmentScore, &a.ResourceScore, &a.RejectionReason, &a.OfferType,
		&stipend, &a.AcceptanceToken, &tokenExpires, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrApplicantNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Status = domain.ApplicantStatus(status)
	a.Decision = domain.AdmissionDecision(decision)
	a.StipendOffered = stipend == 1
	a.TokenExpiresAt = parseTimePtr(tokenExpires)
	a.CreatedAt = parseTime(created)
	if err := json.Unmarshal([]byte(flags), &a.RiskFlags); err != nil {
		return nil, fmt.Errorf("unmarshal risk flags: %w", err)
	}
	return &a, nil
}

// UpdateApplicant rewrites the applicant's mutable fields.
func (db *DB) UpdateApplicant(a *domain.Applicant) error {
	flags, err := json.Marshal(a.RiskFlags)
	if err != nil {
		return fmt.Errorf("marshal risk flags: %w", err)
	}
	stipend := 0
	if a.StipendOffered {
		stipend = 1
	}
	res, err := db.db.Exec(`
		UPDATE applicants SET
			status = ?, decision = ?, risk_flags = ?, skill_score = ?,
			commitment_score = ?, resource_score = ?, rejection_reason = ?,
			offer_type = ?, stipend_offered = ?, acceptance_token = ?, token_expires_at = ?
		WHERE id = ?
	`, string(a.Status), string(a.Decision), string(flags), a.SkillScore,
		a.CommitmentScore, a.ResourceScore, a.RejectionReason, a.OfferType,
		stipend, a.AcceptanceToken, fmtTimePtr(a.TokenExpiresAt), a.ID)
	if err != nil {
		return fmt.Errorf("update applicant: %w", err)
	}
	return requireRow(res, domain.ErrApplicantNotFound)
}

// ─── Conditional Task Operations ────────────────────────────────────────────

// CreateConditionalTask inserts a new incomplete task.
func (db *DB) CreateConditionalTask(t *domain.ConditionalTask) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := db.db.Exec(`
		INSERT INTO conditional_tasks (id, applicant_id, type, deadline, completed, proof_url, submitted_at, created_at)
		VALUES (?, ?, ?, ?, 0, ?, ?, ?)
	`, t.ID, t.ApplicantID, string(t.Type), fmtTime(t.Deadline), t.ProofURL,
		fmtTimePtr(t.SubmittedAt), fmtTime(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("create conditional task: %w", err)
	}
	return nil
}

// GetConditionalTask loads a task by id.
func (db *DB) GetConditionalTask(id string) (*domain.ConditionalTask, error) {
	row := db.db.QueryRow(`
		SELECT id, applicant_id, type, deadline, completed, proof_url, submitted_at, created_at
		FROM conditional_tasks WHERE id = ?
	`, id)

	var t domain.ConditionalTask
	var typ, deadline, created string
	var completed int
	var submitted sql.NullString
	err := row.Scan(&t.ID, &t.ApplicantID, &typ, &deadline, &completed, &t.ProofURL, &submitted, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	t.Type = domain.ConditionalTaskType(typ)
	t.Deadline = parseTime(deadline)
	t.Completed = completed == 1
	t.SubmittedAt = parseTimePtr(submitted)
	t.CreatedAt = parseTime(created)
	return &t, nil
}

// CompleteConditionalTask marks an incomplete task completed with its proof.
// The WHERE clause re-checks ownership and the completed flag, so a second
// submission (or a concurrent one) changes zero rows.
func (db *DB) CompleteConditionalTask(taskID, applicantID, proofURL string, at time.Time) (bool, error) {
	res, err := db.db.Exec(`
		UPDATE conditional_tasks SET completed = 1, proof_url = ?, submitted_at = ?
		WHERE id = ? AND applicant_id = ? AND completed = 0
	`, proofURL, fmtTime(at), taskID, applicantID)
	if err != nil {
		return false, fmt.Errorf("complete conditional task: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
