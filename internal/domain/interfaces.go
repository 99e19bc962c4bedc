package domain

import (
	"context"
	"time"
)

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application services depend on them.

// Store abstracts persistence for the ledger and all core entities.
//
// Implementations must provide read-after-write consistency per user: every
// append is visible to subsequent balance reads. Guarded mutations
// (MarkIncomeVerified, CompleteConditionalTask) re-check the precondition
// state inside the write and report false when it no longer holds, so a
// losing concurrent caller observes a no-op instead of a double effect.
type Store interface {
	// Ledger — append-only. Entries are never updated or deleted;
	// corrections are offsetting entries.
	AppendLedgerEntry(e *LedgerEntry) (int64, error)
	LedgerBalance(userID string, t CurrencyType) (int64, error)
	// RecentLedgerEntries returns most-recent-first. An empty type matches
	// all currency types.
	RecentLedgerEntries(userID string, t CurrencyType, limit int) ([]LedgerEntry, error)

	// Participants
	CreateParticipant(p *Participant) error
	GetParticipant(id string) (*Participant, error)
	ListActiveParticipants() ([]Participant, error)
	UpdateParticipantLevel(id string, level IdentityLevel) error
	PauseParticipant(id, reason string, at time.Time) error
	ResumeParticipant(id string) error

	// Income records
	CreateIncomeRecord(rec *IncomeRecord) error
	GetIncomeRecord(id string) (*IncomeRecord, error)
	// MarkIncomeVerified and MarkIncomeRejected succeed only while the
	// record is still SUBMITTED. Verification appends the credit entry
	// (when non-nil) in the same transaction as the status flip — a
	// VERIFIED record is never left uncredited.
	MarkIncomeVerified(id, reviewerID string, at time.Time, credit *LedgerEntry) (bool, error)
	MarkIncomeRejected(id, reviewerID, reason string, at time.Time) (bool, error)
	SumVerifiedUSD(userID string) (float64, error)
	IncomeStats(userID string) (*IncomeStats, error)

	// Support requests. CreateSupportRequest atomically persists the
	// request and advances the participant's cooldown — both or neither.
	CreateSupportRequest(req *SupportRequest, cooldownUntil time.Time) error
	ListSupportRequests(userID string) ([]SupportRequest, error)
	HasLiveSupportRequest(userID string) (bool, error)

	// Missions (read side used by gating and sweeps)
	CreateMission(m *Mission) error
	UpdateMissionStatus(id string, status MissionStatus, completedAt *time.Time) error
	HasActiveMission(userID string) (bool, error)
	CompletedMissionSince(userID string, since time.Time) (bool, error)

	// Applicants and conditional tasks
	CreateApplicant(a *Applicant) error
	GetApplicant(id string) (*Applicant, error)
	UpdateApplicant(a *Applicant) error
	CreateConditionalTask(t *ConditionalTask) error
	GetConditionalTask(id string) (*ConditionalTask, error)
	// CompleteConditionalTask succeeds only while the task exists for the
	// applicant and is not yet completed.
	CompleteConditionalTask(taskID, applicantID, proofURL string, at time.Time) (bool, error)
}

// Notifier abstracts outbound message delivery. The core decides that a
// message should be sent and with what data; rendering and transport live
// behind this interface.
type Notifier interface {
	Send(ctx context.Context, recipient string, kind NotificationKind, data map[string]any) error
}
