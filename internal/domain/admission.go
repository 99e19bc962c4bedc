package domain

import "time"

// ─── Admission ──────────────────────────────────────────────────────────────

// AdmissionDecision is the outcome of the external scoring step.
type AdmissionDecision string

const (
	DecisionAdmitted    AdmissionDecision = "ADMITTED"
	DecisionConditional AdmissionDecision = "CONDITIONAL"
	DecisionRejected    AdmissionDecision = "REJECTED"
	DecisionWaitlist    AdmissionDecision = "WAITLIST"
)

// ApplicantStatus is the applicant's position in the intake funnel.
type ApplicantStatus string

const (
	ApplicantApplied     ApplicantStatus = "APPLIED"
	ApplicantScored      ApplicantStatus = "SCORED"
	ApplicantAdmitted    ApplicantStatus = "ADMITTED"
	ApplicantConditional ApplicantStatus = "CONDITIONAL"
	ApplicantRejected    ApplicantStatus = "REJECTED"
	ApplicantWaitlisted  ApplicantStatus = "WAITLISTED"
)

// RiskFlag marks a concern raised during admission scoring. Flags drive
// conditional-task selection in a fixed priority order.
type RiskFlag string

const (
	FlagLowActionOrientation  RiskFlag = "LOW_ACTION_ORIENTATION"
	FlagWeakCommitmentSignal  RiskFlag = "WEAK_COMMITMENT_SIGNAL"
	FlagLimitedTimeCommitment RiskFlag = "LIMITED_TIME_COMMITMENT"
	FlagSharedDevice          RiskFlag = "SHARED_DEVICE"
)

// ConditionalTaskType is the remedial assignment given to a conditionally
// admitted applicant.
type ConditionalTaskType string

const (
	TaskMicroProject  ConditionalTaskType = "MICRO_PROJECT"
	TaskTimeAudit     ConditionalTaskType = "TIME_AUDIT"
	TaskSchedulePlan  ConditionalTaskType = "SCHEDULE_PLAN"
	TaskDevicePlan    ConditionalTaskType = "DEVICE_PLAN"
	TaskGoalStatement ConditionalTaskType = "GOAL_STATEMENT"
)

// Applicant is a candidate moving through intake. SkillScores holds the
// skill-triad scores produced by the scoring collaborator.
type Applicant struct {
	ID              string            `json:"id"`
	Email           string            `json:"email"`
	Status          ApplicantStatus   `json:"status"`
	Decision        AdmissionDecision `json:"decision,omitempty"`
	RiskFlags       []RiskFlag        `json:"risk_flags,omitempty"`
	SkillScore      int               `json:"skill_score"`
	CommitmentScore int               `json:"commitment_score"`
	ResourceScore   int               `json:"resource_score"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	OfferType       string            `json:"offer_type,omitempty"`
	StipendOffered  bool              `json:"stipend_offered"`
	AcceptanceToken string            `json:"acceptance_token,omitempty"`
	TokenExpiresAt  *time.Time        `json:"token_expires_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// ConditionalTask is a time-boxed remedial assignment. Created only as a
// side effect of a CONDITIONAL decision; once the deadline passes an
// incomplete task is inert — submissions are rejected, never silently
// accepted.
type ConditionalTask struct {
	ID          string              `json:"id"`
	ApplicantID string              `json:"applicant_id"`
	Type        ConditionalTaskType `json:"type"`
	Deadline    time.Time           `json:"deadline"`
	Completed   bool                `json:"completed"`
	ProofURL    string              `json:"proof_url,omitempty"`
	SubmittedAt *time.Time          `json:"submitted_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// AdmissionOutcome summarizes what the dispatcher did for one applicant.
type AdmissionOutcome struct {
	ApplicantID string            `json:"applicant_id"`
	Decision    AdmissionDecision `json:"decision"`
	Token       string            `json:"token,omitempty"`
	Task        *ConditionalTask  `json:"task,omitempty"`
	PrimaryGap  string            `json:"primary_gap,omitempty"`
}

// ─── Notifications ──────────────────────────────────────────────────────────

// NotificationKind selects the outbound message template. Rendering and
// delivery belong to the notification collaborator; this core only decides
// that a message should go out and with what data.
type NotificationKind string

const (
	NotifyOffer     NotificationKind = "ADMISSION_OFFER"
	NotifyRejection NotificationKind = "ADMISSION_REJECTION"
	NotifyTask      NotificationKind = "CONDITIONAL_TASK"
)
