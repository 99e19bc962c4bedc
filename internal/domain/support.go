package domain

import "time"

// ─── Support Requests ───────────────────────────────────────────────────────

// SupportStatus is the lifecycle state of a support request.
// PENDING → APPROVED → APPROVED_PENDING_DISBURSE → COMPLETED, or
// PENDING → DENIED | EXPIRED. This core only admits requests into PENDING;
// disbursement is an external collaborator.
type SupportStatus string

const (
	SupportPending         SupportStatus = "PENDING"
	SupportApproved        SupportStatus = "APPROVED"
	SupportPendingDisburse SupportStatus = "APPROVED_PENDING_DISBURSE"
	SupportDenied          SupportStatus = "DENIED"
	SupportCompleted       SupportStatus = "COMPLETED"
	SupportExpired         SupportStatus = "EXPIRED"
)

// LiveSupportStatuses are the statuses that block a new request. A user may
// have at most one request in any of these states at a time.
func LiveSupportStatuses() []SupportStatus {
	return []SupportStatus{SupportPending, SupportApproved, SupportPendingDisburse}
}

// SupportType is a category of non-cash assistance.
type SupportType string

const (
	SupportData        SupportType = "DATA"
	SupportTransport   SupportType = "TRANSPORT"
	SupportTools       SupportType = "TOOLS"
	SupportCounselling SupportType = "COUNSELLING"
)

// AllowedSupportTypes maps a program phase to the support types requestable
// in it. The switch is exhaustive over ProgramPhase; an unknown phase gets
// no types, which the gate reports as PHASE_MISMATCH.
func AllowedSupportTypes(phase ProgramPhase) []SupportType {
	switch phase {
	case PhaseOnboarding:
		return []SupportType{SupportData, SupportCounselling}
	case PhaseSkillBuilding:
		return []SupportType{SupportData, SupportTransport, SupportCounselling}
	case PhaseMarketExposure:
		return []SupportType{SupportData, SupportTransport, SupportTools, SupportCounselling}
	case PhaseIncomeGeneration:
		return []SupportType{SupportData, SupportTransport, SupportTools}
	case PhaseCatalyst:
		return nil // graduates request nothing
	default:
		return nil
	}
}

// DenialReason is a structured policy-denial code. It carries enough for
// UI-level messaging without leaking internal thresholds.
type DenialReason string

const (
	DenialBehavioralFlag       DenialReason = "BEHAVIORAL_FLAG"
	DenialInsufficientMomentum DenialReason = "INSUFFICIENT_MOMENTUM"
	DenialNoActiveMission      DenialReason = "NO_ACTIVE_MISSION"
	DenialCooldownActive       DenialReason = "COOLDOWN_ACTIVE"
	DenialDuplicateRequest     DenialReason = "DUPLICATE_REQUEST"
	DenialPhaseMismatch        DenialReason = "PHASE_MISMATCH"
)

// SupportRequest is a participant-initiated ask for non-cash assistance.
// Amount is an operator-side budget figure and must never reach the
// requesting participant; use View for participant-facing reads.
type SupportRequest struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	Type          SupportType   `json:"type"`
	Status        SupportStatus `json:"status"`
	MissionID     string        `json:"mission_id,omitempty"`
	Justification string        `json:"justification"`
	Evidence      string        `json:"evidence,omitempty"`
	Amount        int64         `json:"amount"`
	CreatedAt     time.Time     `json:"created_at"`
}

// SupportRequestView is the participant-facing projection of a request.
// It deliberately has no amount field.
type SupportRequestView struct {
	ID            string        `json:"id"`
	Type          SupportType   `json:"type"`
	Status        SupportStatus `json:"status"`
	MissionID     string        `json:"mission_id,omitempty"`
	Justification string        `json:"justification"`
	CreatedAt     time.Time     `json:"created_at"`
}

// View returns the participant-facing projection of the request.
func (r *SupportRequest) View() SupportRequestView {
	return SupportRequestView{
		ID:            r.ID,
		Type:          r.Type,
		Status:        r.Status,
		MissionID:     r.MissionID,
		Justification: r.Justification,
		CreatedAt:     r.CreatedAt,
	}
}

// SupportRequestInput is the creation DTO for a new support request.
type SupportRequestInput struct {
	Type          SupportType `json:"type"`
	MissionID     string      `json:"mission_id,omitempty"`
	Justification string      `json:"justification"`
	Evidence      string      `json:"evidence,omitempty"`
}

// GateResult is the outcome of a support eligibility check. When Eligible
// is false, Reason and Message describe the first failing rule.
type GateResult struct {
	Eligible     bool          `json:"eligible"`
	Reason       DenialReason  `json:"reason,omitempty"`
	Message      string        `json:"message,omitempty"`
	AllowedTypes []SupportType `json:"allowed_types,omitempty"`
}
