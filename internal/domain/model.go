// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import "time"

// ─── Identity Levels ────────────────────────────────────────────────────────

// IdentityLevel is a monotonic progression label reflecting program stage.
// Transitions are one-directional: a participant never drops a level.
type IdentityLevel string

const (
	LevelApplicant IdentityLevel = "L0_APPLICANT"
	LevelOnboarded IdentityLevel = "L1_ONBOARDED"
	LevelSkilled   IdentityLevel = "L2_SKILLED"
	LevelExposed   IdentityLevel = "L3_EXPOSED"
	LevelEarner    IdentityLevel = "L4_EARNER"
	LevelCatalyst  IdentityLevel = "L5_CATALYST"
)

// Levels lists all identity levels in ascending order.
func Levels() []IdentityLevel {
	return []IdentityLevel{
		LevelApplicant, LevelOnboarded, LevelSkilled,
		LevelExposed, LevelEarner, LevelCatalyst,
	}
}

// Index returns the ordinal position of the level (L0 = 0). Unknown levels
// return -1 so comparisons against them never report progress.
func (l IdentityLevel) Index() int {
	for i, lvl := range Levels() {
		if l == lvl {
			return i
		}
	}
	return -1
}

// Before reports whether l is strictly lower than other.
func (l IdentityLevel) Before(other IdentityLevel) bool {
	return l.Index() < other.Index()
}

// Valid reports whether l is a known identity level.
func (l IdentityLevel) Valid() bool { return l.Index() >= 0 }

// ─── Program Phases ─────────────────────────────────────────────────────────

// ProgramPhase is a coarse program stage that gates which support types
// are requestable.
type ProgramPhase string

const (
	PhaseOnboarding       ProgramPhase = "ONBOARDING"
	PhaseSkillBuilding    ProgramPhase = "SKILL_BUILDING"
	PhaseMarketExposure   ProgramPhase = "MARKET_EXPOSURE"
	PhaseIncomeGeneration ProgramPhase = "INCOME_GENERATION"
	PhaseCatalyst         ProgramPhase = "CATALYST"
)

// ─── Participant ────────────────────────────────────────────────────────────

// Participant is a program member's identity-level state. Pausing is
// orthogonal to level: it gates stipend and support eligibility but never
// demotes the level.
type Participant struct {
	ID                   string        `json:"id"`
	Level                IdentityLevel `json:"level"`
	Active               bool          `json:"active"`
	PausedAt             *time.Time    `json:"paused_at,omitempty"`
	PauseReason          string        `json:"pause_reason,omitempty"`
	Phase                ProgramPhase  `json:"phase"`
	SupportCooldownUntil *time.Time    `json:"support_cooldown_until,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
}

// DaysActive returns whole calendar days since the participant joined.
func (p *Participant) DaysActive(now time.Time) int {
	d := int(now.Sub(p.CreatedAt).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// ─── Missions ───────────────────────────────────────────────────────────────

// MissionStatus tracks a mission through its lifecycle. Only the statuses
// that matter to eligibility gating live here; mission CRUD itself is an
// external collaborator.
type MissionStatus string

const (
	MissionAssigned   MissionStatus = "ASSIGNED"
	MissionInProgress MissionStatus = "IN_PROGRESS"
	MissionSubmitted  MissionStatus = "SUBMITTED"
	MissionCompleted  MissionStatus = "COMPLETED"
	MissionExpired    MissionStatus = "EXPIRED"
)

// Mission is a participant's work assignment. The support gate requires one
// in an active status; the inactivity sweep looks at recent completions.
type Mission struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	Title       string        `json:"title"`
	Status      MissionStatus `json:"status"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// ActiveMissionStatuses are the statuses that count as "currently working".
func ActiveMissionStatuses() []MissionStatus {
	return []MissionStatus{MissionAssigned, MissionInProgress, MissionSubmitted}
}
