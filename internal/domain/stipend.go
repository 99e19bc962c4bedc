package domain

// ─── Stipend Tiers ──────────────────────────────────────────────────────────

// StipendTier is the momentum-driven multiplier band applied to the base
// stipend amount for a participant's level.
type StipendTier string

const (
	TierNone     StipendTier = "NONE"
	TierBase     StipendTier = "BASE"
	TierStandard StipendTier = "STANDARD"
	TierBonus    StipendTier = "BONUS"
)

// StipendEligibility is the result of a stipend check. Amount is in integer
// currency units, already floored after the tier multiplier.
type StipendEligibility struct {
	UserID     string      `json:"user_id"`
	Eligible   bool        `json:"eligible"`
	Reason     string      `json:"reason,omitempty"`
	Amount     int64       `json:"amount"`
	Tier       StipendTier `json:"tier"`
	Momentum   int64       `json:"momentum"`
	DaysActive int         `json:"days_active"`
}
