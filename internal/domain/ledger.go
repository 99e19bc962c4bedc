package domain

import "time"

// ─── Behavioral Currency Ledger ─────────────────────────────────────────────
// The ledger is append-only: entries are never updated or deleted, and a
// balance is always the sum of all signed amounts for a (user, type) pair.
// Corrections, decay, and bonuses are new signed entries.

// CurrencyType identifies a behavioral currency tracked in the ledger.
type CurrencyType string

const (
	CurrencyMomentum    CurrencyType = "MOMENTUM"
	CurrencySkillXP     CurrencyType = "SKILL_XP"
	CurrencyArenaPoints CurrencyType = "ARENA_POINTS"
	CurrencyIncomeProof CurrencyType = "INCOME_PROOF"
)

// CurrencyTypes lists every known currency type.
func CurrencyTypes() []CurrencyType {
	return []CurrencyType{
		CurrencyMomentum, CurrencySkillXP,
		CurrencyArenaPoints, CurrencyIncomeProof,
	}
}

// Valid reports whether t is a known currency type.
func (t CurrencyType) Valid() bool {
	for _, ct := range CurrencyTypes() {
		if t == ct {
			return true
		}
	}
	return false
}

// LedgerEntry is one immutable fact in the behavioral currency ledger.
// Amount is signed: credits are positive, debits (decay) negative.
type LedgerEntry struct {
	ID        int64        `json:"id"`
	UserID    string       `json:"user_id"`
	Type      CurrencyType `json:"type"`
	Amount    int64        `json:"amount"`
	Reason    string       `json:"reason"`
	CreatedAt time.Time    `json:"created_at"`
}
