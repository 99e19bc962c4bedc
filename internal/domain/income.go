package domain

import "time"

// ─── Income Verification ────────────────────────────────────────────────────

// IncomeStatus is the review state of an income record.
// SUBMITTED → VERIFIED | REJECTED; both outcomes are terminal.
type IncomeStatus string

const (
	IncomeSubmitted IncomeStatus = "SUBMITTED"
	IncomeVerified  IncomeStatus = "VERIFIED"
	IncomeRejected  IncomeStatus = "REJECTED"
)

// IncomeRecord is a participant's claim of earned income, awaiting review.
// AmountUSD is derived at submit time from a fixed exchange-rate table.
type IncomeRecord struct {
	ID              string       `json:"id"`
	UserID          string       `json:"user_id"`
	Amount          float64      `json:"amount"`
	Currency        string       `json:"currency"`
	AmountUSD       float64      `json:"amount_usd"`
	Source          string       `json:"source"`
	ProofURL        string       `json:"proof_url"`
	ProofType       string       `json:"proof_type"`
	Status          IncomeStatus `json:"status"`
	VerifiedBy      string       `json:"verified_by,omitempty"`
	VerifiedAt      *time.Time   `json:"verified_at,omitempty"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
	EarnedAt        time.Time    `json:"earned_at"`
	CreatedAt       time.Time    `json:"created_at"`
}

// IncomeClaim is the submit-time input for a new income record.
type IncomeClaim struct {
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Source    string    `json:"source"`
	ProofURL  string    `json:"proof_url"`
	ProofType string    `json:"proof_type"`
	EarnedAt  time.Time `json:"earned_at"`
}

// IncomeCurrencyStats aggregates income records for one native currency.
type IncomeCurrencyStats struct {
	Currency    string  `json:"currency"`
	Count       int     `json:"count"`
	TotalNative float64 `json:"total_native"`
	TotalUSD    float64 `json:"total_usd"`
}

// IncomeStats is the dashboard aggregate for a user's income records,
// split by review status and by native currency.
type IncomeStats struct {
	UserID         string                `json:"user_id"`
	SubmittedCount int                   `json:"submitted_count"`
	VerifiedCount  int                   `json:"verified_count"`
	RejectedCount  int                   `json:"rejected_count"`
	VerifiedUSD    float64               `json:"verified_usd"`
	PendingUSD     float64               `json:"pending_usd"`
	ByCurrency     []IncomeCurrencyStats `json:"by_currency"`
}
