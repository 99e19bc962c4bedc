package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.
// Not-found is a hard failure; invalid-state and deadline-exceeded are
// reported as boolean results by the services, not as errors.

var (
	// Entity lookups
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrIncomeRecordNotFound = errors.New("income record not found")
	ErrApplicantNotFound    = errors.New("applicant not found")
	ErrTaskNotFound         = errors.New("conditional task not found")

	// Ledger
	ErrUnknownCurrencyType = errors.New("unknown currency type")
	ErrZeroAmount          = errors.New("ledger entry amount must be non-zero")

	// Income
	ErrUnknownCurrency = errors.New("no exchange rate for currency")

	// Admission
	ErrNoDecision      = errors.New("applicant has no admission decision")
	ErrUnknownDecision = errors.New("unknown admission decision")
)
