// Package income implements the income verification pipeline.
//
// Records move SUBMITTED → VERIFIED | REJECTED; both outcomes are terminal.
// Only approval touches the ledger: the verified USD-equivalent is credited
// as INCOME_PROOF units and identity progression is invoked once.
package income

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stride-works/stride/internal/app/identity"
	"github.com/stride-works/stride/internal/domain"
	"github.com/stride-works/stride/internal/infra/observability"
)

// Config holds the fixed exchange-rate table: USD-equivalent per one unit
// of the native currency.
type Config struct {
	Rates map[string]float64 `toml:"rates"`
}

// DefaultConfig returns the production rate table.
func DefaultConfig() Config {
	return Config{
		Rates: map[string]float64{
			"USD": 1.0,
			"NGN": 0.00065,
		},
	}
}

// Service handles submission and review of income records.
type Service struct {
	store    domain.Store
	identity *identity.Service
	cfg      Config
	metrics  *observability.Metrics
	log      zerolog.Logger

	// Serializes the review read-credit sequence. The status guard in the
	// store already prevents double transitions; the mutex keeps the
	// ledger credit and the level check in review order.
	mu sync.Mutex

	now func() time.Time
}

// New creates the income verification service.
func New(store domain.Store, ident *identity.Service, cfg Config, metrics *observability.Metrics, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		identity: ident,
		cfg:      cfg,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
	}
}

// SetClock overrides the service clock (tests only).
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Submit records a new income claim in SUBMITTED state. The USD-equivalent
// is derived once at submit time from the fixed rate table; the ledger is
// not touched until approval.
func (s *Service) Submit(userID string, claim domain.IncomeClaim) (*domain.IncomeRecord, error) {
	if _, err := s.store.GetParticipant(userID); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(claim.Currency)
	rate, ok := s.cfg.Rates[currency]
	if !ok {
		return nil, domain.ErrUnknownCurrency
	}

	now := s.now().UTC()
	earnedAt := claim.EarnedAt
	if earnedAt.IsZero() {
		earnedAt = now
	}

	rec := &domain.IncomeRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Amount:    claim.Amount,
		Currency:  currency,
		AmountUSD: claim.Amount * rate,
		Source:    claim.Source,
		ProofURL:  claim.ProofURL,
		ProofType: claim.ProofType,
		Status:    domain.IncomeSubmitted,
		EarnedAt:  earnedAt,
		CreatedAt: now,
	}
	if err := s.store.CreateIncomeRecord(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Approve verifies a SUBMITTED record, credits floor(amountUSD × 100)
// INCOME_PROOF units, and invokes identity progression once. Returns
// (false, 0, nil) when the record is no longer SUBMITTED — an already
// VERIFIED record is never credited again. The status flip and the credit
// commit in one store transaction, so a VERIFIED record is never left
// uncredited. On success the second return is the user's new cumulative
// verified USD total.
func (s *Service) Approve(recordID, reviewerID string) (bool, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.store.GetIncomeRecord(recordID)
	if err != nil {
		return false, 0, err
	}

	units := int64(math.Floor(rec.AmountUSD * 100))
	var credit *domain.LedgerEntry
	if units > 0 {
		credit = &domain.LedgerEntry{
			UserID: rec.UserID,
			Type:   domain.CurrencyIncomeProof,
			Amount: units,
			Reason: "verified income " + rec.ID,
		}
	}

	ok, err := s.store.MarkIncomeVerified(recordID, reviewerID, s.now().UTC(), credit)
	if err != nil {
		return false, 0, err
	}
	if !ok {
		s.metrics.IncomeReview("approve_noop")
		return false, 0, nil
	}
	if credit != nil {
		s.metrics.LedgerAppend(string(credit.Type), credit.Amount)
	}

	if _, _, err := s.identity.CheckLevelUpgrade(rec.UserID); err != nil {
		return false, 0, err
	}

	total, err := s.store.SumVerifiedUSD(rec.UserID)
	if err != nil {
		return false, 0, err
	}

	s.metrics.IncomeReview("approved")
	s.log.Info().
		Str("record_id", recordID).
		Str("user_id", rec.UserID).
		Str("reviewer", reviewerID).
		Int64("credited_units", units).
		Float64("total_verified_usd", total).
		Msg("income record approved")
	return true, total, nil
}

// Reject marks a SUBMITTED record REJECTED with a reason. No ledger effect.
// Returns (false, nil) when the record is no longer SUBMITTED.
func (s *Service) Reject(recordID, reviewerID, reason string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.GetIncomeRecord(recordID); err != nil {
		return false, err
	}

	ok, err := s.store.MarkIncomeRejected(recordID, reviewerID, reason, s.now().UTC())
	if err != nil {
		return false, err
	}
	if !ok {
		s.metrics.IncomeReview("reject_noop")
		return false, nil
	}
	s.metrics.IncomeReview("rejected")
	return true, nil
}

// Stats aggregates the user's income records for dashboard consumption.
func (s *Service) Stats(userID string) (*domain.IncomeStats, error) {
	return s.store.IncomeStats(userID)
}
