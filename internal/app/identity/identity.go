// Package identity implements the level progression state machine.
//
// Progression is monotonic and single-step: one invocation advances a
// participant at most one level, and only when the computed target is
// strictly greater than the current level. Callers credit the ledger first
// and then invoke CheckLevelUpgrade; chasing a multi-step promotion means
// invoking again after the next credit.
package identity

import (
	"github.com/rs/zerolog"

	"github.com/stride-works/stride/internal/app/ledger"
	"github.com/stride-works/stride/internal/domain"
	"github.com/stride-works/stride/internal/infra/observability"
)

// Config holds the promotion thresholds in INCOME_PROOF units
// (hundredths of a USD-equivalent).
type Config struct {
	EarnerThresholdUnits   int64 `toml:"earner_threshold_units"`
	CatalystThresholdUnits int64 `toml:"catalyst_threshold_units"`
}

// DefaultConfig returns the production thresholds: L4 at $1 equivalent,
// L5 at $500.
func DefaultConfig() Config {
	return Config{
		EarnerThresholdUnits:   100,
		CatalystThresholdUnits: 50_000,
	}
}

// NextLevel computes the target level for the current level and verified
// income balance. It never returns more than one step above cur, and for
// any level without an automatic transition it returns cur unchanged
// (L0→L3 happen via admission and onboarding events outside this core).
func NextLevel(cur domain.IdentityLevel, incomeProofUnits int64, cfg Config) domain.IdentityLevel {
	switch cur {
	case domain.LevelExposed:
		if incomeProofUnits >= cfg.EarnerThresholdUnits {
			return domain.LevelEarner
		}
	case domain.LevelEarner:
		if incomeProofUnits >= cfg.CatalystThresholdUnits {
			return domain.LevelCatalyst
		}
	case domain.LevelApplicant, domain.LevelOnboarded, domain.LevelSkilled, domain.LevelCatalyst:
		// No automatic transition.
	}
	return cur
}

// Service applies the progression rules against the store.
type Service struct {
	store   domain.Store
	ledger  *ledger.Service
	cfg     Config
	metrics *observability.Metrics
	log     zerolog.Logger
}

// New creates the identity progression service.
func New(store domain.Store, led *ledger.Service, cfg Config, metrics *observability.Metrics, log zerolog.Logger) *Service {
	return &Service{store: store, ledger: led, cfg: cfg, metrics: metrics, log: log}
}

// CheckLevelUpgrade re-derives the participant's level from the ledger and
// promotes at most one step. Returns the level now in effect and whether a
// promotion was written. Invoking twice with no new credits in between
// writes nothing the second time.
func (s *Service) CheckLevelUpgrade(userID string) (domain.IdentityLevel, bool, error) {
	p, err := s.store.GetParticipant(userID)
	if err != nil {
		return "", false, err
	}

	units, err := s.ledger.Balance(userID, domain.CurrencyIncomeProof)
	if err != nil {
		return "", false, err
	}

	next := NextLevel(p.Level, units, s.cfg)
	if !p.Level.Before(next) {
		return p.Level, false, nil
	}

	if err := s.store.UpdateParticipantLevel(userID, next); err != nil {
		return "", false, err
	}
	s.metrics.Promotion()
	s.log.Info().
		Str("user_id", userID).
		Str("from", string(p.Level)).
		Str("to", string(next)).
		Int64("income_proof_units", units).
		Msg("identity level promoted")
	return next, true, nil
}
