// Package stipend implements the stipend eligibility engine and the
// scheduled momentum sweeps.
//
// Eligibility is re-derived from the ledger on every check — nothing here
// caches a balance. Decay and reactivation bonuses are new signed ledger
// entries, never mutations of prior ones. The scheduler, not this package,
// owns the "decay runs at most once per user per day" guarantee.
package stipend

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stride-works/stride/internal/app/ledger"
	"github.com/stride-works/stride/internal/domain"
	"github.com/stride-works/stride/internal/infra/observability"
)

// Config holds every stipend tunable. Thresholds are momentum balances;
// amounts are integer currency units.
type Config struct {
	MinMomentum       int64         `toml:"min_momentum"`
	StandardThreshold int64         `toml:"standard_threshold"`
	BonusThreshold    int64         `toml:"bonus_threshold"`
	BaseAmounts       []int64       `toml:"base_amounts"` // indexed by level, L0 first
	DecayPercent      int64         `toml:"decay_percent"`
	ReactivationBonus int64         `toml:"reactivation_bonus"`
	InactivityWindow  time.Duration `toml:"-"`
}

// DefaultConfig returns the production stipend policy.
func DefaultConfig() Config {
	return Config{
		MinMomentum:       50,
		StandardThreshold: 100,
		BonusThreshold:    200,
		BaseAmounts:       []int64{0, 5_000, 10_000, 15_000, 20_000, 25_000},
		DecayPercent:      5,
		ReactivationBonus: 25,
		InactivityWindow:  7 * 24 * time.Hour,
	}
}

// BaseForLevel returns the base stipend amount for a level, or 0 when the
// level has no stipend (L0, or a level outside the configured table).
func (c Config) BaseForLevel(l domain.IdentityLevel) int64 {
	i := l.Index()
	if i < 0 || i >= len(c.BaseAmounts) {
		return 0
	}
	return c.BaseAmounts[i]
}

// Service evaluates stipend eligibility and runs the momentum sweeps.
type Service struct {
	store   domain.Store
	ledger  *ledger.Service
	cfg     Config
	metrics *observability.Metrics
	log     zerolog.Logger

	// Injectable clock for testing.
	now func() time.Time
}

// New creates the stipend engine.
func New(store domain.Store, led *ledger.Service, cfg Config, metrics *observability.Metrics, log zerolog.Logger) *Service {
	return &Service{store: store, ledger: led, cfg: cfg, metrics: metrics, log: log, now: time.Now}
}

// SetClock overrides the service clock (tests only).
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// CheckEligibility derives the participant's stipend tier and amount from
// the current ledger and identity state.
func (s *Service) CheckEligibility(userID string) (*domain.StipendEligibility, error) {
	p, err := s.store.GetParticipant(userID)
	if err != nil {
		return nil, err
	}

	momentum, err := s.ledger.Balance(userID, domain.CurrencyMomentum)
	if err != nil {
		return nil, err
	}

	elig := &domain.StipendEligibility{
		UserID:     userID,
		Tier:       domain.TierNone,
		Momentum:   momentum,
		DaysActive: p.DaysActive(s.now()),
	}

	if !p.Active {
		elig.Reason = "account is paused"
		s.metrics.StipendCheck(string(elig.Tier))
		return elig, nil
	}

	if momentum < s.cfg.MinMomentum {
		elig.Reason = fmt.Sprintf("momentum %d is %d below the required minimum", momentum, s.cfg.MinMomentum-momentum)
		s.metrics.StipendCheck(string(elig.Tier))
		return elig, nil
	}

	base := s.cfg.BaseForLevel(p.Level)
	if base == 0 {
		elig.Reason = fmt.Sprintf("level %s has no stipend", p.Level)
		s.metrics.StipendCheck(string(elig.Tier))
		return elig, nil
	}

	// Multiplier by momentum band; amounts floor to integer units.
	switch {
	case momentum >= s.cfg.BonusThreshold:
		elig.Tier = domain.TierBonus
		elig.Amount = base * 3 / 2
	case momentum >= s.cfg.StandardThreshold:
		elig.Tier = domain.TierStandard
		elig.Amount = base
	default:
		elig.Tier = domain.TierBase
		elig.Amount = base / 2
	}
	elig.Eligible = true
	s.metrics.StipendCheck(string(elig.Tier))
	return elig, nil
}

// ApplyDailyDecay debits 5% (configured) of the current MOMENTUM balance
// for every active user, as a new negative ledger entry. The debit floors
// to an integer, so small balances stop decaying naturally and never go
// negative. Per-user failures are logged and skipped, not fatal; returns
// the number of users decayed.
func (s *Service) ApplyDailyDecay() (int, error) {
	started := s.now()
	users, err := s.store.ListActiveParticipants()
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, p := range users {
		balance, err := s.ledger.Balance(p.ID, domain.CurrencyMomentum)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", p.ID).Msg("decay: balance read failed")
			continue
		}
		if balance <= 0 {
			continue
		}
		debit := balance * s.cfg.DecayPercent / 100
		if debit <= 0 {
			continue
		}
		if _, err := s.ledger.Append(p.ID, domain.CurrencyMomentum, -debit, "daily momentum decay"); err != nil {
			s.log.Error().Err(err).Str("user_id", p.ID).Msg("decay: append failed")
			continue
		}
		processed++
	}

	s.metrics.SweepRun("decay", s.now().Sub(started))
	s.log.Info().Int("processed", processed).Int("candidates", len(users)).Msg("daily decay sweep complete")
	return processed, nil
}

// CheckInactiveUsers pauses every active, non-L0 user who has completed no
// mission inside the inactivity window AND whose momentum is below the
// minimum. Both conditions are required. Returns the newly paused user IDs.
func (s *Service) CheckInactiveUsers() ([]string, error) {
	started := s.now()
	users, err := s.store.ListActiveParticipants()
	if err != nil {
		return nil, err
	}

	since := s.now().Add(-s.cfg.InactivityWindow)
	var paused []string
	for _, p := range users {
		if p.Level == domain.LevelApplicant {
			continue
		}
		completed, err := s.store.CompletedMissionSince(p.ID, since)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", p.ID).Msg("inactivity: mission read failed")
			continue
		}
		if completed {
			continue
		}
		momentum, err := s.ledger.Balance(p.ID, domain.CurrencyMomentum)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", p.ID).Msg("inactivity: balance read failed")
			continue
		}
		if momentum >= s.cfg.MinMomentum {
			continue
		}
		reason := "no completed mission in inactivity window and momentum below minimum"
		if err := s.store.PauseParticipant(p.ID, reason, s.now().UTC()); err != nil {
			s.log.Error().Err(err).Str("user_id", p.ID).Msg("inactivity: pause failed")
			continue
		}
		paused = append(paused, p.ID)
	}

	s.metrics.SweepRun("inactivity", s.now().Sub(started))
	s.log.Info().Int("paused", len(paused)).Int("candidates", len(users)).Msg("inactivity sweep complete")
	return paused, nil
}

// ReactivateUser restores a paused account and credits the fixed
// reactivation bonus. No-op when the account is already active.
func (s *Service) ReactivateUser(userID string) error {
	p, err := s.store.GetParticipant(userID)
	if err != nil {
		return err
	}
	if p.Active {
		return nil
	}

	if err := s.store.ResumeParticipant(userID); err != nil {
		return err
	}
	if _, err := s.ledger.Append(userID, domain.CurrencyMomentum, s.cfg.ReactivationBonus, "reactivation bonus"); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID).Msg("participant reactivated")
	return nil
}
