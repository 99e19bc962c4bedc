// Package support implements the support request gate.
//
// Admission into PENDING is the only lifecycle step owned here; approval
// and disbursement belong to an external collaborator. The gate evaluates
// its rules in a fixed order and short-circuits on the first failure, and
// creation pairs the new request with the cooldown advance atomically.
package support

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stride-works/stride/internal/app/ledger"
	"github.com/stride-works/stride/internal/domain"
	"github.com/stride-works/stride/internal/infra/observability"
)

// Config holds the gate tunables.
type Config struct {
	MinMomentum int64         `toml:"min_momentum"`
	Cooldown    time.Duration `toml:"-"`
}

// DefaultConfig returns the production gate policy.
func DefaultConfig() Config {
	return Config{
		MinMomentum: 50,
		Cooldown:    24 * time.Hour,
	}
}

// Service admits support requests.
type Service struct {
	store   domain.Store
	ledger  *ledger.Service
	cfg     Config
	metrics *observability.Metrics
	log     zerolog.Logger

	// Injectable clock for testing.
	now func() time.Time
}

// New creates the support gate.
func New(store domain.Store, led *ledger.Service, cfg Config, metrics *observability.Metrics, log zerolog.Logger) *Service {
	return &Service{store: store, ledger: led, cfg: cfg, metrics: metrics, log: log, now: time.Now}
}

// SetClock overrides the service clock (tests only).
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// CheckEligibility evaluates the gate rules in order, short-circuiting on
// the first failure. Participant lookup failure is a hard error; every
// rule failure is a structured denial, not an error.
func (s *Service) CheckEligibility(userID string) (*domain.GateResult, error) {
	p, err := s.store.GetParticipant(userID)
	if err != nil {
		return nil, err
	}

	// 1. Paused accounts are flagged out before anything else.
	if !p.Active {
		return s.deny(domain.DenialBehavioralFlag, "account is paused"), nil
	}

	// 2. Momentum gate.
	momentum, err := s.ledger.Balance(userID, domain.CurrencyMomentum)
	if err != nil {
		return nil, err
	}
	if momentum < s.cfg.MinMomentum {
		return s.deny(domain.DenialInsufficientMomentum, "momentum is below the required minimum"), nil
	}

	// 3. Must be working on something.
	active, err := s.store.HasActiveMission(userID)
	if err != nil {
		return nil, err
	}
	if !active {
		return s.deny(domain.DenialNoActiveMission, "no mission currently in progress"), nil
	}

	// 4. Cooldown.
	if p.SupportCooldownUntil != nil && p.SupportCooldownUntil.After(s.now()) {
		return s.deny(domain.DenialCooldownActive,
			fmt.Sprintf("next request available at %s", p.SupportCooldownUntil.UTC().Format(time.RFC3339))), nil
	}

	// 5. One live request at a time.
	live, err := s.store.HasLiveSupportRequest(userID)
	if err != nil {
		return nil, err
	}
	if live {
		return s.deny(domain.DenialDuplicateRequest, "an earlier request is still open"), nil
	}

	// 6. Phase must allow at least one support type.
	allowed := domain.AllowedSupportTypes(p.Phase)
	if len(allowed) == 0 {
		return s.deny(domain.DenialPhaseMismatch, "no support types available in the current phase"), nil
	}

	return &domain.GateResult{Eligible: true, AllowedTypes: allowed}, nil
}

// CreateRequest re-validates eligibility and the requested type, then
// atomically creates the PENDING request and sets the cooldown exactly one
// cooldown interval forward from now. A denial comes back as a GateResult
// with a nil request and nil error.
func (s *Service) CreateRequest(userID string, in domain.SupportRequestInput) (*domain.SupportRequestView, *domain.GateResult, error) {
	gate, err := s.CheckEligibility(userID)
	if err != nil {
		return nil, nil, err
	}
	if !gate.Eligible {
		return nil, gate, nil
	}

	if !typeAllowed(in.Type, gate.AllowedTypes) {
		return nil, s.deny(domain.DenialPhaseMismatch,
			fmt.Sprintf("support type %s is not available in the current phase", in.Type)), nil
	}

	now := s.now().UTC()
	req := &domain.SupportRequest{
		ID:            uuid.NewString(),
		UserID:        userID,
		Type:          in.Type,
		Status:        domain.SupportPending,
		MissionID:     in.MissionID,
		Justification: in.Justification,
		Evidence:      in.Evidence,
		CreatedAt:     now,
	}
	if err := s.store.CreateSupportRequest(req, now.Add(s.cfg.Cooldown)); err != nil {
		return nil, nil, err
	}

	s.log.Info().
		Str("user_id", userID).
		Str("request_id", req.ID).
		Str("type", string(req.Type)).
		Msg("support request created")
	view := req.View()
	return &view, gate, nil
}

// ListRequests returns the participant-facing view of the user's request
// history. The amount field never leaves the operator side.
func (s *Service) ListRequests(userID string) ([]domain.SupportRequestView, error) {
	reqs, err := s.store.ListSupportRequests(userID)
	if err != nil {
		return nil, err
	}
	views := make([]domain.SupportRequestView, 0, len(reqs))
	for i := range reqs {
		views = append(views, reqs[i].View())
	}
	return views, nil
}

func (s *Service) deny(reason domain.DenialReason, msg string) *domain.GateResult {
	s.metrics.SupportDenial(string(reason))
	return &domain.GateResult{Reason: reason, Message: msg}
}

func typeAllowed(t domain.SupportType, allowed []domain.SupportType) bool {
	for _, a := range allowed {
		if t == a {
			return true
		}
	}
	return false
}
