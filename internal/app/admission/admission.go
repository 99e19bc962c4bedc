// Package admission routes scoring outcomes to their effects and owns the
// conditional-task lifecycle.
//
// The dispatcher runs once per applicant after the external scoring step
// has set a decision. Conditional-task completion is the one path where an
// applicant's terminal status is decided by a time-boxed, evidence-gated
// action rather than by the scoring step itself.
package admission

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stride-works/stride/internal/domain"
	"github.com/stride-works/stride/internal/infra/observability"
)

// Config holds the dispatcher tunables.
type Config struct {
	TokenTTL time.Duration `toml:"-"`
}

// DefaultConfig returns the production policy: acceptance tokens live 7 days.
func DefaultConfig() Config {
	return Config{TokenTTL: 7 * 24 * time.Hour}
}

// ─── Conditional Task Rules ─────────────────────────────────────────────────

// taskRule binds one risk flag to its remedial task and completion window.
type taskRule struct {
	flag   domain.RiskFlag
	task   domain.ConditionalTaskType
	window time.Duration
}

// conditionalTaskRules is the priority order for task selection: the first
// rule whose flag is present wins. The slice is iterated in order — never
// rely on map iteration for this.
var conditionalTaskRules = []taskRule{
	{domain.FlagLowActionOrientation, domain.TaskMicroProject, 5 * 24 * time.Hour},
	{domain.FlagWeakCommitmentSignal, domain.TaskTimeAudit, 7 * 24 * time.Hour},
	{domain.FlagLimitedTimeCommitment, domain.TaskSchedulePlan, 5 * 24 * time.Hour},
	{domain.FlagSharedDevice, domain.TaskDevicePlan, 10 * 24 * time.Hour},
}

// defaultTaskRule applies when no listed flag is present.
var defaultTaskRule = taskRule{task: domain.TaskGoalStatement, window: 7 * 24 * time.Hour}

// ruleFor picks exactly one task rule for the applicant's flags.
func ruleFor(flags []domain.RiskFlag) taskRule {
	for _, rule := range conditionalTaskRules {
		for _, f := range flags {
			if f == rule.flag {
				return rule
			}
		}
	}
	return defaultTaskRule
}

// primaryGaps maps a stored rejection-reason code to the human-readable
// "primary gap" used for message personalization. Never stored.
var primaryGaps = map[string]string{
	"LOW_SKILL_SIGNAL":        "foundational skill evidence",
	"NO_PORTFOLIO":            "a portfolio of completed work",
	"WEAK_COMMITMENT_SIGNAL":  "a demonstrated commitment to the program schedule",
	"LIMITED_TIME_COMMITMENT": "enough weekly time for the program workload",
	"INCOMPLETE_APPLICATION":  "a complete application",
}

const defaultPrimaryGap = "a stronger overall application"

func primaryGap(reasonCode string) string {
	if gap, ok := primaryGaps[reasonCode]; ok {
		return gap
	}
	return defaultPrimaryGap
}

// ─── Service ────────────────────────────────────────────────────────────────

// Service dispatches admission decisions and handles conditional proofs.
type Service struct {
	store    domain.Store
	notifier domain.Notifier
	cfg      Config
	metrics  *observability.Metrics
	log      zerolog.Logger

	// Injectable clock for testing.
	now func() time.Time
}

// New creates the admission dispatcher.
func New(store domain.Store, notifier domain.Notifier, cfg Config, metrics *observability.Metrics, log zerolog.Logger) *Service {
	return &Service{store: store, notifier: notifier, cfg: cfg, metrics: metrics, log: log, now: time.Now}
}

// SetClock overrides the service clock (tests only).
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// ProcessDecision dispatches the applicant's stored decision to its effect.
// The ledger is never touched here — ledger activity begins after account
// creation.
func (s *Service) ProcessDecision(ctx context.Context, applicantID string) (*domain.AdmissionOutcome, error) {
	a, err := s.store.GetApplicant(applicantID)
	if err != nil {
		return nil, err
	}

	outcome := &domain.AdmissionOutcome{ApplicantID: a.ID, Decision: a.Decision}
	switch a.Decision {
	case domain.DecisionAdmitted:
		if err := s.admit(ctx, a); err != nil {
			return nil, err
		}
		outcome.Token = a.AcceptanceToken

	case domain.DecisionConditional:
		task, err := s.assignConditionalTask(ctx, a)
		if err != nil {
			return nil, err
		}
		outcome.Task = task

	case domain.DecisionRejected:
		gap := primaryGap(a.RejectionReason)
		a.Status = domain.ApplicantRejected
		if err := s.store.UpdateApplicant(a); err != nil {
			return nil, err
		}
		s.notify(ctx, a.Email, domain.NotifyRejection, map[string]any{
			"primary_gap": gap,
		})
		outcome.PrimaryGap = gap

	case domain.DecisionWaitlist:
		// No immediate side effect.

	case "":
		return nil, domain.ErrNoDecision

	default:
		return nil, domain.ErrUnknownDecision
	}

	s.metrics.AdmissionDecision(string(a.Decision))
	return outcome, nil
}

// admit issues a single-use acceptance token and signals the offer.
func (s *Service) admit(ctx context.Context, a *domain.Applicant) error {
	now := s.now().UTC()
	expires := now.Add(s.cfg.TokenTTL)

	a.Status = domain.ApplicantAdmitted
	a.AcceptanceToken = uuid.NewString()
	a.TokenExpiresAt = &expires
	if err := s.store.UpdateApplicant(a); err != nil {
		return err
	}

	s.notify(ctx, a.Email, domain.NotifyOffer, map[string]any{
		"skill_score":      a.SkillScore,
		"commitment_score": a.CommitmentScore,
		"resource_score":   a.ResourceScore,
		"offer_type":       a.OfferType,
		"stipend_offered":  a.StipendOffered,
		"token":            a.AcceptanceToken,
		"token_expires_at": expires,
	})
	return nil
}

// assignConditionalTask picks exactly one task from the priority table and
// creates it with its completion window.
func (s *Service) assignConditionalTask(ctx context.Context, a *domain.Applicant) (*domain.ConditionalTask, error) {
	rule := ruleFor(a.RiskFlags)
	now := s.now().UTC()
	task := &domain.ConditionalTask{
		ID:          uuid.NewString(),
		ApplicantID: a.ID,
		Type:        rule.task,
		Deadline:    now.Add(rule.window),
		CreatedAt:   now,
	}
	if err := s.store.CreateConditionalTask(task); err != nil {
		return nil, err
	}

	a.Status = domain.ApplicantConditional
	if err := s.store.UpdateApplicant(a); err != nil {
		return nil, err
	}

	s.notify(ctx, a.Email, domain.NotifyTask, map[string]any{
		"task_type": string(task.Type),
		"deadline":  task.Deadline,
	})
	return task, nil
}

// SubmitProof completes a conditional task before its deadline and flips
// the applicant to fully admitted. Returns (false, nil) with no mutation
// when the task is already completed or the deadline has passed; a task
// that does not exist for the applicant is a not-found failure.
func (s *Service) SubmitProof(ctx context.Context, applicantID, taskID, proofURL string) (bool, error) {
	task, err := s.store.GetConditionalTask(taskID)
	if err != nil {
		return false, err
	}
	if task.ApplicantID != applicantID {
		return false, domain.ErrTaskNotFound
	}
	if task.Completed {
		return false, nil
	}

	now := s.now().UTC()
	if now.After(task.Deadline) {
		s.log.Info().
			Str("task_id", taskID).
			Str("applicant_id", applicantID).
			Time("deadline", task.Deadline).
			Msg("proof rejected: deadline passed")
		return false, nil
	}

	ok, err := s.store.CompleteConditionalTask(taskID, applicantID, proofURL, now)
	if err != nil {
		return false, err
	}
	if !ok {
		// A concurrent submission won; no double admission.
		return false, nil
	}

	a, err := s.store.GetApplicant(applicantID)
	if err != nil {
		return false, err
	}
	if err := s.admit(ctx, a); err != nil {
		return false, err
	}
	return true, nil
}

// notify signals the notification collaborator. Delivery failure is logged
// but does not roll back an already-committed state change.
func (s *Service) notify(ctx context.Context, recipient string, kind domain.NotificationKind, data map[string]any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, recipient, kind, data); err != nil {
		s.log.Error().Err(err).Str("template", string(kind)).Msg("notification failed")
	}
}
