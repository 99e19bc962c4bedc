package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/stride-works/stride/internal/app/admission"
	"github.com/stride-works/stride/internal/app/identity"
	"github.com/stride-works/stride/internal/app/income"
	"github.com/stride-works/stride/internal/app/ledger"
	"github.com/stride-works/stride/internal/app/stipend"
	"github.com/stride-works/stride/internal/app/support"
	"github.com/stride-works/stride/internal/domain"
	"github.com/stride-works/stride/internal/infra/notify"
	"github.com/stride-works/stride/internal/infra/observability"
	"github.com/stride-works/stride/internal/infra/sqlite"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	handler http.Handler
	db      *sqlite.DB
	led     *ledger.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := zerolog.Nop()
	clock := func() time.Time { return testNow }

	led := ledger.New(db, nil)
	led.SetClock(clock)
	ident := identity.New(db, led, identity.DefaultConfig(), nil, log)

	incomeSvc := income.New(db, ident, income.DefaultConfig(), nil, log)
	incomeSvc.SetClock(clock)
	stipendSvc := stipend.New(db, led, stipend.DefaultConfig(), nil, log)
	stipendSvc.SetClock(clock)
	supportSvc := support.New(db, led, support.DefaultConfig(), nil, log)
	supportSvc.SetClock(clock)
	admissionSvc := admission.New(db, notify.NewLogNotifier(log), admission.DefaultConfig(), nil, log)
	admissionSvc.SetClock(clock)

	server := NewServer(
		&IncomeAPI{Service: incomeSvc},
		&StipendAPI{Service: stipendSvc},
		&SupportAPI{Service: supportSvc},
		&AdmissionAPI{Service: admissionSvc},
		log,
	)
	return &fixture{handler: server.Handler(), db: db, led: led}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) seedParticipant(t *testing.T, id string, level domain.IdentityLevel, momentum int64) {
	t.Helper()
	err := f.db.CreateParticipant(&domain.Participant{
		ID: id, Level: level, Active: true,
		Phase: domain.PhaseSkillBuilding, CreatedAt: testNow.Add(-30 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}
	if momentum != 0 {
		f.led.Append(id, domain.CurrencyMomentum, momentum, "seed")
	}
}

func TestMetricsEndpointServesWiredRegistry(t *testing.T) {
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := zerolog.Nop()
	reg := prometheus.NewRegistry()
	metrics := observability.New(reg)

	led := ledger.New(db, metrics)
	ident := identity.New(db, led, identity.DefaultConfig(), metrics, log)
	stipendSvc := stipend.New(db, led, stipend.DefaultConfig(), metrics, log)

	server := NewServer(
		&IncomeAPI{Service: income.New(db, ident, income.DefaultConfig(), metrics, log)},
		&StipendAPI{Service: stipendSvc},
		&SupportAPI{Service: support.New(db, led, support.DefaultConfig(), metrics, log)},
		&AdmissionAPI{Service: admission.New(db, notify.NewLogNotifier(log), admission.DefaultConfig(), metrics, log)},
		log,
	)
	server.EnableMetrics(reg)
	handler := server.Handler()

	db.CreateParticipant(&domain.Participant{
		ID: "u1", Level: domain.LevelSkilled, Active: true,
		Phase: domain.PhaseSkillBuilding, CreatedAt: testNow,
	})
	led.Append("u1", domain.CurrencyMomentum, 120, "seed")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stipend/eligibility/u1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("eligibility status = %d, body %s", rec.Code, rec.Body)
	}

	// The counters the services just incremented must show up on /metrics.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	for _, name := range []string{"stride_stipend_checks_total", "stride_ledger_entries_total"} {
		if !strings.Contains(rec.Body.String(), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestIncomeSubmitAndApprove(t *testing.T) {
	f := newFixture(t)
	f.seedParticipant(t, "u1", domain.LevelExposed, 0)

	rec := f.do(t, http.MethodPost, "/api/income", map[string]any{
		"user_id": "u1",
		"claim":   map[string]any{"amount": 100000, "currency": "NGN", "source": "gig"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d, body %s", rec.Code, rec.Body)
	}
	var created domain.IncomeRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}
	if created.AmountUSD != 65 {
		t.Errorf("amount usd = %f, want 65", created.AmountUSD)
	}

	rec = f.do(t, http.MethodPost, "/api/income/"+created.ID+"/approve", map[string]any{"reviewer_id": "admin"})
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d, body %s", rec.Code, rec.Body)
	}

	// Double approval surfaces as a conflict, not a second credit.
	rec = f.do(t, http.MethodPost, "/api/income/"+created.ID+"/approve", map[string]any{"reviewer_id": "admin"})
	if rec.Code != http.StatusConflict {
		t.Errorf("second approve status = %d, want 409", rec.Code)
	}
}

func TestIncomeApprove_NotFound(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/income/ghost/approve", map[string]any{"reviewer_id": "admin"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestIncomeSubmit_UnknownCurrency(t *testing.T) {
	f := newFixture(t)
	f.seedParticipant(t, "u1", domain.LevelExposed, 0)

	rec := f.do(t, http.MethodPost, "/api/income", map[string]any{
		"user_id": "u1",
		"claim":   map[string]any{"amount": 10, "currency": "XYZ"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStipendEligibility(t *testing.T) {
	f := newFixture(t)
	f.seedParticipant(t, "u1", domain.LevelSkilled, 120)

	rec := f.do(t, http.MethodGet, "/api/stipend/eligibility/u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var elig domain.StipendEligibility
	if err := json.Unmarshal(rec.Body.Bytes(), &elig); err != nil {
		t.Fatal(err)
	}
	if elig.Tier != domain.TierStandard || elig.Amount != 10_000 {
		t.Errorf("eligibility = %+v, want STANDARD 10000", elig)
	}
}

func TestSupportRequestFlow(t *testing.T) {
	f := newFixture(t)
	f.seedParticipant(t, "u1", domain.LevelSkilled, 80)
	f.db.CreateMission(&domain.Mission{ID: "m1", UserID: "u1", Status: domain.MissionInProgress})

	rec := f.do(t, http.MethodPost, "/api/support/requests/u1", map[string]any{
		"type": "DATA", "justification": "mission research",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if strings.Contains(rec.Body.String(), "amount") {
		t.Errorf("response leaks the amount field: %s", rec.Body)
	}

	// Second request inside the cooldown is a structured denial.
	rec = f.do(t, http.MethodPost, "/api/support/requests/u1", map[string]any{
		"type": "DATA", "justification": "more data",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("second request status = %d, want 403", rec.Code)
	}
	var gate domain.GateResult
	if err := json.Unmarshal(rec.Body.Bytes(), &gate); err != nil {
		t.Fatal(err)
	}
	if gate.Reason != domain.DenialCooldownActive {
		t.Errorf("denial reason = %s, want COOLDOWN_ACTIVE", gate.Reason)
	}

	rec = f.do(t, http.MethodGet, "/api/support/requests/u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "amount") {
		t.Errorf("listing leaks the amount field: %s", rec.Body)
	}
}

func TestAdmissionProcessAndProof(t *testing.T) {
	f := newFixture(t)
	if err := f.db.CreateApplicant(&domain.Applicant{
		ID: "a1", Email: "a@example.com", Status: domain.ApplicantScored,
		Decision:  domain.DecisionConditional,
		RiskFlags: []domain.RiskFlag{domain.FlagLimitedTimeCommitment},
	}); err != nil {
		t.Fatal(err)
	}

	rec := f.do(t, http.MethodPost, "/api/admission/a1/process", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("process status = %d, body %s", rec.Code, rec.Body)
	}
	var outcome domain.AdmissionOutcome
	if err := json.Unmarshal(rec.Body.Bytes(), &outcome); err != nil {
		t.Fatal(err)
	}
	if outcome.Task == nil || outcome.Task.Type != domain.TaskSchedulePlan {
		t.Fatalf("outcome = %+v, want a SCHEDULE_PLAN task", outcome)
	}

	rec = f.do(t, http.MethodPost, "/api/admission/a1/tasks/"+outcome.Task.ID+"/proof",
		map[string]any{"proof_url": "https://proof"})
	if rec.Code != http.StatusOK {
		t.Fatalf("proof status = %d, body %s", rec.Code, rec.Body)
	}

	// A repeat submission conflicts.
	rec = f.do(t, http.MethodPost, "/api/admission/a1/tasks/"+outcome.Task.ID+"/proof",
		map[string]any{"proof_url": "https://proof2"})
	if rec.Code != http.StatusConflict {
		t.Errorf("repeat proof status = %d, want 409", rec.Code)
	}
}

func TestAdmissionProcess_NoDecisionConflict(t *testing.T) {
	f := newFixture(t)
	f.db.CreateApplicant(&domain.Applicant{ID: "a1", Email: "a@example.com", Status: domain.ApplicantScored})

	rec := f.do(t, http.MethodPost, "/api/admission/a1/process", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}
