package stipend

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/stride-works/stride/internal/app/ledger"
	"github.com/stride-works/stride/internal/domain"
	"github.com/stride-works/stride/internal/infra/sqlite"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc *Service
	db  *sqlite.DB
	led *ledger.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	led := ledger.New(db, nil)
	svc := New(db, led, DefaultConfig(), nil, zerolog.Nop())
	svc.SetClock(func() time.Time { return testNow })
	return &fixture{svc: svc, db: db, led: led}
}

func (f *fixture) seed(t *testing.T, id string, level domain.IdentityLevel, momentum int64) {
	t.Helper()
	err := f.db.CreateParticipant(&domain.Participant{
		ID: id, Level: level, Active: true,
		Phase: domain.PhaseSkillBuilding, CreatedAt: testNow.Add(-30 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("seed participant: %v", err)
	}
	if momentum != 0 {
		if _, err := f.led.Append(id, domain.CurrencyMomentum, momentum, "seed"); err != nil {
			t.Fatalf("seed momentum: %v", err)
		}
	}
}

// ─── Eligibility ────────────────────────────────────────────────────────────

func TestCheckEligibility_Tiers(t *testing.T) {
	tests := []struct {
		name     string
		level    domain.IdentityLevel
		momentum int64
		wantTier domain.StipendTier
		wantAmt  int64
	}{
		{"below minimum", domain.LevelSkilled, 49, domain.TierNone, 0},
		{"base band", domain.LevelSkilled, 50, domain.TierBase, 5_000},
		{"base band upper edge", domain.LevelSkilled, 99, domain.TierBase, 5_000},
		{"standard band", domain.LevelSkilled, 120, domain.TierStandard, 10_000},
		{"standard at threshold", domain.LevelSkilled, 100, domain.TierStandard, 10_000},
		{"bonus band", domain.LevelSkilled, 200, domain.TierBonus, 15_000},
		{"bonus at earner level", domain.LevelEarner, 250, domain.TierBonus, 30_000},
		{"catalyst standard", domain.LevelCatalyst, 150, domain.TierStandard, 25_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seed(t, "u1", tt.level, tt.momentum)

			elig, err := f.svc.CheckEligibility("u1")
			if err != nil {
				t.Fatalf("CheckEligibility() error: %v", err)
			}
			if elig.Tier != tt.wantTier {
				t.Errorf("tier = %s, want %s", elig.Tier, tt.wantTier)
			}
			if elig.Amount != tt.wantAmt {
				t.Errorf("amount = %d, want %d", elig.Amount, tt.wantAmt)
			}
			if elig.Eligible != (tt.wantTier != domain.TierNone) {
				t.Errorf("eligible = %v for tier %s", elig.Eligible, elig.Tier)
			}
		})
	}
}

func TestCheckEligibility_PausedAccount(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "u1", domain.LevelSkilled, 300)
	f.db.PauseParticipant("u1", "inactivity", testNow)

	elig, err := f.svc.CheckEligibility("u1")
	if err != nil {
		t.Fatal(err)
	}
	if elig.Eligible {
		t.Error("paused account must not be eligible regardless of momentum")
	}
	if elig.Reason != "account is paused" {
		t.Errorf("reason = %q", elig.Reason)
	}
}

func TestCheckEligibility_ApplicantLevelHasNoStipend(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "u1", domain.LevelApplicant, 300)

	elig, err := f.svc.CheckEligibility("u1")
	if err != nil {
		t.Fatal(err)
	}
	if elig.Eligible || elig.Amount != 0 {
		t.Errorf("L0 got a stipend: %+v", elig)
	}
}

// ─── Daily Decay ────────────────────────────────────────────────────────────

func TestApplyDailyDecay(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "u1", domain.LevelSkilled, 120)

	n, err := f.svc.ApplyDailyDecay()
	if err != nil {
		t.Fatalf("ApplyDailyDecay() error: %v", err)
	}
	if n != 1 {
		t.Errorf("processed = %d, want 1", n)
	}

	// 5% of 120 floors to 6.
	balance, _ := f.led.Balance("u1", domain.CurrencyMomentum)
	if balance != 114 {
		t.Errorf("balance after decay = %d, want 114", balance)
	}

	// 114 is still in the standard band.
	elig, _ := f.svc.CheckEligibility("u1")
	if elig.Tier != domain.TierStandard {
		t.Errorf("tier after one decay = %s, want STANDARD", elig.Tier)
	}
}

func TestApplyDailyDecay_SmallBalancesStopDecaying(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "u1", domain.LevelSkilled, 19) // 5% floors to 0

	n, err := f.svc.ApplyDailyDecay()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("processed = %d, want 0", n)
	}
	balance, _ := f.led.Balance("u1", domain.CurrencyMomentum)
	if balance != 19 {
		t.Errorf("balance = %d, want 19 untouched", balance)
	}
}

func TestApplyDailyDecay_SkipsPausedAndNegative(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "paused", domain.LevelSkilled, 200)
	f.db.PauseParticipant("paused", "inactivity", testNow)
	f.seed(t, "broke", domain.LevelSkilled, 0)

	n, err := f.svc.ApplyDailyDecay()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("processed = %d, want 0", n)
	}
	balance, _ := f.led.Balance("paused", domain.CurrencyMomentum)
	if balance != 200 {
		t.Errorf("paused balance = %d, want 200 untouched", balance)
	}
}

func TestApplyDailyDecay_IsAppendNotMutation(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "u1", domain.LevelSkilled, 100)
	f.svc.ApplyDailyDecay()

	entries, err := f.led.Recent("u1", domain.CurrencyMomentum, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want seed + decay", len(entries))
	}
	if entries[0].Amount != -5 {
		t.Errorf("decay entry amount = %d, want -5", entries[0].Amount)
	}
	if entries[1].Amount != 100 {
		t.Errorf("original entry amount = %d, want 100 unchanged", entries[1].Amount)
	}
}

// ─── Inactivity Sweep ───────────────────────────────────────────────────────

func TestCheckInactiveUsers_BothConditionsRequired(t *testing.T) {
	f := newFixture(t)

	// No recent completion, low momentum: paused.
	f.seed(t, "idle", domain.LevelSkilled, 30)

	// No recent completion but high momentum: spared.
	f.seed(t, "rich", domain.LevelSkilled, 90)

	// Low momentum but a completion inside the window: spared.
	f.seed(t, "worker", domain.LevelSkilled, 30)
	done := testNow.Add(-2 * 24 * time.Hour)
	f.db.CreateMission(&domain.Mission{
		ID: "m1", UserID: "worker", Status: domain.MissionCompleted, CompletedAt: &done,
	})

	paused, err := f.svc.CheckInactiveUsers()
	if err != nil {
		t.Fatalf("CheckInactiveUsers() error: %v", err)
	}
	if len(paused) != 1 || paused[0] != "idle" {
		t.Errorf("paused = %v, want [idle]", paused)
	}

	p, _ := f.db.GetParticipant("idle")
	if p.Active {
		t.Error("idle participant should be paused")
	}
	if p.Level != domain.LevelSkilled {
		t.Errorf("pause demoted the level to %s", p.Level)
	}
}

func TestCheckInactiveUsers_SkipsApplicants(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "newbie", domain.LevelApplicant, 0)

	paused, err := f.svc.CheckInactiveUsers()
	if err != nil {
		t.Fatal(err)
	}
	if len(paused) != 0 {
		t.Errorf("paused = %v, L0 accounts are exempt", paused)
	}
}

func TestCheckInactiveUsers_OldCompletionDoesNotCount(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "u1", domain.LevelSkilled, 10)
	done := testNow.Add(-10 * 24 * time.Hour) // outside the 7-day window
	f.db.CreateMission(&domain.Mission{
		ID: "m1", UserID: "u1", Status: domain.MissionCompleted, CompletedAt: &done,
	})

	paused, err := f.svc.CheckInactiveUsers()
	if err != nil {
		t.Fatal(err)
	}
	if len(paused) != 1 {
		t.Errorf("paused = %v, want u1 paused", paused)
	}
}

// ─── Reactivation ───────────────────────────────────────────────────────────

func TestReactivateUser(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "u1", domain.LevelSkilled, 10)
	f.db.PauseParticipant("u1", "inactivity", testNow)

	if err := f.svc.ReactivateUser("u1"); err != nil {
		t.Fatalf("ReactivateUser() error: %v", err)
	}

	p, _ := f.db.GetParticipant("u1")
	if !p.Active {
		t.Error("participant should be active again")
	}
	balance, _ := f.led.Balance("u1", domain.CurrencyMomentum)
	if balance != 35 {
		t.Errorf("balance = %d, want 10 + 25 reactivation bonus", balance)
	}
}

func TestReactivateUser_NoOpWhenActive(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "u1", domain.LevelSkilled, 10)

	if err := f.svc.ReactivateUser("u1"); err != nil {
		t.Fatal(err)
	}
	balance, _ := f.led.Balance("u1", domain.CurrencyMomentum)
	if balance != 10 {
		t.Errorf("balance = %d, active accounts get no bonus", balance)
	}
}

func TestReactivateUser_MissingParticipant(t *testing.T) {
	f := newFixture(t)
	if err := f.svc.ReactivateUser("ghost"); err != domain.ErrParticipantNotFound {
		t.Errorf("error = %v, want ErrParticipantNotFound", err)
	}
}
