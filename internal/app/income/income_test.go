package income

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/stride-works/stride/internal/app/identity"
	"github.com/stride-works/stride/internal/app/ledger"
	"github.com/stride-works/stride/internal/domain"
	"github.com/stride-works/stride/internal/infra/sqlite"
)

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
	ident := identity.New(db, led, identity.DefaultConfig(), nil, zerolog.Nop())
	svc := New(db, ident, DefaultConfig(), nil, zerolog.Nop())
	return &fixture{svc: svc, db: db, led: led}
}

func (f *fixture) seedParticipant(t *testing.T, id string, level domain.IdentityLevel) {
	t.Helper()
	err := f.db.CreateParticipant(&domain.Participant{
		ID: id, Level: level, Active: true,
		Phase: domain.PhaseIncomeGeneration, CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed participant: %v", err)
	}
}

// ─── Submit ─────────────────────────────────────────────────────────────────

func TestSubmit_ConvertsAtFixedRate(t *testing.T) {
	f := newFixture(t)
	f.seedParticipant(t, "u1", domain.LevelExposed)

	rec, err := f.svc.Submit("u1", domain.IncomeClaim{
		Amount:   100_000,
		Currency: "ngn", // normalized to upper case
		Source:   "freelance gig",
		ProofURL: "https://example.com/receipt",
	})
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if rec.Currency != "NGN" {
		t.Errorf("currency = %q, want NGN", rec.Currency)
	}
	if rec.AmountUSD != 65 {
		t.Errorf("amount usd = %f, want 65 (100000 × 0.00065)", rec.AmountUSD)
	}
	if rec.Status != domain.IncomeSubmitted {
		t.Errorf("status = %s, want SUBMITTED", rec.Status)
	}

	// Submission alone never touches the ledger.
	balance, _ := f.led.Balance("u1", domain.CurrencyIncomeProof)
	if balance != 0 {
		t.Errorf("income proof balance after submit = %d, want 0", balance)
	}
}

func TestSubmit_UnknownCurrency(t *testing.T) {
	f := newFixture(t)
	f.seedParticipant(t, "u1", domain.LevelExposed)

	if _, err := f.svc.Submit("u1", domain.IncomeClaim{Amount: 10, Currency: "XYZ"}); err != domain.ErrUnknownCurrency {
		t.Errorf("Submit(XYZ) error = %v, want ErrUnknownCurrency", err)
	}
}

func TestSubmit_MissingParticipant(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Submit("ghost", domain.IncomeClaim{Amount: 10, Currency: "USD"}); err != domain.ErrParticipantNotFound {
		t.Errorf("error = %v, want ErrParticipantNotFound", err)
	}
}

// ─── Approve ────────────────────────────────────────────────────────────────

func TestApprove_CreditsLedgerAndPromotes(t *testing.T) {
	f := newFixture(t)
	f.seedParticipant(t, "u1", domain.LevelExposed)

	rec, err := f.svc.Submit("u1", domain.IncomeClaim{Amount: 100_000, Currency: "NGN"})
	if err != nil {
		t.Fatal(err)
	}

	ok, total, err := f.svc.Approve(rec.ID, "admin")
	if err != nil {
		t.Fatalf("Approve() error: %v", err)
	}
	if !ok {
		t.Fatal("approval of a submitted record should succeed")
	}
	if total != 65 {
		t.Errorf("lifetime verified = %f, want 65", total)
	}

	// floor(65 × 100) = 6500 units credited.
	balance, _ := f.led.Balance("u1", domain.CurrencyIncomeProof)
	if balance != 6500 {
		t.Errorf("income proof balance = %d, want 6500", balance)
	}

	// 6500 ≥ 100 units: L3 → L4.
	p, _ := f.db.GetParticipant("u1")
	if p.Level != domain.LevelEarner {
		t.Errorf("level after approval = %s, want L4_EARNER", p.Level)
	}
}

func TestApprove_SecondApprovalIsNoOp(t *testing.T) {
	f := newFixture(t)
	f.seedParticipant(t, "u1", domain.LevelExposed)
	rec, _ := f.svc.Submit("u1", domain.IncomeClaim{Amount: 50, Currency: "USD"})

	if ok, _, _ := f.svc.Approve(rec.ID, "admin"); !ok {
		t.Fatal("first approval should succeed")
	}
	ok, _, err := f.svc.Approve(rec.ID, "admin2")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("second approval should be a no-op")
	}

	// The credit happened exactly once.
	balance, _ := f.led.Balance("u1", domain.CurrencyIncomeProof)
	if balance != 5000 {
		t.Errorf("balance = %d, want 5000 from a single credit", balance)
	}
}

func TestApprove_MissingRecord(t *testing.T) {
	f := newFixture(t)
	if _, _, err := f.svc.Approve("ghost", "admin"); err != domain.ErrIncomeRecordNotFound {
		t.Errorf("error = %v, want ErrIncomeRecordNotFound", err)
	}
}

func TestApprove_TinyAmountStillTerminal(t *testing.T) {
	f := newFixture(t)
	f.seedParticipant(t, "u1", domain.LevelExposed)
	// 1 NGN is $0.00065; floor(0.065 units) credits nothing.
	rec, _ := f.svc.Submit("u1", domain.IncomeClaim{Amount: 1, Currency: "NGN"})

	ok, _, err := f.svc.Approve(rec.ID, "admin")
	if err != nil {
		t.Fatalf("Approve() error: %v", err)
	}
	if !ok {
		t.Fatal("approval should still succeed")
	}
	balance, _ := f.led.Balance("u1", domain.CurrencyIncomeProof)
	if balance != 0 {
		t.Errorf("balance = %d, want 0 for a sub-unit credit", balance)
	}
	got, _ := f.db.GetIncomeRecord(rec.ID)
	if got.Status != domain.IncomeVerified {
		t.Errorf("status = %s, want VERIFIED", got.Status)
	}
}

// ─── Reject ─────────────────────────────────────────────────────────────────

func TestReject_NoLedgerEffect(t *testing.T) {
	f := newFixture(t)
	f.seedParticipant(t, "u1", domain.LevelExposed)
	rec, _ := f.svc.Submit("u1", domain.IncomeClaim{Amount: 500, Currency: "USD"})

	ok, err := f.svc.Reject(rec.ID, "admin", "proof unreadable")
	if err != nil || !ok {
		t.Fatalf("Reject() = (%v, %v), want (true, nil)", ok, err)
	}

	balance, _ := f.led.Balance("u1", domain.CurrencyIncomeProof)
	if balance != 0 {
		t.Errorf("rejection credited the ledger: balance = %d", balance)
	}

	// A rejected record cannot later be approved.
	ok, _, err = f.svc.Approve(rec.ID, "admin")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("approving a rejected record should be a no-op")
	}
}

func TestStats_Aggregates(t *testing.T) {
	f := newFixture(t)
	f.seedParticipant(t, "u1", domain.LevelExposed)
	r1, _ := f.svc.Submit("u1", domain.IncomeClaim{Amount: 100, Currency: "USD"})
	f.svc.Submit("u1", domain.IncomeClaim{Amount: 100_000, Currency: "NGN"})
	f.svc.Approve(r1.ID, "admin")

	stats, err := f.svc.Stats("u1")
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if stats.VerifiedCount != 1 || stats.SubmittedCount != 1 {
		t.Errorf("counts = %d verified / %d submitted, want 1/1", stats.VerifiedCount, stats.SubmittedCount)
	}
	if stats.VerifiedUSD != 100 {
		t.Errorf("verified usd = %f, want 100", stats.VerifiedUSD)
	}
}
