// Package observability holds the Prometheus collectors for the ledger and
// eligibility engine. Services call the typed helpers on Metrics; a nil
// *Metrics no-ops everywhere so tests can skip wiring.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles every collector the services emit.
type Metrics struct {
	ledgerEntries      *prometheus.CounterVec
	promotions         prometheus.Counter
	stipendChecks      *prometheus.CounterVec
	supportDenials     *prometheus.CounterVec
	admissionDecisions *prometheus.CounterVec
	sweepRuns          *prometheus.CounterVec
	sweepDuration      *prometheus.HistogramVec
	incomeReviews      *prometheus.CounterVec
}

// New registers all collectors against reg. Pass a fresh registry in tests
// to avoid duplicate-registration panics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ledgerEntries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stride_ledger_entries_total",
			Help: "Ledger entries appended, by currency type and sign.",
		}, []string{"type", "sign"}),
		promotions: factory.NewCounter(prometheus.CounterOpts{
			Name: "stride_identity_promotions_total",
			Help: "Identity level promotions applied.",
		}),
		stipendChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stride_stipend_checks_total",
			Help: "Stipend eligibility checks, by resulting tier.",
		}, []string{"tier"}),
		supportDenials: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stride_support_denials_total",
			Help: "Support gate denials, by reason code.",
		}, []string{"reason"}),
		admissionDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stride_admission_decisions_total",
			Help: "Admission decisions dispatched, by outcome.",
		}, []string{"decision"}),
		sweepRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stride_sweep_runs_total",
			Help: "Scheduled sweep executions, by sweep name.",
		}, []string{"sweep"}),
		sweepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stride_sweep_duration_seconds",
			Help:    "Scheduled sweep wall time.",
			Buckets: prometheus.DefBuckets,
		}, []string{"sweep"}),
		incomeReviews: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stride_income_reviews_total",
			Help: "Income record reviews, by outcome.",
		}, []string{"outcome"}),
	}
}

// LedgerAppend records one appended entry.
func (m *Metrics) LedgerAppend(currencyType string, amount int64) {
	if m == nil {
		return
	}
	sign := "credit"
	if amount < 0 {
		sign = "debit"
	}
	m.ledgerEntries.WithLabelValues(currencyType, sign).Inc()
}

// Promotion records one identity level promotion.
func (m *Metrics) Promotion() {
	if m == nil {
		return
	}
	m.promotions.Inc()
}

// StipendCheck records one eligibility check result.
func (m *Metrics) StipendCheck(tier string) {
	if m == nil {
		return
	}
	m.stipendChecks.WithLabelValues(tier).Inc()
}

// SupportDenial records one gate denial.
func (m *Metrics) SupportDenial(reason string) {
	if m == nil {
		return
	}
	m.supportDenials.WithLabelValues(reason).Inc()
}

// AdmissionDecision records one dispatched decision.
func (m *Metrics) AdmissionDecision(decision string) {
	if m == nil {
		return
	}
	m.admissionDecisions.WithLabelValues(decision).Inc()
}

// SweepRun records one sweep execution and its duration.
func (m *Metrics) SweepRun(sweep string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.sweepRuns.WithLabelValues(sweep).Inc()
	m.sweepDuration.WithLabelValues(sweep).Observe(elapsed.Seconds())
}

// IncomeReview records one approve/reject outcome.
func (m *Metrics) IncomeReview(outcome string) {
	if m == nil {
		return
	}
	m.incomeReviews.WithLabelValues(outcome).Inc()
}
