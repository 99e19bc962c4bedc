// Package ledger is the single owner of behavioral currency facts.
// Balances derive from the append-only entry log; no component caches
// or mutates them. Credits go through Append, except where a store
// transaction must commit an entry together with another status change.
package ledger

import (
	"time"

	"github.com/stride-works/stride/internal/domain"
	"github.com/stride-works/stride/internal/infra/observability"
)

// Service exposes the append/balance/recent contract over the store.
type Service struct {
	store   domain.Store
	metrics *observability.Metrics

	// Injectable clock for testing.
	now func() time.Time
}

// New creates the ledger service.
func New(store domain.Store, metrics *observability.Metrics) *Service {
	return &Service{store: store, metrics: metrics, now: time.Now}
}

// SetClock overrides the service clock (tests only).
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Append records one signed ledger entry and returns its id.
// Corrections are made by appending an offsetting entry, never by
// amending a prior one.
func (s *Service) Append(userID string, t domain.CurrencyType, amount int64, reason string) (int64, error) {
	if !t.Valid() {
		return 0, domain.ErrUnknownCurrencyType
	}
	if amount == 0 {
		return 0, domain.ErrZeroAmount
	}
	entry := &domain.LedgerEntry{
		UserID:    userID,
		Type:      t,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: s.now().UTC(),
	}
	id, err := s.store.AppendLedgerEntry(entry)
	if err != nil {
		return 0, err
	}
	s.metrics.LedgerAppend(string(t), amount)
	return id, nil
}

// Balance returns the sum of all signed amounts for the (user, type) pair.
func (s *Service) Balance(userID string, t domain.CurrencyType) (int64, error) {
	if !t.Valid() {
		return 0, domain.ErrUnknownCurrencyType
	}
	return s.store.LedgerBalance(userID, t)
}

// Recent returns the user's latest entries, most recent first. An empty
// type matches all currencies.
func (s *Service) Recent(userID string, t domain.CurrencyType, limit int) ([]domain.LedgerEntry, error) {
	if t != "" && !t.Valid() {
		return nil, domain.ErrUnknownCurrencyType
	}
	return s.store.RecentLedgerEntries(userID, t, limit)
}
