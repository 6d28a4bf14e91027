package memstore

import (
	"context"
	"sync"

	"payments-service/internal/domain/loyalty"
	"payments-service/internal/infra"
)

type versionedLedger struct {
	ledger  *loyalty.Ledger
	version int64
}

type LedgerStore struct {
	mu      sync.Mutex
	ledgers map[string]versionedLedger
}

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{ledgers: make(map[string]versionedLedger)}
}

func (s *LedgerStore) FindByUser(_ context.Context, userID string) (*loyalty.Ledger, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.ledgers[userID]
	if !ok {
		return nil, 0, infra.WrapRepoErr(infra.KindNotFound, "ledger not found", nil)
	}
	return entry.ledger.Clone(), entry.version, nil
}

func (s *LedgerStore) Create(_ context.Context, ledger *loyalty.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ledgers[ledger.UserID]; exists {
		return infra.WrapRepoErr(infra.KindConflict, "ledger already created concurrently", nil)
	}
	s.ledgers[ledger.UserID] = versionedLedger{ledger: ledger.Clone(), version: 1}
	return nil
}

func (s *LedgerStore) Update(_ context.Context, ledger *loyalty.Ledger, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.ledgers[ledger.UserID]
	if !ok || entry.version != version {
		return infra.WrapRepoErr(infra.KindConflict, "ledger modified concurrently", nil)
	}
	s.ledgers[ledger.UserID] = versionedLedger{ledger: ledger.Clone(), version: version + 1}
	return nil
}
