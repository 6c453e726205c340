// Package store holds the set of payment transactions that are still waiting
// for a definitive outcome. It is the only shared mutable state in the
// service: whichever caller wins RemoveIfPresent for a bill number owns that
// transaction's outcome, everyone else backs off.
package store

import (
	"errors"
	"sync"

	"github.com/example/bakongbot/internal/models"
)

// ErrDuplicateID is returned when a bill number is inserted twice. Bill
// numbers are generated fresh per request, so hitting this means the
// generator is broken, not the caller.
var ErrDuplicateID = errors.New("transaction id already tracked")

// Store is a mutex-guarded in-memory map of pending transactions. The lock is
// only ever held for map operations, never across a network call.
type Store struct {
	mu      sync.Mutex
	pending map[string]models.TransactionRecord
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		pending: make(map[string]models.TransactionRecord),
	}
}

// Insert starts tracking a new pending transaction.
func (s *Store) Insert(rec models.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pending[rec.BillNumber]; exists {
		return ErrDuplicateID
	}
	s.pending[rec.BillNumber] = rec
	return nil
}

// Get returns the record for a bill number without removing it.
func (s *Store) Get(billNumber string) (models.TransactionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.pending[billNumber]
	return rec, ok
}

// Snapshot copies the current pending set so callers can iterate and make
// slow external calls without holding the lock.
func (s *Store) Snapshot() map[string]models.TransactionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[string]models.TransactionRecord, len(s.pending))
	for id, rec := range s.pending {
		snapshot[id] = rec
	}
	return snapshot
}

// RemoveIfPresent atomically removes and returns the record if it is still
// tracked. Exactly one of any number of concurrent callers for the same bill
// number sees ok=true; that caller performs the outcome side effects.
func (s *Store) RemoveIfPresent(billNumber string) (models.TransactionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.pending[billNumber]
	if !ok {
		return models.TransactionRecord{}, false
	}
	delete(s.pending, billNumber)
	return rec, true
}

// Len reports how many transactions are currently pending.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pending)
}
