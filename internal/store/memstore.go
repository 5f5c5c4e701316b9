package store

import (
	"context"
	"sync"

	"github.com/dusk-indust/userdesk/internal/user"
)

// Compile-time check that MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore is a concurrency-safe slice-backed Store.
type MemStore struct {
	mu      sync.RWMutex
	records []user.Record
	maxID   int // largest id ever held, survives removals
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{records: make([]user.Record, 0)}
}

// Close is a no-op.
func (s *MemStore) Close() error { return nil }

// Initialize replaces the collection with a copy of records.
func (s *MemStore) Initialize(_ context.Context, records []user.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make([]user.Record, len(records))
	copy(s.records, records)
	for _, r := range records {
		s.observeID(r.ID)
	}
	return nil
}

// Add appends r.
func (s *MemStore) Add(_ context.Context, r user.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, r)
	s.observeID(r.ID)
	return nil
}

// Replace overwrites the first record with r.ID in place.
func (s *MemStore) Replace(_ context.Context, r user.Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == r.ID {
			s.records[i] = r
			return true, nil
		}
	}
	return false, nil
}

// Remove drops every record with the given id.
func (s *MemStore) Remove(_ context.Context, id int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]user.Record, 0, len(s.records))
	for _, r := range s.records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	removed := len(s.records) - len(kept)
	s.records = kept
	return removed, nil
}

// Filtered returns the matching records in order.
func (s *MemStore) Filtered(_ context.Context, term string) ([]user.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return user.Filter(s.records, term), nil
}

// Get returns a copy of the first record with the given id.
func (s *MemStore) Get(_ context.Context, id int) (user.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.ID == id {
			return r, nil
		}
	}
	return user.Record{}, ErrNotFound
}

// NextID returns maxID+1.
func (s *MemStore) NextID(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.maxID + 1, nil
}

// Len returns the number of records.
func (s *MemStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records), nil
}

// observeID must be called with mu held.
func (s *MemStore) observeID(id int) {
	if id > s.maxID {
		s.maxID = id
	}
}
