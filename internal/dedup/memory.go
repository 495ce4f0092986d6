package dedup

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the ledger for the life of the process. It never evicts.
type MemoryStore struct {
	mu  sync.RWMutex
	ids map[uint64]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[uint64]time.Time)}
}

func (s *MemoryStore) Has(_ context.Context, orderID uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[orderID]
	return ok, nil
}

func (s *MemoryStore) Mark(_ context.Context, orderID uint64, printedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[orderID]; !ok {
		s.ids[orderID] = printedAt
	}
	return nil
}

func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids), nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
