package memory

import (
	"context"
	"sync"

	"trellis/internal/audit"
	"trellis/pkg/domain"
)

// InMemoryStore keeps the event trail in process memory. Default for tests
// and single-node deployments without a database.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

var _ audit.Store = (*InMemoryStore)(nil)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListByAddress(_ context.Context, addr domain.Address) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, ev := range s.events {
		if ev.Address == addr || ev.Counterparty == addr || ev.Actor == addr {
			out = append(out, ev)
		}
	}
	return out, nil
}

// ListAll returns the full trail in append order.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events...), nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
