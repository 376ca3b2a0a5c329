// Package memory provides an in-process idempotency store used in tests
// and local development.
package memory

import (
	"context"
	"sync"

	"github.com/gestorhq/gestor/internal/orders/ports"
)

// Store retains responses keyed by Idempotency-Key so duplicate create
// requests replay the original outcome.
type Store struct {
	mu    sync.RWMutex
	items map[string]ports.StoredResponse
}

func NewStore() *Store {
	return &Store{items: make(map[string]ports.StoredResponse)}
}

func (s *Store) Get(_ context.Context, key string) (*ports.StoredResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	stored := value
	return &stored, nil
}

// Save records the response for a key. The first write wins, matching
// the ON CONFLICT DO NOTHING behavior of the postgres store.
func (s *Store) Save(_ context.Context, key string, response ports.StoredResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; ok {
		return nil
	}
	s.items[key] = response
	return nil
}
