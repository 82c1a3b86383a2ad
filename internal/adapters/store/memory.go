// Package store provides contact message store adapters.
// Clean Architecture: Adapter implementing ports.ContactStore.
package store

import (
	"context"
	"sync"

	"github.com/hansgunawan/portfolio/internal/domain/entities"
)

// InMemoryStore keeps contact messages for the life of the process.
type InMemoryStore struct {
	mu       sync.RWMutex
	messages map[string]entities.ContactMessage // id -> message
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		messages: make(map[string]entities.ContactMessage),
	}
}

// Create saves a message under its id, replacing any previous one.
func (s *InMemoryStore) Create(ctx context.Context, msg entities.ContactMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[msg.ID] = msg
	return nil
}

// Get looks a message up by id.
func (s *InMemoryStore) Get(ctx context.Context, id string) (entities.ContactMessage, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.messages[id]
	return msg, ok, nil
}

// Count returns the number of stored messages.
func (s *InMemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages), nil
}

// Close is a no-op.
func (s *InMemoryStore) Close() error {
	return nil
}
