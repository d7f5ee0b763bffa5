package store

import (
	"context"
	"sync"

	"cvforge/internal/identity"
	"cvforge/internal/types"
)

// MemoryStore implements DocumentStore in process memory. Used by
// tests and by local mode, where no MongoDB is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]types.Profile
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]types.Profile)}
}

// Save stores a deep copy of the profile under the identity subject.
func (s *MemoryStore) Save(_ context.Context, id identity.Identity, p types.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[id.Subject] = p.Clone()
	return nil
}

// Load returns a deep copy of the stored profile, (nil, nil) if absent.
func (s *MemoryStore) Load(_ context.Context, id identity.Identity) (*types.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id.Subject]
	if !ok {
		return nil, nil
	}
	out := p.Clone()
	return &out, nil
}

// Ping is a no-op.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close(context.Context) error {
	return nil
}
