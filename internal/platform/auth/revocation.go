package auth

import (
	"context"
	"sync"
	"time"
)

// RevocationStore holds revoked credential strings.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// MemoryRevocationStore keeps revoked tokens in process memory. Entries are
// never removed, so revocations are lost on restart and the set grows until
// then.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time // token -> natural expiry
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{entries: make(map[string]time.Time)}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[token]; !ok {
		s.entries[token] = expiresAt
	}
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[token]
	return ok, nil
}

// Count returns the number of revoked tokens.
func (s *MemoryRevocationStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
