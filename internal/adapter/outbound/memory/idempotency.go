package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ariachat/server/internal/port/outbound"
)

type idempotencyEntry struct {
	data      []byte
	expiresAt time.Time
}

// IdempotencyStore is an in-process outbound.IdempotencyStorePort.
type IdempotencyStore struct {
	mu        sync.Mutex
	locks     map[string]time.Time
	responses map[string]idempotencyEntry
	now       func() time.Time
}

// NewIdempotencyStore creates an empty IdempotencyStore.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		locks:     make(map[string]time.Time),
		responses: make(map[string]idempotencyEntry),
		now:       time.Now,
	}
}

var _ outbound.IdempotencyStorePort = (*IdempotencyStore)(nil)

func (s *IdempotencyStore) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if exp, ok := s.locks[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.locks[key] = now.Add(ttl)
	return true, nil
}

func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, key)
	return nil
}

func (s *IdempotencyStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.responses[key]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.responses, key)
		return nil, nil
	}
	return e.data, nil
}

func (s *IdempotencyStore) Save(_ context.Context, key string, data []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[key] = idempotencyEntry{data: append([]byte(nil), data...), expiresAt: s.now().Add(ttl)}
	return nil
}
