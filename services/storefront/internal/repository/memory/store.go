package memory

import (
	"context"
	"sync"

	apperrors "github.com/peeyushtyagi09/newShopingAI/pkg/errors"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/repository"
)

// Backend keeps every visitor namespace in process memory.
type Backend struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

// NewBackend creates an empty in-memory backend.
func NewBackend() *Backend {
	return &Backend{data: make(map[string]map[string]string)}
}

// Scope returns the namespace of visitorID.
func (b *Backend) Scope(visitorID string) repository.KeyValueStore {
	return &store{backend: b, visitor: visitorID}
}

// Ping always succeeds.
func (b *Backend) Ping(context.Context) error { return nil }

// Keys returns the number of keys held for visitorID.
func (b *Backend) Keys(visitorID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data[visitorID])
}

type store struct {
	backend *Backend
	visitor string
}

func (s *store) Get(_ context.Context, key string) (string, error) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()

	v, ok := s.backend.data[s.visitor][key]
	if !ok {
		return "", apperrors.NotFound("storage key", key)
	}
	return v, nil
}

func (s *store) Set(_ context.Context, key, value string) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	ns, ok := s.backend.data[s.visitor]
	if !ok {
		ns = make(map[string]string)
		s.backend.data[s.visitor] = ns
	}
	ns[key] = value
	return nil
}

func (s *store) Delete(_ context.Context, key string) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()

	delete(s.backend.data[s.visitor], key)
	return nil
}
