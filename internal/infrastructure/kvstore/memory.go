package kvstore

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps values in process memory
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	writes keyLocks
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	unlock := s.writes.lock(key)
	defer unlock()
	s.put(key, value)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	unlock := s.writes.lock(key)
	defer unlock()
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	unlock := s.writes.lock(key)
	defer unlock()

	current, err := s.Get(ctx, key)
	if err != nil && err != ErrNotFound {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	s.put(key, next)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) put(key string, value []byte) {
	s.mu.Lock()
	s.data[key] = slices.Clone(value)
	s.mu.Unlock()
}

var _ Store = (*MemoryStore)(nil)
