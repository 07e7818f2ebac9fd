// Package kvstore is the key-value persistence behind the CRM mock API.
// Every key holds one opaque value (a JSON array of entities); writers use
// Update for read-modify-write so concurrent requests never lose updates.
package kvstore

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Get when the key has never been written
var ErrNotFound = errors.New("kvstore: key not found")

// UpdateFunc receives the current value (nil when the key is missing) and
// returns the value to store. Returning an error aborts the update.
type UpdateFunc func(current []byte) ([]byte, error)

// Store is a key-value store with atomic read-modify-write
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Close() error
}

// keyLocks hands out one mutex per key
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyLocks) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
