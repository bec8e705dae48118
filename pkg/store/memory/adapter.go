// Package memory provides a process-local DataService.
package memory

import (
	"context"
	"sync"

	"github.com/nimburion/remotestore/pkg/store"
)

// BackendName is the data store selector value for this backend.
const BackendName = "memory"

// Adapter keeps values in a map in their native form, without text encoding.
// Stored values are shared with the caller and must not be mutated after Set.
type Adapter struct {
	mu     sync.RWMutex
	items  map[string]any
	closed bool
}

// NewAdapter creates an empty in-memory store.
func NewAdapter() *Adapter {
	return &Adapter{items: make(map[string]any)}
}

// Name returns BackendName.
func (a *Adapter) Name() string { return BackendName }

// Get loads a key from memory.
func (a *Adapter) Get(_ context.Context, key string) (any, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, store.ErrUninitialized
	}
	if err := store.ValidateKey(key); err != nil {
		return nil, err
	}
	return a.items[key], nil
}

// Set stores a value under key.
func (a *Adapter) Set(_ context.Context, key string, value any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return store.ErrUninitialized
	}
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	a.items[key] = value
	return nil
}

// Delete removes a key.
func (a *Adapter) Delete(_ context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return store.ErrUninitialized
	}
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	delete(a.items, key)
	return nil
}

// Len returns the number of stored keys.
func (a *Adapter) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.items)
}

// HealthCheck fails only after Close.
func (a *Adapter) HealthCheck(context.Context) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return store.ErrUninitialized
	}
	return nil
}

// Close drops every entry; later calls fail with store.ErrUninitialized.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items = make(map[string]any)
	a.closed = true
	return nil
}

var _ store.Backend = (*Adapter)(nil)
