// Package factory builds the configured key-value backend.
package factory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nimburion/remotestore/pkg/config"
	"github.com/nimburion/remotestore/pkg/observability/logger"
	"github.com/nimburion/remotestore/pkg/store"
	"github.com/nimburion/remotestore/pkg/store/memory"
	"github.com/nimburion/remotestore/pkg/store/redis"
	"github.com/nimburion/remotestore/pkg/store/sqlite"
)

// Constructor builds a backend from configuration. It must not acquire the
// backend's resource; lazy backends do that in Initialize.
type Constructor func(cfg config.DataStoreConfig, log logger.Logger) (store.Backend, error)

// Registry maps data store selector values to constructors.
type Registry struct {
	constructors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Default returns a registry with the sqlite, redis and memory backends.
func Default() *Registry {
	r := NewRegistry()
	r.Register(sqlite.BackendName, newSQLite)
	r.Register(redis.BackendName, newRedis)
	r.Register(memory.BackendName, newMemory)
	return r
}

// Register adds or replaces the constructor for name.
func (r *Registry) Register(name string, fn Constructor) {
	r.constructors[name] = fn
}

// Names returns the registered selector values in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open constructs only the selected backend and initializes it when it is lazy.
//
// A failed initialization is not an error: the dormant backend is returned
// with an InitFailed result so the caller can keep running degraded.
func (r *Registry) Open(ctx context.Context, cfg config.DataStoreConfig, log logger.Logger) (store.Backend, store.InitResult, error) {
	if log == nil {
		log = logger.NewNop()
	}

	name := cfg.Type
	if name == "" {
		return nil, store.InitResult{}, errors.New("data_store.type is required")
	}
	build, ok := r.constructors[name]
	if !ok {
		return nil, store.InitResult{}, fmt.Errorf("unsupported data_store.type %q (supported: %s)", cfg.Type, strings.Join(r.Names(), ", "))
	}

	backend, err := build(cfg, log)
	if err != nil {
		return nil, store.InitResult{}, fmt.Errorf("create %s data store: %w", name, err)
	}

	result := store.InitResult{Backend: name, Status: store.InitReady}
	if lazy, ok := backend.(store.Initializer); ok {
		result = lazy.Initialize(ctx)
	}

	switch result.Status {
	case store.InitFailed:
		log.Warn("data store unavailable, continuing degraded", "backend", name, "error", result.Err)
	case store.InitReady:
		log.Info("data store ready", "backend", name)
	}
	return backend, result, nil
}

// Open uses the Default registry.
func Open(ctx context.Context, cfg config.DataStoreConfig, log logger.Logger) (store.Backend, store.InitResult, error) {
	return Default().Open(ctx, cfg, log)
}

func newSQLite(cfg config.DataStoreConfig, log logger.Logger) (store.Backend, error) {
	return sqlite.NewAdapter(sqlite.Config{
		DataStore:   cfg.Type,
		Path:        cfg.Path,
		BusyTimeout: cfg.BusyTimeout,
	}, log), nil
}

func newRedis(cfg config.DataStoreConfig, log logger.Logger) (store.Backend, error) {
	return redis.NewAdapter(redis.Config{
		URL:              cfg.Redis.URL,
		MaxConns:         cfg.Redis.MaxConns,
		OperationTimeout: cfg.Redis.OperationTimeout,
		Prefix:           cfg.Redis.Prefix,
	}, log)
}

func newMemory(config.DataStoreConfig, logger.Logger) (store.Backend, error) {
	return memory.NewAdapter(), nil
}
