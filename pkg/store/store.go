// Package store defines the key-value contract shared by every storage backend.
//
// Callers depend on DataService only and stay agnostic to which backend is
// active. Backends are constructed by pkg/store/factory from configuration.
package store

import "context"

// DataService is the key-value contract every backend implements.
//
// Get returns (nil, nil) when the key does not exist. Set overwrites any
// existing value. Delete of a missing key is a successful no-op.
type DataService interface {
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// Adapter is the minimal lifecycle and health contract for storage adapters.
type Adapter interface {
	HealthCheck(ctx context.Context) error
	Close() error
}

// Backend is a named DataService with a lifecycle.
type Backend interface {
	DataService
	Adapter
	Name() string
}

// Initializer is implemented by backends that acquire their resource lazily.
// Initialize never returns an error across the startup boundary: failures are
// reported in the InitResult and leave the backend dormant.
type Initializer interface {
	Initialize(ctx context.Context) InitResult
}

// InitStatus is the outcome of backend initialization.
type InitStatus int

const (
	// InitSkipped means configuration did not select the backend.
	InitSkipped InitStatus = iota
	// InitReady means the resource is open and the schema exists.
	InitReady
	// InitFailed means setup failed and the backend stays dormant.
	InitFailed
)

func (s InitStatus) String() string {
	switch s {
	case InitSkipped:
		return "skipped"
	case InitReady:
		return "ready"
	case InitFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// InitResult reports what Initialize did.
type InitResult struct {
	Backend string
	Status  InitStatus
	// Path is the resolved resource location, when the backend has one.
	Path string
	Err  error
}

// Ready reports whether initialization left the backend usable.
func (r InitResult) Ready() bool {
	return r.Status == InitReady
}
