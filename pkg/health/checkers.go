package health

import (
	"context"
	"time"

	"github.com/nimburion/remotestore/pkg/store"
)

const defaultCheckTimeout = 5 * time.Second

// Checkable is an interface for components that support health checks
type Checkable interface {
	HealthCheck(ctx context.Context) error
}

// AdapterChecker reports on any component that implements Checkable.
type AdapterChecker struct {
	name     string
	adapter  Checkable
	timeout  time.Duration
	metadata map[string]any
}

// NewAdapterChecker creates a new health checker for an adapter
func NewAdapterChecker(name string, adapter Checkable, timeout time.Duration) *AdapterChecker {
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	return &AdapterChecker{
		name:    name,
		adapter: adapter,
		timeout: timeout,
	}
}

// NewStoreChecker checks a data store backend and annotates results with
// how the backend came up.
func NewStoreChecker(backend store.Backend, initResult store.InitResult, timeout time.Duration) *AdapterChecker {
	c := NewAdapterChecker("data_store", backend, timeout)
	c.metadata = map[string]any{
		"backend": backend.Name(),
		"init":    initResult.Status.String(),
	}
	if initResult.Path != "" {
		c.metadata["path"] = initResult.Path
	}
	return c
}

// Check performs the health check on the adapter
func (c *AdapterChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result := CheckResult{
		Name:     c.name,
		Status:   StatusHealthy,
		Message:  "OK",
		Metadata: c.metadata,
	}
	if err := c.adapter.HealthCheck(checkCtx); err != nil {
		result.Status = StatusUnhealthy
		result.Message = ""
		result.Error = err.Error()
	}
	result.Timestamp = time.Now()
	result.Duration = time.Since(start)
	return result
}

// Name returns the name of the health check
func (c *AdapterChecker) Name() string {
	return c.name
}
