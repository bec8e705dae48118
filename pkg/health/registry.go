// Package health aggregates liveness checks for the storage service.
package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult represents the result of a health check
type CheckResult struct {
	Name      string         `json:"name"`
	Status    Status         `json:"status"`
	Message   string         `json:"message,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Duration  time.Duration  `json:"duration"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Checker is the interface that health check implementations must satisfy
type Checker interface {
	Check(ctx context.Context) CheckResult
	Name() string
}

// AggregatedResult is the combined outcome of every registered check.
type AggregatedResult struct {
	Status    Status        `json:"status"`
	Checks    []CheckResult `json:"checks"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}

// IsHealthy returns true if the overall status is healthy
func (r AggregatedResult) IsHealthy() bool {
	return r.Status == StatusHealthy
}

// Registry manages a collection of health checks
type Registry struct {
	mu       sync.RWMutex
	checkers map[string]Checker
}

// NewRegistry creates a new health check registry
func NewRegistry() *Registry {
	return &Registry{checkers: make(map[string]Checker)}
}

// Register adds checker, replacing any checker with the same name.
func (r *Registry) Register(checker Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[checker.Name()] = checker
}

// Check runs all checks concurrently. One unhealthy check makes the
// aggregate unhealthy; results are ordered by name.
func (r *Registry) Check(ctx context.Context) AggregatedResult {
	r.mu.RLock()
	checkers := make([]Checker, 0, len(r.checkers))
	for _, checker := range r.checkers {
		checkers = append(checkers, checker)
	}
	r.mu.RUnlock()

	start := time.Now()
	results := make([]CheckResult, len(checkers))
	var wg sync.WaitGroup
	for i, checker := range checkers {
		wg.Add(1)
		go func(i int, c Checker) {
			defer wg.Done()
			results[i] = c.Check(ctx)
		}(i, checker)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	overall := StatusHealthy
	for _, result := range results {
		if result.Status != StatusHealthy {
			overall = StatusUnhealthy
		}
	}

	return AggregatedResult{
		Status:    overall,
		Checks:    results,
		Timestamp: time.Now(),
		Duration:  time.Since(start),
	}
}

// List returns the sorted names of all registered health checks
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.checkers))
	for name := range r.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
