package metrics

import (
	"context"
	"time"

	"github.com/nimburion/remotestore/pkg/store"
)

// Operation results recorded on remotestore_operations_total.
const (
	ResultOK    = "ok"
	ResultMiss  = "miss"
	ResultError = "error"
)

// InstrumentService wraps backend so every operation is counted and timed.
// A nil registry returns backend unchanged.
func InstrumentService(backend store.Backend, reg *Registry) store.Backend {
	if reg == nil {
		return backend
	}
	return &instrumentedBackend{Backend: backend, reg: reg}
}

type instrumentedBackend struct {
	store.Backend
	reg *Registry
}

func (b *instrumentedBackend) observe(operation, result string, start time.Time) {
	name := b.Backend.Name()
	b.reg.storeOperationsTotal.WithLabelValues(name, operation, result).Inc()
	b.reg.storeOperationDuration.WithLabelValues(name, operation).Observe(time.Since(start).Seconds())
}

func (b *instrumentedBackend) Get(ctx context.Context, key string) (any, error) {
	start := time.Now()
	value, err := b.Backend.Get(ctx, key)
	switch {
	case err != nil:
		b.observe("get", ResultError, start)
	case value == nil:
		b.observe("get", ResultMiss, start)
	default:
		b.observe("get", ResultOK, start)
	}
	return value, err
}

func (b *instrumentedBackend) Set(ctx context.Context, key string, value any) error {
	start := time.Now()
	err := b.Backend.Set(ctx, key, value)
	b.observe("set", resultOf(err), start)
	return err
}

func (b *instrumentedBackend) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := b.Backend.Delete(ctx, key)
	b.observe("delete", resultOf(err), start)
	return err
}

func resultOf(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
