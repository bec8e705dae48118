package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nimburion/remotestore/pkg/store"
	"github.com/nimburion/remotestore/pkg/store/memory"
)

func TestRegistry_Handler(t *testing.T) {
	registry := NewRegistry()
	registry.RecordHTTPMetrics("GET", "/v1/kv/:key", 200, 10*time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	registry.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"http_requests_total", "go_goroutines"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}

func TestRegistry_Isolation(t *testing.T) {
	a, b := NewRegistry(), NewRegistry()
	a.RecordHTTPMetrics("GET", "/x", 200, time.Millisecond)

	if got := testutil.ToFloat64(a.httpRequestsTotal.WithLabelValues("GET", "/x", "200")); got != 1 {
		t.Fatalf("registry a count = %v", got)
	}
	if got := testutil.ToFloat64(b.httpRequestsTotal.WithLabelValues("GET", "/x", "200")); got != 0 {
		t.Fatalf("registry b count = %v", got)
	}
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "custom_total", Help: "custom"})
	if err := registry.Register(counter); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := registry.Register(counter); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestInFlight(t *testing.T) {
	registry := NewRegistry()
	registry.IncrementInFlight()
	registry.IncrementInFlight()
	registry.DecrementInFlight()
	if got := testutil.ToFloat64(registry.httpRequestsInFlight); got != 1 {
		t.Fatalf("in flight = %v, want 1", got)
	}
}

type failingBackend struct {
	*memory.Adapter
}

func (failingBackend) Set(context.Context, string, any) error {
	return errors.New("disk full")
}

func TestInstrumentService(t *testing.T) {
	registry := NewRegistry()
	svc := InstrumentService(memory.NewAdapter(), registry)
	ctx := context.Background()

	_, _ = svc.Get(ctx, "missing")
	_ = svc.Set(ctx, "a", 1)
	_, _ = svc.Get(ctx, "a")
	_ = svc.Delete(ctx, "a")
	_, _ = svc.Get(ctx, "")

	counts := map[[2]string]float64{
		{"get", ResultMiss}:  1,
		{"get", ResultOK}:    1,
		{"get", ResultError}: 1,
		{"set", ResultOK}:    1,
		{"delete", ResultOK}: 1,
		{"set", ResultError}: 0,
	}
	for labels, want := range counts {
		got := testutil.ToFloat64(registry.storeOperationsTotal.WithLabelValues("memory", labels[0], labels[1]))
		if got != want {
			t.Errorf("operations_total{%s,%s} = %v, want %v", labels[0], labels[1], got, want)
		}
	}
	if n := testutil.CollectAndCount(registry.storeOperationDuration); n != 3 {
		t.Errorf("duration series = %d, want 3", n)
	}
	if svc.Name() != "memory" {
		t.Errorf("Name() = %q", svc.Name())
	}
}

func TestInstrumentService_Errors(t *testing.T) {
	registry := NewRegistry()
	svc := InstrumentService(failingBackend{memory.NewAdapter()}, registry)

	if err := svc.Set(context.Background(), "a", 1); err == nil {
		t.Fatal("expected error")
	}
	got := testutil.ToFloat64(registry.storeOperationsTotal.WithLabelValues("memory", "set", ResultError))
	if got != 1 {
		t.Fatalf("set errors = %v, want 1", got)
	}
}

func TestInstrumentService_NilRegistry(t *testing.T) {
	backend := memory.NewAdapter()
	if got := InstrumentService(backend, nil); got != store.Backend(backend) {
		t.Fatal("nil registry should return the backend unchanged")
	}
}
