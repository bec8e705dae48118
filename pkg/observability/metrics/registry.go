// Package metrics provides Prometheus metrics for the storage service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry manages Prometheus metrics registration and exposure.
// Each Registry owns its collectors, so several can coexist in one process.
type Registry struct {
	registry *prometheus.Registry

	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestsInFlight prometheus.Gauge

	storeOperationsTotal   *prometheus.CounterVec
	storeOperationDuration *prometheus.HistogramVec
}

// NewRegistry creates a new metrics registry with HTTP, data store and
// Go runtime collectors registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being processed",
			},
		),
		storeOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remotestore_operations_total",
				Help: "Total number of data store operations by result (ok, miss, error)",
			},
			[]string{"backend", "operation", "result"},
		),
		storeOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "remotestore_operation_duration_seconds",
				Help:    "Data store operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend", "operation"},
		),
	}

	r.registry.MustRegister(
		r.httpRequestDuration,
		r.httpRequestsTotal,
		r.httpRequestsInFlight,
		r.storeOperationsTotal,
		r.storeOperationDuration,
	)

	// Go runtime metrics (goroutines, memory, GC)
	r.registry.MustRegister(collectors.NewGoCollector())
	r.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return r
}

// Register registers a custom Prometheus collector.
func (r *Registry) Register(collector prometheus.Collector) error {
	return r.registry.Register(collector)
}

// MustRegister registers a custom Prometheus collector and panics on error.
func (r *Registry) MustRegister(collectors ...prometheus.Collector) {
	r.registry.MustRegister(collectors...)
}

// Handler returns an HTTP handler that exposes metrics in Prometheus format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Gatherer returns the underlying prometheus.Gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
