// Package metrics provides Prometheus collectors for vsg-sync's
// database operations and job pipeline, plus a lightweight Recorder
// interface for components that only need pass/fail/duration counters.
package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles every collector family behind one registry and HTTP
// handler. Construct one per process with New and pass its sub-fields
// (Datastore, Pipeline) to the packages that record against them.
type Metrics struct {
	registry  *prometheus.Registry
	Datastore *DatastoreMetrics
	Pipeline  *PipelineMetrics
}

// New creates a fresh registry and registers every collector family on it.
func New() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	ds, err := NewDatastoreMetrics(registry)
	if err != nil {
		return nil, err
	}
	pl, err := NewPipelineMetrics(registry)
	if err != nil {
		return nil, err
	}

	return &Metrics{registry: registry, Datastore: ds, Pipeline: pl}, nil
}

// Handler returns the http.Handler that serves this registry's metrics
// in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// global holds the process-wide Metrics instance used by callers that
// can't thread one through explicitly (e.g. package-level helpers in
// internal/datastore during early startup before dependency injection
// is wired).
var (
	global     atomic.Pointer[Metrics]
	globalOnce sync.Once
)

// Init installs m as the process-wide metrics instance. Safe to call
// once; later calls are no-ops.
func Init(m *Metrics) {
	globalOnce.Do(func() {
		global.Store(m)
	})
}

// Global returns the process-wide Metrics instance, or nil if Init was
// never called.
func Global() *Metrics {
	return global.Load()
}
