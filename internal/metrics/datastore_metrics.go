package metrics

import "github.com/prometheus/client_golang/prometheus"

// DatastoreMetrics implements datastore.Metrics (structurally — this
// package cannot import internal/datastore without a cycle, since
// datastore's GormLogger is what calls these methods).
type DatastoreMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	operationErrors   *prometheus.CounterVec
	queryResultSize   *prometheus.HistogramVec
}

// NewDatastoreMetrics registers the datastore collector family on registry.
func NewDatastoreMetrics(registry prometheus.Registerer) (*DatastoreMetrics, error) {
	m := &DatastoreMetrics{
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vsgsync",
			Subsystem: "datastore",
			Name:      "operations_total",
			Help:      "Total number of database operations by operation, table, and status.",
		}, []string{"operation", "table", "status"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vsgsync",
			Subsystem: "datastore",
			Name:      "operation_duration_seconds",
			Help:      "Database operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "table"}),
		operationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vsgsync",
			Subsystem: "datastore",
			Name:      "operation_errors_total",
			Help:      "Total number of database operation errors by operation, table, and reason.",
		}, []string{"operation", "table", "reason"}),
		queryResultSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vsgsync",
			Subsystem: "datastore",
			Name:      "query_result_rows",
			Help:      "Number of rows returned or affected by a query.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 500},
		}, []string{"operation", "table"}),
	}

	for _, c := range []prometheus.Collector{
		m.operationsTotal, m.operationDuration, m.operationErrors, m.queryResultSize,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordDbOperation records the outcome of a database operation.
func (m *DatastoreMetrics) RecordDbOperation(operation, table, status string) {
	m.operationsTotal.WithLabelValues(operation, table, status).Inc()
}

// RecordDbOperationDuration records how long a database operation took.
func (m *DatastoreMetrics) RecordDbOperationDuration(operation, table string, seconds float64) {
	m.operationDuration.WithLabelValues(operation, table).Observe(seconds)
}

// RecordDbOperationError records a database operation failure by reason.
func (m *DatastoreMetrics) RecordDbOperationError(operation, table, reason string) {
	m.operationErrors.WithLabelValues(operation, table, reason).Inc()
}

// RecordQueryResultSize records how many rows a query touched.
func (m *DatastoreMetrics) RecordQueryResultSize(operation, table string, rows int) {
	m.queryResultSize.WithLabelValues(operation, table).Observe(float64(rows))
}
