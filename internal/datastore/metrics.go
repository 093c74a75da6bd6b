package datastore

// Metrics receives per-query observability data from the GORM logger.
// internal/metrics provides the concrete Prometheus-backed implementation;
// datastore only depends on this narrow interface so it never needs to
// import the metrics registry itself.
type Metrics interface {
	RecordDbOperation(operation, table, status string)
	RecordDbOperationDuration(operation, table string, seconds float64)
	RecordDbOperationError(operation, table, reason string)
	RecordQueryResultSize(operation, table string, rows int)
}
