package metrics

import "github.com/prometheus/client_golang/prometheus"

// PipelineMetrics records outcomes of a sync job's analysis and mux
// stages: chunk correlation accept/reject rates, correlation duration,
// and mux invocation results.
type PipelineMetrics struct {
	chunksTotal         *prometheus.CounterVec
	correlationDuration *prometheus.HistogramVec
	delaySelection      *prometheus.CounterVec
	muxInvocations      *prometheus.CounterVec
	jobsTotal           *prometheus.CounterVec
}

// NewPipelineMetrics registers the pipeline collector family on registry.
func NewPipelineMetrics(registry prometheus.Registerer) (*PipelineMetrics, error) {
	m := &PipelineMetrics{
		chunksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vsgsync",
			Subsystem: "pipeline",
			Name:      "chunks_total",
			Help:      "Total number of audio chunks correlated, by source and acceptance.",
		}, []string{"source", "accepted"}),
		correlationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vsgsync",
			Subsystem: "pipeline",
			Name:      "correlation_duration_seconds",
			Help:      "Time spent cross-correlating one chunk pair.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		delaySelection: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vsgsync",
			Subsystem: "pipeline",
			Name:      "delay_selections_total",
			Help:      "Total number of final delay selections, by source, strategy, and stability.",
		}, []string{"source", "strategy", "stable"}),
		muxInvocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vsgsync",
			Subsystem: "pipeline",
			Name:      "mux_invocations_total",
			Help:      "Total number of mux-tool invocations, by status.",
		}, []string{"status"}),
		jobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vsgsync",
			Subsystem: "pipeline",
			Name:      "jobs_total",
			Help:      "Total number of jobs run to completion, by final status.",
		}, []string{"status"}),
	}

	for _, c := range []prometheus.Collector{
		m.chunksTotal, m.correlationDuration, m.delaySelection, m.muxInvocations, m.jobsTotal,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordChunkResult records whether one correlated chunk was accepted
// into the delay-selection pool for source.
func (m *PipelineMetrics) RecordChunkResult(source string, accepted bool) {
	m.chunksTotal.WithLabelValues(source, boolLabel(accepted)).Inc()
}

// RecordCorrelationDuration records how long one chunk's cross-correlation took.
func (m *PipelineMetrics) RecordCorrelationDuration(source string, seconds float64) {
	m.correlationDuration.WithLabelValues(source).Observe(seconds)
}

// RecordDelaySelection records the strategy used to pick source's final
// offset and whether the chunk population it was drawn from was stable.
func (m *PipelineMetrics) RecordDelaySelection(source, strategy string, stable bool) {
	m.delaySelection.WithLabelValues(source, strategy, boolLabel(stable)).Inc()
}

// RecordMuxInvocation records the outcome of one mux-tool invocation.
func (m *PipelineMetrics) RecordMuxInvocation(status string) {
	m.muxInvocations.WithLabelValues(status).Inc()
}

// RecordJobOutcome records a job's final status.
func (m *PipelineMetrics) RecordJobOutcome(status string) {
	m.jobsTotal.WithLabelValues(status).Inc()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
