package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPipelineMetrics_RecordChunkResult(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewPipelineMetrics(registry)
	require.NoError(t, err)

	m.RecordChunkResult("Source 2", true)
	m.RecordChunkResult("Source 2", true)
	m.RecordChunkResult("Source 2", false)

	require.InDelta(t, 2, testutil.ToFloat64(m.chunksTotal.WithLabelValues("Source 2", "true")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.chunksTotal.WithLabelValues("Source 2", "false")), 0)
}

func TestPipelineMetrics_RecordDelaySelection(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewPipelineMetrics(registry)
	require.NoError(t, err)

	m.RecordDelaySelection("Source 2", "mode", true)

	require.InDelta(t, 1, testutil.ToFloat64(m.delaySelection.WithLabelValues("Source 2", "mode", "true")), 0)
}

func TestPipelineMetrics_RecordMuxInvocationAndJobOutcome(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewPipelineMetrics(registry)
	require.NoError(t, err)

	m.RecordMuxInvocation("success")
	m.RecordJobOutcome("done")
	m.RecordJobOutcome("error")

	require.InDelta(t, 1, testutil.ToFloat64(m.muxInvocations.WithLabelValues("success")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.jobsTotal.WithLabelValues("done")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.jobsTotal.WithLabelValues("error")), 0)
}

func TestPipelineMetrics_RecordCorrelationDuration(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewPipelineMetrics(registry)
	require.NoError(t, err)

	m.RecordCorrelationDuration("Source 2", 0.015)

	require.Equal(t, uint64(1), testutil.CollectAndCount(m.correlationDuration))
}
