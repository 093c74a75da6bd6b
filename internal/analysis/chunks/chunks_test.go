package chunks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/analysis/chunks"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/conf"
)

func baseConfig() conf.ChunkConfig {
	return conf.ChunkConfig{
		Count:        5,
		DurationSecs: 10,
		ScanStartPct: 10,
		ScanEndPct:   90,
	}
}

func TestPlan_EvenlyDistributesAcrossUsableRange(t *testing.T) {
	cfg := baseConfig()
	specs := chunks.Plan(1000, cfg)
	require.Len(t, specs, 5)

	startTime := 1000.0 * cfg.ScanStartPct / 100.0
	endTime := 1000.0 * cfg.ScanEndPct / 100.0
	usable := endTime - startTime - cfg.DurationSecs
	step := usable / float64(cfg.Count-1)

	for i, s := range specs {
		assert.Equal(t, i, s.Index)
		assert.InDelta(t, startTime+step*float64(i), s.StartSecs, 1e-9)
		assert.Equal(t, cfg.DurationSecs, s.DurationSecs)
	}
}

func TestPlan_SingleChunkAtMidpoint(t *testing.T) {
	cfg := baseConfig()
	cfg.Count = 1
	specs := chunks.Plan(1000, cfg)
	require.Len(t, specs, 1)

	startTime := 1000.0 * cfg.ScanStartPct / 100.0
	endTime := 1000.0 * cfg.ScanEndPct / 100.0
	usable := endTime - startTime - cfg.DurationSecs

	assert.InDelta(t, startTime+usable/2, specs[0].StartSecs, 1e-9)
}

func TestPlan_ZeroCountAlsoYieldsSingleChunk(t *testing.T) {
	cfg := baseConfig()
	cfg.Count = 0
	specs := chunks.Plan(1000, cfg)
	require.Len(t, specs, 1)
}

func TestPlan_EmptyWhenUsableDurationNonPositive(t *testing.T) {
	cfg := baseConfig()
	cfg.DurationSecs = 10000 // far larger than any usable window
	specs := chunks.Plan(1000, cfg)
	assert.Empty(t, specs)
}

func TestPlan_EmptyForVeryShortSource(t *testing.T) {
	cfg := baseConfig()
	specs := chunks.Plan(5, cfg)
	assert.Empty(t, specs)
}

func TestPlan_ChunksStayWithinScanWindow(t *testing.T) {
	cfg := baseConfig()
	duration := 1200.0
	specs := chunks.Plan(duration, cfg)
	require.NotEmpty(t, specs)

	startTime := duration * cfg.ScanStartPct / 100.0
	endTime := duration * cfg.ScanEndPct / 100.0

	for _, s := range specs {
		assert.GreaterOrEqual(t, s.StartSecs, startTime)
		assert.LessOrEqual(t, s.StartSecs+s.DurationSecs, endTime+1e-6)
	}
}
