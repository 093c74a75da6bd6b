package selector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/analysis/selector"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/analysis/stability"
)

func defaultConfig() selector.Config {
	return selector.Config{
		MinAcceptedChunks:     3,
		FirstStableMinChunks:  3,
		EarlyClusterWindow:    10,
		EarlyClusterThreshold: 5,
		ClusterToleranceMs:    1,
	}
}

func mkChunks(pairs [][2]float64) []stability.ChunkResult {
	out := make([]stability.ChunkResult, len(pairs))
	for i, p := range pairs {
		out[i] = stability.ChunkResult{
			ChunkIndex:     i + 1,
			ChunkStartSecs: p[1],
			DelayMsRaw:     p[0],
			DelayMsRounded: int64(p[0] + sign(p[0])*0.5),
			MatchPct:       95,
			Accepted:       true,
		}
	}
	return out
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func TestSelectMode_PicksMostCommon(t *testing.T) {
	chunks := mkChunks([][2]float64{
		{-1000.5, 10}, {-1000.7, 20}, {-1000.3, 30}, {-500.0, 40},
	})
	result, ok := selector.Select(selector.ModeMode, chunks, defaultConfig())
	require.True(t, ok)
	assert.Equal(t, int64(-1001), result.DelayMsRounded)
}

func TestSelectAverage_AveragesRaw(t *testing.T) {
	chunks := mkChunks([][2]float64{{-1000, 10}, {-1002, 20}, {-1001, 30}})
	result, ok := selector.Select(selector.ModeAverage, chunks, defaultConfig())
	require.True(t, ok)
	assert.InDelta(t, -1001.0, result.DelayMsRaw, 0.01)
}

func TestSelectFirstStable_FindsFirstStableSegment(t *testing.T) {
	chunks := mkChunks([][2]float64{
		{-500.0, 10}, {-500.5, 20},
		{-1000.0, 30}, {-1000.2, 40}, {-1000.1, 50}, {-1000.3, 60}, {-1000.0, 70},
	})
	cfg := defaultConfig()
	cfg.FirstStableMinChunks = 3
	cfg.FirstStableSkipUnstable = true

	result, ok := selector.Select(selector.ModeFirstStable, chunks, cfg)
	require.True(t, ok)
	assert.Equal(t, int64(-1000), result.DelayMsRounded)
	assert.Equal(t, 5, result.ChunksUsed)
}

func TestSelectFirstStable_UsesFirstSegmentWhenNotSkipping(t *testing.T) {
	chunks := mkChunks([][2]float64{
		{-500.0, 10}, {-500.5, 20},
		{-1000.0, 30}, {-1000.2, 40}, {-1000.1, 50},
	})
	cfg := defaultConfig()
	cfg.FirstStableMinChunks = 3
	cfg.FirstStableSkipUnstable = false

	result, ok := selector.Select(selector.ModeFirstStable, chunks, cfg)
	require.True(t, ok)
	assert.Equal(t, int64(-500), result.DelayMsRounded)
}

func TestSelectFirstStable_HandlesTolerance(t *testing.T) {
	chunks := mkChunks([][2]float64{{-1000.4, 10}, {-1001.4, 20}, {-1000.6, 30}})
	result, ok := selector.Select(selector.ModeFirstStable, chunks, defaultConfig())
	require.True(t, ok)
	assert.Equal(t, 3, result.ChunksUsed)
}

func TestSelectModeEarly_PrioritizesEarlyStableCluster(t *testing.T) {
	pairs := make([][2]float64, 0, 12)
	for i := 0; i < 5; i++ {
		pairs = append(pairs, [2]float64{-1000.0, float64(10 * (i + 1))})
	}
	for i := 0; i < 7; i++ {
		pairs = append(pairs, [2]float64{-2000.0, float64(60 + 10*i)})
	}
	chunks := mkChunks(pairs)

	cfg := defaultConfig()
	cfg.EarlyClusterWindow = 10
	cfg.EarlyClusterThreshold = 5

	result, ok := selector.Select(selector.ModeEarly, chunks, cfg)
	require.True(t, ok)
	assert.Equal(t, int64(-1000), result.DelayMsRounded)
}

func TestSelectModeEarly_FallsBackToClustered(t *testing.T) {
	chunks := mkChunks([][2]float64{
		{-100, 10}, {-200, 20}, {-300, 30}, {-1000, 40}, {-1000, 50}, {-1000, 60},
	})
	cfg := defaultConfig()
	cfg.EarlyClusterWindow = 3
	cfg.EarlyClusterThreshold = 3

	result, ok := selector.Select(selector.ModeEarly, chunks, cfg)
	require.True(t, ok)
	assert.Equal(t, int64(-1000), result.DelayMsRounded)
	assert.Contains(t, result.MethodName, "fallback")
}

func TestSelect_UnknownModeReturnsFalse(t *testing.T) {
	_, ok := selector.Select("bogus", mkChunks([][2]float64{{-1, 0}, {-1, 0}, {-1, 0}}), defaultConfig())
	assert.False(t, ok)
}

func TestSelect_InsufficientChunksReturnsFalse(t *testing.T) {
	chunks := mkChunks([][2]float64{{-1000, 10}})
	_, ok := selector.Select(selector.ModeMode, chunks, defaultConfig())
	assert.False(t, ok)
}
