// Package selector reduces a source's accepted chunk results to a single
// delay selection, using one of five pluggable strategies.
package selector

import (
	"fmt"
	"math"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/analysis/stability"
)

// Mode names accepted by Select.
const (
	ModeMode          = "mode"
	ModeClustered     = "mode_clustered"
	ModeEarly         = "mode_early"
	ModeFirstStable   = "first_stable"
	ModeAverage       = "average"
)

// Config configures selector behavior. Mirrors conf.SelectorConfig field
// for field but kept decoupled from the conf package so selector stays a
// leaf dependency.
type Config struct {
	MinAcceptedChunks      int
	MinMatchPct            float64
	FirstStableMinChunks   int
	FirstStableSkipUnstable bool
	EarlyClusterWindow     int
	EarlyClusterThreshold  int
	ClusterToleranceMs     int64
}

// Selection is the outcome of reducing a source's accepted chunks to one
// delay value.
type Selection struct {
	DelayMsRaw     float64
	DelayMsRounded int64
	MethodName     string
	ChunksUsed     int
	Details        string
}

// Select dispatches to the named strategy over chunks' accepted subset,
// returning false if the strategy cannot produce a selection (e.g. too
// few accepted chunks). Every strategy consumes only accepted chunks
// meeting the configured match threshold; rejected chunks (silent
// windows at 0ms, low-confidence correlations) never reach a strategy's
// frequency counts or raw-delay averages.
func Select(mode string, chunks []stability.ChunkResult, cfg Config) (Selection, bool) {
	accepted := make([]stability.ChunkResult, 0, len(chunks))
	for _, c := range chunks {
		if c.Accepted && c.MatchPct >= cfg.MinMatchPct {
			accepted = append(accepted, c)
		}
	}

	switch mode {
	case ModeMode:
		return selectMode(accepted, cfg)
	case ModeClustered:
		return selectModeClustered(accepted, cfg)
	case ModeEarly:
		return selectModeEarly(accepted, cfg)
	case ModeFirstStable:
		return selectFirstStable(accepted, cfg)
	case ModeAverage:
		return selectAverage(accepted, cfg)
	default:
		return Selection{}, false
	}
}

func roundHalfAwayFromZero(v float64) int64 {
	if v >= 0 {
		return int64(math.Floor(v + 0.5))
	}
	return int64(math.Ceil(v - 0.5))
}

// selectMode picks the most frequent rounded delay; ties broken by the
// lowest delay value. delay_ms_raw is the raw value of the first chunk
// whose rounded delay matches the winner.
func selectMode(chunks []stability.ChunkResult, cfg Config) (Selection, bool) {
	if len(chunks) < cfg.MinAcceptedChunks {
		return Selection{}, false
	}

	counts := make(map[int64]int)
	for _, c := range chunks {
		counts[c.DelayMsRounded]++
	}

	best, bestCount := int64(0), -1
	for delay, count := range counts {
		if count > bestCount || (count == bestCount && delay < best) {
			best, bestCount = delay, count
		}
	}

	var rawOfFirst float64
	for _, c := range chunks {
		if c.DelayMsRounded == best {
			rawOfFirst = c.DelayMsRaw
			break
		}
	}

	return Selection{
		DelayMsRaw:     rawOfFirst,
		DelayMsRounded: best,
		MethodName:     ModeMode,
		ChunksUsed:     bestCount,
		Details:        fmt.Sprintf("%d chunks at %+dms (mode)", bestCount, best),
	}, true
}

// selectModeClustered finds the most frequent rounded delay, then
// averages raw delays over all chunks within tolerance of it.
func selectModeClustered(chunks []stability.ChunkResult, cfg Config) (Selection, bool) {
	if len(chunks) < cfg.MinAcceptedChunks {
		return Selection{}, false
	}

	counts := make(map[int64]int)
	for _, c := range chunks {
		counts[c.DelayMsRounded]++
	}

	best, bestCount := int64(0), -1
	for delay, count := range counts {
		if count > bestCount || (count == bestCount && delay < best) {
			best, bestCount = delay, count
		}
	}

	var sum float64
	var used int
	for _, c := range chunks {
		if absInt64(c.DelayMsRounded-best) <= cfg.ClusterToleranceMs {
			sum += c.DelayMsRaw
			used++
		}
	}
	if used == 0 {
		return Selection{}, false
	}

	avg := sum / float64(used)
	return Selection{
		DelayMsRaw:     avg,
		DelayMsRounded: roundHalfAwayFromZero(avg),
		MethodName:     ModeClustered,
		ChunksUsed:     used,
		Details:        fmt.Sprintf("cluster around %+dms, %d chunks, raw avg %.3fms", best, used, avg),
	}, true
}

// selectModeEarly prioritizes a delay cluster stable in the early
// portion of the chunk sequence, falling back to Mode (Clustered) if no
// early cluster qualifies.
func selectModeEarly(chunks []stability.ChunkResult, cfg Config) (Selection, bool) {
	if len(chunks) < cfg.MinAcceptedChunks {
		return Selection{}, false
	}

	window := cfg.EarlyClusterWindow
	if window > len(chunks) {
		window = len(chunks)
	}
	early := chunks[:window]

	seen := make(map[int64]bool)
	type candidate struct {
		delay int64
		count int
	}
	var candidates []candidate
	for _, c := range early {
		if seen[c.DelayMsRounded] {
			continue
		}
		seen[c.DelayMsRounded] = true

		total := 0
		for _, e := range early {
			if absInt64(e.DelayMsRounded-c.DelayMsRounded) <= cfg.ClusterToleranceMs {
				total++
			}
		}
		if total >= cfg.EarlyClusterThreshold {
			candidates = append(candidates, candidate{c.DelayMsRounded, total})
		}
	}

	if len(candidates) > 0 {
		bestIdx := 0
		for i, cand := range candidates {
			if cand.count > candidates[bestIdx].count {
				bestIdx = i
			}
		}
		bestDelay := candidates[bestIdx].delay

		var sum float64
		var used int
		for _, c := range chunks {
			if absInt64(c.DelayMsRounded-bestDelay) <= cfg.ClusterToleranceMs {
				sum += c.DelayMsRaw
				used++
			}
		}
		if used > 0 {
			avg := sum / float64(used)
			return Selection{
				DelayMsRaw:     avg,
				DelayMsRounded: roundHalfAwayFromZero(avg),
				MethodName:     ModeEarly,
				ChunksUsed:     used,
				Details: fmt.Sprintf("early stable cluster around %+dms (%d in first %d chunks)",
					bestDelay, candidates[bestIdx].count, window),
			}, true
		}
	}

	fallback, ok := selectModeClustered(chunks, cfg)
	if !ok {
		return Selection{}, false
	}
	fallback.MethodName = ModeEarly + " (fallback)"
	return fallback, true
}

// selectFirstStable groups consecutive chunks whose rounded delays stay
// within tolerance of the group's first delay, then returns the first
// group meeting the minimum size (or the first group unconditionally, if
// skip-unstable is disabled).
func selectFirstStable(chunks []stability.ChunkResult, cfg Config) (Selection, bool) {
	if len(chunks) < cfg.MinAcceptedChunks {
		return Selection{}, false
	}

	type segment struct {
		delayRounded int64
		startSecs    float64
		rawDelays    []float64
	}

	var segments []segment
	var current *segment
	for _, c := range chunks {
		if current != nil && absInt64(current.delayRounded-c.DelayMsRounded) <= cfg.ClusterToleranceMs {
			current.rawDelays = append(current.rawDelays, c.DelayMsRaw)
			continue
		}
		if current != nil {
			segments = append(segments, *current)
		}
		current = &segment{delayRounded: c.DelayMsRounded, startSecs: c.ChunkStartSecs, rawDelays: []float64{c.DelayMsRaw}}
	}
	if current != nil {
		segments = append(segments, *current)
	}
	if len(segments) == 0 {
		return Selection{}, false
	}

	var chosen *segment
	if cfg.FirstStableSkipUnstable {
		for i := range segments {
			if len(segments[i].rawDelays) >= cfg.FirstStableMinChunks {
				chosen = &segments[i]
				break
			}
		}
		if chosen == nil {
			return Selection{}, false
		}
	} else {
		chosen = &segments[0]
	}

	var sum float64
	for _, d := range chosen.rawDelays {
		sum += d
	}
	avg := sum / float64(len(chosen.rawDelays))

	return Selection{
		DelayMsRaw:     avg,
		DelayMsRounded: chosen.delayRounded,
		MethodName:     ModeFirstStable,
		ChunksUsed:     len(chosen.rawDelays),
		Details: fmt.Sprintf("%d chunks at %+dms (raw avg: %.3fms, starting at %.1fs)",
			len(chosen.rawDelays), chosen.delayRounded, avg, chosen.startSecs),
	}, true
}

// selectAverage returns the plain mean of raw delays.
func selectAverage(chunks []stability.ChunkResult, cfg Config) (Selection, bool) {
	if len(chunks) < cfg.MinAcceptedChunks {
		return Selection{}, false
	}

	var sum float64
	for _, c := range chunks {
		sum += c.DelayMsRaw
	}
	avg := sum / float64(len(chunks))

	return Selection{
		DelayMsRaw:     avg,
		DelayMsRounded: roundHalfAwayFromZero(avg),
		MethodName:     ModeAverage,
		ChunksUsed:     len(chunks),
		Details:        fmt.Sprintf("average of %d chunks, raw %.3fms", len(chunks), avg),
	}, true
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
