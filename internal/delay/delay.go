// Package delay projects per-source delay selections into a consistent
// set of mux-ready source delays under a chosen sync policy.
package delay

import (
	"math"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/analysis/selector"
)

// SyncMode controls whether negative source delays are allowed in the
// final projection.
type SyncMode string

const (
	// PositiveOnly shifts every source so all delays are >= 0.
	PositiveOnly SyncMode = "positive_only"
	// AllowNegative leaves negative delays as computed.
	AllowNegative SyncMode = "allow_negative"
)

// PrimarySourceKey is the conventional key for the reference source,
// which always carries zero delay before global shift is applied.
const PrimarySourceKey = "Source 1"

// Projection is the final per-source delay assignment after applying
// sync policy.
type Projection struct {
	SourceDelaysMs    map[string]int64
	RawSourceDelaysMs map[string]float64
	GlobalShiftMs     int64
	RawGlobalShiftMs  float64
}

// Project computes final mux-ready delays for every secondary source
// given its DelaySelection, relative to an implicit zero-delay primary
// source keyed by PrimarySourceKey.
func Project(selections map[string]selector.Selection, mode SyncMode) Projection {
	sourceDelays := map[string]int64{PrimarySourceKey: 0}
	rawSourceDelays := map[string]float64{PrimarySourceKey: 0}

	for key, sel := range selections {
		rawSourceDelays[key] = -sel.DelayMsRaw
		sourceDelays[key] = -sel.DelayMsRounded
	}

	minDelay := min64(sourceDelays)
	rawMin := minFloat64(rawSourceDelays)

	var globalShift int64
	var rawGlobalShift float64
	if mode == PositiveOnly && minDelay < 0 {
		globalShift = -minDelay
		rawGlobalShift = -rawMin
	}

	for key := range sourceDelays {
		sourceDelays[key] += globalShift
	}
	for key := range rawSourceDelays {
		rawSourceDelays[key] += rawGlobalShift
	}

	return Projection{
		SourceDelaysMs:    sourceDelays,
		RawSourceDelaysMs: rawSourceDelays,
		GlobalShiftMs:     globalShift,
		RawGlobalShiftMs:  rawGlobalShift,
	}
}

func min64(values map[string]int64) int64 {
	var result int64
	first := true
	for _, v := range values {
		if first || v < result {
			result = v
			first = false
		}
	}
	return result
}

func minFloat64(values map[string]float64) float64 {
	result := math.Inf(1)
	for _, v := range values {
		if v < result {
			result = v
		}
	}
	if math.IsInf(result, 1) {
		return 0
	}
	return result
}
