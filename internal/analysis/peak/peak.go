// Package peak locates the dominant lag in a correlation buffer and
// scores how trustworthy that peak is.
package peak

import (
	"math"
	"sort"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/analysis/correlate"
)

// Result is the outcome of locating a peak in a correlation buffer.
type Result struct {
	DelaySamples float64 // sub-sample-refined delay, in samples
	Confidence   float64 // 0-100 composite match confidence (non-SCC methods)
	PeakValue    float64 // sub-sample-refined peak height of |correlation|, used as SCC's match_pct/100
}

// Locate finds the integer peak lag in buf (by absolute value), refines
// it to sub-sample precision via parabolic interpolation of its
// neighbors, and scores confidence from peak prominence, uniqueness, and
// background SNR.
//
// The delay convention matches the original analyzer: the lag is negated
// before being returned, so a positive result means `other` lags behind
// `reference` (needs to be shifted forward in time to align).
func Locate(buf correlate.Buffer) Result {
	if len(buf) == 0 {
		return Result{}
	}

	center := len(buf) / 2

	absCorr := make([]float64, len(buf))
	for i, v := range buf {
		absCorr[i] = math.Abs(v)
	}

	peakIdx := argMax(absCorr)
	lag := peakIdx - center
	delay := float64(-lag)

	delta, peakValue := parabolicRefine(absCorr, peakIdx)
	delay -= delta

	confidence := confidenceScore(absCorr, peakIdx)

	return Result{DelaySamples: delay, Confidence: confidence, PeakValue: peakValue}
}

func argMax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

// parabolicRefine fits a parabola through the peak and its immediate
// neighbors, returning the sub-sample offset δ of the true maximum
// relative to peakIdx (clamped to [-1,+1]) and the parabola's refined
// height at that maximum. Falls back to (0, values[peakIdx]) at the
// buffer edges or when the fit is degenerate (|a| <= 1e-10).
func parabolicRefine(values []float64, peakIdx int) (delta, refinedPeak float64) {
	if peakIdx <= 0 || peakIdx >= len(values)-1 {
		return 0, values[peakIdx]
	}
	left := values[peakIdx-1]
	center := values[peakIdx]
	right := values[peakIdx+1]

	a := (left+right)/2 - center
	b := (right - left) / 2
	if math.Abs(a) <= 1e-10 {
		return 0, center
	}

	delta = -b / (2 * a)
	delta = math.Max(-1, math.Min(1, delta))
	refinedPeak = center - (b*b)/(4*a)
	return delta, refinedPeak
}

// confidenceScore combines three metrics into a single 0-100 score: peak
// prominence over the noise floor (median), uniqueness versus the
// second-best peak outside a small exclusion zone, and SNR computed from
// the standard deviation of background (sub-90th-percentile) samples.
// Weights (5, 8, 1.5) and the divisor 3 are empirical constants carried
// from the reference implementation.
func confidenceScore(absCorr []float64, peakIdx int) float64 {
	peakValue := absCorr[peakIdx]

	sorted := append([]float64(nil), absCorr...)
	sort.Float64s(sorted)

	noiseFloorMedian := sorted[len(sorted)/2]
	prominenceRatio := peakValue / (noiseFloorMedian + 1e-9)

	neighborRange := max(len(absCorr)/100, 1)
	startMask := max(peakIdx-neighborRange, 0)
	endMask := min(peakIdx+neighborRange+1, len(absCorr))

	secondBest := noiseFloorMedian
	found := false
	for i, v := range absCorr {
		if i >= startMask && i < endMask {
			continue
		}
		if !found || v > secondBest {
			secondBest = v
			found = true
		}
	}
	uniquenessRatio := peakValue / (secondBest + 1e-9)

	threshold90Idx := len(absCorr) * 90 / 100
	threshold90 := peakValue
	if threshold90Idx < len(sorted) {
		threshold90 = sorted[threshold90Idx]
	}

	var background []float64
	for _, v := range absCorr {
		if v < threshold90 {
			background = append(background, v)
		}
	}

	bgStdDev := 1e-9
	if len(background) > 10 {
		var mean float64
		for _, v := range background {
			mean += v
		}
		mean /= float64(len(background))
		var variance float64
		for _, v := range background {
			variance += (v - mean) * (v - mean)
		}
		variance /= float64(len(background))
		bgStdDev = math.Sqrt(variance)
	}
	snrRatio := peakValue / (bgStdDev + 1e-9)

	confidence := (prominenceRatio*5.0 + uniquenessRatio*8.0 + snrRatio*1.5) / 3.0
	return math.Max(0, math.Min(100, confidence))
}
