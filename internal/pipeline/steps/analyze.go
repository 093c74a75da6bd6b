package steps

import (
	"context"
	"math"
	"time"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/analysis/chunks"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/analysis/correlate"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/analysis/peak"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/analysis/runner"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/analysis/selector"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/analysis/stability"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/audio"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/conf"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/metrics"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/pipeline"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/vsgerrors"
)

// AnalyzeStep correlates every secondary source against the primary
// source's audio, chunk by chunk, and reduces each source's accepted
// chunks to one delay selection.
type AnalyzeStep struct {
	Extractor *audio.Extractor
}

// NewAnalyzeStep returns an AnalyzeStep bound to the given ffmpeg binary.
func NewAnalyzeStep(ffmpegPath string) *AnalyzeStep {
	return &AnalyzeStep{Extractor: audio.NewExtractor(ffmpegPath)}
}

// Name implements pipeline.Step.
func (s *AnalyzeStep) Name() string { return "analyze" }

// ValidateInput implements pipeline.Step.
func (s *AnalyzeStep) ValidateInput(pctx *pipeline.Context, state *pipeline.JobState) error {
	if state.Probe == nil {
		return vsgerrors.Newf("analyze requires probe output for job %q", pctx.Job.JobID).
			Kind(vsgerrors.InvalidPlan).Build()
	}
	return nil
}

// Execute implements pipeline.Step.
func (s *AnalyzeStep) Execute(ctx context.Context, pctx *pipeline.Context, state *pipeline.JobState) (pipeline.StepOutcome, error) {
	primaryKey := pctx.Job.PrimarySource
	primaryPath := pctx.Job.Sources[primaryKey]
	primaryProbe := state.Probe.BySource[primaryKey]

	cfg := pctx.Settings.Chunk
	corrCfg := pctx.Settings.Correlation
	selCfg := pctx.Settings.Selector

	secondaryKeys := make([]string, 0, len(pctx.Job.Sources))
	for _, key := range sortedKeys(pctx.Job.Sources) {
		if key == primaryKey || pctx.Job.Sources[key] == "" {
			continue
		}
		secondaryKeys = append(secondaryKeys, key)
	}

	if len(secondaryKeys) == 0 {
		return pipeline.Skipped("no secondary sources to analyze"), nil
	}

	selections := make(map[string]selector.Selection, len(secondaryKeys))
	metricsOut := make(map[string]stability.Metrics, len(secondaryKeys))

	for i, key := range secondaryKeys {
		secondaryPath := pctx.Job.Sources[key]
		secondaryProbe := state.Probe.BySource[key]

		durationMs := primaryProbe.DurationMs
		if secondaryProbe.DurationMs < durationMs {
			durationMs = secondaryProbe.DurationMs
		}
		durationSecs := float64(durationMs) / 1000.0

		specs := chunks.Plan(durationSecs, cfg)
		if len(specs) == 0 {
			return pipeline.StepOutcome{}, vsgerrors.Newf("no usable chunk window for source %q (duration %.1fs)", key, durationSecs).
				Kind(vsgerrors.InsufficientChunks).
				Context("source", key).Build()
		}

		analyze := s.analyzeFunc(primaryPath, secondaryPath, corrCfg)

		results, err := runner.Run(ctx, specs, analyze, runner.Options{Workers: pctx.Settings.Pipeline.WorkerCount})
		if err != nil {
			return pipeline.StepOutcome{}, vsgerrors.New(err).
				Kind(vsgerrors.InvalidAudio).
				Context("source", key).Build()
		}

		sm := stability.Calculate(results, corrCfg.MinMatchPct)
		metricsOut[key] = sm

		if rec := metricsRecorder(); rec != nil {
			for _, r := range results {
				rec.RecordChunkResult(key, r.Accepted)
			}
		}

		sel, ok := selector.Select(normalizeMode(selCfg.Mode), results, selector.Config{
			MinAcceptedChunks:       selCfg.MinAcceptedChunks,
			MinMatchPct:             corrCfg.MinMatchPct,
			FirstStableMinChunks:    selCfg.FirstStableMinChunks,
			FirstStableSkipUnstable: selCfg.FirstStableSkipUnstable,
			EarlyClusterWindow:      selCfg.EarlyClusterWindow,
			EarlyClusterThreshold:   selCfg.EarlyClusterThreshold,
			ClusterToleranceMs:      selCfg.ClusterToleranceMs,
		})
		if !ok {
			return pipeline.StepOutcome{}, vsgerrors.Newf(
				"source %q is indeterminate: accepted %d of %d chunks (need %d)",
				key, sm.AcceptedChunks, sm.TotalChunks, selCfg.MinAcceptedChunks,
			).Kind(vsgerrors.InsufficientChunks).
				Context("source", key).
				Context("accepted_chunks", sm.AcceptedChunks).
				Context("total_chunks", sm.TotalChunks).
				Build()
		}

		if rec := metricsRecorder(); rec != nil {
			rec.RecordDelaySelection(key, sel.MethodName, sm.IsStable())
		}

		selections[key] = sel

		percent := int((float64(i+1) / float64(len(secondaryKeys))) * 100.0)
		pctx.ReportProgress(s.Name(), percent, "analyzed "+key)
	}

	state.Analysis = &pipeline.AnalysisOutput{Selections: selections, Metrics: metricsOut}
	return pipeline.Success(), nil
}

// ValidateOutput implements pipeline.Step.
func (s *AnalyzeStep) ValidateOutput(pctx *pipeline.Context, state *pipeline.JobState) error {
	if state.Analysis == nil {
		return nil // step may have been skipped (no secondary sources)
	}
	for key := range pctx.Job.Sources {
		if key == pctx.Job.PrimarySource || pctx.Job.Sources[key] == "" {
			continue
		}
		if _, ok := state.Analysis.Selections[key]; !ok {
			return vsgerrors.Newf("analyze produced no selection for source %q", key).
				Kind(vsgerrors.InsufficientChunks).Build()
		}
	}
	return nil
}

// analyzeFunc extracts the reference and secondary audio windows for one
// chunk, correlates them, and locates the peak lag.
func (s *AnalyzeStep) analyzeFunc(primaryPath, secondaryPath string, corrCfg conf.CorrelationConfig) runner.AnalyzeFunc {
	return func(ctx context.Context, spec chunks.Spec) (stability.ChunkResult, error) {
		start := time.Now()

		refWindow, err := s.Extractor.Extract(ctx, primaryPath, spec.StartSecs, spec.DurationSecs, corrCfg.SampleRateHz, -1)
		if err != nil {
			return rejectedChunk(spec, "extract_failed: "+err.Error()), nil
		}
		otherWindow, err := s.Extractor.Extract(ctx, secondaryPath, spec.StartSecs, spec.DurationSecs, corrCfg.SampleRateHz, -1)
		if err != nil {
			return rejectedChunk(spec, "extract_failed: "+err.Error()), nil
		}

		if refWindow.IsSilent() || otherWindow.IsSilent() {
			return rejectedChunk(spec, "silent_window"), nil
		}

		buf, err := correlate.Correlate(corrCfg.Method, refWindow.Samples, otherWindow.Samples)
		if err != nil {
			return rejectedChunk(spec, "correlate_failed: "+err.Error()), nil
		}

		if rec := metricsRecorder(); rec != nil {
			rec.RecordCorrelationDuration(secondaryPath, time.Since(start).Seconds())
		}

		result := peak.Locate(buf)
		delayMsRaw := result.DelaySamples / float64(corrCfg.SampleRateHz) * 1000.0

		matchPct := result.Confidence
		if corrCfg.Method == correlate.MethodSCC || corrCfg.Method == "" {
			matchPct = result.PeakValue * 100
		}
		accepted := matchPct >= corrCfg.MinMatchPct

		cr := stability.ChunkResult{
			ChunkIndex:     spec.Index,
			ChunkStartSecs: spec.StartSecs,
			DelayMsRaw:     delayMsRaw,
			DelayMsRounded: int64(math.Round(delayMsRaw)),
			MatchPct:       matchPct,
			Accepted:       accepted,
		}
		if !accepted {
			cr.RejectReason = "low_confidence"
		}
		return cr, nil
	}
}

// rejectedChunk builds a rejected ChunkResult carrying only positional
// fields and a reason, for chunks that never reached a delay/match_pct
// computation (a per-chunk extraction or correlation failure). These
// never abort the step; the step only fails on configuration errors.
func rejectedChunk(spec chunks.Spec, reason string) stability.ChunkResult {
	return stability.ChunkResult{
		ChunkIndex:     spec.Index,
		ChunkStartSecs: spec.StartSecs,
		RejectReason:   reason,
	}
}

// metricsRecorder returns the process-wide pipeline metrics recorder, or
// nil if metrics haven't been initialized (e.g. in unit tests).
func metricsRecorder() *metrics.PipelineMetrics {
	m := metrics.Global()
	if m == nil {
		return nil
	}
	return m.Pipeline
}
