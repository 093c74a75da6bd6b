package steps

import (
	"context"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/container"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/pipeline"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/vsgerrors"
)

// ProbeStep reads container track metadata for every source in the job.
type ProbeStep struct {
	Prober *container.Prober
}

// NewProbeStep returns a ProbeStep bound to the given mkvmerge binary.
func NewProbeStep(mkvmergePath string) *ProbeStep {
	return &ProbeStep{Prober: container.NewProber(mkvmergePath)}
}

// Name implements pipeline.Step.
func (s *ProbeStep) Name() string { return "probe" }

// ValidateInput implements pipeline.Step.
func (s *ProbeStep) ValidateInput(pctx *pipeline.Context, _ *pipeline.JobState) error {
	if len(pctx.Job.Sources) == 0 {
		return vsgerrors.Newf("job %q has no sources to probe", pctx.Job.JobID).
			Kind(vsgerrors.InvalidPlan).Build()
	}
	if _, ok := pctx.Job.Sources[pctx.Job.PrimarySource]; !ok {
		return vsgerrors.Newf("primary source %q is not in the job's source set", pctx.Job.PrimarySource).
			Kind(vsgerrors.InvalidPlan).Build()
	}
	return nil
}

// Execute implements pipeline.Step.
func (s *ProbeStep) Execute(ctx context.Context, pctx *pipeline.Context, state *pipeline.JobState) (pipeline.StepOutcome, error) {
	keys := sortedKeys(pctx.Job.Sources)
	results := make(map[string]container.ProbeResult, len(keys))

	for i, key := range keys {
		path := pctx.Job.Sources[key]
		if path == "" {
			continue
		}

		result, err := s.Prober.Probe(ctx, path)
		if err != nil {
			return pipeline.StepOutcome{}, err
		}
		results[key] = result

		percent := int((float64(i+1) / float64(len(keys))) * 100.0)
		pctx.ReportProgress(s.Name(), percent, "probed "+key)
	}

	state.Probe = &pipeline.ProbeOutput{BySource: results}
	return pipeline.Success(), nil
}

// ValidateOutput implements pipeline.Step.
func (s *ProbeStep) ValidateOutput(pctx *pipeline.Context, state *pipeline.JobState) error {
	if state.Probe == nil || len(state.Probe.BySource) == 0 {
		return vsgerrors.Newf("probe produced no results for job %q", pctx.Job.JobID).
			Kind(vsgerrors.InvalidPlan).Build()
	}
	primary, ok := state.Probe.BySource[pctx.Job.PrimarySource]
	if !ok {
		return vsgerrors.Newf("primary source %q was not probed", pctx.Job.PrimarySource).
			Kind(vsgerrors.SourceNotFound).Build()
	}
	if _, hasVideo := primary.VideoTrack(); !hasVideo {
		return vsgerrors.Newf("primary source %q has no video track", pctx.Job.PrimarySource).
			Kind(vsgerrors.InvalidPlan).Build()
	}
	return nil
}
