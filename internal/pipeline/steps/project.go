package steps

import (
	"context"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/analysis/selector"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/delay"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/pipeline"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/vsgerrors"
)

// ProjectStep combines per-source delay selections into a consistent set
// of mux-ready delays under the job's configured sync policy.
type ProjectStep struct{}

// NewProjectStep returns a ProjectStep.
func NewProjectStep() *ProjectStep { return &ProjectStep{} }

// Name implements pipeline.Step.
func (s *ProjectStep) Name() string { return "project" }

// ValidateInput implements pipeline.Step.
func (s *ProjectStep) ValidateInput(pctx *pipeline.Context, state *pipeline.JobState) error {
	if state.Probe == nil {
		return vsgerrors.Newf("project requires probe output for job %q", pctx.Job.JobID).
			Kind(vsgerrors.InvalidPlan).Build()
	}
	return nil
}

// Execute implements pipeline.Step.
func (s *ProjectStep) Execute(_ context.Context, pctx *pipeline.Context, state *pipeline.JobState) (pipeline.StepOutcome, error) {
	mode := delay.PositiveOnly
	if normalizeMode(pctx.Settings.Pipeline.SyncMode) == string(delay.AllowNegative) {
		mode = delay.AllowNegative
	}

	var selections map[string]selector.Selection
	if state.Analysis != nil {
		selections = state.Analysis.Selections
	}

	projection := delay.Project(selections, mode)
	state.Projection = &pipeline.ProjectionOutput{Projection: projection}
	return pipeline.Success(), nil
}

// ValidateOutput implements pipeline.Step.
func (s *ProjectStep) ValidateOutput(pctx *pipeline.Context, state *pipeline.JobState) error {
	if state.Projection == nil {
		return vsgerrors.Newf("project produced no output for job %q", pctx.Job.JobID).
			Kind(vsgerrors.InvalidPlan).Build()
	}
	if _, ok := state.Projection.Projection.SourceDelaysMs[delay.PrimarySourceKey]; !ok {
		return vsgerrors.Newf("projection is missing the primary source's delay entry").
			Kind(vsgerrors.InvalidPlan).Build()
	}
	return nil
}
