package steps

import (
	"context"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/mux"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/pipeline"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/vsgerrors"
)

// BuildPlanStep flattens a default track layout (primary video, every
// source's audio and subtitles) into an ordered MergePlan with resolved
// per-track delays.
type BuildPlanStep struct{}

// NewBuildPlanStep returns a BuildPlanStep.
func NewBuildPlanStep() *BuildPlanStep { return &BuildPlanStep{} }

// Name implements pipeline.Step.
func (s *BuildPlanStep) Name() string { return "build_plan" }

// ValidateInput implements pipeline.Step.
func (s *BuildPlanStep) ValidateInput(pctx *pipeline.Context, state *pipeline.JobState) error {
	if state.Probe == nil || state.Projection == nil {
		return vsgerrors.Newf("build_plan requires probe and projection output for job %q", pctx.Job.JobID).
			Kind(vsgerrors.InvalidPlan).Build()
	}
	return nil
}

// Execute implements pipeline.Step.
func (s *BuildPlanStep) Execute(_ context.Context, pctx *pipeline.Context, state *pipeline.JobState) (pipeline.StepOutcome, error) {
	primary := pctx.Job.PrimarySource
	primaryProbe := state.Probe.BySource[primary]

	videoTrack, ok := primaryProbe.VideoTrack()
	if !ok {
		return pipeline.StepOutcome{}, vsgerrors.Newf("primary source %q has no video track", primary).
			Kind(vsgerrors.InvalidPlan).Build()
	}

	containerDelayByTrack := make(map[int]float64, len(primaryProbe.Tracks))
	for _, t := range primaryProbe.Tracks {
		containerDelayByTrack[t.ID] = float64(t.ContainerDelayMs)
	}

	sourceOrder := sortedKeys(pctx.Job.Sources)
	layout := mux.DefaultLayout(primary, sourceOrder, state.Probe.BySource)
	for i := range layout {
		layout[i].SourcePath = pctx.Job.Sources[layout[i].Source]
	}

	proj := state.Projection.Projection
	inputs := mux.DelayInputs{
		PrimarySource:           primary,
		VideoDelayMs:            float64(videoTrack.ContainerDelayMs),
		ContainerDelayMsByTrack: containerDelayByTrack,
		RawGlobalShiftMs:        proj.RawGlobalShiftMs,
		RawSourceDelaysMs:       proj.RawSourceDelaysMs,
	}

	plan := mux.BuildPlan(layout, "", nil, inputs)
	if err := validatePlanInvariants(plan.Items); err != nil {
		return pipeline.StepOutcome{}, err
	}

	state.Plan = &plan
	return pipeline.Success(), nil
}

// ValidateOutput implements pipeline.Step.
func (s *BuildPlanStep) ValidateOutput(pctx *pipeline.Context, state *pipeline.JobState) error {
	if state.Plan == nil || len(state.Plan.Items) == 0 {
		return vsgerrors.Newf("build_plan produced an empty plan for job %q", pctx.Job.JobID).
			Kind(vsgerrors.InvalidPlan).Build()
	}
	return validatePlanInvariants(state.Plan.Items)
}

// validatePlanInvariants checks the build-time invariants: exactly one
// default video track, at most one default audio track per language, and
// forced-display set only on subtitle tracks.
func validatePlanInvariants(items []mux.PlanItem) error {
	videoDefaults := 0
	audioDefaultsByLang := map[string]int{}

	for _, item := range items {
		switch item.TrackType {
		case mux.TrackVideo:
			if item.IsDefault {
				videoDefaults++
			}
			if item.IsForcedDisplay {
				return vsgerrors.Newf("forced-display flag set on non-subtitle track (source %q, track %d)", item.Source, item.TrackID).
					Kind(vsgerrors.InvalidPlan).Build()
			}
		case mux.TrackAudio:
			if item.IsDefault {
				audioDefaultsByLang[item.Props.Lang]++
			}
			if item.IsForcedDisplay {
				return vsgerrors.Newf("forced-display flag set on non-subtitle track (source %q, track %d)", item.Source, item.TrackID).
					Kind(vsgerrors.InvalidPlan).Build()
			}
		}
	}

	if videoDefaults != 1 {
		return vsgerrors.Newf("plan must mark exactly one default video track, found %d", videoDefaults).
			Kind(vsgerrors.InvalidPlan).Build()
	}
	for lang, count := range audioDefaultsByLang {
		if count > 1 {
			return vsgerrors.Newf("plan marks %d default audio tracks for language %q, want at most 1", count, lang).
				Kind(vsgerrors.InvalidPlan).Build()
		}
	}
	return nil
}
