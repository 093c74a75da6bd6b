package steps

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/container"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/conf"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/delay"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/mux"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/pipeline"
)

func buildPlanFixtureState() (*pipeline.Context, *pipeline.JobState) {
	pctx := &pipeline.Context{
		Job: pipeline.JobSpec{
			JobID:         "job-1",
			PrimarySource: "Source 1",
			Sources:       map[string]string{"Source 1": "/s1.mkv", "Source 2": "/s2.mkv"},
		},
		Settings: &conf.Settings{},
	}
	state := pipeline.NewJobState("job-1", time.Now())
	state.Probe = &pipeline.ProbeOutput{BySource: map[string]container.ProbeResult{
		"Source 1": {Tracks: []container.Track{
			{ID: 0, Type: container.TrackVideo, Default: true, ContainerDelayMs: 100},
			{ID: 1, Type: container.TrackAudio, Default: true, Language: "eng", ContainerDelayMs: 150},
		}},
		"Source 2": {Tracks: []container.Track{
			{ID: 0, Type: container.TrackVideo},
			{ID: 1, Type: container.TrackAudio, Default: true, Language: "jpn"},
		}},
	}}
	state.Projection = &pipeline.ProjectionOutput{Projection: delay.Projection{
		SourceDelaysMs:    map[string]int64{"Source 1": 0, "Source 2": 200},
		RawSourceDelaysMs: map[string]float64{"Source 1": 0, "Source 2": 200},
		GlobalShiftMs:     0,
		RawGlobalShiftMs:  0,
	}}
	return pctx, state
}

func TestBuildPlanStep_ResolvesPlanFromDefaultLayout(t *testing.T) {
	step := NewBuildPlanStep()
	pctx, state := buildPlanFixtureState()

	require.NoError(t, step.ValidateInput(pctx, state))
	outcome, err := step.Execute(context.Background(), pctx, state)
	require.NoError(t, err)
	assert.False(t, outcome.IsSkipped())
	require.NoError(t, step.ValidateOutput(pctx, state))

	videoCount := 0
	for _, item := range state.Plan.Items {
		if item.TrackType == mux.TrackVideo {
			videoCount++
		}
	}
	assert.Equal(t, 1, videoCount)
}

func TestValidatePlanInvariants_RejectsMultipleDefaultVideoTracks(t *testing.T) {
	items := []mux.PlanItem{
		{LayoutEntry: mux.LayoutEntry{TrackType: mux.TrackVideo, IsDefault: true}},
		{LayoutEntry: mux.LayoutEntry{TrackType: mux.TrackVideo, IsDefault: true}},
	}
	err := validatePlanInvariants(items)
	assert.Error(t, err)
}

func TestValidatePlanInvariants_RejectsDuplicateDefaultAudioPerLanguage(t *testing.T) {
	items := []mux.PlanItem{
		{LayoutEntry: mux.LayoutEntry{TrackType: mux.TrackVideo, IsDefault: true}},
		{LayoutEntry: mux.LayoutEntry{TrackType: mux.TrackAudio, IsDefault: true, Props: mux.TrackProps{Lang: "eng"}}},
		{LayoutEntry: mux.LayoutEntry{TrackType: mux.TrackAudio, IsDefault: true, Props: mux.TrackProps{Lang: "eng"}}},
	}
	err := validatePlanInvariants(items)
	assert.Error(t, err)
}

func TestValidatePlanInvariants_AcceptsWellFormedPlan(t *testing.T) {
	items := []mux.PlanItem{
		{LayoutEntry: mux.LayoutEntry{TrackType: mux.TrackVideo, IsDefault: true}},
		{LayoutEntry: mux.LayoutEntry{TrackType: mux.TrackAudio, IsDefault: true, Props: mux.TrackProps{Lang: "eng"}}},
		{LayoutEntry: mux.LayoutEntry{TrackType: mux.TrackSubtitle, IsForcedDisplay: true}},
	}
	assert.NoError(t, validatePlanInvariants(items))
}
