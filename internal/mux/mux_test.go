package mux_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/conf"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/mux"
)

func TestBuildPlan_PrimaryVideoGetsGlobalShiftOnly(t *testing.T) {
	layout := []mux.LayoutEntry{
		{Source: "Source 1", TrackID: 0, TrackType: mux.TrackVideo, SourcePath: "/s1.mkv"},
	}
	inputs := mux.DelayInputs{
		PrimarySource:    "Source 1",
		VideoDelayMs:     100,
		RawGlobalShiftMs: 240,
	}
	plan := mux.BuildPlan(layout, "", nil, inputs)
	assert.Equal(t, 240.0, plan.Items[0].ContainerDelayMsRaw)
}

func TestBuildPlan_PrimaryAudioGetsRelativeContainerDelay(t *testing.T) {
	layout := []mux.LayoutEntry{
		{Source: "Source 1", TrackID: 1, TrackType: mux.TrackAudio, SourcePath: "/s1.mkv"},
	}
	inputs := mux.DelayInputs{
		PrimarySource:           "Source 1",
		VideoDelayMs:            100,
		ContainerDelayMsByTrack: map[int]float64{1: 150},
		RawGlobalShiftMs:        240,
	}
	plan := mux.BuildPlan(layout, "", nil, inputs)
	// (150 - 100) + 240 = 290
	assert.Equal(t, 290.0, plan.Items[0].ContainerDelayMsRaw)
}

func TestBuildPlan_PrimarySubtitleGetsGlobalShiftOnly(t *testing.T) {
	layout := []mux.LayoutEntry{
		{Source: "Source 1", TrackType: mux.TrackSubtitle, SourcePath: "/s1.mkv"},
	}
	inputs := mux.DelayInputs{PrimarySource: "Source 1", RawGlobalShiftMs: 50}
	plan := mux.BuildPlan(layout, "", nil, inputs)
	assert.Equal(t, 50.0, plan.Items[0].ContainerDelayMsRaw)
}

func TestBuildPlan_NonPrimaryUsesSourceDelay(t *testing.T) {
	layout := []mux.LayoutEntry{
		{Source: "Source 2", TrackType: mux.TrackAudio, SyncTo: "Source 2", SourcePath: "/s2.mkv"},
	}
	inputs := mux.DelayInputs{
		PrimarySource:     "Source 1",
		RawSourceDelaysMs: map[string]float64{"Source 2": -150.0},
	}
	plan := mux.BuildPlan(layout, "", nil, inputs)
	assert.Equal(t, -150.0, plan.Items[0].ContainerDelayMsRaw)
}

func TestOptionsBuilder_BuildsBasicCommand(t *testing.T) {
	plan := mux.MergePlan{Items: []mux.PlanItem{
		{LayoutEntry: mux.LayoutEntry{TrackType: mux.TrackVideo, SourcePath: "/test/source.mkv"}},
	}}
	b := mux.OptionsBuilder{Plan: plan, OutputPath: "/test/output.mkv"}
	tokens := b.Build()

	assert.Contains(t, tokens, "-o")
	assert.Contains(t, tokens, "/test/output.mkv")
}

func TestOptionsBuilder_AddsDelayOption(t *testing.T) {
	plan := mux.MergePlan{Items: []mux.PlanItem{
		{LayoutEntry: mux.LayoutEntry{TrackType: mux.TrackAudio, SourcePath: "/test/source.mkv"}, ContainerDelayMsRaw: -150.0},
	}}
	b := mux.OptionsBuilder{Plan: plan, OutputPath: "/test/output.mkv"}
	tokens := b.Build()

	assert.Contains(t, tokens, "--sync")
	assert.Contains(t, tokens, "0:-150")
}

func TestOptionsBuilder_AddsChapters(t *testing.T) {
	plan := mux.MergePlan{ChaptersXML: "/test/chapters.xml"}
	b := mux.OptionsBuilder{Plan: plan, OutputPath: "/test/output.mkv"}
	tokens := b.Build()

	assert.Contains(t, tokens, "--chapters")
	assert.Contains(t, tokens, "/test/chapters.xml")
}

func TestOptionsBuilder_TrackOrderListsEveryItem(t *testing.T) {
	plan := mux.MergePlan{Items: []mux.PlanItem{
		{LayoutEntry: mux.LayoutEntry{TrackType: mux.TrackVideo}},
		{LayoutEntry: mux.LayoutEntry{TrackType: mux.TrackAudio}},
	}}
	b := mux.OptionsBuilder{Plan: plan, OutputPath: "/out.mkv"}
	tokens := b.Build()

	idx := indexOf(tokens, "--track-order")
	assert.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "0:0,1:0", tokens[idx+1])
}

func TestOptionsBuilder_DialogNormRemovalOnlyForAc3(t *testing.T) {
	plan := mux.MergePlan{Items: []mux.PlanItem{
		{LayoutEntry: mux.LayoutEntry{TrackType: mux.TrackAudio, Props: mux.TrackProps{CodecID: "A_AC3"}}},
	}}
	b := mux.OptionsBuilder{
		Plan:        plan,
		Postprocess: conf.PostprocessConfig{ApplyDialogNormRemoval: true},
		OutputPath:  "/out.mkv",
	}
	tokens := b.Build()
	assert.Contains(t, tokens, "--remove-dialog-normalization-gain")
}

func indexOf(tokens []string, target string) int {
	for i, t := range tokens {
		if t == target {
			return i
		}
	}
	return -1
}
