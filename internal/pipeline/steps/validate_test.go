package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/pipeline"
)

func TestProbeStep_ValidateInput_RejectsEmptySources(t *testing.T) {
	step := NewProbeStep("mkvmerge")
	pctx := &pipeline.Context{Job: pipeline.JobSpec{JobID: "job-1", PrimarySource: "Source 1"}}
	err := step.ValidateInput(pctx, pipeline.NewJobState("job-1", fixedTime))
	assert.Error(t, err)
}

func TestProbeStep_ValidateInput_RejectsMissingPrimarySource(t *testing.T) {
	step := NewProbeStep("mkvmerge")
	pctx := &pipeline.Context{Job: pipeline.JobSpec{
		JobID:         "job-1",
		PrimarySource: "Source 1",
		Sources:       map[string]string{"Source 2": "/s2.mkv"},
	}}
	err := step.ValidateInput(pctx, pipeline.NewJobState("job-1", fixedTime))
	assert.Error(t, err)
}

func TestAnalyzeStep_ValidateInput_RequiresProbeOutput(t *testing.T) {
	step := NewAnalyzeStep("ffmpeg")
	pctx := &pipeline.Context{Job: pipeline.JobSpec{JobID: "job-1"}}
	err := step.ValidateInput(pctx, pipeline.NewJobState("job-1", fixedTime))
	assert.Error(t, err)
}

func TestShiftChaptersStep_ValidateInput_RequiresProjection(t *testing.T) {
	step := NewShiftChaptersStep("mkvextract", "ffprobe")
	pctx := &pipeline.Context{Job: pipeline.JobSpec{JobID: "job-1"}}
	err := step.ValidateInput(pctx, pipeline.NewJobState("job-1", fixedTime))
	assert.Error(t, err)
}

func TestMuxStep_ValidateInput_RequiresPlan(t *testing.T) {
	step := NewMuxStep("mkvmerge")
	pctx := &pipeline.Context{Job: pipeline.JobSpec{JobID: "job-1"}}
	err := step.ValidateInput(pctx, pipeline.NewJobState("job-1", fixedTime))
	assert.Error(t, err)
}
