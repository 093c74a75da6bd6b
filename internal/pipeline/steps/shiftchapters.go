package steps

import (
	"context"
	"path/filepath"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/chapters"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/pipeline"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/vsgerrors"
)

// ShiftChaptersStep extracts the primary source's chapters, shifts every
// timestamp by the job's global shift, optionally snaps chapter starts to
// keyframes, and writes the result to the job's working directory.
//
// A source with no chapters is not an error: the step reports Skipped.
type ShiftChaptersStep struct {
	MkvextractPath string
	FFprobePath    string
}

// NewShiftChaptersStep returns a ShiftChaptersStep bound to the given
// mkvextract and ffprobe binaries.
func NewShiftChaptersStep(mkvextractPath, ffprobePath string) *ShiftChaptersStep {
	return &ShiftChaptersStep{MkvextractPath: mkvextractPath, FFprobePath: ffprobePath}
}

// Name implements pipeline.Step.
func (s *ShiftChaptersStep) Name() string { return "shift_chapters" }

// ValidateInput implements pipeline.Step.
func (s *ShiftChaptersStep) ValidateInput(pctx *pipeline.Context, state *pipeline.JobState) error {
	if state.Projection == nil {
		return vsgerrors.Newf("shift_chapters requires projection output for job %q", pctx.Job.JobID).
			Kind(vsgerrors.InvalidPlan).Build()
	}
	return nil
}

// Execute implements pipeline.Step.
func (s *ShiftChaptersStep) Execute(ctx context.Context, pctx *pipeline.Context, state *pipeline.JobState) (pipeline.StepOutcome, error) {
	primaryPath := pctx.Job.Sources[pctx.Job.PrimarySource]

	data, err := chapters.ExtractXML(ctx, s.MkvextractPath, primaryPath)
	if err != nil {
		return pipeline.StepOutcome{}, err
	}
	if data == nil || data.Len() == 0 {
		return pipeline.Skipped("source has no chapters"), nil
	}

	globalShiftMs := state.Projection.Projection.GlobalShiftMs
	if pctx.Settings.Pipeline.StrictChapterShift {
		chapters.ShiftStrict(data, globalShiftMs)
	} else {
		chapters.Shift(data, globalShiftMs)
	}

	snapped := false
	if pctx.Settings.Pipeline.SnapChapters {
		extractor := chapters.NewKeyframeExtractor(s.FFprobePath)
		keyframes, err := extractor.Extract(ctx, primaryPath)
		if err != nil {
			return pipeline.StepOutcome{}, err
		}
		if len(keyframes.TimestampsNs) > 0 {
			mode := chapters.SnapMode(pctx.Settings.Pipeline.SnapMode)
			chapters.Snap(data, keyframes, mode)
			snapped = true
		}
	}

	outPath := filepath.Join(pctx.WorkDir, "chapters.xml")
	if err := chapters.WriteFile(data, outPath); err != nil {
		return pipeline.StepOutcome{}, err
	}

	state.Chapters = &pipeline.ChaptersOutput{ChaptersXMLPath: outPath, Snapped: snapped}
	return pipeline.Success(), nil
}

// ValidateOutput implements pipeline.Step.
func (s *ShiftChaptersStep) ValidateOutput(pctx *pipeline.Context, state *pipeline.JobState) error {
	if state.Chapters == nil || state.Chapters.ChaptersXMLPath == "" {
		return vsgerrors.Newf("shift_chapters produced no output path for job %q", pctx.Job.JobID).
			Kind(vsgerrors.InvalidPlan).Build()
	}
	return nil
}
