package steps

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/mux"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/pipeline"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/vsgerrors"
)

// MuxStep renders the resolved MergePlan as an mkvmerge token stream and
// invokes mkvmerge to produce the merged output file.
type MuxStep struct {
	MkvmergePath string
}

// NewMuxStep returns a MuxStep bound to the given mkvmerge binary.
func NewMuxStep(mkvmergePath string) *MuxStep {
	return &MuxStep{MkvmergePath: mkvmergePath}
}

// Name implements pipeline.Step.
func (s *MuxStep) Name() string { return "mux" }

// ValidateInput implements pipeline.Step.
func (s *MuxStep) ValidateInput(pctx *pipeline.Context, state *pipeline.JobState) error {
	if state.Plan == nil {
		return vsgerrors.Newf("mux requires a build plan for job %q", pctx.Job.JobID).
			Kind(vsgerrors.InvalidPlan).Build()
	}
	return nil
}

// Execute implements pipeline.Step.
func (s *MuxStep) Execute(ctx context.Context, pctx *pipeline.Context, state *pipeline.JobState) (pipeline.StepOutcome, error) {
	plan := *state.Plan
	if state.Chapters != nil {
		plan.ChaptersXML = state.Chapters.ChaptersXMLPath
	}

	outputPath := filepath.Join(pctx.WorkDir, pctx.Job.JobID+".mkv")
	builder := mux.OptionsBuilder{
		Plan:        plan,
		Postprocess: pctx.Settings.Postprocess,
		OutputPath:  outputPath,
	}
	tokens := builder.Build()

	cmd := exec.CommandContext(ctx, s.MkvmergePath, tokens...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	logPath := filepath.Join(pctx.WorkDir, "mux.log")
	_ = writeMuxLog(logPath, tokens, stdout.String(), stderr.String())

	exitCode := 0
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}

		if rec := metricsRecorder(); rec != nil {
			rec.RecordMuxInvocation("failed")
		}

		return pipeline.StepOutcome{}, vsgerrors.New(runErr).
			Kind(vsgerrors.ExternalToolFailed).
			Context("tool", "mkvmerge").
			Context("exit_code", exitCode).
			Context("stderr_tail", tailString(stderr.String(), 2000)).
			Context("job", pctx.Job.JobID).
			Build()
	}

	if rec := metricsRecorder(); rec != nil {
		rec.RecordMuxInvocation("success")
	}

	state.Mux = &pipeline.MuxOutput{
		OutputPath: outputPath,
		ExitCode:   exitCode,
		Command:    s.MkvmergePath + " " + strings.Join(tokens, " "),
	}
	return pipeline.Success(), nil
}

// ValidateOutput implements pipeline.Step.
func (s *MuxStep) ValidateOutput(pctx *pipeline.Context, state *pipeline.JobState) error {
	if state.Mux == nil || state.Mux.OutputPath == "" {
		return vsgerrors.Newf("mux produced no output for job %q", pctx.Job.JobID).
			Kind(vsgerrors.InvalidPlan).Build()
	}
	return nil
}

func writeMuxLog(path string, tokens []string, stdout, stderr string) error {
	var b strings.Builder
	b.WriteString("command: mkvmerge " + strings.Join(tokens, " ") + "\n\n")
	b.WriteString("--- stdout ---\n")
	b.WriteString(stdout)
	b.WriteString("\n--- stderr ---\n")
	b.WriteString(stderr)
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func tailString(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
