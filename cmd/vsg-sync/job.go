package vsgsync

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/conf"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/pipeline"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/pipeline/steps"
)

// addSourceFlag registers the repeatable --source key=path flag shared by
// analyze and mux, e.g. --source "Source 1=a.mkv" --source "Source 2=b.mkv".
func addSourceFlag(cmd *cobra.Command) *map[string]string {
	return cmd.Flags().StringToString("source", nil, `Source file, repeatable: --source "Source 1=a.mkv"`)
}

// buildJobContext assembles a pipeline.Context and fresh JobState for an
// ad-hoc run (not going through the job queue), creating its working
// directory under the OS temp dir. The returned cleanup func removes
// that directory and should be deferred by the caller.
func buildJobContext(settings *conf.Settings, logger *slog.Logger, sources map[string]string) (*pipeline.Context, *pipeline.JobState, func(), error) {
	if len(sources) == 0 {
		return nil, nil, nil, fmt.Errorf(`at least one --source is required, e.g. --source "Source 1=a.mkv"`)
	}

	jobID := uuid.NewString()
	workDir := filepath.Join(os.TempDir(), "vsg-sync", jobID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("create work dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(workDir) }

	pctx := &pipeline.Context{
		Job: pipeline.JobSpec{
			JobID:         jobID,
			PrimarySource: "Source 1",
			Sources:       sources,
		},
		Settings: settings,
		WorkDir:  workDir,
		Logger:   logger,
	}

	state := pipeline.NewJobState(jobID, time.Now())
	return pctx, state, cleanup, nil
}

// buildFullPipeline returns every step in execution order, wired against
// the configured tool binaries: probe, analyze, project, build the mux
// plan, shift chapters, and mux.
func buildFullPipeline(settings *conf.Settings) *pipeline.Pipeline {
	return pipeline.New(
		steps.NewProbeStep(settings.Tools.Mkvmerge),
		steps.NewAnalyzeStep(settings.Tools.FFmpeg),
		steps.NewProjectStep(),
		steps.NewBuildPlanStep(),
		steps.NewShiftChaptersStep(settings.Tools.Mkvextract, settings.Tools.FFprobe),
		steps.NewMuxStep(settings.Tools.Mkvmerge),
	)
}

// buildAnalysisPipeline returns only the measurement steps (probe,
// analyze, project) without building a plan or touching the muxer —
// used by the analyze command to report offsets without merging.
func buildAnalysisPipeline(settings *conf.Settings) *pipeline.Pipeline {
	return pipeline.New(
		steps.NewProbeStep(settings.Tools.Mkvmerge),
		steps.NewAnalyzeStep(settings.Tools.FFmpeg),
		steps.NewProjectStep(),
	)
}
