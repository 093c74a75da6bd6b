package vsgsync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/datastore"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/jobqueue"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/pipeline"
)

// muxCommand runs the full pipeline — probe, analyze, project, build
// plan, shift chapters, mux — for one job given on the command line, or
// for a batch of jobs read from a JSON file when --batch is set.
func muxCommand(state *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mux",
		Short: "Sync and merge a set of sources into one container",
	}
	cmd.SilenceUsage = true
	sources := addSourceFlag(cmd)
	batchFile := cmd.Flags().String("batch", "", "Path to a JSON file listing multiple jobs, each {\"Source 1\": \"a.mkv\", ...}")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if *batchFile != "" {
			return runBatch(cmd.Context(), state, *batchFile)
		}
		return runSingle(state, *sources)
	}

	return cmd
}

func runSingle(state *appState, sources map[string]string) error {
	entries, err := jobqueue.Discover(jobqueue.RealClock{}, sources)
	if err != nil {
		return err
	}
	entry := entries[0]

	pctx, jobState, cleanup, err := buildJobContext(state.settings, state.logger, entry.Sources)
	if err != nil {
		return err
	}
	defer cleanup()
	pctx.Job.JobID = entry.ID

	sourcesJSON, err := datastore.MarshalSources(entry.Sources)
	if err != nil {
		return err
	}
	record := &datastore.JobRecord{
		ID:          entry.ID,
		Name:        entry.Name,
		SourcesJSON: sourcesJSON,
		Status:      string(jobqueue.StatusRunning),
		CreatedAt:   entry.CreatedAt,
	}
	if err := state.store.SaveJob(record); err != nil {
		return err
	}

	p := buildFullPipeline(state.settings)
	_, runErr := p.Run(context.Background(), pctx, jobState)
	if runErr != nil {
		_ = state.store.UpdateJobStatus(entry.ID, string(jobqueue.StatusError), runErr.Error())
		return runErr
	}
	if err := state.store.UpdateJobStatus(entry.ID, string(jobqueue.StatusDone), ""); err != nil {
		return err
	}

	if jobState.Mux != nil {
		fmt.Printf("job %s done: %s\n", entry.ID, jobState.Mux.OutputPath)
	}
	return nil
}

func runBatch(ctx context.Context, state *appState, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read batch file: %w", err)
	}

	var jobs []map[string]string
	if err := json.Unmarshal(data, &jobs); err != nil {
		return fmt.Errorf("parse batch file: %w", err)
	}

	queue := jobqueue.NewQueue()
	for _, sources := range jobs {
		entries, err := jobqueue.Discover(jobqueue.RealClock{}, sources)
		if err != nil {
			return err
		}
		queue.Add(entries...)
	}

	buildPipeline := jobqueue.PipelineFactory(func(entry *jobqueue.Entry) *pipeline.Pipeline {
		return buildFullPipeline(state.settings)
	})

	if err := jobqueue.RunAll(ctx, queue, state.settings, state.logger, buildPipeline, jobqueue.RealClock{}); err != nil {
		state.logger.Error("batch run finished with errors", "error", err)
	}

	for _, entry := range queue.All() {
		fmt.Printf("%-36s %-10s %s\n", entry.ID, entry.Status, entry.Name)
		record := &datastore.JobRecord{
			ID:     entry.ID,
			Name:   entry.Name,
			Status: string(entry.Status),
		}
		if sourcesJSON, mErr := datastore.MarshalSources(entry.Sources); mErr == nil {
			record.SourcesJSON = sourcesJSON
		}
		record.CreatedAt = entry.CreatedAt
		record.ErrorMessage = entry.ErrorMessage
		if err := state.store.SaveJob(record); err != nil {
			state.logger.Error("failed to persist batch job record", "job", entry.ID, "error", err)
		}
	}

	return nil
}
