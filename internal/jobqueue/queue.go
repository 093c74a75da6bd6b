package jobqueue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/conf"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/pipeline"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/vsgerrors"
)

// Queue holds discovered jobs in submission order. Unlike the interactive
// GUI queue it's modeled on, there's no clipboard or manual reordering —
// jobs run strictly in the order they were added.
type Queue struct {
	entries []*Entry
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Add appends entries to the queue.
func (q *Queue) Add(entries ...Entry) {
	for i := range entries {
		e := entries[i]
		q.entries = append(q.entries, &e)
	}
}

// Len returns the number of jobs in the queue.
func (q *Queue) Len() int { return len(q.entries) }

// Get returns the job with the given ID, if present.
func (q *Queue) Get(id string) (*Entry, bool) {
	for _, e := range q.entries {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// All returns every job currently in the queue, in run order.
func (q *Queue) All() []*Entry {
	return append([]*Entry(nil), q.entries...)
}

// PipelineFactory builds the ordered pipeline steps to run for a job. It's
// injected so the batch runner doesn't need to know the concrete step
// implementations (probe, analyze, project, plan, shift chapters, mux).
type PipelineFactory func(entry *Entry) *pipeline.Pipeline

// RunAll executes every queued job strictly one at a time, in queue order.
// A job's failure is recorded on its Entry and does not stop the batch;
// the first error (if any) after all jobs have run is returned wrapped
// with the failing job's ID, matching the "report and continue" behavior
// expected of an unattended batch tool.
func RunAll(ctx context.Context, q *Queue, settings *conf.Settings, logger *slog.Logger, buildPipeline PipelineFactory, now Clock) error {
	var firstErr error

	for _, entry := range q.entries {
		if ctx.Err() != nil {
			entry.Status = StatusError
			entry.ErrorMessage = "queue run cancelled"
			if firstErr == nil {
				firstErr = vsgerrors.Newf("job queue run cancelled before job %q", entry.ID).
					Kind(vsgerrors.Cancelled).
					Context("job", entry.ID).
					Build()
			}
			continue
		}

		entry.Status = StatusRunning
		logger.Info("job starting", "job", entry.ID, "name", entry.Name)

		p := buildPipeline(entry)
		pctx := &pipeline.Context{
			Job: pipeline.JobSpec{
				JobID:         entry.ID,
				PrimarySource: primarySourceKey,
				Sources:       entry.Sources,
			},
			Settings: settings,
			Logger:   logger,
		}
		state := pipeline.NewJobState(entry.ID, now.Now())

		_, err := p.Run(ctx, pctx, state)
		if err != nil {
			entry.Status = StatusError
			entry.ErrorMessage = err.Error()
			logger.Error("job failed", "job", entry.ID, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("job %q failed: %w", entry.ID, err)
			}
			continue
		}

		entry.Status = StatusDone
		logger.Info("job completed", "job", entry.ID)
	}

	return firstErr
}
