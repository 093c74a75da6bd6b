// Package pipeline runs a job's steps (probe, analyze, project, build
// plan, shift chapters, mux) in a fixed order, tracking which steps ran
// and reporting progress as it goes.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/conf"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/vsgerrors"
)

// JobSpec identifies a job's inputs: the job ID, the primary source's key,
// and the source files keyed by source name. It carries no output layout;
// the build-plan step derives one from the probed tracks.
type JobSpec struct {
	JobID         string
	PrimarySource string
	Sources       map[string]string // source key -> file path
}

// ProgressFunc reports step-level progress: step name, percent complete
// (0-100), and a human-readable message.
type ProgressFunc func(step string, percent int, message string)

// Context is the read-only state shared by every step in a single job
// run. Steps read from it but never mutate it; accumulated results go in
// JobState instead.
type Context struct {
	Job      JobSpec
	Settings *conf.Settings
	WorkDir  string
	Logger   *slog.Logger
	Progress ProgressFunc
}

// ReportProgress invokes the progress callback, if one is set.
func (c *Context) ReportProgress(step string, percent int, message string) {
	if c.Progress != nil {
		c.Progress(step, percent, message)
	}
}

// StepOutcome is the result of running one step.
type StepOutcome struct {
	skipped bool
	reason  string
}

// Success reports a step that ran and produced output.
func Success() StepOutcome { return StepOutcome{} }

// Skipped reports a step that declined to run because its preconditions
// weren't met — not an error, just nothing to do.
func Skipped(reason string) StepOutcome { return StepOutcome{skipped: true, reason: reason} }

// IsSkipped reports whether the step was skipped.
func (o StepOutcome) IsSkipped() bool { return o.skipped }

// Reason returns the skip reason, if any.
func (o StepOutcome) Reason() string { return o.reason }

// Step is one stage of the pipeline. Execute does the work and reports
// whether it ran or was skipped; ValidateInput/ValidateOutput let a step
// assert preconditions and postconditions around that work.
type Step interface {
	Name() string
	ValidateInput(pctx *Context, state *JobState) error
	Execute(ctx context.Context, pctx *Context, state *JobState) (StepOutcome, error)
	ValidateOutput(pctx *Context, state *JobState) error
}

// Pipeline runs a fixed, ordered sequence of steps against one job.
type Pipeline struct {
	steps     []Step
	cancelled atomic.Bool
}

// New returns a Pipeline that runs steps in the given order.
func New(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// StepNames returns the configured step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// CancelHandle lets a caller request cancellation of an in-flight Run from
// another goroutine; the pipeline stops at the next step boundary.
type CancelHandle struct {
	flag *atomic.Bool
}

// Cancel requests that the pipeline stop before its next step.
func (h CancelHandle) Cancel() { h.flag.Store(true) }

// IsCancelled reports whether cancellation has been requested.
func (h CancelHandle) IsCancelled() bool { return h.flag.Load() }

// CancelHandle returns a handle that can cancel this pipeline's Run.
func (p *Pipeline) CancelHandle() CancelHandle {
	return CancelHandle{flag: &p.cancelled}
}

// RunResult reports which steps ran and which were skipped.
type RunResult struct {
	StepsCompleted []string
	StepsSkipped   []string
}

// AllCompleted reports whether every step ran to completion (none
// skipped).
func (r RunResult) AllCompleted() bool { return len(r.StepsSkipped) == 0 }

// TotalSteps returns the number of steps that executed (completed or
// skipped).
func (r RunResult) TotalSteps() int { return len(r.StepsCompleted) + len(r.StepsSkipped) }

// Run executes every step in order against state, stopping at the first
// error or cancellation. Each step runs ValidateInput, Execute, and — if
// Execute reports Success — ValidateOutput.
func (p *Pipeline) Run(ctx context.Context, pctx *Context, state *JobState) (RunResult, error) {
	result := RunResult{}
	total := len(p.steps)

	for i, step := range p.steps {
		name := step.Name()

		if p.cancelled.Load() || ctx.Err() != nil {
			pctx.Logger.Warn("pipeline cancelled before step", "job", pctx.Job.JobID, "step", name)
			return result, vsgerrors.Newf("job %q cancelled before step %q", pctx.Job.JobID, name).
				Kind(vsgerrors.Cancelled).
				Context("job", pctx.Job.JobID).
				Context("step", name).
				Build()
		}

		percent := int((float64(i) / float64(total)) * 100.0)
		pctx.ReportProgress(name, percent, fmt.Sprintf("starting %s", name))

		if err := step.ValidateInput(pctx, state); err != nil {
			return result, stepFailed(pctx.Job.JobID, name, "validate-input", err)
		}

		outcome, err := step.Execute(ctx, pctx, state)
		if err != nil {
			return result, stepFailed(pctx.Job.JobID, name, "execute", err)
		}

		if outcome.IsSkipped() {
			pctx.Logger.Info("step skipped", "job", pctx.Job.JobID, "step", name, "reason", outcome.Reason())
			result.StepsSkipped = append(result.StepsSkipped, name)
			continue
		}

		if err := step.ValidateOutput(pctx, state); err != nil {
			return result, stepFailed(pctx.Job.JobID, name, "validate-output", err)
		}

		pctx.Logger.Info("step completed", "job", pctx.Job.JobID, "step", name)
		result.StepsCompleted = append(result.StepsCompleted, name)
	}

	pctx.ReportProgress("complete", 100, "pipeline finished")
	pctx.Logger.Info("pipeline completed", "job", pctx.Job.JobID)
	return result, nil
}

// stepFailed wraps cause with job/step/phase context using a plain %w
// wrap rather than a new EnhancedError, so vsgerrors.IsKind still sees
// through to cause's original Kind.
func stepFailed(jobID, step, phase string, cause error) error {
	return fmt.Errorf("job %q failed at step %q (%s): %w", jobID, step, phase, cause)
}
