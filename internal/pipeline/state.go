package pipeline

import (
	"time"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/analysis/selector"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/analysis/stability"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/container"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/delay"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/mux"
)

// JobState accumulates each step's output as the pipeline runs. It is a
// write-once manifest: a step may set its own section but should not
// overwrite another step's.
type JobState struct {
	JobID     string
	StartedAt time.Time

	Probe     *ProbeOutput
	Analysis  *AnalysisOutput
	Projection *ProjectionOutput
	Plan      *mux.MergePlan
	Chapters  *ChaptersOutput
	Mux       *MuxOutput
}

// NewJobState returns a fresh state for jobID, timestamped now.
func NewJobState(jobID string, now time.Time) *JobState {
	return &JobState{JobID: jobID, StartedAt: now}
}

// HasAnalysis reports whether the Analyze step has completed.
func (s *JobState) HasAnalysis() bool { return s.Analysis != nil }

// HasProjection reports whether the Project step has completed.
func (s *JobState) HasProjection() bool { return s.Projection != nil }

// ProbeOutput is the per-source container metadata gathered by the Probe
// step.
type ProbeOutput struct {
	BySource map[string]container.ProbeResult
}

// AnalysisOutput is the per-source delay selection produced by the
// Analyze step.
type AnalysisOutput struct {
	Selections map[string]selector.Selection
	Metrics    map[string]stability.Metrics
}

// ProjectionOutput is the sync-mode-adjusted delay projection produced by
// the Project step.
type ProjectionOutput struct {
	Projection delay.Projection
}

// ChaptersOutput is the chapter XML path and whether it was snapped to
// keyframes, produced by the ShiftChapters step.
type ChaptersOutput struct {
	ChaptersXMLPath string
	Snapped         bool
}

// MuxOutput is the final merge result produced by the Mux step.
type MuxOutput struct {
	OutputPath string
	ExitCode   int
	Command    string
}
