package statusapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/datastore"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/vsgerrors"
)

// JobSummary is the list-view representation of a job.
type JobSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

// ChunkResultDTO is the wire representation of one chunk's correlation
// result.
type ChunkResultDTO struct {
	Source     string  `json:"source"`
	ChunkIndex int     `json:"chunkIndex"`
	OffsetMs   int64   `json:"offsetMs"`
	Confidence float64 `json:"confidence"`
	Accepted   bool    `json:"accepted"`
}

// DelaySelectionDTO is the wire representation of a source's final
// selected offset.
type DelaySelectionDTO struct {
	Source   string `json:"source"`
	OffsetMs int64  `json:"offsetMs"`
	Strategy string `json:"strategy"`
	Stable   bool   `json:"stable"`
}

// JobDetail is the detail-view representation of a job, including its
// chunk results and delay selections.
type JobDetail struct {
	JobSummary
	Sources         map[string]string   `json:"sources"`
	ErrorMessage    string              `json:"errorMessage,omitempty"`
	ChunkResults    []ChunkResultDTO    `json:"chunkResults"`
	DelaySelections []DelaySelectionDTO `json:"delaySelections"`
}

func toJobSummary(job datastore.JobRecord) JobSummary {
	return JobSummary{
		ID:        job.ID,
		Name:      job.Name,
		Status:    job.Status,
		CreatedAt: job.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func toJobDetail(job *datastore.JobRecord) JobDetail {
	sources, _ := datastore.UnmarshalSources(job.SourcesJSON)

	chunks := make([]ChunkResultDTO, len(job.ChunkResults))
	for i, c := range job.ChunkResults {
		chunks[i] = ChunkResultDTO{
			Source:     c.Source,
			ChunkIndex: c.ChunkIndex,
			OffsetMs:   c.OffsetMs,
			Confidence: c.Confidence,
			Accepted:   c.Accepted,
		}
	}

	selections := make([]DelaySelectionDTO, len(job.DelaySelections))
	for i, d := range job.DelaySelections {
		selections[i] = DelaySelectionDTO{
			Source:   d.Source,
			OffsetMs: d.OffsetMs,
			Strategy: d.Strategy,
			Stable:   d.Stable,
		}
	}

	return JobDetail{
		JobSummary:      toJobSummary(*job),
		Sources:         sources,
		ErrorMessage:    job.ErrorMessage,
		ChunkResults:    chunks,
		DelaySelections: selections,
	}
}

// handleListJobs handles GET /api/v1/jobs.
func (s *Server) handleListJobs(c echo.Context) error {
	jobs, err := s.DS.ListJobs()
	if err != nil {
		s.Logger.Error("list jobs failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list jobs"})
	}

	summaries := make([]JobSummary, len(jobs))
	for i, job := range jobs {
		summaries[i] = toJobSummary(job)
	}

	return c.JSON(http.StatusOK, summaries)
}

// handleGetJob handles GET /api/v1/jobs/:id.
func (s *Server) handleGetJob(c echo.Context) error {
	id := c.Param("id")

	job, err := s.DS.GetJob(id)
	if err != nil {
		if vsgerrors.IsKind(err, vsgerrors.SourceNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
		}
		s.Logger.Error("get job failed", "job_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get job"})
	}

	return c.JSON(http.StatusOK, toJobDetail(job))
}
