// Package datastore provides database operations for vsg-sync.
package datastore

import (
	"encoding/json"
	"time"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/vsgerrors"
	"gorm.io/gorm"
)

// SaveJob inserts or updates a job record. SourcesJSON is stored as given;
// callers marshal the source map with MarshalSources first.
func (s *SQLiteStore) SaveJob(job *JobRecord) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if err := s.DB.Save(job).Error; err != nil {
		return vsgerrors.New(err).
			Kind(vsgerrors.IoError).
			Context("operation", "save_job").
			Context("job_id", job.ID).
			Build()
	}
	return nil
}

// UpdateJobStatus updates a job's status and error message, and stamps
// started_at on "running" or finished_at on "done"/"error". Other fields
// are left untouched.
func (s *SQLiteStore) UpdateJobStatus(jobID, status, errorMessage string) error {
	updates := map[string]any{"status": status, "error_message": errorMessage}
	now := time.Now()
	switch status {
	case "running":
		updates["started_at"] = &now
	case "done", "error":
		updates["finished_at"] = &now
	}

	if err := s.DB.Model(&JobRecord{}).Where("id = ?", jobID).Updates(updates).Error; err != nil {
		return vsgerrors.New(err).
			Kind(vsgerrors.IoError).
			Context("operation", "update_job_status").
			Context("job_id", jobID).
			Build()
	}
	return nil
}

// GetJob retrieves a job by ID, including its chunk results and delay
// selections.
func (s *SQLiteStore) GetJob(jobID string) (*JobRecord, error) {
	var job JobRecord
	err := s.DB.Preload("ChunkResults").Preload("DelaySelections").
		First(&job, "id = ?", jobID).Error
	if err != nil {
		if vsgerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, vsgerrors.Newf("job %q not found", jobID).
				Kind(vsgerrors.SourceNotFound).
				Context("job_id", jobID).
				Build()
		}
		return nil, vsgerrors.New(err).
			Kind(vsgerrors.IoError).
			Context("operation", "get_job").
			Context("job_id", jobID).
			Build()
	}
	return &job, nil
}

// ListJobs returns every job, most recently created first.
func (s *SQLiteStore) ListJobs() ([]JobRecord, error) {
	var jobs []JobRecord
	if err := s.DB.Order("created_at desc").Find(&jobs).Error; err != nil {
		return nil, vsgerrors.New(err).
			Kind(vsgerrors.IoError).
			Context("operation", "list_jobs").
			Build()
	}
	return jobs, nil
}

// SaveChunkResults bulk-inserts per-chunk correlation results for a job.
func (s *SQLiteStore) SaveChunkResults(results []ChunkResultRecord) error {
	if len(results) == 0 {
		return nil
	}
	now := time.Now()
	for i := range results {
		if results[i].CreatedAt.IsZero() {
			results[i].CreatedAt = now
		}
	}
	if err := s.DB.Create(&results).Error; err != nil {
		return vsgerrors.New(err).
			Kind(vsgerrors.IoError).
			Context("operation", "save_chunk_results").
			Build()
	}
	return nil
}

// SaveDelaySelection upserts the final selected offset for one job/source
// pair.
func (s *SQLiteStore) SaveDelaySelection(selection *DelaySelectionRecord) error {
	if selection.CreatedAt.IsZero() {
		selection.CreatedAt = time.Now()
	}
	err := s.DB.Where("job_id = ? AND source = ?", selection.JobID, selection.Source).
		Assign(selection).
		FirstOrCreate(selection).Error
	if err != nil {
		return vsgerrors.New(err).
			Kind(vsgerrors.IoError).
			Context("operation", "save_delay_selection").
			Context("job_id", selection.JobID).
			Build()
	}
	return nil
}

// SaveStructureSignature records a job's track-structure hash, skipping
// the insert if that exact hash is already on file.
func (s *SQLiteStore) SaveStructureSignature(sig *StructureSignatureRecord) error {
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = time.Now()
	}
	err := s.DB.Where("hash = ?", sig.Hash).FirstOrCreate(sig).Error
	if err != nil {
		return vsgerrors.New(err).
			Kind(vsgerrors.IoError).
			Context("operation", "save_structure_signature").
			Context("hash", sig.Hash).
			Build()
	}
	return nil
}

// FindJobsByStructureHash returns every job whose structure signature
// matches hash, oldest first — candidates for reusing a previous layout.
func (s *SQLiteStore) FindJobsByStructureHash(hash string) ([]JobRecord, error) {
	var sigs []StructureSignatureRecord
	if err := s.DB.Where("hash = ?", hash).Find(&sigs).Error; err != nil {
		return nil, vsgerrors.New(err).
			Kind(vsgerrors.IoError).
			Context("operation", "find_jobs_by_structure_hash").
			Context("hash", hash).
			Build()
	}

	jobIDs := make([]string, len(sigs))
	for i, sig := range sigs {
		jobIDs[i] = sig.JobID
	}

	var jobs []JobRecord
	if len(jobIDs) == 0 {
		return jobs, nil
	}
	if err := s.DB.Where("id IN ?", jobIDs).Order("created_at asc").Find(&jobs).Error; err != nil {
		return nil, vsgerrors.New(err).
			Kind(vsgerrors.IoError).
			Context("operation", "find_jobs_by_structure_hash").
			Build()
	}
	return jobs, nil
}

// MarshalSources canonicalizes a source map to JSON for JobRecord.SourcesJSON.
func MarshalSources(sources map[string]string) (string, error) {
	b, err := json.Marshal(sources)
	if err != nil {
		return "", vsgerrors.New(err).
			Kind(vsgerrors.IoError).
			Context("operation", "marshal_sources").
			Build()
	}
	return string(b), nil
}

// UnmarshalSources parses JobRecord.SourcesJSON back into a source map.
func UnmarshalSources(sourcesJSON string) (map[string]string, error) {
	sources := make(map[string]string)
	if sourcesJSON == "" {
		return sources, nil
	}
	if err := json.Unmarshal([]byte(sourcesJSON), &sources); err != nil {
		return nil, vsgerrors.New(err).
			Kind(vsgerrors.ParseError).
			Context("operation", "unmarshal_sources").
			Build()
	}
	return sources, nil
}
