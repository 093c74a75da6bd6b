// Package datastore persists job records, chunk-level correlation results,
// delay selections, and structure signatures to a GORM-backed SQLite
// database, so a batch run's history survives process restarts.
package datastore

import "time"

// JobRecord is the persisted state of one sync job: its source files, the
// layout it was assigned, and its terminal status.
type JobRecord struct {
	ID           string `gorm:"primaryKey;size:40"`
	Name         string `gorm:"index;size:255"`
	SourcesJSON  string `gorm:"type:text"` // source key -> file path, canonical JSON
	LayoutID     string `gorm:"index;size:40"`
	Status       string `gorm:"index;size:20"`
	ErrorMessage string `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"index"`
	StartedAt    *time.Time
	FinishedAt   *time.Time

	ChunkResults      []ChunkResultRecord      `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	DelaySelections   []DelaySelectionRecord   `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
}

// ChunkResultRecord is one chunk's correlation outcome for one non-primary
// source, linked to the job it was computed for.
type ChunkResultRecord struct {
	ID         uint   `gorm:"primaryKey"`
	JobID      string `gorm:"index;not null;size:40;constraint:OnDelete:CASCADE"`
	Source     string `gorm:"index;size:255"`
	ChunkIndex int
	OffsetMs   int64
	Confidence float64
	Accepted   bool
	CreatedAt  time.Time
}

// DelaySelectionRecord is the final chosen offset for one source, after
// the selector strategy has resolved the chunk population.
type DelaySelectionRecord struct {
	ID         uint   `gorm:"primaryKey"`
	JobID      string `gorm:"uniqueIndex:idx_delay_job_source;not null;size:40;constraint:OnDelete:CASCADE"`
	Source     string `gorm:"uniqueIndex:idx_delay_job_source;size:255"`
	OffsetMs   int64
	Strategy   string `gorm:"size:50"`
	Stable     bool
	CreatedAt  time.Time
}

// StructureSignatureRecord indexes a job's track-structure hash so future
// discovery runs can recognize an equivalent source layout without
// re-probing every file.
type StructureSignatureRecord struct {
	ID            uint   `gorm:"primaryKey"`
	JobID         string `gorm:"index;size:40"`
	Hash          string `gorm:"uniqueIndex;size:64;not null"`
	StructureJSON string `gorm:"type:text"`
	CreatedAt     time.Time
}
