// interfaces.go: this code defines the interface for the database operations
package datastore

import "gorm.io/gorm"

//go:generate mockery

// Interface is the persistence surface the pipeline and job queue use to
// record and query batch history. SQLiteStore is the only implementation;
// the interface exists so callers (and tests) can substitute an in-memory
// fake.
type Interface interface {
	Open() error
	Close() error

	SaveJob(job *JobRecord) error
	UpdateJobStatus(jobID, status, errorMessage string) error
	GetJob(jobID string) (*JobRecord, error)
	ListJobs() ([]JobRecord, error)

	SaveChunkResults(results []ChunkResultRecord) error
	SaveDelaySelection(selection *DelaySelectionRecord) error

	SaveStructureSignature(sig *StructureSignatureRecord) error
	FindJobsByStructureHash(hash string) ([]JobRecord, error)
}

// DataStore embeds the shared GORM handle and metrics recorder that every
// concrete store (currently just SQLiteStore) builds on.
type DataStore struct {
	DB      *gorm.DB
	metrics Metrics
}

// SetMetrics installs a metrics recorder used by the GORM logger to
// report query durations and error counts.
func (ds *DataStore) SetMetrics(m Metrics) {
	ds.metrics = m
}
