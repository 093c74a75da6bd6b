package jobqueue_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/jobqueue"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/vsgerrors"
)

func TestDiscover_RequiresSource1AndSource2(t *testing.T) {
	clock := fixedClock{t: time.Now()}

	_, err := jobqueue.Discover(clock, map[string]string{"Source 2": "b.mkv"})
	require.Error(t, err)
	assert.True(t, vsgerrors.IsKind(err, vsgerrors.InvalidPlan))

	_, err = jobqueue.Discover(clock, map[string]string{"Source 1": "a.mkv"})
	require.Error(t, err)
	assert.True(t, vsgerrors.IsKind(err, vsgerrors.InvalidPlan))
}

func TestDiscover_ValidatesFilesExist(t *testing.T) {
	dir := t.TempDir()
	source1 := filepath.Join(dir, "movie.mkv")
	require.NoError(t, os.WriteFile(source1, []byte("x"), 0o644))

	_, err := jobqueue.Discover(fixedClock{t: time.Now()}, map[string]string{
		"Source 1": source1,
		"Source 2": filepath.Join(dir, "missing.mkv"),
	})
	require.Error(t, err)
	assert.True(t, vsgerrors.IsKind(err, vsgerrors.SourceNotFound))
}

func TestDiscover_CreatesJobWithDerivedName(t *testing.T) {
	dir := t.TempDir()
	source1 := filepath.Join(dir, "My Movie (2024).mkv")
	source2 := filepath.Join(dir, "commentary.mkv")
	require.NoError(t, os.WriteFile(source1, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(source2, []byte("x"), 0o644))

	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	jobs, err := jobqueue.Discover(fixedClock{t: now}, map[string]string{
		"Source 1": source1,
		"Source 2": source2,
	})
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	job := jobs[0]
	assert.Equal(t, "My Movie (2024)", job.Name)
	assert.Equal(t, jobqueue.StatusPending, job.Status)
	assert.Equal(t, now, job.CreatedAt)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, source1, job.Sources["Source 1"])
}

func TestDiscover_JobIDsAreUnique(t *testing.T) {
	dir := t.TempDir()
	source1 := filepath.Join(dir, "a.mkv")
	source2 := filepath.Join(dir, "b.mkv")
	require.NoError(t, os.WriteFile(source1, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(source2, []byte("x"), 0o644))

	clock := fixedClock{t: time.Now()}
	sources := map[string]string{"Source 1": source1, "Source 2": source2}

	first, err := jobqueue.Discover(clock, sources)
	require.NoError(t, err)
	second, err := jobqueue.Discover(clock, sources)
	require.NoError(t, err)

	assert.NotEqual(t, first[0].ID, second[0].ID)
}

func TestDiscover_OptionalSourcesIgnoredWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	source1 := filepath.Join(dir, "a.mkv")
	source2 := filepath.Join(dir, "b.mkv")
	require.NoError(t, os.WriteFile(source1, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(source2, []byte("x"), 0o644))

	jobs, err := jobqueue.Discover(fixedClock{t: time.Now()}, map[string]string{
		"Source 1": source1,
		"Source 2": source2,
		"Source 3": "",
	})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
}
