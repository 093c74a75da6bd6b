package jobqueue_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/jobqueue"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/pipeline"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type orderStep struct {
	name  string
	order *[]string
	err   error
}

func (s *orderStep) Name() string { return s.name }
func (s *orderStep) ValidateInput(*pipeline.Context, *pipeline.JobState) error {
	return nil
}
func (s *orderStep) Execute(context.Context, *pipeline.Context, *pipeline.JobState) (pipeline.StepOutcome, error) {
	*s.order = append(*s.order, s.name)
	if s.err != nil {
		return pipeline.StepOutcome{}, s.err
	}
	return pipeline.Success(), nil
}
func (s *orderStep) ValidateOutput(*pipeline.Context, *pipeline.JobState) error {
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunAll_RunsJobsInQueueOrder(t *testing.T) {
	q := jobqueue.NewQueue()
	q.Add(
		jobqueue.Entry{ID: "job-1", Name: "first", Sources: map[string]string{"Source 1": "a.mkv", "Source 2": "b.mkv"}},
		jobqueue.Entry{ID: "job-2", Name: "second", Sources: map[string]string{"Source 1": "c.mkv", "Source 2": "d.mkv"}},
	)

	var order []string
	err := jobqueue.RunAll(context.Background(), q, nil, testLogger(), func(entry *jobqueue.Entry) *pipeline.Pipeline {
		return pipeline.New(&orderStep{name: entry.ID, order: &order})
	}, fixedClock{t: time.Now()})
	require.NoError(t, err)

	assert.Equal(t, []string{"job-1", "job-2"}, order)

	j1, ok := q.Get("job-1")
	require.True(t, ok)
	assert.Equal(t, jobqueue.StatusDone, j1.Status)
}

func TestRunAll_ContinuesAfterJobFailureAndReportsFirstError(t *testing.T) {
	q := jobqueue.NewQueue()
	q.Add(
		jobqueue.Entry{ID: "job-1", Sources: map[string]string{"Source 1": "a.mkv"}},
		jobqueue.Entry{ID: "job-2", Sources: map[string]string{"Source 1": "b.mkv"}},
	)

	var order []string
	boom := errors.New("boom")
	err := jobqueue.RunAll(context.Background(), q, nil, testLogger(), func(entry *jobqueue.Entry) *pipeline.Pipeline {
		var err error
		if entry.ID == "job-1" {
			err = boom
		}
		return pipeline.New(&orderStep{name: entry.ID, order: &order, err: err})
	}, fixedClock{t: time.Now()})

	require.Error(t, err)
	assert.ErrorContains(t, err, "job-1")

	j1, _ := q.Get("job-1")
	j2, _ := q.Get("job-2")
	assert.Equal(t, jobqueue.StatusError, j1.Status)
	assert.Equal(t, jobqueue.StatusDone, j2.Status)
	assert.Equal(t, []string{"job-1", "job-2"}, order)
}

func TestQueue_AddAndGet(t *testing.T) {
	q := jobqueue.NewQueue()
	assert.Equal(t, 0, q.Len())

	q.Add(jobqueue.Entry{ID: "job-1"})
	assert.Equal(t, 1, q.Len())

	entry, ok := q.Get("job-1")
	require.True(t, ok)
	assert.Equal(t, "job-1", entry.ID)

	_, ok = q.Get("missing")
	assert.False(t, ok)
}
