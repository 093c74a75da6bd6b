package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestRecorder_RecordOperation(t *testing.T) {
	recorder := NewTestRecorder()
	recorder.RecordOperation("correlate", "success")
	recorder.RecordOperation("correlate", "success")
	recorder.RecordOperation("correlate", "error")

	assert.Equal(t, 2, recorder.GetOperationCount("correlate", "success"))
	assert.Equal(t, 1, recorder.GetOperationCount("correlate", "error"))
	assert.Equal(t, 0, recorder.GetOperationCount("mux", "success"))
}

func TestTestRecorder_RecordDuration(t *testing.T) {
	recorder := NewTestRecorder()
	recorder.RecordDuration("correlate", 0.1)
	recorder.RecordDuration("correlate", 0.2)

	durations := recorder.GetDurations("correlate")
	require.Len(t, durations, 2)
	assert.InDelta(t, 0.1, durations[0], 0.001)
	assert.InDelta(t, 0.2, durations[1], 0.001)

	assert.Nil(t, recorder.GetDurations("nonexistent"))
}

func TestTestRecorder_RecordError(t *testing.T) {
	recorder := NewTestRecorder()
	recorder.RecordError("mux", "exit_code_1")
	recorder.RecordError("mux", "exit_code_1")

	assert.Equal(t, 2, recorder.GetErrorCount("mux", "exit_code_1"))
	assert.Equal(t, 0, recorder.GetErrorCount("mux", "timeout"))
}

func TestTestRecorder_Reset(t *testing.T) {
	recorder := NewTestRecorder()
	recorder.RecordOperation("op", "success")
	require.True(t, recorder.HasRecordedMetrics())

	recorder.Reset()
	assert.False(t, recorder.HasRecordedMetrics())
}

func TestTestRecorder_ThreadSafety(t *testing.T) {
	recorder := NewTestRecorder()
	done := make(chan struct{})
	const goroutines, perGoroutine = 10, 50

	for range goroutines {
		go func() {
			for range perGoroutine {
				recorder.RecordOperation("concurrent", "success")
			}
			done <- struct{}{}
		}()
	}
	for range goroutines {
		<-done
	}

	assert.Equal(t, goroutines*perGoroutine, recorder.GetOperationCount("concurrent", "success"))
}

func TestNoOpRecorder_DoesNotPanic(t *testing.T) {
	recorder := NewNoOpRecorder()
	recorder.RecordOperation("op", "success")
	recorder.RecordDuration("op", 0.1)
	recorder.RecordError("op", "failure")
}

func TestRecorder_InterfaceSatisfiedByBothImplementations(t *testing.T) {
	var _ Recorder = (*TestRecorder)(nil)
	var _ Recorder = (*NoOpRecorder)(nil)
}
