package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/uniconsult/internal/pkg/metrics"
)

type countingJob struct {
	calls atomic.Int32
	err   error
}

func (j *countingJob) CompleteElapsed(context.Context) (int64, error) {
	j.calls.Add(1)
	return 2, j.err
}

func (j *countingJob) CleanupSessions(context.Context) (int64, error) {
	j.calls.Add(1)
	return 1, j.err
}

func TestCronManager_RunsScheduledJobs(t *testing.T) {
	completer, cleaner := &countingJob{}, &countingJob{}
	m := NewCronManager(completer, cleaner, Schedules{Completion: "@every 1s", SessionCleanup: ""}, zerolog.Nop())
	require.NoError(t, m.Start())
	defer m.Stop()

	assert.Eventually(t, func() bool { return completer.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	assert.Zero(t, cleaner.calls.Load(), "empty schedule disables the job")
}

func TestCronManager_InvalidSchedule(t *testing.T) {
	m := NewCronManager(&countingJob{}, &countingJob{}, Schedules{Completion: "not a schedule"}, zerolog.Nop())
	err := m.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), JobCompleteElapsed)
}

func TestCronManager_RunNowRecordsOutcome(t *testing.T) {
	m := NewCronManager(&countingJob{}, &countingJob{}, Schedules{}, zerolog.Nop())

	errorsBefore := testutil.ToFloat64(metrics.JobRunsTotal.WithLabelValues(JobSessionCleanup, "error"))
	successBefore := testutil.ToFloat64(metrics.JobRunsTotal.WithLabelValues(JobSessionCleanup, "success"))

	m.RunNow(JobSessionCleanup, (&countingJob{err: errors.New("db down")}).CleanupSessions)
	m.RunNow(JobSessionCleanup, (&countingJob{}).CleanupSessions)

	assert.Equal(t, errorsBefore+1, testutil.ToFloat64(metrics.JobRunsTotal.WithLabelValues(JobSessionCleanup, "error")))
	assert.Equal(t, successBefore+1, testutil.ToFloat64(metrics.JobRunsTotal.WithLabelValues(JobSessionCleanup, "success")))
}

func TestCronManager_StopCancelsRunContext(t *testing.T) {
	m := NewCronManager(&countingJob{}, &countingJob{}, Schedules{}, zerolog.Nop())
	require.NoError(t, m.Start())
	m.Stop()
	m.Stop()

	var seen error
	m.RunNow("probe", func(ctx context.Context) (int64, error) {
		seen = ctx.Err()
		return 0, nil
	})
	assert.ErrorIs(t, seen, context.Canceled)
}
