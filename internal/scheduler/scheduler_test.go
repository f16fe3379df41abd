package scheduler

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler() *Scheduler {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewScheduler(nil, nil, logger)
}

func TestStartWithoutJobs(t *testing.T) {
	s := newTestScheduler()
	err := s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no jobs scheduled")
	assert.False(t, s.IsRunning())
}

func TestScheduleAndStartStop(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.ScheduleSeasonSync("0 3 * * *", "ergast", 2020))
	require.NoError(t, s.SchedulePipelineRefresh("30 3 * * *"))
	require.Len(t, s.Entries(), 2)

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.False(t, s.GetNextRun().IsZero())

	// Jobs cannot be added while running
	err := s.ScheduleSeasonSync("0 4 * * *", "ergast", 2020)
	require.Error(t, err)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())

	// Stopping twice is a no-op
	require.NoError(t, s.Stop())
}

func TestScheduleInvalidExpression(t *testing.T) {
	s := newTestScheduler()
	err := s.SchedulePipelineRefresh("not a cron expression")
	require.Error(t, err)
}
