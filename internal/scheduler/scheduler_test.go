package scheduler

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name  string
	err   error
	panic bool
	runs  int
}

func (j *stubJob) Name() string { return j.name }

func (j *stubJob) Run() error {
	j.runs++
	if j.panic {
		panic("selector gone")
	}
	return j.err
}

func TestTriggerAllReportsPerJobOutcome(t *testing.T) {
	s := New(zerolog.Nop())

	good := &stubJob{name: "earnings"}
	bad := &stubJob{name: "economic_data", err: errors.New("page not scrapeable")}
	require.NoError(t, s.AddJob("@hourly", good))
	require.NoError(t, s.AddJob("@hourly", bad))

	results := s.TriggerAll()

	assert.Equal(t, map[string]string{
		"earnings":      "success",
		"economic_data": "failed: page not scrapeable",
	}, results)
	assert.Equal(t, 1, good.runs)
	assert.Equal(t, 1, bad.runs)
}

func TestTriggerAllContainsPanics(t *testing.T) {
	s := New(zerolog.Nop())

	panicky := &stubJob{name: "fear_index", panic: true}
	after := &stubJob{name: "market_holidays"}
	require.NoError(t, s.AddJob("@hourly", panicky))
	require.NoError(t, s.AddJob("@hourly", after))

	results := s.TriggerAll()

	assert.Equal(t, "failed: panic: selector gone", results["fear_index"])
	assert.Equal(t, "success", results["market_holidays"])
	assert.Equal(t, 1, after.runs, "a panicking job must not abort the batch")
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	err := s.AddJob("not a schedule", &stubJob{name: "earnings"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "earnings")
}

func TestRunNow(t *testing.T) {
	s := New(zerolog.Nop())

	job := &stubJob{name: "premarket_movers", err: errors.New("no api key")}
	err := s.RunNow(job)
	require.Error(t, err)
	assert.Equal(t, 1, job.runs)

	job.err = nil
	require.NoError(t, s.RunNow(job))
}

func TestJobsReportsLastRun(t *testing.T) {
	s := New(zerolog.Nop())

	good := &stubJob{name: "earnings"}
	bad := &stubJob{name: "fear_index", err: errors.New("gauge missing")}
	require.NoError(t, s.AddJob("0 0 4 * * *", good))
	require.NoError(t, s.AddJob("@hourly", bad))

	// Nothing has run yet
	statuses := s.Jobs()
	require.Len(t, statuses, 2)
	assert.Equal(t, "earnings", statuses[0].Name)
	assert.Equal(t, "0 0 4 * * *", statuses[0].Schedule)
	assert.Nil(t, statuses[0].LastRun)

	s.TriggerAll()

	statuses = s.Jobs()
	require.NotNil(t, statuses[0].LastRun)
	assert.Empty(t, statuses[0].LastRun.Error)
	assert.NotEmpty(t, statuses[0].LastRun.RunID)
	require.NotNil(t, statuses[1].LastRun)
	assert.Equal(t, "gauge missing", statuses[1].LastRun.Error)
}
