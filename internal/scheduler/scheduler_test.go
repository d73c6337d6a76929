package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/how3io/how3-backend/pkg/config"
	"github.com/how3io/how3-backend/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	err      error
}

func (j *stubJob) Name() string                  { return j.name }
func (j *stubJob) Schedule() string              { return j.schedule }
func (j *stubJob) Run(ctx context.Context) error { return j.err }

func testScheduler() *Scheduler {
	cfg := &config.Config{LogLevel: "error", LogFormat: "console"}
	return New(logger.New(cfg))
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := testScheduler()

	job := &stubJob{name: "scoring_pass", schedule: "@every 1h"}
	require.NoError(t, s.AddJob(job))

	err := s.AddJob(&stubJob{name: "scoring_pass", schedule: "@every 2h"})
	assert.Error(t, err)
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := testScheduler()

	err := s.AddJob(&stubJob{name: "bad", schedule: "not a schedule"})
	assert.Error(t, err)
}

func TestRunJobUnknown(t *testing.T) {
	s := testScheduler()

	assert.Error(t, s.RunJob("missing"))
}

func TestJobHistoryTrimsToHundred(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{JobName: "data_refresh", Success: i%2 == 0})
	}

	assert.Len(t, h.Results, 100)
	assert.Len(t, h.GetLatestResults(10), 10)
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 0.01)
}
