package jobs

import (
	"context"
	"fmt"

	"github.com/how3io/how3-backend/internal/pipeline"
	"github.com/how3io/how3-backend/pkg/logger"
)

// ScoringPassJob recomputes scores for the whole catalog. Scheduled to run
// after the data refresh so scores reflect the freshest observations.
type ScoringPassJob struct {
	runner   *pipeline.Runner
	logger   *logger.Logger
	schedule string
}

// NewScoringPassJob creates a new scoring pass job
func NewScoringPassJob(runner *pipeline.Runner, schedule string, log *logger.Logger) *ScoringPassJob {
	return &ScoringPassJob{
		runner:   runner,
		logger:   log,
		schedule: schedule,
	}
}

// Name returns the job name
func (j *ScoringPassJob) Name() string {
	return "scoring_pass"
}

// Schedule returns the cron schedule
func (j *ScoringPassJob) Schedule() string {
	return j.schedule
}

// Run executes a full scoring pass
func (j *ScoringPassJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled scoring pass")

	result, err := j.runner.RunScoringPass(ctx, nil)
	if err != nil {
		return fmt.Errorf("scoring pass: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id": result.RunID,
		"scored": result.Scored,
		"failed": result.Failed,
	}).Info("Scoring pass completed")

	if result.Failed > 0 && result.Scored == 0 {
		return fmt.Errorf("scoring pass failed for all %d protocols", result.Failed)
	}
	return nil
}
