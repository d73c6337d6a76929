package jobs

import (
	"context"
	"fmt"

	"github.com/how3io/how3-backend/internal/ingest"
	"github.com/how3io/how3-backend/pkg/logger"
)

// DataRefreshJob pulls fresh metric tables for every tracked protocol
type DataRefreshJob struct {
	collector *ingest.Collector
	logger    *logger.Logger
	schedule  string
}

// NewDataRefreshJob creates a new data refresh job
func NewDataRefreshJob(collector *ingest.Collector, schedule string, log *logger.Logger) *DataRefreshJob {
	return &DataRefreshJob{
		collector: collector,
		logger:    log,
		schedule:  schedule,
	}
}

// Name returns the job name
func (j *DataRefreshJob) Name() string {
	return "data_refresh"
}

// Schedule returns the cron schedule
func (j *DataRefreshJob) Schedule() string {
	return j.schedule
}

// Run refreshes all protocol metric tables
func (j *DataRefreshJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled data refresh")

	if err := j.collector.RefreshAll(ctx); err != nil {
		return fmt.Errorf("data refresh: %w", err)
	}

	j.logger.Info("Data refresh completed")
	return nil
}
