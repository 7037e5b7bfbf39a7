package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/geflip/internal/scheduler"
	"github.com/wonny/geflip/pkg/logger"
)

// RotationJob prunes old hourly snapshots and daily logs
type RotationJob struct {
	collector Collector
	logger    *logger.Logger
}

// NewRotationJob creates a new rotation job
func NewRotationJob(col Collector, log *logger.Logger) *RotationJob {
	return &RotationJob{
		collector: col,
		logger:    log,
	}
}

// Name returns the job name
func (j *RotationJob) Name() string {
	return "rotation"
}

// Schedule returns the cron schedule (hourly at :30)
func (j *RotationJob) Schedule() string {
	return "0 30 * * * *"
}

// Run executes the rotation
func (j *RotationJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled rotation")

	res, err := j.collector.Rotate(ctx)
	if err != nil {
		return fmt.Errorf("rotate: %w", err)
	}

	if removed := len(res.HourlyDeleted) + len(res.LogsDeleted); removed > 0 {
		j.logger.WithField("removed", removed).Info("Rotation removed files")
	}

	return nil
}

// All returns every collection and maintenance job for one collector
func All(col Collector, log *logger.Logger) []scheduler.Job {
	return []scheduler.Job{
		NewLatestCollectionJob(col, log),
		NewSnapshotLogJob(col, log),
		NewHourlyCollectionJob(col, log),
		NewMappingRefreshJob(col, log),
		NewRotationJob(col, log),
	}
}
