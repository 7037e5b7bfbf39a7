package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/geflip/internal/collector"
	"github.com/wonny/geflip/pkg/logger"
)

// Collector is the part of collector.Collector the jobs drive
type Collector interface {
	CollectLatest(ctx context.Context) (*collector.Result, error)
	CollectHourly(ctx context.Context) (*collector.Result, error)
	CollectMapping(ctx context.Context, force bool) (*collector.Result, error)
	AppendLog(ctx context.Context) (*collector.Result, error)
	Rotate(ctx context.Context) (*collector.RotateResult, error)
}

// LatestCollectionJob refreshes latest.json
// ⭐ SSOT: 스냅샷 수집 스케줄은 이 파일의 Job에서만
type LatestCollectionJob struct {
	collector Collector
	logger    *logger.Logger
}

// NewLatestCollectionJob creates a new latest collection job
func NewLatestCollectionJob(col Collector, log *logger.Logger) *LatestCollectionJob {
	return &LatestCollectionJob{collector: col, logger: log}
}

// Name returns the job name
func (j *LatestCollectionJob) Name() string {
	return "latest_collection"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *LatestCollectionJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run executes the collection
func (j *LatestCollectionJob) Run(ctx context.Context) error {
	if _, err := j.collector.CollectLatest(ctx); err != nil {
		return fmt.Errorf("collect latest: %w", err)
	}
	return nil
}

// HourlyCollectionJob stores the hourly window once the hour has closed
type HourlyCollectionJob struct {
	collector Collector
	logger    *logger.Logger
}

// NewHourlyCollectionJob creates a new hourly collection job
func NewHourlyCollectionJob(col Collector, log *logger.Logger) *HourlyCollectionJob {
	return &HourlyCollectionJob{collector: col, logger: log}
}

// Name returns the job name
func (j *HourlyCollectionJob) Name() string {
	return "hourly_collection"
}

// Schedule returns the cron schedule (hourly at :02)
func (j *HourlyCollectionJob) Schedule() string {
	return "0 2 * * * *" // 정각 직후 집계가 확정될 시간을 둠
}

// Run executes the collection
func (j *HourlyCollectionJob) Run(ctx context.Context) error {
	if _, err := j.collector.CollectHourly(ctx); err != nil {
		return fmt.Errorf("collect hourly: %w", err)
	}
	return nil
}

// MappingRefreshJob refreshes mapping.json when stale
type MappingRefreshJob struct {
	collector Collector
	logger    *logger.Logger
}

// NewMappingRefreshJob creates a new mapping refresh job
func NewMappingRefreshJob(col Collector, log *logger.Logger) *MappingRefreshJob {
	return &MappingRefreshJob{collector: col, logger: log}
}

// Name returns the job name
func (j *MappingRefreshJob) Name() string {
	return "mapping_refresh"
}

// Schedule returns the cron schedule (daily at 00:10)
func (j *MappingRefreshJob) Schedule() string {
	return "0 10 0 * * *"
}

// Run executes the refresh
func (j *MappingRefreshJob) Run(ctx context.Context) error {
	res, err := j.collector.CollectMapping(ctx, false)
	if err != nil {
		return fmt.Errorf("refresh mapping: %w", err)
	}
	if res.Skipped {
		j.logger.Debug("Mapping still fresh")
	}
	return nil
}

// SnapshotLogJob appends the 5-minute snapshot to the daily log
type SnapshotLogJob struct {
	collector Collector
	logger    *logger.Logger
}

// NewSnapshotLogJob creates a new snapshot log job
func NewSnapshotLogJob(col Collector, log *logger.Logger) *SnapshotLogJob {
	return &SnapshotLogJob{collector: col, logger: log}
}

// Name returns the job name
func (j *SnapshotLogJob) Name() string {
	return "snapshot_log"
}

// Schedule returns the cron schedule (every 5 minutes, offset by 30s)
func (j *SnapshotLogJob) Schedule() string {
	return "30 */5 * * * *"
}

// Run appends one snapshot line
func (j *SnapshotLogJob) Run(ctx context.Context) error {
	if _, err := j.collector.AppendLog(ctx); err != nil {
		return fmt.Errorf("append snapshot log: %w", err)
	}
	return nil
}
