package collector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/wonny/geflip/internal/contracts"
	"github.com/wonny/geflip/internal/s0_snapshot"
)

// RotateResult lists the files removed by one rotation
type RotateResult struct {
	HourlyKept    int      `json:"hourly_kept"`
	HourlyDeleted []string `json:"hourly_deleted"`
	LogsDeleted   []string `json:"logs_deleted"`
}

// Rotate enforces retention on hourly snapshots and daily logs
// 1h: 최신 HourlyKeep 개만 유지, jsonl: 오늘 포함 LogKeepDays 일치만 유지
func (c *Collector) Rotate(ctx context.Context) (*RotateResult, error) {
	result := &RotateResult{
		HourlyDeleted: make([]string, 0),
		LogsDeleted:   make([]string, 0),
	}

	kept, deleted, err := c.rotateHourly(ctx)
	if err != nil {
		return nil, err
	}
	result.HourlyKept = kept
	result.HourlyDeleted = append(result.HourlyDeleted, deleted...)

	logs, err := c.rotateLogs(ctx)
	if err != nil {
		return nil, err
	}
	result.LogsDeleted = append(result.LogsDeleted, logs...)

	c.logger.WithFields(map[string]interface{}{
		"hourly_kept":    result.HourlyKept,
		"hourly_deleted": len(result.HourlyDeleted),
		"logs_deleted":   len(result.LogsDeleted),
	}).Info("Rotation completed")

	return result, nil
}

func (c *Collector) rotateHourly(ctx context.Context) (int, []string, error) {
	files, err := s0_snapshot.ListHourly(c.config.DataDir)
	if err != nil {
		if errors.Is(err, contracts.ErrMissingFile) {
			return 0, nil, nil
		}
		return 0, nil, err
	}

	keep := c.config.HourlyKeep
	if keep < 1 || len(files) <= keep {
		return len(files), nil, nil
	}

	// files는 timestamp 오름차순 → 앞쪽이 오래된 것
	stale := files[:len(files)-keep]
	deleted := make([]string, 0, len(stale))
	for _, f := range stale {
		if err := ctx.Err(); err != nil {
			return 0, deleted, err
		}
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return 0, deleted, fmt.Errorf("remove %s: %w", f.Path, err)
		}
		deleted = append(deleted, f.Path)
	}

	return keep, deleted, nil
}

func (c *Collector) rotateLogs(ctx context.Context) ([]string, error) {
	if c.config.LogKeepDays < 1 {
		return nil, nil
	}

	entries, err := os.ReadDir(c.config.LogDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read log dir: %w", err)
	}

	cutoff := LogCutoff(c.now(), c.config.LogKeepDays)

	deleted := make([]string, 0)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if entry.IsDir() {
			continue
		}
		// 예상 밖 파일명은 건드리지 않음
		date, ok := ParseLogFileName(entry.Name())
		if !ok || !date.Before(cutoff) {
			continue
		}

		path := filepath.Join(c.config.LogDir, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return deleted, fmt.Errorf("remove %s: %w", path, err)
		}
		deleted = append(deleted, path)
	}

	return deleted, nil
}

// LogCutoff returns the oldest date kept when keeping keepDays days including today
func LogCutoff(now time.Time, keepDays int) time.Time {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, -(keepDays - 1))
}
