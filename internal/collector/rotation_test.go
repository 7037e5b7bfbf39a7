package collector

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/geflip/internal/s0_snapshot"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	return path
}

func TestRotate_Hourly(t *testing.T) {
	c := newTestCollector(t, "http://unused")
	dir := c.config.DataDir

	for _, ts := range []int64{900, 1000, 200, 1100, 50} {
		touch(t, dir, s0_snapshot.HourlyFileName(ts))
	}
	other := touch(t, dir, "1h-notes.json")
	mapping := touch(t, dir, s0_snapshot.MappingFile)

	res, err := c.Rotate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.HourlyKept)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, s0_snapshot.HourlyFileName(50)),
		filepath.Join(dir, s0_snapshot.HourlyFileName(200)),
	}, res.HourlyDeleted)

	files, err := s0_snapshot.ListHourly(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, int64(900), files[0].Timestamp, "numeric order, not lexical")
	assert.Equal(t, int64(1100), files[2].Timestamp)

	assert.FileExists(t, other)
	assert.FileExists(t, mapping)
}

func TestRotate_Logs(t *testing.T) {
	c := newTestCollector(t, "http://unused")
	logDir := c.config.LogDir

	// fixedNow = 2024-03-10, 7일 보관 → 2024-03-04 까지 유지
	kept := []string{
		touch(t, logDir, "2024-03-10.jsonl"),
		touch(t, logDir, "2024-03-04.jsonl"),
	}
	stale := []string{
		touch(t, logDir, "2024-03-03.jsonl"),
		touch(t, logDir, "2024-02-01.jsonl"),
	}
	ignored := touch(t, logDir, "notes.jsonl")

	res, err := c.Rotate(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, stale, res.LogsDeleted)
	for _, p := range kept {
		assert.FileExists(t, p)
	}
	for _, p := range stale {
		assert.NoFileExists(t, p)
	}
	assert.FileExists(t, ignored)
}

func TestRotate_EmptyDirs(t *testing.T) {
	c := newTestCollector(t, "http://unused")
	c.config.DataDir = filepath.Join(c.config.DataDir, "missing")
	c.config.LogDir = filepath.Join(c.config.LogDir, "missing")

	res, err := c.Rotate(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.HourlyKept)
	assert.Empty(t, res.HourlyDeleted)
	assert.Empty(t, res.LogsDeleted)
}

func TestLogCutoff(t *testing.T) {
	now := time.Date(2024, 3, 10, 23, 59, 0, 0, time.Local)

	assert.True(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local).Equal(LogCutoff(now, 7)))
	assert.True(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local).Equal(LogCutoff(now, 1)))
}

func TestLogFileName(t *testing.T) {
	name := LogFileName(fixedNow)
	assert.Equal(t, "2024-03-10.jsonl", name)

	date, ok := ParseLogFileName(name)
	require.True(t, ok)
	assert.True(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local).Equal(date))

	_, ok = ParseLogFileName("2024-13-40.jsonl")
	assert.False(t, ok)
	_, ok = ParseLogFileName("2024-03-10.json")
	assert.False(t, ok)
}

func TestWriteAtomic(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	path := filepath.Join(dir, "latest.json")

	require.NoError(t, writeAtomic(path, []byte(`{"a":1}`)))
	require.NoError(t, writeAtomic(path, []byte(`{"a":2}`)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
