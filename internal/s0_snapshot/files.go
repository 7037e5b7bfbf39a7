package s0_snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/wonny/geflip/internal/contracts"
)

// Snapshot file layout under the data directory
const (
	MappingFile  = "mapping.json"
	LatestFile   = "latest.json"
	HourlyPrefix = "1h-"
	HourlySuffix = ".json"
)

// HourlyFile is an hourly snapshot file with its embedded timestamp
type HourlyFile struct {
	Path      string
	Timestamp int64
}

// HourlyFileName returns the file name for an hourly snapshot at ts
func HourlyFileName(ts int64) string {
	return fmt.Sprintf("%s%d%s", HourlyPrefix, ts, HourlySuffix)
}

// ParseHourlyFileName extracts the timestamp from "1h-<ts>.json"
// 형식이 다른 파일은 ok=false (무시 대상)
func ParseHourlyFileName(name string) (int64, bool) {
	if !strings.HasPrefix(name, HourlyPrefix) || !strings.HasSuffix(name, HourlySuffix) {
		return 0, false
	}

	raw := strings.TrimSuffix(strings.TrimPrefix(name, HourlyPrefix), HourlySuffix)
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}

	return ts, true
}

// ListHourly returns every hourly snapshot file in dir, ascending by timestamp
func ListHourly(dir string) ([]HourlyFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &contracts.MissingFileError{Path: dir}
		}
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	files := make([]HourlyFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, ok := ParseHourlyFileName(entry.Name())
		if !ok {
			continue
		}
		files = append(files, HourlyFile{
			Path:      filepath.Join(dir, entry.Name()),
			Timestamp: ts,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Timestamp != files[j].Timestamp {
			return files[i].Timestamp < files[j].Timestamp
		}
		return files[i].Path < files[j].Path
	})

	return files, nil
}

// SelectHourly returns the last n hourly files by timestamp, ascending
// 1h 파일이 하나도 없으면 MissingFileError
func SelectHourly(dir string, n int) ([]HourlyFile, error) {
	files, err := ListHourly(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &contracts.MissingFileError{Path: filepath.Join(dir, HourlyPrefix+"*"+HourlySuffix)}
	}

	if n > 0 && len(files) > n {
		files = files[len(files)-n:]
	}

	return files, nil
}

// readFile reads path, mapping "not exist" to MissingFileError
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &contracts.MissingFileError{Path: path}
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
