package collector

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LogSuffix is the extension of the daily 5-minute logs
const LogSuffix = ".jsonl"

const logDateLayout = "2006-01-02"

// LogFileName returns the daily log file name for t (local date)
func LogFileName(t time.Time) string {
	return t.Format(logDateLayout) + LogSuffix
}

// ParseLogFileName extracts the date of a daily log file name
func ParseLogFileName(name string) (time.Time, bool) {
	if !strings.HasSuffix(name, LogSuffix) {
		return time.Time{}, false
	}
	date, err := time.ParseInLocation(logDateLayout, strings.TrimSuffix(name, LogSuffix), time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// writeAtomic writes data to a temp file in the target directory and renames it into place
// 로더가 반쯤 쓰인 파일을 보지 않도록
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename to %s: %w", path, err)
	}

	return nil
}

// appendLine compacts a JSON payload and appends it as a single line
// Returns the number of bytes written.
func appendLine(path string, payload []byte) (int, error) {
	var line bytes.Buffer
	if err := json.Compact(&line, payload); err != nil {
		return 0, fmt.Errorf("compact payload: %w", err)
	}
	line.WriteByte('\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create dir %s: %w", filepath.Dir(path), err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	n, err := f.Write(line.Bytes())
	if err != nil {
		return n, fmt.Errorf("append %s: %w", path, err)
	}
	return n, nil
}

func fileExists(path string) bool {
	_, ok := fileModTime(path)
	return ok
}

func fileModTime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return time.Time{}, false
	}
	return info.ModTime(), true
}
