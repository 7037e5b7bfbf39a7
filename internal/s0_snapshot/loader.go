package s0_snapshot

import (
	"path/filepath"

	"github.com/wonny/geflip/internal/contracts"
	"github.com/wonny/geflip/pkg/logger"
)

// Loader reads the snapshot universe of one run from the data directory
// ⭐ SSOT: S0 스냅샷 로딩은 여기서만
type Loader struct {
	dataDir string
	logger  *logger.Logger
}

// NewLoader creates a new Loader
func NewLoader(dataDir string, log *logger.Logger) *Loader {
	return &Loader{
		dataDir: dataDir,
		logger:  log.Module("s0_snapshot"),
	}
}

// DataDir returns the directory the loader reads from
func (l *Loader) DataDir() string {
	return l.dataDir
}

// Load reads mapping, latest quotes and the last windowCount hourly files
// 부분 로딩 없음: 하나라도 실패하면 전체 실행 중단
func (l *Loader) Load(windowCount int) (*contracts.SnapshotSet, error) {
	mapping, err := LoadMapping(filepath.Join(l.dataDir, MappingFile))
	if err != nil {
		return nil, err
	}

	latest, err := LoadLatest(filepath.Join(l.dataDir, LatestFile))
	if err != nil {
		return nil, err
	}

	files, err := SelectHourly(l.dataDir, windowCount)
	if err != nil {
		return nil, err
	}

	hourly := make([]contracts.HourlySnapshot, 0, len(files))
	for _, f := range files {
		snapshot, err := LoadHourly(f)
		if err != nil {
			return nil, err
		}
		hourly = append(hourly, *snapshot)
	}

	if len(files) < windowCount {
		l.logger.WithFields(map[string]interface{}{
			"requested": windowCount,
			"available": len(files),
		}).Warn("Fewer hourly windows than requested")
	}

	set := &contracts.SnapshotSet{
		Mapping: mapping,
		Latest:  latest,
		Hourly:  hourly,
	}

	l.logger.WithFields(map[string]interface{}{
		"mapping_items": len(mapping),
		"quotes":        len(latest),
		"hourly_files":  len(hourly),
	}).Info("Snapshots loaded")

	return set, nil
}

// LoadMapping reads and validates mapping.json
func LoadMapping(path string) (map[int64]contracts.ItemMetadata, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeMapping(path, data)
}

// LoadLatest reads and validates latest.json
func LoadLatest(path string) (map[int64]contracts.InstantQuote, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeLatest(path, data)
}

// LoadHourly reads and validates one hourly snapshot file
func LoadHourly(f HourlyFile) (*contracts.HourlySnapshot, error) {
	data, err := readFile(f.Path)
	if err != nil {
		return nil, err
	}
	return DecodeHourly(f.Path, f.Timestamp, data)
}
