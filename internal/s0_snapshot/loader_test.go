package s0_snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/geflip/internal/contracts"
	"github.com/wonny/geflip/pkg/logger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeUniverse(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, dir, MappingFile, `[
		{"id": 4151, "name": "Abyssal whip", "limit": 70, "examine": "A weapon from the abyss."},
		{"id": 2, "name": "Cannonball"}
	]`)
	writeFile(t, dir, LatestFile, `{"data": {
		"4151": {"high": 1500000, "highTime": 1700000000, "low": 1450000, "lowTime": 1700000001},
		"2": {"high": 180, "low": null}
	}}`)
	writeFile(t, dir, HourlyFileName(1700000000), `{"data": {
		"4151": {"avgHighPrice": 1490000, "avgLowPrice": 1440000, "highPriceVolume": 120, "lowPriceVolume": 80}
	}, "timestamp": 1700000000}`)
	writeFile(t, dir, HourlyFileName(1700003600), `{"data": {
		"4151": {"avgHighPrice": null, "avgLowPrice": 1460000, "highPriceVolume": 100, "lowPriceVolume": 60},
		"2": {"avgHighPrice": 181, "avgLowPrice": 175, "highPriceVolume": 900000}
	}}`)
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeUniverse(t, dir)

	set, err := NewLoader(dir, logger.Nop()).Load(6)
	require.NoError(t, err)

	require.Len(t, set.Mapping, 2)
	assert.Equal(t, "Abyssal whip", set.Mapping[4151].Name)
	assert.Equal(t, int64(70), *set.Mapping[4151].TradeLimit)
	assert.Nil(t, set.Mapping[2].TradeLimit)

	require.Len(t, set.Latest, 2)
	assert.Equal(t, 1450000.0, *set.Latest[4151].CurLow)
	assert.Nil(t, set.Latest[2].CurLow)

	require.Len(t, set.Hourly, 2)
	assert.Equal(t, []int64{1700000000, 1700003600}, set.HourlyTimestamps())

	second := set.Hourly[1].Windows
	assert.Nil(t, second[4151].AvgHighPrice)
	assert.Equal(t, 900000.0, second[2].HighVolume)
	assert.Equal(t, 0.0, second[2].LowVolume, "missing volume is zero")
	assert.Equal(t, int64(1700003600), second[2].WindowTimestamp, "falls back to file name timestamp")
}

func TestLoader_Load_LastNWindows(t *testing.T) {
	dir := t.TempDir()
	writeUniverse(t, dir)
	writeFile(t, dir, HourlyFileName(1700007200), `{"data": {}, "timestamp": 1700007200}`)

	set, err := NewLoader(dir, logger.Nop()).Load(2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1700003600, 1700007200}, set.HourlyTimestamps())
}

func TestLoader_Load_MissingFiles(t *testing.T) {
	tests := []struct {
		name    string
		remove  string
		wantSub string
	}{
		{"mapping", MappingFile, MappingFile},
		{"latest", LatestFile, LatestFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeUniverse(t, dir)
			require.NoError(t, os.Remove(filepath.Join(dir, tt.remove)))

			_, err := NewLoader(dir, logger.Nop()).Load(6)
			require.Error(t, err)
			assert.True(t, errors.Is(err, contracts.ErrMissingFile))
			assert.Contains(t, err.Error(), tt.wantSub)
		})
	}

	t.Run("no hourly windows", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, MappingFile, `[]`)
		writeFile(t, dir, LatestFile, `{"data": {}}`)

		_, err := NewLoader(dir, logger.Nop()).Load(6)
		require.Error(t, err)
		assert.True(t, errors.Is(err, contracts.ErrMissingFile))
	})

	t.Run("no data dir", func(t *testing.T) {
		_, err := ListHourly(filepath.Join(t.TempDir(), "missing"))
		assert.True(t, errors.Is(err, contracts.ErrMissingFile))
	})
}

func TestLoader_Load_MalformedHourlyAbortsRun(t *testing.T) {
	dir := t.TempDir()
	writeUniverse(t, dir)
	writeFile(t, dir, HourlyFileName(1700007200), `{"data": {"4151": {"highPriceVolume": "lots"}}}`)

	_, err := NewLoader(dir, logger.Nop()).Load(6)
	require.Error(t, err)

	var malformed *contracts.MalformedSnapshotError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, filepath.Join(dir, HourlyFileName(1700007200)), malformed.Path)
}

func TestDecodeMapping(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", `[{"id": 1, "name": "a", "limit": 10}]`, false},
		{"empty array", `[]`, false},
		{"not an array", `{"id": 1}`, true},
		{"null document", `null`, true},
		{"missing id", `[{"name": "a"}]`, true},
		{"missing name", `[{"id": 1}]`, true},
		{"string id", `[{"id": "1", "name": "a"}]`, true},
		{"fractional limit", `[{"id": 1, "name": "a", "limit": 1.5}]`, true},
		{"duplicate id", `[{"id": 1, "name": "a"}, {"id": 1, "name": "b"}]`, true},
		{"null entry", `[null]`, true},
		{"truncated", `[{"id": 1`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMapping("mapping.json", []byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, contracts.ErrMalformedSnapshot))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestDecodeLatest(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", `{"data": {"1": {"high": 10, "low": 9}}}`, false},
		{"null sides allowed", `{"data": {"1": {"high": null}}}`, false},
		{"missing data", `{"items": {}}`, true},
		{"data not object", `{"data": []}`, true},
		{"non integer key", `{"data": {"whip": {"high": 10, "low": 9}}}`, true},
		{"string price", `{"data": {"1": {"high": "10", "low": 9}}}`, true},
		{"null quote", `{"data": {"1": null}}`, true},
		{"zero padded duplicate", `{"data": {"1": {"low": 100}, "01": {"low": 800}}}`, true},
		{"signed duplicate", `{"data": {"1": {"low": 100}, "+1": {"low": 40}}}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeLatest("latest.json", []byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, contracts.ErrMalformedSnapshot))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestDecodeHourly_TimestampPrecedence(t *testing.T) {
	input := `{"data": {
		"1": {"avgLowPrice": 5, "timestamp": 111},
		"2": {"avgLowPrice": 6}
	}, "timestamp": 222}`

	snapshot, err := DecodeHourly("1h-333.json", 333, []byte(input))
	require.NoError(t, err)

	assert.Equal(t, int64(333), snapshot.Timestamp)
	assert.Equal(t, int64(111), snapshot.Windows[1].WindowTimestamp, "record timestamp wins")
	assert.Equal(t, int64(222), snapshot.Windows[2].WindowTimestamp, "file timestamp next")
}

func TestDecodeHourly_DuplicateID(t *testing.T) {
	input := `{"data": {"7": {"avgLowPrice": 100}, "007": {"avgLowPrice": 999}}}`

	// 키 순회 순서와 무관하게 항상 거부
	for i := 0; i < 20; i++ {
		_, err := DecodeHourly("1h-333.json", 333, []byte(input))
		require.Error(t, err)
		assert.True(t, errors.Is(err, contracts.ErrMalformedSnapshot))
		assert.Contains(t, err.Error(), "item 7: duplicate id")
	}
}

func TestParseHourlyFileName(t *testing.T) {
	tests := []struct {
		name   string
		wantTS int64
		wantOK bool
	}{
		{"1h-1700000000.json", 1700000000, true},
		{HourlyFileName(42), 42, true},
		{"1h-latest.json", 0, false},
		{"5m-1700000000.json", 0, false},
		{"1h-1700000000.json.tmp", 0, false},
		{"mapping.json", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, ok := ParseHourlyFileName(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantTS, ts)
		})
	}
}

func TestListHourly_NumericOrder(t *testing.T) {
	dir := t.TempDir()
	// 문자열 정렬과 숫자 정렬이 다른 경우
	writeFile(t, dir, "1h-900.json", `{"data": {}}`)
	writeFile(t, dir, "1h-1000.json", `{"data": {}}`)
	writeFile(t, dir, "1h-notes.json", `{"data": {}}`)
	writeFile(t, dir, "latest.json", `{"data": {}}`)

	files, err := ListHourly(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, int64(900), files[0].Timestamp)
	assert.Equal(t, int64(1000), files[1].Timestamp)

	last, err := SelectHourly(dir, 1)
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, int64(1000), last[0].Timestamp)
}
