package brain

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/geflip/internal/contracts"
	"github.com/wonny/geflip/internal/s0_snapshot"
	"github.com/wonny/geflip/internal/selection"
	"github.com/wonny/geflip/internal/strategyconfig"
	"github.com/wonny/geflip/pkg/logger"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// writeMarket writes the worked examples: X (high-value), Y (unstable), Z (no average),
// W (negative margin) and two high-volume items tied on profit at limit
func writeMarket(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, dir, s0_snapshot.MappingFile, `[
		{"id": 1, "name": "Item X", "limit": 70},
		{"id": 2, "name": "Item Y"},
		{"id": 3, "name": "Item Z"},
		{"id": 4, "name": "Item W"},
		{"id": 11, "name": "Tied B", "limit": 8000},
		{"id": 10, "name": "Tied A", "limit": 8000}
	]`)
	writeFile(t, dir, s0_snapshot.LatestFile, `{"data": {
		"1":  {"high": 6200000, "low": 6000000},
		"2":  {"high": 100, "low": 90},
		"3":  {"high": 50, "low": 45},
		"4":  {"high": 6400000, "low": 6500000},
		"11": {"high": 1125, "low": 1000},
		"10": {"high": 1125, "low": 1000},
		"99": {"high": 10, "low": null}
	}}`)
	writeFile(t, dir, s0_snapshot.HourlyFileName(1700000000), `{"data": {
		"1":  {"avgHighPrice": 6100000, "avgLowPrice": 5900000, "highPriceVolume": 150000, "lowPriceVolume": 150000},
		"2":  {"avgHighPrice": 210, "avgLowPrice": 200, "highPriceVolume": 450000, "lowPriceVolume": 0},
		"3":  {"avgHighPrice": 51, "avgLowPrice": null, "highPriceVolume": 1000000, "lowPriceVolume": 0},
		"4":  {"avgHighPrice": 6400000, "avgLowPrice": 6500000, "highPriceVolume": 10, "lowPriceVolume": 10},
		"10": {"avgHighPrice": 1120, "avgLowPrice": 1000, "highPriceVolume": 300000},
		"11": {"avgHighPrice": 1120, "avgLowPrice": 1000, "highPriceVolume": 300000}
	}, "timestamp": 1700000000}`)
	writeFile(t, dir, s0_snapshot.HourlyFileName(1700003600), `{"data": {
		"1":  {"avgHighPrice": 6100000, "avgLowPrice": 6000000, "highPriceVolume": 150000, "lowPriceVolume": 150000},
		"2":  {"avgHighPrice": 210, "avgLowPrice": 200, "highPriceVolume": 450000, "lowPriceVolume": 0},
		"3":  {"avgHighPrice": 49, "avgLowPrice": null, "highPriceVolume": 1000000},
		"10": {"avgHighPrice": 1120, "avgLowPrice": 1000, "lowPriceVolume": 300000},
		"11": {"avgHighPrice": 1120, "avgLowPrice": 1000, "lowPriceVolume": 300000}
	}, "timestamp": 1700003600}`)
}

func TestOrchestrator_Run(t *testing.T) {
	dir := t.TempDir()
	writeMarket(t, dir)

	o := New(dir, strategyconfig.Default(), logger.Nop())
	result, err := o.Run(context.Background(), RunConfig{RunID: "test"})
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, []string{"S0:Snapshot", "S1:Window", "S2:Merge", "S3:Screener", "S4:Ranker"}, result.CompletedStages)
	assert.Equal(t, 6, result.Stats.MappingItems)
	assert.Equal(t, 7, result.Stats.Quotes)
	assert.Equal(t, 2, result.Stats.HourlyFiles)
	assert.Equal(t, 6, result.Stats.Merged, "incomplete quote dropped")
	assert.Equal(t, 3, result.Stats.Candidates)
	assert.Equal(t, 1, result.Stats.Filtered[selection.RejectUnstable])
	assert.Equal(t, 1, result.Stats.Filtered[selection.RejectNoAverage])
	assert.Equal(t, 1, result.Stats.Filtered[selection.RejectUnprofitable])

	require.NotNil(t, result.Decision)
	assert.Equal(t, []int64{1700000000, 1700003600}, result.Decision.HourlyTimestamps)
	assert.NotEmpty(t, result.Decision.ConfigHash)

	require.NotNil(t, result.Quality)
	assert.Equal(t, 7, result.Quality.TotalItems)
	assert.Equal(t, 5, result.Quality.ValidItems, "Z has no average low")

	lists := result.Lists
	require.Len(t, lists.HighValue, 1)
	x := lists.HighValue[0]
	assert.Equal(t, int64(1), x.ID)
	assert.Equal(t, "Item X", x.Name)
	assert.Equal(t, 1, x.Rank)
	assert.InDelta(t, 196_000.0, x.NetMargin, 1e-6)
	assert.Equal(t, 600_000.0, x.HourlyVolume)

	require.Len(t, lists.HighVolume, 2)
	assert.Equal(t, int64(10), lists.HighVolume[0].ID, "tie broken by id ascending")
	assert.Equal(t, int64(11), lists.HighVolume[1].ID)
	assert.Equal(t, lists.HighVolume[0].ProfitAtLimit, lists.HighVolume[1].ProfitAtLimit)
	assert.Equal(t, int64(8000), lists.HighVolume[0].TradeLimit)
}

func TestOrchestrator_Deterministic(t *testing.T) {
	dir := t.TempDir()
	writeMarket(t, dir)

	o := New(dir, strategyconfig.Default(), logger.Nop())

	first, err := o.Run(context.Background(), RunConfig{RunID: "a"})
	require.NoError(t, err)
	second, err := o.Run(context.Background(), RunConfig{RunID: "b"})
	require.NoError(t, err)

	a, err := json.Marshal(first.Lists)
	require.NoError(t, err)
	b, err := json.Marshal(second.Lists)
	require.NoError(t, err)

	assert.JSONEq(t, string(a), string(b))
	assert.Equal(t, first.Decision.ConfigHash, second.Decision.ConfigHash)
}

func TestOrchestrator_MissingLatest(t *testing.T) {
	dir := t.TempDir()
	writeMarket(t, dir)
	require.NoError(t, os.Remove(filepath.Join(dir, s0_snapshot.LatestFile)))

	result, err := New(dir, strategyconfig.Default(), logger.Nop()).Run(context.Background(), RunConfig{})
	require.Error(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, result.CompletedStages)

	var missing *contracts.MissingFileError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, filepath.Join(dir, s0_snapshot.LatestFile), missing.Path)
}

func TestOrchestrator_MalformedHourly(t *testing.T) {
	dir := t.TempDir()
	writeMarket(t, dir)
	writeFile(t, dir, s0_snapshot.HourlyFileName(1700007200), `{"data": [1, 2, 3]}`)

	_, err := New(dir, strategyconfig.Default(), logger.Nop()).Run(context.Background(), RunConfig{})
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrMalformedSnapshot)
}

func TestOrchestrator_WindowCount(t *testing.T) {
	dir := t.TempDir()
	writeMarket(t, dir)

	strategy := strategyconfig.Default()
	strategy.Window.Count = 1

	result, err := New(dir, strategy, logger.Nop()).Run(context.Background(), RunConfig{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.HourlyFiles)
	assert.Equal(t, []int64{1700003600}, result.Decision.HourlyTimestamps)

	// 최근 1개 window만: X volume 300,000 → value cut 으로만 통과
	require.Len(t, result.Lists.HighValue, 1)
	assert.Equal(t, 300_000.0, result.Lists.HighValue[0].HourlyVolume)
	assert.Empty(t, result.Lists.HighVolume, "tied items drop to 300,000 volume")
}
