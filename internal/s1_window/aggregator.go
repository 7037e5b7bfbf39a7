package s1_window

import (
	"github.com/wonny/geflip/internal/contracts"
	"github.com/wonny/geflip/pkg/logger"
)

// Aggregator implements S1: combining the last N hourly windows per item
// ⭐ SSOT: window 집계 로직은 여기서만
type Aggregator struct {
	logger *logger.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(log *logger.Logger) *Aggregator {
	return &Aggregator{
		logger: log.Module("s1_window"),
	}
}

// accumulator collects one item's observations across snapshots
type accumulator struct {
	highSum   float64
	highCount int
	lowSum    float64
	lowCount  int
	volume    float64
	seen      int
}

func (a *accumulator) add(w contracts.HourlyWindow) {
	// 평균가: 존재하는 값만 평균 (nil을 0으로 취급하지 않음)
	if w.AvgHighPrice != nil {
		a.highSum += *w.AvgHighPrice
		a.highCount++
	}
	if w.AvgLowPrice != nil {
		a.lowSum += *w.AvgLowPrice
		a.lowCount++
	}
	a.volume += w.HighVolume + w.LowVolume
	a.seen++
}

func (a *accumulator) result(id int64) contracts.AggregatedWindow {
	return contracts.AggregatedWindow{
		ID:           id,
		AvgHighPrice: mean(a.highSum, a.highCount),
		AvgLowPrice:  mean(a.lowSum, a.lowCount),
		TotalVolume:  a.volume,
		Observations: a.seen,
	}
}

// Aggregate groups windows by item id across snapshots
// An item present in k of the N snapshots is averaged over those k only;
// an item present in none has no entry
func (a *Aggregator) Aggregate(snapshots []contracts.HourlySnapshot) map[int64]contracts.AggregatedWindow {
	acc := make(map[int64]*accumulator)

	for _, snapshot := range snapshots {
		for id, w := range snapshot.Windows {
			entry, ok := acc[id]
			if !ok {
				entry = &accumulator{}
				acc[id] = entry
			}
			entry.add(w)
		}
	}

	out := make(map[int64]contracts.AggregatedWindow, len(acc))
	unknownLow := 0
	for id, entry := range acc {
		agg := entry.result(id)
		if agg.AvgLowPrice == nil {
			unknownLow++
		}
		out[id] = agg
	}

	a.logger.WithFields(map[string]interface{}{
		"snapshots":       len(snapshots),
		"items":           len(out),
		"unknown_avg_low": unknownLow,
	}).Info("Window aggregation completed")

	return out
}

// mean returns sum/count, or nil ("unknown") when count is zero
func mean(sum float64, count int) *float64 {
	if count == 0 {
		return nil
	}
	v := sum / float64(count)
	return &v
}
