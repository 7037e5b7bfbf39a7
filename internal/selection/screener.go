package selection

import (
	"context"
	"math"

	"github.com/wonny/geflip/internal/contracts"
	"github.com/wonny/geflip/pkg/logger"
)

// Reject reasons reported in the screening stats
const (
	RejectNoAverage    = "no_average"
	RejectUnstable     = "unstable"
	RejectLowActivity  = "low_activity"
	RejectUnprofitable = "unprofitable"
)

// Screener implements S3: Hard Cut filtering
// ⭐ SSOT: S3 스크리닝 로직은 여기서만
type Screener struct {
	config ScreenerConfig
	logger *logger.Logger
}

// ScreenerConfig defines hard cut conditions
// SSOT: strategy yaml screening
type ScreenerConfig struct {
	VolumeMin    float64 // hourly volume > VolumeMin (예: 500,000)
	ValueMin     float64 // cur_low > ValueMin (예: 5,000,000)
	MaxDeviation float64 // |cur_low-avg_low|/avg_low < MaxDeviation (예: 0.05)
	MinNetMargin float64 // net_margin > MinNetMargin (예: 0)
}

// DefaultScreenerConfig returns the built-in thresholds
func DefaultScreenerConfig() ScreenerConfig {
	return ScreenerConfig{
		VolumeMin:    500_000,
		ValueMin:     5_000_000,
		MaxDeviation: 0.05,
		MinNetMargin: 0,
	}
}

// NewScreener creates a new screener
func NewScreener(config ScreenerConfig, log *logger.Logger) *Screener {
	return &Screener{
		config: config,
		logger: log.Module("selection"),
	}
}

// ScreenStats summarizes one screening pass
type ScreenStats struct {
	TotalInput int            `json:"total_input"`
	Passed     int            `json:"passed"`
	Filtered   map[string]int `json:"filtered"`
}

// Screen applies the hard cuts and returns the candidate set in input order
func (s *Screener) Screen(ctx context.Context, records []contracts.MergedRecord) ([]contracts.Candidate, *ScreenStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	passed := make([]contracts.Candidate, 0)
	filtered := make(map[string]int) // Filter name -> count

	for i := range records {
		rec := &records[i]
		reason := s.checkConditions(rec)
		if reason != "" {
			filtered[reason]++
			continue
		}
		passed = append(passed, contracts.Candidate{
			Record:    *rec,
			VolumeCut: s.VolumeCut(rec),
			ValueCut:  s.ValueCut(rec),
		})
	}

	stats := &ScreenStats{
		TotalInput: len(records),
		Passed:     len(passed),
		Filtered:   filtered,
	}

	s.logger.WithFields(map[string]interface{}{
		"total_input":  stats.TotalInput,
		"passed":       stats.Passed,
		"filtered_out": stats.TotalInput - stats.Passed,
		"filters":      filtered,
	}).Info("Screening completed")

	return passed, stats, nil
}

// checkConditions checks if a record passes all conditions
// Returns empty string if passed, otherwise returns filter name
func (s *Screener) checkConditions(rec *contracts.MergedRecord) string {
	// Safety: 평균가 없으면 무조건 탈락 (fail-closed)
	if avg := rec.AvgLowPrice(); avg == nil || *avg == 0 {
		return RejectNoAverage
	}
	if !s.SafetyCut(rec) {
		return RejectUnstable
	}

	if !s.VolumeCut(rec) && !s.ValueCut(rec) {
		return RejectLowActivity
	}

	if rec.Metrics.NetMargin <= s.config.MinNetMargin {
		return RejectUnprofitable
	}

	return ""
}

// VolumeCut reports hourly volume above the activity threshold
func (s *Screener) VolumeCut(rec *contracts.MergedRecord) bool {
	return rec.Metrics.HourlyVolume > s.config.VolumeMin
}

// ValueCut reports a low price above the value threshold
func (s *Screener) ValueCut(rec *contracts.MergedRecord) bool {
	return rec.CurLow > s.config.ValueMin
}

// SafetyCut reports that the current low price stays close to its hourly average
// An absent or zero average fails.
func (s *Screener) SafetyCut(rec *contracts.MergedRecord) bool {
	avg := rec.AvgLowPrice()
	if avg == nil || *avg == 0 {
		return false
	}
	deviation := math.Abs(rec.CurLow-*avg) / *avg
	return deviation < s.config.MaxDeviation
}
