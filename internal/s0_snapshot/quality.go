package s0_snapshot

import (
	"sort"

	"github.com/wonny/geflip/internal/contracts"
)

// Coverage keys
const (
	CoverageQuote   = "quote"   // 양쪽 가격이 모두 있는 quote 비율
	CoverageMapping = "mapping" // 완전한 quote 중 mapping이 있는 비율
	CoverageWindow  = "window"  // 완전한 quote 중 1h row가 있는 비율
	CoverageAverage = "average" // 완전한 quote 중 평균 low 가격이 있는 비율
)

// QualityConfig holds quality gate thresholds
type QualityConfig struct {
	MinQuoteCoverage   float64 `yaml:"min_quote_coverage"`
	MinMappingCoverage float64 `yaml:"min_mapping_coverage"`
	MinWindowCoverage  float64 `yaml:"min_window_coverage"`
	MinAverageCoverage float64 `yaml:"min_average_coverage"`
}

// DefaultQualityConfig returns the thresholds used by snapshot check
func DefaultQualityConfig() QualityConfig {
	return QualityConfig{
		MinQuoteCoverage:   0.80,
		MinMappingCoverage: 0.95,
		MinWindowCoverage:  0.50,
		MinAverageCoverage: 0.30,
	}
}

// QualityGate measures snapshot completeness; it never rejects a run by itself
type QualityGate struct {
	config QualityConfig
}

// NewQualityGate creates a new QualityGate instance
func NewQualityGate(config QualityConfig) *QualityGate {
	return &QualityGate{config: config}
}

// Check computes coverage for a loaded snapshot universe
// ⭐ SSOT: S0 스냅샷 품질 검증
func (g *QualityGate) Check(set *contracts.SnapshotSet) *contracts.DataQualitySnapshot {
	snapshot := &contracts.DataQualitySnapshot{
		TotalItems: len(set.Latest),
		Coverage:   make(map[string]float64),
	}

	// 1h 파일 전체에서 row / 평균 low 가격 존재 여부
	inWindow := make(map[int64]bool)
	hasAverage := make(map[int64]bool)
	for _, h := range set.Hourly {
		for id, w := range h.Windows {
			inWindow[id] = true
			if w.AvgLowPrice != nil {
				hasAverage[id] = true
			}
		}
	}

	var complete, mapped, windowed, averaged, valid int
	for id, q := range set.Latest {
		if !q.Complete() {
			continue
		}
		complete++

		_, isMapped := set.Mapping[id]
		if isMapped {
			mapped++
		}
		if inWindow[id] {
			windowed++
		}
		if hasAverage[id] {
			averaged++
		}
		if isMapped && hasAverage[id] {
			valid++
		}
	}

	snapshot.ValidItems = valid
	snapshot.Coverage[CoverageQuote] = ratio(complete, len(set.Latest))
	snapshot.Coverage[CoverageMapping] = ratio(mapped, complete)
	snapshot.Coverage[CoverageWindow] = ratio(windowed, complete)
	snapshot.Coverage[CoverageAverage] = ratio(averaged, complete)

	snapshot.QualityScore = snapshot.CoverageRate()
	snapshot.Failures = g.failures(snapshot.Coverage)
	snapshot.Passed = snapshot.TotalItems > 0 && len(snapshot.Failures) == 0

	return snapshot
}

func (g *QualityGate) failures(coverage map[string]float64) []string {
	mins := map[string]float64{
		CoverageQuote:   g.config.MinQuoteCoverage,
		CoverageMapping: g.config.MinMappingCoverage,
		CoverageWindow:  g.config.MinWindowCoverage,
		CoverageAverage: g.config.MinAverageCoverage,
	}

	var failed []string
	for key, threshold := range mins {
		if coverage[key] < threshold {
			failed = append(failed, key)
		}
	}
	sort.Strings(failed)
	return failed
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}
