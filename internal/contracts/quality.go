package contracts

import "sort"

// DataQualitySnapshot summarises how complete one snapshot universe is
// ⭐ SSOT: S0 스냅샷 품질 정보
type DataQualitySnapshot struct {
	TotalItems   int                `json:"total_items"` // latest.json quote 수
	ValidItems   int                `json:"valid_items"` // 완전한 quote + mapping + 평균가
	Coverage     map[string]float64 `json:"coverage"`
	QualityScore float64            `json:"quality_score"` // 0.0 ~ 1.0
	Passed       bool               `json:"passed"`
	Failures     []string           `json:"failures,omitempty"` // 기준 미달 coverage 키
}

// CoverageRate returns the average coverage rate across all keys
// 키 순서로 합산 (같은 입력이면 같은 비트)
func (d *DataQualitySnapshot) CoverageRate() float64 {
	if len(d.Coverage) == 0 {
		return 0.0
	}

	keys := make([]string, 0, len(d.Coverage))
	for k := range d.Coverage {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sum := 0.0
	for _, k := range keys {
		sum += d.Coverage[k]
	}
	return sum / float64(len(d.Coverage))
}
