package s2_merge

import (
	"github.com/wonny/geflip/internal/contracts"
)

// Calculator derives per-item financial metrics
// ⭐ SSOT: 지표 계산식은 여기서만
type Calculator struct {
	taxRate float64
}

// NewCalculator creates a calculator with the round-trip tax rate (e.g. 0.02)
func NewCalculator(taxRate float64) *Calculator {
	return &Calculator{taxRate: taxRate}
}

// Compute returns the metrics of one merged record
func (c *Calculator) Compute(rec *contracts.MergedRecord) contracts.Metrics {
	margin := rec.CurHigh - rec.CurLow
	netMargin := margin * (1 - c.taxRate)

	// window 없으면 volume 0, limit 없으면 profit 0
	m := contracts.Metrics{
		Margin:        margin,
		NetMargin:     netMargin,
		HourlyVolume:  rec.TotalVolume(),
		ProfitAtLimit: netMargin * float64(rec.TradeLimit()),
	}

	// cur_low = 0 → ROI 정의 안 됨
	if rec.CurLow != 0 {
		roi := netMargin / rec.CurLow
		m.ROI = &roi
	}

	return m
}

// Apply fills Metrics on every record in place
func (c *Calculator) Apply(records []contracts.MergedRecord) {
	for i := range records {
		records[i].Metrics = c.Compute(&records[i])
	}
}
