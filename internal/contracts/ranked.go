package contracts

// Category is the ranking bucket of an opportunity
type Category string

const (
	CategoryHighValue  Category = "high_value"
	CategoryHighVolume Category = "high_volume"
)

// Candidate is a merged record that passed S3 screening, with its cut flags
// ⭐ SSOT: S3 → S4 후보 전달
type Candidate struct {
	Record    MergedRecord `json:"record"`
	VolumeCut bool         `json:"volume_cut"`
	ValueCut  bool         `json:"value_cut"`
}

// Opportunity is a ranked candidate
type Opportunity struct {
	Rank          int      `json:"rank"` // 1-based, within category
	Category      Category `json:"category"`
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	CurLow        float64  `json:"cur_low"`
	CurHigh       float64  `json:"cur_high"`
	Margin        float64  `json:"margin"`
	NetMargin     float64  `json:"net_margin"`
	ROI           *float64 `json:"roi,omitempty"`
	HourlyVolume  float64  `json:"hourly_volume"`
	TradeLimit    int64    `json:"trade_limit"`
	ProfitAtLimit float64  `json:"profit_at_limit"`
}

// NewOpportunity builds an Opportunity from a merged record
func NewOpportunity(rec MergedRecord, category Category, rank int) Opportunity {
	return Opportunity{
		Rank:          rank,
		Category:      category,
		ID:            rec.ID,
		Name:          rec.Name(),
		CurLow:        rec.CurLow,
		CurHigh:       rec.CurHigh,
		Margin:        rec.Metrics.Margin,
		NetMargin:     rec.Metrics.NetMargin,
		ROI:           rec.Metrics.ROI,
		HourlyVolume:  rec.Metrics.HourlyVolume,
		TradeLimit:    rec.TradeLimit(),
		ProfitAtLimit: rec.Metrics.ProfitAtLimit,
	}
}

// RankedLists holds the two disjoint top-K lists
type RankedLists struct {
	HighValue  []Opportunity `json:"high_value"`
	HighVolume []Opportunity `json:"high_volume"`
}
