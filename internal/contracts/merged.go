package contracts

// MergedRecord is one instant-quote row joined with its window and metadata
// ⭐ SSOT: S2 → S3 병합 레코드 전달
type MergedRecord struct {
	ID      int64   `json:"id"`
	CurHigh float64 `json:"cur_high"`
	CurLow  float64 `json:"cur_low"`

	// Left-joined sources, nil when the item had no row there
	Window   *AggregatedWindow `json:"window,omitempty"`
	Metadata *ItemMetadata     `json:"metadata,omitempty"`

	Metrics Metrics `json:"metrics"`
}

// Metrics are the derived financial values of a merged record
type Metrics struct {
	Margin        float64  `json:"margin"`
	NetMargin     float64  `json:"net_margin"`
	ROI           *float64 `json:"roi,omitempty"` // nil when cur_low = 0
	HourlyVolume  float64  `json:"hourly_volume"`
	ProfitAtLimit float64  `json:"profit_at_limit"`
}

// Name returns the mapped item name, empty when unmapped
func (r *MergedRecord) Name() string {
	if r.Metadata == nil {
		return ""
	}
	return r.Metadata.Name
}

// TradeLimit returns the trade limit, 0 when unmapped or absent
func (r *MergedRecord) TradeLimit() int64 {
	return r.Metadata.Limit()
}

// AvgLowPrice returns the aggregated average low price (nil = unknown)
func (r *MergedRecord) AvgLowPrice() *float64 {
	if r.Window == nil {
		return nil
	}
	return r.Window.AvgLowPrice
}

// TotalVolume returns the aggregated volume, 0 when no window exists
func (r *MergedRecord) TotalVolume() float64 {
	if r.Window == nil {
		return 0
	}
	return r.Window.TotalVolume
}
