package contracts

// ItemMetadata represents one entry of mapping.json passed from S0 to S2
// ⭐ SSOT: 아이템 메타데이터 (id, name, trade limit)
type ItemMetadata struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	TradeLimit *int64 `json:"trade_limit,omitempty"` // nil = unmapped limit
}

// Limit returns the trade limit, 0 when absent
func (m *ItemMetadata) Limit() int64 {
	if m == nil || m.TradeLimit == nil {
		return 0
	}
	return *m.TradeLimit
}

// InstantQuote is the latest observed high/low for an item (latest.json)
type InstantQuote struct {
	ID      int64    `json:"id"`
	CurHigh *float64 `json:"cur_high,omitempty"`
	CurLow  *float64 `json:"cur_low,omitempty"`
}

// Complete reports whether both sides of the quote are present
func (q *InstantQuote) Complete() bool {
	return q.CurHigh != nil && q.CurLow != nil
}

// HourlyWindow is one item's row in a 1h-<ts>.json snapshot
// avg 가격은 nil = unknown, volume은 nil이면 0으로 취급
type HourlyWindow struct {
	ID              int64    `json:"id"`
	AvgHighPrice    *float64 `json:"avg_high_price,omitempty"`
	AvgLowPrice     *float64 `json:"avg_low_price,omitempty"`
	HighVolume      float64  `json:"high_volume"`
	LowVolume       float64  `json:"low_volume"`
	WindowTimestamp int64    `json:"window_timestamp"`
}

// HourlySnapshot is one parsed hourly window file
type HourlySnapshot struct {
	Path      string                 `json:"path"`
	Timestamp int64                  `json:"timestamp"` // 파일 이름에 포함된 시각
	Windows   map[int64]HourlyWindow `json:"windows"`
}

// AggregatedWindow combines the last N hourly windows of an item
// Derived per run, never persisted
type AggregatedWindow struct {
	ID           int64    `json:"id"`
	AvgHighPrice *float64 `json:"avg_high_price,omitempty"`
	AvgLowPrice  *float64 `json:"avg_low_price,omitempty"`
	TotalVolume  float64  `json:"total_volume"`
	Observations int      `json:"observations"` // 집계에 포함된 window 수
}

// SnapshotSet is the full input universe of a single run
// ⭐ SSOT: S0 → S1/S2 스냅샷 전달
type SnapshotSet struct {
	Mapping map[int64]ItemMetadata `json:"mapping"`
	Latest  map[int64]InstantQuote `json:"latest"`
	Hourly  []HourlySnapshot       `json:"hourly"` // timestamp 오름차순
}

// HourlyTimestamps returns the timestamps of the hourly snapshots in order
func (s *SnapshotSet) HourlyTimestamps() []int64 {
	out := make([]int64, 0, len(s.Hourly))
	for _, h := range s.Hourly {
		out = append(out, h.Timestamp)
	}
	return out
}
