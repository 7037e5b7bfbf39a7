package strategyconfig

import "time"

// Config는 플립 기회 탐색 전략의 전체 설정
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Window    Window    `yaml:"window" json:"window"`
	Metrics   Metrics   `yaml:"metrics" json:"metrics"`
	Screening Screening `yaml:"screening" json:"screening"`
	Ranking   Ranking   `yaml:"ranking" json:"ranking"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Window S1: hourly window 집계
type Window struct {
	Count int `yaml:"count" json:"count"` // 최근 N개 1h 스냅샷
}

// Metrics S2: 파생 지표
type Metrics struct {
	TaxRate float64 `yaml:"tax_rate" json:"tax_rate"` // round-trip 거래세
}

// Screening S3: Hard Cut
type Screening struct {
	VolumeMin    float64 `yaml:"volume_min" json:"volume_min"`         // hourly volume > volume_min
	ValueMin     float64 `yaml:"value_min" json:"value_min"`           // cur_low > value_min
	MaxDeviation float64 `yaml:"max_deviation" json:"max_deviation"`   // |cur_low-avg_low|/avg_low < max
	MinNetMargin float64 `yaml:"min_net_margin" json:"min_net_margin"` // net_margin > min
}

// Ranking S4: 카테고리별 top-K
type Ranking struct {
	TopK int `yaml:"top_k" json:"top_k"`
}

// Default returns the built-in strategy
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "ge_flip",
			Version:    "1",
		},
		Window: Window{
			Count: 6,
		},
		Metrics: Metrics{
			TaxRate: 0.02, // 2% round-trip
		},
		Screening: Screening{
			VolumeMin:    500_000,
			ValueMin:     5_000_000,
			MaxDeviation: 0.05,
			MinNetMargin: 0,
		},
		Ranking: Ranking{
			TopK: 10,
		},
	}
}

// DecisionSnapshot 실행 재현성용 스냅샷
type DecisionSnapshot struct {
	ConfigHash       string    `json:"config_hash"`
	StrategyID       string    `json:"strategy_id"`
	HourlyTimestamps []int64   `json:"hourly_timestamps"`
	CreatedAt        time.Time `json:"created_at"`
}
