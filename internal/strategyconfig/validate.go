package strategyconfig

import (
	"fmt"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Window ===
	if cfg.Window.Count < 1 {
		return ValidationError{"window.count", "must be >= 1"}
	}

	// === Metrics ===
	if cfg.Metrics.TaxRate < 0 || cfg.Metrics.TaxRate >= 1 {
		return ValidationError{"metrics.tax_rate", "must be in range [0, 1)"}
	}

	// === Screening ===
	if cfg.Screening.VolumeMin < 0 {
		return ValidationError{"screening.volume_min", "must be >= 0"}
	}
	if cfg.Screening.ValueMin < 0 {
		return ValidationError{"screening.value_min", "must be >= 0"}
	}
	if cfg.Screening.MaxDeviation <= 0 {
		return ValidationError{"screening.max_deviation", "must be > 0"}
	}
	if cfg.Screening.MinNetMargin < 0 {
		return ValidationError{"screening.min_net_margin", "must be >= 0"}
	}

	// === Ranking ===
	if cfg.Ranking.TopK < 1 {
		return ValidationError{"ranking.top_k", "must be >= 1"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 1개 window만 보면 평균가가 곧 직전 시세
	if cfg.Window.Count < 3 {
		warnings = append(warnings, Warning{
			Code:    "SHORT_WINDOW",
			Message: fmt.Sprintf("window.count=%d: average low price is noisy", cfg.Window.Count),
		})
	}

	if cfg.Screening.MaxDeviation > 0.2 {
		warnings = append(warnings, Warning{
			Code:    "LOOSE_SAFETY",
			Message: "max_deviation > 20%: safety cut barely filters manipulated prices",
		})
	}

	if cfg.Metrics.TaxRate == 0 {
		warnings = append(warnings, Warning{
			Code:    "NO_TAX",
			Message: "tax_rate = 0: net margin will overstate profit",
		})
	}

	return warnings
}

// WarnRetention flags an hourly retention that rotates away windows the strategy reads
func WarnRetention(cfg *Config, hourlyKeep int) []Warning {
	if hourlyKeep >= cfg.Window.Count {
		return nil
	}
	msg := fmt.Sprintf("HOURLY_RETENTION=%d < window.count=%d: rotation deletes hourly snapshots analyze needs",
		hourlyKeep, cfg.Window.Count)
	return []Warning{{Code: "RETENTION_BELOW_WINDOW", Message: msg}}
}
