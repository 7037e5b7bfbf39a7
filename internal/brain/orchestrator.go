package brain

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/geflip/internal/contracts"
	"github.com/wonny/geflip/internal/s0_snapshot"
	"github.com/wonny/geflip/internal/s1_window"
	"github.com/wonny/geflip/internal/s2_merge"
	"github.com/wonny/geflip/internal/selection"
	"github.com/wonny/geflip/internal/strategyconfig"
	"github.com/wonny/geflip/pkg/logger"
)

// Orchestrator coordinates the snapshot → ranking pipeline
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	// Stage components
	loader     *s0_snapshot.Loader
	quality    *s0_snapshot.QualityGate
	aggregator *s1_window.Aggregator
	merger     *s2_merge.Merger
	calculator *s2_merge.Calculator
	screener   *selection.Screener
	ranker     *selection.Ranker

	strategy *strategyconfig.Config
	logger   *logger.Logger
}

// RunConfig holds configuration for a pipeline run
type RunConfig struct {
	RunID string
}

// RunStats holds per-stage counts of a run
type RunStats struct {
	MappingItems int            `json:"mapping_items"`
	Quotes       int            `json:"quotes"`
	HourlyFiles  int            `json:"hourly_files"`
	WindowItems  int            `json:"window_items"`
	Merged       int            `json:"merged"`
	Candidates   int            `json:"candidates"`
	Filtered     map[string]int `json:"filtered"`
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	RunID           string
	Success         bool
	Error           error
	CompletedStages []string
	Decision        *strategyconfig.DecisionSnapshot
	Quality         *contracts.DataQualitySnapshot
	Stats           RunStats
	Lists           *contracts.RankedLists
	Duration        time.Duration
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	loader *s0_snapshot.Loader,
	quality *s0_snapshot.QualityGate,
	aggregator *s1_window.Aggregator,
	merger *s2_merge.Merger,
	calculator *s2_merge.Calculator,
	screener *selection.Screener,
	ranker *selection.Ranker,
	strategy *strategyconfig.Config,
	logger *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		loader:     loader,
		quality:    quality,
		aggregator: aggregator,
		merger:     merger,
		calculator: calculator,
		screener:   screener,
		ranker:     ranker,
		strategy:   strategy,
		logger:     logger,
	}
}

// New wires every stage from the data directory and strategy
func New(dataDir string, strategy *strategyconfig.Config, log *logger.Logger) *Orchestrator {
	return NewOrchestrator(
		s0_snapshot.NewLoader(dataDir, log),
		s0_snapshot.NewQualityGate(s0_snapshot.DefaultQualityConfig()),
		s1_window.NewAggregator(log),
		s2_merge.NewMerger(log),
		s2_merge.NewCalculator(strategy.Metrics.TaxRate),
		selection.NewScreener(ScreenerConfig(strategy), log),
		selection.NewRanker(strategy.Ranking.TopK, log),
		strategy,
		log,
	)
}

// ScreenerConfig maps strategy thresholds onto the screener
func ScreenerConfig(strategy *strategyconfig.Config) selection.ScreenerConfig {
	return selection.ScreenerConfig{
		VolumeMin:    strategy.Screening.VolumeMin,
		ValueMin:     strategy.Screening.ValueMin,
		MaxDeviation: strategy.Screening.MaxDeviation,
		MinNetMargin: strategy.Screening.MinNetMargin,
	}
}

// Run executes the complete pipeline
// S0 → S1 → S2 → S3 → S4
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := time.Now()

	result := &RunResult{
		RunID:           config.RunID,
		Success:         false,
		CompletedStages: make([]string, 0),
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":      config.RunID,
		"data_dir":    o.loader.DataDir(),
		"strategy_id": o.strategy.Meta.StrategyID,
		"windows":     o.strategy.Window.Count,
	}).Info("Starting pipeline run")

	// S0: Snapshot load
	set, err := o.runS0(ctx)
	if err != nil {
		result.Error = fmt.Errorf("S0 failed: %w", err)
		return result, result.Error
	}
	result.Stats.MappingItems = len(set.Mapping)
	result.Stats.Quotes = len(set.Latest)
	result.Stats.HourlyFiles = len(set.Hourly)
	result.Quality = o.checkQuality(set)
	result.CompletedStages = append(result.CompletedStages, "S0:Snapshot")

	decision, err := strategyconfig.NewDecisionSnapshot(o.strategy, set.HourlyTimestamps())
	if err != nil {
		result.Error = fmt.Errorf("decision snapshot: %w", err)
		return result, result.Error
	}
	result.Decision = decision

	// S1: Window aggregation
	windows := o.aggregator.Aggregate(set.Hourly)
	result.Stats.WindowItems = len(windows)
	result.CompletedStages = append(result.CompletedStages, "S1:Window")

	// S2: Merge + metrics
	records := o.merger.Merge(set.Latest, windows, set.Mapping)
	o.calculator.Apply(records)
	result.Stats.Merged = len(records)
	result.CompletedStages = append(result.CompletedStages, "S2:Merge")

	// S3: Screening
	candidates, stats, err := o.screener.Screen(ctx, records)
	if err != nil {
		result.Error = fmt.Errorf("S3 failed: %w", err)
		return result, result.Error
	}
	result.Stats.Candidates = len(candidates)
	result.Stats.Filtered = stats.Filtered
	result.CompletedStages = append(result.CompletedStages, "S3:Screener")

	// S4: Ranking
	lists, err := o.ranker.Rank(ctx, candidates)
	if err != nil {
		result.Error = fmt.Errorf("S4 failed: %w", err)
		return result, result.Error
	}
	result.Lists = lists
	result.CompletedStages = append(result.CompletedStages, "S4:Ranker")

	// Mark success
	result.Success = true
	result.Duration = time.Since(startTime)

	o.logger.WithFields(map[string]interface{}{
		"run_id":      config.RunID,
		"config_hash": decision.ConfigHash,
		"duration":    result.Duration.Seconds(),
		"stages":      len(result.CompletedStages),
		"high_value":  len(lists.HighValue),
		"high_volume": len(lists.HighVolume),
	}).Info("Pipeline run completed successfully")

	return result, nil
}

// runS0 executes S0: Snapshot load
func (o *Orchestrator) runS0(ctx context.Context) (*contracts.SnapshotSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.logger.Info("Running S0: Snapshot load")

	set, err := o.loader.Load(o.strategy.Window.Count)
	if err != nil {
		return nil, fmt.Errorf("snapshot load: %w", err)
	}

	o.logger.WithFields(map[string]interface{}{
		"mapping_items": len(set.Mapping),
		"quotes":        len(set.Latest),
		"hourly_files":  len(set.Hourly),
	}).Info("S0 completed")

	return set, nil
}

// checkQuality logs snapshot coverage; a low score warns but never stops the run
func (o *Orchestrator) checkQuality(set *contracts.SnapshotSet) *contracts.DataQualitySnapshot {
	q := o.quality.Check(set)

	log := o.logger.WithFields(map[string]interface{}{
		"quality_score": q.QualityScore,
		"valid_items":   q.ValidItems,
		"total_items":   q.TotalItems,
	})
	if !q.Passed {
		log.WithField("failures", q.Failures).Warn("Snapshot quality below thresholds")
	} else {
		log.Debug("Snapshot quality passed")
	}

	return q
}

// GenerateRunID generates a unique run ID
func GenerateRunID() string {
	return fmt.Sprintf("run_%s", time.Now().Format("20060102_150405"))
}
