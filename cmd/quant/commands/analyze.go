package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wonny/geflip/internal/brain"
	"github.com/wonny/geflip/internal/strategyconfig"
	"github.com/wonny/geflip/pkg/config"
	"github.com/wonny/geflip/pkg/logger"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "플립 기회 랭킹 (S0 → S4)",
	Long: `데이터 디렉터리의 스냅샷으로 전체 파이프라인을 실행합니다.

S0 → S1 → S2 → S3 → S4

각 단계:
- S0: mapping.json, latest.json, 최근 N개 1h-*.json 로딩
- S1: hourly window 집계 (평균가, 거래량 합)
- S2: 병합 + 지표 (net margin, ROI, profit at limit)
- S3: Hard Cut (safety, activity, profitability)
- S4: high-value / high-volume 랭킹

결과 테이블(또는 JSON)은 stdout, 로그는 stderr로 출력됩니다.

Example:
  go run ./cmd/quant analyze
  go run ./cmd/quant analyze --data-dir ./data --windows 12 --top 20
  go run ./cmd/quant analyze --strategy strategy.yaml --format json`,
	RunE: runAnalyze,
}

var (
	// Flags
	analyzeDataDir  string
	analyzeWindows  int
	analyzeTop      int
	analyzeStrategy string
	analyzeFormat   string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Flags
	analyzeCmd.Flags().StringVar(&analyzeDataDir, "data-dir", "", "스냅샷 디렉터리 (기본: DATA_DIR)")
	analyzeCmd.Flags().IntVar(&analyzeWindows, "windows", 0, "집계할 1h 스냅샷 수 (기본: 전략 window.count)")
	analyzeCmd.Flags().IntVar(&analyzeTop, "top", 0, "카테고리별 top-K (기본: 전략 ranking.top_k)")
	analyzeCmd.Flags().StringVar(&analyzeStrategy, "strategy", "", "전략 YAML (기본: STRATEGY_FILE)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", formatTable, "출력 포맷 (table|json)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeFormat != formatTable && analyzeFormat != formatJSON {
		return fmt.Errorf("invalid --format %q (table|json)", analyzeFormat)
	}

	// Config + logger (analyze는 redis 불필요)
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	strategy, err := resolveStrategy(cfg, log, analyzeStrategy, analyzeWindows, analyzeTop)
	if err != nil {
		return err
	}

	dataDir := cfg.DataDir
	if analyzeDataDir != "" {
		dataDir = analyzeDataDir
	}

	// Execute pipeline
	orchestrator := brain.New(dataDir, strategy, log)
	result, err := orchestrator.Run(cmd.Context(), brain.RunConfig{RunID: brain.GenerateRunID()})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if analyzeFormat == formatJSON {
		return writeJSON(out, result.Lists)
	}

	printRunResult(out, result)
	return nil
}

// resolveStrategy loads the strategy file and applies the flag overrides (0 / "" = keep)
func resolveStrategy(cfg *config.Config, log *logger.Logger, file string, windows, top int) (*strategyconfig.Config, error) {
	path := cfg.StrategyFile
	if file != "" {
		path = file
	}

	strategy, err := strategyconfig.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}

	if windows != 0 {
		strategy.Window.Count = windows
	}
	if top != 0 {
		strategy.Ranking.TopK = top
	}

	// 플래그 적용 후 다시 검증
	if err := strategyconfig.Validate(strategy); err != nil {
		return nil, fmt.Errorf("invalid strategy: %w", err)
	}

	warnings := append(strategyconfig.Warn(strategy), strategyconfig.WarnRetention(strategy, cfg.Retention.HourlyKeep)...)
	for _, w := range warnings {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	return strategy, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func printRunResult(w io.Writer, result *brain.RunResult) {
	PrintTitle(w, "geflip analyze")
	PrintKeyValue(w, "Run ID", result.RunID, 12)
	if result.Decision != nil {
		PrintKeyValue(w, "Strategy", result.Decision.StrategyID, 12)
		PrintKeyValue(w, "Config hash", shortHash(result.Decision.ConfigHash), 12)
	}
	PrintKeyValue(w, "Items", fmt.Sprintf("%d quotes, %d mapped, %d merged",
		result.Stats.Quotes, result.Stats.MappingItems, result.Stats.Merged), 12)
	PrintKeyValue(w, "Windows", fmt.Sprintf("%d hourly files, %d items",
		result.Stats.HourlyFiles, result.Stats.WindowItems), 12)
	PrintKeyValue(w, "Candidates", fmt.Sprintf("%d", result.Stats.Candidates), 12)
	PrintKeyValue(w, "Duration", fmt.Sprintf("%.2fs", result.Duration.Seconds()), 12)
	PrintSeparator(w)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "💎 High value (%d)\n", len(result.Lists.HighValue))
	PrintHighValue(w, result.Lists.HighValue)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "📦 High volume (%d)\n", len(result.Lists.HighVolume))
	PrintHighVolume(w, result.Lists.HighVolume)

	if len(result.Lists.HighValue) == 0 && len(result.Lists.HighVolume) == 0 {
		fmt.Fprintln(w)
		PrintWarning(w, "No opportunities passed screening")
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
