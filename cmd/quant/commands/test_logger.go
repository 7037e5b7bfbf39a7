package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/geflip/pkg/config"
	"github.com/wonny/geflip/pkg/logger"
)

// testLoggerCmd represents the test-logger command
var testLoggerCmd = &cobra.Command{
	Use:   "test-logger",
	Short: "Logger 기능 테스트",
	Long: `구조화된 로깅 출력을 확인합니다.

이 명령어는:
- JSON/Console 포맷 출력
- 구조화된 필드 로깅
- 에러 컨텍스트 로깅

로그 출력 자체가 결과이므로 stdout으로 씁니다.

Example:
  go run ./cmd/quant test-logger`,
	RunE: runTestLogger,
}

func init() {
	rootCmd.AddCommand(testLoggerCmd)
}

func runTestLogger(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== geflip Logger Test ===")

	sections := []struct {
		title string
		cfg   *config.Config
		run   func(*logger.Logger)
	}{
		{"1. JSON Format (Production)", &config.Config{Env: "production", LogLevel: "info", LogFormat: "json"}, logLevels},
		{"2. Console Format (Development)", &config.Config{Env: "development", LogLevel: "debug", LogFormat: "console"}, logLevels},
		{"3. Structured Logging with Fields", &config.Config{Env: "production", LogLevel: "info", LogFormat: "json"}, logFields},
		{"4. Error Logging", &config.Config{Env: "production", LogLevel: "error", LogFormat: "json"}, logErrors},
	}

	for _, s := range sections {
		fmt.Fprintln(out, s.title)
		PrintSeparator(out)
		s.run(logger.NewWithWriter(s.cfg, out))
		fmt.Fprintln(out)
	}

	PrintSuccess(out, "All logger tests completed!")
	return nil
}

func logLevels(log *logger.Logger) {
	log.Debug("Resolving hourly snapshot files")
	log.Info("Pipeline run started")
	log.Warn("Fewer hourly snapshots than requested")
	log.Error("Failed to fetch latest prices")
}

func logFields(log *logger.Logger) {
	// Single field
	log.Module("collector").Info("Collection started")

	// Multiple fields
	log.WithFields(map[string]interface{}{
		"item_id":    4151,
		"cur_low":    1_500_000,
		"net_margin": 196_000,
		"category":   "high_value",
	}).Info("Opportunity ranked")

	// Chained fields
	log.Module("s3_screener").
		WithField("rejected", 12).
		Info("Screening completed")
}

func logErrors(log *logger.Logger) {
	err := errors.New("connection timeout")

	// Simple error
	log.WithError(err).Error("Failed to fetch latest.json")

	// Error with context
	log.WithError(err).
		WithFields(map[string]interface{}{
			"retry_count": 3,
			"timeout_ms":  10000,
			"endpoint":    "/latest",
		}).
		Error("Fetch failed after retries")
}
