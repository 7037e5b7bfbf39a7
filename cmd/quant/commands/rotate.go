package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// rotateCmd represents the rotate command
var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "오래된 스냅샷/로그 정리",
	Long: `보관 정책에 따라 오래된 파일을 삭제합니다.

정리 대상:
- 1h-<timestamp>.json: 최신 HOURLY_RETENTION 개만 유지
- <LOG_DIR>/<YYYY-MM-DD>.jsonl: 오늘 포함 LOG_KEEP_DAYS 일치만 유지

이름 규칙에 맞지 않는 파일은 건드리지 않습니다.

Example:
  go run ./cmd/quant rotate`,
	RunE: runRotate,
}

func init() {
	rootCmd.AddCommand(rotateCmd)
}

func runRotate(cmd *cobra.Command, args []string) error {
	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	res, err := d.newCollector().Rotate(ctx)
	if err != nil {
		return fmt.Errorf("rotate: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, w := range d.retentionWarnings() {
		PrintWarning(out, w.Message)
	}
	PrintKeyValue(out, "Hourly kept", formatNumber(int64(res.HourlyKept)), 14)
	PrintKeyValue(out, "Hourly deleted", formatNumber(int64(len(res.HourlyDeleted))), 14)
	PrintKeyValue(out, "Logs deleted", formatNumber(int64(len(res.LogsDeleted))), 14)
	if verbose {
		for _, path := range append(res.HourlyDeleted, res.LogsDeleted...) {
			fmt.Fprintf(out, "   - %s\n", path)
		}
	}
	return nil
}
