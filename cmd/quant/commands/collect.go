package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/geflip/internal/collector"
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "가격 API 스냅샷 수집",
	Long: `가격 API에서 스냅샷을 내려받아 데이터 디렉터리에 저장합니다.

Subcommands:
  latest   - latest.json 갱신
  hourly   - 1h-<timestamp>.json 저장
  mapping  - mapping.json 갱신 (MAPPING_MAX_AGE 이내면 건너뜀)
  log      - 5m 스냅샷을 일별 JSONL 로그에 추가
  all      - 위 네 가지를 동시에 실행

모든 파일은 검증 후 원자적으로 교체됩니다 (깨진 응답은 기존 파일 유지).

Example:
  go run ./cmd/quant collect latest
  go run ./cmd/quant collect mapping --force
  go run ./cmd/quant collect all`,
}

var (
	collectLatestCmd = &cobra.Command{
		Use:   "latest",
		Short: "latest.json 갱신",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd, func(ctx context.Context, col *collector.Collector) ([]collector.Result, error) {
				return single(col.CollectLatest(ctx))
			})
		},
	}

	collectHourlyCmd = &cobra.Command{
		Use:   "hourly",
		Short: "1h 스냅샷 저장",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd, func(ctx context.Context, col *collector.Collector) ([]collector.Result, error) {
				return single(col.CollectHourly(ctx))
			})
		},
	}

	collectMappingCmd = &cobra.Command{
		Use:   "mapping",
		Short: "mapping.json 갱신",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd, func(ctx context.Context, col *collector.Collector) ([]collector.Result, error) {
				return single(col.CollectMapping(ctx, collectForce))
			})
		},
	}

	collectLogCmd = &cobra.Command{
		Use:   "log",
		Short: "5m 스냅샷 로그 추가",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd, func(ctx context.Context, col *collector.Collector) ([]collector.Result, error) {
				return single(col.AppendLog(ctx))
			})
		},
	}

	collectAllCmd = &cobra.Command{
		Use:   "all",
		Short: "모든 엔드포인트 수집",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd, func(ctx context.Context, col *collector.Collector) ([]collector.Result, error) {
				return col.CollectAll(ctx, collectForce)
			})
		},
	}

	// Flags
	collectForce   bool
	collectTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(collectCmd)
	collectCmd.AddCommand(collectLatestCmd)
	collectCmd.AddCommand(collectHourlyCmd)
	collectCmd.AddCommand(collectMappingCmd)
	collectCmd.AddCommand(collectLogCmd)
	collectCmd.AddCommand(collectAllCmd)

	collectCmd.PersistentFlags().DurationVar(&collectTimeout, "timeout", 2*time.Minute, "전체 수집 제한 시간")
	collectMappingCmd.Flags().BoolVar(&collectForce, "force", false, "신선도와 무관하게 mapping 갱신")
	collectAllCmd.Flags().BoolVar(&collectForce, "force-mapping", false, "신선도와 무관하게 mapping 갱신")
}

func runCollect(cmd *cobra.Command, fn func(context.Context, *collector.Collector) ([]collector.Result, error)) error {
	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), collectTimeout)
	defer cancel()

	start := time.Now()
	results, err := fn(ctx, d.newCollector())
	if err != nil {
		return err
	}

	printCollectResults(cmd.OutOrStdout(), results, time.Since(start))
	return nil
}

func single(res *collector.Result, err error) ([]collector.Result, error) {
	if err != nil {
		return nil, err
	}
	return []collector.Result{*res}, nil
}

func printCollectResults(w io.Writer, results []collector.Result, elapsed time.Duration) {
	widths := []int{10, 8, 12, 0}
	PrintTableHeader(w, []string{"Endpoint", "Items", "Bytes", "Path"}, widths)
	for _, r := range results {
		path := r.Path
		if r.Skipped {
			path = "(fresh, skipped) " + path
		}
		PrintTableRow(w, []string{
			r.Endpoint,
			formatNumber(int64(r.Items)),
			formatNumber(int64(r.Bytes)),
			path,
		}, widths)
	}
	fmt.Fprintln(w)
	PrintSuccess(w, fmt.Sprintf("Collected %d endpoint(s) in %.2fs", len(results), elapsed.Seconds()))
}
