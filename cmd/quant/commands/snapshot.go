package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/geflip/internal/collector"
	"github.com/wonny/geflip/internal/s0_snapshot"
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "스냅샷 파일 상태 확인",
	Long: `데이터 디렉터리의 스냅샷 파일을 확인합니다.

Subcommands:
  check   - 전체 유니버스 로딩 후 건수 출력

Example:
  go run ./cmd/quant snapshot check
  go run ./cmd/quant snapshot check --data-dir ./data --windows 12`,
}

var snapshotCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "스냅샷 로딩 검증",
	Long: `analyze와 같은 방식으로 mapping.json, latest.json, 1h-*.json을 로딩합니다.

확인 항목:
- mapping 아이템 수
- latest quote 수 (양쪽 가격이 모두 있는 quote 수)
- 사용될 1h 스냅샷 파일과 timestamp
- 품질 coverage (quote, mapping, window, average)
- 엔드포인트별 마지막 수집 시각 (REDIS_ENABLED=true일 때)

--strict: 품질 기준 미달 시 실패 (수집 모니터링용)

파일이 없거나 깨져 있으면 analyze와 동일한 에러로 실패합니다.`,
	RunE: runSnapshotCheck,
}

var (
	snapshotDataDir string
	snapshotWindows int
	snapshotStrict  bool
)

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotCheckCmd)

	snapshotCheckCmd.Flags().StringVar(&snapshotDataDir, "data-dir", "", "스냅샷 디렉터리 (기본: DATA_DIR)")
	snapshotCheckCmd.Flags().IntVar(&snapshotWindows, "windows", 0, "확인할 1h 스냅샷 수 (기본: 전략 window.count)")
	snapshotCheckCmd.Flags().BoolVar(&snapshotStrict, "strict", false, "품질 기준 미달 시 실패")
}

func runSnapshotCheck(cmd *cobra.Command, args []string) error {
	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.Close()
	cfg, log := d.cfg, d.log

	dataDir := cfg.DataDir
	if snapshotDataDir != "" {
		dataDir = snapshotDataDir
	}

	// 전략 파일의 window.count를 따름
	strategy, err := resolveStrategy(cfg, log, "", snapshotWindows, 0)
	if err != nil {
		return err
	}
	windows := strategy.Window.Count

	set, err := s0_snapshot.NewLoader(dataDir, log).Load(windows)
	if err != nil {
		return err
	}

	complete := 0
	for _, q := range set.Latest {
		if q.Complete() {
			complete++
		}
	}
	quality := s0_snapshot.NewQualityGate(s0_snapshot.DefaultQualityConfig()).Check(set)

	out := cmd.OutOrStdout()
	PrintTitle(out, "Snapshot check")
	PrintKeyValue(out, "Data dir", dataDir, 14)
	PrintKeyValue(out, "Mapping items", formatNumber(int64(len(set.Mapping))), 14)
	PrintKeyValue(out, "Quotes", formatNumber(int64(len(set.Latest))), 14)
	PrintKeyValue(out, "Complete", formatNumber(int64(complete)), 14)
	PrintKeyValue(out, "Hourly files", fmt.Sprintf("%d / %d requested", len(set.Hourly), windows), 14)
	PrintSeparator(out)

	if len(set.Hourly) > 0 {
		PrintTableHeader(out, []string{"Timestamp", "UTC", "Items"}, []int{12, 20, 8})
		for _, h := range set.Hourly {
			PrintTableRow(out, []string{
				fmt.Sprintf("%d", h.Timestamp),
				time.Unix(h.Timestamp, 0).UTC().Format("2006-01-02 15:04"),
				formatNumber(int64(len(h.Windows))),
			}, []int{12, 20, 8})
		}
	} else {
		PrintWarning(out, "No hourly snapshots: every item will fail the safety cut")
	}

	fmt.Fprintln(out)
	widths := []int{10, 10, 0}
	PrintTableHeader(out, []string{"Coverage", "Ratio", "Status"}, widths)
	for _, key := range []string{
		s0_snapshot.CoverageQuote,
		s0_snapshot.CoverageMapping,
		s0_snapshot.CoverageWindow,
		s0_snapshot.CoverageAverage,
	} {
		status := "ok"
		for _, f := range quality.Failures {
			if f == key {
				status = "below threshold"
			}
		}
		PrintTableRow(out, []string{key, fmt.Sprintf("%.1f%%", quality.Coverage[key]*100), status}, widths)
	}
	PrintKeyValue(out, "Quality score", fmt.Sprintf("%.3f (valid %d / %d)", quality.QualityScore, quality.ValidItems, quality.TotalItems), 14)

	fmt.Fprintln(out)
	if err := printLastCollected(cmd.Context(), out, d); err != nil {
		return err
	}

	if snapshotStrict && !quality.Passed {
		return fmt.Errorf("snapshot quality check failed: %s", strings.Join(quality.Failures, ", "))
	}
	return nil
}

// printLastCollected shows the collection markers written by the collector
func printLastCollected(ctx context.Context, w io.Writer, d *deps) error {
	if !d.redis.Enabled() {
		PrintKeyValue(w, "Last collected", "unknown (redis disabled)", 14)
		return nil
	}

	col := d.newCollector()
	widths := []int{10, 0}
	PrintTableHeader(w, []string{"Endpoint", "Last collected"}, widths)
	for _, endpoint := range []string{
		collector.EndpointLatest,
		collector.EndpointHourly,
		collector.EndpointMapping,
		collector.EndpointFiveMinute,
	} {
		at, found, err := col.LastCollected(ctx, endpoint)
		if err != nil {
			return fmt.Errorf("read collection marker %s: %w", endpoint, err)
		}
		value := "-"
		if found {
			value = fmt.Sprintf("%s (%s ago)", at.Format("2006-01-02 15:04:05"), time.Since(at).Round(time.Second))
		}
		PrintTableRow(w, []string{endpoint, value}, widths)
	}
	return nil
}
