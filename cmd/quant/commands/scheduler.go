package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/geflip/internal/scheduler"
	"github.com/wonny/geflip/internal/scheduler/jobs"
	"github.com/wonny/geflip/pkg/logger"
	"github.com/wonny/geflip/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스냅샷 수집 스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/quant scheduler start
  go run ./cmd/quant scheduler list
  go run ./cmd/quant scheduler run latest_collection`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- latest_collection: 5분마다 (latest.json)
- snapshot_log: 5분마다, 30초 지연 (5m JSONL 로그)
- hourly_collection: 매시 2분 (1h 스냅샷)
- mapping_refresh: 매일 00:10 (mapping.json, 신선하면 건너뜀)
- rotation: 매시 30분 (보관 정책)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	// Flags
	schedulerRunNow bool
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerStartCmd.Flags().BoolVar(&schedulerRunNow, "run-now", false, "시작 직후 latest/mapping 수집 1회 실행")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== geflip Scheduler ===")

	// Initialize dependencies
	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.Close()

	// rotation 작업이 analyze 입력을 지우지 않는지 확인
	for _, w := range d.retentionWarnings() {
		PrintWarning(out, w.Message)
	}

	sched, err := initScheduler(d)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	// 첫 스케줄을 기다리지 않고 바로 분석 가능한 상태로
	if schedulerRunNow {
		for _, name := range []string{"mapping_refresh", "latest_collection"} {
			if err := sched.RunJob(name); err != nil {
				return fmt.Errorf("run job: %w", err)
			}
		}
	}

	// Start scheduler
	sched.Start()

	fmt.Fprintln(out, "\n✅ Scheduler started successfully")
	printJobs(cmd, sched)
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case <-cmd.Context().Done():
	}

	fmt.Fprintln(out, "\nShutting down scheduler...")
	sched.Stop()
	fmt.Fprintln(out, "Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// 목록 조회는 네트워크/redis 불필요
	d := &deps{cfg: cfg, log: logger.Nop(), redis: redis.Disabled()}
	sched, err := initScheduler(d)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	printJobs(cmd, sched)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.Close()

	sched, err := initScheduler(d)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Running job: %s\n", jobName)

	result, err := sched.RunJobNow(ctx, jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	PrintSuccess(out, fmt.Sprintf("Job %s completed in %.2fs", jobName, result.Duration.Seconds()))
	return nil
}

func initScheduler(d *deps) (*scheduler.Scheduler, error) {
	col := d.newCollector()
	sched := scheduler.New(d.log)

	// Register jobs
	for _, job := range jobs.All(col, d.log) {
		if err := sched.AddJob(job); err != nil {
			return nil, err
		}
	}

	return sched, nil
}

func printJobs(cmd *cobra.Command, sched *scheduler.Scheduler) {
	out := cmd.OutOrStdout()
	stats := sched.GetJobStats()

	fmt.Fprintln(out, "\nRegistered jobs:")
	widths := []int{20, 16, 0}
	PrintTableHeader(out, []string{"Job", "Schedule", "Next run"}, widths)
	for _, name := range sched.GetAllJobs() {
		stat := stats[name]
		next := "-"
		if stat.NextRun != nil {
			next = stat.NextRun.Format("2006-01-02 15:04:05")
		}
		PrintTableRow(out, []string{name, stat.Schedule, next}, widths)
	}
}
