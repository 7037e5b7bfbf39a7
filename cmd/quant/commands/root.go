package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "geflip - Grand Exchange 플립 기회 탐색기",
	Long: `geflip Unified CLI

가격 스냅샷(latest, 1h, mapping)을 모아 플립 기회를 찾는 배치 파이프라인.
S0 스냅샷 로딩 → S1 window 집계 → S2 병합/지표 → S3 Hard Cut → S4 랭킹.

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant analyze
  go run ./cmd/quant analyze --windows 12 --top 20 --format json
  go run ./cmd/quant collect all
  go run ./cmd/quant scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs)")
}
