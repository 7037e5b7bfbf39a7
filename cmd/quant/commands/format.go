package commands

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wonny/geflip/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// 결과는 항상 cmd.OutOrStdout()으로 (로그는 stderr)
// ═══════════════════════════════════════════════════════════

const lineWidth = 59

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("─", lineWidth))
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("═", lineWidth))
}

// PrintTitle prints a boxed section title
func PrintTitle(w io.Writer, title string) {
	fmt.Fprintln(w)
	PrintDoubleSeparator(w)
	fmt.Fprintf(w, "  %s\n", title)
	PrintSeparator(w)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}

// PrintTableHeader prints a table header
func PrintTableHeader(w io.Writer, columns []string, widths []int) {
	PrintTableRow(w, columns, widths)

	// Separator line
	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		if i < len(values)-1 {
			fmt.Fprintf(w, "%-*s  ", widths[i], val)
		} else {
			fmt.Fprint(w, val) // 마지막 칸은 패딩 없음
		}
	}
	fmt.Fprintln(w)
}

// formatNumber renders n with thousands separators
func formatNumber(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	s := fmt.Sprintf("%d", n)
	var result []rune
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, c)
	}
	return sign + string(result)
}

// formatGP renders a price/volume amount rounded to whole units
func formatGP(v float64) string {
	return formatNumber(int64(math.Round(v)))
}

// formatROI renders roi as a percentage, "-" when undefined
func formatROI(roi *float64) string {
	if roi == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", *roi*100)
}

var (
	highValueColumns  = []string{"#", "ID", "Name", "Buy (low)", "Sell (high)", "Net margin", "ROI"}
	highValueWidths   = []int{3, 6, 28, 14, 14, 12, 8}
	highVolumeColumns = []string{"#", "ID", "Name", "Volume", "Net margin", "Limit", "Profit @ limit"}
	highVolumeWidths  = []int{3, 6, 28, 14, 12, 8, 14}
)

// PrintHighValue prints the high-value opportunity table
func PrintHighValue(w io.Writer, opps []contracts.Opportunity) {
	PrintTableHeader(w, highValueColumns, highValueWidths)
	for _, o := range opps {
		PrintTableRow(w, []string{
			fmt.Sprintf("%d", o.Rank),
			fmt.Sprintf("%d", o.ID),
			truncate(o.Name, highValueWidths[2]),
			formatGP(o.CurLow),
			formatGP(o.CurHigh),
			formatGP(o.NetMargin),
			formatROI(o.ROI),
		}, highValueWidths)
	}
}

// PrintHighVolume prints the high-volume opportunity table
func PrintHighVolume(w io.Writer, opps []contracts.Opportunity) {
	PrintTableHeader(w, highVolumeColumns, highVolumeWidths)
	for _, o := range opps {
		PrintTableRow(w, []string{
			fmt.Sprintf("%d", o.Rank),
			fmt.Sprintf("%d", o.ID),
			truncate(o.Name, highVolumeWidths[2]),
			formatGP(o.HourlyVolume),
			formatGP(o.NetMargin),
			formatNumber(o.TradeLimit),
			formatGP(o.ProfitAtLimit),
		}, highVolumeWidths)
	}
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
