package reporting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"sales-analytics/internal/domain"
)

const dateLayout = "2006-01-02"

// RenderText renders the report as a fixed-width text document.
func RenderText(r *Report) string {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", 60) + "\n")
	sb.WriteString("           SALES ANALYTICS REPORT\n")
	sb.WriteString(fmt.Sprintf("     Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("     Records Processed: %d\n", r.Summary.TotalTransactions))
	sb.WriteString(strings.Repeat("=", 60) + "\n\n")

	sb.WriteString("OVERALL SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	sb.WriteString(fmt.Sprintf("Total Revenue          : %s\n", formatAmount(r.Summary.TotalRevenue)))
	sb.WriteString(fmt.Sprintf("Total Transactions     : %s\n", formatInt(int64(r.Summary.TotalTransactions))))
	sb.WriteString(fmt.Sprintf("Average Order Value    : %s\n", formatAmount(r.Summary.AverageOrderValue)))
	if !r.Summary.DateRangeStart.IsZero() {
		sb.WriteString(fmt.Sprintf("Date Range             : %s to %s\n",
			r.Summary.DateRangeStart.Format(dateLayout),
			r.Summary.DateRangeEnd.Format(dateLayout)))
	} else {
		sb.WriteString("Date Range             : no data\n")
	}
	sb.WriteString("\n")

	sb.WriteString("REGION-WISE PERFORMANCE\n")
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	sb.WriteString(fmt.Sprintf("%-12s %15s %12s %12s\n", "Region", "Sales Amount", "% of Total", "Transactions"))
	sb.WriteString(strings.Repeat("-", 55) + "\n")
	for _, reg := range r.Regions {
		sb.WriteString(fmt.Sprintf("%-12s %15s %11s%% %12d\n",
			reg.Region, formatAmount(reg.Revenue), reg.SharePct.StringFixed(2), reg.Count))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("TOP %d PRODUCTS BY QUANTITY SOLD\n", len(r.TopProductsByQuantity)))
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	sb.WriteString(fmt.Sprintf("%-6s %-28s %10s %15s\n", "Rank", "Product Name", "Qty Sold", "Revenue"))
	sb.WriteString(strings.Repeat("-", 65) + "\n")
	for _, p := range r.TopProductsByQuantity {
		sb.WriteString(fmt.Sprintf("%-6d %-28s %10s %15s\n",
			p.Rank, p.Product, formatInt(p.Quantity), formatAmount(p.Revenue)))
	}
	sb.WriteString("\n")

	sb.WriteString("DAILY SALES TREND\n")
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	sb.WriteString(fmt.Sprintf("%-12s %15s %12s %12s\n", "Date", "Revenue", "Orders", "Customers"))
	sb.WriteString(strings.Repeat("-", 55) + "\n")
	for _, d := range r.DailyTrend {
		sb.WriteString(fmt.Sprintf("%-12s %15s %12d %12d\n",
			d.Date.Format(dateLayout), formatAmount(d.Revenue), d.Count, d.UniqueCustomers))
	}
	if r.PeakDay != nil {
		sb.WriteString(fmt.Sprintf("\nPeak sales day: %s (%s across %d transactions)\n",
			r.PeakDay.Date.Format(dateLayout), formatAmount(r.PeakDay.Revenue), r.PeakDay.Count))
	}
	sb.WriteString("\n")

	if len(r.LowPerformers) > 0 {
		sb.WriteString(fmt.Sprintf("LOW PERFORMERS (%s share below %s%%)\n",
			r.LowPerformerDimension,
			r.LowPerformerThreshold.Mul(decimal.NewFromInt(100)).StringFixed(0)))
		sb.WriteString(strings.Repeat("-", 40) + "\n")
		for _, lp := range r.LowPerformers {
			sb.WriteString(fmt.Sprintf("%-28s %15s %11s%%\n",
				lp.Name, formatAmount(lp.Revenue), lp.SharePct.StringFixed(2)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("API ENRICHMENT SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	sb.WriteString(fmt.Sprintf("Total processed transactions : %d\n", r.Enrichment.TotalProcessed))
	sb.WriteString(fmt.Sprintf("Successfully enriched        : %d\n", r.Enrichment.Matched))
	sb.WriteString(fmt.Sprintf("Success rate                 : %s%%\n", r.Enrichment.SuccessRatePct.StringFixed(1)))
	if len(r.Enrichment.UnmatchedProducts) > 0 {
		sb.WriteString("\nProducts not found in API:\n")
		shown := r.Enrichment.UnmatchedProducts
		if len(shown) > 10 {
			shown = shown[:10]
		}
		for _, p := range shown {
			sb.WriteString(fmt.Sprintf("  - %s\n", p))
		}
		if extra := len(r.Enrichment.UnmatchedProducts) - len(shown); extra > 0 {
			sb.WriteString(fmt.Sprintf("  ... (+%d more)\n", extra))
		}
	}
	sb.WriteString("\n")

	if r.Rejections.Total > 0 {
		sb.WriteString("REJECTED RECORDS\n")
		sb.WriteString(strings.Repeat("-", 40) + "\n")
		sb.WriteString(fmt.Sprintf("Total rejected : %d\n", r.Rejections.Total))
		for _, reason := range sortedReasons(r.Rejections) {
			sb.WriteString(fmt.Sprintf("  %-24s %d\n", reason, r.Rejections.ByReason[reason]))
		}
	}

	return sb.String()
}

func sortedReasons(s RejectionSummary) []domain.RejectionReason {
	reasons := make([]domain.RejectionReason, 0, len(s.ByReason))
	for r := range s.ByReason {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	return reasons
}

// formatAmount renders a decimal with 2dp and thousands separators.
func formatAmount(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	if neg {
		fixed = fixed[1:]
	}
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	out := groupThousands(intPart) + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// formatInt renders an integer with thousands separators.
func formatInt(n int64) string {
	if n < 0 {
		return "-" + groupThousands(fmt.Sprintf("%d", -n))
	}
	return groupThousands(fmt.Sprintf("%d", n))
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}
