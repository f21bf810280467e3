package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Sales Analytics Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Summary
	sb.WriteString("## Overall Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Revenue | %s |\n", formatAmount(r.Summary.TotalRevenue)))
	sb.WriteString(fmt.Sprintf("| Total Transactions | %d |\n", r.Summary.TotalTransactions))
	sb.WriteString(fmt.Sprintf("| Average Order Value | %s |\n", formatAmount(r.Summary.AverageOrderValue)))
	if !r.Summary.DateRangeStart.IsZero() {
		sb.WriteString(fmt.Sprintf("| Date Range | %s to %s |\n",
			r.Summary.DateRangeStart.Format(dateLayout),
			r.Summary.DateRangeEnd.Format(dateLayout)))
	} else {
		sb.WriteString("| Date Range | no data |\n")
	}
	sb.WriteString("\n")

	// Region performance
	sb.WriteString("## Region Performance\n\n")
	if len(r.Regions) > 0 {
		sb.WriteString("| Region | Revenue | % of Total | Transactions |\n")
		sb.WriteString("|--------|---------|------------|--------------|\n")
		for _, reg := range r.Regions {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s%% | %d |\n",
				reg.Region, formatAmount(reg.Revenue), reg.SharePct.StringFixed(2), reg.Count))
		}
	} else {
		sb.WriteString("No region data available.\n")
	}
	sb.WriteString("\n")

	// Product rankings
	sb.WriteString("## Top Products by Quantity\n\n")
	writeProductTable(&sb, r.TopProductsByQuantity)
	sb.WriteString("## Top Products by Revenue\n\n")
	writeProductTable(&sb, r.TopProductsByRevenue)

	// Customer analysis
	sb.WriteString("## Top Customers\n\n")
	if len(r.TopCustomers) > 0 {
		sb.WriteString("| Customer | Total Spent | Purchases | Avg Order | Products |\n")
		sb.WriteString("|----------|-------------|-----------|-----------|----------|\n")
		for _, c := range r.TopCustomers {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %s |\n",
				c.Customer, formatAmount(c.Revenue), c.Purchases,
				formatAmount(c.AvgOrderValue), strings.Join(c.ProductsBought, ", ")))
		}
	} else {
		sb.WriteString("No customer data available.\n")
	}
	sb.WriteString("\n")

	// Daily trend
	sb.WriteString("## Daily Trend\n\n")
	if len(r.DailyTrend) > 0 {
		sb.WriteString("| Date | Revenue | Orders | Unique Customers |\n")
		sb.WriteString("|------|---------|--------|------------------|\n")
		for _, d := range r.DailyTrend {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %d |\n",
				d.Date.Format(dateLayout), formatAmount(d.Revenue), d.Count, d.UniqueCustomers))
		}
		if r.PeakDay != nil {
			sb.WriteString(fmt.Sprintf("\nPeak day: **%s** (%s)\n",
				r.PeakDay.Date.Format(dateLayout), formatAmount(r.PeakDay.Revenue)))
		}
	} else {
		sb.WriteString("No daily trend available.\n")
	}
	sb.WriteString("\n")

	// Low performers
	sb.WriteString(fmt.Sprintf("## Low Performers (%s)\n\n", r.LowPerformerDimension))
	if len(r.LowPerformers) > 0 {
		sb.WriteString("| Name | Revenue | Share |\n")
		sb.WriteString("|------|---------|-------|\n")
		for _, lp := range r.LowPerformers {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s%% |\n",
				lp.Name, formatAmount(lp.Revenue), lp.SharePct.StringFixed(2)))
		}
	} else {
		sb.WriteString("No low performers.\n")
	}
	sb.WriteString("\n")

	// Enrichment
	sb.WriteString("## Enrichment Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Processed | %d |\n", r.Enrichment.TotalProcessed))
	sb.WriteString(fmt.Sprintf("| Matched | %d |\n", r.Enrichment.Matched))
	sb.WriteString(fmt.Sprintf("| Success Rate | %s%% |\n", r.Enrichment.SuccessRatePct.StringFixed(1)))
	if len(r.Enrichment.UnmatchedProducts) > 0 {
		sb.WriteString("\nUnmatched products:\n\n")
		for _, p := range r.Enrichment.UnmatchedProducts {
			sb.WriteString(fmt.Sprintf("- %s\n", p))
		}
	}
	sb.WriteString("\n")

	// Rejections
	sb.WriteString("## Rejected Records\n\n")
	if r.Rejections.Total > 0 {
		sb.WriteString("| Reason | Count |\n")
		sb.WriteString("|--------|-------|\n")
		for _, reason := range sortedReasons(r.Rejections) {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", reason, r.Rejections.ByReason[reason]))
		}
	} else {
		sb.WriteString("No records rejected.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func writeProductTable(sb *strings.Builder, rows []ProductRow) {
	if len(rows) == 0 {
		sb.WriteString("No product data available.\n\n")
		return
	}
	sb.WriteString("| Rank | Product | Qty Sold | Revenue |\n")
	sb.WriteString("|------|---------|----------|--------|\n")
	for _, p := range rows {
		sb.WriteString(fmt.Sprintf("| %d | %s | %d | %s |\n",
			p.Rank, p.Product, p.Quantity, formatAmount(p.Revenue)))
	}
	sb.WriteString("\n")
}
