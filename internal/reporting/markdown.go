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
	sb.WriteString("# What-If Simulation Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.ShopDomain != "" {
		sb.WriteString(fmt.Sprintf("Shop: %s\n\n", r.ShopDomain))
	}
	sb.WriteString(fmt.Sprintf("Simulation ID: `%s`\n\n", r.SimulationID))
	sb.WriteString(fmt.Sprintf("Base period: %d days | Forecast: %d days | Trials: %d | Seed: %d\n\n",
		r.Inputs.BasePeriodDays, r.Inputs.ForecastDays, r.Inputs.Simulations, r.Inputs.Seed))

	// Scenario Variables
	sb.WriteString("## Scenario Variables\n\n")
	sb.WriteString("| Variable | Value |\n")
	sb.WriteString("|----------|-------|\n")
	for _, v := range r.Variables {
		sb.WriteString(fmt.Sprintf("| %s | %.4f |\n", v.Name, v.Value))
	}
	sb.WriteString("\n")

	// Baseline
	sb.WriteString("## Baseline\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Daily Revenue | %.2f |\n", r.Baseline.DailyRevenue))
	sb.WriteString(fmt.Sprintf("| Daily Orders | %.2f |\n", r.Baseline.DailyOrders))
	sb.WriteString(fmt.Sprintf("| Average Order Value | %.2f |\n", r.Baseline.AverageOrderValue))
	sb.WriteString(fmt.Sprintf("| COGS Rate | %.1f%% |\n", r.Baseline.COGSRatePct))
	sb.WriteString("\n")

	// Distributions
	sb.WriteString("## Forecast Distributions\n\n")
	sb.WriteString("| Metric | Mean | Median | StdDev | P5 | P25 | P75 | P95 | Min | Max |\n")
	sb.WriteString("|--------|------|--------|--------|----|-----|-----|-----|-----|-----|\n")
	for _, d := range r.Distributions {
		sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
			d.Metric, d.Mean, d.Median, d.StdDev, d.P5, d.P25, d.P75, d.P95, d.Min, d.Max))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Probability of positive profit: %.1f%%\n\n", r.ProbabilityPositive))

	// Price Analysis
	if r.PriceAnalysis != nil {
		p := r.PriceAnalysis
		sb.WriteString("## Price Analysis\n\n")
		sb.WriteString(fmt.Sprintf("Price multiplier: %.2f | Elasticity: %.2f | Demand effect: %.2f%%\n\n",
			p.PriceMultiplier, p.Elasticity, p.DemandEffect*100))
		sb.WriteString("| | Orders/day | AOV | Revenue/day | Profit/day |\n")
		sb.WriteString("|---|-----------|-----|-------------|------------|\n")
		sb.WriteString(fmt.Sprintf("| Current | %.2f | %.2f | %.2f | %.2f |\n",
			p.Current.DailyOrders, p.Current.AOV, p.Current.DailyRevenue, p.Current.DailyProfit))
		sb.WriteString(fmt.Sprintf("| Projected | %.2f | %.2f | %.2f | %.2f |\n",
			p.Projected.DailyOrders, p.Projected.AOV, p.Projected.DailyRevenue, p.Projected.DailyProfit))
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Recommendation: %s\n\n", p.Recommendation))
	}

	// Sensitivity
	sb.WriteString("## Sensitivity\n\n")
	if len(r.Sensitivity) > 0 {
		sb.WriteString("| Variable | Impact % |\n")
		sb.WriteString("|----------|----------|\n")
		for _, s := range r.Sensitivity {
			sb.WriteString(fmt.Sprintf("| %s | %.2f |\n", s.Variable, s.ImpactPct))
		}
	} else {
		sb.WriteString("No sensitivity data available.\n")
	}
	sb.WriteString("\n")

	// Insights
	sb.WriteString("## Insights\n\n")
	if len(r.Insights) > 0 {
		for _, insight := range r.Insights {
			sb.WriteString(fmt.Sprintf("- %s\n", insight))
		}
	} else {
		sb.WriteString("No insights generated.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
