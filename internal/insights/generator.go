// Package insights turns a simulation result into short human-readable
// observations via an ordered list of threshold rules. Deterministic given
// the result; no state.
package insights

import (
	"fmt"
	"math"
	"strings"

	"commerce-whatif-lab/internal/domain"
)

// Generate produces the insight strings for a completed simulation.
func Generate(r *domain.SimulationResult) []string {
	out := make([]string, 0, 5)

	out = append(out, probabilityInsight(r))

	if s := sensitivityInsight(r.Sensitivity); s != "" {
		out = append(out, s)
	}

	out = append(out, uncertaintyInsight(r.Revenue.MetricSummary))

	if s := cogsInsight(r.Inputs.Variables.COGSChange, r.Profit.Median); s != "" {
		out = append(out, s)
	}

	if r.PriceAnalysis != nil {
		out = append(out, priceInsight(r.PriceAnalysis))
	}

	return out
}

// probabilityInsight tiers the risk by probability of positive profit.
func probabilityInsight(r *domain.SimulationResult) string {
	prob := 0.0
	if r.Profit.ProbabilityPositive != nil {
		prob = *r.Profit.ProbabilityPositive
	}

	switch {
	case prob >= 90:
		return fmt.Sprintf("Very high probability (%.0f%%) of positive profit - low risk scenario", prob)
	case prob >= 75:
		return fmt.Sprintf("Good probability (%.0f%%) of positive profit - moderate risk", prob)
	case prob >= 50:
		return fmt.Sprintf("Moderate probability (%.0f%%) of positive profit - higher risk scenario", prob)
	default:
		return fmt.Sprintf("Warning: low probability (%.0f%%) of positive profit - high risk scenario", prob)
	}
}

// sensitivityInsight calls out the top-ranked variable, if any registered.
func sensitivityInsight(impacts []domain.SensitivityImpact) string {
	if len(impacts) == 0 || impacts[0].ImpactPct <= 0 {
		return ""
	}
	top := impacts[0]
	return fmt.Sprintf("Most sensitive to: %s (%.1f%% impact)",
		humanize(top.Variable), top.ImpactPct)
}

// uncertaintyInsight tiers the spread of the 90% revenue interval relative
// to the median.
func uncertaintyInsight(revenue domain.MetricSummary) string {
	spread := revenue.Percentile95 - revenue.Percentile5
	uncertainty := 0.0
	if revenue.Median > 0 {
		uncertainty = spread / revenue.Median * 100
	}

	switch {
	case uncertainty < 30:
		return fmt.Sprintf("Low uncertainty: 90%% of outcomes within %.0f%% of median", uncertainty)
	case uncertainty < 50:
		return fmt.Sprintf("Moderate uncertainty: results could vary by %.0f%%", uncertainty)
	default:
		return fmt.Sprintf("High uncertainty: wide range of possible outcomes (%.0f%%)", uncertainty)
	}
}

// cogsInsight quantifies the cost lever when the scenario moves COGS.
func cogsInsight(cogsChange, medianProfit float64) string {
	switch {
	case cogsChange > 0:
		potential := medianProfit * (cogsChange / (1 + cogsChange))
		return fmt.Sprintf("Reducing COGS by %.0f%% would save about %.0f",
			cogsChange*100, math.Abs(potential))
	case cogsChange < 0:
		realized := medianProfit * math.Abs(cogsChange)
		return fmt.Sprintf("COGS reduction improving profit by about %.0f", realized)
	default:
		return ""
	}
}

// priceInsight relays the elasticity model's verdict on the price change.
func priceInsight(p *domain.PricePreview) string {
	if p.IsProfitableChange {
		return fmt.Sprintf("Price change of %+.0f%% projects a %.1f%% profit improvement despite a %.1f%% demand shift",
			(p.PriceMultiplier-1)*100, p.ProfitDeltaPct, p.DemandEffect*100)
	}
	return fmt.Sprintf("Price change of %+.0f%% projects a %.1f%% profit decline - consider the breakeven elasticity",
		(p.PriceMultiplier-1)*100, p.ProfitDeltaPct)
}

// humanize turns a variable name into display form: "revenue_growth" →
// "Revenue Growth".
func humanize(name string) string {
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if p == "aov" || p == "cogs" {
			parts[i] = strings.ToUpper(p)
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
