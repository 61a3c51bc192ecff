// Package sensitivity ranks the what-if variables by how much each one moves
// expected profit.
//
// The method is one-at-a-time: each variable is perturbed by a fixed delta
// while the rest stay at the caller's values, and an abbreviated simulation
// measures the swing in mean profit. This is an approximation, not a
// variance-based decomposition; interactions between variables are not
// attributed.
package sensitivity

import (
	"math"
	"sort"

	"commerce-whatif-lab/internal/domain"
	"commerce-whatif-lab/internal/scenario"
	"commerce-whatif-lab/internal/simulation"
)

const (
	// deltaFraction perturbs the fractional knobs by +10 percentage points.
	deltaFraction = 0.10
	// deltaMultiplier is added to the price multiplier.
	deltaMultiplier = 0.10
	// deltaElasticity shifts elasticity toward more elastic demand.
	deltaElasticity = -0.5

	// abbreviatedTrials keeps the per-variable re-simulation cheap. The
	// impact ratio converges well before full trial counts.
	abbreviatedTrials = 1000

	// maxImpactPct clamps the reported impact to a sane display range.
	maxImpactPct = 500.0
)

// Analyze measures the impact of each variable on expected profit and
// returns the impacts ranked descending, ties broken by declaration order.
//
// Every run (base and perturbed) uses the same seed so that sampling noise
// correlates across runs and the measured swing reflects the perturbation.
func Analyze(b *domain.BaselineMetrics, vars domain.WhatIfVariables, forecastDays int, seed int64, workers int) []domain.SensitivityImpact {
	baseProfit := expectedProfit(b, vars, forecastDays, seed, workers)

	impacts := make([]domain.SensitivityImpact, 0, len(domain.VariableNames))
	for _, name := range domain.VariableNames {
		perturbed := perturb(vars, name)
		profit := expectedProfit(b, perturbed, forecastDays, seed, workers)
		impacts = append(impacts, domain.SensitivityImpact{
			Variable:  name,
			ImpactPct: impactPct(baseProfit, profit),
		})
	}

	// Rank descending; SliceStable keeps declaration order on ties.
	sort.SliceStable(impacts, func(i, j int) bool {
		return impacts[i].ImpactPct > impacts[j].ImpactPct
	})
	return impacts
}

// expectedProfit runs an abbreviated simulation and returns mean trial profit.
func expectedProfit(b *domain.BaselineMetrics, vars domain.WhatIfVariables, forecastDays int, seed int64, workers int) float64 {
	dist := scenario.Compose(b, vars)
	set := simulation.Run(dist, simulation.Options{
		Trials:       abbreviatedTrials,
		ForecastDays: forecastDays,
		Seed:         seed,
		Workers:      workers,
	})

	sum := 0.0
	for _, p := range set.Profits {
		sum += p
	}
	return sum / float64(len(set.Profits))
}

// perturb returns a copy of vars with one variable nudged by its delta.
func perturb(vars domain.WhatIfVariables, name string) domain.WhatIfVariables {
	switch name {
	case "revenue_growth":
		vars.RevenueGrowth += deltaFraction
	case "aov_change":
		vars.AOVChange += deltaFraction
	case "order_volume_change":
		vars.OrderVolumeChange += deltaFraction
	case "cogs_change":
		vars.COGSChange += deltaFraction
	case "conversion_rate_change":
		vars.ConversionRateChange += deltaFraction
	case "price_multiplier":
		vars.PriceMultiplier += deltaMultiplier
	case "price_elasticity":
		vars.PriceElasticity += deltaElasticity
	}
	return vars
}

// impactPct normalizes the profit swing against the base profit. A base this
// close to zero cannot anchor a relative impact, so it reports 0.
//
// The result is rounded to two decimals. Perturbations that are equivalent on
// paper can differ in the last float bits depending on multiplication order,
// and the declaration-order tie-break only applies to exact ties.
func impactPct(base, perturbed float64) float64 {
	if math.Abs(base) < 1e-9 {
		return 0
	}
	impact := math.Abs(perturbed-base) / math.Abs(base) * 100
	if impact > maxImpactPct {
		impact = maxImpactPct
	}
	return math.Round(impact*100) / 100
}
