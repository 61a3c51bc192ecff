package reporting

import (
	"commerce-whatif-lab/internal/domain"
)

// FromResult flattens a simulation result into a renderable report.
func FromResult(result *domain.SimulationResult, shopDomain string) *Report {
	r := &Report{
		GeneratedAt:   result.GeneratedAt,
		SimulationID:  result.SimulationID,
		ShopDomain:    shopDomain,
		Inputs:        result.Inputs,
		Variables:     variableRows(result.Inputs.Variables),
		Baseline:      result.Baseline,
		PriceAnalysis: result.PriceAnalysis,
		Sensitivity:   result.Sensitivity,
		Insights:      result.Insights,
	}

	r.Distributions = []DistributionRow{
		distributionRow("revenue", result.Revenue),
		distributionRow("profit", result.Profit),
		distributionRow("orders", result.Orders),
		distributionRow("profit_margin", result.ProfitMargin),
	}

	if result.Profit.ProbabilityPositive != nil {
		r.ProbabilityPositive = *result.Profit.ProbabilityPositive
	}

	return r
}

// variableRows lists scenario variables in their canonical order.
func variableRows(v domain.WhatIfVariables) []VariableRow {
	return []VariableRow{
		{Name: "revenue_growth", Value: v.RevenueGrowth},
		{Name: "aov_change", Value: v.AOVChange},
		{Name: "order_volume_change", Value: v.OrderVolumeChange},
		{Name: "cogs_change", Value: v.COGSChange},
		{Name: "conversion_rate_change", Value: v.ConversionRateChange},
		{Name: "price_multiplier", Value: v.PriceMultiplier},
		{Name: "price_elasticity", Value: v.PriceElasticity},
	}
}

func distributionRow(metric string, d domain.DistributionResult) DistributionRow {
	return DistributionRow{
		Metric: metric,
		Mean:   d.Mean,
		Median: d.Median,
		StdDev: d.StdDev,
		P5:     d.Percentile5,
		P25:    d.Percentile25,
		P75:    d.Percentile75,
		P95:    d.Percentile95,
		Min:    d.Min,
		Max:    d.Max,
	}
}
