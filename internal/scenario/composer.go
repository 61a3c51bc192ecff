// Package scenario combines the what-if variables with the elasticity-adjusted
// baseline into one adjusted daily distribution for the sampler.
package scenario

import (
	"commerce-whatif-lab/internal/domain"
	"commerce-whatif-lab/internal/pricing"
)

// AdjustedDistribution is the daily distribution the Monte Carlo sampler
// draws from after all scenario effects are applied.
type AdjustedDistribution struct {
	MeanRevenue float64
	StdRevenue  float64
	MeanOrders  float64
	StdOrders   float64
	MeanAOV     float64
	COGSRate    float64
}

// Compose applies the scenario variables to a baseline.
//
// Order volume and conversion changes both represent independent demand-side
// shifts, so they compose additively into a single order multiplier. Standard
// deviations scale proportionally with their means, preserving the baseline
// coefficient of variation so sampled trials stay realistically dispersed.
func Compose(b *domain.BaselineMetrics, v domain.WhatIfVariables) AdjustedDistribution {
	orders := b.DailyOrdersMean
	aov := b.AvgOrderValue
	if v.PriceMultiplier != 1 {
		orders, aov = pricing.AdjustedDemand(orders, aov, v.PriceMultiplier, v.PriceElasticity)
	}

	demandShift := v.OrderVolumeChange + v.ConversionRateChange
	meanOrders := orders * (1 + demandShift)
	if meanOrders < 0 {
		meanOrders = 0
	}
	meanAOV := aov * (1 + v.AOVChange)
	meanRevenue := meanOrders * meanAOV * (1 + v.RevenueGrowth)

	cogsRate := b.COGSRate * (1 + v.COGSChange)
	if cogsRate < 0 {
		cogsRate = 0
	}

	return AdjustedDistribution{
		MeanRevenue: meanRevenue,
		StdRevenue:  scaleStd(b.DailyRevenueStdDev, b.DailyRevenueMean, meanRevenue),
		MeanOrders:  meanOrders,
		StdOrders:   scaleStd(b.DailyOrdersStdDev, b.DailyOrdersMean, meanOrders),
		MeanAOV:     meanAOV,
		COGSRate:    cogsRate,
	}
}

// scaleStd scales a standard deviation by the same ratio as its mean.
// A zero baseline mean carries the baseline std-dev through unchanged.
func scaleStd(baseStd, baseMean, adjMean float64) float64 {
	if baseMean <= 0 {
		return baseStd
	}
	return baseStd * (adjMean / baseMean)
}
