// Package pricing models the demand response to a price change via a constant
// price elasticity of demand. All functions are pure.
package pricing

import (
	"math"

	"commerce-whatif-lab/internal/domain"
)

// DemandEffect returns the fractional change in demand for a price change.
// elasticity -1.5 with multiplier 1.10 (+10% price) gives -0.15 (-15% demand).
// elasticity 0 means perfectly inelastic demand: no change at any price.
func DemandEffect(priceMultiplier, elasticity float64) float64 {
	return elasticity * (priceMultiplier - 1)
}

// AdjustedDemand applies a price change to baseline daily orders and AOV.
// Orders are floored at 0: demand cannot go negative however elastic.
func AdjustedDemand(baselineOrders, baselineAOV, priceMultiplier, elasticity float64) (orders, aov float64) {
	orders = baselineOrders * (1 + DemandEffect(priceMultiplier, elasticity))
	if orders < 0 {
		orders = 0
	}
	aov = baselineAOV * priceMultiplier
	return orders, aov
}

// BreakevenElasticity returns the elasticity at which revenue is unchanged
// by the price change, and whether it is defined. Undefined at multiplier 1.
func BreakevenElasticity(priceMultiplier float64) (float64, bool) {
	if priceMultiplier == 1 {
		return 0, false
	}
	return -1 / (priceMultiplier - 1), true
}

// Project runs a price change through the elasticity model against a
// baseline and returns the current-vs-projected preview.
func Project(b *domain.BaselineMetrics, priceMultiplier, elasticity float64) *domain.PricePreview {
	curOrders := b.DailyOrdersMean
	curAOV := b.AvgOrderValue
	curRevenue := curOrders * curAOV

	// Per-unit cost from the baseline window; COGS scales with unit volume,
	// not with the new price.
	unitCost := 0.0
	if curOrders > 0 {
		unitCost = b.DailyCOGSMean / curOrders
	}
	curProfit := curRevenue - curOrders*unitCost

	projOrders, projAOV := AdjustedDemand(curOrders, curAOV, priceMultiplier, elasticity)
	projRevenue := projOrders * projAOV
	projProfit := projRevenue - projOrders*unitCost

	preview := &domain.PricePreview{
		PriceMultiplier: priceMultiplier,
		Elasticity:      elasticity,
		DemandEffect:    DemandEffect(priceMultiplier, elasticity),
		Current: domain.PricePoint{
			DailyOrders:  curOrders,
			AOV:          curAOV,
			DailyRevenue: curRevenue,
			DailyProfit:  curProfit,
		},
		Projected: domain.PricePoint{
			DailyOrders:  projOrders,
			AOV:          projAOV,
			DailyRevenue: projRevenue,
			DailyProfit:  projProfit,
		},
		OrdersDeltaPct:  deltaPct(curOrders, projOrders),
		AOVDeltaPct:     deltaPct(curAOV, projAOV),
		RevenueDeltaPct: deltaPct(curRevenue, projRevenue),
		ProfitDeltaPct:  deltaPct(curProfit, projProfit),
	}

	if be, ok := BreakevenElasticity(priceMultiplier); ok {
		preview.BreakevenElasticity = &be
	}

	profitDelta := projProfit - curProfit
	preview.IsProfitableChange = profitDelta >= 0
	preview.Recommendation = recommend(priceMultiplier, profitDelta, preview.DemandEffect)

	return preview
}

// deltaPct returns the percentage change from cur to proj, 0 when cur is 0.
func deltaPct(cur, proj float64) float64 {
	if cur == 0 {
		return 0
	}
	return (proj - cur) / cur * 100
}

// Demand shifts beyond this magnitude are called out as significant.
const significantDemandShift = 0.20

// recommend picks the qualitative verdict from a fixed decision table keyed
// on profit delta sign and demand shift magnitude.
func recommend(priceMultiplier, profitDelta, demandEffect float64) string {
	if priceMultiplier == 1 {
		return "No price change applied; projections match the baseline."
	}

	bigShift := math.Abs(demandEffect) > significantDemandShift
	switch {
	case profitDelta >= 0 && !bigShift:
		return "Favorable: projected profit improves with limited demand impact."
	case profitDelta >= 0 && bigShift:
		return "Profitable but demand shifts significantly; monitor order volume closely."
	case profitDelta < 0 && bigShift:
		return "Unfavorable: projected profit falls and demand shifts significantly."
	default:
		return "Unfavorable: projected profit falls; the price change is not worth it."
	}
}
