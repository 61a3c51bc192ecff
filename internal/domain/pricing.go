package domain

// PricePreview is a read-only projection of a price change through the demand
// elasticity model. Not persisted.
type PricePreview struct {
	PriceMultiplier float64 `json:"price_multiplier"`
	Elasticity      float64 `json:"elasticity"`
	DemandEffect    float64 `json:"demand_effect"` // fractional change in daily orders

	Current   PricePoint `json:"current"`
	Projected PricePoint `json:"projected"`

	OrdersDeltaPct  float64 `json:"orders_delta_pct"`
	AOVDeltaPct     float64 `json:"aov_delta_pct"`
	RevenueDeltaPct float64 `json:"revenue_delta_pct"`
	ProfitDeltaPct  float64 `json:"profit_delta_pct"`

	// BreakevenElasticity is the elasticity at which revenue is unchanged.
	// Nil when PriceMultiplier is 1.0 (undefined).
	BreakevenElasticity *float64 `json:"breakeven_elasticity,omitempty"`

	IsProfitableChange bool   `json:"is_profitable_change"`
	Recommendation     string `json:"recommendation"`
}

// PricePoint holds the daily figures on one side of a price change.
type PricePoint struct {
	DailyOrders  float64 `json:"daily_orders"`
	AOV          float64 `json:"aov"`
	DailyRevenue float64 `json:"daily_revenue"`
	DailyProfit  float64 `json:"daily_profit"`
}
