package domain

// WhatIfVariables are the adjustable knobs of a scenario. All *_Change fields
// are fractional multipliers (0.10 = +10%). PriceMultiplier of 1.0 means no
// price change; PriceElasticity is the price elasticity of demand,
// conventionally negative.
//
// Every field is always present with an explicit default; there is no
// "unset" state.
type WhatIfVariables struct {
	RevenueGrowth        float64 `json:"revenue_growth"`
	AOVChange            float64 `json:"aov_change"`
	OrderVolumeChange    float64 `json:"order_volume_change"`
	COGSChange           float64 `json:"cogs_change"`
	ConversionRateChange float64 `json:"conversion_rate_change"`
	PriceMultiplier      float64 `json:"price_multiplier"`
	PriceElasticity      float64 `json:"price_elasticity"`
}

// Variable bounds. Requests outside these ranges are rejected with a
// ValidationError naming the field.
const (
	RevenueGrowthMin        = -0.5
	RevenueGrowthMax        = 1.0
	AOVChangeMin            = -0.5
	AOVChangeMax            = 0.5
	OrderVolumeChangeMin    = -0.5
	OrderVolumeChangeMax    = 1.0
	COGSChangeMin           = -0.3
	COGSChangeMax           = 0.5
	ConversionRateChangeMin = -0.3
	ConversionRateChangeMax = 0.5
	PriceMultiplierMin      = 0.0 // exclusive
	PriceMultiplierMax      = 3.0
	PriceElasticityMin      = -10.0
	PriceElasticityMax      = 10.0
)

// DefaultElasticity is used by the price preview when the caller does not
// supply an elasticity of their own.
const DefaultElasticity = -1.5

// DefaultVariables returns the neutral scenario: every knob at its no-change
// value.
func DefaultVariables() WhatIfVariables {
	return WhatIfVariables{
		PriceMultiplier: 1.0,
		PriceElasticity: DefaultElasticity,
	}
}

// VariableNames lists the adjustable variables in declaration order.
// Sensitivity ranking breaks ties using this order.
var VariableNames = []string{
	"revenue_growth",
	"aov_change",
	"order_volume_change",
	"cogs_change",
	"conversion_rate_change",
	"price_multiplier",
	"price_elasticity",
}
