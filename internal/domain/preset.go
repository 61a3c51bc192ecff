package domain

// Preset is a named, pre-filled bundle of what-if variable values.
// The catalog is static; presets have no lifecycle beyond lookup.
type Preset struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Label       string          `json:"label"`
	Variables   WhatIfVariables `json:"variables"`
}

// Preset catalog.
var Presets = []Preset{
	{
		Name:        "Optimistic Growth",
		Description: "Strong growth with improved margins",
		Label:       "growth",
		Variables: WhatIfVariables{
			RevenueGrowth:        0.20,
			AOVChange:            0.10,
			OrderVolumeChange:    0.15,
			COGSChange:           -0.05,
			ConversionRateChange: 0.10,
			PriceMultiplier:      1.0,
			PriceElasticity:      DefaultElasticity,
		},
	},
	{
		Name:        "Pessimistic Downturn",
		Description: "Market challenges and increased costs",
		Label:       "downturn",
		Variables: WhatIfVariables{
			RevenueGrowth:        -0.10,
			AOVChange:            -0.05,
			OrderVolumeChange:    -0.15,
			COGSChange:           0.10,
			ConversionRateChange: -0.05,
			PriceMultiplier:      1.0,
			PriceElasticity:      DefaultElasticity,
		},
	},
	{
		Name:        "Conservative Realistic",
		Description: "Moderate growth based on trends",
		Label:       "conservative",
		Variables: WhatIfVariables{
			RevenueGrowth:        0.05,
			AOVChange:            0.02,
			OrderVolumeChange:    0.03,
			COGSChange:           0.03,
			ConversionRateChange: 0.01,
			PriceMultiplier:      1.0,
			PriceElasticity:      DefaultElasticity,
		},
	},
	{
		Name:        "Holiday Season Push",
		Description: "Seasonal spike with discounts",
		Label:       "holiday",
		Variables: WhatIfVariables{
			RevenueGrowth:        0.40,
			AOVChange:            -0.10,
			OrderVolumeChange:    0.60,
			COGSChange:           0.05,
			ConversionRateChange: 0.20,
			PriceMultiplier:      1.0,
			PriceElasticity:      DefaultElasticity,
		},
	},
	{
		Name:        "Cost Optimization",
		Description: "Focus on reducing COGS and improving margins",
		Label:       "cost",
		Variables: WhatIfVariables{
			COGSChange:      -0.15,
			PriceMultiplier: 1.0,
			PriceElasticity: DefaultElasticity,
		},
	},
	{
		Name:        "Market Expansion",
		Description: "New markets, higher acquisition costs",
		Label:       "expansion",
		Variables: WhatIfVariables{
			RevenueGrowth:        0.30,
			AOVChange:            -0.05,
			OrderVolumeChange:    0.40,
			COGSChange:           0.08,
			ConversionRateChange: 0.05,
			PriceMultiplier:      1.0,
			PriceElasticity:      DefaultElasticity,
		},
	},
}

// PresetByName returns the preset with the given name, or nil.
func PresetByName(name string) *Preset {
	for i := range Presets {
		if Presets[i].Name == name {
			return &Presets[i]
		}
	}
	return nil
}
