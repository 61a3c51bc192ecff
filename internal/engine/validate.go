package engine

import (
	"math"

	"commerce-whatif-lab/internal/domain"
)

// normalizeRequest fills unset fields with their defaults. Zero counts mean
// "not provided"; a zero price multiplier or elasticity likewise, since
// neither has a meaningful zero.
func normalizeRequest(req domain.SimulationRequest) domain.SimulationRequest {
	if req.BasePeriodDays == 0 {
		req.BasePeriodDays = domain.BasePeriodDaysDefault
	}
	if req.ForecastDays == 0 {
		req.ForecastDays = domain.ForecastDaysDefault
	}
	if req.Simulations == 0 {
		req.Simulations = domain.SimulationsDefault
	}
	if req.Seed == 0 {
		req.Seed = domain.DefaultSeed
	}
	if req.Variables.PriceMultiplier == 0 {
		req.Variables.PriceMultiplier = 1.0
	}
	if req.Variables.PriceElasticity == 0 {
		req.Variables.PriceElasticity = domain.DefaultElasticity
	}
	return req
}

// normalizePeriodDays applies the default and bounds-checks a lookback window.
func normalizePeriodDays(periodDays int) (int, error) {
	if periodDays == 0 {
		periodDays = domain.BasePeriodDaysDefault
	}
	if periodDays < domain.BasePeriodDaysMin {
		return 0, domain.NewValidationError("base_period_days",
			"must be at least %d, got %d", domain.BasePeriodDaysMin, periodDays)
	}
	if periodDays > domain.BasePeriodDaysMax {
		return 0, &domain.ComputationLimitError{
			Field: "base_period_days", Requested: periodDays, Limit: domain.BasePeriodDaysMax,
		}
	}
	return periodDays, nil
}

// validateRequest checks a normalized request against the supported bounds.
// Values below a minimum are validation failures; values above a hard limit
// are computation limit failures.
func validateRequest(req *domain.SimulationRequest) error {
	if _, err := normalizePeriodDays(req.BasePeriodDays); err != nil {
		return err
	}

	if req.ForecastDays < domain.ForecastDaysMin {
		return domain.NewValidationError("forecast_days",
			"must be at least %d, got %d", domain.ForecastDaysMin, req.ForecastDays)
	}
	if req.ForecastDays > domain.ForecastDaysMax {
		return &domain.ComputationLimitError{
			Field: "forecast_days", Requested: req.ForecastDays, Limit: domain.ForecastDaysMax,
		}
	}

	if req.Simulations < domain.SimulationsMin {
		return domain.NewValidationError("simulations",
			"must be at least %d, got %d", domain.SimulationsMin, req.Simulations)
	}
	if req.Simulations > domain.SimulationsMax {
		return &domain.ComputationLimitError{
			Field: "simulations", Requested: req.Simulations, Limit: domain.SimulationsMax,
		}
	}

	return validateVariables(req.Variables)
}

// validateVariables bounds-checks every scenario knob.
func validateVariables(v domain.WhatIfVariables) error {
	checks := []struct {
		name     string
		value    float64
		min, max float64
	}{
		{"revenue_growth", v.RevenueGrowth, domain.RevenueGrowthMin, domain.RevenueGrowthMax},
		{"aov_change", v.AOVChange, domain.AOVChangeMin, domain.AOVChangeMax},
		{"order_volume_change", v.OrderVolumeChange, domain.OrderVolumeChangeMin, domain.OrderVolumeChangeMax},
		{"cogs_change", v.COGSChange, domain.COGSChangeMin, domain.COGSChangeMax},
		{"conversion_rate_change", v.ConversionRateChange, domain.ConversionRateChangeMin, domain.ConversionRateChangeMax},
		{"price_elasticity", v.PriceElasticity, domain.PriceElasticityMin, domain.PriceElasticityMax},
	}

	for _, c := range checks {
		if err := validateFinite(c.name, c.value); err != nil {
			return err
		}
		if c.value < c.min || c.value > c.max {
			return domain.NewValidationError(c.name,
				"must be in [%g, %g], got %g", c.min, c.max, c.value)
		}
	}

	// Price multiplier has an exclusive lower bound: zero price is meaningless.
	if err := validateFinite("price_multiplier", v.PriceMultiplier); err != nil {
		return err
	}
	if v.PriceMultiplier <= domain.PriceMultiplierMin || v.PriceMultiplier > domain.PriceMultiplierMax {
		return domain.NewValidationError("price_multiplier",
			"must be in (%g, %g], got %g", domain.PriceMultiplierMin, domain.PriceMultiplierMax, v.PriceMultiplier)
	}

	return nil
}

func validateFinite(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return domain.NewValidationError(field, "must be a finite number")
	}
	return nil
}
