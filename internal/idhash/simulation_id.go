package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"commerce-whatif-lab/internal/domain"
)

// ComputeSimulationID computes a deterministic simulation_id using SHA256.
// Formula: SHA256(shop_id|base_period_days|forecast_days|simulations|seed|variables...)
// with variables serialized in declaration order at fixed precision.
// Returns hex-encoded hash (64 characters). Two identical requests for the
// same shop always produce the same ID.
func ComputeSimulationID(shopID int64, req *domain.SimulationRequest) string {
	v := req.Variables
	data := fmt.Sprintf("%d|%d|%d|%d|%d|%.10f|%.10f|%.10f|%.10f|%.10f|%.10f|%.10f",
		shopID,
		req.BasePeriodDays,
		req.ForecastDays,
		req.Simulations,
		req.Seed,
		v.RevenueGrowth,
		v.AOVChange,
		v.OrderVolumeChange,
		v.COGSChange,
		v.ConversionRateChange,
		v.PriceMultiplier,
		v.PriceElasticity,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
