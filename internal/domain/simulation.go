package domain

import "time"

// Simulation request bounds. Requests outside the hard limits fail with a
// ComputationLimitError; below the minimums with a ValidationError.
const (
	BasePeriodDaysMin     = 30
	BasePeriodDaysMax     = 365
	BasePeriodDaysDefault = 90

	ForecastDaysMin     = 7
	ForecastDaysMax     = 180
	ForecastDaysDefault = 30

	SimulationsMin     = 1000
	SimulationsMax     = 50000
	SimulationsDefault = 10000

	// DefaultSeed anchors reproducible runs when the caller supplies none.
	DefaultSeed int64 = 42
)

// HistogramBuckets is the fixed bucket count for result histograms.
const HistogramBuckets = 20

// SimulationRequest describes one what-if simulation run.
type SimulationRequest struct {
	BasePeriodDays int             `json:"base_period_days"`
	ForecastDays   int             `json:"forecast_days"`
	Simulations    int             `json:"simulations"`
	Seed           int64           `json:"seed,omitempty"` // 0 means DefaultSeed
	Variables      WhatIfVariables `json:"variables"`
}

// DefaultSimulationRequest returns a request with every field at its default.
func DefaultSimulationRequest() SimulationRequest {
	return SimulationRequest{
		BasePeriodDays: BasePeriodDaysDefault,
		ForecastDays:   ForecastDaysDefault,
		Simulations:    SimulationsDefault,
		Seed:           DefaultSeed,
		Variables:      DefaultVariables(),
	}
}

// MetricSummary reduces one trial population to its summary statistics.
type MetricSummary struct {
	Mean         float64    `json:"mean"`
	Median       float64    `json:"median"`
	StdDev       float64    `json:"std_dev"`
	Min          float64    `json:"min"`
	Max          float64    `json:"max"`
	Percentile5  float64    `json:"percentile_5"`
	Percentile25 float64    `json:"percentile_25"`
	Percentile75 float64    `json:"percentile_75"`
	Percentile95 float64    `json:"percentile_95"`
	Confidence90 [2]float64 `json:"confidence_90"`
	Confidence95 [2]float64 `json:"confidence_95"`
}

// Histogram is a binned view of a trial population. Frequencies sum to the
// trial count; a degenerate population collapses to one non-empty bucket.
type Histogram struct {
	Bins        []float64 `json:"bins"`        // bucket edges, len = buckets+1
	BinCenters  []float64 `json:"bin_centers"` // edge midpoints, len = buckets
	Frequencies []int     `json:"frequencies"` // count per bucket, len = buckets
}

// DistributionResult bundles a summary with its histogram. For the profit
// population ProbabilityPositive is the percent of trials above zero.
type DistributionResult struct {
	MetricSummary
	Histogram           *Histogram `json:"histogram,omitempty"`
	ProbabilityPositive *float64   `json:"probability_positive,omitempty"`
}

// BaselineSnapshot echoes the baseline the simulation was anchored on.
type BaselineSnapshot struct {
	DailyRevenue      float64 `json:"daily_revenue"`
	DailyOrders       float64 `json:"daily_orders"`
	AverageOrderValue float64 `json:"average_order_value"`
	COGSRatePct       float64 `json:"cogs_rate_pct"`
}

// SensitivityImpact is one row of the ranked sensitivity table.
type SensitivityImpact struct {
	Variable  string  `json:"variable"`
	ImpactPct float64 `json:"impact_pct"`
}

// SimulationResult is the full structured output of one simulation run.
type SimulationResult struct {
	SimulationID string            `json:"simulation_id"`
	GeneratedAt  time.Time         `json:"generated_at"`
	Inputs       SimulationRequest `json:"inputs"`
	Baseline     BaselineSnapshot  `json:"baseline"`

	// PriceAnalysis is present when the scenario changes price.
	PriceAnalysis *PricePreview `json:"price_analysis,omitempty"`

	Revenue      DistributionResult `json:"revenue"`
	Profit       DistributionResult `json:"profit"`
	Orders       DistributionResult `json:"orders"`
	ProfitMargin DistributionResult `json:"profit_margin"`

	Sensitivity []SensitivityImpact `json:"sensitivity"`
	Insights    []string            `json:"insights"`
}

// SimulationRun is the archived summary of a completed simulation, keyed by
// the deterministic simulation_id.
type SimulationRun struct {
	SimulationID string
	ShopID       int64
	CreatedAt    time.Time

	BasePeriodDays int
	ForecastDays   int
	Simulations    int
	Seed           int64
	Variables      WhatIfVariables

	RevenueMean         float64
	RevenueP5           float64
	RevenueP95          float64
	ProfitMean          float64
	ProfitP5            float64
	ProfitP95           float64
	ProbabilityPositive float64
	TopSensitivity      string
}
