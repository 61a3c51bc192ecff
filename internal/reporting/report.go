package reporting

import (
	"time"

	"commerce-whatif-lab/internal/domain"
)

// Report is the renderable view of one simulation run.
type Report struct {
	// Metadata
	GeneratedAt  time.Time
	SimulationID string
	ShopDomain   string

	// Inputs
	Inputs    domain.SimulationRequest
	Variables []VariableRow

	// Baseline the run was anchored on
	Baseline domain.BaselineSnapshot

	// Outcome distributions
	Distributions []DistributionRow

	// Probability that forecast-period profit is positive, in percent.
	ProbabilityPositive float64

	// Price analysis, present when the scenario changes price
	PriceAnalysis *domain.PricePreview

	// Ranked sensitivity table
	Sensitivity []domain.SensitivityImpact

	// Narrative insights
	Insights []string
}

// VariableRow is one scenario variable with a display label.
type VariableRow struct {
	Name  string
	Value float64
}

// DistributionRow flattens one outcome distribution for tabular rendering.
type DistributionRow struct {
	Metric string
	Mean   float64
	Median float64
	StdDev float64
	P5     float64
	P25    float64
	P75    float64
	P95    float64
	Min    float64
	Max    float64
}
