// Package engine wires the what-if pipeline behind one facade: baseline
// estimation, price preview, preset listing, and full Monte Carlo simulation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"commerce-whatif-lab/internal/baseline"
	"commerce-whatif-lab/internal/domain"
	"commerce-whatif-lab/internal/idhash"
	"commerce-whatif-lab/internal/insights"
	"commerce-whatif-lab/internal/metrics"
	"commerce-whatif-lab/internal/observability"
	"commerce-whatif-lab/internal/pricing"
	"commerce-whatif-lab/internal/scenario"
	"commerce-whatif-lab/internal/sensitivity"
	"commerce-whatif-lab/internal/simulation"
	"commerce-whatif-lab/internal/storage"
)

// Options configures an Engine.
type Options struct {
	// History supplies aggregated daily order activity. Required.
	History storage.OrderHistoryStore

	// Runs archives completed simulations. Optional; when nil no archive
	// writes happen.
	Runs storage.SimulationRunStore

	// Workers caps sampling parallelism. 0 means GOMAXPROCS.
	Workers int
}

// Engine executes what-if operations for one deployment. Safe for concurrent
// use.
type Engine struct {
	history storage.OrderHistoryStore
	runs    storage.SimulationRunStore
	workers int

	now func() time.Time
}

// New creates an Engine.
func New(opts Options) (*Engine, error) {
	if opts.History == nil {
		return nil, fmt.Errorf("order history store is required")
	}

	return &Engine{
		history: opts.History,
		runs:    opts.Runs,
		workers: opts.Workers,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Baseline estimates baseline metrics for a shop over the given lookback
// window. A periodDays of 0 uses the default window.
func (e *Engine) Baseline(ctx context.Context, shopID int64, periodDays int) (*domain.BaselineMetrics, error) {
	periodDays, err := normalizePeriodDays(periodDays)
	if err != nil {
		observability.RecordBaselineRequest("invalid")
		return nil, err
	}

	history, err := e.loadHistory(ctx, shopID, periodDays)
	if err != nil {
		observability.RecordBaselineRequest("error")
		return nil, err
	}

	b, err := baseline.Estimate(history, periodDays)
	if err != nil {
		observability.RecordBaselineRequest("insufficient_data")
		return nil, err
	}

	observability.RecordBaselineRequest("ok")
	return b, nil
}

// PricePreview projects a price change through the elasticity model without
// running a simulation. An elasticity of 0 uses the default.
func (e *Engine) PricePreview(ctx context.Context, shopID int64, multiplier, elasticity float64, periodDays int) (*domain.PricePreview, error) {
	if elasticity == 0 {
		elasticity = domain.DefaultElasticity
	}
	if err := validateFinite("price_multiplier", multiplier); err != nil {
		return nil, err
	}
	if err := validateFinite("price_elasticity", elasticity); err != nil {
		return nil, err
	}
	if multiplier <= domain.PriceMultiplierMin || multiplier > domain.PriceMultiplierMax {
		return nil, domain.NewValidationError("price_multiplier",
			"must be in (%g, %g], got %g", domain.PriceMultiplierMin, domain.PriceMultiplierMax, multiplier)
	}
	if elasticity < domain.PriceElasticityMin || elasticity > domain.PriceElasticityMax {
		return nil, domain.NewValidationError("price_elasticity",
			"must be in [%g, %g], got %g", domain.PriceElasticityMin, domain.PriceElasticityMax, elasticity)
	}

	b, err := e.Baseline(ctx, shopID, periodDays)
	if err != nil {
		return nil, err
	}

	observability.RecordPricePreview()
	return pricing.Project(b, multiplier, elasticity), nil
}

// Presets lists the built-in scenario presets.
func (e *Engine) Presets() []domain.Preset {
	out := make([]domain.Preset, len(domain.Presets))
	copy(out, domain.Presets)
	return out
}

// Simulate runs one full what-if simulation. The progress callback, when
// non-nil, receives cumulative completed trial counts during sampling; it may
// be invoked from multiple goroutines.
func (e *Engine) Simulate(ctx context.Context, shopID int64, req domain.SimulationRequest, progress func(completed, total int)) (*domain.SimulationResult, error) {
	start := time.Now()

	req = normalizeRequest(req)
	if err := validateRequest(&req); err != nil {
		observability.RecordSimulation("invalid", 0, 0)
		return nil, err
	}

	history, err := e.loadHistory(ctx, shopID, req.BasePeriodDays)
	if err != nil {
		observability.RecordSimulation("error", 0, 0)
		return nil, err
	}

	b, err := baseline.Estimate(history, req.BasePeriodDays)
	if err != nil {
		observability.RecordSimulation("insufficient_data", 0, 0)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		observability.RecordSimulation("error", 0, 0)
		return nil, err
	}

	dist := scenario.Compose(b, req.Variables)
	trials := simulation.Run(dist, simulation.Options{
		Trials:       req.Simulations,
		ForecastDays: req.ForecastDays,
		Seed:         req.Seed,
		Workers:      e.workers,
		Progress:     progress,
	})

	if err := ctx.Err(); err != nil {
		observability.RecordSimulation("error", 0, 0)
		return nil, err
	}

	result := e.assembleResult(shopID, b, &req, trials)

	e.archive(ctx, shopID, result)

	duration := time.Since(start)
	observability.RecordSimulation("ok", req.Simulations, duration.Seconds())
	observability.DefaultMetrics.LastSuccessfulSimulation.Set(float64(e.now().Unix()))

	return result, nil
}

// assembleResult reduces the trial populations into the structured result.
func (e *Engine) assembleResult(shopID int64, b *domain.BaselineMetrics, req *domain.SimulationRequest, trials *simulation.TrialSet) *domain.SimulationResult {
	probPositive := metrics.ProbabilityPositive(trials.Profits)

	result := &domain.SimulationResult{
		SimulationID: idhash.ComputeSimulationID(shopID, req),
		GeneratedAt:  e.now(),
		Inputs:       *req,
		Baseline: domain.BaselineSnapshot{
			DailyRevenue:      b.DailyRevenueMean,
			DailyOrders:       b.DailyOrdersMean,
			AverageOrderValue: b.AvgOrderValue,
			COGSRatePct:       b.COGSRate * 100,
		},
		Revenue: domain.DistributionResult{
			MetricSummary: metrics.Summarize(trials.Revenues),
			Histogram:     metrics.NewHistogram(trials.Revenues, domain.HistogramBuckets),
		},
		Profit: domain.DistributionResult{
			MetricSummary:       metrics.Summarize(trials.Profits),
			Histogram:           metrics.NewHistogram(trials.Profits, domain.HistogramBuckets),
			ProbabilityPositive: &probPositive,
		},
		Orders: domain.DistributionResult{
			MetricSummary: metrics.Summarize(trials.Orders),
		},
		ProfitMargin: domain.DistributionResult{
			MetricSummary: metrics.Summarize(trials.Margins),
		},
		Sensitivity: sensitivity.Analyze(b, req.Variables, req.ForecastDays, req.Seed, e.workers),
	}

	if req.Variables.PriceMultiplier != 1.0 {
		result.PriceAnalysis = pricing.Project(b, req.Variables.PriceMultiplier, req.Variables.PriceElasticity)
	}

	result.Insights = insights.Generate(result)
	return result
}

// archive writes the run summary when an archive store is wired. Failure is
// logged and counted, never surfaced: the result is already computed.
func (e *Engine) archive(ctx context.Context, shopID int64, result *domain.SimulationResult) {
	if e.runs == nil {
		return
	}

	run := &domain.SimulationRun{
		SimulationID:        result.SimulationID,
		ShopID:              shopID,
		CreatedAt:           result.GeneratedAt,
		BasePeriodDays:      result.Inputs.BasePeriodDays,
		ForecastDays:        result.Inputs.ForecastDays,
		Simulations:         result.Inputs.Simulations,
		Seed:                result.Inputs.Seed,
		Variables:           result.Inputs.Variables,
		RevenueMean:         result.Revenue.Mean,
		RevenueP5:           result.Revenue.Percentile5,
		RevenueP95:          result.Revenue.Percentile95,
		ProfitMean:          result.Profit.Mean,
		ProfitP5:            result.Profit.Percentile5,
		ProfitP95:           result.Profit.Percentile95,
		ProbabilityPositive: *result.Profit.ProbabilityPositive,
	}
	if len(result.Sensitivity) > 0 {
		run.TopSensitivity = result.Sensitivity[0].Variable
	}

	err := e.runs.Insert(ctx, run)
	if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		log.Printf("engine: archive simulation %s: %v", run.SimulationID, err)
		observability.RecordArchiveError()
	}
}

// loadHistory fetches the daily history with query timing recorded.
func (e *Engine) loadHistory(ctx context.Context, shopID int64, periodDays int) ([]domain.DailyMetric, error) {
	queryStart := time.Now()
	history, err := e.history.DailyHistory(ctx, shopID, periodDays)
	observability.RecordHistoryQuery(time.Since(queryStart).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("load daily history: %w", err)
	}
	return history, nil
}
