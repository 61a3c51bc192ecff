package engine

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"
	"time"

	"commerce-whatif-lab/internal/domain"
	"commerce-whatif-lab/internal/storage"
	"commerce-whatif-lab/internal/storage/memory"
)

// seedHistory fills a memory store with flat synthetic history: the same
// revenue, orders and cogs every day for the last `days` days.
func seedHistory(t *testing.T, store *memory.OrderHistoryStore, shopID int64, days int, revenue float64, orders int, cogs float64) {
	t.Helper()
	ctx := context.Background()
	today := time.Now().UTC().Truncate(24 * time.Hour)
	for d := 1; d <= days; d++ {
		m := domain.DailyMetric{
			Date:    today.AddDate(0, 0, -d),
			Orders:  orders,
			Revenue: revenue,
			AOV:     revenue / float64(orders),
			COGS:    cogs,
		}
		if err := store.InsertDay(ctx, shopID, m); err != nil {
			t.Fatalf("InsertDay failed: %v", err)
		}
	}
}

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	e, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

func flatHistoryEngine(t *testing.T) *Engine {
	t.Helper()
	store := memory.NewOrderHistoryStore()
	seedHistory(t, store, 1, 60, 1000, 10, 400)
	return newTestEngine(t, Options{History: store})
}

func TestEngine_Baseline(t *testing.T) {
	e := flatHistoryEngine(t)

	b, err := e.Baseline(context.Background(), 1, 60)
	if err != nil {
		t.Fatalf("Baseline failed: %v", err)
	}

	if b.ObservedDays != 60 {
		t.Errorf("ObservedDays: got %d, want 60", b.ObservedDays)
	}
	if math.Abs(b.DailyRevenueMean-1000) > 1e-9 {
		t.Errorf("DailyRevenueMean: got %f, want 1000", b.DailyRevenueMean)
	}
	if math.Abs(b.AvgOrderValue-100) > 1e-9 {
		t.Errorf("AvgOrderValue: got %f, want 100", b.AvgOrderValue)
	}
	if math.Abs(b.COGSRate-0.4) > 1e-9 {
		t.Errorf("COGSRate: got %f, want 0.4", b.COGSRate)
	}
}

func TestEngine_Baseline_DefaultPeriod(t *testing.T) {
	e := flatHistoryEngine(t)

	b, err := e.Baseline(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("Baseline failed: %v", err)
	}
	if b.PeriodDays != domain.BasePeriodDaysDefault {
		t.Errorf("PeriodDays: got %d, want %d", b.PeriodDays, domain.BasePeriodDaysDefault)
	}
}

func TestEngine_Baseline_Bounds(t *testing.T) {
	e := flatHistoryEngine(t)
	ctx := context.Background()

	_, err := e.Baseline(ctx, 1, 10)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("periodDays=10: expected ValidationError, got %v", err)
	}

	_, err = e.Baseline(ctx, 1, 400)
	var cle *domain.ComputationLimitError
	if !errors.As(err, &cle) {
		t.Errorf("periodDays=400: expected ComputationLimitError, got %v", err)
	} else if cle.Limit != domain.BasePeriodDaysMax {
		t.Errorf("Limit: got %d, want %d", cle.Limit, domain.BasePeriodDaysMax)
	}
}

func TestEngine_Baseline_InsufficientData(t *testing.T) {
	e := newTestEngine(t, Options{History: memory.NewOrderHistoryStore()})

	_, err := e.Baseline(context.Background(), 1, 90)
	var ide *domain.InsufficientDataError
	if !errors.As(err, &ide) {
		t.Fatalf("Expected InsufficientDataError, got %v", err)
	}
	if ide.ObservedDays != 0 {
		t.Errorf("ObservedDays: got %d, want 0", ide.ObservedDays)
	}
}

func TestEngine_PricePreview(t *testing.T) {
	e := flatHistoryEngine(t)

	p, err := e.PricePreview(context.Background(), 1, 1.1, 0, 60)
	if err != nil {
		t.Fatalf("PricePreview failed: %v", err)
	}

	// Elasticity 0 falls back to the default.
	if p.Elasticity != domain.DefaultElasticity {
		t.Errorf("Elasticity: got %f, want %f", p.Elasticity, domain.DefaultElasticity)
	}
	// -1.5 * 0.1 = -15% demand
	if math.Abs(p.DemandEffect-(-0.15)) > 1e-9 {
		t.Errorf("DemandEffect: got %f, want -0.15", p.DemandEffect)
	}
	if math.Abs(p.Projected.DailyOrders-8.5) > 1e-9 {
		t.Errorf("Projected orders: got %f, want 8.5", p.Projected.DailyOrders)
	}
}

func TestEngine_PricePreview_Validation(t *testing.T) {
	e := flatHistoryEngine(t)
	ctx := context.Background()

	var ve *domain.ValidationError
	for _, tc := range []struct {
		name       string
		multiplier float64
		elasticity float64
	}{
		{"zero multiplier", 0, -1.5},
		{"negative multiplier", -0.5, -1.5},
		{"huge multiplier", 5.0, -1.5},
		{"elasticity out of range", 1.1, -20},
		{"nan multiplier", math.NaN(), -1.5},
	} {
		_, err := e.PricePreview(ctx, 1, tc.multiplier, tc.elasticity, 60)
		if !errors.As(err, &ve) {
			t.Errorf("%s: expected ValidationError, got %v", tc.name, err)
		}
	}
}

func TestEngine_Presets(t *testing.T) {
	e := flatHistoryEngine(t)

	presets := e.Presets()
	if len(presets) != 6 {
		t.Fatalf("Expected 6 presets, got %d", len(presets))
	}

	// The returned slice is a copy; mutating it must not touch the catalog.
	presets[0].Name = "mutated"
	if e.Presets()[0].Name == "mutated" {
		t.Error("Presets returned an aliased slice")
	}
}

func TestEngine_Simulate_Defaults(t *testing.T) {
	e := flatHistoryEngine(t)

	result, err := e.Simulate(context.Background(), 1, domain.SimulationRequest{}, nil)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	in := result.Inputs
	if in.BasePeriodDays != domain.BasePeriodDaysDefault ||
		in.ForecastDays != domain.ForecastDaysDefault ||
		in.Simulations != domain.SimulationsDefault ||
		in.Seed != domain.DefaultSeed {
		t.Errorf("Defaults not applied: %+v", in)
	}
	if in.Variables.PriceMultiplier != 1.0 {
		t.Errorf("PriceMultiplier default: got %f", in.Variables.PriceMultiplier)
	}
	if result.SimulationID == "" || len(result.SimulationID) != 64 {
		t.Errorf("Bad simulation ID: %q", result.SimulationID)
	}
}

func TestEngine_Simulate_FlatHistoryExactValues(t *testing.T) {
	// Zero daily variance makes every trial identical, so the distribution
	// collapses to exact figures: 30 days * 1000 revenue, 40% cogs.
	e := flatHistoryEngine(t)

	result, err := e.Simulate(context.Background(), 1, domain.SimulationRequest{}, nil)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	if math.Abs(result.Revenue.Mean-30000) > 1e-6 {
		t.Errorf("Revenue mean: got %f, want 30000", result.Revenue.Mean)
	}
	if math.Abs(result.Revenue.Median-30000) > 1e-6 {
		t.Errorf("Revenue median: got %f, want 30000", result.Revenue.Median)
	}
	if math.Abs(result.Profit.Mean-18000) > 1e-6 {
		t.Errorf("Profit mean: got %f, want 18000", result.Profit.Mean)
	}
	if math.Abs(result.ProfitMargin.Mean-60) > 1e-6 {
		t.Errorf("Margin mean: got %f, want 60", result.ProfitMargin.Mean)
	}
	if result.Profit.ProbabilityPositive == nil || *result.Profit.ProbabilityPositive != 100 {
		t.Errorf("ProbabilityPositive: got %v, want 100", result.Profit.ProbabilityPositive)
	}
	if result.PriceAnalysis != nil {
		t.Error("PriceAnalysis present for neutral scenario")
	}
	if len(result.Sensitivity) != len(domain.VariableNames) {
		t.Errorf("Sensitivity rows: got %d, want %d", len(result.Sensitivity), len(domain.VariableNames))
	}
	if len(result.Insights) == 0 {
		t.Error("No insights generated")
	}
}

func TestEngine_Simulate_Deterministic(t *testing.T) {
	storeA := memory.NewOrderHistoryStore()
	seedHistory(t, storeA, 1, 60, 1000, 10, 400)
	storeB := memory.NewOrderHistoryStore()
	seedHistory(t, storeB, 1, 60, 1000, 10, 400)

	// Different worker counts must not change the output.
	e1 := newTestEngine(t, Options{History: storeA, Workers: 1})
	e8 := newTestEngine(t, Options{History: storeB, Workers: 8})

	req := domain.DefaultSimulationRequest()
	req.Variables.RevenueGrowth = 0.15
	req.Variables.COGSChange = -0.05

	r1, err := e1.Simulate(context.Background(), 1, req, nil)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	r8, err := e8.Simulate(context.Background(), 1, req, nil)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	// Timestamps differ; everything else must match exactly.
	r1.GeneratedAt = time.Time{}
	r8.GeneratedAt = time.Time{}
	if !reflect.DeepEqual(r1, r8) {
		t.Error("Same seed produced different results across worker counts")
	}
}

func TestEngine_Simulate_SeedChangesOutcome(t *testing.T) {
	ctx := context.Background()

	// Variance is needed for the seed to matter; growth alone keeps std 0,
	// so use a store with day-to-day variation.
	store := memory.NewOrderHistoryStore()
	today := time.Now().UTC().Truncate(24 * time.Hour)
	for d := 1; d <= 60; d++ {
		rev := 1000 + float64(d%7)*120
		err := store.InsertDay(ctx, 1, domain.DailyMetric{
			Date: today.AddDate(0, 0, -d), Orders: 10, Revenue: rev, AOV: rev / 10, COGS: rev * 0.4,
		})
		if err != nil {
			t.Fatalf("InsertDay failed: %v", err)
		}
	}
	e := newTestEngine(t, Options{History: store})

	req := domain.DefaultSimulationRequest()
	r1, err := e.Simulate(ctx, 1, req, nil)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	req.Seed = 1234
	r2, err := e.Simulate(ctx, 1, req, nil)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	if r1.Revenue.Mean == r2.Revenue.Mean {
		t.Error("Different seeds produced identical revenue means")
	}
	if r1.SimulationID == r2.SimulationID {
		t.Error("Different seeds produced the same simulation ID")
	}
}

func TestEngine_Simulate_Validation(t *testing.T) {
	e := flatHistoryEngine(t)
	ctx := context.Background()

	validationCases := []func(*domain.SimulationRequest){
		func(r *domain.SimulationRequest) { r.Simulations = 500 },
		func(r *domain.SimulationRequest) { r.ForecastDays = 3 },
		func(r *domain.SimulationRequest) { r.BasePeriodDays = 10 },
		func(r *domain.SimulationRequest) { r.Variables.RevenueGrowth = 2.0 },
		func(r *domain.SimulationRequest) { r.Variables.COGSChange = -0.9 },
		func(r *domain.SimulationRequest) { r.Variables.AOVChange = math.NaN() },
		func(r *domain.SimulationRequest) { r.Variables.PriceMultiplier = -1 },
	}
	for i, mutate := range validationCases {
		req := domain.DefaultSimulationRequest()
		mutate(&req)
		_, err := e.Simulate(ctx, 1, req, nil)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("Case %d: expected ValidationError, got %v", i, err)
		}
	}

	limitCases := []func(*domain.SimulationRequest){
		func(r *domain.SimulationRequest) { r.Simulations = 60000 },
		func(r *domain.SimulationRequest) { r.ForecastDays = 365 },
		func(r *domain.SimulationRequest) { r.BasePeriodDays = 1000 },
	}
	for i, mutate := range limitCases {
		req := domain.DefaultSimulationRequest()
		mutate(&req)
		_, err := e.Simulate(ctx, 1, req, nil)
		var cle *domain.ComputationLimitError
		if !errors.As(err, &cle) {
			t.Errorf("Limit case %d: expected ComputationLimitError, got %v", i, err)
		}
	}
}

func TestEngine_Simulate_PriceAnalysisPresence(t *testing.T) {
	e := flatHistoryEngine(t)

	req := domain.DefaultSimulationRequest()
	req.Variables.PriceMultiplier = 1.2
	result, err := e.Simulate(context.Background(), 1, req, nil)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	if result.PriceAnalysis == nil {
		t.Fatal("PriceAnalysis missing for price scenario")
	}
	if result.PriceAnalysis.PriceMultiplier != 1.2 {
		t.Errorf("PriceMultiplier: got %f", result.PriceAnalysis.PriceMultiplier)
	}
}

func TestEngine_Simulate_Progress(t *testing.T) {
	e := flatHistoryEngine(t)

	var mu sync.Mutex
	var last, calls int
	progress := func(completed, total int) {
		mu.Lock()
		defer mu.Unlock()
		if completed > last {
			last = completed
		}
		calls++
	}

	req := domain.DefaultSimulationRequest()
	req.Simulations = 5000
	_, err := e.Simulate(context.Background(), 1, req, progress)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	if last != 5000 {
		t.Errorf("Progress never reached total: last=%d", last)
	}
	if calls == 0 {
		t.Error("Progress callback never invoked")
	}
}

func TestEngine_Simulate_Archives(t *testing.T) {
	history := memory.NewOrderHistoryStore()
	seedHistory(t, history, 1, 60, 1000, 10, 400)
	runs := memory.NewSimulationRunStore()
	e := newTestEngine(t, Options{History: history, Runs: runs})
	ctx := context.Background()

	result, err := e.Simulate(ctx, 1, domain.SimulationRequest{}, nil)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	run, err := runs.GetByID(ctx, result.SimulationID)
	if err != nil {
		t.Fatalf("Archived run not found: %v", err)
	}
	if run.ShopID != 1 || run.Simulations != domain.SimulationsDefault {
		t.Errorf("Archived run wrong: %+v", run)
	}
	if run.RevenueMean != result.Revenue.Mean {
		t.Errorf("RevenueMean mismatch: %f vs %f", run.RevenueMean, result.Revenue.Mean)
	}
	if run.TopSensitivity != result.Sensitivity[0].Variable {
		t.Errorf("TopSensitivity mismatch: %s", run.TopSensitivity)
	}

	// Re-running the identical request hits the same ID; the duplicate is
	// silently ignored.
	if _, err := e.Simulate(ctx, 1, domain.SimulationRequest{}, nil); err != nil {
		t.Fatalf("Repeat simulate failed: %v", err)
	}
}

// failingRunStore always errors on insert.
type failingRunStore struct{}

func (failingRunStore) Insert(context.Context, *domain.SimulationRun) error {
	return errors.New("clickhouse unavailable")
}
func (failingRunStore) GetByID(context.Context, string) (*domain.SimulationRun, error) {
	return nil, storage.ErrNotFound
}
func (failingRunStore) ListByShop(context.Context, int64, int) ([]*domain.SimulationRun, error) {
	return nil, nil
}

func TestEngine_Simulate_ArchiveFailureNonFatal(t *testing.T) {
	history := memory.NewOrderHistoryStore()
	seedHistory(t, history, 1, 60, 1000, 10, 400)
	e := newTestEngine(t, Options{History: history, Runs: failingRunStore{}})

	result, err := e.Simulate(context.Background(), 1, domain.SimulationRequest{}, nil)
	if err != nil {
		t.Fatalf("Simulate failed despite archive being optional: %v", err)
	}
	if result == nil {
		t.Fatal("No result returned")
	}
}

func TestEngine_Simulate_CancelledContext(t *testing.T) {
	e := flatHistoryEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Simulate(ctx, 1, domain.SimulationRequest{}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
