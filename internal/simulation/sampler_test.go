package simulation

import (
	"math"
	"sync"
	"testing"

	"commerce-whatif-lab/internal/scenario"
)

func testDist() scenario.AdjustedDistribution {
	return scenario.AdjustedDistribution{
		MeanRevenue: 1000,
		StdRevenue:  100,
		MeanOrders:  10,
		StdOrders:   2,
		MeanAOV:     100,
		COGSRate:    0.4,
	}
}

func TestRun_PopulationSize(t *testing.T) {
	set := Run(testDist(), Options{Trials: 2000, ForecastDays: 30, Seed: 42})

	if len(set.Revenues) != 2000 || len(set.Profits) != 2000 ||
		len(set.Orders) != 2000 || len(set.Margins) != 2000 {
		t.Fatalf("expected all populations of length 2000, got %d/%d/%d/%d",
			len(set.Revenues), len(set.Profits), len(set.Orders), len(set.Margins))
	}
}

func TestRun_DeterministicForSeed(t *testing.T) {
	// Same seed, different worker counts: byte-identical trial populations.
	a := Run(testDist(), Options{Trials: 5000, ForecastDays: 30, Seed: 42, Workers: 1})
	b := Run(testDist(), Options{Trials: 5000, ForecastDays: 30, Seed: 42, Workers: 8})

	for i := range a.Revenues {
		if a.Revenues[i] != b.Revenues[i] || a.Profits[i] != b.Profits[i] ||
			a.Orders[i] != b.Orders[i] || a.Margins[i] != b.Margins[i] {
			t.Fatalf("trial %d differs across worker counts", i)
		}
	}

	// Different seed must actually change the draw.
	c := Run(testDist(), Options{Trials: 5000, ForecastDays: 30, Seed: 43})
	same := true
	for i := range a.Revenues {
		if a.Revenues[i] != c.Revenues[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("changing the seed produced identical populations")
	}
}

func TestRun_DegenerateDistribution(t *testing.T) {
	// Std-dev forced to 0: every trial is exactly mean*days.
	dist := scenario.AdjustedDistribution{
		MeanRevenue: 1000,
		StdRevenue:  0,
		MeanOrders:  10,
		StdOrders:   0,
		COGSRate:    0.4,
	}
	set := Run(dist, Options{Trials: 1000, ForecastDays: 30, Seed: 42})

	for i, r := range set.Revenues {
		if r != 30000 {
			t.Fatalf("trial %d: expected revenue 30000, got %f", i, r)
		}
		if set.Profits[i] != 18000 {
			t.Fatalf("trial %d: expected profit 18000, got %f", i, set.Profits[i])
		}
	}
}

func TestRun_TrialArithmetic(t *testing.T) {
	set := Run(testDist(), Options{Trials: 1000, ForecastDays: 30, Seed: 7})

	for i := range set.Revenues {
		r := set.Revenues[i]
		if r < 0 {
			t.Fatalf("trial %d: negative revenue %f", i, r)
		}
		wantProfit := r - r*0.4
		if math.Abs(set.Profits[i]-wantProfit) > 1e-9 {
			t.Fatalf("trial %d: profit %f does not match revenue*cogs rate", i, set.Profits[i])
		}
		if r > 0 {
			wantMargin := wantProfit / r * 100
			if math.Abs(set.Margins[i]-wantMargin) > 1e-9 {
				t.Fatalf("trial %d: margin mismatch", i)
			}
		}
	}
}

func TestRun_ZeroRevenueDistribution(t *testing.T) {
	set := Run(scenario.AdjustedDistribution{}, Options{Trials: 1000, ForecastDays: 10, Seed: 1})
	for i := range set.Revenues {
		if set.Revenues[i] != 0 || set.Margins[i] != 0 {
			t.Fatalf("trial %d: expected zeroed trial for zero distribution", i)
		}
	}
}

func TestRun_ProgressReachesTotal(t *testing.T) {
	var mu sync.Mutex
	last := 0
	calls := 0

	Run(testDist(), Options{
		Trials:       4500,
		ForecastDays: 10,
		Seed:         42,
		Progress: func(completed, total int) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			if completed > last {
				last = completed
			}
			if total != 4500 {
				t.Errorf("expected total 4500, got %d", total)
			}
		},
	})

	if last != 4500 {
		t.Errorf("expected final progress 4500, got %d", last)
	}
	if calls != 5 {
		t.Errorf("expected 5 chunk callbacks for 4500 trials, got %d", calls)
	}
}

func TestRun_SampleMeanNearDistributionMean(t *testing.T) {
	set := Run(testDist(), Options{Trials: 20000, ForecastDays: 30, Seed: 42})

	sum := 0.0
	for _, r := range set.Revenues {
		sum += r
	}
	got := sum / float64(len(set.Revenues))

	// Expected trial mean is 30 days * 1000. Truncation bias is negligible
	// at CoV 0.1, so 1% tolerance is generous.
	want := 30000.0
	if math.Abs(got-want)/want > 0.01 {
		t.Errorf("sample mean %f too far from %f", got, want)
	}
}
