// Package simulation draws Monte Carlo trials of a forecast horizon from an
// adjusted daily distribution.
//
// Trials are independent and share no mutable state, so the trial space is
// split into fixed-size chunks fanned out across workers. Each chunk owns an
// index range of the preallocated result slices and a PRNG derived from
// (seed, chunk index), which makes a run byte-identical for a given seed
// regardless of worker count or scheduling.
package simulation

import (
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"

	"commerce-whatif-lab/internal/scenario"
)

// chunkSize is the number of trials one worker unit processes. Small enough
// to keep progress reporting responsive at 50k trials, large enough that
// scheduling overhead is noise.
const chunkSize = 1000

// Options configures one sampling run.
type Options struct {
	Trials       int
	ForecastDays int
	Seed         int64

	// Workers caps sampling parallelism. 0 means GOMAXPROCS.
	Workers int

	// Progress, when set, receives the cumulative completed trial count
	// after each chunk. It may be invoked from multiple goroutines.
	Progress func(completed, total int)
}

// TrialSet holds the per-trial outcome populations. All slices have length
// Trials; index i across slices belongs to the same trial.
type TrialSet struct {
	Revenues []float64
	Orders   []float64
	Profits  []float64
	Margins  []float64 // percent, 0 when trial revenue is 0
}

// Run executes opts.Trials independent trials against dist.
func Run(dist scenario.AdjustedDistribution, opts Options) *TrialSet {
	n := opts.Trials
	set := &TrialSet{
		Revenues: make([]float64, n),
		Orders:   make([]float64, n),
		Profits:  make([]float64, n),
		Margins:  make([]float64, n),
	}
	if n == 0 {
		return set
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	chunks := (n + chunkSize - 1) / chunkSize
	if workers > chunks {
		workers = chunks
	}

	var completed atomic.Int64
	var nextChunk atomic.Int64
	var wg sync.WaitGroup

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				chunk := int(nextChunk.Add(1)) - 1
				if chunk >= chunks {
					return
				}

				start := chunk * chunkSize
				end := start + chunkSize
				if end > n {
					end = n
				}

				rng := rand.New(rand.NewSource(chunkSeed(opts.Seed, chunk)))
				for i := start; i < end; i++ {
					sampleTrial(set, i, dist, opts.ForecastDays, rng)
				}

				if opts.Progress != nil {
					done := completed.Add(int64(end - start))
					opts.Progress(int(done), n)
				}
			}
		}()
	}
	wg.Wait()

	return set
}

// sampleTrial fills slot i of the trial set with one sampled forecast.
func sampleTrial(set *TrialSet, i int, dist scenario.AdjustedDistribution, forecastDays int, rng *rand.Rand) {
	var revenue, orders float64
	for d := 0; d < forecastDays; d++ {
		// Daily draws are Normal, truncated at 0: a day cannot un-sell.
		r := rng.NormFloat64()*dist.StdRevenue + dist.MeanRevenue
		if r < 0 {
			r = 0
		}
		revenue += r

		o := rng.NormFloat64()*dist.StdOrders + dist.MeanOrders
		if o < 0 {
			o = 0
		}
		orders += o
	}

	// Cost is proportional to realized revenue rather than independently
	// sampled; decoupling cost from volume produces unrealistic trials.
	cost := revenue * dist.COGSRate
	profit := revenue - cost

	margin := 0.0
	if revenue > 0 {
		margin = profit / revenue * 100
	}

	set.Revenues[i] = revenue
	set.Orders[i] = orders
	set.Profits[i] = profit
	set.Margins[i] = margin
}

// chunkSeed derives a per-chunk seed. The odd multiplier spreads consecutive
// chunk indexes across the seed space so adjacent chunks do not correlate.
func chunkSeed(seed int64, chunk int) int64 {
	return seed + int64(chunk)*0x9E3779B9
}
