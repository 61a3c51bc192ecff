// Package main runs a single what-if simulation from the command line and
// writes a Markdown report, either against PostgreSQL order history or a
// deterministic synthetic history for local experiments.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"commerce-whatif-lab/internal/domain"
	"commerce-whatif-lab/internal/engine"
	"commerce-whatif-lab/internal/reporting"
	"commerce-whatif-lab/internal/storage"
	chstore "commerce-whatif-lab/internal/storage/clickhouse"
	"commerce-whatif-lab/internal/storage/memory"
	pgstore "commerce-whatif-lab/internal/storage/postgres"
)

func main() {
	// Simulation parameters
	shopID := flag.Int64("shop-id", 1, "Shop ID to simulate for")
	shopDomain := flag.String("shop-domain", "dev-shop.local", "Shop domain for the report header")
	preset := flag.String("preset", "", "Preset name or label: growth, downturn, conservative, holiday, cost, expansion")
	basePeriodDays := flag.Int("base-period-days", 0, "Historical window in days (0 = default)")
	forecastDays := flag.Int("forecast-days", 0, "Forecast horizon in days (0 = default)")
	simulations := flag.Int("simulations", 0, "Trial count (0 = default)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = default)")

	// Scenario variables (ignored when --preset is set)
	revenueGrowth := flag.Float64("revenue-growth", 0, "Revenue growth fraction, e.g. 0.15")
	aovChange := flag.Float64("aov-change", 0, "Average order value change fraction")
	volumeChange := flag.Float64("volume-change", 0, "Order volume change fraction")
	cogsChange := flag.Float64("cogs-change", 0, "COGS change fraction")
	conversionChange := flag.Float64("conversion-change", 0, "Conversion rate change fraction")
	priceMultiplier := flag.Float64("price-multiplier", 0, "Price multiplier, e.g. 1.1 (0 = unchanged)")
	priceElasticity := flag.Float64("price-elasticity", 0, "Demand elasticity (0 = default)")

	// Storage
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional, archives the run)")
	synthetic := flag.Bool("synthetic", false, "Use deterministic synthetic history instead of PostgreSQL")
	syntheticDays := flag.Int("synthetic-days", 120, "Days of synthetic history to generate")
	syntheticRevenue := flag.Float64("synthetic-revenue", 2500, "Mean daily revenue for synthetic history")
	syntheticOrders := flag.Int("synthetic-orders", 25, "Mean daily orders for synthetic history")
	syntheticCOGSRate := flag.Float64("synthetic-cogs-rate", 0.42, "COGS as a fraction of revenue for synthetic history")

	// Output
	outputDir := flag.String("output-dir", "", "Directory for report.md and distributions.csv (default: stdout only)")
	outputJSON := flag.Bool("json", false, "Print the raw result as JSON instead of Markdown")

	flag.Parse()

	logger := log.New(os.Stderr, "[simulate] ", log.LstdFlags)

	if !*synthetic && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (or use --synthetic for generated history)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Create stores
	var historyStore storage.OrderHistoryStore
	var runStore storage.SimulationRunStore

	if *synthetic {
		historyStore = syntheticHistory(ctx, *shopID, *syntheticDays, *syntheticRevenue, *syntheticOrders, *syntheticCOGSRate)
	} else {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("connect to postgres: %v", err)
		}
		defer pool.Close()
		historyStore = pgstore.NewOrderHistoryStore(pool)
	}

	if *clickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("connect to clickhouse: %v", err)
		}
		defer conn.Close()
		runStore = chstore.NewSimulationRunStore(conn)
	}

	eng, err := engine.New(engine.Options{History: historyStore, Runs: runStore})
	if err != nil {
		logger.Fatalf("create engine: %v", err)
	}

	// Build request
	req := domain.SimulationRequest{
		BasePeriodDays: *basePeriodDays,
		ForecastDays:   *forecastDays,
		Simulations:    *simulations,
		Seed:           *seed,
	}
	if *preset != "" {
		vars, ok := presetVariables(*preset)
		if !ok {
			logger.Fatalf("Unknown preset %q. Must be growth, downturn, conservative, holiday, cost, or expansion", *preset)
		}
		req.Variables = vars
	} else {
		req.Variables = domain.WhatIfVariables{
			RevenueGrowth:        *revenueGrowth,
			AOVChange:            *aovChange,
			OrderVolumeChange:    *volumeChange,
			COGSChange:           *cogsChange,
			ConversionRateChange: *conversionChange,
			PriceMultiplier:      *priceMultiplier,
			PriceElasticity:      *priceElasticity,
		}
	}

	// Run simulation
	logger.Printf("Running simulation: shop=%d preset=%q", *shopID, *preset)
	start := time.Now()

	result, err := eng.Simulate(ctx, *shopID, req, nil)
	if err != nil {
		logger.Fatalf("simulation failed: %v", err)
	}
	logger.Printf("Completed %d trials in %v (simulation_id=%s)",
		result.Inputs.Simulations, time.Since(start), result.SimulationID)

	// Output result
	if *outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return
	}

	report := reporting.FromResult(result, *shopDomain)
	markdown := reporting.RenderMarkdown(report)

	if *outputDir == "" {
		fmt.Print(markdown)
		return
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		logger.Fatalf("create output directory: %v", err)
	}
	reportPath := filepath.Join(*outputDir, "report.md")
	if err := os.WriteFile(reportPath, []byte(markdown), 0644); err != nil {
		logger.Fatalf("write report: %v", err)
	}
	csvPath := filepath.Join(*outputDir, "distributions.csv")
	if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(report.Distributions)), 0644); err != nil {
		logger.Fatalf("write csv: %v", err)
	}
	logger.Printf("Wrote %s and %s", reportPath, csvPath)
}

// presetVariables looks up a preset by its full name ("Optimistic Growth")
// or its short label ("growth").
func presetVariables(key string) (domain.WhatIfVariables, bool) {
	if p := domain.PresetByName(key); p != nil {
		return p.Variables, true
	}
	key = strings.ToLower(key)
	for _, p := range domain.Presets {
		if p.Label == key {
			return p.Variables, true
		}
	}
	return domain.WhatIfVariables{}, false
}

// syntheticHistory builds an in-memory history store with a deterministic
// revenue pattern: a weekly cycle plus small seeded noise, so repeated CLI
// runs produce identical reports.
func syntheticHistory(ctx context.Context, shopID int64, days int, dailyRevenue float64, dailyOrders int, cogsRate float64) storage.OrderHistoryStore {
	store := memory.NewOrderHistoryStore()
	rng := rand.New(rand.NewSource(1))
	today := time.Now().UTC().Truncate(24 * time.Hour)

	for d := 1; d <= days; d++ {
		date := today.AddDate(0, 0, -d)

		// Weekends run hotter than midweek.
		weekday := 1.0
		switch date.Weekday() {
		case time.Saturday, time.Sunday:
			weekday = 1.25
		case time.Tuesday, time.Wednesday:
			weekday = 0.85
		}
		noise := 1.0 + (rng.Float64()-0.5)*0.2

		revenue := dailyRevenue * weekday * noise
		orders := int(float64(dailyOrders)*weekday*noise + 0.5)
		if orders < 1 {
			orders = 1
		}

		store.InsertDay(ctx, shopID, domain.DailyMetric{
			Date:    date,
			Orders:  orders,
			Revenue: revenue,
			AOV:     revenue / float64(orders),
			COGS:    revenue * cogsRate,
		})
	}
	return store
}
