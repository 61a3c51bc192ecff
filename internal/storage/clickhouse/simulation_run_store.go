package clickhouse

import (
	"context"
	"fmt"
	"time"

	"commerce-whatif-lab/internal/domain"
	"commerce-whatif-lab/internal/storage"
)

// SimulationRunStore implements storage.SimulationRunStore using ClickHouse.
type SimulationRunStore struct {
	conn *Conn
}

// NewSimulationRunStore creates a new SimulationRunStore.
func NewSimulationRunStore(conn *Conn) *SimulationRunStore {
	return &SimulationRunStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SimulationRunStore = (*SimulationRunStore)(nil)

const simulationRunColumns = `
	simulation_id, shop_id, created_at,
	base_period_days, forecast_days, simulations, seed,
	revenue_growth, aov_change, order_volume_change, cogs_change,
	conversion_rate_change, price_multiplier, price_elasticity,
	revenue_mean, revenue_p5, revenue_p95,
	profit_mean, profit_p5, profit_p95,
	probability_positive, top_sensitivity
`

// Insert adds a completed run summary. Returns ErrDuplicateKey if simulation_id exists.
func (s *SimulationRunStore) Insert(ctx context.Context, r *domain.SimulationRun) error {
	if r == nil || r.SimulationID == "" {
		return storage.ErrInvalidInput
	}

	// MergeTree does not enforce uniqueness, so check before insert to keep
	// append-only semantics.
	exists, err := s.exists(ctx, r.SimulationID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	query := `INSERT INTO simulation_runs (` + simulationRunColumns + `) VALUES (
		?, ?, ?,
		?, ?, ?, ?,
		?, ?, ?, ?,
		?, ?, ?,
		?, ?, ?,
		?, ?, ?,
		?, ?
	)`

	err = s.conn.Exec(ctx, query,
		r.SimulationID, r.ShopID, r.CreatedAt,
		int32(r.BasePeriodDays), int32(r.ForecastDays), int32(r.Simulations), r.Seed,
		r.Variables.RevenueGrowth, r.Variables.AOVChange, r.Variables.OrderVolumeChange, r.Variables.COGSChange,
		r.Variables.ConversionRateChange, r.Variables.PriceMultiplier, r.Variables.PriceElasticity,
		r.RevenueMean, r.RevenueP5, r.RevenueP95,
		r.ProfitMean, r.ProfitP5, r.ProfitP95,
		r.ProbabilityPositive, r.TopSensitivity,
	)
	if err != nil {
		return fmt.Errorf("insert simulation run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its simulation ID. Returns ErrNotFound if not exists.
func (s *SimulationRunStore) GetByID(ctx context.Context, simulationID string) (*domain.SimulationRun, error) {
	query := `SELECT ` + simulationRunColumns + `
		FROM simulation_runs
		WHERE simulation_id = ?
		LIMIT 1
	`

	row := s.conn.QueryRow(ctx, query, simulationID)
	r, err := scanSimulationRun(row.Scan)
	if err != nil {
		return nil, storage.ErrNotFound
	}
	return r, nil
}

// ListByShop retrieves the most recent runs for a shop, newest first.
func (s *SimulationRunStore) ListByShop(ctx context.Context, shopID int64, limit int) ([]*domain.SimulationRun, error) {
	query := `SELECT ` + simulationRunColumns + `
		FROM simulation_runs
		WHERE shop_id = ?
		ORDER BY created_at DESC, simulation_id ASC
	`
	args := []interface{}{shopID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, int64(limit))
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs by shop: %w", err)
	}
	defer rows.Close()

	var runs []*domain.SimulationRun
	for rows.Next() {
		r, err := scanSimulationRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}

	return runs, nil
}

// exists checks if a run with the given ID exists.
func (s *SimulationRunStore) exists(ctx context.Context, simulationID string) (bool, error) {
	query := `SELECT count(*) FROM simulation_runs WHERE simulation_id = ?`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, simulationID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanSimulationRun scans one row via the given scan function.
func scanSimulationRun(scan func(dest ...interface{}) error) (*domain.SimulationRun, error) {
	var (
		r              domain.SimulationRun
		createdAt      time.Time
		basePeriodDays int32
		forecastDays   int32
		simulations    int32
	)

	err := scan(
		&r.SimulationID, &r.ShopID, &createdAt,
		&basePeriodDays, &forecastDays, &simulations, &r.Seed,
		&r.Variables.RevenueGrowth, &r.Variables.AOVChange, &r.Variables.OrderVolumeChange, &r.Variables.COGSChange,
		&r.Variables.ConversionRateChange, &r.Variables.PriceMultiplier, &r.Variables.PriceElasticity,
		&r.RevenueMean, &r.RevenueP5, &r.RevenueP95,
		&r.ProfitMean, &r.ProfitP5, &r.ProfitP95,
		&r.ProbabilityPositive, &r.TopSensitivity,
	)
	if err != nil {
		return nil, err
	}

	r.CreatedAt = createdAt
	r.BasePeriodDays = int(basePeriodDays)
	r.ForecastDays = int(forecastDays)
	r.Simulations = int(simulations)
	return &r, nil
}
