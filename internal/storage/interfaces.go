package storage

import (
	"context"

	"commerce-whatif-lab/internal/domain"
)

// ShopStore provides access to shops storage.
type ShopStore interface {
	// Insert adds a new shop. Returns ErrDuplicateKey if shop_domain exists.
	Insert(ctx context.Context, s *domain.Shop) error

	// GetByID retrieves a shop by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, shopID int64) (*domain.Shop, error)

	// GetByDomain retrieves a shop by its domain. Returns ErrNotFound if not exists.
	GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error)
}

// OrderHistoryStore provides access to aggregated daily order history.
type OrderHistoryStore interface {
	// DailyHistory retrieves up to the last `days` days of aggregated order
	// activity for a shop, ordered by date ASC. Days with no paid orders are
	// absent from the result. Returns an empty slice when the shop has no
	// qualifying orders.
	DailyHistory(ctx context.Context, shopID int64, days int) ([]domain.DailyMetric, error)
}

// SimulationRunStore provides access to the simulation_runs archive.
type SimulationRunStore interface {
	// Insert adds a completed run summary. Returns ErrDuplicateKey if
	// simulation_id exists.
	Insert(ctx context.Context, r *domain.SimulationRun) error

	// GetByID retrieves a run by its simulation ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, simulationID string) (*domain.SimulationRun, error)

	// ListByShop retrieves the most recent runs for a shop, newest first,
	// capped at limit. A limit <= 0 means no cap.
	ListByShop(ctx context.Context, shopID int64, limit int) ([]*domain.SimulationRun, error)
}
