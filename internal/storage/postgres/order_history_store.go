package postgres

import (
	"context"
	"fmt"

	"commerce-whatif-lab/internal/domain"
	"commerce-whatif-lab/internal/storage"
)

// OrderHistoryStore implements storage.OrderHistoryStore using PostgreSQL.
// It aggregates raw orders, line items and variant costs into daily rows.
type OrderHistoryStore struct {
	pool *Pool
}

// NewOrderHistoryStore creates a new OrderHistoryStore.
func NewOrderHistoryStore(pool *Pool) *OrderHistoryStore {
	return &OrderHistoryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.OrderHistoryStore = (*OrderHistoryStore)(nil)

// DailyHistory retrieves up to the last `days` days of aggregated order
// activity, ordered by date ASC. Only paid and partially paid orders count.
// COGS is quantity * variant cost summed over the day's line items; line items
// whose variant has no recorded cost contribute zero.
func (s *OrderHistoryStore) DailyHistory(ctx context.Context, shopID int64, days int) ([]domain.DailyMetric, error) {
	if days <= 0 {
		return nil, storage.ErrInvalidInput
	}

	// Revenue aggregates over orders, COGS over line items joined with variant
	// costs. Aggregating separately keeps SUM(total_price) from being repeated
	// once per line item.
	query := `
		SELECT
			o.order_date,
			COUNT(DISTINCT o.order_id) AS daily_orders,
			COALESCE(SUM(o.total_price), 0) AS daily_revenue,
			COALESCE(AVG(o.total_price), 0) AS avg_order_value,
			COALESCE(SUM(c.order_cogs), 0) AS daily_cogs
		FROM orders o
		LEFT JOIN (
			SELECT oli.shop_id, oli.order_id, SUM(oli.quantity * COALESCE(pv.cost, 0)) AS order_cogs
			FROM order_line_items oli
			LEFT JOIN product_variants pv
				ON oli.shop_id = pv.shop_id
				AND oli.product_id = pv.product_id
				AND oli.variant_id = pv.variant_id
			GROUP BY oli.shop_id, oli.order_id
		) c ON o.shop_id = c.shop_id AND o.order_id = c.order_id
		WHERE o.shop_id = $1
		  AND o.order_date >= CURRENT_DATE - $2::int
		  AND o.financial_status IN ('paid', 'partially_paid')
		GROUP BY o.order_date
		ORDER BY o.order_date ASC
	`

	rows, err := s.pool.Query(ctx, query, shopID, days)
	if err != nil {
		return nil, fmt.Errorf("query daily history: %w", err)
	}
	defer rows.Close()

	var history []domain.DailyMetric
	for rows.Next() {
		var m domain.DailyMetric
		if err := rows.Scan(&m.Date, &m.Orders, &m.Revenue, &m.AOV, &m.COGS); err != nil {
			return nil, fmt.Errorf("scan daily history row: %w", err)
		}
		history = append(history, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily history rows: %w", err)
	}

	return history, nil
}
