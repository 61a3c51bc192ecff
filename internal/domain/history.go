package domain

import "time"

// DailyMetric is one observed day of aggregated order activity for a shop.
// Rows come from the upstream order sync (orders joined with line items and
// variant costs); the engine never sees individual orders.
type DailyMetric struct {
	Date    time.Time // order date, truncated to day (UTC)
	Orders  int       // distinct paid orders on that day
	Revenue float64   // summed order totals
	AOV     float64   // average order value on that day
	COGS    float64   // summed quantity * variant cost
}

// Shop identifies a merchant store.
type Shop struct {
	ShopID     int64
	ShopDomain string // e.g. "store.myshopify.com"
	CreatedAt  time.Time
}
