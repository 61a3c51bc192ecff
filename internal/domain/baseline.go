package domain

// BaselineMetrics summarizes a window of historical daily order activity.
// Derived once per request and immutable for the duration of a simulation.
type BaselineMetrics struct {
	PeriodDays   int // requested window length
	ObservedDays int // days that actually had rows

	// Daily revenue distribution
	DailyRevenueMean   float64
	DailyRevenueStdDev float64

	// Daily order count distribution
	DailyOrdersMean   float64
	DailyOrdersStdDev float64

	// Average order value (mean revenue / mean orders; 0 when no orders)
	AvgOrderValue float64

	// Daily COGS and the derived cost rate (mean cogs / mean revenue)
	DailyCOGSMean float64
	COGSRate      float64

	// Dispersion and trend
	RevenueCoeffVariation float64 // stddev / mean, 0 when mean is 0
	DailyRevenueTrend     float64 // OLS slope of revenue against day index

	// Totals over the observed window
	TotalRevenue float64
	TotalOrders  int
	TotalCOGS    float64
	TotalProfit  float64
	ProfitMargin float64 // percent, 0 when revenue is 0
}
