// Package baseline reduces a window of historical daily order activity into
// the summary statistics that anchor a simulation.
package baseline

import (
	"math"
	"sort"

	"commerce-whatif-lab/internal/domain"
)

// MinObservations is the smallest window the estimator accepts. Trend and
// dispersion are meaningless on a single point.
const MinObservations = 2

// Estimate computes BaselineMetrics from daily observations covering
// periodDays. The input is copied and sorted by date ascending before
// reduction; the caller's slice is never mutated.
//
// Returns a *domain.InsufficientDataError when fewer than MinObservations
// days were observed.
func Estimate(days []domain.DailyMetric, periodDays int) (*domain.BaselineMetrics, error) {
	if len(days) < MinObservations {
		return nil, &domain.InsufficientDataError{
			ObservedDays: len(days),
			RequiredDays: MinObservations,
		}
	}

	sorted := make([]domain.DailyMetric, len(days))
	copy(sorted, days)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	n := len(sorted)
	revenues := make([]float64, n)
	orders := make([]float64, n)

	var totalRevenue, totalCOGS float64
	totalOrders := 0
	for i, d := range sorted {
		revenues[i] = d.Revenue
		orders[i] = float64(d.Orders)
		totalRevenue += d.Revenue
		totalCOGS += d.COGS
		totalOrders += d.Orders
	}

	revenueMean := mean(revenues)
	ordersMean := mean(orders)
	cogsMean := totalCOGS / float64(n)

	// AOV = mean revenue / mean orders; zero order volume yields AOV 0
	// rather than a division blow-up.
	aov := 0.0
	if ordersMean > 0 {
		aov = revenueMean / ordersMean
	}

	cogsRate := 0.0
	if revenueMean > 0 {
		cogsRate = cogsMean / revenueMean
	}

	revenueStd := sampleStdDev(revenues, revenueMean)

	cov := 0.0
	if revenueMean > 0 {
		cov = revenueStd / revenueMean
	}

	totalProfit := totalRevenue - totalCOGS
	margin := 0.0
	if totalRevenue > 0 {
		margin = totalProfit / totalRevenue * 100
	}

	return &domain.BaselineMetrics{
		PeriodDays:            periodDays,
		ObservedDays:          n,
		DailyRevenueMean:      revenueMean,
		DailyRevenueStdDev:    revenueStd,
		DailyOrdersMean:       ordersMean,
		DailyOrdersStdDev:     sampleStdDev(orders, ordersMean),
		AvgOrderValue:         aov,
		DailyCOGSMean:         cogsMean,
		COGSRate:              cogsRate,
		RevenueCoeffVariation: cov,
		DailyRevenueTrend:     trendSlope(revenues),
		TotalRevenue:          totalRevenue,
		TotalOrders:           totalOrders,
		TotalCOGS:             totalCOGS,
		TotalProfit:           totalProfit,
		ProfitMargin:          margin,
	}, nil
}

// mean calculates the arithmetic mean.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev calculates sample standard deviation (n-1 denominator).
func sampleStdDev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// trendSlope fits revenue against day index with ordinary least squares and
// returns the closed-form slope. Day index runs 0..n-1 in date order, so a
// positive slope means revenue is growing.
func trendSlope(values []float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 0
	}

	// slope = (n*Σxy - Σx*Σy) / (n*Σx² - (Σx)²)
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
