// internal/engine/demand.go
package engine

import (
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/stockwise/internal/domain"
)

// overrideStdDevRatio is the fixed dispersion heuristic applied when a manual
// average-usage override bypasses the statistical estimate.
const overrideStdDevRatio = 0.3

// DemandStats holds the per-item demand estimate produced from transaction
// history.
type DemandStats struct {
	// AvgDailyUsage is the growth-adjusted mean of the trimmed daily series.
	AvgDailyUsage float64
	// StdDevUsage is the population standard deviation of the trimmed daily
	// series around the pre-growth mean. Growth scaling deliberately does not
	// inflate variance.
	StdDevUsage float64
	// AnomalyCount is the number of daily observations dropped as outliers.
	AnomalyCount int
	// HasOutflow reports whether any OUT movement was ever recorded.
	HasOutflow bool
	// MonthlyUsage is the OUT quantity summed per calendar month, ascending.
	MonthlyUsage []domain.MonthlyUsage
}

// EstimateDemand builds a daily usage series from the item's transactions and
// returns trimmed mean/variance statistics.
//
// The series spans from the item's earliest transaction date to globalMax,
// the latest transaction date across the entire input set, so coverage is
// comparable network-wide. Days without OUT movements count as zero.
// Transactions without a parsable date are excluded from both the series and
// the span.
//
// A positive manualAvg bypasses the estimate entirely: the override becomes
// the mean and the standard deviation is fixed at 0.3 times the mean.
func EstimateDemand(txns []domain.Transaction, manualAvg, growthFactor, outlierThreshold float64, globalMax time.Time) DemandStats {
	if growthFactor <= 0 {
		growthFactor = 1
	}

	stats := DemandStats{
		MonthlyUsage: monthlyTrend(txns),
	}
	for _, t := range txns {
		if t.Type == domain.TransactionOut {
			stats.HasOutflow = true
			break
		}
	}

	if manualAvg > 0 {
		stats.AvgDailyUsage = manualAvg
		stats.StdDevUsage = overrideStdDevRatio * manualAvg
		return stats
	}

	firstActivity := earliestDate(txns)
	if firstActivity.IsZero() || globalMax.IsZero() {
		return stats
	}

	span := daysBetween(firstActivity, globalMax) + 1
	if span < 1 {
		span = 1
	}

	series := make([]float64, span)
	for _, t := range txns {
		if t.Type != domain.TransactionOut || t.Date.IsZero() {
			continue
		}
		idx := daysBetween(firstActivity, t.Date)
		if idx < 0 || idx >= span {
			continue
		}
		series[idx] += t.Quantity
	}

	rawMean := mean(series)
	rawStdDev := populationStdDev(series, rawMean)

	trimmed := series
	if outlierThreshold > 0 && rawStdDev > 0 {
		cutoff := rawMean + outlierThreshold*rawStdDev
		kept := make([]float64, 0, len(series))
		for _, q := range series {
			if q > cutoff {
				stats.AnomalyCount++
				continue
			}
			kept = append(kept, q)
		}
		trimmed = kept
	}

	if len(trimmed) == 0 {
		return stats
	}

	trimmedMean := mean(trimmed)
	stats.AvgDailyUsage = trimmedMean * growthFactor
	stats.StdDevUsage = populationStdDev(trimmed, trimmedMean)

	return stats
}

// monthlyTrend sums OUT quantities per calendar month, sorted ascending.
func monthlyTrend(txns []domain.Transaction) []domain.MonthlyUsage {
	byMonth := make(map[string]float64)
	for _, t := range txns {
		if t.Type != domain.TransactionOut || t.Date.IsZero() {
			continue
		}
		byMonth[t.Date.UTC().Format("2006-01")] += t.Quantity
	}
	if len(byMonth) == 0 {
		return nil
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	trend := make([]domain.MonthlyUsage, 0, len(months))
	for _, m := range months {
		trend = append(trend, domain.MonthlyUsage{Month: m, Quantity: byMonth[m]})
	}
	return trend
}

func earliestDate(txns []domain.Transaction) time.Time {
	var first time.Time
	for _, t := range txns {
		if t.Date.IsZero() {
			continue
		}
		if first.IsZero() || t.Date.Before(first) {
			first = t.Date
		}
	}
	return first
}

// daysBetween counts whole calendar days from a to b, ignoring the time of
// day on either side.
func daysBetween(a, b time.Time) int {
	return int(dateOf(b).Sub(dateOf(a)).Hours() / 24)
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func populationStdDev(values []float64, around float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - around
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
