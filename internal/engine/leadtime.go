// internal/engine/leadtime.go
package engine

import (
	"math"

	"github.com/andresuchdata/stockwise/internal/domain"
)

const (
	fallbackLeadTimeDays = 7
	// maxLeadTimeSample caps plausible order-to-receive spans; anything at or
	// above a year is treated as bad data.
	maxLeadTimeSample = 365
)

// LeadTime is the resolved lead time for one item.
type LeadTime struct {
	Days float64
	// Calculated reports whether the value came from purchase-order history
	// rather than the product default.
	Calculated bool
}

// EstimateLeadTime derives lead time from purchase-order history. Each order
// with both dates contributes its absolute day difference, keeping samples in
// [0, 365). With valid samples the result is their mean (AVERAGE) or maximum
// (MAX), clamped to at least one day. Without samples the product default
// applies, falling back to 7 days when missing, also clamped to one day.
func EstimateLeadTime(orders []domain.PurchaseOrder, defaultDays float64, mode domain.LeadTimeMode) LeadTime {
	var samples []float64
	for _, po := range orders {
		if po.OrderDate.IsZero() || po.ReceiveDate.IsZero() {
			continue
		}
		diff := math.Abs(po.ReceiveDate.Sub(po.OrderDate).Hours() / 24)
		if diff < 0 || diff >= maxLeadTimeSample {
			continue
		}
		samples = append(samples, diff)
	}

	if len(samples) > 0 {
		var days float64
		switch mode {
		case domain.LeadTimeMax:
			for _, s := range samples {
				days = math.Max(days, s)
			}
		default:
			days = mean(samples)
		}
		return LeadTime{Days: math.Max(1, days), Calculated: true}
	}

	if defaultDays <= 0 || math.IsNaN(defaultDays) {
		defaultDays = fallbackLeadTimeDays
	}
	return LeadTime{Days: math.Max(1, defaultDays)}
}
