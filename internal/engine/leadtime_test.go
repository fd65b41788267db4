package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/andresuchdata/stockwise/internal/domain"
)

func po(orderOffset, receiveOffset int) domain.PurchaseOrder {
	return domain.PurchaseOrder{
		ProductID:   "p1",
		Branch:      "A",
		Quantity:    100,
		OrderDate:   day(orderOffset),
		ReceiveDate: day(receiveOffset),
	}
}

func TestEstimateLeadTime_Average(t *testing.T) {
	orders := []domain.PurchaseOrder{po(0, 7), po(0, 14)}

	lt := EstimateLeadTime(orders, 3, domain.LeadTimeAverage)

	assert.InDelta(t, 10.5, lt.Days, 1e-9)
	assert.True(t, lt.Calculated)
}

func TestEstimateLeadTime_Max(t *testing.T) {
	orders := []domain.PurchaseOrder{po(0, 7), po(0, 14)}

	lt := EstimateLeadTime(orders, 3, domain.LeadTimeMax)

	assert.InDelta(t, 14, lt.Days, 1e-9)
	assert.True(t, lt.Calculated)
}

func TestEstimateLeadTime_ReversedDatesUseAbsoluteDifference(t *testing.T) {
	orders := []domain.PurchaseOrder{po(7, 0)}

	lt := EstimateLeadTime(orders, 3, domain.LeadTimeAverage)

	assert.InDelta(t, 7, lt.Days, 1e-9)
	assert.True(t, lt.Calculated)
}

func TestEstimateLeadTime_ImplausibleSamplesDiscarded(t *testing.T) {
	orders := []domain.PurchaseOrder{po(0, 400)}

	lt := EstimateLeadTime(orders, 3, domain.LeadTimeAverage)

	assert.InDelta(t, 3, lt.Days, 1e-9)
	assert.False(t, lt.Calculated)
}

func TestEstimateLeadTime_MissingDatesFallBackToDefault(t *testing.T) {
	orders := []domain.PurchaseOrder{
		{ProductID: "p1", Branch: "A", OrderDate: day(0)}, // no receive date
	}

	lt := EstimateLeadTime(orders, 0, domain.LeadTimeAverage)

	assert.InDelta(t, 7, lt.Days, 1e-9)
	assert.False(t, lt.Calculated)
}

func TestEstimateLeadTime_ClampedToOneDay(t *testing.T) {
	// A same-day receive yields a sub-day sample.
	orders := []domain.PurchaseOrder{
		{
			ProductID:   "p1",
			Branch:      "A",
			OrderDate:   day(0),
			ReceiveDate: day(0).Add(12 * time.Hour),
		},
	}

	lt := EstimateLeadTime(orders, 3, domain.LeadTimeAverage)

	assert.InDelta(t, 1, lt.Days, 1e-9)
	assert.True(t, lt.Calculated)

	// The default is clamped the same way.
	lt = EstimateLeadTime(nil, 0.25, domain.LeadTimeAverage)
	assert.InDelta(t, 1, lt.Days, 1e-9)
}
