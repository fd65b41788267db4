// internal/engine/policy.go
package engine

import (
	"math"

	"github.com/andresuchdata/stockwise/internal/domain"
)

// MinMaxTargets combines demand, lead time and safety stock into the reorder
// point (min) and order-up-to level (max):
//
//	minStock = ceil(avgDaily*leadTimeDays + safetyStock)
//	maxStock = minStock + ceil(avgDaily*orderCycleDays)
//
// Every configured replenishment model shares this arithmetic; the model
// selector is recorded on the result for display only.
func MinMaxTargets(avgDaily, leadTimeDays float64, safetyStock, orderCycleDays int) (minStock, maxStock int) {
	minStock = int(math.Ceil(avgDaily*leadTimeDays + float64(safetyStock)))
	maxStock = minStock + int(math.Ceil(avgDaily*float64(orderCycleDays)))
	return minStock, maxStock
}

// inactiveUsageFloor separates a true stockout from an item that simply has
// no meaningful demand.
const inactiveUsageFloor = 0.01

// ClassifyStock assigns one health status per item. The rules are evaluated
// in order and the first match wins:
//
//  1. never any OUT movement and stock on hand  -> DEAD
//  2. stock <= 0                                -> STOCKOUT (active) / INACTIVE
//  3. stock below min                           -> LOW
//  4. stock above max                           -> HIGH
//  5. zero usage with stock on hand             -> DEAD
//  6. otherwise                                 -> OK
func ClassifyStock(effectiveStock float64, minStock, maxStock int, avgDaily float64, hasOutflow bool) domain.StockStatus {
	switch {
	case !hasOutflow && effectiveStock > 0:
		return domain.StatusDead
	case effectiveStock <= 0:
		if avgDaily > inactiveUsageFloor {
			return domain.StatusStockout
		}
		return domain.StatusInactive
	case effectiveStock < float64(minStock):
		return domain.StatusLow
	case effectiveStock > float64(maxStock):
		return domain.StatusHigh
	case avgDaily == 0 && effectiveStock > 0:
		return domain.StatusDead
	default:
		return domain.StatusOK
	}
}

// OrderQuantity proposes how much to buy to return to the order-up-to level,
// net of stock already on order. Only LOW and STOCKOUT items order.
func OrderQuantity(status domain.StockStatus, maxStock int, effectiveStock, onOrderQty float64) float64 {
	if status != domain.StatusLow && status != domain.StatusStockout {
		return 0
	}
	return math.Max(0, float64(maxStock)-effectiveStock-onOrderQty)
}
