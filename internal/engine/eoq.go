// internal/engine/eoq.go
package engine

import "math"

const defaultHoldingCostPct = 0.20

// EOQ computes the classic economic order quantity from annualized demand and
// cost parameters. A zero holding cost per unit is substituted with 1 so the
// division is always defined.
func EOQ(avgDaily, cost, orderPlacementCost, holdingCostAnnualPct float64) int {
	if holdingCostAnnualPct <= 0 {
		holdingCostAnnualPct = defaultHoldingCostPct
	}

	annualDemand := avgDaily * 365
	holdingCostPerUnit := cost * holdingCostAnnualPct
	if holdingCostPerUnit == 0 {
		holdingCostPerUnit = 1
	}

	return int(math.Round(math.Sqrt(2 * annualDemand * orderPlacementCost / holdingCostPerUnit)))
}
