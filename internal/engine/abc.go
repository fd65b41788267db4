// internal/engine/abc.go
package engine

import (
	"sort"

	"github.com/andresuchdata/stockwise/internal/domain"
)

const (
	classACumulativeShare = 0.80
	classBCumulativeShare = 0.95
)

// classifyABC ranks the full pass-1 result set by revenue contribution
// (avgDailyUsage * cost * 365) and buckets items by cumulative share: A up to
// 80%, B up to 95%, C beyond. The sort is stable, so ties keep their original
// relative order. When total revenue is zero every item is class C.
//
// Results are annotated in place; the returned slice is the descending
// revenue order (as indices into results), which is also the final output
// order of the pipeline.
func classifyABC(results []domain.AnalysisResult) []int {
	var totalRevenue float64
	for i := range results {
		results[i].RevenueContribution = results[i].AvgDailyUsage * results[i].Cost * 365
		totalRevenue += results[i].RevenueContribution
	}

	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return results[order[a]].RevenueContribution > results[order[b]].RevenueContribution
	})

	if totalRevenue <= 0 {
		for i := range results {
			results[i].Class = domain.ClassC
		}
		return order
	}

	var runningSum float64
	for _, idx := range order {
		runningSum += results[idx].RevenueContribution
		cumulativePct := runningSum / totalRevenue
		switch {
		case cumulativePct <= classACumulativeShare:
			results[idx].Class = domain.ClassA
		case cumulativePct <= classBCumulativeShare:
			results[idx].Class = domain.ClassB
		default:
			results[idx].Class = domain.ClassC
		}
	}

	return order
}
