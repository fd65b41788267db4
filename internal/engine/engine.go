// internal/engine/engine.go
//
// Package engine implements the inventory replenishment analytics pipeline:
// per-item demand and lead-time estimation, safety stock, min/max targets,
// stock health classification and EOQ (pass 1), followed by global ABC
// ranking and inter-branch transfer matching over the complete pass-1 set
// (pass 2). The engine is a pure function of its inputs: identical inputs
// always produce an identical, deterministically ordered result list.
package engine

import (
	"context"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/stockwise/internal/domain"
)

// Compute runs the full two-pass analysis. It returns an empty list when no
// products are supplied. Pass 1 computes every (SKU, branch) item
// independently on a bounded worker group; pass 2 waits for the fully
// materialized pass-1 set, assigns ABC classes and matches transfers, then
// emits the list in descending revenue order with original order breaking
// ties.
func Compute(
	ctx context.Context,
	products []domain.Product,
	transactions []domain.Transaction,
	purchaseOrders []domain.PurchaseOrder,
	cfg domain.ServiceLevelConfig,
) []domain.AnalysisResult {
	if len(products) == 0 {
		return []domain.AnalysisResult{}
	}

	txnsByItem := make(map[string][]domain.Transaction, len(products))
	for _, t := range transactions {
		k := itemKey(t.ProductID, t.Branch)
		txnsByItem[k] = append(txnsByItem[k], t)
	}

	ordersByItem := make(map[string][]domain.PurchaseOrder)
	for _, po := range purchaseOrders {
		k := itemKey(po.ProductID, po.Branch)
		ordersByItem[k] = append(ordersByItem[k], po)
	}

	globalMax := latestTransactionDate(transactions)

	// Pass 1: embarrassingly parallel per item. Each worker writes only its
	// own slot, so the slice is fully materialized and immutable once Wait
	// returns.
	results := make([]domain.AnalysisResult, len(products))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range products {
		i := i
		g.Go(func() error {
			p := products[i]
			k := itemKey(p.ID, p.Branch)
			results[i] = analyzeItem(p, txnsByItem[k], ordersByItem[k], cfg, globalMax)
			return nil
		})
	}
	// Workers are pure computations and never return errors.
	_ = g.Wait()

	// Pass 2: global ranking and transfer matching over the complete set.
	order := classifyABC(results)
	matchTransfers(results)

	final := make([]domain.AnalysisResult, 0, len(results))
	for _, idx := range order {
		r := results[idx]
		r.OrderValue = r.SuggestedOrderQty * r.Cost
		final = append(final, r)
	}
	return final
}

// analyzeItem sequences the pass-1 steps for one (SKU, branch) pair.
func analyzeItem(
	p domain.Product,
	txns []domain.Transaction,
	orders []domain.PurchaseOrder,
	cfg domain.ServiceLevelConfig,
	globalMax time.Time,
) domain.AnalysisResult {
	demand := EstimateDemand(txns, p.AvgDailyUsageOverride, cfg.GrowthFactor, cfg.OutlierThreshold, globalMax)
	leadTime := EstimateLeadTime(orders, p.DefaultLeadTime, cfg.LeadTimeMode)

	serviceLevel := cfg.ServiceLevelFor(p)
	safetyStock := SafetyStock(serviceLevel, demand.StdDevUsage, leadTime.Days, cfg.Strategy, demand.AvgDailyUsage, cfg.WeeksOfSafetyStock)
	minStock, maxStock := MinMaxTargets(demand.AvgDailyUsage, leadTime.Days, safetyStock, cfg.OrderCycleDays)

	effectiveStock := cfg.EffectiveStock(p)
	status := ClassifyStock(effectiveStock, minStock, maxStock, demand.AvgDailyUsage, demand.HasOutflow)

	return domain.AnalysisResult{
		ProductID: p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Category:  p.Category,
		Branch:    p.Branch,
		Cost:      p.Cost,

		AvgDailyUsage: demand.AvgDailyUsage,
		StdDevUsage:   demand.StdDevUsage,
		AnomalyCount:  demand.AnomalyCount,
		MonthlyUsage:  demand.MonthlyUsage,

		LeadTimeDays:       leadTime.Days,
		LeadTimeCalculated: leadTime.Calculated,

		ServiceLevel: serviceLevel,
		SafetyStock:  safetyStock,
		MinStock:     minStock,
		MaxStock:     maxStock,
		EOQ:          EOQ(demand.AvgDailyUsage, p.Cost, cfg.OrderPlacementCost, cfg.HoldingCostAnnualPct),

		ReplenishmentModel: cfg.ReplenishmentModel,

		StockPhysical:   p.StockPhysical,
		StockAvailable:  p.StockAvailable,
		OnOrderQty:      p.OnOrderQty,
		CalculatedStock: effectiveStock,

		Status:            status,
		SuggestedOrderQty: OrderQuantity(status, maxStock, effectiveStock, p.OnOrderQty),

		StockValue: effectiveStock * p.Cost,
	}
}

// itemKey joins a product id and branch into one lookup key. The id side is
// matched case-insensitively and trimmed.
func itemKey(productID, branch string) string {
	return strings.ToLower(strings.TrimSpace(productID)) + "\x00" + strings.TrimSpace(branch)
}

func latestTransactionDate(txns []domain.Transaction) time.Time {
	var latest time.Time
	for _, t := range txns {
		if t.Date.IsZero() {
			continue
		}
		if t.Date.After(latest) {
			latest = t.Date
		}
	}
	return latest
}
