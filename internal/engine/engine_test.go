package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/stockwise/internal/domain"
)

func testConfig() domain.ServiceLevelConfig {
	cfg := domain.DefaultServiceLevelConfig()
	cfg.OrderCycleDays = 14
	return cfg
}

// twoBranchDataset builds one SKU held at two branches: branch A is running
// low and branch B is sitting on surplus.
func twoBranchDataset() ([]domain.Product, []domain.Transaction) {
	products := []domain.Product{
		{ID: "p1", SKU: "WID-1", Name: "Widget", Branch: "A", Cost: 20, StockPhysical: 10, StockAvailable: 10},
		{ID: "p2", SKU: "WID-1", Name: "Widget", Branch: "B", Cost: 20, StockPhysical: 500, StockAvailable: 500},
	}

	var txns []domain.Transaction
	for i := 0; i < 30; i++ {
		txns = append(txns, domain.Transaction{
			ProductID: "p1", Branch: "A", Type: domain.TransactionOut, Quantity: 10, Date: day(i),
		})
		txns = append(txns, domain.Transaction{
			ProductID: "p2", Branch: "B", Type: domain.TransactionOut, Quantity: 1, Date: day(i),
		})
	}
	return products, txns
}

func TestCompute_EmptyProducts(t *testing.T) {
	results := Compute(context.Background(), nil, nil, nil, testConfig())

	require.NotNil(t, results)
	assert.Empty(t, results)
}

func TestCompute_TwoBranchScenario(t *testing.T) {
	products, txns := twoBranchDataset()

	results := Compute(context.Background(), products, txns, nil, testConfig())
	require.Len(t, results, 2)

	// Output is in descending revenue order: branch A (avg 10/day) first.
	a, b := results[0], results[1]
	require.Equal(t, "A", a.Branch)
	require.Equal(t, "B", b.Branch)

	// Branch A: avg 10/day with zero variance, default 7-day lead time.
	assert.InDelta(t, 10, a.AvgDailyUsage, 1e-9)
	assert.Equal(t, 70, a.MinStock)
	assert.Equal(t, 210, a.MaxStock)
	assert.Equal(t, domain.StatusLow, a.Status)
	assert.False(t, a.LeadTimeCalculated)

	// Branch B: avg 1/day, far above its max.
	assert.InDelta(t, 1, b.AvgDailyUsage, 1e-9)
	assert.Equal(t, 7, b.MinStock)
	assert.Equal(t, 21, b.MaxStock)
	assert.Equal(t, domain.StatusHigh, b.Status)

	// Transfer: A needs 200 (max 210 - stock 10), B has 479 excess, so the
	// whole shortage is covered and nothing is purchased.
	assert.InDelta(t, 200, a.SuggestedTransferQty, 1e-9)
	assert.Equal(t, "B", a.TransferSourceBranch)
	assert.Zero(t, a.SuggestedOrderQty)

	// ABC: A carries ~91% of revenue -> B class; the rest is C.
	assert.Equal(t, domain.ClassB, a.Class)
	assert.Equal(t, domain.ClassC, b.Class)
}

func TestCompute_Idempotent(t *testing.T) {
	products, txns := twoBranchDataset()
	cfg := testConfig()

	first := Compute(context.Background(), products, txns, nil, cfg)
	second := Compute(context.Background(), products, txns, nil, cfg)

	assert.Equal(t, first, second)
}

func TestCompute_JoinKeyCaseInsensitive(t *testing.T) {
	products := []domain.Product{
		{ID: "p1", SKU: "WID-1", Branch: "A", Cost: 5, StockPhysical: 100},
	}
	txns := []domain.Transaction{
		{ProductID: "  P1 ", Branch: "A", Type: domain.TransactionOut, Quantity: 10, Date: day(0)},
	}

	results := Compute(context.Background(), products, txns, nil, testConfig())

	require.Len(t, results, 1)
	assert.InDelta(t, 10, results[0].AvgDailyUsage, 1e-9)
}

func TestCompute_StockBasisSelectsReading(t *testing.T) {
	products := []domain.Product{
		{ID: "p1", SKU: "WID-1", Branch: "A", Cost: 5, StockPhysical: 100, StockAvailable: 0},
	}
	txns := []domain.Transaction{
		{ProductID: "p1", Branch: "A", Type: domain.TransactionOut, Quantity: 10, Date: day(0)},
	}

	cfg := testConfig()
	cfg.StockBasis = domain.BasisAvailable
	results := Compute(context.Background(), products, txns, nil, cfg)

	require.Len(t, results, 1)
	assert.Zero(t, results[0].CalculatedStock)
	assert.Equal(t, domain.StatusStockout, results[0].Status)
}

func TestCompute_LeadTimeFromPurchaseOrders(t *testing.T) {
	products := []domain.Product{
		{ID: "p1", SKU: "WID-1", Branch: "A", Cost: 5, StockPhysical: 100, DefaultLeadTime: 3},
	}
	orders := []domain.PurchaseOrder{
		{ProductID: "p1", Branch: "A", OrderDate: day(0), ReceiveDate: day(10)},
	}

	results := Compute(context.Background(), products, nil, orders, testConfig())

	require.Len(t, results, 1)
	assert.True(t, results[0].LeadTimeCalculated)
	assert.InDelta(t, 10, results[0].LeadTimeDays, 1e-9)
}

// The replenishment model selector is recorded on every result but must not
// change any computed quantity.
func TestCompute_ModelSelectorDoesNotAlterArithmetic(t *testing.T) {
	products, txns := twoBranchDataset()

	minMaxCfg := testConfig()
	minMaxCfg.ReplenishmentModel = domain.ModelMinMax
	periodicCfg := testConfig()
	periodicCfg.ReplenishmentModel = domain.ModelPeriodicReview

	minMax := Compute(context.Background(), products, txns, nil, minMaxCfg)
	periodic := Compute(context.Background(), products, txns, nil, periodicCfg)

	require.Len(t, periodic, len(minMax))
	for i := range minMax {
		assert.Equal(t, domain.ModelMinMax, minMax[i].ReplenishmentModel)
		assert.Equal(t, domain.ModelPeriodicReview, periodic[i].ReplenishmentModel)

		periodic[i].ReplenishmentModel = domain.ModelMinMax
		assert.Equal(t, minMax[i], periodic[i])
	}
}

func TestCompute_CategoryServiceLevelOverride(t *testing.T) {
	products := []domain.Product{
		{ID: "p1", SKU: "WID-1", Branch: "A", Category: "critical", Cost: 5, StockPhysical: 100},
		{ID: "p2", SKU: "WID-2", Branch: "A", Category: "bulk", Cost: 5, StockPhysical: 100},
		{ID: "p3", SKU: "WID-3", Branch: "A", Cost: 5, StockPhysical: 100, ServiceLevelOverride: 0.5},
	}

	cfg := testConfig()
	cfg.ServiceLevel = 0.9
	cfg.CategoryServiceLevels = map[string]float64{"critical": 0.99}

	results := Compute(context.Background(), products, nil, nil, cfg)
	require.Len(t, results, 3)

	levels := map[string]float64{}
	for _, r := range results {
		levels[r.SKU] = r.ServiceLevel
	}
	assert.InDelta(t, 0.99, levels["WID-1"], 1e-9)
	assert.InDelta(t, 0.9, levels["WID-2"], 1e-9)
	assert.InDelta(t, 0.5, levels["WID-3"], 1e-9)
}
