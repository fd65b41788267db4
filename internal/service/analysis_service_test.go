package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/stockwise/internal/domain"
	"github.com/andresuchdata/stockwise/internal/repository"
)

// stubAnalysisRepository records snapshot writes and serves canned reads.
type stubAnalysisRepository struct {
	saved     [][]domain.AnalysisResult
	runs      []repository.AnalysisRun
	latest    []domain.AnalysisResult
	lastLimit int
}

func (r *stubAnalysisRepository) SaveSnapshot(ctx context.Context, results []domain.AnalysisResult) (int64, error) {
	r.saved = append(r.saved, results)
	return int64(len(r.saved)), nil
}

func (r *stubAnalysisRepository) LatestResults(ctx context.Context) ([]domain.AnalysisResult, error) {
	return r.latest, nil
}

func (r *stubAnalysisRepository) ListRuns(ctx context.Context, limit int) ([]repository.AnalysisRun, error) {
	r.lastLimit = limit
	return r.runs, nil
}

func newTestService() *AnalysisService {
	return NewAnalysisService(domain.DefaultServiceLevelConfig(), nil, nil)
}

func loadedDataset() domain.Dataset {
	products := []domain.Product{
		{ID: "p1", SKU: "WID-1", Branch: "A", Cost: 20, StockPhysical: 10},
		{ID: "p2", SKU: "WID-2", Branch: "B", Cost: 5, StockPhysical: 200},
	}
	var txns []domain.Transaction
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		txns = append(txns, domain.Transaction{
			ProductID: "p1", Branch: "A", Type: domain.TransactionOut, Quantity: 10,
			Date: base.AddDate(0, 0, i),
		})
	}
	return domain.Dataset{Products: products, Transactions: txns}
}

func TestAnalysisService_RecomputeProducesResults(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	svc.LoadDataset(ctx, loadedDataset())
	require.NoError(t, svc.Recompute(ctx))

	results, total, err := svc.Results(ctx, domain.ResultFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, results, 2)
}

func TestAnalysisService_LoadDatasetClearsResults(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	svc.LoadDataset(ctx, loadedDataset())
	require.NoError(t, svc.Recompute(ctx))

	svc.LoadDataset(ctx, domain.Dataset{})

	results, total, err := svc.Results(ctx, domain.ResultFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, results)
}

func TestAnalysisService_ResultsFilterByStatusAndBranch(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	svc.LoadDataset(ctx, loadedDataset())
	require.NoError(t, svc.Recompute(ctx))

	byBranch, total, err := svc.Results(ctx, domain.ResultFilter{Branches: []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, byBranch, 1)
	assert.Equal(t, "A", byBranch[0].Branch)

	none, total, err := svc.Results(ctx, domain.ResultFilter{Statuses: []domain.StockStatus{domain.StatusDead}})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)
}

func TestAnalysisService_ResultsPagination(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	svc.LoadDataset(ctx, loadedDataset())
	require.NoError(t, svc.Recompute(ctx))

	page1, total, err := svc.Results(ctx, domain.ResultFilter{Page: 1, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, page1, 1)

	page2, _, err := svc.Results(ctx, domain.ResultFilter{Page: 2, PageSize: 1})
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.NotEqual(t, page1[0].ProductID, page2[0].ProductID)

	page3, _, err := svc.Results(ctx, domain.ResultFilter{Page: 3, PageSize: 1})
	require.NoError(t, err)
	assert.Empty(t, page3)
}

func TestAnalysisService_SummaryCoversAllStatuses(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	svc.LoadDataset(ctx, loadedDataset())
	require.NoError(t, svc.Recompute(ctx))

	summaries, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, len(domain.AllStockStatuses))

	totalCount := 0
	for _, s := range summaries {
		totalCount += s.Count
	}
	assert.Equal(t, 2, totalCount)
}

func TestAnalysisService_RecomputePersistsSnapshot(t *testing.T) {
	repo := &stubAnalysisRepository{}
	svc := NewAnalysisService(domain.DefaultServiceLevelConfig(), nil, repo)
	ctx := context.Background()

	svc.LoadDataset(ctx, loadedDataset())
	require.NoError(t, svc.Recompute(ctx))

	require.Len(t, repo.saved, 1)
	assert.Len(t, repo.saved[0], 2)
}

func TestAnalysisService_RunsDelegatesToRepository(t *testing.T) {
	repo := &stubAnalysisRepository{
		runs: []repository.AnalysisRun{{ID: 7, ItemCount: 2}},
	}
	svc := NewAnalysisService(domain.DefaultServiceLevelConfig(), nil, repo)

	runs, err := svc.Runs(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, int64(7), runs[0].ID)
	assert.Equal(t, 5, repo.lastLimit)
}

func TestAnalysisService_LatestSnapshotDelegatesToRepository(t *testing.T) {
	repo := &stubAnalysisRepository{
		latest: []domain.AnalysisResult{{ProductID: "p1", SKU: "WID-1"}},
	}
	svc := NewAnalysisService(domain.DefaultServiceLevelConfig(), nil, repo)

	results, err := svc.LatestSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "WID-1", results[0].SKU)
}

func TestAnalysisService_SnapshotQueriesWithoutStore(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Runs(ctx, 10)
	assert.ErrorIs(t, err, ErrNoSnapshotStore)

	_, err = svc.LatestSnapshot(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshotStore)
}

func TestAnalysisService_SummaryEmptyBeforeRecompute(t *testing.T) {
	svc := newTestService()

	summaries, err := svc.Summary(context.Background())
	require.NoError(t, err)
	for _, s := range summaries {
		assert.Zero(t, s.Count)
	}
}
