package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/stockwise/internal/domain"
	"github.com/andresuchdata/stockwise/internal/repository"
	"github.com/andresuchdata/stockwise/internal/service"
)

type stubAnalysisRepository struct {
	runs   []repository.AnalysisRun
	latest []domain.AnalysisResult
}

func (r *stubAnalysisRepository) SaveSnapshot(ctx context.Context, results []domain.AnalysisResult) (int64, error) {
	return 1, nil
}

func (r *stubAnalysisRepository) LatestResults(ctx context.Context) ([]domain.AnalysisResult, error) {
	return r.latest, nil
}

func (r *stubAnalysisRepository) ListRuns(ctx context.Context, limit int) ([]repository.AnalysisRun, error) {
	return r.runs, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	return newTestRouterWithRepo(t, nil)
}

func newTestRouterWithRepo(t *testing.T, repo repository.AnalysisRepository) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewAnalysisService(domain.DefaultServiceLevelConfig(), nil, repo)

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

	ctx := context.Background()
	svc.LoadDataset(ctx, domain.Dataset{Products: products, Transactions: txns})
	require.NoError(t, svc.Recompute(ctx))

	return NewRouter(&Services{AnalysisService: svc}, nil)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetResults(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/results", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data  []domain.AnalysisResult `json:"data"`
		Total int                     `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	assert.Len(t, body.Data, 2)
}

func TestGetResults_FilterByBranch(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/results?branch=A", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []domain.AnalysisResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "A", body.Data[0].Branch)
}

func TestGetSummary(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/summary", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []domain.StatusSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, len(domain.AllStockStatuses))
}

func TestRecompute(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/recompute", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetRuns(t *testing.T) {
	repo := &stubAnalysisRepository{
		runs: []repository.AnalysisRun{{ID: 3, ItemCount: 2}},
	}
	router := newTestRouterWithRepo(t, repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/runs", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []repository.AnalysisRun `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, int64(3), body.Data[0].ID)
}

func TestGetRuns_NoStoreConfigured(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/runs", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetLatestSnapshot(t *testing.T) {
	repo := &stubAnalysisRepository{
		latest: []domain.AnalysisResult{{ProductID: "p1", SKU: "WID-1"}},
	}
	router := newTestRouterWithRepo(t, repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/runs/latest", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []domain.AnalysisResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "WID-1", body.Data[0].SKU)
}

func TestGetLatestSnapshot_NoStoreConfigured(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/runs/latest", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetConfig(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/config", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data domain.ServiceLevelConfig `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.InDelta(t, 0.95, body.Data.ServiceLevel, 1e-9)
}
