package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/stockwise/internal/domain"
	"github.com/andresuchdata/stockwise/internal/ingest"
	"github.com/andresuchdata/stockwise/internal/service"
)

type AnalysisHandler struct {
	service *service.AnalysisService
}

func NewAnalysisHandler(service *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

func (h *AnalysisHandler) parseFilter(c *gin.Context) domain.ResultFilter {
	filter := domain.ResultFilter{
		Page:     1,
		PageSize: 50,
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		filter.Page = page
	}

	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "50")); err == nil && size > 0 {
		filter.PageSize = size
	}

	for _, raw := range splitQueryList(c.Query("status")) {
		if status, ok := domain.ParseStockStatus(raw); ok {
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	for _, raw := range splitQueryList(c.Query("abc_class")) {
		if class, ok := domain.ParseABCClass(raw); ok {
			filter.Classes = append(filter.Classes, class)
		}
	}

	filter.Branches = splitQueryList(c.Query("branch"))

	return filter
}

// GetResults serves one page of the latest computation.
func (h *AnalysisHandler) GetResults(c *gin.Context) {
	filter := h.parseFilter(c)

	results, total, err := h.service.Results(c.Request.Context(), filter)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load results")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      results,
		"total":     total,
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})
}

// GetSummary serves the per-status counts of the latest computation.
func (h *AnalysisHandler) GetSummary(c *gin.Context) {
	summaries, err := h.service.Summary(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load summary")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summaries})
}

// Recompute re-runs the computation over the loaded dataset.
func (h *AnalysisHandler) Recompute(c *gin.Context) {
	if err := h.service.Recompute(c.Request.Context()); err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, "computation failed")
		return
	}

	products, transactions, purchaseOrders, _ := h.service.DatasetInfo()
	c.JSON(http.StatusOK, gin.H{
		"message":         "recomputed",
		"products":        products,
		"transactions":    transactions,
		"purchase_orders": purchaseOrders,
	})
}

// Upload accepts the three CSV inputs as multipart files, replaces the
// dataset, and recomputes. The purchase_orders file is optional.
func (h *AnalysisHandler) Upload(c *gin.Context) {
	products, err := readUpload(c, "products", ingest.ReadProducts)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid products file")
		return
	}
	if len(products) == 0 {
		errorResponse(c, http.StatusBadRequest, "products file is required")
		return
	}

	transactions, err := readUpload(c, "transactions", ingest.ReadTransactions)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid transactions file")
		return
	}

	purchaseOrders, err := readUpload(c, "purchase_orders", ingest.ReadPurchaseOrders)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid purchase orders file")
		return
	}

	ctx := c.Request.Context()
	h.service.LoadDataset(ctx, domain.Dataset{
		Products:       products,
		Transactions:   transactions,
		PurchaseOrders: purchaseOrders,
	})

	if err := h.service.Recompute(ctx); err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, "computation failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "dataset loaded",
		"products":        len(products),
		"transactions":    len(transactions),
		"purchase_orders": len(purchaseOrders),
	})
}

// GetRuns lists persisted snapshot runs, newest first.
func (h *AnalysisHandler) GetRuns(c *gin.Context) {
	limit := 20
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && v > 0 {
		limit = v
	}

	runs, err := h.service.Runs(c.Request.Context(), limit)
	if errors.Is(err, service.ErrNoSnapshotStore) {
		errorResponse(c, http.StatusServiceUnavailable, "snapshot persistence is not configured")
		return
	}
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to list runs")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": runs})
}

// GetLatestSnapshot serves the persisted results of the most recent run.
func (h *AnalysisHandler) GetLatestSnapshot(c *gin.Context) {
	results, err := h.service.LatestSnapshot(c.Request.Context())
	if errors.Is(err, service.ErrNoSnapshotStore) {
		errorResponse(c, http.StatusServiceUnavailable, "snapshot persistence is not configured")
		return
	}
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load latest snapshot")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": results})
}

// GetConfig exposes the computation settings in effect.
func (h *AnalysisHandler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.service.Config()})
}

func readUpload[T any](c *gin.Context, field string, read func(r io.Reader) ([]T, error)) ([]T, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		// Missing file is fine for optional inputs.
		return nil, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := read(file)
	if err != nil {
		log.Warn().Err(err).Str("field", field).Msg("upload parse failed")
		return nil, err
	}
	return records, nil
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}

func splitQueryList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
