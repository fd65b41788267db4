// internal/export/csv.go
//
// Package export writes analysis results as CSV for spreadsheets and for
// upload to object storage.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/andresuchdata/stockwise/internal/domain"
)

var resultHeader = []string{
	"product_id", "sku", "name", "category", "branch",
	"avg_daily_usage", "std_dev_usage", "anomaly_count",
	"lead_time_days", "lead_time_calculated", "service_level",
	"safety_stock", "min_stock", "max_stock", "eoq",
	"stock_physical", "stock_available", "on_order_qty", "calculated_stock",
	"status", "abc_class",
	"suggested_order_qty", "suggested_transfer_qty", "transfer_source_branch",
	"stock_value", "order_value", "revenue_contribution",
}

// WriteResults streams results as CSV to w, in the order given.
func WriteResults(w io.Writer, results []domain.AnalysisResult) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(resultHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range results {
		record := []string{
			r.ProductID, r.SKU, r.Name, r.Category, r.Branch,
			formatFloat(r.AvgDailyUsage), formatFloat(r.StdDevUsage), strconv.Itoa(r.AnomalyCount),
			formatFloat(r.LeadTimeDays), strconv.FormatBool(r.LeadTimeCalculated), formatFloat(r.ServiceLevel),
			strconv.Itoa(r.SafetyStock), strconv.Itoa(r.MinStock), strconv.Itoa(r.MaxStock), strconv.Itoa(r.EOQ),
			formatFloat(r.StockPhysical), formatFloat(r.StockAvailable), formatFloat(r.OnOrderQty), formatFloat(r.CalculatedStock),
			string(r.Status), string(r.Class),
			formatFloat(r.SuggestedOrderQty), formatFloat(r.SuggestedTransferQty), r.TransferSourceBranch,
			formatFloat(r.StockValue), formatFloat(r.OrderValue), formatFloat(r.RevenueContribution),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ResultsCSV renders results into an in-memory CSV buffer, ready for upload.
func ResultsCSV(results []domain.AnalysisResult) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := WriteResults(&buf, results); err != nil {
		return nil, err
	}
	return &buf, nil
}

// SaveResults writes results to a CSV file at path.
func SaveResults(path string, results []domain.AnalysisResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := WriteResults(file, results); err != nil {
		return err
	}
	return file.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
