// internal/ingest/csv.go
//
// Package ingest parses the three CSV inputs into the typed records the
// engine requires. Column mapping is header-based and tolerant: numeric
// fields fall back to zero and unparsable dates are left as zero times, which
// the engine excludes from the relevant calculations.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/stockwise/internal/domain"
)

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2/1/2006",
	"20060102",
}

// LoadProducts reads the product catalog from a CSV file.
func LoadProducts(path string) ([]domain.Product, error) {
	return loadFile(path, ReadProducts)
}

// LoadTransactions reads the stock movement history from a CSV file.
func LoadTransactions(path string) ([]domain.Transaction, error) {
	return loadFile(path, ReadTransactions)
}

// LoadPurchaseOrders reads the purchase-order history from a CSV file.
func LoadPurchaseOrders(path string) ([]domain.PurchaseOrder, error) {
	return loadFile(path, ReadPurchaseOrders)
}

func loadFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	records, err := read(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}

// ReadProducts parses product rows from r.
func ReadProducts(r io.Reader) ([]domain.Product, error) {
	rows, err := newRowReader(r)
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	skipped := 0
	for {
		row, err := rows.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		id := row.str("id", "product_id")
		if id == "" {
			skipped++
			continue
		}

		products = append(products, domain.Product{
			ID:                    id,
			SKU:                   row.str("sku"),
			Name:                  row.str("name", "product_name"),
			Category:              row.str("category"),
			Branch:                row.str("branch", "store", "warehouse"),
			Cost:                  row.float("cost", "unit_cost"),
			DefaultLeadTime:       row.float("lead_time", "lead_time_days", "default_lead_time"),
			StockPhysical:         row.float("stock_physical", "physical_stock", "stock"),
			StockAvailable:        row.float("stock_available", "available_stock"),
			OnOrderQty:            row.float("on_order", "on_order_qty"),
			CurrentMinStock:       row.float("min_stock"),
			CurrentMaxStock:       row.float("max_stock"),
			ServiceLevelOverride:  row.float("service_level_override", "service_level"),
			AvgDailyUsageOverride: row.float("avg_daily_usage_override", "manual_avg_usage"),
		})
	}

	if skipped > 0 {
		log.Warn().Int("rows", skipped).Msg("ingest: skipped product rows without id")
	}
	return products, nil
}

// ReadTransactions parses movement rows from r. Rows with an unknown
// direction are skipped; rows with unparsable dates are kept with a zero
// date so the engine can exclude them from span calculations.
func ReadTransactions(r io.Reader) ([]domain.Transaction, error) {
	rows, err := newRowReader(r)
	if err != nil {
		return nil, err
	}

	var txns []domain.Transaction
	skipped := 0
	for {
		row, err := rows.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		id := row.str("product_id", "id")
		txnType, ok := parseTransactionType(row.str("type", "direction"))
		if id == "" || !ok {
			skipped++
			continue
		}

		txns = append(txns, domain.Transaction{
			ProductID: id,
			Branch:    row.str("branch", "store", "warehouse"),
			Type:      txnType,
			Quantity:  row.float("quantity", "qty"),
			Date:      row.date("date", "transaction_date"),
		})
	}

	if skipped > 0 {
		log.Warn().Int("rows", skipped).Msg("ingest: skipped transaction rows without id or direction")
	}
	return txns, nil
}

// ReadPurchaseOrders parses purchase-order rows from r.
func ReadPurchaseOrders(r io.Reader) ([]domain.PurchaseOrder, error) {
	rows, err := newRowReader(r)
	if err != nil {
		return nil, err
	}

	var orders []domain.PurchaseOrder
	skipped := 0
	for {
		row, err := rows.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		id := row.str("product_id", "id")
		if id == "" {
			skipped++
			continue
		}

		orders = append(orders, domain.PurchaseOrder{
			ProductID:   id,
			Branch:      row.str("branch", "store", "warehouse"),
			Quantity:    row.float("quantity", "qty"),
			OrderDate:   row.date("order_date", "ordered_at"),
			ReceiveDate: row.date("receive_date", "received_at"),
		})
	}

	if skipped > 0 {
		log.Warn().Int("rows", skipped).Msg("ingest: skipped purchase order rows without id")
	}
	return orders, nil
}

type rowReader struct {
	reader *csv.Reader
	colMap map[string]int
}

type row struct {
	fields []string
	colMap map[string]int
}

func newRowReader(r io.Reader) (*rowReader, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colMap := make(map[string]int, len(header))
	for i, col := range header {
		colMap[normalizeHeader(col)] = i
	}

	return &rowReader{reader: reader, colMap: colMap}, nil
}

func (rr *rowReader) next() (row, error) {
	fields, err := rr.reader.Read()
	if err != nil {
		return row{}, err
	}
	return row{fields: fields, colMap: rr.colMap}, nil
}

// str returns the first non-empty value among the given column aliases.
func (r row) str(names ...string) string {
	for _, name := range names {
		idx, ok := r.colMap[name]
		if !ok || idx >= len(r.fields) {
			continue
		}
		if v := strings.TrimSpace(r.fields[idx]); v != "" {
			return v
		}
	}
	return ""
}

func (r row) float(names ...string) float64 {
	raw := r.str(names...)
	if raw == "" {
		return 0
	}
	raw = strings.ReplaceAll(raw, ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func (r row) date(names ...string) time.Time {
	raw := r.str(names...)
	if raw == "" {
		return time.Time{}
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func normalizeHeader(col string) string {
	col = strings.ToLower(strings.TrimSpace(col))
	col = strings.ReplaceAll(col, " ", "_")
	col = strings.ReplaceAll(col, "-", "_")
	return col
}

func parseTransactionType(raw string) (domain.TransactionType, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "IN", "RECEIPT", "PURCHASE":
		return domain.TransactionIn, true
	case "OUT", "ISSUE", "SALE":
		return domain.TransactionOut, true
	}
	return "", false
}
