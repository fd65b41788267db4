// internal/repository/postgres/analysis_repository.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/stockwise/internal/domain"
	"github.com/andresuchdata/stockwise/internal/repository"
)

type analysisRepository struct {
	db *DB
}

func NewAnalysisRepository(db *DB) repository.AnalysisRepository {
	return &analysisRepository{db: db}
}

// SaveSnapshot stores one full computation under a new run id and returns it.
func (r *analysisRepository) SaveSnapshot(ctx context.Context, results []domain.AnalysisResult) (int64, error) {
	var runID int64
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		insertRun := `
			INSERT INTO analysis_runs (run_at, item_count)
			VALUES ($1, $2)
			RETURNING id
		`
		if err := tx.QueryRowContext(ctx, insertRun, time.Now(), len(results)).Scan(&runID); err != nil {
			return fmt.Errorf("failed to insert analysis run: %w", err)
		}

		insertResult := `
			INSERT INTO analysis_results (
				run_id, product_id, sku, name, category, branch,
				avg_daily_usage, std_dev_usage, anomaly_count,
				lead_time_days, lead_time_calculated, service_level,
				safety_stock, min_stock, max_stock, eoq,
				stock_physical, stock_available, on_order_qty, calculated_stock,
				status, abc_class,
				suggested_order_qty, suggested_transfer_qty, transfer_source_branch,
				stock_value, order_value, revenue_contribution
			) VALUES (
				$1, $2, $3, $4, $5, $6,
				$7, $8, $9,
				$10, $11, $12,
				$13, $14, $15, $16,
				$17, $18, $19, $20,
				$21, $22,
				$23, $24, $25,
				$26, $27, $28
			)
		`

		stmt, err := tx.PrepareContext(ctx, insertResult)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, result := range results {
			_, err := stmt.ExecContext(
				ctx,
				runID, result.ProductID, result.SKU, result.Name, result.Category, result.Branch,
				result.AvgDailyUsage, result.StdDevUsage, result.AnomalyCount,
				result.LeadTimeDays, result.LeadTimeCalculated, result.ServiceLevel,
				result.SafetyStock, result.MinStock, result.MaxStock, result.EOQ,
				result.StockPhysical, result.StockAvailable, result.OnOrderQty, result.CalculatedStock,
				string(result.Status), string(result.Class),
				result.SuggestedOrderQty, result.SuggestedTransferQty, result.TransferSourceBranch,
				result.StockValue, result.OrderValue, result.RevenueContribution,
			)
			if err != nil {
				return fmt.Errorf("failed to insert analysis result: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}
	return runID, nil
}

// LatestResults returns the rows of the most recent run, in descending
// revenue order.
func (r *analysisRepository) LatestResults(ctx context.Context) ([]domain.AnalysisResult, error) {
	query := `
		SELECT
			product_id, sku, name, category, branch,
			avg_daily_usage, std_dev_usage, anomaly_count,
			lead_time_days, lead_time_calculated, service_level,
			safety_stock, min_stock, max_stock, eoq,
			stock_physical, stock_available, on_order_qty, calculated_stock,
			status, abc_class,
			suggested_order_qty, suggested_transfer_qty, transfer_source_branch,
			stock_value, order_value, revenue_contribution
		FROM analysis_results
		WHERE run_id = (SELECT MAX(id) FROM analysis_runs)
		ORDER BY revenue_contribution DESC, sku ASC
	`

	var rows []resultRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to load latest results: %w", err)
	}

	results := make([]domain.AnalysisResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, row.toDomain())
	}
	return results, nil
}

// ListRuns returns the most recent runs, newest first.
func (r *analysisRepository) ListRuns(ctx context.Context, limit int) ([]repository.AnalysisRun, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}

	query := `
		SELECT id, run_at, item_count
		FROM analysis_runs
		ORDER BY id DESC
		LIMIT $1
	`

	var runs []repository.AnalysisRun
	if err := sqlx.SelectContext(ctx, r.db, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	return runs, nil
}

// resultRow mirrors the analysis_results columns so domain structs stay free
// of db tags.
type resultRow struct {
	ProductID string `db:"product_id"`
	SKU       string `db:"sku"`
	Name      string `db:"name"`
	Category  string `db:"category"`
	Branch    string `db:"branch"`

	AvgDailyUsage float64 `db:"avg_daily_usage"`
	StdDevUsage   float64 `db:"std_dev_usage"`
	AnomalyCount  int     `db:"anomaly_count"`

	LeadTimeDays       float64 `db:"lead_time_days"`
	LeadTimeCalculated bool    `db:"lead_time_calculated"`
	ServiceLevel       float64 `db:"service_level"`

	SafetyStock int `db:"safety_stock"`
	MinStock    int `db:"min_stock"`
	MaxStock    int `db:"max_stock"`
	EOQ         int `db:"eoq"`

	StockPhysical   float64 `db:"stock_physical"`
	StockAvailable  float64 `db:"stock_available"`
	OnOrderQty      float64 `db:"on_order_qty"`
	CalculatedStock float64 `db:"calculated_stock"`

	Status string `db:"status"`
	Class  string `db:"abc_class"`

	SuggestedOrderQty    float64 `db:"suggested_order_qty"`
	SuggestedTransferQty float64 `db:"suggested_transfer_qty"`
	TransferSourceBranch string  `db:"transfer_source_branch"`

	StockValue          float64 `db:"stock_value"`
	OrderValue          float64 `db:"order_value"`
	RevenueContribution float64 `db:"revenue_contribution"`
}

func (row resultRow) toDomain() domain.AnalysisResult {
	return domain.AnalysisResult{
		ProductID:            row.ProductID,
		SKU:                  row.SKU,
		Name:                 row.Name,
		Category:             row.Category,
		Branch:               row.Branch,
		AvgDailyUsage:        row.AvgDailyUsage,
		StdDevUsage:          row.StdDevUsage,
		AnomalyCount:         row.AnomalyCount,
		LeadTimeDays:         row.LeadTimeDays,
		LeadTimeCalculated:   row.LeadTimeCalculated,
		ServiceLevel:         row.ServiceLevel,
		SafetyStock:          row.SafetyStock,
		MinStock:             row.MinStock,
		MaxStock:             row.MaxStock,
		EOQ:                  row.EOQ,
		StockPhysical:        row.StockPhysical,
		StockAvailable:       row.StockAvailable,
		OnOrderQty:           row.OnOrderQty,
		CalculatedStock:      row.CalculatedStock,
		Status:               domain.StockStatus(row.Status),
		Class:                domain.ABCClass(row.Class),
		SuggestedOrderQty:    row.SuggestedOrderQty,
		SuggestedTransferQty: row.SuggestedTransferQty,
		TransferSourceBranch: row.TransferSourceBranch,
		StockValue:           row.StockValue,
		OrderValue:           row.OrderValue,
		RevenueContribution:  row.RevenueContribution,
	}
}
