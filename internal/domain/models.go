// internal/domain/models.go
package domain

import "time"

// TransactionType marks the direction of a stock movement. Quantities are
// always non-negative; direction is carried by the type, not the sign.
type TransactionType string

const (
	TransactionIn  TransactionType = "IN"
	TransactionOut TransactionType = "OUT"
)

// Product is one (SKU, branch) row of the input catalog. ID is the join key
// for transactions and purchase orders, matched case-insensitively and
// trimmed.
type Product struct {
	ID       string `json:"id"`
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Branch   string `json:"branch"`

	Cost            float64 `json:"cost"`
	DefaultLeadTime float64 `json:"default_lead_time"` // days; <=0 means unset

	StockPhysical  float64 `json:"stock_physical"`
	StockAvailable float64 `json:"stock_available"`
	OnOrderQty     float64 `json:"on_order_qty"`

	CurrentMinStock float64 `json:"current_min_stock"`
	CurrentMaxStock float64 `json:"current_max_stock"`

	// Optional per-product overrides. Zero means "not set".
	ServiceLevelOverride  float64 `json:"service_level_override"`
	AvgDailyUsageOverride float64 `json:"avg_daily_usage_override"`
}

// Transaction is a dated stock movement for a product at a branch.
// A zero Date means the source row carried no parsable date; such rows are
// excluded from demand statistics.
type Transaction struct {
	ProductID string          `json:"product_id"`
	Branch    string          `json:"branch"`
	Type      TransactionType `json:"type"`
	Quantity  float64         `json:"quantity"`
	Date      time.Time       `json:"date"`
}

// PurchaseOrder carries the order/receive date pair used for lead-time
// inference. Zero dates mean the value was missing or unparsable.
type PurchaseOrder struct {
	ProductID   string    `json:"product_id"`
	Branch      string    `json:"branch"`
	Quantity    float64   `json:"quantity"`
	OrderDate   time.Time `json:"order_date"`
	ReceiveDate time.Time `json:"receive_date"`
}

// MonthlyUsage is one point of the per-item monthly OUT trend, for
// display/reporting only.
type MonthlyUsage struct {
	Month    string  `json:"month"` // "2006-01"
	Quantity float64 `json:"quantity"`
}

// AnalysisResult is the per-(SKU, branch) output record of one computation.
// It is produced fresh on every run and has no independent lifecycle.
type AnalysisResult struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Branch    string `json:"branch"`

	Cost float64 `json:"cost"`

	AvgDailyUsage float64        `json:"avg_daily_usage"`
	StdDevUsage   float64        `json:"std_dev_usage"`
	AnomalyCount  int            `json:"anomaly_count"`
	MonthlyUsage  []MonthlyUsage `json:"monthly_usage,omitempty"`

	LeadTimeDays       float64 `json:"lead_time_days"`
	LeadTimeCalculated bool    `json:"lead_time_calculated"`

	ServiceLevel float64 `json:"service_level"`
	SafetyStock  int     `json:"safety_stock"`
	MinStock     int     `json:"min_stock"`
	MaxStock     int     `json:"max_stock"`
	EOQ          int     `json:"eoq"`

	// ReplenishmentModel is recorded for display; every model currently uses
	// the same min/max arithmetic.
	ReplenishmentModel ReplenishmentModel `json:"replenishment_model"`

	StockPhysical  float64 `json:"stock_physical"`
	StockAvailable float64 `json:"stock_available"`
	OnOrderQty     float64 `json:"on_order_qty"`
	// CalculatedStock is the effective stock selected by the configured
	// stock basis; all classification and target math uses it.
	CalculatedStock float64 `json:"calculated_stock"`

	Status StockStatus `json:"status"`
	Class  ABCClass    `json:"abc_class"`

	SuggestedOrderQty    float64 `json:"suggested_order_qty"`
	SuggestedTransferQty float64 `json:"suggested_transfer_qty"`
	TransferSourceBranch string  `json:"transfer_source_branch,omitempty"`

	StockValue          float64 `json:"stock_value"`
	OrderValue          float64 `json:"order_value"`
	RevenueContribution float64 `json:"revenue_contribution"`
}

// StatusSummary counts results per stock status for dashboard views.
type StatusSummary struct {
	Status StockStatus `json:"status"`
	Count  int         `json:"count"`
}

// ResultFilter narrows the result list served by the API.
type ResultFilter struct {
	Statuses []StockStatus `json:"statuses"`
	Branches []string      `json:"branches"`
	Classes  []ABCClass    `json:"classes"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// Dataset bundles the three typed inputs of one computation.
type Dataset struct {
	Products       []Product
	Transactions   []Transaction
	PurchaseOrders []PurchaseOrder
	LoadedAt       time.Time
}
