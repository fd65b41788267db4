package domain

import "strings"

// StockBasis selects which stock reading drives classification and targets.
type StockBasis string

const (
	BasisPhysical  StockBasis = "physical"
	BasisAvailable StockBasis = "available"
)

// SafetyStockStrategy selects how the safety-stock quantity is derived.
type SafetyStockStrategy string

const (
	// StrategyStatistical converts the target service level into a z-score
	// and scales demand deviation by the square root of lead time.
	StrategyStatistical SafetyStockStrategy = "STATISTICAL"
	// StrategyWeeksOfCover holds a manual number of weeks of average usage.
	StrategyWeeksOfCover SafetyStockStrategy = "WEEKS_OF_COVER"
)

// LeadTimeMode selects how purchase-order samples collapse into one value.
type LeadTimeMode string

const (
	LeadTimeAverage LeadTimeMode = "AVERAGE"
	LeadTimeMax     LeadTimeMode = "MAX"
)

// ReplenishmentModel is recorded on every result for display. All models
// currently share the min/max arithmetic; the selector does not alter it.
type ReplenishmentModel string

const (
	ModelMinMax         ReplenishmentModel = "MIN_MAX"
	ModelPeriodicReview ReplenishmentModel = "PERIODIC_REVIEW"
	ModelFixedDays      ReplenishmentModel = "FIXED_DAYS"
)

// ServiceLevelConfig is the process-wide computation configuration. It is
// immutable for the duration of one computation and threaded explicitly
// through every step; there is no ambient config.
type ServiceLevelConfig struct {
	// ServiceLevel is the global target probability (0-1) of not stocking
	// out during lead time.
	ServiceLevel float64 `json:"service_level"`
	// CategoryServiceLevels overrides the global level per category.
	CategoryServiceLevels map[string]float64 `json:"category_service_levels,omitempty"`

	StockBasis StockBasis `json:"stock_basis"`

	// OutlierThreshold is the sigma multiplier beyond which a daily usage
	// observation is trimmed. Zero disables trimming.
	OutlierThreshold float64 `json:"outlier_threshold"`

	OrderCycleDays int `json:"order_cycle_days"`

	Strategy           SafetyStockStrategy `json:"safety_stock_strategy"`
	WeeksOfSafetyStock float64             `json:"weeks_of_safety_stock"`

	LeadTimeMode LeadTimeMode `json:"lead_time_mode"`

	// GrowthFactor scales the estimated average daily usage. 1.0 is neutral.
	GrowthFactor float64 `json:"growth_factor"`

	// RebalancingBias is declared for forward compatibility with transfer
	// scoring; the current matcher does not consume it.
	RebalancingBias float64 `json:"rebalancing_bias"`

	ReplenishmentModel ReplenishmentModel `json:"replenishment_model"`

	OrderPlacementCost   float64 `json:"order_placement_cost"`
	HoldingCostAnnualPct float64 `json:"holding_cost_annual_pct"`
}

// DefaultServiceLevelConfig returns the configuration used when the caller
// provides nothing more specific.
func DefaultServiceLevelConfig() ServiceLevelConfig {
	return ServiceLevelConfig{
		ServiceLevel:         0.95,
		StockBasis:           BasisPhysical,
		OutlierThreshold:     3,
		OrderCycleDays:       14,
		Strategy:             StrategyStatistical,
		WeeksOfSafetyStock:   2,
		LeadTimeMode:         LeadTimeAverage,
		GrowthFactor:         1.0,
		ReplenishmentModel:   ModelMinMax,
		OrderPlacementCost:   50,
		HoldingCostAnnualPct: 0.20,
	}
}

// ServiceLevelFor resolves the target service level for a product: the
// per-product override wins, then the category override, then the global
// level.
func (c ServiceLevelConfig) ServiceLevelFor(p Product) float64 {
	if p.ServiceLevelOverride > 0 {
		return p.ServiceLevelOverride
	}
	if len(c.CategoryServiceLevels) > 0 {
		if level, ok := c.CategoryServiceLevels[strings.TrimSpace(p.Category)]; ok && level > 0 {
			return level
		}
	}
	return c.ServiceLevel
}

// EffectiveStock returns the stock reading selected by the configured basis.
func (c ServiceLevelConfig) EffectiveStock(p Product) float64 {
	if c.StockBasis == BasisAvailable {
		return p.StockAvailable
	}
	return p.StockPhysical
}
