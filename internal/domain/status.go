package domain

import "strings"

// StockStatus is the per-item health classification. It is re-derived from
// current inputs on every computation; no transitions are persisted.
type StockStatus string

const (
	StatusOK       StockStatus = "OK"
	StatusLow      StockStatus = "LOW"
	StatusHigh     StockStatus = "HIGH"
	StatusStockout StockStatus = "STOCKOUT"
	StatusInactive StockStatus = "INACTIVE"
	StatusDead     StockStatus = "DEAD"
)

// AllStockStatuses lists every status in summary display order.
var AllStockStatuses = []StockStatus{
	StatusOK,
	StatusLow,
	StatusHigh,
	StatusStockout,
	StatusInactive,
	StatusDead,
}

// ParseStockStatus returns the status for a label (case-insensitive).
func ParseStockStatus(label string) (StockStatus, bool) {
	s := StockStatus(strings.ToUpper(strings.TrimSpace(label)))
	for _, known := range AllStockStatuses {
		if s == known {
			return s, true
		}
	}
	return "", false
}

// ABCClass is the revenue-contribution tier assigned by the global ranking
// pass: A covers the top ~80% of cumulative revenue, B the next ~15%, C the
// remainder.
type ABCClass string

const (
	ClassA ABCClass = "A"
	ClassB ABCClass = "B"
	ClassC ABCClass = "C"
)

// ParseABCClass returns the class for a label (case-insensitive).
func ParseABCClass(label string) (ABCClass, bool) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "A":
		return ClassA, true
	case "B":
		return ClassB, true
	case "C":
		return ClassC, true
	}
	return "", false
}
