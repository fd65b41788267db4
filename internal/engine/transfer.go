// internal/engine/transfer.go
package engine

import (
	"math"

	"github.com/andresuchdata/stockwise/internal/domain"
)

// matchTransfers greedily pairs shortage items with excess stock of the same
// SKU at another branch, before any new purchase is recommended.
//
// For each LOW or STOCKOUT item the pass-1 list is scanned in its original
// order for the first item with the same SKU, a different branch, status HIGH
// and stock above its max. The transfer covers min(needed, donor excess) and
// reduces the recipient's suggested order quantity, floored at zero.
//
// Only the first matching donor is used and a donor's excess is not
// decremented as recipients claim it, so two shortages can be pointed at the
// same surplus. That mirrors the established behavior; see DESIGN.md for the
// depletion question.
func matchTransfers(results []domain.AnalysisResult) {
	for i := range results {
		r := &results[i]
		if r.Status != domain.StatusLow && r.Status != domain.StatusStockout {
			continue
		}

		needed := float64(r.MaxStock) - r.CalculatedStock

		for j := range results {
			if j == i {
				continue
			}
			donor := &results[j]
			if donor.SKU != r.SKU || donor.Branch == r.Branch {
				continue
			}
			if donor.Status != domain.StatusHigh || donor.CalculatedStock <= float64(donor.MaxStock) {
				continue
			}

			donorExcess := donor.CalculatedStock - float64(donor.MaxStock)
			transferQty := math.Min(needed, donorExcess)
			if transferQty > 0 {
				r.SuggestedTransferQty = transferQty
				r.TransferSourceBranch = donor.Branch
				r.SuggestedOrderQty = math.Max(0, r.SuggestedOrderQty-transferQty)
			}
			break
		}
	}
}
