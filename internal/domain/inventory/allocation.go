package inventory

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotConsumption is one planned decrement against a single lot
type LotConsumption struct {
	ProductID uuid.UUID
	LotID     uuid.UUID
	Quantity  int64
}

// LinePlan is the computed allocation for one order line. Nothing is
// decremented until the whole order's plans are committed.
type LinePlan struct {
	SKU          string
	ProductID    uuid.UUID
	Quantity     int64
	Consumptions []LotConsumption
	// PurchasePrice is the per-unit cost of the first lot consumed
	PurchasePrice decimal.Decimal
}

// Shortfall reports a line that cannot be fully allocated
type Shortfall struct {
	SKU       string
	Needed    int64
	Available int64
}

// SortLotsForAllocation orders positive-quantity lots cheapest first, with
// acquisition date as the tie-break (oldest first). Zero and negative lots
// are excluded.
func SortLotsForAllocation(lots []PurchaseLot) []PurchaseLot {
	eligible := make([]PurchaseLot, 0, len(lots))
	for _, lot := range lots {
		if lot.Quantity > 0 {
			eligible = append(eligible, lot)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		if c := eligible[i].CostOfPrice.Cmp(eligible[j].CostOfPrice); c != 0 {
			return c < 0
		}
		return eligible[i].AcquiredAt.Before(eligible[j].AcquiredAt)
	})
	return eligible
}

// PlanLine greedily consumes the product's lots in cost order until the
// requested quantity is satisfied. On insufficient total quantity it returns
// a Shortfall and no plan; the caller must not commit anything for the order.
func PlanLine(product *Product, quantity int64) (*LinePlan, *Shortfall) {
	sorted := SortLotsForAllocation(product.Lots)

	var available int64
	for _, lot := range sorted {
		available += lot.Quantity
	}
	if available < quantity {
		return nil, &Shortfall{SKU: product.SKU, Needed: quantity, Available: available}
	}

	plan := &LinePlan{
		SKU:       product.SKU,
		ProductID: product.ID,
		Quantity:  quantity,
	}
	remaining := quantity
	for _, lot := range sorted {
		if remaining == 0 {
			break
		}
		take := lot.Quantity
		if take > remaining {
			take = remaining
		}
		if len(plan.Consumptions) == 0 {
			plan.PurchasePrice = lot.CostOfPrice
		}
		plan.Consumptions = append(plan.Consumptions, LotConsumption{
			ProductID: product.ID,
			LotID:     lot.ID,
			Quantity:  take,
		})
		remaining -= take
	}
	return plan, nil
}
