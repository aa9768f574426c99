package allocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/domain/inventory"
	"github.com/sellerhub/backend/internal/domain/marketplace"
	"github.com/sellerhub/backend/internal/domain/order"
)

// Classification reasons attached to non-created outcomes
const (
	reasonDuplicate     = "order already exists"
	reasonInsertFailed  = "database insertion failed"
	reasonProductLookup = "product lookup failed"
)

// Engine transforms a batch of raw marketplace orders for one store into
// created orders plus skipped/failed/stock-alert classifications.
//
// Per-order errors are contained and classified, never propagated, so one
// bad order cannot abort a batch. The only side effects are the committed
// lot decrements and the bulk order insert.
type Engine struct {
	products inventory.ProductRepository
	orders   order.Repository
	logger   *zap.Logger
}

// NewEngine creates a new allocation engine
func NewEngine(products inventory.ProductRepository, orders order.Repository, logger *zap.Logger) *Engine {
	return &Engine{
		products: products,
		orders:   orders,
		logger:   logger,
	}
}

// stagedOrder pairs a fully planned order with its source raw order
type stagedOrder struct {
	raw   *marketplace.RawOrder
	order order.Order
	plans []inventory.LinePlan
}

// Process runs the allocation algorithm over the batch in input order and
// returns the per-order classification. Orders are all-or-nothing: no lot is
// decremented unless every line of the order is fully allocatable, and a
// commit-time conflict reverts the order's already-applied decrements.
func (e *Engine) Process(ctx context.Context, batch []marketplace.RawOrder) (*order.BatchResult, error) {
	result := &order.BatchResult{StartedAt: time.Now()}
	staged := make([]stagedOrder, 0, len(batch))

	for i := range batch {
		raw := &batch[i]

		exists, err := e.orders.ExistsByExternalID(ctx, raw.ExternalOrderID)
		if err != nil {
			e.logger.Error("dedup check failed",
				zap.String("external_order_id", raw.ExternalOrderID),
				zap.Error(err),
			)
			result.Outcomes = append(result.Outcomes, order.Failed(raw, fmt.Sprintf("dedup check failed: %v", err)))
			continue
		}
		if exists {
			result.Outcomes = append(result.Outcomes, order.Skipped(raw, reasonDuplicate))
			continue
		}

		st, outcome := e.planOrder(ctx, raw)
		if outcome != nil {
			result.Outcomes = append(result.Outcomes, *outcome)
			continue
		}

		if conflict := e.commitPlans(ctx, st); conflict != nil {
			result.Outcomes = append(result.Outcomes, *conflict)
			continue
		}
		staged = append(staged, *st)
	}

	e.insertStaged(ctx, staged, result)
	result.FinishedAt = time.Now()
	return result, nil
}

// planOrder computes the full allocation plan for one raw order without
// touching any lot. A non-nil outcome means the order is excluded.
func (e *Engine) planOrder(ctx context.Context, raw *marketplace.RawOrder) (*stagedOrder, *order.Outcome) {
	st := &stagedOrder{
		raw: raw,
		order: order.Order{
			ID:              uuid.New(),
			StoreID:         raw.StoreID,
			ExternalOrderID: raw.ExternalOrderID,
			Channel:         raw.Channel,
			CustomerName:    raw.Shipping.CustomerName(),
			Address:         raw.Shipping.AddressText(),
			Status:          raw.LatestStatus(),
			PurchasedAt:     raw.PurchasedAt,
		},
	}

	for _, line := range raw.Lines {
		product, err := e.products.FindBySKU(ctx, line.SKU)
		if err != nil {
			if errors.Is(err, inventory.ErrProductNotFound) {
				out := order.Failed(raw, fmt.Sprintf("product not found: %s", line.SKU))
				return nil, &out
			}
			out := order.Failed(raw, fmt.Sprintf("%s: %s: %v", reasonProductLookup, line.SKU, err))
			return nil, &out
		}

		plan, shortfall := inventory.PlanLine(product, line.Quantity)
		if shortfall != nil {
			out := order.StockAlert(raw, shortfall.SKU, shortfall.Needed, shortfall.Available)
			return nil, &out
		}

		st.plans = append(st.plans, *plan)
		st.order.Lines = append(st.order.Lines, order.Line{
			ProductID:     plan.ProductID,
			SKU:           line.SKU,
			Quantity:      line.Quantity,
			PurchasePrice: plan.PurchasePrice,
			SellPrice:     line.Charges.SellPrice,
			Tax:           line.Charges.Tax,
		})
	}
	return st, nil
}

// commitPlans applies the planned per-lot decrements. A conflict means a
// concurrent job exhausted a lot between compute and commit; the order's
// already-applied decrements are restored and the order becomes a stock alert.
func (e *Engine) commitPlans(ctx context.Context, st *stagedOrder) *order.Outcome {
	applied := make([]inventory.LotConsumption, 0)
	for _, plan := range st.plans {
		for _, c := range plan.Consumptions {
			if err := e.products.DecrementLot(ctx, c.ProductID, c.LotID, c.Quantity); err != nil {
				e.logger.Warn("lot decrement conflict at commit time",
					zap.String("external_order_id", st.raw.ExternalOrderID),
					zap.String("sku", plan.SKU),
					zap.Error(err),
				)
				e.restore(ctx, applied)
				out := order.StockAlert(st.raw, plan.SKU, plan.Quantity, 0)
				return &out
			}
			applied = append(applied, c)
		}
	}
	return nil
}

// restore reverts decrements already applied for an order whose commit was
// interrupted by a conflict.
func (e *Engine) restore(ctx context.Context, applied []inventory.LotConsumption) {
	for _, c := range applied {
		if err := e.products.RestoreLot(ctx, c.ProductID, c.LotID, c.Quantity); err != nil {
			e.logger.Error("failed to restore lot after commit conflict",
				zap.String("lot_id", c.LotID.String()),
				zap.Int64("amount", c.Quantity),
				zap.Error(err),
			)
		}
	}
}

// insertStaged bulk-inserts the staged orders. When the insert itself fails,
// every staged order is reclassified as failed rather than silently lost.
// The lot decrements committed before the insert are not compensated.
func (e *Engine) insertStaged(ctx context.Context, staged []stagedOrder, result *order.BatchResult) {
	if len(staged) == 0 {
		return
	}

	orders := make([]order.Order, 0, len(staged))
	for _, st := range staged {
		orders = append(orders, st.order)
	}

	if err := e.orders.BulkInsert(ctx, orders); err != nil {
		e.logger.Error("bulk order insert failed",
			zap.Int("staged", len(staged)),
			zap.Error(err),
		)
		for _, st := range staged {
			result.Outcomes = append(result.Outcomes, order.Failed(st.raw, reasonInsertFailed))
		}
		return
	}

	result.CreatedOrders = orders
	for _, st := range staged {
		result.Outcomes = append(result.Outcomes, order.Created(st.raw))
	}
}
