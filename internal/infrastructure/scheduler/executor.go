package scheduler

import (
	"context"
	"fmt"

	"github.com/sellerhub/backend/internal/application/storesync"
)

// SyncExecutor dispatches jobs to the order and catalog sync services and
// copies their summaries back onto the job.
type SyncExecutor struct {
	orders   *storesync.OrderService
	products *storesync.ProductService
}

var _ Executor = (*SyncExecutor)(nil)

// NewSyncExecutor creates a new SyncExecutor
func NewSyncExecutor(orders *storesync.OrderService, products *storesync.ProductService) *SyncExecutor {
	return &SyncExecutor{
		orders:   orders,
		products: products,
	}
}

// Execute runs one attempt of the job
func (e *SyncExecutor) Execute(ctx context.Context, job *SyncJob) error {
	switch job.Kind {
	case JobKindOrders:
		result, err := e.orders.SyncStore(ctx, job.StoreID)
		if err != nil {
			return err
		}
		job.OrdersFetched = result.OrdersFetched
		job.OrdersCreated = result.OrdersCreated
		job.OrdersSkipped = result.OrdersSkipped
		job.OrdersFailed = result.OrdersFailed
		job.StockAlerts = result.StockAlerts
		job.ChannelsFailed = result.ChannelsFailed
		return nil
	case JobKindProducts:
		result, err := e.products.SyncStore(ctx, job.StoreID)
		if err != nil {
			return err
		}
		job.ListingsFetched = result.ListingsFetched
		job.ProductsCreated = result.ProductsCreated
		job.ProductsUpdated = result.ProductsUpdated
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownJobKind, job.Kind)
	}
}
