package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sellerhub/backend/internal/domain/marketplace"
)

var (
	// ErrDuplicateExternalID indicates an order with the same external
	// identifier already exists
	ErrDuplicateExternalID = errors.New("order: duplicate external order id")
	// ErrBulkInsertFailed indicates the batch insert was rejected by the
	// datastore; staged orders must be reclassified as failed
	ErrBulkInsertFailed = errors.New("order: bulk insert failed")
)

// Order is the internal record created from one qualifying raw marketplace
// order. The external order identifier is unique across all orders.
type Order struct {
	ID              uuid.UUID
	StoreID         uuid.UUID
	ExternalOrderID string
	Channel         marketplace.ChannelType
	CustomerName    string
	Address         string
	Status          string
	Lines           []Line
	PurchasedAt     time.Time
	CreatedAt       time.Time
}

// Line is one resolved product line of an internal order
type Line struct {
	ProductID uuid.UUID
	SKU       string
	Quantity  int64
	// PurchasePrice is the per-unit cost of the first lot consumed for the line
	PurchasePrice decimal.Decimal
	SellPrice     decimal.Decimal
	Tax           decimal.Decimal
}

// Repository defines the persistence interface for orders
type Repository interface {
	// ExistsByExternalID reports whether an order with the external
	// identifier has already been created
	ExistsByExternalID(ctx context.Context, externalOrderID string) (bool, error)

	// BulkInsert inserts all staged orders in one batch operation.
	// On failure nothing is assumed inserted and ErrBulkInsertFailed is
	// returned wrapped around the cause.
	BulkInsert(ctx context.Context, orders []Order) error
}
