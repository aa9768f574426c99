package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrProductNotFound indicates no product exists for a SKU
	ErrProductNotFound = errors.New("inventory: product not found")
	// ErrLotConflict indicates a conditional lot decrement matched no row,
	// meaning a concurrent allocation consumed the lot first
	ErrLotConflict = errors.New("inventory: lot decrement conflict")
)

// PurchaseLot is a batch of inventory acquired at a specific cost and date.
// Lots are the allocation unit for fulfillment: they are decremented, never
// deleted, and exhausted lots remain as zero-quantity records for audit.
type PurchaseLot struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	// Quantity is the remaining unit count
	Quantity int64
	// CostOfPrice is the per-unit acquisition cost
	CostOfPrice decimal.Decimal
	// SellPrice is the listed per-unit sell price at acquisition time
	SellPrice decimal.Decimal
	// AcquiredAt is when the lot was purchased
	AcquiredAt time.Time
}

// Product owns an ordered collection of purchase lots. Available is derived:
// it equals the sum of positive lot quantities and is maintained by the same
// atomic update that decrements a lot.
type Product struct {
	ID        uuid.UUID
	SKU       string
	Title     string
	SellPrice decimal.Decimal
	Available int64
	Lots      []PurchaseLot
}

// AvailableFromLots recomputes the derived available quantity from the
// positive lot quantities.
func (p *Product) AvailableFromLots() int64 {
	var total int64
	for _, lot := range p.Lots {
		if lot.Quantity > 0 {
			total += lot.Quantity
		}
	}
	return total
}

// CatalogItem is the upsert payload used by the product catalog refresh
type CatalogItem struct {
	SKU       string
	Title     string
	SellPrice decimal.Decimal
}

// ProductRepository defines the persistence interface for products and lots
type ProductRepository interface {
	// FindBySKU returns the product with its lots, ErrProductNotFound when missing
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// DecrementLot atomically decrements a lot's quantity and the product's
	// derived available count by amount. The update is conditional on the
	// lot still holding at least amount units; ErrLotConflict is returned
	// when a concurrent allocation emptied the lot first.
	DecrementLot(ctx context.Context, productID, lotID uuid.UUID, amount int64) error

	// RestoreLot reverses a committed decrement. Used only to unwind an
	// order whose commit was interrupted by a concurrent lot conflict.
	RestoreLot(ctx context.Context, productID, lotID uuid.UUID, amount int64) error

	// UpsertCatalog creates or updates products by SKU from marketplace
	// listings. Purchase lots are never touched by catalog refresh.
	UpsertCatalog(ctx context.Context, items []CatalogItem) (created int, updated int, err error)
}
