package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellerhub/backend/internal/domain/inventory"
	"github.com/sellerhub/backend/internal/infrastructure/persistence/models"
)

// GormProductRepository implements inventory.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

var _ inventory.ProductRepository = (*GormProductRepository)(nil)

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindBySKU returns the product with its lots loaded
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*inventory.Product, error) {
	var row models.ProductModel
	if err := r.db.WithContext(ctx).
		Preload("Lots").
		First(&row, "sku = ?", sku).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrProductNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// DecrementLot atomically takes amount units out of one lot and the
// product's derived available count. The lot update is conditional on the
// lot still holding at least amount units; a zero row count means a
// concurrent allocation got there first and the transaction rolls back
// with ErrLotConflict.
func (r *GormProductRepository) DecrementLot(ctx context.Context, productID, lotID uuid.UUID, amount int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PurchaseLotModel{}).
			Where("id = ? AND product_id = ? AND quantity >= ?", lotID, productID, amount).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return inventory.ErrLotConflict
		}

		return tx.Model(&models.ProductModel{}).
			Where("id = ?", productID).
			UpdateColumn("available", gorm.Expr("available - ?", amount)).Error
	})
}

// RestoreLot reverses a committed decrement
func (r *GormProductRepository) RestoreLot(ctx context.Context, productID, lotID uuid.UUID, amount int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PurchaseLotModel{}).
			Where("id = ? AND product_id = ?", lotID, productID).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return inventory.ErrProductNotFound
		}

		return tx.Model(&models.ProductModel{}).
			Where("id = ?", productID).
			UpdateColumn("available", gorm.Expr("available + ?", amount)).Error
	})
}

// UpsertCatalog creates or updates products by SKU. Lots and the derived
// available count are never touched here.
func (r *GormProductRepository) UpsertCatalog(ctx context.Context, items []inventory.CatalogItem) (int, int, error) {
	created, updated := 0, 0

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			var existing models.ProductModel
			err := tx.Select("id", "title", "sell_price").
				First(&existing, "sku = ?", item.SKU).Error

			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				row := models.ProductModel{
					BaseModel: models.BaseModel{ID: uuid.New()},
					SKU:       item.SKU,
					Title:     item.Title,
					SellPrice: item.SellPrice,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
				created++
			case err != nil:
				return err
			default:
				if existing.Title == item.Title && existing.SellPrice.Equal(item.SellPrice) {
					continue
				}
				if err := tx.Model(&models.ProductModel{}).
					Where("id = ?", existing.ID).
					Updates(map[string]any{
						"title":      item.Title,
						"sell_price": item.SellPrice,
					}).Error; err != nil {
					return err
				}
				updated++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return created, updated, nil
}
