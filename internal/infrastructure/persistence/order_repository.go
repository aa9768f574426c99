package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/sellerhub/backend/internal/domain/order"
	"github.com/sellerhub/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

var _ order.Repository = (*GormOrderRepository)(nil)

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// ExistsByExternalID reports whether an order with the external id exists
func (r *GormOrderRepository) ExistsByExternalID(ctx context.Context, externalOrderID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("external_order_id = ?", externalOrderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// BulkInsert writes all staged orders and their lines in one transaction.
// Failure leaves nothing inserted; callers reclassify the staged orders.
func (r *GormOrderRepository) BulkInsert(ctx context.Context, orders []order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	rows := make([]*models.OrderModel, 0, len(orders))
	for i := range orders {
		rows = append(rows, models.OrderModelFromDomain(&orders[i]))
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %v", order.ErrBulkInsertFailed, err)
	}
	return nil
}
