package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellerhub/backend/internal/domain/order"
	"github.com/sellerhub/backend/internal/infrastructure/persistence/models"
)

// GormOutcomeRepository persists the secondary allocation classifications
// into their dedicated tables.
type GormOutcomeRepository struct {
	db *gorm.DB
}

var _ order.OutcomeRepository = (*GormOutcomeRepository)(nil)

// NewGormOutcomeRepository creates a new GormOutcomeRepository
func NewGormOutcomeRepository(db *gorm.DB) *GormOutcomeRepository {
	return &GormOutcomeRepository{db: db}
}

// SaveOutcomes writes the outcome records, partitioned by kind. Created
// outcomes have no record table and are ignored.
func (r *GormOutcomeRepository) SaveOutcomes(ctx context.Context, outcomes []order.Outcome) error {
	var alerts []models.StockAlertModel
	var failed []models.FailedOrderModel
	var skipped []models.SkippedOrderModel

	for _, o := range outcomes {
		switch o.Kind {
		case order.OutcomeStockAlert:
			alerts = append(alerts, models.StockAlertModel{
				BaseModel:       models.BaseModel{ID: uuid.New()},
				StoreID:         o.StoreID,
				ExternalOrderID: o.ExternalOrderID,
				Channel:         o.Channel,
				SKU:             o.SKU,
				Needed:          o.Needed,
				Available:       o.Available,
			})
		case order.OutcomeFailed:
			failed = append(failed, models.FailedOrderModel{
				BaseModel:       models.BaseModel{ID: uuid.New()},
				StoreID:         o.StoreID,
				ExternalOrderID: o.ExternalOrderID,
				Channel:         o.Channel,
				Reason:          o.Reason,
			})
		case order.OutcomeSkipped:
			skipped = append(skipped, models.SkippedOrderModel{
				BaseModel:       models.BaseModel{ID: uuid.New()},
				StoreID:         o.StoreID,
				ExternalOrderID: o.ExternalOrderID,
				Channel:         o.Channel,
				Reason:          o.Reason,
			})
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(alerts) > 0 {
			if err := tx.Create(&alerts).Error; err != nil {
				return err
			}
		}
		if len(failed) > 0 {
			if err := tx.Create(&failed).Error; err != nil {
				return err
			}
		}
		if len(skipped) > 0 {
			if err := tx.Create(&skipped).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
