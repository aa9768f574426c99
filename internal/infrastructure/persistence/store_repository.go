package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellerhub/backend/internal/domain/store"
	"github.com/sellerhub/backend/internal/infrastructure/persistence/models"
)

// GormStoreRepository implements store.Repository using GORM
type GormStoreRepository struct {
	db *gorm.DB
}

var _ store.Repository = (*GormStoreRepository)(nil)

// NewGormStoreRepository creates a new GormStoreRepository
func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// FindActive returns all stores with active status, oldest first so the
// scheduler's stagger order is stable across passes.
func (r *GormStoreRepository) FindActive(ctx context.Context) ([]store.Store, error) {
	var rows []models.StoreModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", store.StatusActive).
		Order("created_at asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	stores := make([]store.Store, 0, len(rows))
	for i := range rows {
		stores = append(stores, *rows[i].ToDomain())
	}
	return stores, nil
}

// FindByID returns a single store by id
func (r *GormStoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*store.Store, error) {
	var row models.StoreModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}
