package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sellerhub/backend/internal/domain/store"
	"github.com/sellerhub/backend/internal/infrastructure/persistence/models"
)

func seedStore(t *testing.T, db *gorm.DB, name string, status store.Status, createdAt time.Time) uuid.UUID {
	t.Helper()
	row := models.StoreModel{
		BaseModel: models.BaseModel{
			ID:        uuid.New(),
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		},
		Name:         name,
		ClientID:     "enc-client-id",
		ClientSecret: "enc-client-secret",
		Status:       status,
	}
	require.NoError(t, db.Create(&row).Error)
	return row.ID
}

func TestGormStoreRepository_FindActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStoreRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	second := seedStore(t, db, "Second", store.StatusActive, base.Add(time.Hour))
	seedStore(t, db, "Dormant", store.StatusInactive, base.Add(2*time.Hour))
	first := seedStore(t, db, "First", store.StatusActive, base)

	stores, err := repo.FindActive(ctx)
	require.NoError(t, err)
	require.Len(t, stores, 2)

	// Oldest first, inactive excluded
	assert.Equal(t, first, stores[0].ID)
	assert.Equal(t, second, stores[1].ID)
}

func TestGormStoreRepository_FindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStoreRepository(db)
	ctx := context.Background()

	id := seedStore(t, db, "Store A", store.StatusActive, time.Now())

	t.Run("found", func(t *testing.T) {
		st, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Store A", st.Name)
		assert.Equal(t, "enc-client-id", st.ClientID)
		assert.True(t, st.IsActive())
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
