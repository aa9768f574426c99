package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sellerhub/backend/internal/domain/marketplace"
	"github.com/sellerhub/backend/internal/domain/order"
)

func sampleOrder(externalID string) order.Order {
	return order.Order{
		StoreID:         uuid.New(),
		ExternalOrderID: externalID,
		Channel:         marketplace.ChannelSellerFulfilled,
		CustomerName:    "Jo Doe",
		Address:         "1 Main St\nSpringfield, IL, 62704\nUS",
		Status:          "Shipped",
		PurchasedAt:     time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		Lines: []order.Line{
			{
				ProductID:     uuid.New(),
				SKU:           "SKU-1",
				Quantity:      2,
				PurchasePrice: decimal.NewFromInt(5),
				SellPrice:     decimal.RequireFromString("19.98"),
				Tax:           decimal.RequireFromString("1.50"),
			},
		},
	}
}

func TestGormOrderRepository_ExistsByExternalID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	exists, err := repo.ExistsByExternalID(ctx, "111-222")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.BulkInsert(ctx, []order.Order{sampleOrder("111-222")}))

	exists, err = repo.ExistsByExternalID(ctx, "111-222")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGormOrderRepository_BulkInsert(t *testing.T) {
	ctx := context.Background()

	t.Run("persists orders with their lines", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewGormOrderRepository(db)

		orders := []order.Order{sampleOrder("111-222"), sampleOrder("333-444")}
		require.NoError(t, repo.BulkInsert(ctx, orders))

		var orderCount, lineCount int64
		require.NoError(t, db.Table("orders").Count(&orderCount).Error)
		require.NoError(t, db.Table("order_lines").Count(&lineCount).Error)
		assert.EqualValues(t, 2, orderCount)
		assert.EqualValues(t, 2, lineCount)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewGormOrderRepository(db)
		require.NoError(t, repo.BulkInsert(ctx, nil))
	})

	t.Run("duplicate external id rejects the whole batch", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewGormOrderRepository(db)

		require.NoError(t, repo.BulkInsert(ctx, []order.Order{sampleOrder("111-222")}))

		err := repo.BulkInsert(ctx, []order.Order{sampleOrder("555-666"), sampleOrder("111-222")})
		require.Error(t, err)
		assert.ErrorIs(t, err, order.ErrBulkInsertFailed)

		// The batch's valid order must not have slipped through
		exists, err := repo.ExistsByExternalID(ctx, "555-666")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestGormOrderRepository_BulkInsertDatabaseError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "orders"`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	repo := NewGormOrderRepository(db)
	err = repo.BulkInsert(context.Background(), []order.Order{sampleOrder("111-222")})
	require.Error(t, err)
	assert.ErrorIs(t, err, order.ErrBulkInsertFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
