package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/application/storesync"
	"github.com/sellerhub/backend/internal/domain/store"
	"github.com/sellerhub/backend/internal/interfaces/http/dto"
)

type fakeStoreRepo struct {
	stores  []store.Store
	listErr error
}

func (f *fakeStoreRepo) FindActive(ctx context.Context) ([]store.Store, error) {
	return f.stores, f.listErr
}

func (f *fakeStoreRepo) FindByID(ctx context.Context, id uuid.UUID) (*store.Store, error) {
	for i := range f.stores {
		if f.stores[i].ID == id {
			return &f.stores[i], nil
		}
	}
	return nil, store.ErrNotFound
}

type fakeOrderSyncer struct {
	results map[uuid.UUID]*storesync.Result
	errs    map[uuid.UUID]error
	calls   []uuid.UUID
}

func (f *fakeOrderSyncer) SyncStore(ctx context.Context, storeID uuid.UUID) (*storesync.Result, error) {
	f.calls = append(f.calls, storeID)
	if err, ok := f.errs[storeID]; ok {
		return nil, err
	}
	if result, ok := f.results[storeID]; ok {
		return result, nil
	}
	return nil, store.ErrNotFound
}

type fakeProductSyncer struct {
	results map[uuid.UUID]*storesync.ProductResult
	errs    map[uuid.UUID]error
}

func (f *fakeProductSyncer) SyncStore(ctx context.Context, storeID uuid.UUID) (*storesync.ProductResult, error) {
	if err, ok := f.errs[storeID]; ok {
		return nil, err
	}
	if result, ok := f.results[storeID]; ok {
		return result, nil
	}
	return nil, store.ErrNotFound
}

func setupSyncRouter(t *testing.T, stores *fakeStoreRepo, orders *fakeOrderSyncer, products *fakeProductSyncer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := NewSyncHandler(stores, orders, products, zap.NewNop())
	h.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestSyncHandler_TriggerOrderSync_AllStores(t *testing.T) {
	storeA := store.Store{ID: uuid.New(), Name: "Alpha", Status: store.StatusActive}
	storeB := store.Store{ID: uuid.New(), Name: "Beta", Status: store.StatusActive}
	repo := &fakeStoreRepo{stores: []store.Store{storeA, storeB}}
	orders := &fakeOrderSyncer{
		results: map[uuid.UUID]*storesync.Result{
			storeA.ID: {StoreID: storeA.ID, OrdersFetched: 5, OrdersCreated: 4, OrdersSkipped: 1},
			storeB.ID: {StoreID: storeB.ID, OrdersFetched: 2, OrdersCreated: 2},
		},
	}
	engine := setupSyncRouter(t, repo, orders, &fakeProductSyncer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/orders", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool              `json:"success"`
		Data    OrderPassResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data.Stores, 2)
	assert.Equal(t, 0, resp.Data.StoresFailed)
	assert.Equal(t, "Alpha", resp.Data.Stores[0].StoreName)
	assert.Equal(t, 5, resp.Data.Stores[0].Result.OrdersFetched)
	assert.Equal(t, []uuid.UUID{storeA.ID, storeB.ID}, orders.calls)
}

func TestSyncHandler_TriggerOrderSync_StoreFailureDoesNotAbortPass(t *testing.T) {
	storeA := store.Store{ID: uuid.New(), Name: "Alpha", Status: store.StatusActive}
	storeB := store.Store{ID: uuid.New(), Name: "Beta", Status: store.StatusActive}
	repo := &fakeStoreRepo{stores: []store.Store{storeA, storeB}}
	orders := &fakeOrderSyncer{
		results: map[uuid.UUID]*storesync.Result{
			storeB.ID: {StoreID: storeB.ID, OrdersFetched: 3, OrdersCreated: 3},
		},
		errs: map[uuid.UUID]error{storeA.ID: assert.AnError},
	}
	engine := setupSyncRouter(t, repo, orders, &fakeProductSyncer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/orders", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data OrderPassResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.StoresFailed)
	assert.NotEmpty(t, resp.Data.Stores[0].Error)
	assert.Nil(t, resp.Data.Stores[0].Result)
	assert.Equal(t, 3, resp.Data.Stores[1].Result.OrdersFetched)
}

func TestSyncHandler_TriggerOrderSync_SingleStore(t *testing.T) {
	st := store.Store{ID: uuid.New(), Name: "Alpha", Status: store.StatusActive}
	repo := &fakeStoreRepo{stores: []store.Store{st}}
	orders := &fakeOrderSyncer{
		results: map[uuid.UUID]*storesync.Result{
			st.ID: {StoreID: st.ID, OrdersFetched: 7, OrdersCreated: 6, StockAlerts: 1},
		},
	}
	engine := setupSyncRouter(t, repo, orders, &fakeProductSyncer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/orders?store_id="+st.ID.String(), nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data storesync.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, st.ID, resp.Data.StoreID)
	assert.Equal(t, 7, resp.Data.OrdersFetched)
	assert.Equal(t, 1, resp.Data.StockAlerts)
}

func TestSyncHandler_TriggerOrderSync_InvalidStoreID(t *testing.T) {
	engine := setupSyncRouter(t, &fakeStoreRepo{}, &fakeOrderSyncer{}, &fakeProductSyncer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/orders?store_id=not-a-uuid", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncHandler_TriggerOrderSync_UnknownStore(t *testing.T) {
	engine := setupSyncRouter(t, &fakeStoreRepo{}, &fakeOrderSyncer{}, &fakeProductSyncer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/orders?store_id="+uuid.NewString(), nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSyncHandler_TriggerOrderSync_ListFailureIsGeneric(t *testing.T) {
	repo := &fakeStoreRepo{listErr: assert.AnError}
	engine := setupSyncRouter(t, repo, &fakeOrderSyncer{}, &fakeProductSyncer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/orders", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, assert.AnError.Error())
}

func TestSyncHandler_TriggerProductSync_AllStores(t *testing.T) {
	st := store.Store{ID: uuid.New(), Name: "Alpha", Status: store.StatusActive}
	repo := &fakeStoreRepo{stores: []store.Store{st}}
	products := &fakeProductSyncer{
		results: map[uuid.UUID]*storesync.ProductResult{
			st.ID: {StoreID: st.ID, ListingsFetched: 10, ProductsCreated: 2, ProductsUpdated: 3},
		},
	}
	engine := setupSyncRouter(t, repo, &fakeOrderSyncer{}, products)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/products", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data ProductPassResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Stores, 1)
	assert.Equal(t, 10, resp.Data.Stores[0].Result.ListingsFetched)
	assert.Equal(t, 2, resp.Data.Stores[0].Result.ProductsCreated)
}

func TestSyncHandler_TriggerProductSync_SingleStoreFailure(t *testing.T) {
	st := store.Store{ID: uuid.New(), Name: "Alpha", Status: store.StatusActive}
	repo := &fakeStoreRepo{stores: []store.Store{st}}
	products := &fakeProductSyncer{errs: map[uuid.UUID]error{st.ID: assert.AnError}}
	engine := setupSyncRouter(t, repo, &fakeOrderSyncer{}, products)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/products?store_id="+st.ID.String(), nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
