package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/application/storesync"
	"github.com/sellerhub/backend/internal/domain/store"
	"github.com/sellerhub/backend/internal/interfaces/http/dto"
	"github.com/sellerhub/backend/internal/interfaces/http/middleware"
)

// OrderSyncer runs one sync-and-allocate pass for a store
type OrderSyncer interface {
	SyncStore(ctx context.Context, storeID uuid.UUID) (*storesync.Result, error)
}

// ProductSyncer runs one catalog refresh pass for a store
type ProductSyncer interface {
	SyncStore(ctx context.Context, storeID uuid.UUID) (*storesync.ProductResult, error)
}

// SyncHandler exposes the manual sync triggers. A trigger runs the pass
// synchronously and responds with the pass result, bypassing the job queue.
type SyncHandler struct {
	BaseHandler
	stores   store.Repository
	orders   OrderSyncer
	products ProductSyncer
	logger   *zap.Logger
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(stores store.Repository, orders OrderSyncer, products ProductSyncer, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		stores:   stores,
		orders:   orders,
		products: products,
		logger:   logger,
	}
}

// RegisterRoutes registers the sync trigger routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/orders", h.TriggerOrderSync)
		sync.POST("/products", h.TriggerProductSync)
	}
}

// StoreOrderResult is one store's entry in an order sync pass response
type StoreOrderResult struct {
	StoreID   uuid.UUID         `json:"storeId"`
	StoreName string            `json:"storeName"`
	Result    *storesync.Result `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// OrderPassResponse is the body of a manual order sync trigger
type OrderPassResponse struct {
	Stores       []StoreOrderResult `json:"stores"`
	StoresFailed int                `json:"storesFailed"`
}

// StoreProductResult is one store's entry in a catalog refresh pass response
type StoreProductResult struct {
	StoreID   uuid.UUID                `json:"storeId"`
	StoreName string                   `json:"storeName"`
	Result    *storesync.ProductResult `json:"result,omitempty"`
	Error     string                   `json:"error,omitempty"`
}

// ProductPassResponse is the body of a manual catalog refresh trigger
type ProductPassResponse struct {
	Stores       []StoreProductResult `json:"stores"`
	StoresFailed int                  `json:"storesFailed"`
}

// TriggerOrderSync runs one synchronous order sync pass. With a store_id
// query parameter only that store is synced, otherwise every active store
// is synced in turn.
func (h *SyncHandler) TriggerOrderSync(c *gin.Context) {
	var req dto.TriggerSyncRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, middleware.ValidationMessage(err))
		return
	}

	if req.StoreID != "" {
		storeID := uuid.MustParse(req.StoreID)
		result, err := h.orders.SyncStore(c.Request.Context(), storeID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				h.NotFound(c, "store not found")
				return
			}
			h.logger.Error("manual order sync failed",
				zap.String("store_id", req.StoreID),
				zap.Error(err),
			)
			h.InternalError(c)
			return
		}
		h.Success(c, result)
		return
	}

	stores, err := h.stores.FindActive(c.Request.Context())
	if err != nil {
		h.logger.Error("manual order sync failed to list stores", zap.Error(err))
		h.InternalError(c)
		return
	}

	resp := OrderPassResponse{Stores: make([]StoreOrderResult, 0, len(stores))}
	for _, st := range stores {
		entry := StoreOrderResult{StoreID: st.ID, StoreName: st.Name}
		result, err := h.orders.SyncStore(c.Request.Context(), st.ID)
		if err != nil {
			resp.StoresFailed++
			entry.Error = err.Error()
			h.logger.Error("manual order sync failed for store",
				zap.String("store_id", st.ID.String()),
				zap.Error(err),
			)
		} else {
			entry.Result = result
		}
		resp.Stores = append(resp.Stores, entry)
	}
	h.Success(c, resp)
}

// TriggerProductSync runs one synchronous catalog refresh pass
func (h *SyncHandler) TriggerProductSync(c *gin.Context) {
	var req dto.TriggerSyncRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, middleware.ValidationMessage(err))
		return
	}

	if req.StoreID != "" {
		storeID := uuid.MustParse(req.StoreID)
		result, err := h.products.SyncStore(c.Request.Context(), storeID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				h.NotFound(c, "store not found")
				return
			}
			h.logger.Error("manual catalog refresh failed",
				zap.String("store_id", req.StoreID),
				zap.Error(err),
			)
			h.InternalError(c)
			return
		}
		h.Success(c, result)
		return
	}

	stores, err := h.stores.FindActive(c.Request.Context())
	if err != nil {
		h.logger.Error("manual catalog refresh failed to list stores", zap.Error(err))
		h.InternalError(c)
		return
	}

	resp := ProductPassResponse{Stores: make([]StoreProductResult, 0, len(stores))}
	for _, st := range stores {
		entry := StoreProductResult{StoreID: st.ID, StoreName: st.Name}
		result, err := h.products.SyncStore(c.Request.Context(), st.ID)
		if err != nil {
			resp.StoresFailed++
			entry.Error = err.Error()
			h.logger.Error("manual catalog refresh failed for store",
				zap.String("store_id", st.ID.String()),
				zap.Error(err),
			)
		} else {
			entry.Result = result
		}
		resp.Stores = append(resp.Stores, entry)
	}
	h.Success(c, resp)
}
