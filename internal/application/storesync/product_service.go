package storesync

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/domain/inventory"
	"github.com/sellerhub/backend/internal/domain/marketplace"
	"github.com/sellerhub/backend/internal/domain/store"
	"github.com/sellerhub/backend/internal/infrastructure/logger"
)

// ProductResult summarizes one store's catalog refresh pass
type ProductResult struct {
	StoreID         uuid.UUID `json:"storeId"`
	ListingsFetched int       `json:"listingsFetched"`
	ProductsCreated int       `json:"productsCreated"`
	ProductsUpdated int       `json:"productsUpdated"`
}

// ProductService refreshes the local product catalog from a store's
// marketplace listings. Purchase lots are never touched by a refresh.
type ProductService struct {
	stores   store.Repository
	tokens   marketplace.TokenProvider
	catalog  marketplace.CatalogFeed
	products inventory.ProductRepository
	cipher   CredentialDecrypter
	config   Config
	logger   *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	stores store.Repository,
	tokens marketplace.TokenProvider,
	catalog marketplace.CatalogFeed,
	products inventory.ProductRepository,
	cipher CredentialDecrypter,
	config Config,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		stores:   stores,
		tokens:   tokens,
		catalog:  catalog,
		products: products,
		cipher:   cipher,
		config:   config,
		logger:   logger,
	}
}

// SyncStore runs one catalog refresh pass for the store
func (s *ProductService) SyncStore(ctx context.Context, storeID uuid.UUID) (*ProductResult, error) {
	st, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("load store %s: %w", storeID, err)
	}

	correlationID := uuid.NewString()
	ctx, log := logger.WithCorrelationID(ctx, s.logger, correlationID)
	log = log.With(zap.String("store_id", storeID.String()))

	clientID, err := s.cipher.Decrypt(st.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: decrypt client id: %v", marketplace.ErrAuthFailed, err)
	}
	clientSecret, err := s.cipher.Decrypt(st.ClientSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: decrypt client secret: %v", marketplace.ErrAuthFailed, err)
	}
	token, err := s.tokens.GetAccessToken(ctx, clientID, clientSecret)
	if err != nil {
		return nil, fmt.Errorf("token exchange for store %s: %w", st.ID, err)
	}

	listings, err := s.catalog.ListCatalog(ctx, token, s.config.PageLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog for store %s: %w", st.ID, err)
	}

	items := make([]inventory.CatalogItem, 0, len(listings))
	for _, l := range listings {
		if l.SKU == "" {
			continue
		}
		items = append(items, inventory.CatalogItem{
			SKU:       l.SKU,
			Title:     l.Title,
			SellPrice: l.SellPrice,
		})
	}

	created, updated, err := s.products.UpsertCatalog(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("upsert catalog for store %s: %w", st.ID, err)
	}

	log.Info("catalog refresh finished",
		zap.Int("listings", len(listings)),
		zap.Int("created", created),
		zap.Int("updated", updated),
	)

	return &ProductResult{
		StoreID:         storeID,
		ListingsFetched: len(listings),
		ProductsCreated: created,
		ProductsUpdated: updated,
	}, nil
}
