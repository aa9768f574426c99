package storesync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/application/allocation"
	"github.com/sellerhub/backend/internal/domain/marketplace"
	"github.com/sellerhub/backend/internal/domain/order"
	"github.com/sellerhub/backend/internal/domain/store"
	"github.com/sellerhub/backend/internal/infrastructure/logger"
)

// CredentialDecrypter decrypts store credentials stored at rest
type CredentialDecrypter interface {
	Decrypt(ciphertext string) (string, error)
}

// Config holds the fetch window settings for a sync pass
type Config struct {
	// PageLimit is the fixed page size for each channel fetch
	PageLimit int
	// Lookback is the fixed date floor applied to each channel fetch
	Lookback time.Duration
}

// DefaultConfig returns the default sync pass configuration
func DefaultConfig() Config {
	return Config{
		PageLimit: 100,
		Lookback:  7 * 24 * time.Hour,
	}
}

// Result summarizes one store's sync-and-allocate pass
type Result struct {
	StoreID        uuid.UUID `json:"storeId"`
	OrdersFetched  int       `json:"ordersFetched"`
	OrdersCreated  int       `json:"ordersCreated"`
	OrdersSkipped  int       `json:"ordersSkipped"`
	OrdersFailed   int       `json:"ordersFailed"`
	StockAlerts    int       `json:"stockAlerts"`
	ChannelsFailed int       `json:"channelsFailed"`
}

// OrderService runs the sync-and-allocate pipeline for one store: it
// exchanges the store's credentials for a token, fetches orders across every
// fulfillment channel, and feeds the union into the allocation engine.
//
// A failed token exchange fails the whole pass; a failed channel fetch only
// drops that channel, so the pass result is the union of whatever channels
// succeeded.
type OrderService struct {
	stores   store.Repository
	tokens   marketplace.TokenProvider
	feed     marketplace.OrderFeed
	engine   *allocation.Engine
	outcomes order.OutcomeRepository
	cipher   CredentialDecrypter
	config   Config
	logger   *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	stores store.Repository,
	tokens marketplace.TokenProvider,
	feed marketplace.OrderFeed,
	engine *allocation.Engine,
	outcomes order.OutcomeRepository,
	cipher CredentialDecrypter,
	config Config,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		stores:   stores,
		tokens:   tokens,
		feed:     feed,
		engine:   engine,
		outcomes: outcomes,
		cipher:   cipher,
		config:   config,
		logger:   logger,
	}
}

// SyncStore runs one full sync-and-allocate pass for the store
func (s *OrderService) SyncStore(ctx context.Context, storeID uuid.UUID) (*Result, error) {
	st, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("load store %s: %w", storeID, err)
	}

	// One correlation id per sync pass, attached to every outbound call
	correlationID := uuid.NewString()
	ctx, log := logger.WithCorrelationID(ctx, s.logger, correlationID)
	log = log.With(zap.String("store_id", storeID.String()))

	token, err := s.exchangeToken(ctx, st)
	if err != nil {
		return nil, err
	}

	since := time.Now().Add(-s.config.Lookback)
	batch := make([]marketplace.RawOrder, 0)
	channelsFailed := 0

	for _, channel := range marketplace.OrderedChannelTypes {
		orders, err := s.feed.ListOrders(ctx, token, channel, since, s.config.PageLimit)
		if err != nil {
			// Recoverable per channel: log, skip, keep going
			channelsFailed++
			log.Warn("channel fetch failed",
				zap.String("channel", channel.String()),
				zap.Error(err),
			)
			continue
		}
		for i := range orders {
			orders[i].StoreID = storeID
			orders[i].Channel = channel
		}
		batch = append(batch, orders...)
	}

	log.Info("fetched marketplace orders",
		zap.Int("orders", len(batch)),
		zap.Int("channels_failed", channelsFailed),
	)

	batchResult, err := s.engine.Process(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("allocate orders for store %s: %w", storeID, err)
	}

	s.persistOutcomes(ctx, log, batchResult)

	return &Result{
		StoreID:        storeID,
		OrdersFetched:  len(batch),
		OrdersCreated:  batchResult.Count(order.OutcomeCreated),
		OrdersSkipped:  batchResult.Count(order.OutcomeSkipped),
		OrdersFailed:   batchResult.Count(order.OutcomeFailed),
		StockAlerts:    batchResult.Count(order.OutcomeStockAlert),
		ChannelsFailed: channelsFailed,
	}, nil
}

// exchangeToken decrypts the store credentials and performs the token
// exchange. Failure here is the single unrecoverable failure mode of a pass.
func (s *OrderService) exchangeToken(ctx context.Context, st *store.Store) (string, error) {
	clientID, err := s.cipher.Decrypt(st.ClientID)
	if err != nil {
		return "", fmt.Errorf("%w: decrypt client id: %v", marketplace.ErrAuthFailed, err)
	}
	clientSecret, err := s.cipher.Decrypt(st.ClientSecret)
	if err != nil {
		return "", fmt.Errorf("%w: decrypt client secret: %v", marketplace.ErrAuthFailed, err)
	}
	token, err := s.tokens.GetAccessToken(ctx, clientID, clientSecret)
	if err != nil {
		return "", fmt.Errorf("token exchange for store %s: %w", st.ID, err)
	}
	return token, nil
}

// persistOutcomes saves the non-created classification records. Losing one
// of these records is reported but does not fail the pass.
func (s *OrderService) persistOutcomes(ctx context.Context, log *zap.Logger, result *order.BatchResult) {
	secondary := make([]order.Outcome, 0)
	for _, o := range result.Outcomes {
		if o.Kind != order.OutcomeCreated {
			secondary = append(secondary, o)
		}
	}
	if len(secondary) == 0 {
		return
	}
	if err := s.outcomes.SaveOutcomes(ctx, secondary); err != nil {
		log.Error("failed to persist outcome records",
			zap.Int("outcomes", len(secondary)),
			zap.Error(err),
		)
	}
}
