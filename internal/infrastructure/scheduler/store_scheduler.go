package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/domain/store"
	"github.com/sellerhub/backend/internal/infrastructure/broadcast"
)

// StoreSchedulerConfig holds the periodic sync scheduler configuration
type StoreSchedulerConfig struct {
	// OrderInterval is how often a full order sync pass starts
	OrderInterval time.Duration
	// ProductInterval is how often a catalog refresh pass starts
	ProductInterval time.Duration
	// StoreStagger is the launch offset between consecutive stores in one
	// pass, so stores do not hit the marketplace at the same instant
	StoreStagger time.Duration
	// MaxRetries is carried onto every enqueued job
	MaxRetries int
}

// DefaultStoreSchedulerConfig returns the default scheduler configuration
func DefaultStoreSchedulerConfig() StoreSchedulerConfig {
	return StoreSchedulerConfig{
		OrderInterval:   15 * time.Minute,
		ProductInterval: 6 * time.Hour,
		StoreStagger:    time.Minute,
		MaxRetries:      3,
	}
}

// Validate validates the configuration
func (c *StoreSchedulerConfig) Validate() error {
	if c.OrderInterval <= 0 || c.ProductInterval <= 0 {
		return ErrInvalidConfig
	}
	if c.StoreStagger < 0 {
		return ErrInvalidConfig
	}
	if c.MaxRetries < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// StoreScheduler starts a sync pass for every active store on a fixed
// interval. Each pass enumerates the active stores and enqueues one job per
// store, staggered by index. A pass that finds no stores or fails to
// enumerate them reports the fact and waits for the next tick; the
// scheduler itself never stops on errors.
type StoreScheduler struct {
	config StoreSchedulerConfig
	stores store.Repository
	queue  Enqueuer
	events *broadcast.Broadcaster
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewStoreScheduler creates a new StoreScheduler
func NewStoreScheduler(
	config StoreSchedulerConfig,
	stores store.Repository,
	queue Enqueuer,
	events *broadcast.Broadcaster,
	logger *zap.Logger,
) (*StoreScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &StoreScheduler{
		config: config,
		stores: stores,
		queue:  queue,
		events: events,
		logger: logger,
	}, nil
}

// Start launches the order and catalog tickers. The first pass of each kind
// runs immediately.
func (s *StoreScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(2)
	go s.loop(ctx, JobKindOrders, s.config.OrderInterval)
	go s.loop(ctx, JobKindProducts, s.config.ProductInterval)

	s.logger.Info("store scheduler started",
		zap.Duration("order_interval", s.config.OrderInterval),
		zap.Duration("product_interval", s.config.ProductInterval),
		zap.Duration("store_stagger", s.config.StoreStagger),
	)
	return nil
}

// Stop stops the tickers
func (s *StoreScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("store scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *StoreScheduler) loop(ctx context.Context, kind JobKind, interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.RunPass(ctx, kind)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunPass(ctx, kind)
		}
	}
}

// RunPass enumerates the active stores and enqueues one job per store,
// staggered by index. It is also called directly by the manual sync
// endpoints.
func (s *StoreScheduler) RunPass(ctx context.Context, kind JobKind) {
	stores, err := s.stores.FindActive(ctx)
	if err != nil {
		s.logger.Error("failed to enumerate active stores",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		s.events.Error(fmt.Sprintf("%s sync pass could not list active stores: %s", kindLabel(kind), err))
		return
	}

	if len(stores) == 0 {
		s.events.Info("no active stores to sync")
		return
	}

	s.events.Info(fmt.Sprintf("starting %s sync for %d stores", kindLabel(kind), len(stores)))

	enqueued := 0
	for i, st := range stores {
		job := NewSyncJob(kind, st.ID, st.Name, s.config.MaxRetries)
		delay := time.Duration(i) * s.config.StoreStagger
		if err := s.queue.Enqueue(job, delay); err != nil {
			s.logger.Warn("failed to enqueue sync job",
				zap.String("kind", string(kind)),
				zap.String("store_id", st.ID.String()),
				zap.Error(err),
			)
			s.events.Error(fmt.Sprintf("could not queue %s sync for %s: %s", kindLabel(kind), st.Name, err))
			continue
		}
		enqueued++
	}

	s.logger.Info("sync pass scheduled",
		zap.String("kind", string(kind)),
		zap.Int("stores", len(stores)),
		zap.Int("enqueued", enqueued),
	)
}
