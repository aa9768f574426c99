package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/application/allocation"
	"github.com/sellerhub/backend/internal/application/storesync"
	"github.com/sellerhub/backend/internal/domain/marketplace"
	"github.com/sellerhub/backend/internal/infrastructure/broadcast"
	"github.com/sellerhub/backend/internal/infrastructure/cache"
	"github.com/sellerhub/backend/internal/infrastructure/config"
	"github.com/sellerhub/backend/internal/infrastructure/crypto"
	"github.com/sellerhub/backend/internal/infrastructure/logger"
	mpclient "github.com/sellerhub/backend/internal/infrastructure/marketplace"
	"github.com/sellerhub/backend/internal/infrastructure/persistence"
	"github.com/sellerhub/backend/internal/infrastructure/scheduler"
	"github.com/sellerhub/backend/internal/interfaces/http/handler"
	"github.com/sellerhub/backend/internal/interfaces/http/middleware"
	"github.com/sellerhub/backend/internal/interfaces/http/router"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting SellerHub Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	storeRepo := persistence.NewGormStoreRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	outcomeRepo := persistence.NewGormOutcomeRepository(db.DB)

	// Credential cipher
	cipher, err := crypto.NewCipher(cfg.Crypto.CredentialKey)
	if err != nil {
		log.Fatal("Failed to initialize credential cipher", zap.Error(err))
	}

	// Marketplace client, optionally wrapped in the Redis token cache
	client, err := mpclient.NewClient(&mpclient.Config{
		AuthURL:        cfg.Marketplace.AuthURL,
		APIBaseURL:     cfg.Marketplace.APIBaseURL,
		TimeoutSeconds: cfg.Marketplace.TimeoutSeconds,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize marketplace client", zap.Error(err))
	}

	var tokens marketplace.TokenProvider = client
	if cfg.Redis.Enabled {
		tokenCache, err := cache.NewTokenCache(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, client, cfg.Redis.TokenTTL, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		tokens = tokenCache
		log.Info("Marketplace token cache enabled")
	}

	// Sync pipeline
	engine := allocation.NewEngine(productRepo, orderRepo, log)
	syncConfig := storesync.Config{
		PageLimit: cfg.Sync.PageLimit,
		Lookback:  cfg.Sync.Lookback,
	}
	orderService := storesync.NewOrderService(storeRepo, tokens, client, engine, outcomeRepo, cipher, syncConfig, log)
	productService := storesync.NewProductService(storeRepo, tokens, client, productRepo, cipher, syncConfig, log)

	// Status broadcaster, shared by the queue, the scheduler and the SSE feed
	events := broadcast.New(log)

	// Job queue and store scheduler
	queue, err := scheduler.NewQueue(scheduler.Config{
		Workers:     cfg.Queue.Workers,
		QueueSize:   scheduler.DefaultConfig().QueueSize,
		MaxRetries:  cfg.Queue.MaxRetries,
		BackoffBase: cfg.Queue.BackoffBase,
		JobTimeout:  cfg.Queue.JobTimeout,
		HistorySize: cfg.Queue.HistorySize,
	}, scheduler.NewSyncExecutor(orderService, productService), events, log)
	if err != nil {
		log.Fatal("Failed to create sync queue", zap.Error(err))
	}

	rootCtx := context.Background()
	if err := queue.Start(rootCtx); err != nil {
		log.Fatal("Failed to start sync queue", zap.Error(err))
	}

	var storeScheduler *scheduler.StoreScheduler
	if cfg.Sync.Enabled {
		storeScheduler, err = scheduler.NewStoreScheduler(scheduler.StoreSchedulerConfig{
			OrderInterval:   cfg.Sync.OrderInterval,
			ProductInterval: cfg.Sync.ProductInterval,
			StoreStagger:    cfg.Sync.StoreStagger,
			MaxRetries:      cfg.Queue.MaxRetries,
		}, storeRepo, queue, events, log)
		if err != nil {
			log.Fatal("Failed to create store scheduler", zap.Error(err))
		}
		if err := storeScheduler.Start(rootCtx); err != nil {
			log.Fatal("Failed to start store scheduler", zap.Error(err))
		}
	} else {
		log.Warn("Periodic sync disabled, only manual triggers are active")
	}

	// HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	ginEngine := gin.New()
	ginEngine.Use(
		middleware.RequestID(log),
		logger.GinMiddleware(log),
		logger.Recovery(log),
	)
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := ginEngine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	router.NewRouter(ginEngine).
		Register(handler.NewSyncHandler(storeRepo, orderService, productService, log)).
		Register(handler.NewHealthHandler(db, queue, log)).
		Register(handler.NewEventsHandler(events, log)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        ginEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if storeScheduler != nil {
		if err := storeScheduler.Stop(ctx); err != nil {
			log.Error("Store scheduler forced to stop", zap.Error(err))
		}
	}
	if err := queue.Stop(ctx); err != nil {
		log.Error("Sync queue forced to stop", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
