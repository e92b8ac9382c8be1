package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/pizzaria-client-go/internal/app"
	"github.com/boddenberg/pizzaria-client-go/internal/cart"
	"github.com/boddenberg/pizzaria-client-go/internal/config"
	"github.com/boddenberg/pizzaria-client-go/internal/domain"
	"github.com/boddenberg/pizzaria-client-go/internal/handler"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/cache"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/client"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/notify"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/observability"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/resilience"
	"github.com/boddenberg/pizzaria-client-go/internal/infra/storage"
	"github.com/boddenberg/pizzaria-client-go/internal/orders"
	"github.com/boddenberg/pizzaria-client-go/internal/port"
	"github.com/boddenberg/pizzaria-client-go/internal/service"
	"github.com/boddenberg/pizzaria-client-go/internal/session"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("backend_api_url", cfg.BackendAPIURL),
		zap.String("storage_driver", cfg.StorageDriver),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Duration("order_poll_interval", cfg.OrderPollInterval),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "pizzaria-client")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Storage (token + carts) ---
	store, closeStore := openStorage(cfg, logger)
	defer closeStore()

	// --- Cache ---
	menuCache := cache.New[*domain.Menu](cfg.CacheTTL)
	defer menuCache.Close()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("backend-api", client.BreakerSuccess)

	// --- Backend client ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	api := client.NewClient(httpClient, cfg.BackendAPIURL, cb, resilienceCfg, metrics, logger)

	// --- Stores ---
	feed := notify.NewFeed(20, logger)
	cartStore := cart.NewStore(store, feed, metrics, logger)
	sessionStore := session.NewStore(api, store, cartStore, metrics, logger)
	poller := orders.NewPoller(api, sessionStore, cfg.OrderPollInterval, metrics, logger)
	shell := app.New(sessionStore, cartStore, poller, metrics, logger)
	defer shell.Close()

	// --- Services ---
	catalog := service.NewCatalog(api, api, menuCache, metrics, logger)
	checkout := service.NewCheckout(api, sessionStore, cartStore, catalog, poller, logger)
	admin := service.NewAdmin(api, api, sessionStore, catalog, logger)
	platform := service.NewPlatform(api, sessionStore, logger)

	// --- Restore the persisted session ---
	restoreCtx, cancelRestore := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	sessionStore.Restore(restoreCtx)
	cancelRestore()
	if cur := sessionStore.Current(); cur.Active() {
		logger.Info("session restored",
			zap.String("user_id", cur.User.ID),
			zap.String("tenant_id", cur.User.TenantID.String()),
		)
	}

	// --- Router ---
	router := handler.NewRouter(handler.Deps{
		App:      shell,
		Session:  sessionStore,
		Cart:     cartStore,
		Orders:   poller,
		Catalog:  catalog,
		Checkout: checkout,
		Admin:    admin,
		Platform: platform,
		Feed:     feed,
		Health:   api,
		Metrics:  metrics,
		Logger:   logger,

		AllowedOrigins: cfg.CORSOrigins,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// openStorage selects the storage driver. Unknown drivers and a failing
// Redis fall back to the file store.
func openStorage(cfg *config.Config, logger *zap.Logger) (port.Storage, func()) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, session and carts are lost on exit")
		return storage.NewMemory(), func() {}
	case config.StorageRedis:
		r, err := storage.NewRedis(storage.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
		})
		if err == nil {
			logger.Info("using Redis storage", zap.String("addr", cfg.RedisAddr))
			return r, func() { _ = r.Close() }
		}
		logger.Error("redis unavailable, falling back to file storage", zap.Error(err))
	case config.StorageFile:
	default:
		logger.Warn("unknown storage driver, using file storage", zap.String("driver", cfg.StorageDriver))
	}

	f, err := storage.NewFile(cfg.StoragePath)
	if err != nil {
		logger.Fatal("failed to open storage file", zap.String("path", cfg.StoragePath), zap.Error(err))
	}
	logger.Info("using file storage", zap.String("path", cfg.StoragePath))
	return f, func() {}
}
