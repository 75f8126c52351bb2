package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"inventory-reservation-service/internal/api"
	"inventory-reservation-service/internal/cache"
	"inventory-reservation-service/internal/catalog"
	"inventory-reservation-service/internal/config"
	"inventory-reservation-service/internal/events"
	"inventory-reservation-service/internal/models"
	"inventory-reservation-service/internal/store"
	"inventory-reservation-service/internal/tasks"
	"inventory-reservation-service/internal/telemetry"
)

// setupLogging configures structured logging
func setupLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// initializeTelemetry sets up the trace and metrics pipelines. The
// service runs fine without a collector; telemetry is observational
// only.
func initializeTelemetry(ctx context.Context, cfg *config.Config) *telemetry.Provider {
	provider, err := telemetry.Init(ctx, cfg.ServiceName, cfg.ServiceVersion, cfg.OtelEndpoint, cfg.OtelInsecure)
	if err != nil {
		log.Warn().Err(err).Msg("Telemetry disabled - failed to initialize exporters")
		return nil
	}
	log.Info().Str("endpoint", cfg.OtelEndpoint).Msg("Telemetry initialized")
	return provider
}

// seedCatalog fetches the product seed from the catalog service.
func seedCatalog(ctx context.Context, cfg *config.Config) []models.Product {
	client := catalog.NewClient(cfg.ProductCatalogAddr)
	if err := client.Connect(); err != nil {
		log.Warn().Err(err).Msg("Product catalog unreachable, seeding from static catalog")
	}
	defer client.Close()

	catalogProducts, err := client.ListProducts(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load product catalog")
	}

	seed := make([]models.Product, 0, len(catalogProducts))
	for _, p := range catalogProducts {
		seed = append(seed, models.Product{
			ProductID: p.ProductID,
			Name:      p.Name,
			Quantity:  p.Quantity,
			Warehouse: "us-west-2a",
		})
	}
	return seed
}

// initializeCache sets up the Redis snapshot cache when configured and
// primes it with the seeded availability snapshot.
func initializeCache(cfg *config.Config, memStore *store.MemoryStore) *cache.CacheClient {
	if !cfg.CacheEnabled() {
		return nil
	}

	cacheClient := cache.NewCacheClient(cfg.RedisAddrs, cfg.RedisPassword, cfg.RedisTTL, cfg.RedisKeyPrefix)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cacheClient.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("Redis unreachable, snapshot cache writes will be retried per update")
		return cacheClient
	}

	log.Info().Strs("addrs", cfg.RedisAddrs).Msg("Redis snapshot cache connected")
	if err := cacheClient.SetSnapshot(ctx, memStore.Snapshot()); err != nil {
		log.Warn().Err(err).Msg("Failed to prime snapshot cache")
	}

	return cacheClient
}

// wireExpiryHook publishes expiry events and refreshes the cache for
// each reservation the sweeper expires.
func wireExpiryHook(memStore *store.MemoryStore, publisher *events.Publisher, cacheClient *cache.CacheClient) {
	if publisher == nil && cacheClient == nil {
		return
	}

	memStore.SetExpiryHook(func(res models.Reservation) {
		product, ok := memStore.GetProduct(res.ProductID)
		if !ok {
			return
		}

		if publisher != nil {
			event := events.NewStockEvent(events.EventTypeStockExpired, res.ProductID, res.Quantity, product.Available())
			event.ReservationID = res.ReservationID
			event.OrderID = res.OrderID
			publisher.PublishAsync(event)
		}

		cacheClient.UpdateStockAsync(store.StockSnapshot{
			ProductID: product.ProductID,
			Name:      product.Name,
			Available: product.Available(),
		})
	})
}

// startHTTPServer starts the HTTP server
func startHTTPServer(cfg *config.Config, handler *api.Handler) *http.Server {
	router := handler.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%s", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("address", serverAddr).Msg("Inventory service HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	return server
}

// gracefulShutdown stops the HTTP server, the expiry worker, and the
// telemetry pipeline within a bounded grace period.
func gracefulShutdown(server *http.Server, cancel context.CancelFunc, worker *tasks.ExpiryWorker, provider *telemetry.Provider, publisher *events.Publisher, cacheClient *cache.CacheClient) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down inventory service...")

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop the sweeper and wait for the in-flight sweep to finish.
	cancel()
	select {
	case <-worker.Done():
	case <-time.After(5 * time.Second):
		log.Warn().Msg("Expiry worker did not stop within grace period")
	}

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close event publisher")
		}
	}
	if cacheClient != nil {
		if err := cacheClient.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close cache client")
		}
	}
	if provider != nil {
		if err := provider.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to shut down telemetry")
		}
	}

	log.Info().Msg("Inventory service stopped")
}

func main() {
	setupLogging()
	log.Info().Msg("Starting inventory service...")

	cfg := config.LoadConfig()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider := initializeTelemetry(ctx, cfg)

	seed := seedCatalog(ctx, cfg)
	memStore, err := store.NewMemoryStore(store.Config{
		ReservationTTL:    cfg.ReservationTTL,
		LowStockThreshold: cfg.LowStockThreshold,
	}, seed)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create inventory store")
	}
	log.Info().Int("products", len(seed)).Msg("Inventory store seeded")

	var metrics *telemetry.InventoryMetrics
	if provider != nil {
		metrics, err = telemetry.NewInventoryMetrics(provider.Meter(), memStore.Snapshot)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create inventory metrics")
		}
	}

	var publisher *events.Publisher
	if cfg.EventsEnabled() {
		publisher = events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaEventsTopic)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaEventsTopic).Msg("Stock event publisher enabled")
	}

	cacheClient := initializeCache(cfg, memStore)

	wireExpiryHook(memStore, publisher, cacheClient)

	worker := tasks.NewExpiryWorker(memStore, cfg.ExpirySweepInterval)
	go worker.Run(ctx)

	handler := api.NewHandler(memStore, api.HandlerConfig{
		LowStockThreshold: cfg.LowStockThreshold,
		MaxReservationQty: cfg.MaxReservationQty,
	}, metrics, publisher, cacheClient)

	server := startHTTPServer(cfg, handler)

	gracefulShutdown(server, cancel, worker, provider, publisher, cacheClient)
}
