package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/turn-engine/internal/config"
	"github.com/jwebster45206/turn-engine/internal/logger"
	"github.com/jwebster45206/turn-engine/internal/services"
	"github.com/jwebster45206/turn-engine/internal/services/events"
	"github.com/jwebster45206/turn-engine/internal/services/queue"
	"github.com/jwebster45206/turn-engine/internal/telemetry"
	"github.com/jwebster45206/turn-engine/internal/turn"
	"github.com/jwebster45206/turn-engine/internal/worker"
	"github.com/jwebster45206/turn-engine/pkg/cascade"
	"github.com/jwebster45206/turn-engine/pkg/enrichment"
	"github.com/jwebster45206/turn-engine/pkg/enrichment/modules"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Turn Engine Worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL,
		"llm_provider", cfg.LLMProvider,
		"merge_mode", cfg.CascadeMergeMode)

	shutdownTracing, err := telemetry.Setup(context.Background(), cfg)
	if err != nil {
		log.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Error("Error flushing traces", "error", err)
		}
	}()

	// Initialize queue service
	startCtx, startCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer startCancel()

	queueClient, err := queue.NewClient(startCtx, cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			log.Error("Error closing queue client", "error", err)
		}
	}()
	turnQueue := queue.NewTurnQueue(queueClient)
	log.Info("Queue service initialized successfully")

	// Enrichment cache
	cache, err := services.NewRedisService(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create cache", "error", err)
		os.Exit(1)
	}
	if err := cache.WaitForConnection(startCtx); err != nil {
		log.Error("Failed to connect to cache", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := cache.Close(); err != nil {
			log.Error("Error closing cache", "error", err)
		}
	}()

	// Enrichment modules and cascade
	catalog, err := modules.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Error("Failed to load catalog", "error", err, "path", cfg.CatalogPath)
		os.Exit(1)
	}
	// cached results may describe places from an older catalog
	if cfg.FlushCacheOnStart {
		if _, err := cache.Flush(startCtx, modules.CacheKeyPrefix); err != nil {
			log.Warn("Failed to flush enrichment cache", "error", err)
		}
	}

	opts := catalog.Options()
	opts.Cache = cache
	opts.CacheTTL = cfg.EnrichmentCacheTTL
	opts.Logger = log

	chain := enrichment.NewChainManager(log)
	modules.Register(chain, opts)

	mode, err := cfg.MergeMode()
	if err != nil {
		log.Error("Invalid cascade merge mode", "error", err)
		os.Exit(1)
	}
	trigger := cascade.New(chain, log,
		cascade.WithMergeMode(mode),
		cascade.WithTimeout(cfg.CascadeTimeout))
	log.Info("Enrichment modules registered", "modules", chain.ModuleIDs())

	// Narrator
	var narrator services.Narrator
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		narrator = services.NewAnthropicNarrator(cfg.AnthropicAPIKey, cfg.ModelName, log)
		log.Info("Using Anthropic narrator", "model", cfg.ModelName)
	default:
		narrator = services.NewMockNarrator()
		log.Info("Using mock narrator")
	}
	quota := services.NewRedisQuota(queueClient.GetRedisClient(), cfg.NarratorQuota, cfg.NarratorQuotaInterval)
	narrator = services.NewQuotaNarrator(narrator, quota, cfg.LLMProvider, log)

	redisClient := queueClient.GetRedisClient()
	processor := turn.NewProcessor(trigger, log,
		turn.WithNarrator(narrator),
		turn.WithNarratorName(cfg.NarratorName),
		turn.WithHistoryLimit(cfg.HistoryLimit),
		turn.WithBroadcaster(events.NewBroadcaster(redisClient, log)))
	log.Info("Turn processor initialized successfully")

	// Create and start worker with processor
	w := worker.New(turnQueue, processor, redisClient, log, cfg.WorkerID,
		worker.WithEventStream(queue.NewEventStream(queueClient)))

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := w.Start(); err != nil {
			log.Error("Worker error", "error", err)
		}
	}()

	log.Info("Worker started, waiting for turn requests...", "worker_id", w.ID())

	// Wait for shutdown signal
	<-quit
	log.Info("Worker shutdown signal received")

	w.Stop()

	// Give worker time to finish current turn
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		log.Warn("Worker did not stop in time")
	}

	log.Info("Worker exited")
}
