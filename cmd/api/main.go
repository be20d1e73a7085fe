package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/turn-engine/internal/config"
	"github.com/jwebster45206/turn-engine/internal/handlers"
	"github.com/jwebster45206/turn-engine/internal/logger"
	"github.com/jwebster45206/turn-engine/internal/services"
	"github.com/jwebster45206/turn-engine/internal/services/events"
	"github.com/jwebster45206/turn-engine/internal/services/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Turn Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment)

	startCtx, startCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer startCancel()

	queueClient, err := queue.NewClient(startCtx, cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	turnQueue := queue.NewTurnQueue(queueClient)
	redisClient := queueClient.GetRedisClient()
	broadcaster := events.NewBroadcaster(redisClient, log)

	cache := services.NewRedisServiceFromClient(redisClient, log)
	log.Info("Redis connection established successfully")

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(cache, cfg.ServiceName, log))

	turnsHandler := handlers.NewTurnsHandler(turnQueue, broadcaster, log)
	mux.Handle("/v1/turns", turnsHandler)
	mux.Handle("/v1/turns/", turnsHandler)

	mux.Handle("/v1/events/games/", handlers.NewEventsHandler(redisClient, log))

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handlers.Logger(mux, log),
		ReadTimeout: 15 * time.Second,
		// no WriteTimeout: the SSE endpoint holds connections open
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := queueClient.Close(); err != nil {
		log.Error("Error closing queue client", "error", err)
	}

	log.Info("Server exited")
}
