package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) (*RedisService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))

	svc := NewRedisServiceFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), logger)
	t.Cleanup(func() { _ = svc.Close() })
	return svc, mr
}

func TestRedisService_Basic(t *testing.T) {
	redisService, mr := setupTestRedis(t)
	ctx := context.Background()

	if err := redisService.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	key := "test:key:123"
	value := "test value"

	if err := redisService.Set(ctx, key, value, time.Minute); err != nil {
		t.Fatalf("Failed to set key: %v", err)
	}

	retrievedValue, err := redisService.Get(ctx, key)
	if err != nil {
		t.Fatalf("Failed to get key: %v", err)
	}
	if retrievedValue != value {
		t.Errorf("Expected '%s', got '%s'", value, retrievedValue)
	}

	if ttl := mr.TTL(key); ttl != time.Minute {
		t.Errorf("Expected TTL 1m, got %v", ttl)
	}
}

func TestRedisService_Flush(t *testing.T) {
	redisService, mr := setupTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		if err := mr.Set(fmt.Sprintf("enrichment:location:%03d", i), "{}"); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if err := mr.Set("game-lock:abc", "worker-1"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	removed, err := redisService.Flush(ctx, "enrichment:")
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if removed != 250 {
		t.Errorf("Expected 250 keys removed, got %d", removed)
	}
	if !mr.Exists("game-lock:abc") {
		t.Error("Expected keys outside the prefix to survive")
	}

	removed, err = redisService.Flush(ctx, "enrichment:")
	if err != nil || removed != 0 {
		t.Errorf("Expected empty second flush, got %d, %v", removed, err)
	}
}

func TestRedisService_GetMissingKey(t *testing.T) {
	redisService, _ := setupTestRedis(t)

	v, err := redisService.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Expected no error for a missing key, got %v", err)
	}
	if v != "" {
		t.Errorf("Expected empty string, got %q", v)
	}
}

func TestRedisService_Expiry(t *testing.T) {
	redisService, mr := setupTestRedis(t)
	ctx := context.Background()

	if err := redisService.Set(ctx, "short", "lived", time.Second); err != nil {
		t.Fatalf("Failed to set key: %v", err)
	}
	mr.FastForward(2 * time.Second)

	v, err := redisService.Get(ctx, "short")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if v != "" {
		t.Errorf("Expected key to have expired, got %q", v)
	}
}

func TestRedisService_WaitForConnection(t *testing.T) {
	t.Run("available", func(t *testing.T) {
		redisService, _ := setupTestRedis(t)
		if err := redisService.WaitForConnection(context.Background()); err != nil {
			t.Errorf("Expected connection, got %v", err)
		}
	})

	t.Run("gives up", func(t *testing.T) {
		redisService, mr := setupTestRedis(t)
		redisService.maxRetries = 2
		redisService.retryDelay = time.Millisecond
		mr.Close()

		if err := redisService.WaitForConnection(context.Background()); err == nil {
			t.Error("Expected error when redis is down")
		}
	})

	t.Run("context cancelled", func(t *testing.T) {
		redisService, mr := setupTestRedis(t)
		redisService.retryDelay = time.Hour
		mr.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := redisService.WaitForConnection(ctx); err == nil {
			t.Error("Expected error for cancelled context")
		}
	})
}

func TestNewRedisService_BadURL(t *testing.T) {
	if _, err := NewRedisService("not a url", nil); err == nil {
		t.Error("Expected error for invalid redis URL")
	}
}
