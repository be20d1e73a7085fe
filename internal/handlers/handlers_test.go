package handlers

import (
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jwebster45206/turn-engine/internal/services/events"
	"github.com/jwebster45206/turn-engine/internal/services/queue"
	"github.com/redis/go-redis/v9"
)

type testEnv struct {
	mr          *miniredis.Miniredis
	rdb         *redis.Client
	queue       *queue.TurnQueue
	broadcaster *events.Broadcaster
	logger      *slog.Logger
}

func setupTestRedis(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return &testEnv{
		mr:          mr,
		rdb:         rdb,
		queue:       queue.NewTurnQueue(queue.NewClientFromRedis(rdb, logger)),
		broadcaster: events.NewBroadcaster(rdb, logger),
		logger:      logger,
	}
}
