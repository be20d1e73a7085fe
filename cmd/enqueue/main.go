// Command enqueue pushes a turn file onto the worker queue and optionally
// waits for its result.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jwebster45206/turn-engine/internal/logger"
	"github.com/jwebster45206/turn-engine/internal/services/events"
	"github.com/jwebster45206/turn-engine/internal/services/queue"
	queuePkg "github.com/jwebster45206/turn-engine/pkg/queue"
)

func main() {
	redisURL := flag.String("redis", envOr("REDIS_URL", "redis://localhost:6379"), "redis URL")
	wait := flag.Duration("wait", 0, "wait this long for the turn result")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <turn.json>\n", os.Args[0])
		os.Exit(2)
	}

	applog := logger.New(os.Stderr, "", slog.LevelWarn)
	ctx := context.Background()

	req, err := queuePkg.LoadTurnFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	client, err := queue.NewClient(ctx, *redisURL, applog)
	if err != nil {
		log.Fatal("Failed to connect to Redis: ", err)
	}
	defer func() { _ = client.Close() }()

	turnQueue := queue.NewTurnQueue(client)
	if err := turnQueue.EnqueueRequest(ctx, req); err != nil {
		log.Fatal(err)
	}

	depth, err := turnQueue.RequestQueueDepth(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if err := events.NewBroadcaster(client.GetRedisClient(), applog).PublishTurnQueued(ctx, req.GameID, req.RequestID, depth); err != nil {
		applog.Warn("Failed to publish queued event", "error", err)
	}

	fmt.Printf("Enqueued turn %s for game %s (queue depth %d)\n", req.RequestID, req.GameID, depth)
	if *wait <= 0 {
		return
	}

	res, err := awaitResult(ctx, turnQueue, req, *wait)
	if err != nil {
		log.Fatal(err)
	}
	out, err := res.ToJSON()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))
}

// awaitResult polls the game's result list for req
func awaitResult(ctx context.Context, q *queue.TurnQueue, req *queuePkg.TurnRequest, wait time.Duration) (*queuePkg.TurnResult, error) {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		results, err := q.Results(ctx, req.GameID, 0)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			if r.RequestID == req.RequestID {
				return r, nil
			}
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("no result for %s after %s", req.RequestID, wait)
		case <-ticker.C:
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
