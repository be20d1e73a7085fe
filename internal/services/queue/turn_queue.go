package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/turn-engine/pkg/queue"
	"github.com/redis/go-redis/v9"
)

const (
	requestsKey = "turn-requests"

	// results are kept for clients that poll late
	resultTTL = 24 * time.Hour
)

func resultsKey(gameID uuid.UUID) string {
	return fmt.Sprintf("turn-results:%s", gameID.String())
}

// TurnQueue is the global FIFO of turn requests plus per-game result lists
type TurnQueue struct {
	client *Client
}

func NewTurnQueue(client *Client) *TurnQueue {
	return &TurnQueue{
		client: client,
	}
}

// EnqueueRequest adds a request to the end of the global queue
func (q *TurnQueue) EnqueueRequest(ctx context.Context, req *queue.TurnRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid turn request: %w", err)
	}
	data, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}
	if err := q.client.rdb.RPush(ctx, requestsKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue request: %w", err)
	}
	q.client.logger.Debug("Turn request enqueued",
		"request_id", req.RequestID,
		"game_id", req.GameID.String())
	return nil
}

// DequeueRequest removes and returns the next request.
// Returns nil if queue is empty
func (q *TurnQueue) DequeueRequest(ctx context.Context) (*queue.TurnRequest, error) {
	result, err := q.client.rdb.LPop(ctx, requestsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}
	req, err := queue.FromJSON([]byte(result))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

// BlockingDequeueRequest waits up to timeout for a request. It returns nil
// when the wait times out.
func (q *TurnQueue) BlockingDequeueRequest(ctx context.Context, timeout time.Duration) (*queue.TurnRequest, error) {
	result, err := q.client.rdb.BLPop(ctx, timeout, requestsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}

	req, err := queue.FromJSON([]byte(result[1]))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

// RequeueFront puts a request back at the head of the queue
func (q *TurnQueue) RequeueFront(ctx context.Context, req *queue.TurnRequest) error {
	data, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}
	if err := q.client.rdb.LPush(ctx, requestsKey, data).Err(); err != nil {
		return fmt.Errorf("failed to requeue request: %w", err)
	}
	return nil
}

// RequestQueueDepth returns the number of requests waiting
func (q *TurnQueue) RequestQueueDepth(ctx context.Context) (int, error) {
	count, err := q.client.rdb.LLen(ctx, requestsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get request queue depth: %w", err)
	}
	return int(count), nil
}

// PublishResult appends a processed turn to the game's result list
func (q *TurnQueue) PublishResult(ctx context.Context, res *queue.TurnResult) error {
	data, err := res.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize result: %w", err)
	}
	key := resultsKey(res.GameID)
	pipe := q.client.rdb.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, resultTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish result: %w", err)
	}
	return nil
}

// Results returns up to limit results for a game in completion order without
// removing them. limit <= 0 returns all.
func (q *TurnQueue) Results(ctx context.Context, gameID uuid.UUID, limit int) ([]*queue.TurnResult, error) {
	end := int64(limit - 1)
	if limit <= 0 {
		end = -1
	}
	raw, err := q.client.rdb.LRange(ctx, resultsKey(gameID), 0, end).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	out := make([]*queue.TurnResult, 0, len(raw))
	for i, r := range raw {
		res, err := queue.ResultFromJSON([]byte(r))
		if err != nil {
			return nil, fmt.Errorf("failed to parse result %d: %w", i, err)
		}
		out = append(out, res)
	}
	return out, nil
}
