package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/turn-engine/internal/services/events"
	"github.com/jwebster45206/turn-engine/internal/services/queue"
	queuePkg "github.com/jwebster45206/turn-engine/pkg/queue"
	"github.com/redis/go-redis/v9"
)

const (
	workerTimeout = 5 * time.Second
	lockTTL       = 30 * time.Second
)

// unlockScript deletes the lock only if we still own it
var unlockScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Processor turns a request into a result
type Processor interface {
	Process(ctx context.Context, req *queuePkg.TurnRequest) (*queuePkg.TurnResult, error)
}

// Worker processes turn requests from the queue
type Worker struct {
	id          string
	queue       *queue.TurnQueue
	processor   Processor
	broadcaster *events.Broadcaster
	stream      *queue.EventStream
	redisClient *redis.Client
	pollTimeout time.Duration
	log         *slog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

type Option func(*Worker)

// WithEventStream appends each turn's events to game-events:<id> once its
// result is stored
func WithEventStream(s *queue.EventStream) Option {
	return func(w *Worker) { w.stream = s }
}

// New creates a new worker instance
func New(turnQueue *queue.TurnQueue, processor Processor, redisClient *redis.Client, log *slog.Logger, workerID string, opts ...Option) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	if log == nil {
		log = slog.Default()
	}

	w := &Worker{
		id:          workerID,
		queue:       turnQueue,
		processor:   processor,
		broadcaster: events.NewBroadcaster(redisClient, log),
		redisClient: redisClient,
		pollTimeout: workerTimeout,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ID returns the worker id used as lock owner
func (w *Worker) ID() string {
	return w.id
}

// Start begins processing requests from the queue
func (w *Worker) Start() error {
	w.log.Info("Worker starting", "worker_id", w.id)

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return nil
		default:
			if err := w.processNextRequest(); err != nil {
				w.log.Error("Error processing request", "error", err, "worker_id", w.id)
				// Continue processing even on error
				select {
				case <-w.ctx.Done():
				case <-time.After(time.Second):
				}
			}
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
}

// processNextRequest pulls the next request from the queue and processes it
func (w *Worker) processNextRequest() error {
	// Block waiting for next request (timeout to check for shutdown)
	ctx, cancel := context.WithTimeout(w.ctx, w.pollTimeout+time.Second)
	defer cancel()

	req, err := w.queue.BlockingDequeueRequest(ctx, w.pollTimeout)
	if err != nil {
		if errors.Is(err, context.Canceled) && w.ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to dequeue request: %w", err)
	}
	if req == nil {
		// Queue is empty or timeout occurred - this is normal
		return nil
	}

	w.log.Info("Received turn request from queue",
		"worker_id", w.id,
		"request_id", req.RequestID,
		"game_id", req.GameID.String(),
	)

	locked, err := w.acquireGameLock(req.GameID)
	if err != nil {
		if rqErr := w.queue.RequeueFront(w.ctx, req); rqErr != nil {
			w.log.Error("Failed to requeue request", "error", rqErr, "request_id", req.RequestID)
		}
		return fmt.Errorf("failed to acquire game lock: %w", err)
	}
	if !locked {
		// Another worker is processing this game. Turns of one game stay
		// serialised; re-queue at the end and move on.
		w.log.Info("Game already locked, re-queueing request",
			"worker_id", w.id,
			"request_id", req.RequestID,
			"game_id", req.GameID.String(),
		)
		if err := w.queue.EnqueueRequest(w.ctx, req); err != nil {
			return fmt.Errorf("failed to re-queue request: %w", err)
		}
		return nil
	}

	defer w.releaseGameLock(req.GameID)
	return w.processRequest(req)
}

func lockKey(gameID uuid.UUID) string {
	return fmt.Sprintf("game-lock:%s", gameID.String())
}

// acquireGameLock attempts to acquire a lock for a game
// Returns true if lock was acquired, false if already locked
func (w *Worker) acquireGameLock(gameID uuid.UUID) (bool, error) {
	return w.redisClient.SetNX(w.ctx, lockKey(gameID), w.id, lockTTL).Result()
}

// releaseGameLock releases the lock for a game
func (w *Worker) releaseGameLock(gameID uuid.UUID) {
	// the worker context may already be cancelled on shutdown
	ctx, cancel := context.WithTimeout(context.WithoutCancel(w.ctx), time.Second)
	defer cancel()

	if err := unlockScript.Run(ctx, w.redisClient, []string{lockKey(gameID)}, w.id).Err(); err != nil {
		w.log.Error("Failed to release game lock", "error", err, "game_id", gameID.String())
	}
}

// processRequest resolves a single turn and publishes its result
func (w *Worker) processRequest(req *queuePkg.TurnRequest) error {
	start := time.Now()

	if err := w.broadcaster.PublishTurnProcessing(w.ctx, req.GameID, req.RequestID, req.Action.Text); err != nil {
		w.log.Error("Failed to publish processing event", "error", err)
		// Don't fail the turn just because event publishing failed
	}

	res, err := w.processor.Process(w.ctx, req)
	if err != nil {
		w.log.Error("Failed to process turn",
			"error", err,
			"request_id", req.RequestID,
			"game_id", req.GameID.String(),
		)
		w.fail(req, err)
		return fmt.Errorf("failed to process turn: %w", err)
	}

	if err := w.queue.PublishResult(w.ctx, res); err != nil {
		w.fail(req, err)
		return fmt.Errorf("failed to publish turn result: %w", err)
	}

	evs, err := res.DecodeEvents()
	if err != nil {
		return fmt.Errorf("failed to decode turn events: %w", err)
	}
	if w.stream != nil {
		if err := w.stream.Append(w.ctx, req.GameID, evs); err != nil {
			w.log.Error("Failed to append turn events", "error", err, "request_id", req.RequestID)
		}
	}
	turn := 0
	if res.State != nil {
		turn = res.State.Turn
	}
	if err := w.broadcaster.PublishTurnResolved(w.ctx, req.GameID, req.RequestID, turn, len(evs), res.Narration != nil); err != nil {
		w.log.Error("Failed to publish resolved event", "error", err)
	}

	w.log.Info("Turn processed successfully",
		"worker_id", w.id,
		"request_id", req.RequestID,
		"turn", turn,
		"enrichment_available", res.EnrichmentAvailable,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// fail records a failed turn on the result list and the event channel
func (w *Worker) fail(req *queuePkg.TurnRequest, cause error) {
	res := &queuePkg.TurnResult{
		RequestID:   req.RequestID,
		GameID:      req.GameID,
		Error:       cause.Error(),
		CompletedAt: time.Now().UTC(),
	}
	if err := w.queue.PublishResult(w.ctx, res); err != nil {
		w.log.Error("Failed to publish failed result", "error", err, "request_id", req.RequestID)
	}
	if err := w.broadcaster.PublishTurnFailed(w.ctx, req.GameID, req.RequestID, cause.Error()); err != nil {
		w.log.Error("Failed to publish failure event", "error", err)
	}
}
