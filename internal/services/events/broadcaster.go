package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of turn lifecycle event being broadcast
type EventType string

const (
	EventTypeTurnQueued            EventType = "turn.queued"
	EventTypeTurnProcessing        EventType = "turn.processing"
	EventTypeTurnResolved          EventType = "turn.resolved"
	EventTypeTurnFailed            EventType = "turn.failed"
	EventTypeEnrichmentUnavailable EventType = "enrichment.unavailable"
)

// Event represents a generic event structure
type Event struct {
	Type      EventType              `json:"type"`
	RequestID string                 `json:"request_id,omitempty"`
	GameID    string                 `json:"game_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Channel returns the pub/sub channel for a game's turn lifecycle events
func Channel(gameID uuid.UUID) string {
	return fmt.Sprintf("turn-events:%s", gameID.String())
}

// Broadcaster publishes turn lifecycle events to Redis Pub/Sub
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// PublishTurnQueued publishes a turn.queued event
func (b *Broadcaster) PublishTurnQueued(ctx context.Context, gameID uuid.UUID, requestID string, queueDepth int) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:      EventTypeTurnQueued,
		RequestID: requestID,
		GameID:    gameID.String(),
		Data: map[string]interface{}{
			"status":      "queued",
			"queue_depth": queueDepth,
		},
	})
}

// PublishTurnProcessing publishes a turn.processing event
func (b *Broadcaster) PublishTurnProcessing(ctx context.Context, gameID uuid.UUID, requestID string, actionText string) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:      EventTypeTurnProcessing,
		RequestID: requestID,
		GameID:    gameID.String(),
		Data: map[string]interface{}{
			"status": "processing",
			"action": actionText,
		},
	})
}

// PublishTurnResolved publishes a turn.resolved event
func (b *Broadcaster) PublishTurnResolved(ctx context.Context, gameID uuid.UUID, requestID string, turn int, eventCount int, narrated bool) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:      EventTypeTurnResolved,
		RequestID: requestID,
		GameID:    gameID.String(),
		Data: map[string]interface{}{
			"status":      "resolved",
			"turn":        turn,
			"event_count": eventCount,
			"narrated":    narrated,
		},
	})
}

// PublishTurnFailed publishes a turn.failed event
func (b *Broadcaster) PublishTurnFailed(ctx context.Context, gameID uuid.UUID, requestID string, errorMsg string) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:      EventTypeTurnFailed,
		RequestID: requestID,
		GameID:    gameID.String(),
		Data: map[string]interface{}{
			"status": "failed",
			"error":  errorMsg,
		},
	})
}

// PublishEnrichmentUnavailable tells clients the turn will be narrated
// without enrichment
func (b *Broadcaster) PublishEnrichmentUnavailable(ctx context.Context, gameID uuid.UUID, requestID string, roots []string) error {
	return b.publishToGame(ctx, gameID, Event{
		Type:      EventTypeEnrichmentUnavailable,
		RequestID: requestID,
		GameID:    gameID.String(),
		Data: map[string]interface{}{
			"roots": roots,
		},
	})
}

// publishToGame publishes an event to the game-specific channel
func (b *Broadcaster) publishToGame(ctx context.Context, gameID uuid.UUID, event Event) error {
	channel := Channel(gameID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
		"request_id", event.RequestID,
	)

	return nil
}
