package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jwebster45206/turn-engine/pkg/events"
	"github.com/redis/go-redis/v9"
)

func streamKey(gameID uuid.UUID) string {
	return fmt.Sprintf("game-events:%s", gameID.String())
}

// EventStream is the ordered per-game list of resolved GameEvents that
// external reducers drain
type EventStream struct {
	client *Client
}

func NewEventStream(client *Client) *EventStream {
	return &EventStream{client: client}
}

// Append pushes evs to the end of the game's stream as envelopes, in order
func (s *EventStream) Append(ctx context.Context, gameID uuid.UUID, evs []events.Event) error {
	if len(evs) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(evs))
	for i, ev := range evs {
		data, err := events.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to encode event %d: %w", i, err)
		}
		values = append(values, data)
	}
	if err := s.client.rdb.RPush(ctx, streamKey(gameID), values...).Err(); err != nil {
		return fmt.Errorf("failed to append game events: %w", err)
	}
	s.client.logger.Debug("Game events appended", "game_id", gameID.String(), "count", len(evs))
	return nil
}

// Drain removes and returns every queued event for a game
func (s *EventStream) Drain(ctx context.Context, gameID uuid.UUID) ([]events.Event, error) {
	key := streamKey(gameID)
	pipe := s.client.rdb.TxPipeline()
	lr := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to drain game events: %w", err)
	}
	return decodeAll(lr.Val())
}

// Peek returns up to limit events without removing them. limit <= 0 returns all.
func (s *EventStream) Peek(ctx context.Context, gameID uuid.UUID, limit int) ([]events.Event, error) {
	end := int64(limit - 1)
	if limit <= 0 {
		end = -1
	}
	raw, err := s.client.rdb.LRange(ctx, streamKey(gameID), 0, end).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to peek game events: %w", err)
	}
	return decodeAll(raw)
}

// Depth returns the number of events queued for a game
func (s *EventStream) Depth(ctx context.Context, gameID uuid.UUID) (int, error) {
	count, err := s.client.rdb.LLen(ctx, streamKey(gameID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get stream depth: %w", err)
	}
	return int(count), nil
}

// Clear removes all events for a game
func (s *EventStream) Clear(ctx context.Context, gameID uuid.UUID) error {
	if err := s.client.rdb.Del(ctx, streamKey(gameID)).Err(); err != nil {
		return fmt.Errorf("failed to clear game events: %w", err)
	}
	return nil
}

func decodeAll(raw []string) ([]events.Event, error) {
	out := make([]events.Event, 0, len(raw))
	for i, r := range raw {
		ev, err := events.Unmarshal([]byte(r))
		if err != nil {
			return nil, fmt.Errorf("failed to decode event %d: %w", i, err)
		}
		out = append(out, ev)
	}
	return out, nil
}
