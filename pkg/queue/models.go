package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/chat"
	"github.com/jwebster45206/turn-engine/pkg/enrichment"
	"github.com/jwebster45206/turn-engine/pkg/events"
	"github.com/jwebster45206/turn-engine/pkg/narrative"
	"github.com/jwebster45206/turn-engine/pkg/state"
)

// TurnRequest asks a worker to resolve one player action against a snapshot
type TurnRequest struct {
	RequestID string             `json:"request_id"`
	GameID    uuid.UUID          `json:"game_id"`
	State     *state.WorldState  `json:"state"`
	Action    action.Action      `json:"action"`
	Ambient   state.Ambient      `json:"ambient"`
	Seed      int64              `json:"seed"` // seeds the turn's roller
	History   []chat.ChatMessage `json:"history,omitempty"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewTurnRequest fills in the request id, game id and enqueue time
func NewTurnRequest(ws *state.WorldState, act action.Action, amb state.Ambient, seed int64) *TurnRequest {
	req := &TurnRequest{
		RequestID:  uuid.NewString(),
		State:      ws,
		Action:     act,
		Ambient:    amb,
		Seed:       seed,
		EnqueuedAt: time.Now().UTC(),
	}
	if ws != nil {
		req.GameID = ws.GameID
	}
	return req
}

// Normalize fills in the request id, game id and enqueue time when a client
// left them out
func (r *TurnRequest) Normalize() {
	if r.RequestID == "" {
		r.RequestID = uuid.NewString()
	}
	if r.State != nil {
		if r.State.GameID == uuid.Nil {
			r.State.GameID = uuid.New()
		}
		if r.GameID == uuid.Nil {
			r.GameID = r.State.GameID
		}
	}
	if r.EnqueuedAt.IsZero() {
		r.EnqueuedAt = time.Now().UTC()
	}
}

// Validate checks the request can be processed
func (r *TurnRequest) Validate() error {
	if r.RequestID == "" {
		return fmt.Errorf("request_id is required")
	}
	if r.State == nil {
		return fmt.Errorf("state is required")
	}
	if r.GameID == uuid.Nil {
		return fmt.Errorf("game_id is required")
	}
	if r.State.GameID != r.GameID {
		return fmt.Errorf("state belongs to game %s, not %s", r.State.GameID, r.GameID)
	}
	return nil
}

// ToJSON converts the request to JSON bytes for Redis
func (r *TurnRequest) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON parses a request from JSON bytes
func FromJSON(data []byte) (*TurnRequest, error) {
	var req TurnRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// TurnResult is what a worker publishes once a turn is processed
type TurnResult struct {
	RequestID           string                    `json:"request_id"`
	GameID              uuid.UUID                 `json:"game_id"`
	Events              json.RawMessage           `json:"events"` // envelope list, see events.MarshalList
	State               *state.WorldState         `json:"state,omitempty"`
	Narration           *narrative.Narration      `json:"narration,omitempty"`
	Enrichment          *enrichment.CascadeResult `json:"enrichment,omitempty"`
	EnrichmentAvailable bool                      `json:"enrichment_available"`
	Error               string                    `json:"error,omitempty"`
	CompletedAt         time.Time                 `json:"completed_at"`
}

// SetEvents encodes evs into the result
func (r *TurnResult) SetEvents(evs []events.Event) error {
	raw, err := events.MarshalList(evs)
	if err != nil {
		return fmt.Errorf("failed to encode turn events: %w", err)
	}
	r.Events = raw
	return nil
}

// DecodeEvents returns the typed events in order
func (r *TurnResult) DecodeEvents() ([]events.Event, error) {
	if len(r.Events) == 0 {
		return nil, nil
	}
	return events.UnmarshalList(r.Events)
}

// ToJSON converts the result to JSON bytes for Redis
func (r *TurnResult) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// ResultFromJSON parses a result from JSON bytes
func ResultFromJSON(data []byte) (*TurnResult, error) {
	var res TurnResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
