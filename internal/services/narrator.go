package services

import (
	"context"

	"github.com/jwebster45206/turn-engine/pkg/chat"
	"github.com/jwebster45206/turn-engine/pkg/narrative"
)

// Narrator renders prose for a resolved turn
type Narrator interface {
	// Narrate sends the prepared messages to the narrator and parses its answer
	Narrate(ctx context.Context, messages []chat.ChatMessage) (*narrative.Narration, error)
}
