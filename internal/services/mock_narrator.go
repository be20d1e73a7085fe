package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/turn-engine/pkg/chat"
	"github.com/jwebster45206/turn-engine/pkg/narrative"
)

// MockNarrator is a mock implementation of Narrator for testing and for
// running the worker without a provider
type MockNarrator struct {
	NarrateFunc func(ctx context.Context, messages []chat.ChatMessage) (*narrative.Narration, error)

	// Track calls for testing
	NarrateCalls [][]chat.ChatMessage

	mu sync.Mutex // protects all fields above
}

// Ensure MockNarrator implements Narrator interface
var _ Narrator = (*MockNarrator)(nil)

// NewMockNarrator creates a new mock narrator
func NewMockNarrator() *MockNarrator {
	return &MockNarrator{
		NarrateCalls: make([][]chat.ChatMessage, 0),
	}
}

// Narrate mocks narration
func (m *MockNarrator) Narrate(ctx context.Context, messages []chat.ChatMessage) (*narrative.Narration, error) {
	m.mu.Lock()
	m.NarrateCalls = append(m.NarrateCalls, messages)
	fn := m.NarrateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages)
	}

	// Default behavior - echo the player's last action
	var last string
	for _, msg := range messages {
		if msg.Role == chat.ChatRoleUser {
			last = msg.Content
		}
	}
	return &narrative.Narration{
		Narrative:        "You " + last + ". The world answers in kind.",
		SuggestedActions: []string{"look around"},
	}, nil
}

// CallCount returns how many times Narrate was called
func (m *MockNarrator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.NarrateCalls)
}

// Reset clears all call tracking
func (m *MockNarrator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NarrateCalls = make([][]chat.ChatMessage, 0)
}
