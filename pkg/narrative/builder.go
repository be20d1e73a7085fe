package narrative

import (
	"encoding/json"
	"fmt"

	"github.com/jwebster45206/turn-engine/pkg/chat"
)

// DefaultHistoryLimit is the chat history window used by New
const DefaultHistoryLimit = 20

// Builder constructs chat messages for the narrator using a fluent interface.
type Builder struct {
	turn         *Context
	narratorName string
	history      []chat.ChatMessage
	historyLimit int
	messages     []chat.ChatMessage
}

// New creates a new builder with default settings.
func New() *Builder {
	return &Builder{
		narratorName: "the narrator",
		historyLimit: DefaultHistoryLimit,
		messages:     make([]chat.ChatMessage, 0),
	}
}

// WithContext sets the prepared turn.
func (b *Builder) WithContext(c Context) *Builder {
	b.turn = &c
	return b
}

// WithNarratorName names the narrator in the system prompt.
func (b *Builder) WithNarratorName(name string) *Builder {
	if name != "" {
		b.narratorName = name
	}
	return b
}

// WithHistory sets prior narrator conversation.
func (b *Builder) WithHistory(history []chat.ChatMessage) *Builder {
	b.history = history
	return b
}

// WithHistoryLimit sets the chat history window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// Build constructs and returns the final message array for the narrator.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if b.turn == nil {
		return nil, fmt.Errorf("turn context is required")
	}

	b.messages = make([]chat.ChatMessage, 0, len(b.history)+4)

	// 1. System prompt
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: fmt.Sprintf(SystemPrompt, b.narratorName),
	})

	// 2. Windowed history
	b.messages = append(b.messages, chat.Window(b.history, b.historyLimit)...)

	// 3. Player action
	if b.turn.Action != "" {
		b.messages = append(b.messages, chat.ChatMessage{Role: chat.ChatRoleUser, Content: b.turn.Action})
	}

	// 4. Turn context
	if err := b.addTurnContext(); err != nil {
		return nil, fmt.Errorf("error building turn context: %w", err)
	}

	// 5. Final instructions
	final := OutputPrompt
	if b.turn.Opponent != "" {
		final = CombatPrompt + "\n\n" + final
	}
	b.messages = append(b.messages, chat.ChatMessage{Role: chat.ChatRoleSystem, Content: final})

	return b.messages, nil
}

func (b *Builder) addTurnContext() error {
	raw, err := json.MarshalIndent(b.turn, "", "  ")
	if err != nil {
		return err
	}
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: fmt.Sprintf(TurnPromptTemplate, raw),
	})
	return nil
}

// BuildMessages is a convenience function for the common case.
func BuildMessages(c Context, history []chat.ChatMessage, historyLimit int) ([]chat.ChatMessage, error) {
	return New().
		WithContext(c).
		WithHistory(history).
		WithHistoryLimit(historyLimit).
		Build()
}
