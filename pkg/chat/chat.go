package chat

const (
	ChatRoleUser   = "user"      // Player
	ChatRoleAgent  = "assistant" // Narrator replies
	ChatRoleSystem = "system"    // Engine instructions and turn context
)

// ChatMessage represents a single chat message in the conversation sent to
// the narrator.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Window returns the last limit messages. A limit <= 0 returns none.
func Window(history []ChatMessage, limit int) []ChatMessage {
	if limit <= 0 || len(history) == 0 {
		return nil
	}
	if len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}

// SplitSystem separates system messages from the conversation. Some
// providers take the system prompt as a separate field.
func SplitSystem(msgs []ChatMessage) (system []string, conversation []ChatMessage) {
	for _, m := range msgs {
		if m.Role == ChatRoleSystem {
			system = append(system, m.Content)
			continue
		}
		conversation = append(conversation, m)
	}
	return system, conversation
}
