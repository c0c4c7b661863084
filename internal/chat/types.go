package chat

import "fmt"

// Role represents the different message roles in a conversation
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single role/content turn
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is an ordered sequence of turns
type Conversation []Message

// Validate checks that every turn carries a role and content.
// Downstream template rendering refuses malformed conversations,
// so the check runs before any formatting work.
func (c Conversation) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("conversation is empty")
	}
	for i, m := range c {
		if m.Role == "" {
			return fmt.Errorf("message %d: missing role", i)
		}
		switch m.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			return fmt.Errorf("message %d: unknown role %q", i, m.Role)
		}
		if m.Content == "" {
			return fmt.Errorf("message %d: missing content", i)
		}
	}
	return nil
}

// LastAssistant returns the content of the final assistant turn.
func (c Conversation) LastAssistant() (string, bool) {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].Role == RoleAssistant {
			return c[i].Content, true
		}
	}
	return "", false
}
