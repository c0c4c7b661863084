package chat

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Upstream datasets name their turn fields inconsistently. The mapper
// below reshapes the shapes we have actually seen into role/content
// conversations before anything renders them.

// RawTurn is a single turn in whatever field naming the source uses.
type RawTurn struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
	From    string `json:"from,omitempty"`
	Value   string `json:"value,omitempty"`
}

// roleAliases maps foreign speaker names onto canonical roles.
var roleAliases = map[string]Role{
	"system":    RoleSystem,
	"user":      RoleUser,
	"human":     RoleUser,
	"assistant": RoleAssistant,
	"gpt":       RoleAssistant,
	"model":     RoleAssistant,
}

// Canonicalize reshapes a list of raw turns into a valid Conversation.
// Turns with no recognizable role or no content are an error, matching
// the renderer's refusal of malformed input.
func Canonicalize(turns []RawTurn) (Conversation, error) {
	if len(turns) == 0 {
		return nil, fmt.Errorf("no turns to canonicalize")
	}

	conv := make(Conversation, 0, len(turns))
	for i, t := range turns {
		speaker := t.Role
		if speaker == "" {
			speaker = t.From
		}
		role, ok := roleAliases[strings.ToLower(strings.TrimSpace(speaker))]
		if !ok {
			return nil, fmt.Errorf("turn %d: no role attribute (got %q)", i, speaker)
		}

		content := t.Content
		if content == "" {
			content = t.Value
		}
		if content == "" {
			return nil, fmt.Errorf("turn %d: no content", i)
		}

		conv = append(conv, Message{Role: role, Content: content})
	}

	return conv, conv.Validate()
}

// FromPromptCompletion builds a two-turn conversation from a
// prompt/completion record.
func FromPromptCompletion(prompt, completion string) (Conversation, error) {
	conv := Conversation{
		{Role: RoleUser, Content: prompt},
		{Role: RoleAssistant, Content: completion},
	}
	return conv, conv.Validate()
}

// FromReasoningRecord builds an SFT conversation from a
// question/reasoning/answer record. The assistant target wraps the
// reasoning in a think block ahead of the spoken answer.
func FromReasoningRecord(question, reasoning, answer string) (Conversation, error) {
	if question == "" {
		return nil, fmt.Errorf("record has no question")
	}
	if reasoning == "" || answer == "" {
		return nil, fmt.Errorf("record %q has no reasoning or answer", truncate(question, 48))
	}
	conv := Conversation{
		{Role: RoleUser, Content: question},
		{Role: RoleAssistant, Content: ComposeThink(reasoning, answer)},
	}
	return conv, conv.Validate()
}

// CanonicalizeJSON decodes a JSON array of raw turns and canonicalizes it.
func CanonicalizeJSON(data []byte) (Conversation, error) {
	var turns []RawTurn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("failed to parse turns: %w", err)
	}
	return Canonicalize(turns)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
