package chat

import "strings"

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// ComposeThink builds an assistant target that carries its reasoning in
// a think block ahead of the spoken answer.
func ComposeThink(reasoning, answer string) string {
	return thinkOpen + reasoning + thinkClose + answer
}

// SplitThink splits a completion into its reasoning block and the
// trailing answer text. ok is false when the completion carries no
// complete think block; the whole text is then returned as the answer.
func SplitThink(completion string) (reasoning, answer string, ok bool) {
	start := strings.Index(completion, thinkOpen)
	if start == -1 {
		return "", completion, false
	}
	rest := completion[start+len(thinkOpen):]
	end := strings.Index(rest, thinkClose)
	if end == -1 {
		return "", completion, false
	}
	reasoning = strings.TrimSpace(rest[:end])
	answer = strings.TrimSpace(rest[end+len(thinkClose):])
	return reasoning, answer, true
}
