package chat

import (
	"strings"
	"testing"
)

func TestRenderConversation(t *testing.T) {
	conv := Conversation{
		{Role: RoleSystem, Content: "You are a physics tutor."},
		{Role: RoleUser, Content: "What is the speed of light?"},
		{Role: RoleAssistant, Content: "About 3e8 m/s."},
	}

	result, err := DefaultTemplate.Render(conv)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// Should contain system message
	if !strings.Contains(result, "<|im_start|>system\nYou are a physics tutor.") {
		t.Error("Missing system message")
	}

	// Should contain user message
	if !strings.Contains(result, "<|im_start|>user\nWhat is the speed of light?") {
		t.Error("Missing user message")
	}

	// Should contain assistant message
	if !strings.Contains(result, "<|im_start|>assistant\nAbout 3e8 m/s.") {
		t.Error("Missing assistant message")
	}

	// Turn order must be preserved
	if strings.Index(result, "system") > strings.Index(result, "user") {
		t.Error("System turn should come before user turn")
	}
}

func TestRenderForGeneration(t *testing.T) {
	conv := Conversation{
		{Role: RoleUser, Content: "A runner covers 120 meters. What is the displacement?"},
	}

	result, err := DefaultTemplate.RenderForGeneration(conv)
	if err != nil {
		t.Fatalf("RenderForGeneration failed: %v", err)
	}

	// Should end with an open assistant turn
	if !strings.HasSuffix(result, "<|im_start|>assistant\n") {
		t.Error("Should end with open assistant turn")
	}
}

func TestRenderForGenerationRejectsAssistantTail(t *testing.T) {
	conv := Conversation{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}

	if _, err := DefaultTemplate.RenderForGeneration(conv); err == nil {
		t.Error("Expected error for conversation already ending with assistant turn")
	}
}

func TestRenderRejectsMalformedConversation(t *testing.T) {
	conv := Conversation{
		{Role: "", Content: "orphan content"},
	}

	if _, err := DefaultTemplate.Render(conv); err == nil {
		t.Error("Expected error for turn without role")
	}
}

func TestCanonicalizeFromValueFields(t *testing.T) {
	turns := []RawTurn{
		{From: "human", Value: "What is AI?"},
		{From: "gpt", Value: "Artificial Intelligence."},
	}

	conv, err := Canonicalize(turns)
	if err != nil {
		t.Fatalf("Canonicalize failed: %v", err)
	}

	if conv[0].Role != RoleUser {
		t.Errorf("Expected user role, got %q", conv[0].Role)
	}
	if conv[1].Role != RoleAssistant {
		t.Errorf("Expected assistant role, got %q", conv[1].Role)
	}
	if conv[1].Content != "Artificial Intelligence." {
		t.Error("Content not carried over from value field")
	}
}

func TestCanonicalizeMissingRole(t *testing.T) {
	turns := []RawTurn{
		{Value: "content with nobody speaking"},
	}

	if _, err := Canonicalize(turns); err == nil {
		t.Error("Expected error for turn without role attribute")
	}
}

func TestFromPromptCompletion(t *testing.T) {
	conv, err := FromPromptCompletion("What is inertia?", "Resistance to changes in motion.")
	if err != nil {
		t.Fatalf("FromPromptCompletion failed: %v", err)
	}
	if len(conv) != 2 || conv[0].Role != RoleUser || conv[1].Role != RoleAssistant {
		t.Errorf("Unexpected conversation shape: %+v", conv)
	}
}

func TestFromReasoningRecord(t *testing.T) {
	conv, err := FromReasoningRecord(
		"How far does the runner go?",
		"Distance is speed times time, 12 times 10.",
		"120 meters, obviously.",
	)
	if err != nil {
		t.Fatalf("FromReasoningRecord failed: %v", err)
	}

	target, ok := conv.LastAssistant()
	if !ok {
		t.Fatal("Missing assistant turn")
	}

	// Target should open with the think block
	if !strings.HasPrefix(target, "<think>") {
		t.Error("Assistant target should start with think block")
	}
	if !strings.Contains(target, "</think>120 meters, obviously.") {
		t.Error("Answer should trail the closed think block")
	}
}

func TestSplitThink(t *testing.T) {
	reasoning, answer, ok := SplitThink("<think>12 times 10 is 120</think> The total displacement of the runner is 120 meters.")
	if !ok {
		t.Fatal("Expected a complete think block")
	}
	if reasoning != "12 times 10 is 120" {
		t.Errorf("Wrong reasoning: %q", reasoning)
	}
	if answer != "The total displacement of the runner is 120 meters." {
		t.Errorf("Wrong answer: %q", answer)
	}
}

func TestSplitThinkWithoutBlock(t *testing.T) {
	_, answer, ok := SplitThink("just an answer, no reasoning")
	if ok {
		t.Error("Should not report a think block")
	}
	if answer != "just an answer, no reasoning" {
		t.Error("Whole text should be returned as the answer")
	}
}
