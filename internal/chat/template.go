package chat

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Template serializes a conversation into the single prompt string a
// model expects. Prefixes and suffixes are model-specific and loaded
// from a prompt_template.json next to the model's other assets.
type Template struct {
	Name            string `json:"name"`
	SystemPrefix    string `json:"system_prefix,omitempty"`
	SystemSuffix    string `json:"system_suffix,omitempty"`
	UserPrefix      string `json:"user_prefix"`
	UserSuffix      string `json:"user_suffix"`
	AssistantPrefix string `json:"assistant_prefix"`
	AssistantSuffix string `json:"assistant_suffix,omitempty"`
}

// DefaultTemplate renders a ChatML-shaped prompt. Small instruct
// checkpoints in this pipeline all understand it.
var DefaultTemplate = Template{
	Name:            "chatml",
	SystemPrefix:    "<|im_start|>system\n",
	SystemSuffix:    "<|im_end|>\n",
	UserPrefix:      "<|im_start|>user\n",
	UserSuffix:      "<|im_end|>\n",
	AssistantPrefix: "<|im_start|>assistant\n",
	AssistantSuffix: "<|im_end|>\n",
}

// LoadTemplate reads a custom template from modelDir, returning nil
// when none exists (passthrough to DefaultTemplate by the caller).
func LoadTemplate(modelDir string) (*Template, error) {
	templatePath := filepath.Join(modelDir, "prompt_template.json")

	if _, err := os.Stat(templatePath); os.IsNotExist(err) {
		slog.Debug("No custom template found, using default", "path", templatePath)
		return nil, nil
	}

	data, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %v", err)
	}

	var template Template
	if err := json.Unmarshal(data, &template); err != nil {
		return nil, fmt.Errorf("failed to parse template: %v", err)
	}

	slog.Info("Loaded prompt template", "name", template.Name, "path", templatePath)
	return &template, nil
}

// Render serializes the full conversation, including assistant turns.
// Used to build SFT training sequences.
func (t Template) Render(conv Conversation) (string, error) {
	if err := conv.Validate(); err != nil {
		return "", fmt.Errorf("cannot render conversation: %w", err)
	}

	var formatted strings.Builder
	for _, m := range conv {
		switch m.Role {
		case RoleSystem:
			formatted.WriteString(t.SystemPrefix)
			formatted.WriteString(m.Content)
			formatted.WriteString(t.SystemSuffix)
		case RoleUser:
			formatted.WriteString(t.UserPrefix)
			formatted.WriteString(m.Content)
			formatted.WriteString(t.UserSuffix)
		case RoleAssistant:
			formatted.WriteString(t.AssistantPrefix)
			formatted.WriteString(m.Content)
			formatted.WriteString(t.AssistantSuffix)
		}
	}
	return formatted.String(), nil
}

// RenderForGeneration serializes the conversation and leaves the prompt
// open at an assistant turn, ready for the model to complete.
func (t Template) RenderForGeneration(conv Conversation) (string, error) {
	if err := conv.Validate(); err != nil {
		return "", fmt.Errorf("cannot render conversation: %w", err)
	}
	if last := conv[len(conv)-1]; last.Role == RoleAssistant {
		return "", fmt.Errorf("generation prompt must not end with an assistant turn")
	}

	rendered, err := t.Render(conv)
	if err != nil {
		return "", err
	}
	return rendered + t.AssistantPrefix, nil
}
