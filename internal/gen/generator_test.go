package gen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// personaServer answers the chat completions API with a canned
// generation per question: valid fenced JSON, or garbage.
func personaServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Messages)
		prompt := req.Messages[0].Content

		var content string
		switch {
		case strings.Contains(prompt, "How far does the runner go?"):
			content = "```json\n{\"question\": \"How far does the runner go?\", \"reasoning\": \"12 times 10, Morty\", \"answer\": \"120 meters\"}\n```"
		case strings.Contains(prompt, "What is inertia?"):
			content = "Listen Morty, I'm not doing JSON today."
		default:
			t.Errorf("Unexpected prompt: %q", prompt)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
}

func TestPersonasSkipsInvalidGenerations(t *testing.T) {
	server := personaServer(t)
	defer server.Close()

	g := NewGenerator(NewClient(server.URL, "test-key", "test-model"))

	records, err := g.Personas(context.Background(),
		[]string{"How far does the runner go?", "What is inertia?"}, 2)
	require.NoError(t, err)

	// The non-JSON generation is dropped, the valid one survives
	require.Len(t, records, 1)
	assert.Equal(t, "How far does the runner go?", records[0].Question)
	assert.Equal(t, "120 meters", records[0].Answer)
}

func TestProblemsSkipsFailedThemes(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "upstream exploded", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{
					"role":    "assistant",
					"content": `{"question": "A runner moves at 12 m/s for 10 s. How far?", "solutions": ["120 m", "120 meters"]}`,
				}},
			},
		})
	}))
	defer server.Close()

	g := NewGenerator(NewClient(server.URL, "test-key", "test-model"))

	records, err := g.Problems(context.Background(), []string{"Friction force", "Speed = distance / time"})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, []string{"120 m", "120 meters"}, records[0].Solutions)
}
