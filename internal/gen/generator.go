package gen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aigoflow/training-service/internal/dataset"
)

// Generator runs dataset synthesis against the generation API.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

// Problems generates word-problem JSONL for every theme and returns the
// extracted records. Themes that fail are logged and skipped.
func (g *Generator) Problems(ctx context.Context, themes []string) ([]dataset.QARecord, error) {
	var records []dataset.QARecord

	for i, theme := range themes {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		output, err := g.client.Complete(ctx, fmt.Sprintf(ProblemPrompt, theme))
		if err != nil {
			slog.Error("Theme generation failed", "theme", theme, "error", err)
			continue
		}

		extracted, err := dataset.ExtractString(output)
		if err != nil {
			slog.Error("Theme extraction failed", "theme", theme, "error", err)
			continue
		}

		records = append(records, extracted...)
		slog.Info("Theme generated",
			"theme", theme,
			"progress", fmt.Sprintf("%d/%d", i+1, len(themes)),
			"records", len(extracted))
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no records generated across %d themes", len(themes))
	}
	return records, nil
}

// Personas rewrites questions as in-character reasoning/answer records,
// batchSize questions in flight at a time. Invalid generations are
// logged and skipped, never fatal.
func (g *Generator) Personas(ctx context.Context, questions []string, batchSize int) ([]dataset.PersonaRecord, error) {
	if batchSize <= 0 {
		batchSize = 32
	}

	var records []dataset.PersonaRecord

	for start := 0; start < len(questions); start += batchSize {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		end := start + batchSize
		if end > len(questions) {
			end = len(questions)
		}
		batch := questions[start:end]

		slog.Info("Processing batch",
			"batch", start/batchSize+1,
			"total", (len(questions)+batchSize-1)/batchSize)

		results := make([]*dataset.PersonaRecord, len(batch))
		var wg sync.WaitGroup
		for i, q := range batch {
			wg.Add(1)
			go func(i int, question string) {
				defer wg.Done()
				rec, err := g.persona(ctx, question)
				if err != nil {
					slog.Error("Error processing question", "question", question, "error", err)
					return
				}
				results[i] = rec
			}(i, q)
		}
		wg.Wait()

		for _, rec := range results {
			if rec != nil {
				records = append(records, *rec)
			}
		}
	}

	return records, nil
}

func (g *Generator) persona(ctx context.Context, question string) (*dataset.PersonaRecord, error) {
	if question == "" {
		return nil, fmt.Errorf("empty question")
	}

	raw, err := g.client.Complete(ctx, fmt.Sprintf(PersonaPrompt, question))
	if err != nil {
		return nil, err
	}

	cleaned := dataset.CleanFences(raw)

	var rec dataset.PersonaRecord
	if err := json.Unmarshal([]byte(cleaned), &rec); err != nil {
		return nil, fmt.Errorf("generation was not valid JSON: %w", err)
	}
	if rec.Question == "" || rec.Reasoning == "" || rec.Answer == "" {
		return nil, fmt.Errorf("generation missing question, reasoning or answer")
	}
	return &rec, nil
}
