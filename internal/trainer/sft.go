package trainer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aigoflow/training-service/internal/chat"
	"github.com/aigoflow/training-service/internal/models"
	"github.com/aigoflow/training-service/pkg/client"
)

// SFT runs a supervised fine-tuning loop: render every conversation
// through the chat template, drop over-budget sequences, and dispatch
// optimizer steps one batch at a time.
func (t *Trainer) SFT(ctx context.Context, runID, model string, template chat.Template, convs []chat.Conversation, p Params) (*Result, error) {
	if err := p.Validate(models.MethodSFT); err != nil {
		return nil, err
	}

	sequences := make([]string, 0, len(convs))
	skipped := 0
	for i, conv := range convs {
		rendered, err := template.Render(conv)
		if err != nil {
			return nil, fmt.Errorf("conversation %d: %w", i, err)
		}
		if !t.fitsBudget(rendered, p.MaxSeqLen) {
			skipped++
			continue
		}
		sequences = append(sequences, rendered)
	}
	if len(sequences) == 0 {
		return nil, fmt.Errorf("no sequences fit within %d tokens", p.MaxSeqLen)
	}
	if skipped > 0 {
		slog.Warn("Dropped over-budget sequences", "run_id", runID, "skipped", skipped, "max_seq_len", p.MaxSeqLen)
	}

	slog.Info("SFT loop starting",
		"run_id", runID,
		"model", model,
		"sequences", len(sequences),
		"batch_size", p.BatchSize,
		"epochs", p.Epochs)

	result := &Result{}
	stepParams := p.StepMap()

	for epoch := 0; epoch < p.Epochs; epoch++ {
		for start := 0; start < len(sequences); start += p.BatchSize {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			end := start + p.BatchSize
			if end > len(sequences) {
				end = len(sequences)
			}
			batch := sequences[start:end]

			stepStart := time.Now()
			resp, err := t.backend.Step(ctx, model, client.StepRequest{
				RunID:     runID,
				Method:    models.MethodSFT,
				Sequences: batch,
				Params:    stepParams,
			})
			if err != nil {
				return result, fmt.Errorf("step %d failed: %w", result.Steps+1, err)
			}

			result.Steps++
			result.FinalLoss = resp.Loss

			t.logStep(ctx, &models.StepLog{
				RunID:      runID,
				Step:       result.Steps,
				Epoch:      epoch + 1,
				Loss:       resp.Loss,
				TokensIn:   resp.TokensIn,
				DurationMs: float64(time.Since(stepStart).Milliseconds()),
			})

			slog.Debug("SFT step completed",
				"run_id", runID,
				"step", result.Steps,
				"epoch", epoch+1,
				"loss", resp.Loss,
				"batch", len(batch))
		}
	}

	slog.Info("SFT loop finished",
		"run_id", runID,
		"steps", result.Steps,
		"final_loss", result.FinalLoss)

	return result, nil
}
