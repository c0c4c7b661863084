package trainer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aigoflow/training-service/internal/chat"
	"github.com/aigoflow/training-service/internal/dataset"
	"github.com/aigoflow/training-service/internal/grpo"
	"github.com/aigoflow/training-service/internal/models"
	"github.com/aigoflow/training-service/internal/rewards"
	"github.com/aigoflow/training-service/pkg/client"
)

// GRPO runs a policy-gradient loop with verifiable rewards: per prompt,
// sample a group of completions, score them, standardize rewards within
// the group, and dispatch the policy update with completions and
// advantages attached.
func (t *Trainer) GRPO(ctx context.Context, runID, model string, template chat.Template, records []dataset.QARecord, reward rewards.Func, p Params) (*Result, error) {
	if err := p.Validate(models.MethodGRPO); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no training records")
	}

	slog.Info("GRPO loop starting",
		"run_id", runID,
		"model", model,
		"prompts", len(records),
		"group_size", p.NumGenerations,
		"batch_size", p.BatchSize,
		"epochs", p.Epochs)

	result := &Result{}
	stepParams := p.StepMap()
	sampleParams := p.SampleMap()

	var rewardSum float64
	var rewardCount int

	for epoch := 0; epoch < p.Epochs; epoch++ {
		for start := 0; start < len(records); start += p.BatchSize {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			end := start + p.BatchSize
			if end > len(records) {
				end = len(records)
			}
			batch := records[start:end]

			stepStart := time.Now()
			var stepLoss float64
			var stepStats []grpo.GroupStats
			var tokensIn int

			for _, rec := range batch {
				conv := chat.Conversation{{Role: chat.RoleUser, Content: rec.Question}}
				prompt, err := template.RenderForGeneration(conv)
				if err != nil {
					return result, fmt.Errorf("prompt render failed: %w", err)
				}
				if !t.fitsBudget(prompt, p.MaxSeqLen) {
					slog.Warn("Prompt over token budget, skipped", "run_id", runID, "max_seq_len", p.MaxSeqLen)
					continue
				}

				completions, err := t.backend.SampleN(ctx, model, prompt, p.NumGenerations, sampleParams)
				if err != nil {
					return result, fmt.Errorf("sampling failed: %w", err)
				}

				solutions := make([][]string, len(completions))
				for i := range solutions {
					solutions[i] = rec.Solutions
				}
				groupRewards := reward(completions, solutions)
				advantages := grpo.Advantages(groupRewards)

				resp, err := t.backend.Step(ctx, model, client.StepRequest{
					RunID:       runID,
					Method:      models.MethodGRPO,
					Prompt:      prompt,
					Completions: completions,
					Advantages:  advantages,
					Params:      stepParams,
				})
				if err != nil {
					return result, fmt.Errorf("policy update failed: %w", err)
				}

				stats := grpo.Stats(groupRewards)
				stepStats = append(stepStats, stats)
				stepLoss = resp.Loss
				tokensIn += resp.TokensIn

				rewardSum += stats.Mean
				rewardCount++
			}

			if len(stepStats) == 0 {
				continue
			}

			var meanReward, rewardStd, maxReward float64
			for _, s := range stepStats {
				meanReward += s.Mean
				rewardStd += s.Std
				if s.Max > maxReward {
					maxReward = s.Max
				}
			}
			meanReward /= float64(len(stepStats))
			rewardStd /= float64(len(stepStats))

			result.Steps++
			result.FinalLoss = stepLoss

			t.logStep(ctx, &models.StepLog{
				RunID:      runID,
				Step:       result.Steps,
				Epoch:      epoch + 1,
				Loss:       stepLoss,
				MeanReward: meanReward,
				RewardStd:  rewardStd,
				MaxReward:  maxReward,
				TokensIn:   tokensIn,
				DurationMs: float64(time.Since(stepStart).Milliseconds()),
			})

			slog.Info("GRPO step completed",
				"run_id", runID,
				"step", result.Steps,
				"epoch", epoch+1,
				"mean_reward", fmt.Sprintf("%.3f", meanReward),
				"max_reward", maxReward,
				"loss", stepLoss)
		}
	}

	if rewardCount > 0 {
		result.MeanReward = rewardSum / float64(rewardCount)
	}

	slog.Info("GRPO loop finished",
		"run_id", runID,
		"steps", result.Steps,
		"mean_reward", fmt.Sprintf("%.3f", result.MeanReward))

	return result, nil
}
