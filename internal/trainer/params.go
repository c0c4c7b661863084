package trainer

import (
	"fmt"

	"github.com/aigoflow/training-service/internal/config"
)

// Params are the knobs handed through to the external backend. Memory
// pressure is mitigated here, not in code: shorter sequences, smaller
// batches, checkpointing and bf16 are all plumbed through verbatim.
type Params struct {
	BatchSize      int     `json:"batch_size"`
	GradAccumSteps int     `json:"grad_accum_steps"`
	MaxSeqLen      int     `json:"max_seq_len"`
	BF16           bool    `json:"bf16"`
	GradCheckpoint bool    `json:"grad_checkpoint"`
	NumGenerations int     `json:"num_generations"`
	LearningRate   float64 `json:"learning_rate"`
	Epochs         int     `json:"epochs"`
	Temperature    float64 `json:"temperature"`
	TopP           float64 `json:"top_p"`
	MaxNewTokens   int     `json:"max_new_tokens"`
}

// ParamsFromConfig seeds run params from service defaults.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		BatchSize:      cfg.BatchSize,
		GradAccumSteps: cfg.GradAccumSteps,
		MaxSeqLen:      cfg.MaxSeqLen,
		BF16:           cfg.BF16,
		GradCheckpoint: cfg.GradCheckpoint,
		NumGenerations: cfg.NumGenerations,
		LearningRate:   cfg.LearningRate,
		Epochs:         cfg.Epochs,
		Temperature:    cfg.Temperature,
		TopP:           cfg.TopP,
		MaxNewTokens:   cfg.MaxNewTokens,
	}
}

// Validate rejects parameter combinations the backend cannot run.
func (p Params) Validate(method string) error {
	if p.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", p.BatchSize)
	}
	if p.GradAccumSteps <= 0 {
		return fmt.Errorf("gradient accumulation steps must be positive, got %d", p.GradAccumSteps)
	}
	if p.Epochs <= 0 {
		return fmt.Errorf("epochs must be positive, got %d", p.Epochs)
	}
	if p.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive, got %g", p.LearningRate)
	}
	if method == "grpo" && p.NumGenerations < 2 {
		return fmt.Errorf("grpo needs at least 2 generations per prompt, got %d", p.NumGenerations)
	}
	return nil
}

// StepMap is the params payload for step dispatch.
func (p Params) StepMap() map[string]interface{} {
	return map[string]interface{}{
		"batch_size":       p.BatchSize,
		"grad_accum_steps": p.GradAccumSteps,
		"max_seq_len":      p.MaxSeqLen,
		"bf16":             p.BF16,
		"grad_checkpoint":  p.GradCheckpoint,
		"learning_rate":    p.LearningRate,
	}
}

// SampleMap is the params payload for completion sampling.
func (p Params) SampleMap() map[string]interface{} {
	return map[string]interface{}{
		"temperature": p.Temperature,
		"top_p":       p.TopP,
		"max_tokens":  p.MaxNewTokens,
	}
}
