// Package trainer runs supervised and group-relative policy
// fine-tuning loops. The backend owns tokenization, gradients and
// weights; this side owns data order, reward scoring and bookkeeping.
package trainer

import (
	"context"
	"log/slog"
	"time"

	"github.com/aigoflow/training-service/internal/models"
	"github.com/aigoflow/training-service/internal/repository"
	"github.com/aigoflow/training-service/internal/tokenizer"
	"github.com/aigoflow/training-service/pkg/client"
)

// Backend is the slice of the backend client the loops need.
type Backend interface {
	SampleN(ctx context.Context, model, input string, n int, params map[string]interface{}) ([]string, error)
	Step(ctx context.Context, model string, req client.StepRequest) (*client.StepResponse, error)
}

// Result summarizes a finished run.
type Result struct {
	Steps      int
	FinalLoss  float64
	MeanReward float64
}

// Trainer executes training loops against a backend, logging every
// step through the repository.
type Trainer struct {
	backend Backend
	repo    repository.Repository
	counter *tokenizer.Counter
}

func New(backend Backend, repo repository.Repository, counter *tokenizer.Counter) *Trainer {
	return &Trainer{
		backend: backend,
		repo:    repo,
		counter: counter,
	}
}

func (t *Trainer) logStep(ctx context.Context, step *models.StepLog) {
	step.Timestamp = time.Now()
	if err := t.repo.Step().LogStep(ctx, step); err != nil {
		slog.Warn("Failed to log step", "run_id", step.RunID, "step", step.Step, "error", err)
	}
}

// fitsBudget applies the sequence-length cap when a counter is wired.
func (t *Trainer) fitsBudget(text string, maxTokens int) bool {
	if t.counter == nil {
		return true
	}
	return t.counter.FitsBudget(text, maxTokens)
}
