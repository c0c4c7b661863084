package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/aigoflow/training-service/internal/chat"
	"github.com/aigoflow/training-service/internal/config"
	"github.com/aigoflow/training-service/internal/dataset"
	"github.com/aigoflow/training-service/internal/hub"
	"github.com/aigoflow/training-service/internal/models"
	"github.com/aigoflow/training-service/internal/repository"
	"github.com/aigoflow/training-service/internal/rewards"
	"github.com/aigoflow/training-service/internal/trainer"
	"github.com/aigoflow/training-service/pkg/client"
)

// TrainingService owns run execution: dataset resolution, method
// dispatch, and run bookkeeping.
type TrainingService struct {
	trainer  *trainer.Trainer
	repo     repository.Repository
	template chat.Template
	cfg      *config.Config
	hub      *hub.Client
}

func NewTrainingService(tr *trainer.Trainer, repo repository.Repository, template chat.Template, cfg *config.Config) *TrainingService {
	return &TrainingService{
		trainer:  tr,
		repo:     repo,
		template: template,
		cfg:      cfg,
		hub:      hub.NewClient(cfg.HubURL, cfg.HubToken),
	}
}

// ProcessRun executes one training run end to end and logs its outcome.
func (s *TrainingService) ProcessRun(ctx context.Context, job client.RunJob, source, workerID string) (result *client.RunResult, err error) {
	start := time.Now()

	if job.RunID == "" {
		job.RunID = ulid.Make().String()
	}
	traceID := job.TraceID
	if traceID == "" {
		traceID = job.RunID
	}

	// Crash recovery at the service boundary: a panicking run is logged
	// and reported, never allowed to take the worker down.
	defer func() {
		if r := recover(); r != nil {
			duration := time.Since(start)
			errStr := fmt.Sprintf("service panic: %v", r)

			s.repo.Run().LogRun(ctx, &models.TrainingRun{
				RunID:      job.RunID,
				TraceID:    traceID,
				WorkerID:   workerID,
				Source:     source,
				Method:     job.Method,
				ModelName:  job.ModelName,
				Dataset:    job.Dataset,
				ParamsJSON: toJSON(job.Params),
				Started:    start,
				DurationMs: float64(duration.Milliseconds()),
				Status:     "panic",
				Error:      errStr,
			})

			result = &client.RunResult{
				RunID:      job.RunID,
				Status:     models.RunFailed,
				DurationMs: duration.Milliseconds(),
				Error:      errStr,
			}
			err = fmt.Errorf("service panic: %v", r)
		}
	}()

	params := s.resolveParams(job.Params)
	model := job.ModelName
	if model == "" {
		model = s.cfg.ModelName
	}

	slog.Info("Training run starting",
		"run_id", job.RunID,
		"method", job.Method,
		"model", model,
		"dataset", job.Dataset)

	var trainResult *trainer.Result
	var trainErr error

	switch job.Method {
	case models.MethodSFT:
		trainResult, trainErr = s.runSFT(ctx, job.RunID, model, job.Dataset, params)
	case models.MethodGRPO:
		trainResult, trainErr = s.runGRPO(ctx, job.RunID, model, job.Dataset, params)
	default:
		trainErr = fmt.Errorf("unknown training method %q", job.Method)
	}

	duration := time.Since(start)
	status := models.RunCompleted
	errStr := ""
	if trainErr != nil {
		status = models.RunFailed
		errStr = trainErr.Error()
	}
	if trainResult == nil {
		trainResult = &trainer.Result{}
	}

	s.repo.Run().LogRun(ctx, &models.TrainingRun{
		RunID:      job.RunID,
		TraceID:    traceID,
		WorkerID:   workerID,
		Source:     source,
		Method:     job.Method,
		ModelName:  model,
		Dataset:    job.Dataset,
		ParamsJSON: toJSON(job.Params),
		Started:    start,
		DurationMs: float64(duration.Milliseconds()),
		Steps:      trainResult.Steps,
		FinalLoss:  trainResult.FinalLoss,
		MeanReward: trainResult.MeanReward,
		Status:     status,
		Error:      errStr,
	})

	result = &client.RunResult{
		RunID:      job.RunID,
		Status:     status,
		Steps:      trainResult.Steps,
		FinalLoss:  trainResult.FinalLoss,
		MeanReward: trainResult.MeanReward,
		DurationMs: duration.Milliseconds(),
		Error:      errStr,
	}
	return result, trainErr
}

// runSFT loads a conversation dataset and runs the supervised loop.
// Records arrive either as message lists or as raw persona rows; the
// persona shape gets its reasoning wrapped into a think-block target.
func (s *TrainingService) runSFT(ctx context.Context, runID, model, datasetRef string, params trainer.Params) (*trainer.Result, error) {
	s.ensureDataset("sft", datasetRef)

	content, _, err := s.repo.Dataset().GetDataset("sft", datasetRef)
	if err != nil {
		return nil, err
	}

	var convs []chat.Conversation
	var dropped int

	chatRecs, err := dataset.ReadJSONL[dataset.ChatRecord](bytes.NewReader(content))
	if err == nil && len(chatRecs) > 0 && chatRecs[0].Messages != nil {
		convs, dropped = dataset.Map(chatRecs, func(rec dataset.ChatRecord) (chat.Conversation, error) {
			return chat.CanonicalizeJSON(rec.Messages)
		})
	} else {
		records, err := dataset.ReadJSONL[dataset.PersonaRecord](bytes.NewReader(content))
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset %s: %w", datasetRef, err)
		}
		convs, dropped = dataset.Map(records, func(rec dataset.PersonaRecord) (chat.Conversation, error) {
			return chat.FromReasoningRecord(rec.Question, rec.Reasoning, rec.Answer)
		})
	}
	if dropped > 0 {
		slog.Warn("Dropped malformed records", "dataset", datasetRef, "dropped", dropped)
	}

	return s.trainer.SFT(ctx, runID, model, s.template, convs, params)
}

// runGRPO loads a question/solutions dataset and runs the policy loop
// with the format and correctness rewards.
func (s *TrainingService) runGRPO(ctx context.Context, runID, model, datasetRef string, params trainer.Params) (*trainer.Result, error) {
	s.ensureDataset("grpo", datasetRef)

	content, _, err := s.repo.Dataset().GetDataset("grpo", datasetRef)
	if err != nil {
		return nil, err
	}

	records, err := dataset.ReadJSONL[dataset.QARecord](bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", datasetRef, err)
	}

	reward := rewards.Sum(rewards.ThinkFormat, rewards.Correctness)
	return s.trainer.GRPO(ctx, runID, model, s.template, records, reward, params)
}

// ensureDataset fetches a missing dataset file from the configured hub
// repo. A fetch failure is not fatal here; the local lookup that
// follows reports the missing dataset.
func (s *TrainingService) ensureDataset(dir, name string) {
	if s.cfg.HubDatasetRepo == "" {
		return
	}
	path := s.repo.Dataset().DatasetPath(dir, name)
	url := s.hub.DatasetURL(s.cfg.HubDatasetRepo, name+".jsonl")
	if err := s.hub.EnsureLocal(url, path); err != nil {
		slog.Warn("Hub dataset fetch failed", "dataset", name, "repo", s.cfg.HubDatasetRepo, "error", err)
	}
}

// resolveParams overlays job params on the service defaults.
func (s *TrainingService) resolveParams(overrides map[string]interface{}) trainer.Params {
	p := trainer.ParamsFromConfig(s.cfg)

	p.BatchSize = getIntParam(overrides, "batch_size", p.BatchSize)
	p.GradAccumSteps = getIntParam(overrides, "grad_accum_steps", p.GradAccumSteps)
	p.MaxSeqLen = getIntParam(overrides, "max_seq_len", p.MaxSeqLen)
	p.BF16 = getBoolParam(overrides, "bf16", p.BF16)
	p.GradCheckpoint = getBoolParam(overrides, "grad_checkpoint", p.GradCheckpoint)
	p.NumGenerations = getIntParam(overrides, "num_generations", p.NumGenerations)
	p.LearningRate = getFloatParam(overrides, "learning_rate", p.LearningRate)
	p.Epochs = getIntParam(overrides, "epochs", p.Epochs)
	p.Temperature = getFloatParam(overrides, "temperature", p.Temperature)
	p.TopP = getFloatParam(overrides, "top_p", p.TopP)
	p.MaxNewTokens = getIntParam(overrides, "max_tokens", p.MaxNewTokens)

	return p
}

// GetRuns retrieves run logs through the repository.
func (s *TrainingService) GetRuns(ctx context.Context, limit int) ([]*models.TrainingRun, error) {
	return s.repo.Run().GetRuns(ctx, limit)
}

// GetSteps retrieves step logs for one run.
func (s *TrainingService) GetSteps(ctx context.Context, runID string, limit int) ([]*models.StepLog, error) {
	return s.repo.Step().GetSteps(ctx, runID, limit)
}

// GetRepository returns the repository for use by other services.
func (s *TrainingService) GetRepository() repository.Repository {
	return s.repo
}

func toJSON(v interface{}) string {
	if v == nil {
		return "{}"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func getIntParam(params map[string]interface{}, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		if val, ok := v.(float64); ok {
			return int(val)
		}
		if val, ok := v.(int); ok {
			return val
		}
	}
	return defaultVal
}

func getFloatParam(params map[string]interface{}, key string, defaultVal float64) float64 {
	if v, ok := params[key]; ok {
		if val, ok := v.(float64); ok {
			return val
		}
		if val, ok := v.(int); ok {
			return float64(val)
		}
	}
	return defaultVal
}

func getBoolParam(params map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if val, ok := v.(bool); ok {
			return val
		}
	}
	return defaultVal
}
