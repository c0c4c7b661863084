package trainer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aigoflow/training-service/internal/chat"
	"github.com/aigoflow/training-service/internal/dataset"
	"github.com/aigoflow/training-service/internal/models"
	"github.com/aigoflow/training-service/internal/repository"
	"github.com/aigoflow/training-service/internal/rewards"
	"github.com/aigoflow/training-service/pkg/client"
)

// fakeBackend records step dispatches and serves canned completions.
type fakeBackend struct {
	steps       []client.StepRequest
	completions []string
	loss        float64
}

func (f *fakeBackend) SampleN(ctx context.Context, model, input string, n int, params map[string]interface{}) ([]string, error) {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = f.completions[i%len(f.completions)]
	}
	return out, nil
}

func (f *fakeBackend) Step(ctx context.Context, model string, req client.StepRequest) (*client.StepResponse, error) {
	f.steps = append(f.steps, req)
	f.loss *= 0.9
	return &client.StepResponse{ReqID: req.ReqID, Loss: f.loss, TokensIn: 100}, nil
}

// memoryRepo satisfies repository.Repository with in-memory step logs.
type memoryRepo struct {
	stepLogs []*models.StepLog
}

func (m *memoryRepo) Run() repository.RunRepositoryInterface         { return m }
func (m *memoryRepo) Step() repository.StepRepositoryInterface       { return m }
func (m *memoryRepo) Event() repository.EventRepositoryInterface     { return m }
func (m *memoryRepo) Dataset() repository.DatasetRepositoryInterface { return nil }

func (m *memoryRepo) LogRun(ctx context.Context, run *models.TrainingRun) error { return nil }
func (m *memoryRepo) GetRuns(ctx context.Context, limit int) ([]*models.TrainingRun, error) {
	return nil, nil
}
func (m *memoryRepo) LogStep(ctx context.Context, step *models.StepLog) error {
	m.stepLogs = append(m.stepLogs, step)
	return nil
}
func (m *memoryRepo) GetSteps(ctx context.Context, runID string, limit int) ([]*models.StepLog, error) {
	return m.stepLogs, nil
}
func (m *memoryRepo) LogEvent(ctx context.Context, level, code, msg string, meta map[string]interface{}) error {
	return nil
}

func testParams() Params {
	return Params{
		BatchSize:      2,
		GradAccumSteps: 1,
		MaxSeqLen:      0, // cap disabled
		NumGenerations: 4,
		LearningRate:   1e-5,
		Epochs:         1,
		Temperature:    0.9,
		TopP:           1.0,
		MaxNewTokens:   64,
	}
}

func TestSFTDispatchesBatches(t *testing.T) {
	backend := &fakeBackend{loss: 2.0}
	repo := &memoryRepo{}
	tr := New(backend, repo, nil)

	convs := make([]chat.Conversation, 5)
	for i := range convs {
		convs[i] = chat.Conversation{
			{Role: chat.RoleUser, Content: fmt.Sprintf("question %d", i)},
			{Role: chat.RoleAssistant, Content: "<think>r</think>a"},
		}
	}

	result, err := tr.SFT(context.Background(), "run-1", "tiny", chat.DefaultTemplate, convs, testParams())
	require.NoError(t, err)

	// 5 sequences at batch size 2 is 3 optimizer steps
	assert.Equal(t, 3, result.Steps)
	assert.Len(t, backend.steps, 3)
	assert.Len(t, repo.stepLogs, 3)

	for _, step := range backend.steps {
		assert.Equal(t, models.MethodSFT, step.Method)
		assert.NotEmpty(t, step.Sequences)
		assert.Empty(t, step.Completions)
	}
	// Last batch carries the remainder
	assert.Len(t, backend.steps[2].Sequences, 1)
}

func TestSFTRejectsMalformedConversation(t *testing.T) {
	tr := New(&fakeBackend{loss: 1}, &memoryRepo{}, nil)

	convs := []chat.Conversation{{{Role: "", Content: "no role"}}}
	_, err := tr.SFT(context.Background(), "run-1", "tiny", chat.DefaultTemplate, convs, testParams())
	assert.Error(t, err)
}

func TestGRPOScoresAndNormalizes(t *testing.T) {
	backend := &fakeBackend{
		loss: 1.0,
		completions: []string{
			"<think>speed times time</think> The total displacement of the runner is 120 meters.",
			"<think>hmm</think> The runner moved 80 meters.",
			"no reasoning block, 120 m though",
			"<think>sure</think>120m",
		},
	}
	repo := &memoryRepo{}
	tr := New(backend, repo, nil)

	records := []dataset.QARecord{
		{
			Question:  "A runner moves at 12 m/s for 10 s. What is the displacement?",
			Solutions: []string{"120 m", "120.0 m", "120 meters", "120m", "120.0 meters"},
		},
	}

	p := testParams()
	result, err := tr.GRPO(context.Background(), "run-2", "tiny", chat.DefaultTemplate,
		records, rewards.Sum(rewards.ThinkFormat, rewards.Correctness), p)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Steps)
	require.Len(t, backend.steps, 1)

	step := backend.steps[0]
	assert.Equal(t, models.MethodGRPO, step.Method)
	require.Len(t, step.Completions, p.NumGenerations)
	require.Len(t, step.Advantages, p.NumGenerations)

	// Rewards are 2, 1, 1, 2: advantages must center around zero with the
	// higher-reward completions strictly above the lower-reward ones.
	assert.Greater(t, step.Advantages[0], step.Advantages[1])
	assert.Greater(t, step.Advantages[3], step.Advantages[2])
	sum := 0.0
	for _, a := range step.Advantages {
		sum += a
	}
	assert.InDelta(t, 0.0, sum, 1e-9)

	// Mean reward over the group is (2+1+1+2)/4
	require.Len(t, repo.stepLogs, 1)
	assert.InDelta(t, 1.5, repo.stepLogs[0].MeanReward, 1e-9)
	assert.Equal(t, 2.0, repo.stepLogs[0].MaxReward)
	// The backend reports step input tokens; the log carries them as-is
	assert.Equal(t, 100, repo.stepLogs[0].TokensIn)
	assert.InDelta(t, 1.5, result.MeanReward, 1e-9)
}

func TestGRPORequiresGroupOfAtLeastTwo(t *testing.T) {
	tr := New(&fakeBackend{loss: 1}, &memoryRepo{}, nil)

	p := testParams()
	p.NumGenerations = 1
	_, err := tr.GRPO(context.Background(), "run-3", "tiny", chat.DefaultTemplate,
		[]dataset.QARecord{{Question: "q", Solutions: []string{"a"}}},
		rewards.Correctness, p)
	assert.Error(t, err)
}

func TestParamsValidate(t *testing.T) {
	p := testParams()
	require.NoError(t, p.Validate(models.MethodSFT))

	p.BatchSize = 0
	assert.Error(t, p.Validate(models.MethodSFT))
}
