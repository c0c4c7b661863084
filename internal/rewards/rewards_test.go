package rewards

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var displacementSolutions = []string{"120 m", "120.0 m", "120 meters", "120m", "120.0 meters"}

func TestThinkFormat(t *testing.T) {
	tests := []struct {
		name       string
		completion string
		want       float64
	}{
		{
			name:       "single block with trailing answer",
			completion: "<think>12 m/s for 10 s is 120 m</think> The total displacement of the runner is 120 meters.",
			want:       1.0,
		},
		{
			name:       "no think block",
			completion: "The total displacement of the runner is 120 meters.",
			want:       0.0,
		},
		{
			name:       "nested think block",
			completion: "<think>outer <think>inner</think></think> answer",
			want:       0.0,
		},
		{
			name:       "second block after the first closes",
			completion: "<think>a</think> answer <think>b</think> more",
			want:       0.0,
		},
		{
			name:       "comparison sign inside the reasoning",
			completion: "<think>since v < 15 m/s, d = 120 m</think> The answer is 120 meters.",
			want:       1.0,
		},
		{
			name:       "unclosed block",
			completion: "<think>reasoning that never ends",
			want:       0.0,
		},
		{
			name:       "block not at the start",
			completion: "preamble <think>reasoning</think> answer",
			want:       0.0,
		},
		{
			name:       "empty reasoning still counts",
			completion: "<think></think>80 meters",
			want:       1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores := ThinkFormat([]string{tt.completion}, nil)
			assert.Equal(t, []float64{tt.want}, scores)
		})
	}
}

func TestCorrectness(t *testing.T) {
	completions := []string{
		"<think>...</think> The total displacement of the runner is 120 meters.",
		"<think>...</think> The runner ends up 80 meters from the start.",
		"the answer is 120 METERS if you must know",
	}
	solutions := [][]string{
		displacementSolutions,
		displacementSolutions,
		displacementSolutions,
	}

	scores := Correctness(completions, solutions)
	assert.Equal(t, []float64{1.0, 0.0, 1.0}, scores)
}

func TestBatchEqualsIndividual(t *testing.T) {
	completions := []string{
		"<think>a</think>120 m",
		"no block at all",
		"<think>b</think>wrong answer",
	}
	solutions := [][]string{
		displacementSolutions,
		displacementSolutions,
		displacementSolutions,
	}

	for _, f := range []Func{ThinkFormat, Correctness} {
		batch := f(completions, solutions)
		for i := range completions {
			single := f(completions[i:i+1], solutions[i:i+1])
			assert.Equal(t, single[0], batch[i], "batch scoring must match per-item scoring at index %d", i)
		}
		// Identical input yields identical output
		assert.Equal(t, batch, f(completions, solutions))
	}
}

func TestSumCombinesFuncs(t *testing.T) {
	completions := []string{
		"<think>ok</think> The total displacement of the runner is 120 meters.",
		"<think>ok</think> 80 meters",
		"120 m without any reasoning block",
	}
	solutions := [][]string{
		displacementSolutions,
		displacementSolutions,
		displacementSolutions,
	}

	total := Sum(ThinkFormat, Correctness)(completions, solutions)
	assert.Equal(t, []float64{2.0, 1.0, 1.0}, total)
}
