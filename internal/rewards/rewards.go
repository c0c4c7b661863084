package rewards

import (
	"strings"
)

// Func scores a batch of completions, one scalar per completion, in
// order. Implementations must be pure: scoring a batch is equivalent to
// scoring each completion individually.
type Func func(completions []string, solutions [][]string) []float64

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// wellFormedThink accepts exactly one leading reasoning block followed
// by answer text. Bare '<' inside the reasoning is fine (comparisons
// are common in worked physics); a second open or close tag anywhere
// disqualifies the completion.
func wellFormedThink(completion string) bool {
	c := strings.TrimSpace(completion)
	if !strings.HasPrefix(c, thinkOpen) {
		return false
	}
	return strings.Count(c, thinkOpen) == 1 && strings.Count(c, thinkClose) == 1
}

// ThinkFormat returns 1.0 for completions shaped as a single leading
// reasoning block followed by a trailing answer, 0.0 otherwise.
func ThinkFormat(completions []string, _ [][]string) []float64 {
	scores := make([]float64, len(completions))
	for i, c := range completions {
		if wellFormedThink(c) {
			scores[i] = 1.0
		}
	}
	return scores
}

// Correctness returns 1.0 when any acceptable answer variant occurs
// verbatim in the completion, 0.0 otherwise. Matching folds case; the
// solution lists mix "120 m" and "120 Meters" spellings.
func Correctness(completions []string, solutions [][]string) []float64 {
	scores := make([]float64, len(completions))
	for i, c := range completions {
		if i >= len(solutions) {
			break
		}
		lowered := strings.ToLower(c)
		for _, sol := range solutions[i] {
			if sol != "" && strings.Contains(lowered, strings.ToLower(sol)) {
				scores[i] = 1.0
				break
			}
		}
	}
	return scores
}

// Sum combines reward functions by adding their per-completion scores.
func Sum(funcs ...Func) Func {
	return func(completions []string, solutions [][]string) []float64 {
		total := make([]float64, len(completions))
		for _, f := range funcs {
			for i, s := range f(completions, solutions) {
				total[i] += s
			}
		}
		return total
	}
}
