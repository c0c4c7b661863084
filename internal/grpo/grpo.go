// Package grpo implements group-relative reward normalization: each
// completion's reward is standardized against the mean and spread of
// the rewards within its own prompt's group.
package grpo

import "math"

const eps = 1e-4

// Advantages standardizes one prompt group's rewards. A zero-variance
// group (all completions scored alike) yields all-zero advantages, so
// it contributes no gradient signal.
func Advantages(rewards []float64) []float64 {
	if len(rewards) == 0 {
		return nil
	}

	mean := 0.0
	for _, r := range rewards {
		mean += r
	}
	mean /= float64(len(rewards))

	variance := 0.0
	for _, r := range rewards {
		d := r - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(len(rewards)))

	adv := make([]float64, len(rewards))
	if std == 0 {
		return adv
	}
	for i, r := range rewards {
		adv[i] = (r - mean) / (std + eps)
	}
	return adv
}

// GroupStats summarizes a group's rewards for step logging.
type GroupStats struct {
	Mean float64
	Std  float64
	Max  float64
}

// Stats computes the logging summary for one group.
func Stats(rewards []float64) GroupStats {
	if len(rewards) == 0 {
		return GroupStats{}
	}
	s := GroupStats{Max: math.Inf(-1)}
	for _, r := range rewards {
		s.Mean += r
		if r > s.Max {
			s.Max = r
		}
	}
	s.Mean /= float64(len(rewards))
	for _, r := range rewards {
		d := r - s.Mean
		s.Std += d * d
	}
	s.Std = math.Sqrt(s.Std / float64(len(rewards)))
	return s
}
