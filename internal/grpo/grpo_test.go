package grpo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvantagesZeroVariance(t *testing.T) {
	adv := Advantages([]float64{1, 1, 1, 1})
	assert.Equal(t, []float64{0, 0, 0, 0}, adv)
}

func TestAdvantagesCenteredAndScaled(t *testing.T) {
	adv := Advantages([]float64{0, 2})

	require.Len(t, adv, 2)
	// Advantages are centered
	assert.InDelta(t, 0.0, adv[0]+adv[1], 1e-9)
	// Below-mean reward maps negative, above-mean positive
	assert.Less(t, adv[0], 0.0)
	assert.Greater(t, adv[1], 0.0)
	// mean 1, std 1: magnitudes approach 1 up to the epsilon guard
	assert.InDelta(t, 1.0, math.Abs(adv[0]), 1e-3)
}

func TestAdvantagesEmptyGroup(t *testing.T) {
	assert.Nil(t, Advantages(nil))
}

func TestStats(t *testing.T) {
	s := Stats([]float64{0, 1, 2, 1})

	assert.InDelta(t, 1.0, s.Mean, 1e-9)
	assert.InDelta(t, math.Sqrt(0.5), s.Std, 1e-9)
	assert.Equal(t, 2.0, s.Max)
}
