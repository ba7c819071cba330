package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/betmaster/internal/config"
)

func testConfig() config.ConfidenceConfig {
	return config.ConfidenceConfig{
		Weights: config.ConfidenceWeights{
			Edge:       0.35,
			Agreement:  0.25,
			Form:       0.20,
			HeadToHead: 0.10,
			HomeAway:   0.10,
		},
		LowConfidenceCeiling: 60,
	}
}

func TestEdgeSignal(t *testing.T) {
	assert.Equal(t, 0.0, EdgeSignal(0))
	assert.Equal(t, 0.0, EdgeSignal(-0.05))
	assert.InDelta(t, 0.5, EdgeSignal(0.10), 1e-12)
	assert.Equal(t, 1.0, EdgeSignal(0.20))
	assert.Equal(t, 1.0, EdgeSignal(0.50))
}

func TestAgreementSignal(t *testing.T) {
	// Three-way market: pick 0.5, rivals 0.3 and 0.2
	assert.InDelta(t, 0.75, AgreementSignal(0.5, []float64{0.3, 0.2}), 1e-12)
	// Two-way market reduces to the pick's own mass
	assert.InDelta(t, 0.6, AgreementSignal(0.6, []float64{0.4}), 1e-12)
	// Toss-up three-way sits near the middle
	assert.InDelta(t, 2.0/3.0, AgreementSignal(1.0/3.0, []float64{1.0 / 3.0, 1.0 / 3.0}), 1e-12)
	// No siblings falls back to the pick itself, clamped
	assert.Equal(t, 1.0, AgreementSignal(1.7, nil))
}

func TestScore_FullSignalsGiveHundred(t *testing.T) {
	s := NewScorer(testConfig())
	score := s.Score(Signals{Edge: 1, Agreement: 1, Form: 1, HeadToHead: 1, HomeAway: 1}, false)
	assert.InDelta(t, 100, score, 1e-9)
}

func TestScore_ZeroSignalsGiveZero(t *testing.T) {
	s := NewScorer(testConfig())
	assert.InDelta(t, 0, s.Score(Signals{}, false), 1e-12)
}

func TestScore_MonotonicInEdge(t *testing.T) {
	s := NewScorer(testConfig())

	base := Signals{Agreement: 0.5, Form: 0.5, HeadToHead: 0.5, HomeAway: 0.5}
	prev := -1.0
	for _, edge := range []float64{0, 0.02, 0.05, 0.10, 0.15, 0.20, 0.30} {
		sig := base
		sig.Edge = EdgeSignal(edge)
		score := s.Score(sig, false)
		assert.GreaterOrEqual(t, score, prev, "confidence must not decrease as edge grows")
		prev = score
	}
}

func TestScore_LowConfidenceCeiling(t *testing.T) {
	s := NewScorer(testConfig())

	sig := Signals{Edge: 1, Agreement: 1, Form: 1, HeadToHead: 1, HomeAway: 1}
	assert.InDelta(t, 60, s.Score(sig, true), 1e-12)

	// Scores already under the ceiling are untouched
	low := Signals{Edge: 0.2}
	assert.Equal(t, s.Score(low, false), s.Score(low, true))
}

func TestScore_SignalsClamped(t *testing.T) {
	s := NewScorer(testConfig())

	inflated := s.Score(Signals{Edge: 5, Agreement: 3, Form: 2, HeadToHead: 2, HomeAway: 2}, false)
	assert.InDelta(t, 100, inflated, 1e-9)

	negative := s.Score(Signals{Edge: -1, Agreement: -1}, false)
	assert.Equal(t, 0.0, negative)
}

func TestScore_WeightedCombination(t *testing.T) {
	s := NewScorer(testConfig())

	// Only the edge signal set: score = 0.35 * 100
	assert.InDelta(t, 35, s.Score(Signals{Edge: 1}, false), 1e-9)
	// Only agreement: 0.25 * 100
	assert.InDelta(t, 25, s.Score(Signals{Agreement: 1}, false), 1e-9)
}
