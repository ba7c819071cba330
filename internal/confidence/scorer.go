// Package confidence scores recommendations with a weighted signal ensemble.
package confidence

import (
	"github.com/yourusername/betmaster/internal/config"
)

// fullEdge is the raw edge that earns the maximum edge signal. Edges
// beyond 20 points are treated as equally strong.
const fullEdge = 0.20

// Signals are the normalized [0,1] inputs to the ensemble
type Signals struct {
	Edge       float64
	Agreement  float64
	Form       float64
	HeadToHead float64
	HomeAway   float64
}

// Scorer combines signals into a confidence score on the 0-100 scale
type Scorer struct {
	weights config.ConfidenceWeights
	ceiling float64
}

// NewScorer creates a scorer from validated configuration. The weights
// are assumed to sum to 1 (enforced at startup).
func NewScorer(cfg config.ConfidenceConfig) *Scorer {
	return &Scorer{
		weights: cfg.Weights,
		ceiling: cfg.LowConfidenceCeiling,
	}
}

// EdgeSignal normalizes a raw edge into [0,1]. Non-positive edges score
// zero; the signal grows linearly and saturates at fullEdge.
func EdgeSignal(edge float64) float64 {
	if edge <= 0 {
		return 0
	}
	if edge >= fullEdge {
		return 1
	}
	return edge / fullEdge
}

// AgreementSignal measures how decisively the model favors a pick over
// the rival selections in its market: one minus the mean model mass of
// the siblings. A pick the grid barely separates from its rivals scores
// near 0.5; a dominant pick approaches 1.
func AgreementSignal(pick float64, siblings []float64) float64 {
	if len(siblings) == 0 {
		return clamp01(pick)
	}
	var sum float64
	for _, s := range siblings {
		sum += s
	}
	return clamp01(1 - sum/float64(len(siblings)))
}

// Score combines the signals into a confidence value in [0,100].
// Recommendations built on fallback ratings are capped at the
// low-confidence ceiling regardless of their raw score.
func (s *Scorer) Score(sig Signals, lowConfidence bool) float64 {
	w := s.weights
	raw := w.Edge*clamp01(sig.Edge) +
		w.Agreement*clamp01(sig.Agreement) +
		w.Form*clamp01(sig.Form) +
		w.HeadToHead*clamp01(sig.HeadToHead) +
		w.HomeAway*clamp01(sig.HomeAway)

	score := raw * 100
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	if lowConfidence && score > s.ceiling {
		score = s.ceiling
	}
	return score
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
