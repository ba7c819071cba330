// Package staking sizes stakes with a clipped Kelly criterion and a
// confidence-keyed bracket table.
package staking

import (
	"github.com/shopspring/decimal"

	"github.com/yourusername/betmaster/internal/config"
	"github.com/yourusername/betmaster/internal/models"
)

// Sizer computes stake recommendations. The bracket table is validated
// fatally at startup, so lookups here can assume it is well-formed.
type Sizer struct {
	cfg config.StakingConfig
}

// NewSizer creates a stake sizer from validated configuration
func NewSizer(cfg config.StakingConfig) *Sizer {
	return &Sizer{cfg: cfg}
}

// KellyFraction returns the Kelly criterion f* = (bp - q) / b for a
// decimal price, clipped to the configured maximum fraction. A selection
// with no advantage at the offered price returns 0.
func (s *Sizer) KellyFraction(p, price float64) float64 {
	b := price - 1
	if b <= 0 || p <= 0 {
		return 0
	}

	q := 1 - p
	f := (b*p - q) / b
	if f <= 0 {
		return 0
	}
	if f > s.cfg.KellyMaxFraction {
		f = s.cfg.KellyMaxFraction
	}
	return f
}

// Recommend sizes a stake for a selection with the given model
// probability, price and confidence score. The raw Kelly stake is
// clamped into the confidence bracket's range, then capped by the
// absolute per-bet ceiling. A zero Kelly fraction always yields a zero
// stake: brackets never force money onto a no-edge selection.
func (s *Sizer) Recommend(p, price, conf float64) models.StakeRecommendation {
	rec := models.StakeRecommendation{
		Amount:   decimal.Zero,
		Currency: s.cfg.Currency,
	}

	f := s.KellyFraction(p, price)
	if f == 0 {
		return rec
	}
	rec.KellyFraction = f

	bracket, ok := s.bracketFor(conf)
	if !ok {
		return rec
	}
	rec.BracketMin = decimal.NewFromFloat(bracket.StakeMin)
	rec.BracketMax = decimal.NewFromFloat(bracket.StakeMax)

	stake := s.cfg.Bankroll * f
	if stake < bracket.StakeMin {
		stake = bracket.StakeMin
	}
	if stake > bracket.StakeMax {
		stake = bracket.StakeMax
	}
	if stake > s.cfg.MaxStakePerBet {
		stake = s.cfg.MaxStakePerBet
	}

	rec.Amount = decimal.NewFromFloat(stake).Round(2)
	return rec
}

// bracketFor returns the highest bracket whose threshold the confidence
// clears. Confidence below every bracket means no stake.
func (s *Sizer) bracketFor(conf float64) (config.StakeBracket, bool) {
	var (
		best  config.StakeBracket
		found bool
	)
	for _, b := range s.cfg.Brackets {
		if conf >= b.MinConfidence {
			best = b
			found = true
		}
	}
	return best, found
}
