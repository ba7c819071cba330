package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketProbability is the model's view of one selection next to the
// de-margined market view
type MarketProbability struct {
	MarketType       MarketType `json:"market_type"`
	Selection        Selection  `json:"selection"`
	ModelProbability float64    `json:"model_probability"`
	FairImplied      float64    `json:"fair_implied"`
	Edge             float64    `json:"edge"`
}

// StakeRecommendation is the sized stake for an approved opportunity.
// Amounts are decimal; probability math upstream stays float64.
type StakeRecommendation struct {
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	KellyFraction float64         `json:"kelly_fraction"`
	BracketMin    decimal.Decimal `json:"bracket_min"`
	BracketMax    decimal.Decimal `json:"bracket_max"`
}

// Recommendation is one fully evaluated opportunity: a selection with
// positive edge, its confidence score, stake sizing, and the prices the
// decision was made against
type Recommendation struct {
	MatchID     string    `json:"match_id"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	Competition string    `json:"competition"`
	KickoffTime time.Time `json:"kickoff_time"`
	Live        bool      `json:"live"`
	Minute      int       `json:"minute"`

	Market    MarketProbability `json:"market"`
	PriceUsed float64           `json:"price_used"`
	// LatestPrice is the freshest observed price at decision time; the
	// gate rejects when it has drifted too far from PriceUsed.
	LatestPrice float64 `json:"latest_price"`
	SourceID    string  `json:"source_id"`
	Confidence  float64 `json:"confidence"`
	// LowConfidence marks recommendations built on fallback ratings
	LowConfidence bool `json:"low_confidence"`

	Stake      StakeRecommendation `json:"stake"`
	SnapshotAt time.Time           `json:"snapshot_at"`
	CreatedAt  time.Time           `json:"created_at"`
}

// PositionKey identifies an open position for duplicate detection
type PositionKey struct {
	MatchID    string     `json:"match_id"`
	MarketType MarketType `json:"market_type"`
	Selection  Selection  `json:"selection"`
}

// Key returns the recommendation's position identity
func (r *Recommendation) Key() PositionKey {
	return PositionKey{
		MatchID:    r.MatchID,
		MarketType: r.Market.MarketType,
		Selection:  r.Market.Selection,
	}
}
