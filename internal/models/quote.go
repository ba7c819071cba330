package models

import (
	"time"
)

// OddsQuote is a single price observation from one odds source for one
// selection of one market on one match
type OddsQuote struct {
	SourceID    string     `json:"source_id" validate:"required"`
	HomeTeam    string     `json:"home_team" validate:"required"`
	AwayTeam    string     `json:"away_team" validate:"required"`
	Competition string     `json:"competition"`
	KickoffTime time.Time  `json:"kickoff_time" validate:"required"`
	MarketType  MarketType `json:"market_type" validate:"required"`
	Selection   Selection  `json:"selection" validate:"required"`
	Price       float64    `json:"price" validate:"required,gt=1"`
	ObservedAt  time.Time  `json:"observed_at" validate:"required"`

	// Live match state as reported by the source. Minute is 0 and scores
	// are 0-0 for pre-match quotes.
	Minute    int  `json:"minute" validate:"gte=0"`
	HomeScore int  `json:"home_score" validate:"gte=0"`
	AwayScore int  `json:"away_score" validate:"gte=0"`
	Live      bool `json:"live"`
}

// ImpliedProbability returns the naive implied probability 1/price,
// before any margin removal
func (q *OddsQuote) ImpliedProbability() float64 {
	if q.Price <= 1 {
		return 0
	}
	return 1 / q.Price
}

// Age returns how long ago the quote was observed relative to now
func (q *OddsQuote) Age(now time.Time) time.Duration {
	return now.Sub(q.ObservedAt)
}

// PricedSelection is the best available price for one selection after
// aggregation, with the source that offered it
type PricedSelection struct {
	Selection  Selection `json:"selection"`
	Price      float64   `json:"price"`
	SourceID   string    `json:"source_id"`
	ObservedAt time.Time `json:"observed_at"`
}

// MarketBook is a complete priced market on a canonical match: one best
// price per selection. A book is only complete when every selection of
// the market type carries a price.
type MarketBook struct {
	MarketType MarketType                    `json:"market_type"`
	Prices     map[Selection]PricedSelection `json:"prices"`
}

// IsComplete reports whether every selection of the market has a price
func (b *MarketBook) IsComplete() bool {
	sels := MarketSelections(b.MarketType)
	if len(sels) == 0 {
		return false
	}
	for _, s := range sels {
		if _, ok := b.Prices[s]; !ok {
			return false
		}
	}
	return true
}

// BestPrice returns the best price for a selection, false if absent
func (b *MarketBook) BestPrice(s Selection) (PricedSelection, bool) {
	p, ok := b.Prices[s]
	return p, ok
}
