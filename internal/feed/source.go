package feed

import (
	"context"
	"time"

	"github.com/yourusername/betmaster/internal/models"
)

// Source supplies odds quotes for the current refresh cycle. A source
// that fails or times out is simply absent from the cycle; the engine
// never blocks on a slow bookmaker.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.OddsQuote, error)
}

// PriceWatcher is implemented by sources that keep observing prices
// between fetches. The gate re-reads the watched price at decision time
// to detect movement since the evaluation snapshot.
type PriceWatcher interface {
	LatestQuote(home, away string, mt models.MarketType, sel models.Selection) (models.OddsQuote, bool)
}

// quoteDTO is the wire format shared by the HTTP and stream sources
type quoteDTO struct {
	HomeTeam    string  `json:"home_team"`
	AwayTeam    string  `json:"away_team"`
	Competition string  `json:"competition"`
	KickoffTime string  `json:"kickoff_time"`
	MarketType  string  `json:"market_type"`
	Selection   string  `json:"selection"`
	Price       float64 `json:"price"`
	Minute      int     `json:"minute"`
	HomeScore   int     `json:"home_score"`
	AwayScore   int     `json:"away_score"`
	Live        bool    `json:"live"`
}

// toQuote converts a wire quote into the domain model. Quotes with
// unknown market types or unparsable kickoffs are dropped by returning
// false.
func (d quoteDTO) toQuote(sourceID string, observedAt time.Time) (models.OddsQuote, bool) {
	mt := models.MarketType(d.MarketType)
	if !models.IsValidMarketType(mt) {
		return models.OddsQuote{}, false
	}
	kickoff, err := time.Parse(time.RFC3339, d.KickoffTime)
	if err != nil {
		return models.OddsQuote{}, false
	}

	return models.OddsQuote{
		SourceID:    sourceID,
		HomeTeam:    d.HomeTeam,
		AwayTeam:    d.AwayTeam,
		Competition: d.Competition,
		KickoffTime: kickoff,
		MarketType:  mt,
		Selection:   models.Selection(d.Selection),
		Price:       d.Price,
		ObservedAt:  observedAt,
		Minute:      d.Minute,
		HomeScore:   d.HomeScore,
		AwayScore:   d.AwayScore,
		Live:        d.Live,
	}, true
}
