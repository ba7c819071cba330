package market

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/betmaster/internal/models"
	"github.com/yourusername/betmaster/internal/scoreline"
)

// Opportunity is a selection whose model probability exceeds the
// de-margined market view, together with the price it was found at
type Opportunity struct {
	models.MarketProbability
	Price      float64
	SourceID   string
	ObservedAt time.Time
}

// Evaluator turns a scoreline grid and a match's priced books into
// positive-edge opportunities
type Evaluator struct {
	logger *logrus.Logger
}

// NewEvaluator creates a market evaluator
func NewEvaluator(logger *logrus.Logger) *Evaluator {
	return &Evaluator{logger: logger}
}

// Evaluate computes model and fair probabilities for every complete
// book on the match and returns only selections with strictly positive
// edge. Incomplete books are skipped: de-margining needs every price.
func (e *Evaluator) Evaluate(match *models.CanonicalMatch, grid *scoreline.ScoreGrid) []Opportunity {
	var opportunities []Opportunity

	for _, mt := range models.AllMarketTypes() {
		book, ok := match.Book(mt)
		if !ok || !book.IsComplete() {
			continue
		}

		selections := models.MarketSelections(mt)
		prices := make([]float64, len(selections))
		for i, sel := range selections {
			prices[i] = book.Prices[sel].Price
		}
		fair := RemoveMargin(prices)

		for i, sel := range selections {
			model := ModelProbability(grid, mt, sel)
			edge := model - fair[i]
			if edge <= 0 {
				continue
			}

			priced := book.Prices[sel]
			opportunities = append(opportunities, Opportunity{
				MarketProbability: models.MarketProbability{
					MarketType:       mt,
					Selection:        sel,
					ModelProbability: model,
					FairImplied:      fair[i],
					Edge:             edge,
				},
				Price:      priced.Price,
				SourceID:   priced.SourceID,
				ObservedAt: priced.ObservedAt,
			})

			if e.logger != nil {
				e.logger.WithFields(logrus.Fields{
					"match_id":  match.MatchID,
					"market":    mt,
					"selection": sel,
					"model_p":   model,
					"fair_p":    fair[i],
					"edge":      edge,
					"price":     priced.Price,
				}).Debug("Positive edge found")
			}
		}
	}

	return opportunities
}

// ModelProbability sums the grid region corresponding to one selection
func ModelProbability(grid *scoreline.ScoreGrid, mt models.MarketType, sel models.Selection) float64 {
	switch mt {
	case models.MarketMatchOdds:
		switch sel {
		case models.SelectionHome:
			return grid.RegionSum(func(h, a int) bool { return h > a })
		case models.SelectionDraw:
			return grid.RegionSum(func(h, a int) bool { return h == a })
		case models.SelectionAway:
			return grid.RegionSum(func(h, a int) bool { return h < a })
		}
	case models.MarketOverUnder25, models.MarketOverUnder35:
		line := models.TotalLine(mt)
		switch sel {
		case models.SelectionOver:
			return grid.RegionSum(func(h, a int) bool { return float64(h+a) > line })
		case models.SelectionUnder:
			return grid.RegionSum(func(h, a int) bool { return float64(h+a) < line })
		}
	case models.MarketBTTS:
		switch sel {
		case models.SelectionYes:
			return grid.RegionSum(func(h, a int) bool { return h > 0 && a > 0 })
		case models.SelectionNo:
			return grid.RegionSum(func(h, a int) bool { return h == 0 || a == 0 })
		}
	}
	return 0
}
