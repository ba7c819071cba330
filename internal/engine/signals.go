package engine

import (
	"github.com/yourusername/betmaster/internal/confidence"
	"github.com/yourusername/betmaster/internal/market"
	"github.com/yourusername/betmaster/internal/models"
	"github.com/yourusername/betmaster/internal/scoreline"
)

// buildSignals derives the confidence ensemble inputs for one
// opportunity from the scoreline grid and the team ratings
func buildSignals(opp market.Opportunity, grid *scoreline.ScoreGrid, rtg models.MatchRatings) confidence.Signals {
	var siblings []float64
	for _, sel := range models.MarketSelections(opp.MarketType) {
		if sel == opp.Selection {
			continue
		}
		siblings = append(siblings, market.ModelProbability(grid, opp.MarketType, sel))
	}

	return confidence.Signals{
		Edge:       confidence.EdgeSignal(opp.Edge),
		Agreement:  confidence.AgreementSignal(opp.ModelProbability, siblings),
		Form:       sideSignal(opp, rtg.Home.RecentForm, rtg.Away.RecentForm),
		HeadToHead: sideSignal(opp, rtg.Home.HeadToHead, rtg.Away.HeadToHead),
		HomeAway:   homeAwaySignal(opp, rtg.Home.HomeAdvantage),
	}
}

// sideSignal picks the rating signal of the side the selection backs.
// Selections with no side, totals and BTTS included, use the mean.
func sideSignal(opp market.Opportunity, home, away float64) float64 {
	if opp.MarketType == models.MarketMatchOdds {
		switch opp.Selection {
		case models.SelectionHome:
			return home
		case models.SelectionAway:
			return away
		}
	}
	return (home + away) / 2
}

// homeAwaySignal maps the home advantage factor, nominally around 1.0,
// onto [0,1] from the picked side's point of view. Sideless selections
// are neutral.
func homeAwaySignal(opp market.Opportunity, homeAdvantage float64) float64 {
	if opp.MarketType != models.MarketMatchOdds {
		return 0.5
	}
	switch opp.Selection {
	case models.SelectionHome:
		return clamp01(homeAdvantage - 0.5)
	case models.SelectionAway:
		return clamp01(1.5 - homeAdvantage)
	default:
		return 0.5
	}
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
