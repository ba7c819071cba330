package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/betmaster/internal/market"
	"github.com/yourusername/betmaster/internal/models"
)

func matchOddsOpp(sel models.Selection) market.Opportunity {
	return market.Opportunity{
		MarketProbability: models.MarketProbability{
			MarketType: models.MarketMatchOdds,
			Selection:  sel,
		},
	}
}

func TestSideSignal_FollowsPickedSide(t *testing.T) {
	assert.Equal(t, 0.8, sideSignal(matchOddsOpp(models.SelectionHome), 0.8, 0.2))
	assert.Equal(t, 0.2, sideSignal(matchOddsOpp(models.SelectionAway), 0.8, 0.2))
	assert.InDelta(t, 0.5, sideSignal(matchOddsOpp(models.SelectionDraw), 0.8, 0.2), 1e-12)

	totals := market.Opportunity{
		MarketProbability: models.MarketProbability{
			MarketType: models.MarketOverUnder25,
			Selection:  models.SelectionOver,
		},
	}
	assert.InDelta(t, 0.5, sideSignal(totals, 0.8, 0.2), 1e-12)
}

func TestHomeAwaySignal(t *testing.T) {
	// Strong home advantage favors a home pick and penalizes an away pick
	assert.InDelta(t, 0.7, homeAwaySignal(matchOddsOpp(models.SelectionHome), 1.2), 1e-12)
	assert.InDelta(t, 0.3, homeAwaySignal(matchOddsOpp(models.SelectionAway), 1.2), 1e-12)
	// Neutral venue factor is neutral both ways
	assert.InDelta(t, 0.5, homeAwaySignal(matchOddsOpp(models.SelectionHome), 1.0), 1e-12)

	btts := market.Opportunity{
		MarketProbability: models.MarketProbability{
			MarketType: models.MarketBTTS,
			Selection:  models.SelectionYes,
		},
	}
	assert.Equal(t, 0.5, homeAwaySignal(btts, 1.3))
}
