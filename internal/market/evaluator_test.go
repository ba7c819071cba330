package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/betmaster/internal/config"
	"github.com/yourusername/betmaster/internal/models"
	"github.com/yourusername/betmaster/internal/scoreline"
)

func TestRemoveMargin_SumsToOne(t *testing.T) {
	fair := RemoveMargin([]float64{2.10, 3.40, 3.60})

	sum := 0.0
	for _, p := range fair {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-12)

	// Proportional de-margining keeps the price ordering
	assert.Greater(t, fair[0], fair[1])
	assert.Greater(t, fair[1], fair[2])
}

func TestRemoveMargin_ThreeWayExample(t *testing.T) {
	// naive: 1/2.10 + 1/3.40 + 1/3.60 = 1.04818...
	fair := RemoveMargin([]float64{2.10, 3.40, 3.60})

	naiveHome := 1 / 2.10
	naiveSum := 1/2.10 + 1/3.40 + 1/3.60
	assert.InDelta(t, naiveHome/naiveSum, fair[0], 1e-12)
}

func TestRemoveMargin_FairBookUnchanged(t *testing.T) {
	fair := RemoveMargin([]float64{2.0, 2.0})
	assert.InDelta(t, 0.5, fair[0], 1e-12)
	assert.InDelta(t, 0.5, fair[1], 1e-12)
}

func TestOverround(t *testing.T) {
	assert.InDelta(t, 0.0, Overround([]float64{2.0, 2.0}), 1e-12)
	assert.Greater(t, Overround([]float64{1.90, 1.90}), 0.0)
}

func testGrid(t *testing.T, homeScore, awayScore int) *scoreline.ScoreGrid {
	t.Helper()
	m := scoreline.NewModel(
		config.EngineConfig{LeagueHomeGoals: 1.5, LeagueAwayGoals: 1.2},
		config.ModelConfig{GoalCutoff: 10, FatigueStartMinute: 75},
		nil,
	)
	match := &models.CanonicalMatch{
		MatchID:   "m1",
		HomeScore: homeScore,
		AwayScore: awayScore,
	}
	ratings := models.MatchRatings{
		Home: models.NeutralRating("h"),
		Away: models.NeutralRating("a"),
	}
	return m.Distribution(match, ratings).Grid
}

func bookFor(mt models.MarketType, prices map[models.Selection]float64) *models.MarketBook {
	book := &models.MarketBook{MarketType: mt, Prices: make(map[models.Selection]models.PricedSelection)}
	for sel, price := range prices {
		book.Prices[sel] = models.PricedSelection{
			Selection:  sel,
			Price:      price,
			SourceID:   "alpha",
			ObservedAt: time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC),
		}
	}
	return book
}

func TestEvaluate_OnlyPositiveEdgesReturned(t *testing.T) {
	e := NewEvaluator(nil)
	grid := testGrid(t, 0, 0)

	match := &models.CanonicalMatch{
		MatchID: "m1",
		Books: map[models.MarketType]*models.MarketBook{
			models.MarketMatchOdds: bookFor(models.MarketMatchOdds, map[models.Selection]float64{
				models.SelectionHome: 2.10,
				models.SelectionDraw: 3.40,
				models.SelectionAway: 3.60,
			}),
		},
	}

	opportunities := e.Evaluate(match, grid)
	for _, opp := range opportunities {
		assert.Greater(t, opp.Edge, 0.0)
		assert.InDelta(t, opp.ModelProbability-opp.FairImplied, opp.Edge, 1e-12)
		assert.Equal(t, "alpha", opp.SourceID)
	}
}

func TestEvaluate_ModelProbabilitiesPartitionMatchOdds(t *testing.T) {
	grid := testGrid(t, 0, 0)

	home := ModelProbability(grid, models.MarketMatchOdds, models.SelectionHome)
	draw := ModelProbability(grid, models.MarketMatchOdds, models.SelectionDraw)
	away := ModelProbability(grid, models.MarketMatchOdds, models.SelectionAway)

	assert.InDelta(t, 1.0, home+draw+away, 1e-9)
	// Home advantage pushes the home win above the away win
	assert.Greater(t, home, away)
}

func TestEvaluate_TotalsComplementary(t *testing.T) {
	grid := testGrid(t, 0, 0)

	over := ModelProbability(grid, models.MarketOverUnder25, models.SelectionOver)
	under := ModelProbability(grid, models.MarketOverUnder25, models.SelectionUnder)
	assert.InDelta(t, 1.0, over+under, 1e-9)

	over35 := ModelProbability(grid, models.MarketOverUnder35, models.SelectionOver)
	assert.Less(t, over35, over)
}

func TestEvaluate_BTTSComplementary(t *testing.T) {
	grid := testGrid(t, 0, 0)

	yes := ModelProbability(grid, models.MarketBTTS, models.SelectionYes)
	no := ModelProbability(grid, models.MarketBTTS, models.SelectionNo)
	assert.InDelta(t, 1.0, yes+no, 1e-9)
}

func TestEvaluate_BTTSCertainWhenBothHaveScored(t *testing.T) {
	grid := testGrid(t, 1, 1)

	yes := ModelProbability(grid, models.MarketBTTS, models.SelectionYes)
	assert.InDelta(t, 1.0, yes, 1e-12)
}

func TestEvaluate_IncompleteBookSkipped(t *testing.T) {
	e := NewEvaluator(nil)
	grid := testGrid(t, 0, 0)

	match := &models.CanonicalMatch{
		MatchID: "m1",
		Books: map[models.MarketType]*models.MarketBook{
			models.MarketMatchOdds: bookFor(models.MarketMatchOdds, map[models.Selection]float64{
				models.SelectionHome: 2.10,
				models.SelectionDraw: 3.40,
				// away price missing
			}),
		},
	}

	assert.Empty(t, e.Evaluate(match, grid))
}

func TestEvaluate_ClearMispriceProducesOpportunity(t *testing.T) {
	e := NewEvaluator(nil)
	grid := testGrid(t, 0, 0)

	// Generous home price relative to any plausible model view
	match := &models.CanonicalMatch{
		MatchID: "m1",
		Books: map[models.MarketType]*models.MarketBook{
			models.MarketMatchOdds: bookFor(models.MarketMatchOdds, map[models.Selection]float64{
				models.SelectionHome: 4.50,
				models.SelectionDraw: 3.40,
				models.SelectionAway: 3.60,
			}),
		},
	}

	opportunities := e.Evaluate(match, grid)
	require.NotEmpty(t, opportunities)

	var foundHome bool
	for _, opp := range opportunities {
		if opp.Selection == models.SelectionHome {
			foundHome = true
			assert.Equal(t, 4.50, opp.Price)
		}
	}
	assert.True(t, foundHome)
}
