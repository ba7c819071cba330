package scoreline

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/betmaster/internal/config"
	"github.com/yourusername/betmaster/internal/models"
)

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		LeagueHomeGoals: 1.5,
		LeagueAwayGoals: 1.2,
	}
}

func testModelConfig() config.ModelConfig {
	return config.ModelConfig{
		GoalCutoff:         10,
		Rho:                0,
		PressureBoost:      0.15,
		PressureCap:        0.30,
		FatigueStartMinute: 75,
		FatigueMaxDiscount: 0.10,
	}
}

func neutralRatings() models.MatchRatings {
	return models.MatchRatings{
		Home: models.NeutralRating("home"),
		Away: models.NeutralRating("away"),
	}
}

func liveMatch(minute, homeScore, awayScore int) *models.CanonicalMatch {
	return &models.CanonicalMatch{
		MatchID:     "m1",
		HomeTeam:    "Home",
		AwayTeam:    "Away",
		KickoffTime: time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC),
		Live:        true,
		Minute:      minute,
		HomeScore:   homeScore,
		AwayScore:   awayScore,
		SnapshotAt:  time.Date(2026, 3, 14, 16, 0, 0, 0, time.UTC),
	}
}

func TestPoissonPMF(t *testing.T) {
	assert.InDelta(t, math.Exp(-1.4), PoissonPMF(0, 1.4), 1e-12)
	assert.InDelta(t, 1.4*math.Exp(-1.4), PoissonPMF(1, 1.4), 1e-12)
	assert.Equal(t, 0.0, PoissonPMF(-1, 1.4))
	assert.Equal(t, 1.0, PoissonPMF(0, 0))
}

func TestPoissonCDF_ApproachesOne(t *testing.T) {
	assert.InDelta(t, 1.0, PoissonCDF(100, 2.5), 1e-12)
}

func TestResidualGrid_SumsToOne(t *testing.T) {
	tests := []struct {
		name   string
		lh, la float64
		cutoff int
		rho    float64
	}{
		{"typical", 1.4, 1.1, 10, 0},
		{"with rho", 1.4, 1.1, 10, -0.08},
		{"small cutoff", 3.2, 2.7, 4, 0},
		{"small cutoff with rho", 3.2, 2.7, 4, 0.05},
		{"zero rates", 0, 0, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := residualGrid(tt.lh, tt.la, tt.cutoff, tt.rho)
			sum := 0.0
			for i := range grid {
				for j := range grid[i] {
					sum += grid[i][j]
				}
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
		})
	}
}

func TestResidualGrid_RhoZeroIsIndependentProduct(t *testing.T) {
	grid := residualGrid(1.4, 1.1, 10, 0)

	for i := 0; i <= 10; i++ {
		for j := 0; j <= 10; j++ {
			var pi, pj float64
			if i < 10 {
				pi = PoissonPMF(i, 1.4)
			} else {
				pi = 1 - PoissonCDF(9, 1.4)
			}
			if j < 10 {
				pj = PoissonPMF(j, 1.1)
			} else {
				pj = 1 - PoissonCDF(9, 1.1)
			}
			assert.InDelta(t, pi*pj, grid[i][j], 1e-12)
		}
	}
}

func TestResidualGrid_TailMassFoldedIntoCutoff(t *testing.T) {
	cutoff := 3
	grid := residualGrid(2.0, 1.5, cutoff, 0)

	// Row sums reproduce the truncated marginal, boundary cell holds the tail
	rowSum := 0.0
	for j := 0; j <= cutoff; j++ {
		rowSum += grid[cutoff][j]
	}
	assert.InDelta(t, 1-PoissonCDF(cutoff-1, 2.0), rowSum, 1e-12)
}

func TestDistribution_OverTwoPointFiveViaConvolution(t *testing.T) {
	// Observed 1-1: the match passes 2.5 goals exactly when at least one
	// more goal falls, so P(over) = 1 - P(0 residual goals) = 1 - e^-(lh+la)
	m := NewModel(testEngineConfig(), testModelConfig(), nil)

	match := liveMatch(0, 1, 1)
	match.Live = false // use raw rates; live rescale tested separately
	ratings := neutralRatings()

	// Force the example rates via ratings
	ratings.Home.Attack = 1.4 / 1.5
	ratings.Away.Attack = 1.1 / 1.2

	res := m.Distribution(match, ratings)
	require.InDelta(t, 1.0, res.Grid.Sum(), 1e-9)
	assert.InDelta(t, 1.4, res.LambdaHome, 1e-12)
	assert.InDelta(t, 1.1, res.LambdaAway, 1e-12)

	over := res.Grid.RegionSum(func(h, a int) bool { return h+a > 2 })
	assert.InDelta(t, 1-math.Exp(-2.5), over, 1e-9)
}

func TestRates_LiveRescaleByRemainingTime(t *testing.T) {
	m := NewModel(testEngineConfig(), testModelConfig(), nil)

	lh0, la0 := m.Rates(liveMatch(0, 0, 0), neutralRatings())
	lh45, la45 := m.Rates(liveMatch(45, 0, 0), neutralRatings())

	assert.InDelta(t, lh0/2, lh45, 1e-12)
	assert.InDelta(t, la0/2, la45, 1e-12)
}

func TestRates_FullTimeIsDegenerate(t *testing.T) {
	m := NewModel(testEngineConfig(), testModelConfig(), nil)

	match := liveMatch(90, 2, 1)
	res := m.Distribution(match, neutralRatings())

	assert.InDelta(t, 1.0, res.Grid.Prob(2, 1), 1e-12)
	assert.InDelta(t, 1.0, res.Grid.Sum(), 1e-9)
}

func TestRates_FatigueDiscountAfterStartMinute(t *testing.T) {
	m := NewModel(testEngineConfig(), testModelConfig(), nil)

	lh80, _ := m.Rates(liveMatch(80, 0, 0), neutralRatings())

	remaining := 10.0 / 90.0
	fatigue := 1 - 0.10*(float64(80-75)/float64(90-75))
	assert.InDelta(t, 1.5*remaining*fatigue, lh80, 1e-12)
}

func TestRates_TrailingSidePressureBoost(t *testing.T) {
	m := NewModel(testEngineConfig(), testModelConfig(), nil)

	// Home trailing by one at the hour mark
	lhLevel, laLevel := m.Rates(liveMatch(60, 1, 1), neutralRatings())
	lhTrail, laTrail := m.Rates(liveMatch(60, 0, 1), neutralRatings())

	assert.InDelta(t, lhLevel*1.15, lhTrail, 1e-12)
	assert.InDelta(t, laLevel, laTrail, 1e-12)
}

func TestRates_PressureBoostCapped(t *testing.T) {
	m := NewModel(testEngineConfig(), testModelConfig(), nil)

	// Trailing by three: 3 * 0.15 = 0.45, capped at 0.30
	lhLevel, _ := m.Rates(liveMatch(60, 0, 0), neutralRatings())
	lhTrail, _ := m.Rates(liveMatch(60, 0, 3), neutralRatings())

	assert.InDelta(t, lhLevel*1.30, lhTrail, 1e-12)
}

func TestDistribution_FallbackFlagsLowConfidence(t *testing.T) {
	m := NewModel(testEngineConfig(), testModelConfig(), nil)

	ratings := neutralRatings()
	ratings.Fallback = true

	res := m.Distribution(liveMatch(30, 0, 0), ratings)
	assert.True(t, res.LowConfidence)
}

func TestGrid_ProbOutsideRangeIsZero(t *testing.T) {
	m := NewModel(testEngineConfig(), testModelConfig(), nil)
	res := m.Distribution(liveMatch(30, 2, 0), neutralRatings())

	// Final home goals below the observed score are impossible
	assert.Equal(t, 0.0, res.Grid.Prob(1, 0))
}
