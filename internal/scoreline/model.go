package scoreline

import (
	"github.com/sirupsen/logrus"

	"github.com/yourusername/betmaster/internal/config"
	"github.com/yourusername/betmaster/internal/models"
)

const fullTimeMinute = 90

// Result is the model's output for one match
type Result struct {
	Grid          *ScoreGrid
	LambdaHome    float64
	LambdaAway    float64
	LowConfidence bool
}

// Model turns team ratings and live match state into a final-score
// probability grid
type Model struct {
	leagueHomeGoals    float64
	leagueAwayGoals    float64
	cutoff             int
	rho                float64
	pressureBoost      float64
	pressureCap        float64
	fatigueStartMinute int
	fatigueMaxDiscount float64
	logger             *logrus.Logger
}

// NewModel creates a scoreline model from engine and model configuration
func NewModel(engineCfg config.EngineConfig, modelCfg config.ModelConfig, logger *logrus.Logger) *Model {
	return &Model{
		leagueHomeGoals:    engineCfg.LeagueHomeGoals,
		leagueAwayGoals:    engineCfg.LeagueAwayGoals,
		cutoff:             modelCfg.GoalCutoff,
		rho:                modelCfg.Rho,
		pressureBoost:      modelCfg.PressureBoost,
		pressureCap:        modelCfg.PressureCap,
		fatigueStartMinute: modelCfg.FatigueStartMinute,
		fatigueMaxDiscount: modelCfg.FatigueMaxDiscount,
		logger:             logger,
	}
}

// Rates derives the expected residual goals for both sides. For live
// matches the full-match rates are rescaled to the remaining time, then
// discounted for fatigue and boosted for the trailing side.
func (m *Model) Rates(match *models.CanonicalMatch, ratings models.MatchRatings) (float64, float64) {
	lambdaHome := m.leagueHomeGoals * ratings.Home.Attack * ratings.Away.Defense * ratings.Home.HomeAdvantage
	lambdaAway := m.leagueAwayGoals * ratings.Away.Attack * ratings.Home.Defense

	if !match.Live {
		return lambdaHome, lambdaAway
	}

	remaining := float64(fullTimeMinute-match.Minute) / float64(fullTimeMinute)
	if remaining < 0 {
		remaining = 0
	}
	lambdaHome *= remaining
	lambdaAway *= remaining

	fatigue := m.fatigueFactor(match.Minute)
	lambdaHome *= fatigue
	lambdaAway *= fatigue

	switch match.TrailingSide() {
	case models.SelectionHome:
		lambdaHome *= m.pressureFactor(match.AwayScore - match.HomeScore)
	case models.SelectionAway:
		lambdaAway *= m.pressureFactor(match.HomeScore - match.AwayScore)
	}

	return lambdaHome, lambdaAway
}

// fatigueFactor discounts scoring rates linearly from the configured
// minute, reaching the full discount at the final whistle
func (m *Model) fatigueFactor(minute int) float64 {
	if minute <= m.fatigueStartMinute || m.fatigueMaxDiscount == 0 {
		return 1
	}
	span := float64(fullTimeMinute - m.fatigueStartMinute)
	frac := float64(minute-m.fatigueStartMinute) / span
	if frac > 1 {
		frac = 1
	}
	return 1 - m.fatigueMaxDiscount*frac
}

// pressureFactor boosts the trailing side's rate per goal of deficit,
// capped so a rout does not produce absurd rates
func (m *Model) pressureFactor(goalsBehind int) float64 {
	boost := float64(goalsBehind) * m.pressureBoost
	if boost > m.pressureCap {
		boost = m.pressureCap
	}
	return 1 + boost
}

// Distribution computes the final-score grid for a match. The result is
// flagged low confidence when the ratings were fallback substitutes.
func (m *Model) Distribution(match *models.CanonicalMatch, ratings models.MatchRatings) *Result {
	lambdaHome, lambdaAway := m.Rates(match, ratings)

	residual := residualGrid(lambdaHome, lambdaAway, m.cutoff, m.rho)
	grid := convolve(residual, match.HomeScore, match.AwayScore)

	if m.logger != nil {
		m.logger.WithFields(logrus.Fields{
			"match_id":    match.MatchID,
			"lambda_home": lambdaHome,
			"lambda_away": lambdaAway,
			"fallback":    ratings.Fallback,
		}).Debug("Computed scoreline distribution")
	}

	return &Result{
		Grid:          grid,
		LambdaHome:    lambdaHome,
		LambdaAway:    lambdaAway,
		LowConfidence: ratings.Fallback,
	}
}
