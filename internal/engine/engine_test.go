package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/betmaster/internal/aggregate"
	"github.com/yourusername/betmaster/internal/confidence"
	"github.com/yourusername/betmaster/internal/config"
	"github.com/yourusername/betmaster/internal/feed"
	"github.com/yourusername/betmaster/internal/gate"
	"github.com/yourusername/betmaster/internal/market"
	"github.com/yourusername/betmaster/internal/models"
	"github.com/yourusername/betmaster/internal/repository"
	"github.com/yourusername/betmaster/internal/scoreline"
	"github.com/yourusername/betmaster/internal/staking"
)

type fakeSource struct {
	quotes []models.OddsQuote
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(ctx context.Context) ([]models.OddsQuote, error) {
	return f.quotes, nil
}

// watchingSource keeps reporting a newer price after the cycle fetch,
// the way a stream source does between drains
type watchingSource struct {
	fakeSource
	latest models.OddsQuote
	has    bool
}

func (w *watchingSource) LatestQuote(home, away string, mt models.MarketType, sel models.Selection) (models.OddsQuote, bool) {
	if !w.has || mt != w.latest.MarketType || sel != w.latest.Selection {
		return models.OddsQuote{}, false
	}
	return w.latest, true
}

type fakeRatings struct {
	ratings models.MatchRatings
}

func (f *fakeRatings) MatchRatings(ctx context.Context, home, away string) models.MatchRatings {
	return f.ratings
}

type fakeBetRepo struct {
	mu      sync.Mutex
	records []*models.BetRecord
	pnlErr  error
}

var _ repository.BetRecordRepository = (*fakeBetRepo)(nil)

func (f *fakeBetRepo) Create(ctx context.Context, record *models.BetRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeBetRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.BetRecord, error) {
	return nil, models.ErrNotFound
}

func (f *fakeBetRepo) GetOpenPositions(ctx context.Context) ([]*models.BetRecord, error) {
	return nil, nil
}

func (f *fakeBetRepo) GetRealizedPnL(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	return decimal.Zero, f.pnlErr
}

func (f *fakeBetRepo) CountApprovedSince(ctx context.Context, since time.Time) (int, error) {
	return 0, nil
}

func (f *fakeBetRepo) UpdateSettlement(ctx context.Context, id uuid.UUID, pnl decimal.Decimal, settledAt time.Time) error {
	return nil
}

func (f *fakeBetRepo) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.BetRecord, error) {
	return nil, nil
}

type fakeDecisionRepo struct {
	mu        sync.Mutex
	decisions []*models.GateDecision
}

var _ repository.DecisionRepository = (*fakeDecisionRepo)(nil)

func (f *fakeDecisionRepo) Create(ctx context.Context, recordID uuid.UUID, d *models.GateDecision) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decisions = append(f.decisions, d)
	return nil
}

func (f *fakeDecisionRepo) GetByRecordID(ctx context.Context, recordID uuid.UUID) ([]*models.GateDecision, error) {
	return nil, nil
}

func (f *fakeDecisionRepo) CountByReasonSince(ctx context.Context, since time.Time) (map[string]int, error) {
	return nil, nil
}

type fakeExecutor struct {
	mu      sync.Mutex
	intents []*models.BetIntent
	err     error
}

func (f *fakeExecutor) SubmitIntent(ctx context.Context, intent *models.BetIntent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.intents = append(f.intents, intent)
	return nil
}

func (f *fakeExecutor) Mode() string { return "paper" }

func engineConfig() *config.Config {
	return &config.Config{
		Engine: config.EngineConfig{
			RefreshIntervalSeconds:   10,
			SourceTimeoutSeconds:     2,
			KickoffToleranceMinutes:  15,
			PriceDivergenceTolerance: 0.25,
			MaxMatchMinute:           85,
			LeagueHomeGoals:          1.4,
			LeagueAwayGoals:          1.1,
		},
		Model: config.ModelConfig{
			GoalCutoff:         10,
			FatigueStartMinute: 75,
		},
		Confidence: config.ConfidenceConfig{
			Weights: config.ConfidenceWeights{
				Edge: 0.35, Agreement: 0.25, Form: 0.20, HeadToHead: 0.10, HomeAway: 0.10,
			},
			LowConfidenceCeiling: 40,
			MinDisplay:           10,
		},
		Staking: config.StakingConfig{
			Bankroll:         1000,
			KellyMaxFraction: 0.25,
			Brackets: []config.StakeBracket{
				{MinConfidence: 50, StakeMin: 10, StakeMax: 50},
			},
			MaxStakePerBet: 50,
			Currency:       "EUR",
		},
		Gate: config.GateConfig{
			AutoActThreshold:         60,
			DailyLossLimit:           200,
			SnapshotStalenessSeconds: 30,
			PriceMovementTolerance:   0.05,
			MaxDailyBets:             10,
		},
	}
}

// mispricedQuotes is a complete match odds book where the home side is
// priced far above its model probability
func mispricedQuotes(kickoff, observed time.Time) []models.OddsQuote {
	base := models.OddsQuote{
		SourceID:    "alpha",
		HomeTeam:    "Arsenal",
		AwayTeam:    "Chelsea",
		KickoffTime: kickoff,
		MarketType:  models.MarketMatchOdds,
		ObservedAt:  observed,
	}

	home, draw, away := base, base, base
	home.Selection, home.Price = models.SelectionHome, 4.50
	draw.Selection, draw.Price = models.SelectionDraw, 3.40
	away.Selection, away.Price = models.SelectionAway, 3.60
	return []models.OddsQuote{home, draw, away}
}

func newTestEngine(cfg *config.Config, quotes []models.OddsQuote, betRepo *fakeBetRepo, decRepo *fakeDecisionRepo, exec *fakeExecutor) *Engine {
	return newTestEngineWithSource(cfg, &fakeSource{quotes: quotes}, betRepo, decRepo, exec)
}

func newTestEngineWithSource(cfg *config.Config, src feed.Source, betRepo *fakeBetRepo, decRepo *fakeDecisionRepo, exec *fakeExecutor) *Engine {
	deps := Deps{
		Collector:    feed.NewCollector([]feed.Source{src}, cfg.SourceTimeout(), nil),
		Aggregator:   aggregate.NewAggregator(cfg.KickoffTolerance(), cfg.Engine.PriceDivergenceTolerance, nil),
		Ratings:      &fakeRatings{ratings: models.MatchRatings{Home: models.NeutralRating("Arsenal"), Away: models.NeutralRating("Chelsea")}},
		Model:        scoreline.NewModel(cfg.Engine, cfg.Model, nil),
		Evaluator:    market.NewEvaluator(nil),
		Scorer:       confidence.NewScorer(cfg.Confidence),
		Sizer:        staking.NewSizer(cfg.Staking),
		Gate:         gate.NewGate(cfg.Gate, nil),
		BetRepo:      betRepo,
		DecisionRepo: decRepo,
		Executor:     exec,
	}
	return New(cfg, deps, NewCircuitBreaker(DefaultCircuitBreakerConfig(), nil), nil)
}

func TestRunCycle_ApprovesAndSubmitsMisprice(t *testing.T) {
	cfg := engineConfig()
	betRepo := &fakeBetRepo{}
	decRepo := &fakeDecisionRepo{}
	exec := &fakeExecutor{}

	now := time.Now()
	e := newTestEngine(cfg, mispricedQuotes(now.Add(2*time.Hour), now), betRepo, decRepo, exec)

	require.NoError(t, e.RunCycle(context.Background()))

	require.Len(t, exec.intents, 1)
	assert.Equal(t, models.SelectionHome, exec.intents[0].Selection)
	assert.True(t, exec.intents[0].Stake.Equal(decimal.NewFromInt(50)), "stake %s", exec.intents[0].Stake)

	require.Len(t, betRepo.records, 1)
	record := betRepo.records[0]
	assert.True(t, record.Decision.Approved())
	assert.Equal(t, models.BetStatusSubmitted, record.Status)
	assert.Equal(t, 4.50, record.Price)

	require.Len(t, decRepo.decisions, 1)

	status := e.Status()
	assert.Equal(t, 1, status.DailyBets)
	assert.Equal(t, 1, status.OpenPositions)
	assert.Equal(t, 1, status.MatchesLast)
	assert.False(t, status.Paused)
}

func TestRunCycle_RejectionIsAuditedNotSubmitted(t *testing.T) {
	cfg := engineConfig()
	cfg.Gate.AutoActThreshold = 99.5
	betRepo := &fakeBetRepo{}
	decRepo := &fakeDecisionRepo{}
	exec := &fakeExecutor{}

	now := time.Now()
	e := newTestEngine(cfg, mispricedQuotes(now.Add(2*time.Hour), now), betRepo, decRepo, exec)

	require.NoError(t, e.RunCycle(context.Background()))

	assert.Empty(t, exec.intents)
	require.Len(t, betRepo.records, 1)
	record := betRepo.records[0]
	assert.False(t, record.Decision.Approved())
	assert.Equal(t, models.ReasonConfidenceBelowThreshold, record.Decision.Reason)
	assert.Equal(t, models.BetStatusVoided, record.Status)

	// Rejections are normal operation, not failures
	assert.Equal(t, CircuitClosed, e.breaker.State())
	assert.Equal(t, 0, e.Status().DailyBets)
}

func TestRunCycle_SubmissionFailureLeavesRecordPending(t *testing.T) {
	cfg := engineConfig()
	betRepo := &fakeBetRepo{}
	decRepo := &fakeDecisionRepo{}
	exec := &fakeExecutor{err: errors.New("execution service down")}

	now := time.Now()
	e := newTestEngine(cfg, mispricedQuotes(now.Add(2*time.Hour), now), betRepo, decRepo, exec)

	require.NoError(t, e.RunCycle(context.Background()))

	require.Len(t, betRepo.records, 1)
	record := betRepo.records[0]
	assert.True(t, record.Decision.Approved())
	assert.Equal(t, models.BetStatusPending, record.Status)
}

func TestRunCycle_PriceDriftRejectedAtGate(t *testing.T) {
	cfg := engineConfig()
	betRepo := &fakeBetRepo{}
	decRepo := &fakeDecisionRepo{}
	exec := &fakeExecutor{}

	now := time.Now()
	quotes := mispricedQuotes(now.Add(2*time.Hour), now)

	// The stream saw the home price collapse after the cycle snapshot
	moved := quotes[0]
	moved.Price = 3.80
	moved.ObservedAt = now.Add(time.Minute)
	src := &watchingSource{fakeSource: fakeSource{quotes: quotes}, latest: moved, has: true}

	e := newTestEngineWithSource(cfg, src, betRepo, decRepo, exec)
	require.NoError(t, e.RunCycle(context.Background()))

	assert.Empty(t, exec.intents)
	require.Len(t, betRepo.records, 1)
	record := betRepo.records[0]
	assert.False(t, record.Decision.Approved())
	assert.Equal(t, models.ReasonPriceMoved, record.Decision.Reason)
	assert.Equal(t, models.BetStatusVoided, record.Status)
}

func TestRunCycle_LateGameMatchIsSkipped(t *testing.T) {
	cfg := engineConfig()
	betRepo := &fakeBetRepo{}
	decRepo := &fakeDecisionRepo{}
	exec := &fakeExecutor{}

	now := time.Now()
	quotes := mispricedQuotes(now.Add(-88*time.Minute), now)
	for i := range quotes {
		quotes[i].Live = true
		quotes[i].Minute = 88
	}
	e := newTestEngine(cfg, quotes, betRepo, decRepo, exec)

	require.NoError(t, e.RunCycle(context.Background()))

	assert.Empty(t, betRepo.records)
	assert.Equal(t, 0, e.Status().MatchesLast)
}

func TestRunCycle_RepositoryFailureCountsAgainstBreaker(t *testing.T) {
	cfg := engineConfig()
	betRepo := &fakeBetRepo{pnlErr: errors.New("connection refused")}
	decRepo := &fakeDecisionRepo{}
	exec := &fakeExecutor{}

	now := time.Now()
	e := newTestEngine(cfg, mispricedQuotes(now.Add(2*time.Hour), now), betRepo, decRepo, exec)

	for i := 0; i < DefaultCircuitBreakerConfig().MaxFailureCount; i++ {
		require.Error(t, e.RunCycle(context.Background()))
	}

	assert.Equal(t, CircuitOpen, e.breaker.State())
	assert.True(t, e.Status().Paused)

	// Open circuit: the next cycle is skipped without touching the repo
	require.NoError(t, e.RunCycle(context.Background()))
	assert.Empty(t, betRepo.records)
}
