// Package engine owns the refresh cycle: collect, aggregate, evaluate,
// gate, persist, execute.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/betmaster/internal/aggregate"
	"github.com/yourusername/betmaster/internal/confidence"
	"github.com/yourusername/betmaster/internal/config"
	"github.com/yourusername/betmaster/internal/execution"
	"github.com/yourusername/betmaster/internal/feed"
	"github.com/yourusername/betmaster/internal/gate"
	"github.com/yourusername/betmaster/internal/health"
	applogger "github.com/yourusername/betmaster/internal/logger"
	"github.com/yourusername/betmaster/internal/market"
	"github.com/yourusername/betmaster/internal/metrics"
	"github.com/yourusername/betmaster/internal/models"
	"github.com/yourusername/betmaster/internal/ratings"
	"github.com/yourusername/betmaster/internal/repository"
	"github.com/yourusername/betmaster/internal/scoreline"
	"github.com/yourusername/betmaster/internal/staking"
)

// Deps holds the engine's collaborators, wired in cmd/engine
type Deps struct {
	Collector    *feed.Collector
	Aggregator   *aggregate.Aggregator
	Ratings      ratings.Provider
	Model        *scoreline.Model
	Evaluator    *market.Evaluator
	Scorer       *confidence.Scorer
	Sizer        *staking.Sizer
	Gate         *gate.Gate
	BetRepo      repository.BetRecordRepository
	DecisionRepo repository.DecisionRepository
	Executor     execution.Executor
}

// Engine coordinates one refresh cycle end to end. Quote collection and
// match evaluation run concurrently; the gate section is serialized over
// a fresh ledger built from the repository each cycle.
type Engine struct {
	cfg     *config.Config
	deps    Deps
	breaker *CircuitBreaker
	logger  *logrus.Logger
	now     func() time.Time

	mu            sync.RWMutex
	lastCycleAt   time.Time
	matchesLast   int
	dailyBets     int
	dailyPnL      float64
	openPositions int
}

// New creates the decision engine
func New(cfg *config.Config, deps Deps, breaker *CircuitBreaker, logger *logrus.Logger) *Engine {
	return &Engine{
		cfg:     cfg,
		deps:    deps,
		breaker: breaker,
		logger:  logger,
		now:     time.Now,
	}
}

// RunCycle executes one refresh cycle. Source failures and gate
// rejections are normal operation; only infrastructure errors count
// against the circuit breaker.
func (e *Engine) RunCycle(ctx context.Context) error {
	if !e.breaker.Allow() {
		if e.logger != nil {
			e.logger.Warn("Cycle skipped, circuit breaker open")
		}
		return nil
	}

	start := e.now()
	cycleID := uuid.NewString()[:8]
	defer func() {
		metrics.RecordCycle(time.Since(start).Seconds())
	}()

	quotes := e.deps.Collector.Collect(ctx)
	matches := e.filterLateGame(e.deps.Aggregator.Aggregate(quotes, start))
	metrics.UpdateMatchesTracked(float64(len(matches)))

	recommendations := e.evaluateMatches(ctx, matches, start)

	if err := e.decide(ctx, recommendations, start); err != nil {
		metrics.RecordCycleFailure()
		e.breaker.RecordFailure(err)
		return err
	}

	e.breaker.RecordSuccess()

	e.mu.Lock()
	e.lastCycleAt = start
	e.matchesLast = len(matches)
	e.mu.Unlock()

	if e.logger != nil {
		applogger.WithCycle(e.logger, cycleID).WithFields(logrus.Fields{
			"quotes":          len(quotes),
			"matches":         len(matches),
			"recommendations": len(recommendations),
			"duration":        time.Since(start).Truncate(time.Millisecond),
		}).Info("Cycle complete")
	}
	return nil
}

// filterLateGame drops live matches past the configured minute: too
// little time remains for the model to say anything useful
func (e *Engine) filterLateGame(matches []*models.CanonicalMatch) []*models.CanonicalMatch {
	out := matches[:0]
	for _, m := range matches {
		if m.Live && m.Minute > e.cfg.Engine.MaxMatchMinute {
			if e.logger != nil {
				applogger.WithMatch(e.logger, m.MatchID, m.HomeTeam, m.AwayTeam).
					WithField("minute", m.Minute).Debug("Match past evaluation window")
			}
			continue
		}
		out = append(out, m)
	}
	return out
}

// evaluateMatches runs the pure evaluation pipeline over all matches
// concurrently and returns the merged recommendations
func (e *Engine) evaluateMatches(ctx context.Context, matches []*models.CanonicalMatch, now time.Time) []*models.Recommendation {
	var (
		mu   sync.Mutex
		recs []*models.Recommendation
		wg   sync.WaitGroup
	)

	for _, match := range matches {
		wg.Add(1)
		go func(m *models.CanonicalMatch) {
			defer wg.Done()

			evaluated := e.evaluateMatch(ctx, m, now)
			if len(evaluated) == 0 {
				return
			}
			mu.Lock()
			recs = append(recs, evaluated...)
			mu.Unlock()
		}(match)
	}

	wg.Wait()
	return recs
}

// evaluateMatch runs ratings, scoreline model, market evaluation,
// confidence scoring and stake sizing for one match
func (e *Engine) evaluateMatch(ctx context.Context, match *models.CanonicalMatch, now time.Time) []*models.Recommendation {
	timer := time.Now()
	defer func() {
		metrics.MatchEvaluationDuration.Observe(time.Since(timer).Seconds())
	}()

	rtg := e.deps.Ratings.MatchRatings(ctx, match.HomeTeam, match.AwayTeam)
	result := e.deps.Model.Distribution(match, rtg)
	opportunities := e.deps.Evaluator.Evaluate(match, result.Grid)

	var recs []*models.Recommendation
	for _, opp := range opportunities {
		sig := buildSignals(opp, result.Grid, rtg)
		conf := e.deps.Scorer.Score(sig, result.LowConfidence)
		if conf < e.cfg.Confidence.MinDisplay {
			continue
		}

		stake := e.deps.Sizer.Recommend(opp.ModelProbability, opp.Price, conf)
		if stake.Amount.IsZero() {
			continue
		}

		metrics.RecommendationsTotal.Inc()
		recs = append(recs, &models.Recommendation{
			MatchID:       match.MatchID,
			HomeTeam:      match.HomeTeam,
			AwayTeam:      match.AwayTeam,
			Competition:   match.Competition,
			KickoffTime:   match.KickoffTime,
			Live:          match.Live,
			Minute:        match.Minute,
			Market:        opp.MarketProbability,
			PriceUsed:     opp.Price,
			LatestPrice:   e.latestPrice(match, opp),
			SourceID:      opp.SourceID,
			Confidence:    conf,
			LowConfidence: result.LowConfidence,
			Stake:         stake,
			SnapshotAt:    match.SnapshotAt,
			CreatedAt:     now,
		})
	}

	if e.logger != nil && len(recs) > 0 {
		applogger.WithMatch(e.logger, match.MatchID, match.HomeTeam, match.AwayTeam).
			WithField("recommendations", len(recs)).Debug("Match evaluated")
	}
	return recs
}

// latestPrice asks the watching sources for a fresher observation of the
// selection's price. Only frames newer than the cycle snapshot count as
// movement evidence; otherwise the gate compares the snapshot price with
// itself.
func (e *Engine) latestPrice(match *models.CanonicalMatch, opp market.Opportunity) float64 {
	q, ok := e.deps.Collector.LatestPrice(match.HomeTeam, match.AwayTeam, opp.MarketType, opp.Selection)
	if !ok || !q.ObservedAt.After(match.SnapshotAt) {
		return opp.Price
	}
	return q.Price
}

// decide runs the serialized gate section: build the day's ledger from
// the repository, evaluate every recommendation, persist the audit row
// and forward approved intents
func (e *Engine) decide(ctx context.Context, recs []*models.Recommendation, now time.Time) error {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	pnl, err := e.deps.BetRepo.GetRealizedPnL(ctx, midnight)
	if err != nil {
		return fmt.Errorf("failed to load daily pnl: %w", err)
	}
	open, err := e.deps.BetRepo.GetOpenPositions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load open positions: %w", err)
	}
	betCount, err := e.deps.BetRepo.CountApprovedSince(ctx, midnight)
	if err != nil {
		return fmt.Errorf("failed to count daily bets: %w", err)
	}

	keys := make([]models.PositionKey, 0, len(open))
	for _, record := range open {
		keys = append(keys, record.Key())
	}
	ledger := gate.NewLedger(pnl, keys, betCount)

	for _, rec := range recs {
		decision := e.deps.Gate.Evaluate(rec, ledger, e.now())
		if err := e.settleDecision(ctx, rec, decision); err != nil {
			return err
		}
	}

	dailyPnL, _ := pnl.Float64()
	e.mu.Lock()
	e.dailyBets = ledger.BetCount()
	e.dailyPnL = dailyPnL
	e.openPositions = ledger.OpenPositionCount()
	e.mu.Unlock()

	metrics.UpdateDailyPnL(dailyPnL)
	metrics.UpdateDailyBets(float64(ledger.BetCount()))
	metrics.UpdateOpenPositions(float64(ledger.OpenPositionCount()))
	return nil
}

// settleDecision persists the audit row for one gate decision and, for
// approvals, submits the intent. Submission failures are logged on the
// record, never retried: the position stays reserved either way.
func (e *Engine) settleDecision(ctx context.Context, rec *models.Recommendation, decision models.GateDecision) error {
	record := &models.BetRecord{
		ID:         uuid.New(),
		MatchID:    rec.MatchID,
		HomeTeam:   rec.HomeTeam,
		AwayTeam:   rec.AwayTeam,
		MarketType: rec.Market.MarketType,
		Selection:  rec.Market.Selection,
		Price:      rec.PriceUsed,
		Stake:      rec.Stake.Amount,
		Currency:   rec.Stake.Currency,
		Edge:       rec.Market.Edge,
		Confidence: rec.Confidence,
		Decision:   decision,
		Status:     models.BetStatusVoided,
		PlacedAt:   decision.DecidedAt,
		CreatedAt:  decision.DecidedAt,
	}

	if decision.Approved() {
		record.Status = models.BetStatusPending
		intent := &models.BetIntent{
			ID:         record.ID,
			MatchID:    rec.MatchID,
			MarketType: rec.Market.MarketType,
			Selection:  rec.Market.Selection,
			Price:      rec.PriceUsed,
			Stake:      rec.Stake.Amount,
			Currency:   rec.Stake.Currency,
			CreatedAt:  decision.DecidedAt,
		}

		if err := e.deps.Executor.SubmitIntent(ctx, intent); err != nil {
			if e.logger != nil {
				e.logger.WithError(err).WithField("intent_id", intent.ID).Error("Intent submission failed")
			}
		} else {
			record.Status = models.BetStatusSubmitted
			metrics.RecordIntentSubmitted()
			stakeFloat, _ := rec.Stake.Amount.Float64()
			metrics.LastStake.Set(stakeFloat)
		}
	}

	if err := e.deps.BetRepo.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to persist bet record: %w", err)
	}
	if err := e.deps.DecisionRepo.Create(ctx, record.ID, &decision); err != nil {
		return fmt.Errorf("failed to persist gate decision: %w", err)
	}
	return nil
}

// Status returns the snapshot surfaced on the health server's /status
// endpoint
func (e *Engine) Status() health.EngineStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()

	status := health.EngineStatus{
		Paused:        e.breaker.State() == CircuitOpen,
		MatchesLast:   e.matchesLast,
		DailyBets:     e.dailyBets,
		DailyPnL:      e.dailyPnL,
		OpenPositions: e.openPositions,
	}
	if !e.lastCycleAt.IsZero() {
		status.LastCycleAt = e.lastCycleAt.UTC().Format(time.RFC3339)
	}
	return status
}
