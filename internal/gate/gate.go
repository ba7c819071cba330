package gate

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/betmaster/internal/config"
	"github.com/yourusername/betmaster/internal/metrics"
	"github.com/yourusername/betmaster/internal/models"
)

// Gate runs the fixed-order safety checklist over recommendations.
// Checks short-circuit: a rejection reports the first failing check
// only. The whole evaluation runs inside the ledger lock, so approval
// and budget reservation are atomic.
type Gate struct {
	cfg    config.GateConfig
	logger *logrus.Logger
}

// NewGate creates a safety gate from validated configuration
func NewGate(cfg config.GateConfig, logger *logrus.Logger) *Gate {
	return &Gate{cfg: cfg, logger: logger}
}

// Evaluate runs the checklist for one recommendation against the
// cycle's ledger and returns the decision. Approval reserves the stake
// and registers the position before the lock is released.
func (g *Gate) Evaluate(rec *models.Recommendation, ledger *Ledger, now time.Time) models.GateDecision {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()

	decision := g.evaluateLocked(rec, ledger, now)
	metrics.RecordGateDecision(string(decision.Outcome), decision.Reason)

	if g.logger != nil {
		g.logger.WithFields(logrus.Fields{
			"match_id":   rec.MatchID,
			"market":     rec.Market.MarketType,
			"selection":  rec.Market.Selection,
			"confidence": rec.Confidence,
			"outcome":    decision.Outcome,
			"reason":     decision.Reason,
		}).Info("Gate decision")
	}

	return decision
}

func (g *Gate) evaluateLocked(rec *models.Recommendation, ledger *Ledger, now time.Time) models.GateDecision {
	// 1. Confidence threshold
	if rec.Confidence < g.cfg.AutoActThreshold {
		return rejected(models.ReasonConfidenceBelowThreshold,
			fmt.Sprintf("confidence %.2f below threshold %.2f", rec.Confidence, g.cfg.AutoActThreshold), now)
	}

	// 2. Daily loss limit. Reaching the limit exactly blocks further
	// bets; the budget must have room for this stake too.
	limit := decimal.NewFromFloat(g.cfg.DailyLossLimit)
	if ledger.exposedLoss().GreaterThanOrEqual(limit) {
		return rejected(models.ReasonDailyLossLimit,
			fmt.Sprintf("daily loss budget exhausted (limit %s)", limit.String()), now)
	}

	// 3. Snapshot staleness
	staleness := time.Duration(g.cfg.SnapshotStalenessSeconds) * time.Second
	if now.Sub(rec.SnapshotAt) > staleness {
		return rejected(models.ReasonStaleSnapshot,
			fmt.Sprintf("snapshot is %s old", now.Sub(rec.SnapshotAt).Truncate(time.Second)), now)
	}

	// 4. Duplicate open position
	if ledger.openPositions[rec.Key()] {
		return rejected(models.ReasonDuplicatePosition, "open position exists for this selection", now)
	}

	// 5. Price movement since evaluation
	if rec.PriceUsed > 0 && rec.LatestPrice > 0 {
		drift := math.Abs(rec.LatestPrice-rec.PriceUsed) / rec.PriceUsed
		if drift > g.cfg.PriceMovementTolerance {
			return rejected(models.ReasonPriceMoved,
				fmt.Sprintf("price moved %.2f%% since evaluation", drift*100), now)
		}
	}

	// 6. Daily bet count
	if ledger.betCount >= g.cfg.MaxDailyBets {
		return rejected(models.ReasonDailyBetLimit,
			fmt.Sprintf("daily bet limit %d reached", g.cfg.MaxDailyBets), now)
	}

	ledger.reserve(rec.Key(), rec.Stake.Amount)

	return models.GateDecision{
		Outcome:   models.GateApproved,
		DecidedAt: now,
	}
}

func rejected(reason, note string, now time.Time) models.GateDecision {
	return models.GateDecision{
		Outcome:   models.GateRejected,
		Reason:    reason,
		Note:      note,
		DecidedAt: now,
	}
}
