// Package gate enforces the safety checklist between recommendations
// and executable bet intents.
package gate

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/yourusername/betmaster/internal/models"
)

// Ledger is the per-cycle view of today's betting activity. Approvals
// reserve stake against the daily loss budget within the same lock that
// checks it, so concurrent evaluations cannot jointly overrun a limit.
type Ledger struct {
	mu            sync.Mutex
	realizedPnL   decimal.Decimal
	reserved      decimal.Decimal
	openPositions map[models.PositionKey]bool
	betCount      int
}

// NewLedger builds a ledger from the repository's view of the day:
// realized P&L since midnight, currently open positions, and the number
// of bets already placed today.
func NewLedger(realizedPnL decimal.Decimal, open []models.PositionKey, betCount int) *Ledger {
	positions := make(map[models.PositionKey]bool, len(open))
	for _, key := range open {
		positions[key] = true
	}
	return &Ledger{
		realizedPnL:   realizedPnL,
		reserved:      decimal.Zero,
		openPositions: positions,
		betCount:      betCount,
	}
}

// exposedLoss returns today's realized loss plus stake reserved by
// approvals this cycle. Profitable days count as zero loss.
func (l *Ledger) exposedLoss() decimal.Decimal {
	loss := decimal.Zero
	if l.realizedPnL.IsNegative() {
		loss = l.realizedPnL.Neg()
	}
	return loss.Add(l.reserved)
}

// reserve records an approval: the stake counts against the loss budget
// and the position is registered for duplicate detection
func (l *Ledger) reserve(key models.PositionKey, stake decimal.Decimal) {
	l.reserved = l.reserved.Add(stake)
	l.openPositions[key] = true
	l.betCount++
}

// BetCount returns the number of bets placed today including this
// cycle's approvals
func (l *Ledger) BetCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.betCount
}

// OpenPositionCount returns the number of registered open positions
func (l *Ledger) OpenPositionCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.openPositions)
}
