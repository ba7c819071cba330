package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GateOutcome is the terminal decision of the safety gate
type GateOutcome string

const (
	GateApproved GateOutcome = "approved"
	GateRejected GateOutcome = "rejected"
)

// Gate rejection reason codes, one per checklist stage
const (
	ReasonConfidenceBelowThreshold = "confidence_below_threshold"
	ReasonDailyLossLimit           = "daily_loss_limit"
	ReasonStaleSnapshot            = "stale_snapshot"
	ReasonDuplicatePosition        = "duplicate_position"
	ReasonPriceMoved               = "price_moved"
	ReasonDailyBetLimit            = "daily_bet_limit"
)

// GateDecision records the gate's verdict on one recommendation
type GateDecision struct {
	Outcome   GateOutcome `db:"outcome" json:"outcome"`
	Reason    string      `db:"reason" json:"reason,omitempty"`
	Note      string      `db:"note" json:"note,omitempty"`
	DecidedAt time.Time   `db:"decided_at" json:"decided_at"`
}

// Approved reports whether the decision cleared every check
func (d GateDecision) Approved() bool {
	return d.Outcome == GateApproved
}

// BetIntent is the executable order forwarded to the execution
// collaborator after gate approval
type BetIntent struct {
	ID         uuid.UUID       `json:"id"`
	MatchID    string          `json:"match_id"`
	MarketType MarketType      `json:"market_type"`
	Selection  Selection       `json:"selection"`
	Price      float64         `json:"price"`
	Stake      decimal.Decimal `json:"stake"`
	Currency   string          `json:"currency"`
	CreatedAt  time.Time       `json:"created_at"`
}

// BetStatus tracks an intent through execution and settlement
type BetStatus string

const (
	BetStatusPending   BetStatus = "pending"
	BetStatusSubmitted BetStatus = "submitted"
	BetStatusSettled   BetStatus = "settled"
	BetStatusVoided    BetStatus = "voided"
)

// BetRecord is the persisted audit row for one recommendation, whether
// approved or rejected. Approved records carry the intent; settlement
// later fills ProfitLoss.
type BetRecord struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	MatchID     string          `db:"match_id" json:"match_id" validate:"required"`
	HomeTeam    string          `db:"home_team" json:"home_team"`
	AwayTeam    string          `db:"away_team" json:"away_team"`
	MarketType  MarketType      `db:"market_type" json:"market_type" validate:"required"`
	Selection   Selection       `db:"selection" json:"selection" validate:"required"`
	Price       float64         `db:"price" json:"price" validate:"gt=1"`
	Stake       decimal.Decimal `db:"stake" json:"stake"`
	Currency    string          `db:"currency" json:"currency"`
	Edge        float64         `db:"edge" json:"edge"`
	Confidence  float64         `db:"confidence" json:"confidence"`
	Decision    GateDecision    `db:"-" json:"decision"`
	Status      BetStatus       `db:"status" json:"status"`
	ProfitLoss  *decimal.Decimal `db:"profit_loss" json:"profit_loss,omitempty"`
	PlacedAt    time.Time       `db:"placed_at" json:"placed_at"`
	SettledAt   *time.Time      `db:"settled_at" json:"settled_at,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// Key returns the record's position identity for duplicate detection
func (b *BetRecord) Key() PositionKey {
	return PositionKey{MatchID: b.MatchID, MarketType: b.MarketType, Selection: b.Selection}
}

// IsOpen reports whether the record is an unsettled approved bet
func (b *BetRecord) IsOpen() bool {
	return b.Decision.Approved() && b.Status != BetStatusSettled && b.Status != BetStatusVoided
}

// RealizedPnL returns the settled profit or loss, zero while open
func (b *BetRecord) RealizedPnL() decimal.Decimal {
	if b.ProfitLoss == nil {
		return decimal.Zero
	}
	return *b.ProfitLoss
}
