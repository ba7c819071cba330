package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yourusername/betmaster/internal/models"
)

// BetRecordRepository defines the interface for bet record data access.
// The safety gate builds its daily ledger from this repository.
type BetRecordRepository interface {
	Create(ctx context.Context, record *models.BetRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BetRecord, error)
	GetOpenPositions(ctx context.Context) ([]*models.BetRecord, error)
	GetRealizedPnL(ctx context.Context, since time.Time) (decimal.Decimal, error)
	CountApprovedSince(ctx context.Context, since time.Time) (int, error)
	UpdateSettlement(ctx context.Context, id uuid.UUID, pnl decimal.Decimal, settledAt time.Time) error
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.BetRecord, error)
}

// DecisionRepository defines the interface for gate decision audit rows
type DecisionRepository interface {
	Create(ctx context.Context, recordID uuid.UUID, decision *models.GateDecision) error
	GetByRecordID(ctx context.Context, recordID uuid.UUID) ([]*models.GateDecision, error)
	CountByReasonSince(ctx context.Context, since time.Time) (map[string]int, error)
}
