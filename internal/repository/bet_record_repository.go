package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/yourusername/betmaster/internal/database"
	"github.com/yourusername/betmaster/internal/models"
)

// PostgresBetRecordRepository implements BetRecordRepository for PostgreSQL
type PostgresBetRecordRepository struct {
	db *database.DB
}

// NewPostgresBetRecordRepository creates a new bet record repository
func NewPostgresBetRecordRepository(db *database.DB) BetRecordRepository {
	return &PostgresBetRecordRepository{db: db}
}

const betRecordColumns = `id, match_id, home_team, away_team, market_type, selection, price, stake,
	currency, edge, confidence, status, profit_loss, placed_at, settled_at, created_at`

// Create inserts a new bet record
func (r *PostgresBetRecordRepository) Create(ctx context.Context, record *models.BetRecord) error {
	query := `
		INSERT INTO bet_records (id, match_id, home_team, away_team, market_type, selection, price,
		                         stake, currency, edge, confidence, status, placed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		record.ID, record.MatchID, record.HomeTeam, record.AwayTeam, record.MarketType,
		record.Selection, record.Price, record.Stake, record.Currency, record.Edge,
		record.Confidence, record.Status, record.PlacedAt, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bet record: %w", err)
	}

	return nil
}

// GetByID retrieves a bet record by ID
func (r *PostgresBetRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BetRecord, error) {
	query := `SELECT ` + betRecordColumns + ` FROM bet_records WHERE id = $1`

	record := &models.BetRecord{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&record.ID, &record.MatchID, &record.HomeTeam, &record.AwayTeam, &record.MarketType,
		&record.Selection, &record.Price, &record.Stake, &record.Currency, &record.Edge,
		&record.Confidence, &record.Status, &record.ProfitLoss, &record.PlacedAt,
		&record.SettledAt, &record.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet record: %w", err)
	}

	return record, nil
}

// GetOpenPositions retrieves all approved bet records not yet settled or voided
func (r *PostgresBetRecordRepository) GetOpenPositions(ctx context.Context) ([]*models.BetRecord, error) {
	query := `
		SELECT ` + betRecordColumns + `
		FROM bet_records
		WHERE status IN ('pending', 'submitted')
		ORDER BY placed_at DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query open positions: %w", err)
	}
	defer rows.Close()

	return scanBetRecords(rows)
}

// GetRealizedPnL returns the sum of settled profit and loss since the given time
func (r *PostgresBetRecordRepository) GetRealizedPnL(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(profit_loss), 0)
		FROM bet_records
		WHERE status = 'settled' AND settled_at >= $1
	`

	var pnl decimal.Decimal
	if err := r.db.GetPool().QueryRow(ctx, query, since).Scan(&pnl); err != nil {
		return decimal.Zero, fmt.Errorf("failed to query realized pnl: %w", err)
	}

	return pnl, nil
}

// CountApprovedSince returns the number of approved bets placed since the given time
func (r *PostgresBetRecordRepository) CountApprovedSince(ctx context.Context, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bet_records
		WHERE placed_at >= $1 AND status != 'voided'
	`

	var count int
	if err := r.db.GetPool().QueryRow(ctx, query, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count approved bets: %w", err)
	}

	return count, nil
}

// UpdateSettlement marks a bet record as settled with its realized profit or loss
func (r *PostgresBetRecordRepository) UpdateSettlement(ctx context.Context, id uuid.UUID, pnl decimal.Decimal, settledAt time.Time) error {
	query := `
		UPDATE bet_records
		SET status = 'settled', profit_loss = $2, settled_at = $3
		WHERE id = $1
	`

	commandTag, err := r.db.GetPool().Exec(ctx, query, id, pnl, settledAt)
	if err != nil {
		return fmt.Errorf("failed to update settlement: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// GetByDateRange retrieves bet records placed within a date range
func (r *PostgresBetRecordRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.BetRecord, error) {
	query := `
		SELECT ` + betRecordColumns + `
		FROM bet_records
		WHERE placed_at >= $1 AND placed_at <= $2
		ORDER BY placed_at DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query bet records by date: %w", err)
	}
	defer rows.Close()

	return scanBetRecords(rows)
}

func scanBetRecords(rows pgx.Rows) ([]*models.BetRecord, error) {
	var records []*models.BetRecord
	for rows.Next() {
		record := &models.BetRecord{}
		err := rows.Scan(
			&record.ID, &record.MatchID, &record.HomeTeam, &record.AwayTeam, &record.MarketType,
			&record.Selection, &record.Price, &record.Stake, &record.Currency, &record.Edge,
			&record.Confidence, &record.Status, &record.ProfitLoss, &record.PlacedAt,
			&record.SettledAt, &record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
