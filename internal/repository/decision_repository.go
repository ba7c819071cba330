package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/betmaster/internal/database"
	"github.com/yourusername/betmaster/internal/models"
)

// PostgresDecisionRepository implements DecisionRepository for PostgreSQL
type PostgresDecisionRepository struct {
	db *database.DB
}

// NewPostgresDecisionRepository creates a new gate decision repository
func NewPostgresDecisionRepository(db *database.DB) DecisionRepository {
	return &PostgresDecisionRepository{db: db}
}

// Create inserts a gate decision audit row for a bet record
func (r *PostgresDecisionRepository) Create(ctx context.Context, recordID uuid.UUID, decision *models.GateDecision) error {
	query := `
		INSERT INTO gate_decisions (record_id, outcome, reason, note, decided_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		recordID, decision.Outcome, decision.Reason, decision.Note, decision.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create gate decision: %w", err)
	}

	return nil
}

// GetByRecordID retrieves all decisions recorded for a bet record
func (r *PostgresDecisionRepository) GetByRecordID(ctx context.Context, recordID uuid.UUID) ([]*models.GateDecision, error) {
	query := `
		SELECT outcome, reason, note, decided_at
		FROM gate_decisions
		WHERE record_id = $1
		ORDER BY decided_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query gate decisions: %w", err)
	}
	defer rows.Close()

	var decisions []*models.GateDecision
	for rows.Next() {
		d := &models.GateDecision{}
		if err := rows.Scan(&d.Outcome, &d.Reason, &d.Note, &d.DecidedAt); err != nil {
			return nil, fmt.Errorf("failed to scan gate decision: %w", err)
		}
		decisions = append(decisions, d)
	}

	return decisions, rows.Err()
}

// CountByReasonSince returns rejection counts grouped by reason code
func (r *PostgresDecisionRepository) CountByReasonSince(ctx context.Context, since time.Time) (map[string]int, error) {
	query := `
		SELECT reason, COUNT(*)
		FROM gate_decisions
		WHERE outcome = 'rejected' AND decided_at >= $1
		GROUP BY reason
	`

	rows, err := r.db.GetPool().Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count gate decisions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var reason string
		var count int
		if err := rows.Scan(&reason, &count); err != nil {
			return nil, fmt.Errorf("failed to scan decision count: %w", err)
		}
		counts[reason] = count
	}

	return counts, rows.Err()
}
