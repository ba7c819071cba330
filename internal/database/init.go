package database

import (
	"context"
	"fmt"

	"github.com/yourusername/betmaster/internal/config"
)

// Initialize creates a database connection pool and verifies the schema
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	// Verify migrations are applied by checking the bet_records table
	var exists bool
	err = db.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'bet_records')",
	).Scan(&exists)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify schema: %w", err)
	}

	if !exists {
		fmt.Println("Warning: bet_records table not found. Please run database migrations.")
	}

	return db, nil
}
