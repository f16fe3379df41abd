package database

import (
	"context"
	"fmt"

	"github.com/yourusername/podium-pipeline/internal/config"
)

// requiredTables are the tables the pipeline expects migrations to have created
var requiredTables = []string{"race_results", "label_encodings", "datasets", "dataset_rows", "pipeline_runs"}

// Initialize creates a database connection pool and verifies the schema is in place
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	// Create connection pool
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	// Verify the expected tables exist
	for _, table := range requiredTables {
		var exists bool
		err = db.pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)",
			table,
		).Scan(&exists)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to check for table %s: %w", table, err)
		}
		if !exists {
			db.Close()
			return nil, fmt.Errorf("required table %s not found, run migrations first", table)
		}
	}

	return db, nil
}
