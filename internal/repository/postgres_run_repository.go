package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/podium-pipeline/internal/database"
	"github.com/yourusername/podium-pipeline/internal/models"
)

// PostgresRunRepository implements RunRepository for PostgreSQL
type PostgresRunRepository struct {
	db *database.DB
}

// NewPostgresRunRepository creates a new pipeline run repository
func NewPostgresRunRepository(db *database.DB) RunRepository {
	return &PostgresRunRepository{db: db}
}

const runColumns = `id, status, season_start, season_end, holdout_season, encoding_version,
	rows_loaded, rows_cleaned, rows_encoded, rows_skipped, training_rows, holdout_rows,
	error, started_at, completed_at`

// Create inserts a new pipeline run record
func (r *PostgresRunRepository) Create(ctx context.Context, run *models.PipelineRun) error {
	query := `
		INSERT INTO pipeline_runs (id, status, season_start, season_end, holdout_season, encoding_version, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		run.ID, run.Status, run.SeasonStart, run.SeasonEnd, run.HoldoutSeason,
		run.EncodingVersion, run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pipeline run: %w", err)
	}

	return nil
}

// Update updates the counters and status of an existing run
func (r *PostgresRunRepository) Update(ctx context.Context, run *models.PipelineRun) error {
	query := `
		UPDATE pipeline_runs SET
			status = $2, rows_loaded = $3, rows_cleaned = $4, rows_encoded = $5,
			rows_skipped = $6, training_rows = $7, holdout_rows = $8, error = $9,
			completed_at = $10
		WHERE id = $1
	`

	commandTag, err := r.db.GetPool().Exec(ctx, query,
		run.ID, run.Status, run.RowsLoaded, run.RowsCleaned, run.RowsEncoded,
		run.RowsSkipped, run.TrainingRows, run.HoldoutRows, run.Error, run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update pipeline run: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrRunNotFound
	}

	return nil
}

// GetByID retrieves a pipeline run by its ID
func (r *PostgresRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PipelineRun, error) {
	query := fmt.Sprintf("SELECT %s FROM pipeline_runs WHERE id = $1", runColumns)

	run := &models.PipelineRun{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&run.ID, &run.Status, &run.SeasonStart, &run.SeasonEnd, &run.HoldoutSeason,
		&run.EncodingVersion, &run.RowsLoaded, &run.RowsCleaned, &run.RowsEncoded,
		&run.RowsSkipped, &run.TrainingRows, &run.HoldoutRows, &run.Error,
		&run.StartedAt, &run.CompletedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to query pipeline run: %w", err)
	}

	return run, nil
}

// GetRecent retrieves the most recent pipeline runs
func (r *PostgresRunRepository) GetRecent(ctx context.Context, limit int) ([]*models.PipelineRun, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM pipeline_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, runColumns)

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pipeline runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.PipelineRun
	for rows.Next() {
		run := &models.PipelineRun{}
		err := rows.Scan(
			&run.ID, &run.Status, &run.SeasonStart, &run.SeasonEnd, &run.HoldoutSeason,
			&run.EncodingVersion, &run.RowsLoaded, &run.RowsCleaned, &run.RowsEncoded,
			&run.RowsSkipped, &run.TrainingRows, &run.HoldoutRows, &run.Error,
			&run.StartedAt, &run.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pipeline run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pipeline runs: %w", err)
	}

	return runs, nil
}
