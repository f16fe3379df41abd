package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/podium-pipeline/internal/database"
	"github.com/yourusername/podium-pipeline/internal/models"
)

// PostgresResultRepository implements ResultRepository for PostgreSQL
type PostgresResultRepository struct {
	db *database.DB
}

// NewPostgresResultRepository creates a new race result repository
func NewPostgresResultRepository(db *database.DB) ResultRepository {
	return &PostgresResultRepository{db: db}
}

const resultColumns = "id, season, round, circuit, driver, constructor, grid, position, dnf, pit_stops, driver_age, points, created_at, updated_at"

// Insert inserts a single race result
func (r *PostgresResultRepository) Insert(ctx context.Context, result *models.RaceResult) error {
	query := `
		INSERT INTO race_results (id, season, round, circuit, driver, constructor, grid, position, dnf, pit_stops, driver_age, points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		result.ID, result.Season, result.Round, result.Circuit, result.Driver, result.Constructor,
		result.Grid, result.Position, result.DNF, result.PitStops, result.DriverAge, result.Points,
	)
	if err != nil {
		return fmt.Errorf("failed to insert race result: %w", err)
	}

	return nil
}

// InsertBatch inserts multiple race results using high-performance batch insert
func (r *PostgresResultRepository) InsertBatch(ctx context.Context, results []*models.RaceResult) error {
	if len(results) == 0 {
		return nil
	}

	// Use COPY for high-performance bulk insert
	columns := []string{"id", "season", "round", "circuit", "driver", "constructor", "grid", "position", "dnf", "pit_stops", "driver_age", "points"}

	copyFromSource := make([][]interface{}, len(results))
	for i, res := range results {
		copyFromSource[i] = []interface{}{
			res.ID, res.Season, res.Round, res.Circuit, res.Driver, res.Constructor,
			res.Grid, res.Position, res.DNF, res.PitStops, res.DriverAge, res.Points,
		}
	}

	copyCount, err := r.db.GetPool().CopyFrom(
		ctx,
		pgx.Identifier{"race_results"},
		columns,
		pgx.CopyFromRows(copyFromSource),
	)
	if err != nil {
		return fmt.Errorf("failed to batch insert race results: %w", err)
	}

	if copyCount != int64(len(results)) {
		return fmt.Errorf("inserted %d rows, expected %d", copyCount, len(results))
	}

	return nil
}

// GetByID retrieves a race result by its ID
func (r *PostgresResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RaceResult, error) {
	query := fmt.Sprintf("SELECT %s FROM race_results WHERE id = $1", resultColumns)

	result := &models.RaceResult{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&result.ID, &result.Season, &result.Round, &result.Circuit, &result.Driver, &result.Constructor,
		&result.Grid, &result.Position, &result.DNF, &result.PitStops, &result.DriverAge, &result.Points,
		&result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrRaceResultNotFound
		}
		return nil, fmt.Errorf("failed to query race result: %w", err)
	}

	return result, nil
}

// GetBySeasonRange retrieves race results within an inclusive season range.
// Rows are ordered deterministically so downstream encoding fits are stable.
func (r *PostgresResultRepository) GetBySeasonRange(ctx context.Context, seasonStart, seasonEnd int) ([]*models.RaceResult, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM race_results
		WHERE season >= $1 AND season <= $2
		ORDER BY season, round, COALESCE(position, 999), driver
	`, resultColumns)

	rows, err := r.db.GetPool().Query(ctx, query, seasonStart, seasonEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query race results by season range: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// GetByRace retrieves all results for a single race
func (r *PostgresResultRepository) GetByRace(ctx context.Context, season, round int) ([]*models.RaceResult, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM race_results
		WHERE season = $1 AND round = $2
		ORDER BY COALESCE(position, 999), driver
	`, resultColumns)

	rows, err := r.db.GetPool().Query(ctx, query, season, round)
	if err != nil {
		return nil, fmt.Errorf("failed to query race results by race: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// Exists checks whether a result is already recorded for a driver in a race
func (r *PostgresResultRepository) Exists(ctx context.Context, season, round int, driver string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM race_results
			WHERE season = $1 AND round = $2 AND driver = $3
		)
	`

	var exists bool
	if err := r.db.GetPool().QueryRow(ctx, query, season, round, driver).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check race result existence: %w", err)
	}

	return exists, nil
}

// DeleteBySeason deletes all results for a season
func (r *PostgresResultRepository) DeleteBySeason(ctx context.Context, season int) error {
	query := `DELETE FROM race_results WHERE season = $1`

	commandTag, err := r.db.GetPool().Exec(ctx, query, season)
	if err != nil {
		return fmt.Errorf("failed to delete race results: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrRaceResultNotFound
	}

	return nil
}

// scanResults scans rows into race result models
func scanResults(rows pgx.Rows) ([]*models.RaceResult, error) {
	var results []*models.RaceResult
	for rows.Next() {
		result := &models.RaceResult{}
		err := rows.Scan(
			&result.ID, &result.Season, &result.Round, &result.Circuit, &result.Driver, &result.Constructor,
			&result.Grid, &result.Position, &result.DNF, &result.PitStops, &result.DriverAge, &result.Points,
			&result.CreatedAt, &result.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan race result: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating race results: %w", err)
	}

	return results, nil
}
