package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/podium-pipeline/internal/database"
	"github.com/yourusername/podium-pipeline/internal/models"
)

// PostgresDatasetRepository implements DatasetRepository for PostgreSQL.
// Dataset metadata lives in the datasets table, rows in dataset_rows.
type PostgresDatasetRepository struct {
	db *database.DB
}

// NewPostgresDatasetRepository creates a new dataset repository
func NewPostgresDatasetRepository(db *database.DB) DatasetRepository {
	return &PostgresDatasetRepository{db: db}
}

// Save persists a dataset and its encoded rows
func (r *PostgresDatasetRepository) Save(ctx context.Context, dataset *models.Dataset) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		// Replace any previous dataset with the same name
		_, err := tx.Exec(ctx, `DELETE FROM datasets WHERE name = $1`, dataset.Name)
		if err != nil {
			return fmt.Errorf("failed to delete previous dataset: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO datasets (id, name, role, encoding_version, season_start, season_end, row_count)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, dataset.ID, dataset.Name, dataset.Role, dataset.EncodingVersion,
			dataset.SeasonStart, dataset.SeasonEnd, len(dataset.Rows))
		if err != nil {
			return fmt.Errorf("failed to insert dataset: %w", err)
		}

		if len(dataset.Rows) == 0 {
			return nil
		}

		// Use COPY for high-performance bulk insert of rows
		columns := []string{
			"dataset_id", "row_index", "season", "circuit_code", "driver_code", "constructor_code",
			"dnf_code", "grid", "pit_stops", "driver_age", "driver_confidence",
			"constructor_reliability", "position_label",
		}

		copyFromSource := make([][]interface{}, len(dataset.Rows))
		for i, row := range dataset.Rows {
			copyFromSource[i] = []interface{}{
				dataset.ID, i, row.Season, row.CircuitCode, row.DriverCode, row.ConstructorCode,
				row.DNFCode, row.Grid, row.PitStops, row.DriverAge, row.DriverConfidence,
				row.ConstructorReliability, row.PositionLabel,
			}
		}

		copyCount, err := tx.CopyFrom(ctx, pgx.Identifier{"dataset_rows"}, columns, pgx.CopyFromRows(copyFromSource))
		if err != nil {
			return fmt.Errorf("failed to batch insert dataset rows: %w", err)
		}

		if copyCount != int64(len(dataset.Rows)) {
			return fmt.Errorf("inserted %d rows, expected %d", copyCount, len(dataset.Rows))
		}

		return nil
	})
}

// GetByName retrieves a dataset and its rows by name
func (r *PostgresDatasetRepository) GetByName(ctx context.Context, name string) (*models.Dataset, error) {
	query := `
		SELECT id, name, role, encoding_version, season_start, season_end, row_count, created_at
		FROM datasets
		WHERE name = $1
	`

	dataset := &models.Dataset{}
	err := r.db.GetPool().QueryRow(ctx, query, name).Scan(
		&dataset.ID, &dataset.Name, &dataset.Role, &dataset.EncodingVersion,
		&dataset.SeasonStart, &dataset.SeasonEnd, &dataset.RowCount, &dataset.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrDatasetNotFound
		}
		return nil, fmt.Errorf("failed to query dataset: %w", err)
	}

	rows, err := r.loadRows(ctx, dataset.ID)
	if err != nil {
		return nil, err
	}
	dataset.Rows = rows

	return dataset, nil
}

// GetLatestByRole retrieves the most recently created dataset for a role
func (r *PostgresDatasetRepository) GetLatestByRole(ctx context.Context, role string) (*models.Dataset, error) {
	query := `
		SELECT id, name, role, encoding_version, season_start, season_end, row_count, created_at
		FROM datasets
		WHERE role = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	dataset := &models.Dataset{}
	err := r.db.GetPool().QueryRow(ctx, query, role).Scan(
		&dataset.ID, &dataset.Name, &dataset.Role, &dataset.EncodingVersion,
		&dataset.SeasonStart, &dataset.SeasonEnd, &dataset.RowCount, &dataset.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrDatasetNotFound
		}
		return nil, fmt.Errorf("failed to query dataset by role: %w", err)
	}

	rows, err := r.loadRows(ctx, dataset.ID)
	if err != nil {
		return nil, err
	}
	dataset.Rows = rows

	return dataset, nil
}

// Delete removes a dataset and its rows
func (r *PostgresDatasetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	commandTag, err := r.db.GetPool().Exec(ctx, `DELETE FROM datasets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrDatasetNotFound
	}

	return nil
}

// loadRows fetches encoded rows for a dataset in stored order
func (r *PostgresDatasetRepository) loadRows(ctx context.Context, datasetID uuid.UUID) ([]models.EncodedResult, error) {
	query := `
		SELECT season, circuit_code, driver_code, constructor_code, dnf_code, grid,
		       pit_stops, driver_age, driver_confidence, constructor_reliability, position_label
		FROM dataset_rows
		WHERE dataset_id = $1
		ORDER BY row_index
	`

	rows, err := r.db.GetPool().Query(ctx, query, datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query dataset rows: %w", err)
	}
	defer rows.Close()

	var encoded []models.EncodedResult
	for rows.Next() {
		var row models.EncodedResult
		err := rows.Scan(
			&row.Season, &row.CircuitCode, &row.DriverCode, &row.ConstructorCode, &row.DNFCode,
			&row.Grid, &row.PitStops, &row.DriverAge, &row.DriverConfidence,
			&row.ConstructorReliability, &row.PositionLabel,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dataset row: %w", err)
		}
		encoded = append(encoded, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dataset rows: %w", err)
	}

	return encoded, nil
}
