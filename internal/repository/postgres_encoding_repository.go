package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/podium-pipeline/internal/database"
	"github.com/yourusername/podium-pipeline/internal/models"
)

// PostgresEncodingRepository implements EncodingRepository for PostgreSQL.
// Mappings are stored as JSONB keyed by version and column.
type PostgresEncodingRepository struct {
	db *database.DB
}

// NewPostgresEncodingRepository creates a new encoding repository
func NewPostgresEncodingRepository(db *database.DB) EncodingRepository {
	return &PostgresEncodingRepository{db: db}
}

// Save persists a single fitted column encoding
func (r *PostgresEncodingRepository) Save(ctx context.Context, encoding *models.LabelEncoding) error {
	mapping, err := json.Marshal(encoding.Mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal encoding mapping: %w", err)
	}

	query := `
		INSERT INTO label_encodings (id, version, column_name, mapping, fitted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (version, column_name) DO NOTHING
	`

	commandTag, err := r.db.GetPool().Exec(ctx, query,
		encoding.ID, encoding.Version, encoding.Column, mapping, encoding.FittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert label encoding: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrEncodingDuplicate
	}

	return nil
}

// SaveSet persists all column encodings of a set in one transaction
func (r *PostgresEncodingRepository) SaveSet(ctx context.Context, set *models.EncodingSet) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, column := range models.EncodedColumns {
			encoding := set.Encoding(column)
			if encoding == nil {
				return fmt.Errorf("encoding set %s is missing column %s", set.Version, column)
			}

			mapping, err := json.Marshal(encoding.Mapping)
			if err != nil {
				return fmt.Errorf("failed to marshal encoding mapping: %w", err)
			}

			_, err = tx.Exec(ctx, `
				INSERT INTO label_encodings (id, version, column_name, mapping, fitted_at)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (version, column_name) DO UPDATE SET mapping = EXCLUDED.mapping, fitted_at = EXCLUDED.fitted_at
			`, encoding.ID, encoding.Version, encoding.Column, mapping, encoding.FittedAt)
			if err != nil {
				return fmt.Errorf("failed to upsert label encoding %s: %w", column, err)
			}
		}
		return nil
	})
}

// GetByVersionAndColumn retrieves a single column encoding
func (r *PostgresEncodingRepository) GetByVersionAndColumn(ctx context.Context, version, column string) (*models.LabelEncoding, error) {
	query := `
		SELECT id, version, column_name, mapping, fitted_at, created_at
		FROM label_encodings
		WHERE version = $1 AND column_name = $2
	`

	encoding := &models.LabelEncoding{}
	var mapping []byte
	err := r.db.GetPool().QueryRow(ctx, query, version, column).Scan(
		&encoding.ID, &encoding.Version, &encoding.Column, &mapping, &encoding.FittedAt, &encoding.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrEncodingNotFound
		}
		return nil, fmt.Errorf("failed to query label encoding: %w", err)
	}

	if err := json.Unmarshal(mapping, &encoding.Mapping); err != nil {
		return nil, fmt.Errorf("failed to unmarshal encoding mapping: %w", err)
	}

	return encoding, nil
}

// GetSet retrieves all column encodings for a version
func (r *PostgresEncodingRepository) GetSet(ctx context.Context, version string) (*models.EncodingSet, error) {
	query := `
		SELECT id, version, column_name, mapping, fitted_at, created_at
		FROM label_encodings
		WHERE version = $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, version)
	if err != nil {
		return nil, fmt.Errorf("failed to query encoding set: %w", err)
	}
	defer rows.Close()

	set := &models.EncodingSet{
		Version: version,
		Columns: make(map[string]*models.LabelEncoding),
	}

	for rows.Next() {
		encoding := &models.LabelEncoding{}
		var mapping []byte
		err := rows.Scan(
			&encoding.ID, &encoding.Version, &encoding.Column, &mapping, &encoding.FittedAt, &encoding.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan label encoding: %w", err)
		}
		if err := json.Unmarshal(mapping, &encoding.Mapping); err != nil {
			return nil, fmt.Errorf("failed to unmarshal encoding mapping: %w", err)
		}
		set.Columns[encoding.Column] = encoding
		set.FittedAt = encoding.FittedAt
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating label encodings: %w", err)
	}

	if len(set.Columns) == 0 {
		return nil, models.ErrEncodingNotFound
	}

	return set, nil
}

// ListVersions returns all persisted encoding versions, newest first
func (r *PostgresEncodingRepository) ListVersions(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT version
		FROM label_encodings
		ORDER BY version DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query encoding versions: %w", err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan encoding version: %w", err)
		}
		versions = append(versions, version)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating encoding versions: %w", err)
	}

	return versions, nil
}
