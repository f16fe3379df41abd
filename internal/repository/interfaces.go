package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yourusername/podium-pipeline/internal/models"
)

// ResultRepository defines the interface for race result data access
type ResultRepository interface {
	Insert(ctx context.Context, result *models.RaceResult) error
	InsertBatch(ctx context.Context, results []*models.RaceResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RaceResult, error)
	GetBySeasonRange(ctx context.Context, seasonStart, seasonEnd int) ([]*models.RaceResult, error)
	GetByRace(ctx context.Context, season, round int) ([]*models.RaceResult, error)
	Exists(ctx context.Context, season, round int, driver string) (bool, error)
	DeleteBySeason(ctx context.Context, season int) error
}

// EncodingRepository defines the interface for persisted label encodings
type EncodingRepository interface {
	Save(ctx context.Context, encoding *models.LabelEncoding) error
	SaveSet(ctx context.Context, set *models.EncodingSet) error
	GetByVersionAndColumn(ctx context.Context, version, column string) (*models.LabelEncoding, error)
	GetSet(ctx context.Context, version string) (*models.EncodingSet, error)
	ListVersions(ctx context.Context) ([]string, error)
}

// DatasetRepository defines the interface for encoded dataset storage
type DatasetRepository interface {
	Save(ctx context.Context, dataset *models.Dataset) error
	GetByName(ctx context.Context, name string) (*models.Dataset, error)
	GetLatestByRole(ctx context.Context, role string) (*models.Dataset, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RunRepository defines the interface for pipeline run records
type RunRepository interface {
	Create(ctx context.Context, run *models.PipelineRun) error
	Update(ctx context.Context, run *models.PipelineRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PipelineRun, error)
	GetRecent(ctx context.Context, limit int) ([]*models.PipelineRun, error)
}
