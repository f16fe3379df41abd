package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/podium-pipeline/internal/datasource"
	"github.com/yourusername/podium-pipeline/internal/models"
)

// fakeResultRepository is an in-memory ResultRepository for service tests
type fakeResultRepository struct {
	results []*models.RaceResult
}

func (r *fakeResultRepository) Insert(_ context.Context, result *models.RaceResult) error {
	r.results = append(r.results, result)
	return nil
}

func (r *fakeResultRepository) InsertBatch(_ context.Context, results []*models.RaceResult) error {
	r.results = append(r.results, results...)
	return nil
}

func (r *fakeResultRepository) GetByID(_ context.Context, id uuid.UUID) (*models.RaceResult, error) {
	for _, result := range r.results {
		if result.ID == id {
			return result, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeResultRepository) GetBySeasonRange(_ context.Context, seasonStart, seasonEnd int) ([]*models.RaceResult, error) {
	var out []*models.RaceResult
	for _, result := range r.results {
		if result.Season >= seasonStart && result.Season <= seasonEnd {
			out = append(out, result)
		}
	}
	return out, nil
}

func (r *fakeResultRepository) GetByRace(_ context.Context, season, round int) ([]*models.RaceResult, error) {
	var out []*models.RaceResult
	for _, result := range r.results {
		if result.Season == season && result.Round == round {
			out = append(out, result)
		}
	}
	return out, nil
}

func (r *fakeResultRepository) Exists(_ context.Context, season, round int, driver string) (bool, error) {
	for _, result := range r.results {
		if result.Season == season && result.Round == round && result.Driver == driver {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeResultRepository) DeleteBySeason(_ context.Context, season int) error {
	kept := r.results[:0]
	for _, result := range r.results {
		if result.Season != season {
			kept = append(kept, result)
		}
	}
	r.results = kept
	return nil
}

// fakeDataSource returns canned results keyed by season
type fakeDataSource struct {
	name    string
	results map[int][]datasource.ResultData
	err     error
}

func (s *fakeDataSource) FetchSeasonResults(_ context.Context, season int) ([]datasource.ResultData, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.results[season], nil
}

func (s *fakeDataSource) FetchRaceResults(_ context.Context, season, round int) ([]datasource.ResultData, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []datasource.ResultData
	for _, r := range s.results[season] {
		if r.Round == round {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeDataSource) Name() string    { return s.name }
func (s *fakeDataSource) IsEnabled() bool { return true }

func sampleResultData(season, round int, driver string) datasource.ResultData {
	points := decimal.NewFromInt(10)
	return datasource.ResultData{
		SourceID:    fmt.Sprintf("%d-%d-%s", season, round, driver),
		Season:      season,
		Round:       round,
		Circuit:     "Red Bull Ring",
		Driver:      driver,
		Constructor: "Mercedes",
		Grid:        3,
		Position:    ptr(2),
		Status:      "Finished",
		PitStops:    ptr(1),
		DriverAge:   28,
		Points:      &points,
	}
}

func newTestIngestionService(repo *fakeResultRepository, sources ...datasource.DataSource) *IngestionService {
	logger := newTestLogger()
	return NewIngestionService(
		sources,
		repo,
		NewDataValidator(logger),
		NewDataNormalizer(nil, logger),
		logger,
		2, // small batch so batching paths are exercised
	)
}

func TestIngestSeasons(t *testing.T) {
	repo := &fakeResultRepository{}
	source := &fakeDataSource{
		name: "ergast",
		results: map[int][]datasource.ResultData{
			2018: {
				sampleResultData(2018, 1, "Lewis Hamilton"),
				sampleResultData(2018, 1, "Valtteri Bottas"),
				sampleResultData(2018, 2, "Lewis Hamilton"),
			},
			2019: {
				sampleResultData(2019, 1, "Lewis Hamilton"),
			},
		},
	}

	svc := newTestIngestionService(repo, source)

	metrics, err := svc.IngestSeasons(context.Background(), "ergast", 2018, 2019)
	require.NoError(t, err)

	assert.Equal(t, 4, metrics.TotalResults)
	assert.Equal(t, 4, metrics.SuccessfulResults)
	assert.Equal(t, 0, metrics.Duplicates)
	assert.Equal(t, 0, metrics.Errors)
	assert.Len(t, repo.results, 4)
}

func TestIngestSeasonsSkipsDuplicates(t *testing.T) {
	repo := &fakeResultRepository{}
	source := &fakeDataSource{
		name: "ergast",
		results: map[int][]datasource.ResultData{
			2019: {
				sampleResultData(2019, 1, "Lewis Hamilton"),
			},
		},
	}

	svc := newTestIngestionService(repo, source)

	_, err := svc.IngestSeasons(context.Background(), "ergast", 2019, 2019)
	require.NoError(t, err)
	require.Len(t, repo.results, 1)

	// Second run over the same season must not insert again
	metrics, err := svc.IngestSeasons(context.Background(), "ergast", 2019, 2019)
	require.NoError(t, err)

	assert.Equal(t, 1, metrics.Duplicates)
	assert.Equal(t, 0, metrics.SuccessfulResults)
	assert.Len(t, repo.results, 1)
}

func TestIngestSeasonsCountsValidationFailures(t *testing.T) {
	bad := sampleResultData(2019, 1, "")
	good := sampleResultData(2019, 1, "Lewis Hamilton")

	repo := &fakeResultRepository{}
	source := &fakeDataSource{
		name:    "ergast",
		results: map[int][]datasource.ResultData{2019: {bad, good}},
	}

	svc := newTestIngestionService(repo, source)

	metrics, err := svc.IngestSeasons(context.Background(), "ergast", 2019, 2019)
	require.NoError(t, err)

	assert.Equal(t, 1, metrics.ValidationErrors)
	assert.Equal(t, 1, metrics.SuccessfulResults)
	assert.Len(t, repo.results, 1)
}

func TestIngestSeasonsUnknownSource(t *testing.T) {
	svc := newTestIngestionService(&fakeResultRepository{})

	_, err := svc.IngestSeasons(context.Background(), "missing", 2019, 2019)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data source not found")
}

func TestIngestRace(t *testing.T) {
	repo := &fakeResultRepository{}
	source := &fakeDataSource{
		name: "ergast",
		results: map[int][]datasource.ResultData{
			2020: {
				sampleResultData(2020, 1, "Valtteri Bottas"),
				sampleResultData(2020, 2, "Lewis Hamilton"),
			},
		},
	}

	svc := newTestIngestionService(repo, source)

	require.NoError(t, svc.IngestRace(context.Background(), "ergast", 2020, 1))
	require.Len(t, repo.results, 1)
	assert.Equal(t, "Valtteri Bottas", repo.results[0].Driver)
}
