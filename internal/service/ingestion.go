package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/podium-pipeline/internal/datasource"
	"github.com/yourusername/podium-pipeline/internal/models"
	"github.com/yourusername/podium-pipeline/internal/repository"
)

// IngestionService handles the result ingestion workflow
type IngestionService struct {
	sources    []datasource.DataSource
	resultRepo repository.ResultRepository
	validator  *DataValidator
	normalizer *DataNormalizer
	metrics    *IngestionMetrics
	logger     *logrus.Logger
	batchSize  int
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	sources []datasource.DataSource,
	resultRepo repository.ResultRepository,
	validator *DataValidator,
	normalizer *DataNormalizer,
	logger *logrus.Logger,
	batchSize int,
) *IngestionService {
	if batchSize <= 0 {
		batchSize = 100
	}

	return &IngestionService{
		sources:    sources,
		resultRepo: resultRepo,
		validator:  validator,
		normalizer: normalizer,
		metrics:    NewIngestionMetrics(),
		logger:     logger,
		batchSize:  batchSize,
	}
}

// IngestSeasons fetches and ingests race results for a span of seasons
// from a specific source.
func (s *IngestionService) IngestSeasons(ctx context.Context, sourceName string, startSeason, endSeason int) (*IngestionMetrics, error) {
	s.metrics.Reset()
	startTime := time.Now()

	s.logger.WithFields(logrus.Fields{
		"source":       sourceName,
		"start_season": startSeason,
		"end_season":   endSeason,
	}).Info("Starting historical result ingestion")

	source, err := s.findSource(sourceName)
	if err != nil {
		return nil, err
	}

	for season := startSeason; season <= endSeason; season++ {
		if err := ctx.Err(); err != nil {
			return s.metrics, err
		}

		results, err := source.FetchSeasonResults(ctx, season)
		if err != nil {
			s.metrics.RecordError()
			s.logger.WithError(err).WithField("season", season).Error("Failed to fetch season results")
			continue
		}

		s.metrics.mu.Lock()
		s.metrics.TotalResults += len(results)
		s.metrics.mu.Unlock()

		if err := s.ingestResults(ctx, results); err != nil {
			s.metrics.RecordError()
			s.logger.WithError(err).WithField("season", season).Error("Error ingesting season results")
		}
	}

	s.metrics.mu.Lock()
	s.metrics.Duration = time.Since(startTime)
	s.metrics.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"total":             s.metrics.TotalResults,
		"successful":        s.metrics.SuccessfulResults,
		"duplicates":        s.metrics.Duplicates,
		"validation_errors": s.metrics.ValidationErrors,
		"errors":            s.metrics.Errors,
		"duration":          s.metrics.Duration,
	}).Info("Historical ingestion complete")

	return s.metrics, nil
}

// IngestRace fetches and ingests the results of a single race
func (s *IngestionService) IngestRace(ctx context.Context, sourceName string, season, round int) error {
	source, err := s.findSource(sourceName)
	if err != nil {
		return err
	}

	results, err := source.FetchRaceResults(ctx, season, round)
	if err != nil {
		return fmt.Errorf("failed to fetch race results: %w", err)
	}

	s.metrics.mu.Lock()
	s.metrics.TotalResults += len(results)
	s.metrics.mu.Unlock()

	return s.ingestResults(ctx, results)
}

func (s *IngestionService) findSource(name string) (datasource.DataSource, error) {
	for _, src := range s.sources {
		if src.Name() == name {
			return src, nil
		}
	}
	return nil, fmt.Errorf("data source not found: %s", name)
}

// ingestResults normalizes, validates and persists results in batches
func (s *IngestionService) ingestResults(ctx context.Context, results []datasource.ResultData) error {
	batch := make([]*models.RaceResult, 0, s.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.resultRepo.InsertBatch(ctx, batch); err != nil {
			return fmt.Errorf("failed to insert result batch: %w", err)
		}
		for range batch {
			s.metrics.RecordResult()
		}
		batch = batch[:0]
		return nil
	}

	for i := range results {
		result, err := s.processResult(ctx, &results[i])
		if err != nil {
			s.logger.WithError(err).WithField("source_id", results[i].SourceID).Warn("Skipping result")
			continue
		}
		if result == nil {
			continue
		}

		batch = append(batch, result)
		if len(batch) >= s.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}

// processResult normalizes and validates a single result. It returns nil
// without error when the result is a duplicate or fails validation.
func (s *IngestionService) processResult(ctx context.Context, sourceResult *datasource.ResultData) (*models.RaceResult, error) {
	result, err := s.normalizer.NormalizeResult(sourceResult)
	if err != nil {
		s.metrics.RecordError()
		return nil, fmt.Errorf("failed to normalize result: %w", err)
	}

	validationErrors := s.validator.ValidateResult(result)
	if len(validationErrors) > 0 {
		s.metrics.RecordValidationError()
		s.logger.WithFields(logrus.Fields{
			"season": result.Season,
			"round":  result.Round,
			"driver": result.Driver,
			"errors": validationErrors,
		}).Warn("Result validation failed")
		return nil, nil
	}

	exists, err := s.resultRepo.Exists(ctx, result.Season, result.Round, result.Driver)
	if err != nil {
		s.metrics.RecordError()
		return nil, fmt.Errorf("failed to check for existing result: %w", err)
	}
	if exists {
		s.metrics.RecordDuplicate()
		return nil, nil
	}

	return result, nil
}

// GetMetrics returns current ingestion metrics
func (s *IngestionService) GetMetrics() *IngestionMetrics {
	return s.metrics
}

// ResetMetrics resets ingestion metrics
func (s *IngestionService) ResetMetrics() {
	s.metrics.Reset()
}
