package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	loggerpkg "github.com/yourusername/podium-pipeline/internal/logger"
	"github.com/yourusername/podium-pipeline/internal/metrics"
	"github.com/yourusername/podium-pipeline/internal/models"
	"github.com/yourusername/podium-pipeline/internal/repository"
)

// Pipeline orchestrates one feature-preparation run: load the season
// window, clean, fit or load the label encoding, encode, split into
// training and held-out pools, and persist both datasets with a run record.
type Pipeline struct {
	config        Config
	resultRepo    repository.ResultRepository
	datasetRepo   repository.DatasetRepository
	runRepo       repository.RunRepository
	encodingCache *EncodingCache
	cleaner       *Cleaner
	encoder       *Encoder
	splitter      *Splitter
	logger        *logrus.Logger
	stageLog      *loggerpkg.PipelineLogger
}

// RunResult bundles the outputs of a pipeline run
type RunResult struct {
	Run         *models.PipelineRun
	Training    *models.Dataset
	Holdout     *models.Dataset
	EncodingSet *models.EncodingSet
}

// New creates a pipeline over the given repositories
func New(
	cfg Config,
	resultRepo repository.ResultRepository,
	datasetRepo repository.DatasetRepository,
	runRepo repository.RunRepository,
	encodingCache *EncodingCache,
	logger *logrus.Logger,
) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	if resultRepo == nil || datasetRepo == nil || runRepo == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if encodingCache == nil {
		return nil, fmt.Errorf("encoding cache is required")
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Pipeline{
		config:        cfg,
		resultRepo:    resultRepo,
		datasetRepo:   datasetRepo,
		runRepo:       runRepo,
		encodingCache: encodingCache,
		cleaner:       NewCleaner(cfg, logger),
		encoder:       NewEncoder(cfg, logger),
		splitter:      NewSplitter(cfg),
		logger:        logger,
		stageLog:      loggerpkg.NewPipelineLogger(logger),
	}, nil
}

// Config returns the pipeline configuration
func (p *Pipeline) Config() Config {
	return p.config
}

// Run executes the full pipeline and records the run outcome
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	run := &models.PipelineRun{
		ID:              uuid.New(),
		Status:          models.RunStatusRunning,
		SeasonStart:     p.config.SeasonStart,
		SeasonEnd:       p.config.SeasonEnd,
		HoldoutSeason:   p.config.HoldoutSeason,
		EncodingVersion: p.config.EncodingVersion,
		StartedAt:       time.Now().UTC(),
	}

	if err := p.runRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record pipeline run: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"run_id":   run.ID,
		"window":   [2]int{p.config.SeasonStart, p.config.SeasonEnd},
		"holdout":  p.config.HoldoutSeason,
		"encoding": p.config.EncodingVersion,
	}).Info("Starting pipeline run")

	result, err := p.execute(ctx, run)
	if err != nil {
		p.failRun(ctx, run, err)
		return nil, err
	}

	run.Complete(models.RunStatusCompleted)
	if updateErr := p.runRepo.Update(ctx, run); updateErr != nil {
		p.logger.WithError(updateErr).Error("Failed to update pipeline run record")
	}
	metrics.RecordPipelineRun(models.RunStatusCompleted, run.Duration.Seconds())
	p.stageLog.LogRunCompleted(run.ID.String(), run.Status, run.TrainingRows, run.HoldoutRows, run.Duration)

	return result, nil
}

func (p *Pipeline) execute(ctx context.Context, run *models.PipelineRun) (*RunResult, error) {
	results, err := p.resultRepo.GetBySeasonRange(ctx, p.config.SeasonStart, p.config.SeasonEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	run.RowsLoaded = len(results)

	cleanStart := time.Now()
	cleaned := p.cleaner.Clean(results)
	run.RowsCleaned = len(cleaned)
	metrics.RecordRowsCleaned(len(cleaned))
	p.stageLog.LogStageCompleted("clean", len(results), len(cleaned), time.Since(cleanStart))

	set, err := p.loadOrFitEncoding(ctx, cleaned)
	if err != nil {
		return nil, err
	}

	encodeStart := time.Now()
	encoded, skipped, err := p.encoder.Encode(set, cleaned)
	if err != nil {
		return nil, fmt.Errorf("encoding stage failed: %w", err)
	}
	run.RowsEncoded = len(encoded)
	run.RowsSkipped = skipped
	metrics.RecordRowsEncoded(len(encoded))
	metrics.RecordUnseenCategories(skipped)
	p.stageLog.LogStageCompleted("encode", len(cleaned), len(encoded), time.Since(encodeStart))

	training, holdout := p.splitter.Split(encoded)
	run.TrainingRows = len(training)
	run.HoldoutRows = len(holdout)
	metrics.UpdateDatasetRows(len(training), len(holdout))

	trainingSet, err := p.saveDataset(ctx, models.DatasetTraining, p.config.SeasonStart, p.config.TrainingSeasonEnd(), training)
	if err != nil {
		return nil, err
	}
	holdoutSet, err := p.saveDataset(ctx, models.DatasetHoldout, p.config.HoldoutSeason, p.config.HoldoutSeason, holdout)
	if err != nil {
		return nil, err
	}

	return &RunResult{
		Run:         run,
		Training:    trainingSet,
		Holdout:     holdoutSet,
		EncodingSet: set,
	}, nil
}

// loadOrFitEncoding returns the persisted encoding for the configured
// version, fitting a fresh one on the training pool when none exists yet.
// Fitting happens at most once per version; later runs and the inference
// path reuse the stored mapping so codes stay stable.
func (p *Pipeline) loadOrFitEncoding(ctx context.Context, cleaned []models.CleanedResult) (*models.EncodingSet, error) {
	set, err := p.encodingCache.GetSet(ctx, p.config.EncodingVersion)
	if err == nil && set.Complete() {
		return set, nil
	}
	if err != nil && !errors.Is(err, models.ErrEncodingNotFound) {
		return nil, fmt.Errorf("failed to load encoding %q: %w", p.config.EncodingVersion, err)
	}

	trainingPool := make([]models.CleanedResult, 0, len(cleaned))
	for _, row := range cleaned {
		if row.Season <= p.config.TrainingSeasonEnd() {
			trainingPool = append(trainingPool, row)
		}
	}

	set, err = p.encoder.Fit(p.config.EncodingVersion, trainingPool)
	if err != nil {
		return nil, fmt.Errorf("failed to fit encoding %q: %w", p.config.EncodingVersion, err)
	}

	if err := p.encodingCache.SaveSet(ctx, set); err != nil {
		return nil, fmt.Errorf("failed to persist encoding %q: %w", p.config.EncodingVersion, err)
	}

	cardinalities := make(map[string]int, len(models.EncodedColumns))
	for _, col := range models.EncodedColumns {
		cardinalities[col] = set.Encoding(col).Cardinality()
	}
	metrics.RecordEncodingFit(cardinalities)
	p.stageLog.LogEncodingFitted(set.Version, cardinalities)

	return set, nil
}

func (p *Pipeline) saveDataset(ctx context.Context, role string, seasonStart, seasonEnd int, rows []models.EncodedResult) (*models.Dataset, error) {
	dataset := &models.Dataset{
		ID:              uuid.New(),
		Name:            fmt.Sprintf("%s-%s", role, p.config.EncodingVersion),
		Role:            role,
		EncodingVersion: p.config.EncodingVersion,
		SeasonStart:     seasonStart,
		SeasonEnd:       seasonEnd,
		Rows:            rows,
		RowCount:        len(rows),
		CreatedAt:       time.Now().UTC(),
	}

	if err := p.datasetRepo.Save(ctx, dataset); err != nil {
		return nil, fmt.Errorf("failed to save %s dataset: %w", role, err)
	}

	return dataset, nil
}

func (p *Pipeline) failRun(ctx context.Context, run *models.PipelineRun, runErr error) {
	message := runErr.Error()
	run.Error = &message
	run.Complete(models.RunStatusFailed)
	if err := p.runRepo.Update(ctx, run); err != nil {
		p.logger.WithError(err).Error("Failed to update failed pipeline run record")
	}
	metrics.RecordPipelineRun(models.RunStatusFailed, run.Duration.Seconds())
	p.stageLog.LogRunFailed(run.ID.String(), "pipeline", message)
}
