package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/podium-pipeline/internal/metrics"
	"github.com/yourusername/podium-pipeline/internal/pipeline"
	"github.com/yourusername/podium-pipeline/internal/service"
)

// Scheduler manages scheduled ingestion syncs and pipeline refreshes
type Scheduler struct {
	cron         *cron.Cron
	ingestionSvc *service.IngestionService
	pipeline     *pipeline.Pipeline
	logger       *logrus.Logger
	mu           sync.RWMutex
	isRunning    bool
	jobIDs       []cron.EntryID
}

// NewScheduler creates a new scheduler. All jobs run on UTC wall time.
func NewScheduler(ingestionSvc *service.IngestionService, p *pipeline.Pipeline, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:         cron.New(cron.WithLocation(time.UTC)),
		ingestionSvc: ingestionSvc,
		pipeline:     p,
		logger:       logger,
		jobIDs:       make([]cron.EntryID, 0),
	}
}

// ScheduleSeasonSync schedules a recurring sync of the current season's
// results from a provider. New races appear during a season, so the sync
// re-fetches the whole season and relies on ingestion deduplication.
func (s *Scheduler) ScheduleSeasonSync(cronExpression, sourceName string, season int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()

		started := time.Now()
		s.logger.WithFields(logrus.Fields{
			"source": sourceName,
			"season": season,
		}).Info("Starting scheduled season sync")

		ingestionMetrics, err := s.ingestionSvc.IngestSeasons(ctx, sourceName, season, season)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled season sync failed")
			return
		}
		metrics.RecordIngestionRun(time.Since(started).Seconds())
		s.logger.WithField("metrics", ingestionMetrics.String()).Info("Scheduled season sync completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled season sync job")

	return nil
}

// SchedulePipelineRefresh schedules a recurring feature pipeline run so
// the persisted datasets track newly ingested results.
func (s *Scheduler) SchedulePipelineRefresh(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		result, err := s.pipeline.Run(ctx)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled pipeline refresh failed")
			return
		}
		s.logger.WithFields(logrus.Fields{
			"run_id":        result.Run.ID,
			"training_rows": result.Run.TrainingRows,
			"holdout_rows":  result.Run.HoldoutRows,
		}).Info("Scheduled pipeline refresh completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled pipeline refresh job")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
