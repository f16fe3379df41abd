// Package main provides the entry point for the result ingestion service.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/podium-pipeline/internal/config"
	"github.com/yourusername/podium-pipeline/internal/database"
	"github.com/yourusername/podium-pipeline/internal/datasource"
	"github.com/yourusername/podium-pipeline/internal/health"
	"github.com/yourusername/podium-pipeline/internal/logger"
	"github.com/yourusername/podium-pipeline/internal/metrics"
	"github.com/yourusername/podium-pipeline/internal/pipeline"
	"github.com/yourusername/podium-pipeline/internal/repository"
	"github.com/yourusername/podium-pipeline/internal/scheduler"
	"github.com/yourusername/podium-pipeline/internal/service"
)

// Version is set via ldflags
var Version = "dev"

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		syncNow    = flag.Bool("sync-now", false, "Run a full historical sync before starting the scheduler")
		source     = flag.String("source", "", "Data source name (defaults to the first enabled source)")
		liveRound  = flag.Int("live-round", 0, "Subscribe to live timing for this round of the current season")
	)
	flag.Parse()

	cfg := loadConfig(*configPath)
	log := logger.NewLogger(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	sources, err := datasource.NewFactory(log).NewDataSources(cfg.Ingestion)
	if err != nil {
		log.Fatalf("Failed to initialize data sources: %v", err)
	}

	sourceName := resolveSourceName(*source, sources, log)
	ingestionSvc := buildIngestionService(cfg, sources, repos, log, sourceName)
	p := buildPipeline(cfg, repos, log)

	metrics.InitRegistry()
	healthServer := startHealthServer(ctx, cfg, db, log)

	if *syncNow {
		runHistoricalSync(ctx, ingestionSvc, cfg, sourceName, log)
	}

	if *liveRound > 0 {
		live := startLiveTiming(ctx, cfg, sourceName, *liveRound, log)
		if live != nil {
			defer live.Stop()
		}
	}

	sched := scheduler.NewScheduler(ingestionSvc, p, log)
	if err := sched.ScheduleSeasonSync(cfg.Ingestion.Schedule.HistoricalSync, sourceName, cfg.Pipeline.SeasonEnd); err != nil {
		log.Fatalf("Failed to schedule season sync: %v", err)
	}
	if err := sched.SchedulePipelineRefresh(cfg.Ingestion.Schedule.PipelineRefresh); err != nil {
		log.Fatalf("Failed to schedule pipeline refresh: %v", err)
	}
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	healthServer.SetReady(true)
	log.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"source":      sourceName,
		"next_run":    sched.GetNextRun(),
	}).Info("Result ingestion service started")

	<-ctx.Done()
	log.Info("Shutting down")

	healthServer.SetReady(false)
	if err := sched.Stop(); err != nil {
		log.WithError(err).Error("Scheduler shutdown error")
	}
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			logrus.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			logrus.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func resolveSourceName(override string, sources []datasource.DataSource, log *logrus.Logger) string {
	if override != "" {
		for _, src := range sources {
			if src.Name() == override {
				return override
			}
		}
		log.Fatalf("Data source %q not found among enabled sources", override)
	}
	return sources[0].Name()
}

func buildIngestionService(
	cfg *config.Config,
	sources []datasource.DataSource,
	repos *repository.Repositories,
	log *logrus.Logger,
	sourceName string,
) *service.IngestionService {
	batchSize := 100
	if sourceCfg, ok := cfg.SourceByName(sourceName); ok && sourceCfg.BatchSize > 0 {
		batchSize = sourceCfg.BatchSize
	}

	return service.NewIngestionService(
		sources,
		repos.Result,
		service.NewDataValidator(log),
		service.NewDataNormalizer(cfg.Pipeline.ConstructorRenames, log),
		log,
		batchSize,
	)
}

func buildPipeline(cfg *config.Config, repos *repository.Repositories, log *logrus.Logger) *pipeline.Pipeline {
	cacheTTL := time.Duration(cfg.Pipeline.EncodingCacheTTL) * time.Second
	cache := pipeline.NewEncodingCache(repos.Encoding, cacheTTL)

	p, err := pipeline.New(pipeline.ConfigFromApp(cfg), repos.Result, repos.Dataset, repos.Run, cache, log)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}
	return p
}

func startHealthServer(ctx context.Context, cfg *config.Config, db *database.DB, log *logrus.Logger) *health.Server {
	var metricsHandler = metrics.Handler()
	if !cfg.Metrics.Enabled {
		metricsHandler = nil
	}

	healthServer := health.NewServer(health.Config{
		ServiceName:    "data-ingestion",
		Version:        Version,
		Port:           cfg.Health.Port,
		MetricsPath:    cfg.Metrics.Path,
		MetricsHandler: metricsHandler,
		Logger:         log,
		DB:             db,
	})
	if err := healthServer.Start(ctx); err != nil {
		log.Fatalf("Failed to start health server: %v", err)
	}
	return healthServer
}

func startLiveTiming(ctx context.Context, cfg *config.Config, sourceName string, round int, log *logrus.Logger) *service.LiveTimingService {
	sourceCfg, ok := cfg.SourceByName(sourceName)
	if !ok || sourceCfg.StreamURL == "" {
		log.Warn("Live timing requested but the source has no stream URL")
		return nil
	}

	streamClient, err := datasource.NewFactory(log).NewStreamClient(*sourceCfg)
	if err != nil {
		log.Fatalf("Failed to build stream client: %v", err)
	}

	live := service.NewLiveTimingService(streamClient, log)
	if err := live.Start(ctx, cfg.Pipeline.SeasonEnd, round); err != nil {
		log.Fatalf("Failed to start live timing: %v", err)
	}
	return live
}

func runHistoricalSync(ctx context.Context, svc *service.IngestionService, cfg *config.Config, sourceName string, log *logrus.Logger) {
	started := time.Now()
	ingestionMetrics, err := svc.IngestSeasons(ctx, sourceName, cfg.Pipeline.SeasonStart, cfg.Pipeline.SeasonEnd)
	if err != nil {
		log.Fatalf("Historical sync failed: %v", err)
	}
	metrics.RecordIngestionRun(time.Since(started).Seconds())
	log.WithField("metrics", ingestionMetrics.String()).Info("Historical sync completed")
}
