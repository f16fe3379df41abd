// Package main provides the entry point for the one-shot feature pipeline CLI.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/podium-pipeline/internal/config"
	"github.com/yourusername/podium-pipeline/internal/database"
	"github.com/yourusername/podium-pipeline/internal/export"
	"github.com/yourusername/podium-pipeline/internal/logger"
	"github.com/yourusername/podium-pipeline/internal/pipeline"
	"github.com/yourusername/podium-pipeline/internal/repository"
)

func main() {
	var (
		configPath  = flag.String("config", "config/config.yaml", "Path to config file")
		seasonStart = flag.Int("season-start", 0, "Override first season of the window")
		seasonEnd   = flag.Int("season-end", 0, "Override last season of the window")
		holdout     = flag.Int("holdout-season", 0, "Override held-out season")
		version     = flag.String("encoding-version", "", "Override encoding version")
		output      = flag.String("output", "", "Override JSON export path")
		noExport    = flag.Bool("no-export", false, "Skip the JSON export step")
	)
	flag.Parse()

	cfg := loadConfigWithSecrets(*configPath)
	log := logger.NewLogger(cfg.App.LogLevel)
	ctx := context.Background()

	pipelineCfg := buildPipelineConfig(cfg, *seasonStart, *seasonEnd, *holdout, *version, log)

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	cacheTTL := time.Duration(cfg.Pipeline.EncodingCacheTTL) * time.Second
	cache := pipeline.NewEncodingCache(repos.Encoding, cacheTTL)

	p, err := pipeline.New(pipelineCfg, repos.Result, repos.Dataset, repos.Run, cache, log)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	result, err := p.Run(ctx)
	if err != nil {
		log.Fatalf("Pipeline run failed: %v", err)
	}

	log.WithFields(logrus.Fields{
		"run_id":        result.Run.ID,
		"training_rows": result.Run.TrainingRows,
		"holdout_rows":  result.Run.HoldoutRows,
		"rows_skipped":  result.Run.RowsSkipped,
		"duration":      result.Run.Duration,
	}).Info("Pipeline run completed")

	if *noExport || (!cfg.Export.Enabled && *output == "") {
		return
	}

	outputPath := cfg.Export.OutputPath
	if *output != "" {
		outputPath = *output
	}

	doc, err := export.Build(result.Training, result.Holdout, result.EncodingSet)
	if err != nil {
		log.Fatalf("Failed to build export: %v", err)
	}
	if err := export.WriteJSON(doc, outputPath); err != nil {
		log.Fatalf("Failed to write export: %v", err)
	}
	log.WithField("path", outputPath).Info("Datasets exported")
}

func loadConfigWithSecrets(path string) *config.Config {
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

func buildPipelineConfig(cfg *config.Config, seasonStart, seasonEnd, holdout int, version string, log *logrus.Logger) pipeline.Config {
	pipelineCfg := pipeline.ConfigFromApp(cfg)
	if seasonStart > 0 {
		pipelineCfg.SeasonStart = seasonStart
	}
	if seasonEnd > 0 {
		pipelineCfg.SeasonEnd = seasonEnd
	}
	if holdout > 0 {
		pipelineCfg.HoldoutSeason = holdout
	}
	if version != "" {
		pipelineCfg.EncodingVersion = version
	}
	if err := pipelineCfg.Validate(); err != nil {
		log.Fatalf("Invalid pipeline configuration: %v", err)
	}
	return pipelineCfg
}
