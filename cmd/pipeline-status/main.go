// Package main provides a CLI for inspecting pipeline runs and datasets.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yourusername/podium-pipeline/internal/config"
	"github.com/yourusername/podium-pipeline/internal/database"
	"github.com/yourusername/podium-pipeline/internal/models"
	"github.com/yourusername/podium-pipeline/internal/repository"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	BuildDate = "unknown"
)

var (
	configFile string
	recentRuns int
	logger     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().IntVarP(&recentRuns, "runs", "n", 5, "Number of recent runs to display")
}

var rootCmd = &cobra.Command{
	Use:   "pipeline-status",
	Short: "Check feature pipeline status",
	Long:  `Displays recent pipeline runs, persisted datasets and fitted encodings.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		displayStatus()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	viper.SetConfigFile(configFile)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()
	viper.SetEnvPrefix("PODIUM_PIPELINE")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

func setupDependencies() error {
	logger = logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	return nil
}

func displayStatus() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	defer db.Close()

	fmt.Println()
	fmt.Println("Podium Pipeline Status")
	fmt.Println("======================")

	fmt.Print("\nDatabase: ")
	if err := db.Ping(ctx); err != nil {
		fmt.Printf("UNAVAILABLE (%v)\n", err)
		return
	}
	fmt.Println("ok")

	displayRecentRuns(ctx)
	displayDatasets(ctx)
	displayEncodings(ctx)

	fmt.Println("\nConfiguration:")
	fmt.Printf("  Season window: %d-%d\n", cfg.Pipeline.SeasonStart, cfg.Pipeline.SeasonEnd)
	fmt.Printf("  Holdout season: %d\n", cfg.Pipeline.HoldoutSeason)
	fmt.Printf("  Encoding version: %s\n", cfg.Pipeline.EncodingVersion)
	fmt.Printf("  Active drivers: %d\n", len(cfg.Pipeline.ActiveDrivers))
	fmt.Printf("  Active constructors: %d\n", len(cfg.Pipeline.ActiveConstructors))
	fmt.Println()
}

func displayRecentRuns(ctx context.Context) {
	fmt.Printf("\nRecent Runs (last %d):\n", recentRuns)

	runs, err := repos.Run.GetRecent(ctx, recentRuns)
	if err != nil {
		fmt.Printf("  error: %v\n", err)
		return
	}
	if len(runs) == 0 {
		fmt.Println("  no runs recorded")
		return
	}

	for _, run := range runs {
		line := fmt.Sprintf("  %s  %-9s  loaded=%d encoded=%d skipped=%d train=%d holdout=%d",
			run.StartedAt.Format(time.RFC3339), run.Status,
			run.RowsLoaded, run.RowsEncoded, run.RowsSkipped,
			run.TrainingRows, run.HoldoutRows)
		if run.Error != nil {
			line += fmt.Sprintf("  error=%q", *run.Error)
		}
		fmt.Println(line)
	}
}

func displayDatasets(ctx context.Context) {
	fmt.Println("\nDatasets:")

	for _, role := range []string{models.DatasetTraining, models.DatasetHoldout} {
		dataset, err := repos.Dataset.GetLatestByRole(ctx, role)
		if err != nil {
			fmt.Printf("  %-8s: none\n", role)
			continue
		}
		fmt.Printf("  %-8s: %s  seasons %d-%d  rows=%d  classes=%v\n",
			role, dataset.Name, dataset.SeasonStart, dataset.SeasonEnd,
			dataset.RowCount, dataset.ClassDistribution())
	}
}

func displayEncodings(ctx context.Context) {
	fmt.Println("\nEncodings:")

	versions, err := repos.Encoding.ListVersions(ctx)
	if err != nil {
		fmt.Printf("  error: %v\n", err)
		return
	}
	if len(versions) == 0 {
		fmt.Println("  none fitted")
		return
	}

	for _, version := range versions {
		set, err := repos.Encoding.GetSet(ctx, version)
		if err != nil {
			fmt.Printf("  %s: error: %v\n", version, err)
			continue
		}
		fmt.Printf("  %s  fitted %s", version, set.FittedAt.Format("2006-01-02"))
		for _, col := range models.EncodedColumns {
			if enc := set.Encoding(col); enc != nil {
				fmt.Printf("  %s=%d", col, enc.Cardinality())
			}
		}
		fmt.Println()
	}
}
