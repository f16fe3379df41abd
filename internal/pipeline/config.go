package pipeline

import (
	"fmt"

	"github.com/yourusername/podium-pipeline/internal/config"
)

// Config holds the parameters of one feature-preparation run
type Config struct {
	SeasonStart        int
	SeasonEnd          int
	HoldoutSeason      int
	PodiumMaxPosition  int
	PointsMaxPosition  int
	EncodingVersion    string
	ActiveDrivers      []string
	ActiveConstructors []string
	ConstructorRenames map[string]string
}

// ConfigFromApp builds a pipeline config from the application configuration
func ConfigFromApp(cfg *config.Config) Config {
	return Config{
		SeasonStart:        cfg.Pipeline.SeasonStart,
		SeasonEnd:          cfg.Pipeline.SeasonEnd,
		HoldoutSeason:      cfg.Pipeline.HoldoutSeason,
		PodiumMaxPosition:  cfg.Pipeline.PodiumMaxPosition,
		PointsMaxPosition:  cfg.Pipeline.PointsMaxPosition,
		EncodingVersion:    cfg.Pipeline.EncodingVersion,
		ActiveDrivers:      cfg.Pipeline.ActiveDrivers,
		ActiveConstructors: cfg.Pipeline.ActiveConstructors,
		ConstructorRenames: cfg.Pipeline.ConstructorRenames,
	}
}

// Validate checks the configuration for consistency
func (c Config) Validate() error {
	if c.SeasonStart > c.SeasonEnd {
		return fmt.Errorf("season_start %d is after season_end %d", c.SeasonStart, c.SeasonEnd)
	}
	// The splitter partitions the window into [SeasonStart, HoldoutSeason-1]
	// and HoldoutSeason itself; seasons past the holdout would belong to
	// neither pool, so the holdout must be the final season of the window.
	if c.HoldoutSeason != c.SeasonEnd {
		return fmt.Errorf("holdout_season %d must equal season_end %d", c.HoldoutSeason, c.SeasonEnd)
	}
	if c.HoldoutSeason <= c.SeasonStart {
		return fmt.Errorf("holdout_season %d leaves no training seasons before it (window starts %d)", c.HoldoutSeason, c.SeasonStart)
	}
	if c.PodiumMaxPosition <= 0 || c.PointsMaxPosition <= c.PodiumMaxPosition {
		return fmt.Errorf("position thresholds must satisfy 0 < podium (%d) < points (%d)", c.PodiumMaxPosition, c.PointsMaxPosition)
	}
	if c.EncodingVersion == "" {
		return fmt.Errorf("encoding_version is required")
	}
	return nil
}

// TrainingSeasonEnd returns the last season included in the training pool
func (c Config) TrainingSeasonEnd() int {
	return c.HoldoutSeason - 1
}
