// Package config provides configuration management for the Podium Pipeline application.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Ingestion IngestionConfig `mapstructure:"ingestion" validate:"required"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline" validate:"required"`
	Export    ExportConfig    `mapstructure:"export" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
	Health    HealthConfig    `mapstructure:"health"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// IngestionConfig represents result ingestion configuration
type IngestionConfig struct {
	Sources  []DataSourceConfig `mapstructure:"sources" validate:"required,min=1"`
	Schedule ScheduleConfig     `mapstructure:"schedule" validate:"required"`
}

// DataSourceConfig represents a single result provider configuration
type DataSourceConfig struct {
	Name      string  `mapstructure:"name" validate:"required"`
	Enabled   bool    `mapstructure:"enabled"`
	BaseURL   string  `mapstructure:"base_url" validate:"omitempty,url"`
	StreamURL string  `mapstructure:"stream_url"`
	APIKey    string  `mapstructure:"api_key"`
	BatchSize int     `mapstructure:"batch_size" validate:"omitempty,gt=0"`
	RateLimit float64 `mapstructure:"rate_limit" validate:"omitempty,gt=0"`
}

// ScheduleConfig represents ingestion and pipeline scheduling
type ScheduleConfig struct {
	HistoricalSync  string `mapstructure:"historical_sync" validate:"required"`
	PipelineRefresh string `mapstructure:"pipeline_refresh" validate:"required"`
}

// PipelineConfig represents feature pipeline configuration.
// The lookup tables (active lists, constructor renames) live here so they
// can be updated without touching transformation logic.
type PipelineConfig struct {
	SeasonStart        int               `mapstructure:"season_start" validate:"required,gte=1950"`
	SeasonEnd          int               `mapstructure:"season_end" validate:"required,gte=1950"`
	HoldoutSeason      int               `mapstructure:"holdout_season" validate:"required,gte=1950"`
	PodiumMaxPosition  int               `mapstructure:"podium_max_position" validate:"required,gt=0"`
	PointsMaxPosition  int               `mapstructure:"points_max_position" validate:"required,gt=0"`
	EncodingVersion    string            `mapstructure:"encoding_version" validate:"required"`
	EncodingCacheTTL   int               `mapstructure:"encoding_cache_ttl_seconds" validate:"required,gt=0"`
	ActiveDrivers      []string          `mapstructure:"active_drivers" validate:"required,min=1"`
	ActiveConstructors []string          `mapstructure:"active_constructors" validate:"required,min=1"`
	ConstructorRenames map[string]string `mapstructure:"constructor_renames"`
}

// ExportConfig represents dataset export configuration
type ExportConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	OutputPath string `mapstructure:"output_path" validate:"required"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// HealthConfig represents health server configuration
type HealthConfig struct {
	Port string `mapstructure:"port"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// TrainingSeasonEnd returns the last season included in the training pool
func (c *Config) TrainingSeasonEnd() int {
	return c.Pipeline.HoldoutSeason - 1
}

// SourceByName returns the configured data source with the given name
func (c *Config) SourceByName(name string) (*DataSourceConfig, bool) {
	for i := range c.Ingestion.Sources {
		if c.Ingestion.Sources[i].Name == name {
			return &c.Ingestion.Sources[i], true
		}
	}
	return nil, false
}
