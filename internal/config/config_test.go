// Package config provides configuration management for the Podium Pipeline application.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	expectedNoErrorLoadingConfig = "expected no error loading config, got %v"
	expectedNoErrorMsg           = "expected no error, got %v"
	expectedNonNilConfig         = "expected non-nil config"
	podiumPipelineName           = "podium-pipeline"
	developmentEnv               = "development"
	invalidEnv                   = "invalid"
	localhostHost                = "localhost"
	postgresPort                 = 5432
	testAppName                  = "test-app"
)

const validConfigYAML = `app:
  name: podium-pipeline
  environment: development
  log_level: info
database:
  host: localhost
  port: 5432
  name: podium
  user: podium
  password: podium
  ssl_mode: disable
  max_connections: 10
  max_idle_connections: 5
ingestion:
  sources:
    - name: ergast
      enabled: true
      base_url: https://api.example.com/f1
      batch_size: 100
      rate_limit: 4
  schedule:
    historical_sync: "0 3 * * *"
    pipeline_refresh: "30 4 * * 1"
pipeline:
  season_start: 2010
  season_end: 2020
  holdout_season: 2020
  podium_max_position: 3
  points_max_position: 10
  encoding_version: v1
  encoding_cache_ttl_seconds: 3600
  active_drivers: ["Lewis Hamilton", "Max Verstappen"]
  active_constructors: ["Mercedes", "Red Bull"]
  constructor_renames:
    Force India: Racing Point
    Sauber: Alfa Romeo
export:
  enabled: true
  output_path: ./output
metrics:
  enabled: true
  port: 9090
  path: /metrics
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, validConfigYAML))
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal(expectedNonNilConfig)
	}

	if cfg.App.Name != podiumPipelineName {
		t.Errorf("expected app name '%s', got '%s'", podiumPipelineName, cfg.App.Name)
	}

	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}

	if cfg.Database.Host != localhostHost {
		t.Errorf("expected database host '%s', got '%s'", localhostHost, cfg.Database.Host)
	}

	if cfg.Database.Port != postgresPort {
		t.Errorf("expected database port %d, got %d", postgresPort, cfg.Database.Port)
	}

	if got := cfg.Pipeline.ConstructorRenames["Force India"]; got != "Racing Point" {
		t.Errorf("expected constructor rename to 'Racing Point', got '%s'", got)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent_config.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadConfigExpandsEnvironmentVariables tests ${VAR} expansion in the config file
func TestLoadConfigExpandsEnvironmentVariables(t *testing.T) {
	os.Setenv("TEST_DB_PASSWORD", "expanded_secret_value")
	defer os.Unsetenv("TEST_DB_PASSWORD")

	yaml := strings.Replace(validConfigYAML, "password: podium", "password: ${TEST_DB_PASSWORD}", 1)
	path := writeTestConfig(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Database.Password != "expanded_secret_value" {
		t.Errorf("expected expanded password, got '%s'", cfg.Database.Password)
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, validConfigYAML))
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	err = Validate(cfg)
	if err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

// TestValidateInvalidEnvironment tests validation of invalid environment
func TestValidateInvalidEnvironment(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, validConfigYAML))
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.Environment = invalidEnv
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
}

// TestValidateHoldoutOutsideWindow tests cross-field season validation
func TestValidateHoldoutOutsideWindow(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, validConfigYAML))
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Pipeline.HoldoutSeason = 2025
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for holdout season outside window")
	}
}

// TestValidateWindowPastHoldout tests rejection of a season window that
// extends beyond the holdout season, which would leave those seasons in
// neither the training nor the held-out pool
func TestValidateWindowPastHoldout(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, validConfigYAML))
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Pipeline.SeasonEnd = 2021
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error when season window extends past the holdout season")
	}
}

// TestValidateNonIdempotentRenames tests rejection of chained rename tables
func TestValidateNonIdempotentRenames(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, validConfigYAML))
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Pipeline.ConstructorRenames = map[string]string{
		"Force India":  "Racing Point",
		"Racing Point": "Aston Martin",
	}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for non-idempotent rename table")
	}
}

// TestTrainingSeasonEnd tests the derived training window bound
func TestTrainingSeasonEnd(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, validConfigYAML))
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	if got := cfg.TrainingSeasonEnd(); got != 2019 {
		t.Errorf("expected training season end 2019, got %d", got)
	}
}
