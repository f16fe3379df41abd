// Package config provides configuration management for the Podium Pipeline application.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	env := fl.Field().String()
	switch env {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	level := fl.Field().String()
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	// Validate pipeline season window
	if cfg.Pipeline.SeasonStart > cfg.Pipeline.SeasonEnd {
		return fmt.Errorf("pipeline season_start must not be after season_end")
	}

	// The holdout must close the window: the split assigns seasons before the
	// holdout to training and the holdout season to the held-out pool, so a
	// window running past the holdout would leave seasons in neither pool.
	if cfg.Pipeline.HoldoutSeason != cfg.Pipeline.SeasonEnd {
		return fmt.Errorf("holdout_season %d must equal season_end %d",
			cfg.Pipeline.HoldoutSeason, cfg.Pipeline.SeasonEnd)
	}

	if cfg.Pipeline.HoldoutSeason <= cfg.Pipeline.SeasonStart {
		return fmt.Errorf("holdout_season %d leaves no training seasons in the window starting %d",
			cfg.Pipeline.HoldoutSeason, cfg.Pipeline.SeasonStart)
	}

	// Validate position label thresholds
	if cfg.Pipeline.PodiumMaxPosition >= cfg.Pipeline.PointsMaxPosition {
		return fmt.Errorf("podium_max_position must be less than points_max_position")
	}

	// The rename table must be idempotent: a rename target may not itself be
	// renamed to a different constructor
	for from, to := range cfg.Pipeline.ConstructorRenames {
		if next, ok := cfg.Pipeline.ConstructorRenames[to]; ok && next != to {
			return fmt.Errorf("constructor rename %q -> %q is not idempotent: %q is renamed to %q",
				from, to, to, next)
		}
	}

	// Validate production environment requirements
	if cfg.IsProduction() {
		if cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
	}

	// Validate connection pool settings
	if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
		return fmt.Errorf("max_idle_connections cannot exceed max_connections")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "url":
			errMsg += fmt.Sprintf("- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}
