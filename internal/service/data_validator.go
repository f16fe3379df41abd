package service

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/podium-pipeline/internal/models"
)

// maxGridSlots bounds starting positions; 0 means a pit-lane start
const maxGridSlots = 26

// DataValidator validates race result data
type DataValidator struct {
	logger *logrus.Logger
}

// NewDataValidator creates a new data validator
func NewDataValidator(logger *logrus.Logger) *DataValidator {
	return &DataValidator{logger: logger}
}

// ValidateResult validates result data for required fields and constraints
func (v *DataValidator) ValidateResult(result *models.RaceResult) []string {
	var errors []string

	// Check required fields
	if result.Driver == "" {
		errors = append(errors, "driver is required")
	}

	if result.Constructor == "" {
		errors = append(errors, "constructor is required")
	}

	if result.Circuit == "" {
		errors = append(errors, "circuit is required")
	}

	if result.Season < 1950 {
		errors = append(errors, fmt.Sprintf("season must be 1950 or later, got %d", result.Season))
	}

	if result.Round < 1 {
		errors = append(errors, fmt.Sprintf("round must be positive, got %d", result.Round))
	}

	if result.Grid < 0 || result.Grid > maxGridSlots {
		errors = append(errors, fmt.Sprintf("grid must be 0-%d, got %d", maxGridSlots, result.Grid))
	}

	if result.Position != nil && *result.Position < 1 {
		errors = append(errors, fmt.Sprintf("position must be positive when present, got %d", *result.Position))
	}

	if result.PitStops != nil && *result.PitStops < 0 {
		errors = append(errors, "pit_stops cannot be negative")
	}

	if result.DriverAge < 16 || result.DriverAge > 60 {
		errors = append(errors, fmt.Sprintf("driver_age out of range (16-60), got %d", result.DriverAge))
	}

	if result.Points.LessThan(decimal.Zero) {
		errors = append(errors, "points cannot be negative")
	}

	// A classified finisher must carry a position
	if !result.DNF && result.Position == nil {
		errors = append(errors, "finished result must have a position")
	}

	return errors
}
