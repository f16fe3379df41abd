package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RaceResult represents a single driver's classified result in one race
type RaceResult struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Season      int             `db:"season" json:"season" validate:"required,gte=1950"`
	Round       int             `db:"round" json:"round" validate:"required,gt=0"`
	Circuit     string          `db:"circuit" json:"circuit" validate:"required"`
	Driver      string          `db:"driver" json:"driver" validate:"required"`
	Constructor string          `db:"constructor" json:"constructor" validate:"required"`
	Grid        int             `db:"grid" json:"grid"`
	Position    *int            `db:"position" json:"position"` // nil when unclassified
	DNF         bool            `db:"dnf" json:"dnf"`
	PitStops    *int            `db:"pit_stops" json:"pit_stops"` // nil when provider omits pit data
	DriverAge   int             `db:"driver_age" json:"driver_age"`
	Points      decimal.Decimal `db:"points" json:"points"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// CleanedResult is a race result after the cleaning stage: pit stops filled,
// constructor identity remapped, reliability ratios and active flags attached.
type CleanedResult struct {
	Season                 int     `json:"season"`
	Circuit                string  `json:"circuit"`
	Driver                 string  `json:"driver"`
	Constructor            string  `json:"constructor"`
	Grid                   int     `json:"grid"`
	Position               int     `json:"position"`
	DNF                    bool    `json:"dnf"`
	PitStops               int     `json:"pit_stops"`
	DriverAge              int     `json:"driver_age"`
	DriverConfidence       float64 `json:"driver_confidence"`
	ConstructorReliability float64 `json:"constructor_reliability"`
	ActiveDriver           bool    `json:"active_driver"`
	ActiveConstructor      bool    `json:"active_constructor"`
}

// Position label classes produced by the encoder.
const (
	LabelPodium = 1 // finishing position 1-3
	LabelPoints = 2 // finishing position 4-10
	LabelNone   = 3 // finishing position 11+
)

// EncodedResult is the model-ready row: categoricals replaced by integer
// codes, finishing position collapsed into a three-class ordinal label.
type EncodedResult struct {
	Season                 int     `json:"season"`
	CircuitCode            int     `json:"circuit_code"`
	DriverCode             int     `json:"driver_code"`
	ConstructorCode        int     `json:"constructor_code"`
	DNFCode                int     `json:"dnf_code"`
	Grid                   int     `json:"grid"`
	PitStops               int     `json:"pit_stops"`
	DriverAge              int     `json:"driver_age"`
	DriverConfidence       float64 `json:"driver_confidence"`
	ConstructorReliability float64 `json:"constructor_reliability"`
	PositionLabel          int     `json:"position_label"`
}

// Errors
var (
	ErrRaceResultNotFound  = NewValidationError("race_result_not_found", "race result not found")
	ErrInvalidRaceResult   = NewValidationError("invalid_race_result", "invalid race result data")
	ErrRaceResultDuplicate = NewValidationError("race_result_duplicate", "result already exists for this driver and race")
)
