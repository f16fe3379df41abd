package models

import (
	"time"

	"github.com/google/uuid"
)

// Pipeline run statuses
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// PipelineRun records one execution of the feature pipeline
type PipelineRun struct {
	ID              uuid.UUID     `db:"id" json:"id"`
	Status          string        `db:"status" json:"status" validate:"required,oneof=running completed failed"`
	SeasonStart     int           `db:"season_start" json:"season_start"`
	SeasonEnd       int           `db:"season_end" json:"season_end"`
	HoldoutSeason   int           `db:"holdout_season" json:"holdout_season"`
	EncodingVersion string        `db:"encoding_version" json:"encoding_version"`
	RowsLoaded      int           `db:"rows_loaded" json:"rows_loaded"`
	RowsCleaned     int           `db:"rows_cleaned" json:"rows_cleaned"`
	RowsEncoded     int           `db:"rows_encoded" json:"rows_encoded"`
	RowsSkipped     int           `db:"rows_skipped" json:"rows_skipped"`
	TrainingRows    int           `db:"training_rows" json:"training_rows"`
	HoldoutRows     int           `db:"holdout_rows" json:"holdout_rows"`
	Error           *string       `db:"error" json:"error,omitempty"`
	StartedAt       time.Time     `db:"started_at" json:"started_at"`
	CompletedAt     *time.Time    `db:"completed_at" json:"completed_at,omitempty"`
	Duration        time.Duration `db:"-" json:"duration"`
}

// Complete marks the run as finished and stamps the duration
func (r *PipelineRun) Complete(status string) {
	now := time.Now().UTC()
	r.Status = status
	r.CompletedAt = &now
	r.Duration = now.Sub(r.StartedAt)
}

// Errors
var (
	ErrRunNotFound = NewValidationError("pipeline_run_not_found", "pipeline run not found")
)
