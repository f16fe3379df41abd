package models

import (
	"time"

	"github.com/google/uuid"
)

// Dataset roles produced by the splitter
const (
	DatasetTraining = "training"
	DatasetHoldout  = "holdout"
)

// Dataset is a named collection of encoded rows covering a season range
type Dataset struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	Name            string          `db:"name" json:"name" validate:"required"`
	Role            string          `db:"role" json:"role" validate:"required,oneof=training holdout"`
	EncodingVersion string          `db:"encoding_version" json:"encoding_version" validate:"required"`
	SeasonStart     int             `db:"season_start" json:"season_start"`
	SeasonEnd       int             `db:"season_end" json:"season_end"`
	Rows            []EncodedResult `db:"-" json:"rows"`
	RowCount        int             `db:"row_count" json:"row_count"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// ClassDistribution counts rows per position label
func (d *Dataset) ClassDistribution() map[int]int {
	dist := make(map[int]int, 3)
	for _, row := range d.Rows {
		dist[row.PositionLabel]++
	}
	return dist
}

// Errors
var (
	ErrDatasetNotFound  = NewValidationError("dataset_not_found", "dataset not found")
	ErrDatasetDuplicate = NewValidationError("dataset_duplicate", "dataset already exists with this name")
)
