package models

import (
	"time"

	"github.com/google/uuid"
)

// Encoded categorical columns
const (
	ColumnCircuit     = "circuit"
	ColumnDriver      = "driver"
	ColumnConstructor = "constructor"
	ColumnDNF         = "dnf"
)

// EncodedColumns lists the categorical columns the encoder fits, in the
// order codes are assigned.
var EncodedColumns = []string{ColumnCircuit, ColumnDriver, ColumnConstructor, ColumnDNF}

// LabelEncoding is a persisted category-to-code mapping for one column.
// It is fitted once on the training pool and reused by lookup so that the
// same category always receives the same code at inference time.
type LabelEncoding struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	Version   string         `db:"version" json:"version" validate:"required"`
	Column    string         `db:"column_name" json:"column" validate:"required"`
	Mapping   map[string]int `db:"mapping" json:"mapping" validate:"required,min=1"`
	FittedAt  time.Time      `db:"fitted_at" json:"fitted_at"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// Code looks up the integer code for a category. The second return value
// reports whether the category was seen during fitting.
func (e *LabelEncoding) Code(category string) (int, bool) {
	code, ok := e.Mapping[category]
	return code, ok
}

// Cardinality returns the number of distinct categories in the encoding
func (e *LabelEncoding) Cardinality() int {
	return len(e.Mapping)
}

// EncodingSet groups the fitted encodings for all categorical columns
// under a single version.
type EncodingSet struct {
	Version   string                    `json:"version"`
	Columns   map[string]*LabelEncoding `json:"columns"`
	FittedAt  time.Time                 `json:"fitted_at"`
}

// Encoding returns the fitted encoding for a column, or nil
func (s *EncodingSet) Encoding(column string) *LabelEncoding {
	if s == nil || s.Columns == nil {
		return nil
	}
	return s.Columns[column]
}

// Complete reports whether every encoded column has a fitted mapping
func (s *EncodingSet) Complete() bool {
	if s == nil {
		return false
	}
	for _, col := range EncodedColumns {
		if enc, ok := s.Columns[col]; !ok || enc == nil || len(enc.Mapping) == 0 {
			return false
		}
	}
	return true
}

// Errors
var (
	ErrEncodingNotFound  = NewValidationError("encoding_not_found", "label encoding not found")
	ErrEncodingDuplicate = NewValidationError("encoding_duplicate", "encoding already exists for this version and column")
)
