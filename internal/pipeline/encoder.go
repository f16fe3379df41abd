package pipeline

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/podium-pipeline/internal/models"
)

// Encoder turns cleaned rows into model-ready rows: inactive rows are
// dropped, the four categorical columns are replaced by persisted integer
// codes and the finishing position is collapsed into a three-class label.
// The original position and the two active flags never reach the output.
type Encoder struct {
	config Config
	logger *logrus.Logger
}

// NewEncoder creates an encoder from pipeline configuration
func NewEncoder(cfg Config, logger *logrus.Logger) *Encoder {
	if logger == nil {
		logger = logrus.New()
	}
	return &Encoder{config: cfg, logger: logger}
}

// Fit builds an encoding set from the training pool. Codes are assigned in
// first-seen order, so the same ordered input always yields the same codes.
// Rows with inactive drivers or constructors are excluded, matching the
// filter Encode applies.
func (e *Encoder) Fit(version string, rows []models.CleanedResult) (*models.EncodingSet, error) {
	now := time.Now().UTC()
	set := &models.EncodingSet{
		Version:  version,
		Columns:  make(map[string]*models.LabelEncoding, len(models.EncodedColumns)),
		FittedAt: now,
	}
	for _, col := range models.EncodedColumns {
		set.Columns[col] = &models.LabelEncoding{
			ID:        uuid.New(),
			Version:   version,
			Column:    col,
			Mapping:   make(map[string]int),
			FittedAt:  now,
			CreatedAt: now,
		}
	}

	fitted := 0
	for i := range rows {
		row := &rows[i]
		if !row.ActiveDriver || !row.ActiveConstructor {
			continue
		}
		for _, col := range models.EncodedColumns {
			mapping := set.Columns[col].Mapping
			category := categoryValue(row, col)
			if _, ok := mapping[category]; !ok {
				mapping[category] = len(mapping)
			}
		}
		fitted++
	}

	if fitted == 0 {
		return nil, models.ErrEmptyTrainingPool
	}

	e.logger.WithFields(logrus.Fields{
		"version":      version,
		"rows":         fitted,
		"circuits":     set.Columns[models.ColumnCircuit].Cardinality(),
		"drivers":      set.Columns[models.ColumnDriver].Cardinality(),
		"constructors": set.Columns[models.ColumnConstructor].Cardinality(),
	}).Info("Fitted label encoding")

	return set, nil
}

// Encode applies a fitted encoding set to cleaned rows. Rows whose driver
// or constructor is inactive are dropped. A row holding a category absent
// from the encoding is skipped and counted rather than failing the run;
// the skip count is returned alongside the encoded rows.
func (e *Encoder) Encode(set *models.EncodingSet, rows []models.CleanedResult) ([]models.EncodedResult, int, error) {
	if !set.Complete() {
		return nil, 0, fmt.Errorf("encoding set %q is incomplete", set.Version)
	}

	encoded := make([]models.EncodedResult, 0, len(rows))
	skipped := 0
	for i := range rows {
		row := &rows[i]
		if !row.ActiveDriver || !row.ActiveConstructor {
			continue
		}

		out, err := e.encodeRow(set, row)
		if err != nil {
			skipped++
			e.logger.WithError(err).WithFields(logrus.Fields{
				"season": row.Season,
				"driver": row.Driver,
			}).Warn("Skipping row with unseen category")
			continue
		}
		encoded = append(encoded, *out)
	}

	return encoded, skipped, nil
}

// encodeRow encodes a single active row against the fitted set. It wraps
// models.ErrUnseenCategory when any categorical value was not seen at fit
// time.
func (e *Encoder) encodeRow(set *models.EncodingSet, row *models.CleanedResult) (*models.EncodedResult, error) {
	codes := make(map[string]int, len(models.EncodedColumns))
	for _, col := range models.EncodedColumns {
		category := categoryValue(row, col)
		code, ok := set.Encoding(col).Code(category)
		if !ok {
			return nil, fmt.Errorf("%w: column %s value %q", models.ErrUnseenCategory, col, category)
		}
		codes[col] = code
	}

	return &models.EncodedResult{
		Season:                 row.Season,
		CircuitCode:            codes[models.ColumnCircuit],
		DriverCode:             codes[models.ColumnDriver],
		ConstructorCode:        codes[models.ColumnConstructor],
		DNFCode:                codes[models.ColumnDNF],
		Grid:                   row.Grid,
		PitStops:               row.PitStops,
		DriverAge:              row.DriverAge,
		DriverConfidence:       row.DriverConfidence,
		ConstructorReliability: row.ConstructorReliability,
		PositionLabel:          e.bucketPosition(row.Position),
	}, nil
}

// bucketPosition collapses a finishing position into the three-class
// ordinal label. Position 0 marks an unclassified row and lands in the
// no-points class.
func (e *Encoder) bucketPosition(position int) int {
	switch {
	case position >= 1 && position <= e.config.PodiumMaxPosition:
		return models.LabelPodium
	case position >= 1 && position <= e.config.PointsMaxPosition:
		return models.LabelPoints
	default:
		return models.LabelNone
	}
}

// categoryValue extracts the string category of a column from a cleaned row
func categoryValue(row *models.CleanedResult, column string) string {
	switch column {
	case models.ColumnCircuit:
		return row.Circuit
	case models.ColumnDriver:
		return row.Driver
	case models.ColumnConstructor:
		return row.Constructor
	case models.ColumnDNF:
		return strconv.FormatBool(row.DNF)
	default:
		return ""
	}
}
