// Package export writes encoded datasets out for the downstream
// model-training consumer.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yourusername/podium-pipeline/internal/models"
)

// DatasetExport is the JSON document handed to the model trainer
type DatasetExport struct {
	GeneratedAt     time.Time              `json:"generated_at"`
	EncodingVersion string                 `json:"encoding_version"`
	Encodings       map[string]ColumnCodes `json:"encodings"`
	Training        DatasetSection         `json:"training"`
	Holdout         DatasetSection         `json:"holdout"`
}

// ColumnCodes describes one fitted categorical encoding
type ColumnCodes struct {
	Cardinality int            `json:"cardinality"`
	Mapping     map[string]int `json:"mapping"`
}

// DatasetSection holds one dataset's metadata and rows
type DatasetSection struct {
	Name              string                 `json:"name"`
	SeasonStart       int                    `json:"season_start"`
	SeasonEnd         int                    `json:"season_end"`
	RowCount          int                    `json:"row_count"`
	ClassDistribution map[int]int            `json:"class_distribution"`
	Rows              []models.EncodedResult `json:"rows"`
}

// Build assembles an export document from the pipeline outputs
func Build(training, holdout *models.Dataset, set *models.EncodingSet) (*DatasetExport, error) {
	if training == nil || holdout == nil {
		return nil, fmt.Errorf("training and holdout datasets are required")
	}
	if !set.Complete() {
		return nil, fmt.Errorf("encoding set is incomplete")
	}

	encodings := make(map[string]ColumnCodes, len(models.EncodedColumns))
	for _, col := range models.EncodedColumns {
		enc := set.Encoding(col)
		encodings[col] = ColumnCodes{
			Cardinality: enc.Cardinality(),
			Mapping:     enc.Mapping,
		}
	}

	return &DatasetExport{
		GeneratedAt:     time.Now().UTC(),
		EncodingVersion: set.Version,
		Encodings:       encodings,
		Training:        section(training),
		Holdout:         section(holdout),
	}, nil
}

// WriteJSON writes the export document to a file, creating parent
// directories as needed.
func WriteJSON(doc *DatasetExport, outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

func section(dataset *models.Dataset) DatasetSection {
	return DatasetSection{
		Name:              dataset.Name,
		SeasonStart:       dataset.SeasonStart,
		SeasonEnd:         dataset.SeasonEnd,
		RowCount:          dataset.RowCount,
		ClassDistribution: dataset.ClassDistribution(),
		Rows:              dataset.Rows,
	}
}
