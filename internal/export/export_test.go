package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/podium-pipeline/internal/models"
)

func sampleDataset(role string, seasonStart, seasonEnd int, rows []models.EncodedResult) *models.Dataset {
	return &models.Dataset{
		ID:              uuid.New(),
		Name:            role + "-v1",
		Role:            role,
		EncodingVersion: "v1",
		SeasonStart:     seasonStart,
		SeasonEnd:       seasonEnd,
		Rows:            rows,
		RowCount:        len(rows),
		CreatedAt:       time.Now().UTC(),
	}
}

func sampleEncodingSet() *models.EncodingSet {
	now := time.Now().UTC()
	set := &models.EncodingSet{
		Version:  "v1",
		Columns:  make(map[string]*models.LabelEncoding),
		FittedAt: now,
	}
	mappings := map[string]map[string]int{
		models.ColumnCircuit:     {"Silverstone Circuit": 0, "Circuit de Monaco": 1},
		models.ColumnDriver:      {"Lewis Hamilton": 0, "Valtteri Bottas": 1},
		models.ColumnConstructor: {"Mercedes": 0},
		models.ColumnDNF:         {"false": 0, "true": 1},
	}
	for col, mapping := range mappings {
		set.Columns[col] = &models.LabelEncoding{
			ID:       uuid.New(),
			Version:  "v1",
			Column:   col,
			Mapping:  mapping,
			FittedAt: now,
		}
	}
	return set
}

func TestBuild(t *testing.T) {
	training := sampleDataset(models.DatasetTraining, 2010, 2019, []models.EncodedResult{
		{Season: 2015, PositionLabel: models.LabelPodium},
		{Season: 2016, PositionLabel: models.LabelPodium},
		{Season: 2017, PositionLabel: models.LabelNone},
	})
	holdout := sampleDataset(models.DatasetHoldout, 2020, 2020, []models.EncodedResult{
		{Season: 2020, PositionLabel: models.LabelPoints},
	})

	doc, err := Build(training, holdout, sampleEncodingSet())
	require.NoError(t, err)

	assert.Equal(t, "v1", doc.EncodingVersion)
	assert.Equal(t, 3, doc.Training.RowCount)
	assert.Equal(t, 1, doc.Holdout.RowCount)
	assert.Equal(t, map[int]int{models.LabelPodium: 2, models.LabelNone: 1}, doc.Training.ClassDistribution)
	assert.Equal(t, 2, doc.Encodings[models.ColumnDriver].Cardinality)
	assert.Equal(t, 0, doc.Encodings[models.ColumnConstructor].Mapping["Mercedes"])
}

func TestBuildRejectsIncompleteInputs(t *testing.T) {
	training := sampleDataset(models.DatasetTraining, 2010, 2019, nil)
	holdout := sampleDataset(models.DatasetHoldout, 2020, 2020, nil)

	_, err := Build(nil, holdout, sampleEncodingSet())
	require.Error(t, err)

	_, err = Build(training, holdout, &models.EncodingSet{Version: "v1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incomplete")
}

func TestWriteJSON(t *testing.T) {
	training := sampleDataset(models.DatasetTraining, 2010, 2019, []models.EncodedResult{
		{Season: 2015, DriverCode: 0, PositionLabel: models.LabelPodium},
	})
	holdout := sampleDataset(models.DatasetHoldout, 2020, 2020, nil)

	doc, err := Build(training, holdout, sampleEncodingSet())
	require.NoError(t, err)

	outputPath := filepath.Join(t.TempDir(), "exports", "datasets.json")
	require.NoError(t, WriteJSON(doc, outputPath))

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	var decoded DatasetExport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "v1", decoded.EncodingVersion)
	require.Len(t, decoded.Training.Rows, 1)
	assert.Equal(t, 2015, decoded.Training.Rows[0].Season)
}

func TestWriteJSONRequiresPath(t *testing.T) {
	require.Error(t, WriteJSON(&DatasetExport{}, ""))
}
