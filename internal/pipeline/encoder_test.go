package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/podium-pipeline/internal/models"
)

func cleanedRow(season int, driver, constructor string, position int) models.CleanedResult {
	return models.CleanedResult{
		Season:                 season,
		Circuit:                "Silverstone Circuit",
		Driver:                 driver,
		Constructor:            constructor,
		Grid:                   3,
		Position:               position,
		DNF:                    false,
		PitStops:               2,
		DriverAge:              30,
		DriverConfidence:       0.9,
		ConstructorReliability: 0.85,
		ActiveDriver:           true,
		ActiveConstructor:      true,
	}
}

func fittedSet(t *testing.T, rows []models.CleanedResult) *models.EncodingSet {
	t.Helper()
	encoder := NewEncoder(testConfig(), testLogger())
	set, err := encoder.Fit("v1", rows)
	require.NoError(t, err)
	return set
}

func TestFitAssignsStableCodes(t *testing.T) {
	rows := []models.CleanedResult{
		cleanedRow(2015, "Lewis Hamilton", "Mercedes", 1),
		cleanedRow(2015, "Valtteri Bottas", "Mercedes", 2),
		cleanedRow(2016, "Lewis Hamilton", "Mercedes", 1),
	}

	set := fittedSet(t, rows)
	require.True(t, set.Complete())

	drivers := set.Encoding(models.ColumnDriver)
	hamilton, ok := drivers.Code("Lewis Hamilton")
	require.True(t, ok)
	bottas, ok := drivers.Code("Valtteri Bottas")
	require.True(t, ok)

	// First-seen order: Hamilton before Bottas
	assert.Equal(t, 0, hamilton)
	assert.Equal(t, 1, bottas)
	assert.Equal(t, 2, drivers.Cardinality())
	assert.Equal(t, 1, set.Encoding(models.ColumnConstructor).Cardinality())

	// Refitting the same ordered input yields identical codes
	again := fittedSet(t, rows)
	assert.Equal(t, drivers.Mapping, again.Encoding(models.ColumnDriver).Mapping)
}

func TestFitSkipsInactiveRows(t *testing.T) {
	inactive := cleanedRow(2015, "Felipe Massa", "Williams", 5)
	inactive.ActiveDriver = false
	inactive.ActiveConstructor = false

	rows := []models.CleanedResult{
		cleanedRow(2015, "Lewis Hamilton", "Mercedes", 1),
		inactive,
	}

	set := fittedSet(t, rows)
	_, seen := set.Encoding(models.ColumnDriver).Code("Felipe Massa")
	assert.False(t, seen)
}

func TestFitEmptyTrainingPool(t *testing.T) {
	encoder := NewEncoder(testConfig(), testLogger())

	_, err := encoder.Fit("v1", nil)
	require.ErrorIs(t, err, models.ErrEmptyTrainingPool)

	inactive := cleanedRow(2015, "Felipe Massa", "Williams", 5)
	inactive.ActiveDriver = false
	_, err = encoder.Fit("v1", []models.CleanedResult{inactive})
	require.ErrorIs(t, err, models.ErrEmptyTrainingPool)
}

// TestBucketPosition checks the three-class position bucketing table.
func TestBucketPosition(t *testing.T) {
	encoder := NewEncoder(testConfig(), testLogger())

	tests := []struct {
		position int
		want     int
	}{
		{1, models.LabelPodium},
		{3, models.LabelPodium},
		{4, models.LabelPoints},
		{10, models.LabelPoints},
		{11, models.LabelNone},
		{20, models.LabelNone},
		{0, models.LabelNone}, // unclassified
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, encoder.bucketPosition(tt.position), "position %d", tt.position)
	}
}

func TestEncodeDropsInactiveRows(t *testing.T) {
	encoder := NewEncoder(testConfig(), testLogger())

	active := cleanedRow(2015, "Lewis Hamilton", "Mercedes", 1)
	inactiveDriver := cleanedRow(2015, "Lewis Hamilton", "Mercedes", 2)
	inactiveDriver.ActiveDriver = false
	inactiveConstructor := cleanedRow(2015, "Lewis Hamilton", "Mercedes", 3)
	inactiveConstructor.ActiveConstructor = false

	set := fittedSet(t, []models.CleanedResult{active})

	encoded, skipped, err := encoder.Encode(set, []models.CleanedResult{active, inactiveDriver, inactiveConstructor})
	require.NoError(t, err)

	assert.Len(t, encoded, 1)
	assert.Equal(t, 0, skipped)
}

func TestEncodeOutputColumns(t *testing.T) {
	encoder := NewEncoder(testConfig(), testLogger())

	row := cleanedRow(2015, "Lewis Hamilton", "Mercedes", 2)
	set := fittedSet(t, []models.CleanedResult{row})

	encoded, _, err := encoder.Encode(set, []models.CleanedResult{row})
	require.NoError(t, err)
	require.Len(t, encoded, 1)

	out := encoded[0]
	assert.Equal(t, 2015, out.Season)
	assert.Equal(t, 3, out.Grid)
	assert.Equal(t, 2, out.PitStops)
	assert.Equal(t, 30, out.DriverAge)
	assert.InDelta(t, 0.9, out.DriverConfidence, 1e-9)
	assert.InDelta(t, 0.85, out.ConstructorReliability, 1e-9)
	assert.Equal(t, models.LabelPodium, out.PositionLabel)
	// EncodedResult carries no position, active_driver or active_constructor
	// fields; the label above is all that survives of the position.
}

func TestEncodeUnseenCategorySkipsAndCounts(t *testing.T) {
	encoder := NewEncoder(testConfig(), testLogger())

	seen := cleanedRow(2015, "Lewis Hamilton", "Mercedes", 1)
	set := fittedSet(t, []models.CleanedResult{seen})

	unseen := cleanedRow(2020, "Max Verstappen", "Red Bull", 1)

	encoded, skipped, err := encoder.Encode(set, []models.CleanedResult{seen, unseen})
	require.NoError(t, err)

	assert.Len(t, encoded, 1)
	assert.Equal(t, 1, skipped)
}

func TestEncodeRowUnseenCategoryError(t *testing.T) {
	encoder := NewEncoder(testConfig(), testLogger())

	seen := cleanedRow(2015, "Lewis Hamilton", "Mercedes", 1)
	set := fittedSet(t, []models.CleanedResult{seen})

	unseen := cleanedRow(2020, "Max Verstappen", "Red Bull", 1)
	_, err := encoder.encodeRow(set, &unseen)

	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrUnseenCategory))
	assert.Contains(t, err.Error(), "Max Verstappen")
}

// TestEncodeStableAcrossSubsets verifies the persisted-encoding contract:
// the same category receives the same code whether it is encoded with the
// training rows or later with the held-out rows.
func TestEncodeStableAcrossSubsets(t *testing.T) {
	encoder := NewEncoder(testConfig(), testLogger())

	training := []models.CleanedResult{
		cleanedRow(2015, "Lewis Hamilton", "Mercedes", 1),
		cleanedRow(2016, "Valtteri Bottas", "Mercedes", 4),
	}
	holdout := []models.CleanedResult{
		cleanedRow(2020, "Valtteri Bottas", "Mercedes", 2),
	}

	set := fittedSet(t, training)

	encodedTraining, _, err := encoder.Encode(set, training)
	require.NoError(t, err)
	encodedHoldout, _, err := encoder.Encode(set, holdout)
	require.NoError(t, err)

	require.Len(t, encodedTraining, 2)
	require.Len(t, encodedHoldout, 1)
	assert.Equal(t, encodedTraining[1].DriverCode, encodedHoldout[0].DriverCode)
	assert.Equal(t, encodedTraining[0].ConstructorCode, encodedHoldout[0].ConstructorCode)
}

func TestEncodeIncompleteSet(t *testing.T) {
	encoder := NewEncoder(testConfig(), testLogger())

	set := &models.EncodingSet{Version: "v1", Columns: map[string]*models.LabelEncoding{}}
	_, _, err := encoder.Encode(set, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incomplete")
}
