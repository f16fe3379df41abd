package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/podium-pipeline/internal/models"
)

func encodedRow(season, driverCode int) models.EncodedResult {
	return models.EncodedResult{
		Season:        season,
		DriverCode:    driverCode,
		PositionLabel: models.LabelPoints,
	}
}

func TestSplitByHoldoutSeason(t *testing.T) {
	splitter := NewSplitter(testConfig())

	rows := []models.EncodedResult{
		encodedRow(2010, 0),
		encodedRow(2015, 1),
		encodedRow(2019, 2),
		encodedRow(2020, 3),
		encodedRow(2020, 4),
	}

	training, holdout := splitter.Split(rows)

	require.Len(t, training, 3)
	require.Len(t, holdout, 2)
	for _, row := range training {
		assert.GreaterOrEqual(t, row.Season, 2010)
		assert.LessOrEqual(t, row.Season, 2019)
	}
	for _, row := range holdout {
		assert.Equal(t, 2020, row.Season)
	}
}

// TestSplitPartitionsAreDisjointAndComplete checks that the two partitions
// share no rows and together cover every input row inside the window.
func TestSplitPartitionsAreDisjointAndComplete(t *testing.T) {
	splitter := NewSplitter(testConfig())

	rows := make([]models.EncodedResult, 0)
	code := 0
	for season := 2010; season <= 2020; season++ {
		rows = append(rows, encodedRow(season, code))
		code++
	}

	training, holdout := splitter.Split(rows)

	assert.Equal(t, len(rows), len(training)+len(holdout))

	seen := make(map[int]bool)
	for _, row := range append(training, holdout...) {
		assert.False(t, seen[row.DriverCode], "row %d appears in both partitions", row.DriverCode)
		seen[row.DriverCode] = true
	}
	assert.Len(t, seen, len(rows))
}

func TestSplitEmptyInput(t *testing.T) {
	splitter := NewSplitter(testConfig())

	training, holdout := splitter.Split(nil)

	assert.Empty(t, training)
	assert.Empty(t, holdout)
	assert.NotNil(t, training)
	assert.NotNil(t, holdout)
}

func TestSplitPreservesRowOrder(t *testing.T) {
	splitter := NewSplitter(testConfig())

	rows := []models.EncodedResult{
		encodedRow(2012, 0),
		encodedRow(2011, 1),
		encodedRow(2018, 2),
	}

	training, _ := splitter.Split(rows)

	require.Len(t, training, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{training[0].DriverCode, training[1].DriverCode, training[2].DriverCode})
}
