package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/podium-pipeline/internal/datasource"
)

func newTrackedLiveService(season, round int) *LiveTimingService {
	svc := NewLiveTimingService(nil, newTestLogger())
	svc.season = season
	svc.round = round
	return svc
}

func classification(driver string, position int, retired bool) datasource.ClassificationUpdate {
	return datasource.ClassificationUpdate{
		Season:      2020,
		Round:       5,
		Circuit:     "Red Bull Ring",
		Driver:      driver,
		Constructor: "Mercedes",
		Position:    position,
		Retired:     retired,
		Lap:         30,
	}
}

func TestLiveStandingOrdering(t *testing.T) {
	svc := newTrackedLiveService(2020, 5)

	require.NoError(t, svc.handleUpdate(classification("Valtteri Bottas", 2, false)))
	require.NoError(t, svc.handleUpdate(classification("Lewis Hamilton", 1, false)))
	require.NoError(t, svc.handleUpdate(classification("Max Verstappen", 3, true)))

	standing := svc.Standing()
	require.Len(t, standing, 3)
	assert.Equal(t, "Lewis Hamilton", standing[0].Driver)
	assert.Equal(t, "Valtteri Bottas", standing[1].Driver)
	// Retired drivers sort after running cars regardless of position
	assert.Equal(t, "Max Verstappen", standing[2].Driver)
}

func TestLiveUpdateReplacesDriverRow(t *testing.T) {
	svc := newTrackedLiveService(2020, 5)

	require.NoError(t, svc.handleUpdate(classification("Lewis Hamilton", 3, false)))
	require.NoError(t, svc.handleUpdate(classification("Lewis Hamilton", 1, false)))

	standing := svc.Standing()
	require.Len(t, standing, 1)
	assert.Equal(t, 1, standing[0].Position)

	updates, retired := svc.Stats()
	assert.Equal(t, 2, updates)
	assert.Equal(t, 0, retired)
}

func TestLiveRetirementCountedOnce(t *testing.T) {
	svc := newTrackedLiveService(2020, 5)

	require.NoError(t, svc.handleUpdate(classification("Max Verstappen", 10, true)))
	require.NoError(t, svc.handleUpdate(classification("Max Verstappen", 12, true)))

	_, retired := svc.Stats()
	assert.Equal(t, 1, retired)
}

func TestLiveIgnoresOtherRaces(t *testing.T) {
	svc := newTrackedLiveService(2020, 6)

	require.NoError(t, svc.handleUpdate(classification("Lewis Hamilton", 1, false)))

	assert.Empty(t, svc.Standing())
}
